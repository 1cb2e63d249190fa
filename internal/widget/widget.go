// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package widget models the visitor chat/video widget as an explicit state
// machine: one tagged state (Chat | LeadForm | Video) with transition
// methods, instead of independent boolean flags that can drift into
// unreachable combinations. The camera follows a scoped-acquisition
// contract: acquired only on entering Video, released exactly once on
// every path out of it.
package widget

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"totisite/internal/assistant"
	"totisite/internal/avatar"
)

// State is the widget's current view.
type State int

const (
	StateChat State = iota
	StateLeadForm
	StateVideo
)

func (s State) String() string {
	switch s {
	case StateChat:
		return "chat"
	case StateLeadForm:
		return "lead-form"
	case StateVideo:
		return "video"
	default:
		return "unknown"
	}
}

// CallReasons is the fixed choice list of the lead-capture form. The form
// defaults to the first entry.
var CallReasons = []string{
	"Discussing a new project",
	"AI automation consultation",
	"Web development inquiry",
	"Partnership opportunity",
	"General questions",
	"Other",
}

// greetings is the canned opening sequence, shown once per widget lifetime.
var greetings = []string{
	"Hi there! I'm Toti AI, Stephen's virtual assistant.",
	"Welcome! I can help you learn about Stephen's services, book a consultation, or answer questions about AI automation and web development.",
}

// connectionErrorMessage replaces raw errors in the transcript; visitors
// never see stack traces, only a polite alternative action.
const connectionErrorMessage = "I'm having trouble connecting right now. Please try again, or book a call directly at https://cal.com/stevetotibooking/discovery-call-toti"

var (
	// ErrInvalidTransition is returned when a method is called from the
	// wrong state (e.g. SubmitLead while in Chat).
	ErrInvalidTransition = errors.New("widget: invalid transition")

	// ErrMissingFields is returned when the lead form lacks name or phone.
	// No network call is made in that case.
	ErrMissingFields = errors.New("widget: name and phone are required")

	// ErrClosed is returned for operations on a closed widget.
	ErrClosed = errors.New("widget: closed")
)

// Assistant produces chat replies.
type Assistant interface {
	Converse(ctx context.Context, messages []assistant.Message, sessionID string) (*assistant.Reply, error)
}

// LeadSaver persists the lead-capture form. Failure is non-blocking for the
// video transition.
type LeadSaver interface {
	SaveLead(ctx context.Context, lead Lead) (sessionID string, err error)
}

// Lead is the lead-capture form payload.
type Lead struct {
	VisitorName  string
	VisitorPhone string
	CallReason   string
	SessionID    string
	Source       string
}

// Stream is an acquired camera/microphone stream. Stop must be idempotent
// from the widget's point of view: the widget calls it exactly once.
type Stream interface {
	Stop()
}

// Camera acquires the local media device. Only one acquisition is ever
// outstanding per widget.
type Camera interface {
	Acquire(ctx context.Context) (Stream, error)
}

// Widget is one visitor's chat/video widget instance.
type Widget struct {
	mu sync.Mutex

	state   State
	open    bool
	greeted bool
	gen     int // bumped on close/teardown; stale async results are discarded

	sessionID  string
	transcript []assistant.Message

	leadName   string
	leadPhone  string
	leadReason string

	videoSession *avatar.Session
	stream       Stream
	videoErr     string

	assistant Assistant
	leads     LeadSaver
	sessions  avatar.Provider
	camera    Camera
}

// New creates a widget wired to its collaborators.
func New(a Assistant, leads LeadSaver, sessions avatar.Provider, camera Camera, sessionID string) *Widget {
	return &Widget{
		state:     StateChat,
		sessionID: sessionID,
		assistant: a,
		leads:     leads,
		sessions:  sessions,
		camera:    camera,
	}
}

// Open activates the widget in Chat and queues the greeting sequence the
// first time only. Reopening after Close does not repeat the greeting.
func (w *Widget) Open() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.open = true
	w.state = StateChat
	if !w.greeted {
		w.greeted = true
		for _, g := range greetings {
			w.transcript = append(w.transcript, assistant.Message{Role: "assistant", Content: g})
		}
	}
}

// State returns the current view state.
func (w *Widget) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Transcript returns a copy of the accumulated chat messages.
func (w *Widget) Transcript() []assistant.Message {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]assistant.Message, len(w.transcript))
	copy(out, w.transcript)
	return out
}

// LeadForm returns the current form values (name, phone, reason).
func (w *Widget) LeadForm() (name, phone, reason string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.leadName, w.leadPhone, w.leadReason
}

// VideoError returns the user-facing video failure, empty when none. A
// non-empty value always leaves SwitchToText available as the way back.
func (w *Widget) VideoError() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.videoErr
}

// SendMessage appends the user's text, asks the assistant, and appends the
// reply. The user message lands in the transcript before the reply arrives;
// if the widget is closed while the call is in flight, the reply is
// discarded rather than appended to a torn-down view.
func (w *Widget) SendMessage(ctx context.Context, text string) error {
	w.mu.Lock()
	if !w.open {
		w.mu.Unlock()
		return ErrClosed
	}
	if w.state != StateChat {
		w.mu.Unlock()
		return ErrInvalidTransition
	}

	w.transcript = append(w.transcript, assistant.Message{Role: "user", Content: text})
	history := make([]assistant.Message, len(w.transcript))
	copy(history, w.transcript)
	gen := w.gen
	w.mu.Unlock()

	reply, err := w.assistant.Converse(ctx, history, w.sessionID)

	w.mu.Lock()
	defer w.mu.Unlock()

	// Stale-response guard: the widget was closed or torn down meanwhile.
	if !w.open || w.gen != gen {
		return nil
	}

	content := connectionErrorMessage
	if err == nil {
		content = reply.Message
	} else {
		slog.Error("widget assistant call failed", "error", err)
	}
	w.transcript = append(w.transcript, assistant.Message{Role: "assistant", Content: content})
	return nil
}

// UpgradeToVideo moves Chat → LeadForm with a blank form and the default
// reason.
func (w *Widget) UpgradeToVideo() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.open {
		return ErrClosed
	}
	if w.state != StateChat {
		return ErrInvalidTransition
	}

	w.state = StateLeadForm
	w.leadName = ""
	w.leadPhone = ""
	w.leadReason = CallReasons[0]
	return nil
}

// SubmitLead validates the form, persists the lead, and enters Video,
// acquiring the session token and camera. Lead persistence is
// fire-and-forget: a save failure is logged and video still starts. Session
// or camera failure leaves the widget in Video with a user-facing error and
// no resources held.
func (w *Widget) SubmitLead(ctx context.Context, name, phone, reason string) error {
	w.mu.Lock()
	if !w.open {
		w.mu.Unlock()
		return ErrClosed
	}
	if w.state != StateLeadForm {
		w.mu.Unlock()
		return ErrInvalidTransition
	}
	if name == "" || phone == "" {
		w.mu.Unlock()
		return ErrMissingFields
	}
	if reason == "" {
		reason = CallReasons[0]
	}
	w.leadName, w.leadPhone, w.leadReason = name, phone, reason
	w.state = StateVideo
	w.videoErr = ""
	gen := w.gen
	w.mu.Unlock()

	if _, err := w.leads.SaveLead(ctx, Lead{
		VisitorName:  name,
		VisitorPhone: phone,
		CallReason:   reason,
		SessionID:    w.sessionID,
	}); err != nil {
		// Still allow video even if the lead save fails.
		slog.Error("widget lead save failed", "error", err)
	}

	sess, err := w.sessions.CreateSession(ctx)
	if err != nil {
		w.failVideo(gen, "Could not start the video session. Switch back to text chat or try again.")
		slog.Error("widget video session failed", "error", err)
		return nil
	}

	stream, err := w.camera.Acquire(ctx)

	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.open || w.gen != gen {
		// Closed while connecting: release anything we just acquired.
		if err == nil {
			stream.Stop()
		}
		return nil
	}
	if err != nil {
		w.videoErr = "Camera access failed. Check permissions, or switch back to text chat."
		slog.Error("widget camera acquire failed", "error", err)
		return nil
	}

	w.videoSession = sess
	w.stream = stream
	return nil
}

// failVideo records a video error unless the widget moved on meanwhile.
func (w *Widget) failVideo(gen int, msg string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.open && w.gen == gen && w.state == StateVideo {
		w.videoErr = msg
	}
}

// SwitchToText tears down the video session and returns to the accumulated
// transcript.
func (w *Widget) SwitchToText() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.open {
		return ErrClosed
	}
	if w.state != StateVideo {
		return ErrInvalidTransition
	}

	w.teardownLocked()
	w.state = StateChat
	w.videoErr = ""
	return nil
}

// Close tears down any active video session and deactivates the widget from
// any state. Closing an already-closed widget is a no-op.
func (w *Widget) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.open {
		return
	}
	w.teardownLocked()
	w.open = false
	w.state = StateChat
	w.videoErr = ""
}

// teardownLocked releases the camera and forgets the video session. Safe to
// call with nothing active; the stream is stopped at most once. Bumps the
// generation so in-flight async results are discarded.
func (w *Widget) teardownLocked() {
	if w.stream != nil {
		w.stream.Stop()
		w.stream = nil
	}
	w.videoSession = nil
	w.gen++
}

// ActiveVideo reports whether a video session with an acquired stream is
// live.
func (w *Widget) ActiveVideo() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.videoSession != nil && w.stream != nil
}
