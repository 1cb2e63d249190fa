// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package widget

import (
	"context"
	"errors"
	"testing"

	"totisite/internal/assistant"
	"totisite/internal/avatar"
)

type stubAssistant struct {
	reply  *assistant.Reply
	err    error
	gotLen int
	hook   func() // runs mid-call, before returning
}

func (s *stubAssistant) Converse(_ context.Context, msgs []assistant.Message, _ string) (*assistant.Reply, error) {
	s.gotLen = len(msgs)
	if s.hook != nil {
		s.hook()
	}
	return s.reply, s.err
}

type stubLeads struct {
	saved []Lead
	err   error
}

func (s *stubLeads) SaveLead(_ context.Context, l Lead) (string, error) {
	s.saved = append(s.saved, l)
	return "sess-1", s.err
}

type stubSessions struct {
	sess  *avatar.Session
	err   error
	calls int
}

func (s *stubSessions) CreateSession(context.Context) (*avatar.Session, error) {
	s.calls++
	return s.sess, s.err
}

type stubStream struct {
	stops int
}

func (s *stubStream) Stop() { s.stops++ }

type stubCamera struct {
	stream *stubStream
	err    error
	calls  int
}

func (c *stubCamera) Acquire(context.Context) (Stream, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return c.stream, nil
}

func newTestWidget() (*Widget, *stubAssistant, *stubLeads, *stubSessions, *stubCamera) {
	a := &stubAssistant{reply: &assistant.Reply{Message: "sure!"}}
	l := &stubLeads{}
	s := &stubSessions{sess: &avatar.Session{SessionToken: "tok"}}
	c := &stubCamera{stream: &stubStream{}}
	return New(a, l, s, c, "visitor-1"), a, l, s, c
}

func TestOpen_GreetsOncePerLifetime(t *testing.T) {
	w, _, _, _, _ := newTestWidget()

	w.Open()
	if got := len(w.Transcript()); got != 2 {
		t.Fatalf("transcript after first open = %d messages, want 2 greetings", got)
	}

	w.Close()
	w.Open()
	if got := len(w.Transcript()); got != 2 {
		t.Errorf("transcript after reopen = %d messages, greeting must not repeat", got)
	}
}

func TestSendMessage_AppendsUserAndReply(t *testing.T) {
	w, a, _, _, _ := newTestWidget()
	w.Open()

	if err := w.SendMessage(context.Background(), "what services?"); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}

	tr := w.Transcript()
	if len(tr) != 4 {
		t.Fatalf("transcript = %d messages, want 4 (2 greetings + user + reply)", len(tr))
	}
	if tr[2].Role != "user" || tr[2].Content != "what services?" {
		t.Errorf("user message = %+v", tr[2])
	}
	if tr[3].Role != "assistant" || tr[3].Content != "sure!" {
		t.Errorf("reply = %+v", tr[3])
	}
	// The assistant sees the full history including the new user message.
	if a.gotLen != 3 {
		t.Errorf("assistant received %d messages, want 3", a.gotLen)
	}
}

func TestSendMessage_AssistantFailureShowsFriendlyText(t *testing.T) {
	w, a, _, _, _ := newTestWidget()
	a.reply = nil
	a.err = errors.New("all providers down")
	w.Open()

	if err := w.SendMessage(context.Background(), "hi"); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}

	tr := w.Transcript()
	last := tr[len(tr)-1]
	if last.Content != connectionErrorMessage {
		t.Errorf("last message = %q, want connection error text", last.Content)
	}
}

func TestSendMessage_ReplyDiscardedAfterClose(t *testing.T) {
	w, a, _, _, _ := newTestWidget()
	w.Open()
	// Close the widget while the assistant call is in flight.
	a.hook = w.Close

	if err := w.SendMessage(context.Background(), "hi"); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}

	tr := w.Transcript()
	if last := tr[len(tr)-1]; last.Role != "user" {
		t.Errorf("last message role = %q, stale reply must be discarded", last.Role)
	}
}

func TestUpgradeToVideo_EntersLeadFormWithDefaults(t *testing.T) {
	w, _, _, _, _ := newTestWidget()
	w.Open()

	if err := w.UpgradeToVideo(); err != nil {
		t.Fatalf("UpgradeToVideo: %v", err)
	}
	if w.State() != StateLeadForm {
		t.Fatalf("state = %v, want lead-form", w.State())
	}
	name, phone, reason := w.LeadForm()
	if name != "" || phone != "" {
		t.Errorf("form not blank: name=%q phone=%q", name, phone)
	}
	if reason != "Discussing a new project" {
		t.Errorf("default reason = %q, want first call reason", reason)
	}
}

func TestUpgradeToVideo_OnlyFromChat(t *testing.T) {
	w, _, _, _, _ := newTestWidget()
	w.Open()
	w.UpgradeToVideo()

	if err := w.UpgradeToVideo(); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("second UpgradeToVideo = %v, want ErrInvalidTransition", err)
	}
}

func TestSubmitLead_MissingFieldsMakeNoCalls(t *testing.T) {
	w, _, leads, sessions, camera := newTestWidget()
	w.Open()
	w.UpgradeToVideo()

	tests := []struct {
		name, leadName, phone string
	}{
		{"empty phone", "Ada", ""},
		{"empty name", "", "+40700000000"},
		{"both empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := w.SubmitLead(context.Background(), tt.leadName, tt.phone, "")
			if !errors.Is(err, ErrMissingFields) {
				t.Fatalf("SubmitLead = %v, want ErrMissingFields", err)
			}
			if len(leads.saved) != 0 || sessions.calls != 0 || camera.calls != 0 {
				t.Error("collaborators were called for an invalid form")
			}
			if w.State() != StateLeadForm {
				t.Errorf("state = %v, want to stay in lead-form", w.State())
			}
		})
	}
}

func TestSubmitLead_StartsVideo(t *testing.T) {
	w, _, leads, _, camera := newTestWidget()
	w.Open()
	w.UpgradeToVideo()

	if err := w.SubmitLead(context.Background(), "Ada", "+40700000000", "Other"); err != nil {
		t.Fatalf("SubmitLead: %v", err)
	}

	if w.State() != StateVideo {
		t.Fatalf("state = %v, want video", w.State())
	}
	if !w.ActiveVideo() {
		t.Error("ActiveVideo = false after successful submit")
	}
	if camera.calls != 1 {
		t.Errorf("camera acquired %d times, want 1", camera.calls)
	}
	if len(leads.saved) != 1 {
		t.Fatalf("leads saved = %d, want 1", len(leads.saved))
	}
	if l := leads.saved[0]; l.VisitorName != "Ada" || l.VisitorPhone != "+40700000000" || l.CallReason != "Other" {
		t.Errorf("saved lead = %+v", l)
	}
}

func TestSubmitLead_EmptyReasonDefaults(t *testing.T) {
	w, _, leads, _, _ := newTestWidget()
	w.Open()
	w.UpgradeToVideo()

	if err := w.SubmitLead(context.Background(), "Ada", "+40700000000", ""); err != nil {
		t.Fatalf("SubmitLead: %v", err)
	}
	if got := leads.saved[0].CallReason; got != CallReasons[0] {
		t.Errorf("reason = %q, want default %q", got, CallReasons[0])
	}
}

func TestSubmitLead_LeadSaveFailureStillStartsVideo(t *testing.T) {
	w, _, leads, _, _ := newTestWidget()
	leads.err = errors.New("postgrest down")
	w.Open()
	w.UpgradeToVideo()

	if err := w.SubmitLead(context.Background(), "Ada", "+40700000000", ""); err != nil {
		t.Fatalf("SubmitLead: %v", err)
	}
	if w.State() != StateVideo || !w.ActiveVideo() {
		t.Error("video must start even when the lead save fails")
	}
}

func TestSubmitLead_SessionFailureShowsErrorWithoutCamera(t *testing.T) {
	w, _, _, sessions, camera := newTestWidget()
	sessions.sess = nil
	sessions.err = errors.New("anam quota")
	w.Open()
	w.UpgradeToVideo()

	if err := w.SubmitLead(context.Background(), "Ada", "+40700000000", ""); err != nil {
		t.Fatalf("SubmitLead: %v", err)
	}
	if w.State() != StateVideo {
		t.Fatalf("state = %v, want video with an error banner", w.State())
	}
	if w.VideoError() == "" {
		t.Error("VideoError empty after session failure")
	}
	if camera.calls != 0 {
		t.Error("camera acquired despite session failure")
	}
	// SwitchToText remains available as the way back.
	if err := w.SwitchToText(); err != nil {
		t.Errorf("SwitchToText after failure: %v", err)
	}
}

func TestSubmitLead_CameraFailureShowsError(t *testing.T) {
	w, _, _, _, camera := newTestWidget()
	camera.err = errors.New("permission denied")
	w.Open()
	w.UpgradeToVideo()

	if err := w.SubmitLead(context.Background(), "Ada", "+40700000000", ""); err != nil {
		t.Fatalf("SubmitLead: %v", err)
	}
	if w.VideoError() == "" {
		t.Error("VideoError empty after camera failure")
	}
	if w.ActiveVideo() {
		t.Error("ActiveVideo = true with no stream")
	}
}

func TestSwitchToText_ReleasesCameraOnceAndKeepsTranscript(t *testing.T) {
	w, _, _, _, camera := newTestWidget()
	w.Open()
	w.SendMessage(context.Background(), "hello")
	w.UpgradeToVideo()
	w.SubmitLead(context.Background(), "Ada", "+40700000000", "")

	if err := w.SwitchToText(); err != nil {
		t.Fatalf("SwitchToText: %v", err)
	}

	if w.State() != StateChat {
		t.Errorf("state = %v, want chat", w.State())
	}
	if camera.stream.stops != 1 {
		t.Errorf("stream stopped %d times, want exactly 1", camera.stream.stops)
	}
	if got := len(w.Transcript()); got != 4 {
		t.Errorf("transcript = %d messages, must survive the video round-trip", got)
	}

	// Close afterwards must not stop the stream a second time.
	w.Close()
	if camera.stream.stops != 1 {
		t.Errorf("stream stopped %d times after Close, want still 1", camera.stream.stops)
	}
}

func TestClose_FromVideoReleasesCameraExactlyOnce(t *testing.T) {
	w, _, _, _, camera := newTestWidget()
	w.Open()
	w.UpgradeToVideo()
	w.SubmitLead(context.Background(), "Ada", "+40700000000", "")

	w.Close()
	w.Close() // second close is a no-op

	if camera.stream.stops != 1 {
		t.Errorf("stream stopped %d times, want exactly 1", camera.stream.stops)
	}
	if w.ActiveVideo() {
		t.Error("ActiveVideo = true after Close")
	}
}

func TestClose_DuringVideoConnectReleasesFreshStream(t *testing.T) {
	w, _, _, _, camera := newTestWidget()
	w.Open()
	w.UpgradeToVideo()

	// Close the widget between the session grant and the camera grant:
	// whatever the camera hands back afterwards must be stopped, not kept.
	camera.stream = &stubStream{}
	w.camera = &closingCamera{inner: camera, widget: w}

	if err := w.SubmitLead(context.Background(), "Ada", "+40700000000", ""); err != nil {
		t.Fatalf("SubmitLead: %v", err)
	}
	if camera.stream.stops != 1 {
		t.Errorf("stream stopped %d times, want 1 (released on arrival)", camera.stream.stops)
	}
	if w.ActiveVideo() {
		t.Error("ActiveVideo = true on a closed widget")
	}
}

// closingCamera closes the widget while the acquisition is in flight.
type closingCamera struct {
	inner  *stubCamera
	widget *Widget
}

func (c *closingCamera) Acquire(ctx context.Context) (Stream, error) {
	c.widget.Close()
	return c.inner.Acquire(ctx)
}

func TestTransitions_RejectWrongStates(t *testing.T) {
	w, _, _, _, _ := newTestWidget()
	w.Open()

	if err := w.SubmitLead(context.Background(), "Ada", "+40", ""); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("SubmitLead from chat = %v, want ErrInvalidTransition", err)
	}
	if err := w.SwitchToText(); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("SwitchToText from chat = %v, want ErrInvalidTransition", err)
	}

	w.UpgradeToVideo()
	if err := w.SendMessage(context.Background(), "hi"); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("SendMessage from lead-form = %v, want ErrInvalidTransition", err)
	}
}

func TestClosedWidget_RejectsEverything(t *testing.T) {
	w, _, _, _, _ := newTestWidget()
	w.Open()
	w.Close()

	if err := w.SendMessage(context.Background(), "hi"); !errors.Is(err, ErrClosed) {
		t.Errorf("SendMessage = %v, want ErrClosed", err)
	}
	if err := w.UpgradeToVideo(); !errors.Is(err, ErrClosed) {
		t.Errorf("UpgradeToVideo = %v, want ErrClosed", err)
	}
}
