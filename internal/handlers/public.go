// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"totisite/internal/assistant"
	"totisite/internal/avatar"
	"totisite/internal/chatlog"
	"totisite/internal/models"
	"totisite/internal/notify"
	"totisite/internal/postgrest"
)

// defaultLeadSource tags leads that arrive without an explicit source.
const defaultLeadSource = "stevetoti-website"

// Visitor groups the public, unauthenticated endpoints.
type Visitor struct {
	assist  *assistant.Service
	avatars avatar.Provider
	rest    *postgrest.Client
	log     chatlog.Store // may be nil
	mailer  notify.Mailer // may be nil

	// contact-form edge function proxy target.
	functionsURL string
	anonKey      string
	client       *http.Client
}

// NewVisitor creates the visitor handler group. log and mailer are optional.
func NewVisitor(assist *assistant.Service, avatars avatar.Provider, rest *postgrest.Client,
	log chatlog.Store, mailer notify.Mailer, functionsURL, anonKey string) *Visitor {
	return &Visitor{
		assist:       assist,
		avatars:      avatars,
		rest:         rest,
		log:          log,
		mailer:       mailer,
		functionsURL: functionsURL,
		anonKey:      anonKey,
		client:       &http.Client{Timeout: 30 * time.Second},
	}
}

type chatRequest struct {
	Messages  []assistant.Message `json:"messages"`
	SessionID string              `json:"sessionId"`
}

// Chat serves POST /api/chat. Provider failures never surface; the fallback
// responder answers instead.
func (v *Visitor) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if len(req.Messages) == 0 {
		respondError(w, http.StatusBadRequest, "Messages are required")
		return
	}

	reply, err := v.assist.Converse(r.Context(), req.Messages, req.SessionID)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Messages are required")
		return
	}
	respondJSON(w, http.StatusOK, reply)
}

// AnamSession serves POST /api/anam/session: a short-lived video-avatar
// session token.
func (v *Visitor) AnamSession(w http.ResponseWriter, r *http.Request) {
	sess, err := v.avatars.CreateSession(r.Context())
	if err != nil {
		respondUpstreamError(w, err, "Failed to create video session")
		return
	}
	respondJSON(w, http.StatusOK, sess)
}

type leadRequest struct {
	VisitorName  string `json:"visitorName"`
	VisitorPhone string `json:"visitorPhone"`
	CallReason   string `json:"callReason"`
	SessionID    string `json:"sessionId"`
	Source       string `json:"source"`
}

// Lead serves POST /api/lead: the lead-capture form submitted before a video
// call. The lead lands in the chat sessions table with status video_started.
func (v *Visitor) Lead(w http.ResponseWriter, r *http.Request) {
	var req leadRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.VisitorName == "" || req.VisitorPhone == "" {
		respondError(w, http.StatusBadRequest, "Name and phone number are required")
		return
	}

	visitorID := req.SessionID
	if visitorID == "" {
		visitorID = "visitor-" + uuid.NewString()
	}
	source := req.Source
	if source == "" {
		source = defaultLeadSource
	}

	payload := map[string]any{
		"visitor_id":    visitorID,
		"visitor_name":  req.VisitorName,
		"visitor_phone": req.VisitorPhone,
		"call_reason":   req.CallReason,
		"source":        source,
		"status":        models.SessionStatusVideoStarted,
		"created_at":    time.Now().UTC().Format(time.RFC3339),
	}

	var created []models.ChatSession
	if err := v.rest.Insert(r.Context(), "toti_chat_sessions", payload, &created); err != nil {
		respondUpstreamError(w, err, "Failed to save lead information")
		return
	}

	sessionID := req.SessionID
	if len(created) > 0 {
		sessionID = created[0].ID
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true, "sessionId": sessionID})
}

type contactRequest struct {
	Name    string  `json:"name"`
	Email   string  `json:"email"`
	Company *string `json:"company,omitempty"`
	Service *string `json:"service,omitempty"`
	Budget  *string `json:"budget,omitempty"`
	Message string  `json:"message"`
}

// Contact serves POST /api/contact by relaying the validated form to the
// contact-form edge function, which owns persistence and the reply email.
func (v *Visitor) Contact(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Name == "" || req.Email == "" || req.Message == "" {
		respondError(w, http.StatusBadRequest, "Name, email, and message are required")
		return
	}
	if v.anonKey == "" {
		respondError(w, http.StatusInternalServerError, "Service not configured")
		return
	}

	payload, err := json.Marshal(req)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to process request")
		return
	}

	proxyReq, err := http.NewRequestWithContext(r.Context(), http.MethodPost,
		v.functionsURL+"/contact-form", bytes.NewReader(payload))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to process request")
		return
	}
	proxyReq.Header.Set("Content-Type", "application/json")
	proxyReq.Header.Set("Authorization", "Bearer "+v.anonKey)

	resp, err := v.client.Do(proxyReq)
	if err != nil {
		slog.Error("contact form relay failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to send message")
		return
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		slog.Error("contact form rejected", "status", resp.StatusCode, "body", string(body))
		msg := "Failed to send message"
		var upstream struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(body, &upstream) == nil && upstream.Error != "" {
			msg = upstream.Error
		}
		respondError(w, resp.StatusCode, msg)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(body)
}

// emailPattern is a lightweight shape check, not full RFC validation:
// something@something.something, no whitespace.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func emailValid(email string) bool {
	return emailPattern.MatchString(email)
}

type newsletterRequest struct {
	Email string  `json:"email"`
	Name  *string `json:"name"`
}

// Newsletter serves POST /api/newsletter. The email shape is checked before
// any upstream call; a duplicate subscriber maps to 409.
func (v *Visitor) Newsletter(w http.ResponseWriter, r *http.Request) {
	var req newsletterRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Email == "" {
		respondError(w, http.StatusBadRequest, "Email is required")
		return
	}
	if !emailValid(req.Email) {
		respondError(w, http.StatusBadRequest, "Invalid email format")
		return
	}

	payload := map[string]any{
		"email":  strings.ToLower(strings.TrimSpace(req.Email)),
		"name":   req.Name,
		"status": "active",
		"source": "website",
	}

	if err := v.rest.Insert(r.Context(), "newsletter_subscribers", payload, nil); err != nil {
		var ue *postgrest.UpstreamError
		if errors.As(err, &ue) && ue.IsDuplicate() {
			respondError(w, http.StatusConflict, "This email is already subscribed")
			return
		}
		respondUpstreamError(w, err, "Failed to subscribe")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Successfully subscribed!"})
}

type sessionMessage struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// ChatSessionGet serves GET /api/chat-session?sessionId=…: the stored
// transcript. Missing parameters and store errors both yield an empty list;
// a lost transcript is not worth breaking the widget over.
func (v *Visitor) ChatSessionGet(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("sessionId")
	empty := map[string]any{"messages": []sessionMessage{}}

	if sessionID == "" || v.log == nil {
		respondJSON(w, http.StatusOK, empty)
		return
	}

	msgs, err := v.log.Messages(r.Context(), sessionID)
	if err != nil {
		slog.Error("chat session load failed", "error", err)
		respondJSON(w, http.StatusOK, empty)
		return
	}

	out := make([]sessionMessage, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, sessionMessage{
			ID:        m.ID,
			Role:      string(m.Role),
			Content:   m.Content,
			Timestamp: m.CreatedAt,
		})
	}
	respondJSON(w, http.StatusOK, map[string]any{"messages": out})
}

type saveMessageRequest struct {
	SessionID string `json:"sessionId"`
	VisitorID string `json:"visitorId"`
	Message   struct {
		Role      string     `json:"role"`
		Content   string     `json:"content"`
		Timestamp *time.Time `json:"timestamp"`
	} `json:"message"`
}

// ChatSessionPost serves POST /api/chat-session: persist one message,
// creating the session row on first write.
func (v *Visitor) ChatSessionPost(w http.ResponseWriter, r *http.Request) {
	var req saveMessageRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.SessionID == "" || req.Message.Content == "" {
		respondError(w, http.StatusBadRequest, "Missing required fields")
		return
	}
	if v.log == nil {
		respondError(w, http.StatusInternalServerError, "Service not configured")
		return
	}

	msg := chatlog.Message{
		Role:    models.MessageRole(req.Message.Role),
		Content: req.Message.Content,
	}
	if req.Message.Timestamp != nil {
		msg.CreatedAt = *req.Message.Timestamp
	}

	if err := v.log.Append(r.Context(), req.SessionID, req.VisitorID, msg); err != nil {
		respondUpstreamError(w, err, "Failed to save")
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

type bookingRequest struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	PreferredTime string `json:"preferredTime"`
	Notes         string `json:"notes"`
	SessionID     string `json:"sessionId"`
}

// Booking serves POST /api/booking-request. Persistence and the notification
// email are both best-effort: the visitor gets a success as long as the form
// was valid, and failures are logged for follow-up.
func (v *Visitor) Booking(w http.ResponseWriter, r *http.Request) {
	var req bookingRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Name == "" || req.Email == "" {
		respondError(w, http.StatusBadRequest, "Name and email are required")
		return
	}

	payload := map[string]any{
		"name":            req.Name,
		"email":           req.Email,
		"phone":           nilIfEmpty(req.Phone),
		"preferred_time":  nilIfEmpty(req.PreferredTime),
		"notes":           nilIfEmpty(req.Notes),
		"chat_session_id": nilIfEmpty(req.SessionID),
		"status":          "pending",
		"source":          "chat_assistant",
	}
	if err := v.rest.Insert(r.Context(), "booking_requests", payload, nil); err != nil {
		slog.Error("booking request save failed", "error", err)
	}

	if v.mailer != nil {
		if err := v.mailer.SendBookingRequest(notify.BookingNotification{
			Name:          req.Name,
			Email:         req.Email,
			Phone:         req.Phone,
			PreferredTime: req.PreferredTime,
			Notes:         req.Notes,
		}); err != nil {
			slog.Error("booking notification failed", "error", err)
		}
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Booking request submitted successfully",
	})
}

// Health serves GET /health.
func (v *Visitor) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func nilIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
