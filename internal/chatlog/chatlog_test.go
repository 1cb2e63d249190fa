// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package chatlog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"totisite/internal/models"
	"totisite/internal/postgrest"
)

// fakeBackend imitates the two chat-log tables of the PostgREST API.
type fakeBackend struct {
	mux          *http.ServeMux
	sessionRows  string // JSON array returned for session lookups
	sessionDupe  bool   // session insert answers 409
	sessions     []map[string]any
	messages     []map[string]any
	messagesJSON string // JSON array returned for message reads
	lastQuery    map[string]string
}

func newFakeBackend() *fakeBackend {
	f := &fakeBackend{mux: http.NewServeMux(), sessionRows: "[]", messagesJSON: "[]"}

	f.mux.HandleFunc("/toti_chat_sessions", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			fmt.Fprint(w, f.sessionRows)
		case http.MethodPost:
			if f.sessionDupe {
				w.WriteHeader(http.StatusConflict)
				fmt.Fprint(w, `{"code":"23505","message":"duplicate key value"}`)
				return
			}
			var row map[string]any
			json.NewDecoder(r.Body).Decode(&row)
			f.sessions = append(f.sessions, row)
			w.WriteHeader(http.StatusCreated)
			fmt.Fprint(w, "[]")
		}
	})

	f.mux.HandleFunc("/toti_chat_messages", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			f.lastQuery = map[string]string{}
			for k, v := range r.URL.Query() {
				f.lastQuery[k] = v[0]
			}
			fmt.Fprint(w, f.messagesJSON)
		case http.MethodPost:
			var row map[string]any
			json.NewDecoder(r.Body).Decode(&row)
			f.messages = append(f.messages, row)
			w.WriteHeader(http.StatusCreated)
			fmt.Fprint(w, "[]")
		}
	})

	return f
}

func newTestStore(t *testing.T, f *fakeBackend) *RestStore {
	t.Helper()
	srv := httptest.NewServer(f.mux)
	t.Cleanup(srv.Close)
	s := NewRest(postgrest.New(srv.URL, "service-key"))
	s.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return s
}

func TestRestMessages_OrderedBySessionFilter(t *testing.T) {
	f := newFakeBackend()
	f.messagesJSON = `[
		{"id":"m1","session_id":"s1","role":"user","content":"hi","created_at":"2026-03-01T10:00:00Z"},
		{"id":"m2","session_id":"s1","role":"assistant","content":"hello!","created_at":"2026-03-01T10:00:05Z"}
	]`
	s := newTestStore(t, f)

	msgs, err := s.Messages(context.Background(), "s1")
	if err != nil {
		t.Fatalf("Messages: %v", err)
	}

	if f.lastQuery["session_id"] != "eq.s1" {
		t.Errorf("session_id filter = %q, want eq.s1", f.lastQuery["session_id"])
	}
	if f.lastQuery["order"] != "created_at.asc" {
		t.Errorf("order = %q, want created_at.asc", f.lastQuery["order"])
	}
	if len(msgs) != 2 || msgs[0].Role != models.RoleUser || msgs[1].Content != "hello!" {
		t.Errorf("messages = %+v", msgs)
	}
}

func TestRestMessages_UnknownSessionIsEmpty(t *testing.T) {
	s := newTestStore(t, newFakeBackend())

	msgs, err := s.Messages(context.Background(), "nope")
	if err != nil {
		t.Fatalf("Messages: %v", err)
	}
	if len(msgs) != 0 {
		t.Errorf("messages = %+v, want empty", msgs)
	}
}

func TestRestAppend_CreatesMissingSession(t *testing.T) {
	f := newFakeBackend()
	s := newTestStore(t, f)

	err := s.Append(context.Background(), "s1", "visitor-9", Message{Role: models.RoleUser, Content: "hi"})
	if err != nil {
		t.Fatalf("Append: %v", err)
	}

	if len(f.sessions) != 1 {
		t.Fatalf("sessions created = %d, want 1", len(f.sessions))
	}
	if f.sessions[0]["id"] != "s1" || f.sessions[0]["visitor_id"] != "visitor-9" {
		t.Errorf("session row = %+v", f.sessions[0])
	}
	if len(f.messages) != 1 {
		t.Fatalf("messages inserted = %d, want 1", len(f.messages))
	}
	if f.messages[0]["role"] != "user" || f.messages[0]["content"] != "hi" {
		t.Errorf("message row = %+v", f.messages[0])
	}
}

func TestRestAppend_SkipsSessionInsertWhenPresent(t *testing.T) {
	f := newFakeBackend()
	f.sessionRows = `[{"id":"s1"}]`
	s := newTestStore(t, f)

	if err := s.Append(context.Background(), "s1", "", Message{Role: models.RoleAssistant, Content: "hello"}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if len(f.sessions) != 0 {
		t.Errorf("sessions created = %d, want 0 for an existing session", len(f.sessions))
	}
	if len(f.messages) != 1 {
		t.Errorf("messages inserted = %d, want 1", len(f.messages))
	}
}

func TestRestAppend_VisitorIDDefaultsToSessionID(t *testing.T) {
	f := newFakeBackend()
	s := newTestStore(t, f)

	if err := s.Append(context.Background(), "s7", "", Message{Role: models.RoleUser, Content: "x"}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if f.sessions[0]["visitor_id"] != "s7" {
		t.Errorf("visitor_id = %v, want s7", f.sessions[0]["visitor_id"])
	}
}

func TestRestAppend_ToleratesConcurrentSessionCreate(t *testing.T) {
	f := newFakeBackend()
	f.sessionDupe = true // lookup misses but the insert hits a duplicate
	s := newTestStore(t, f)

	if err := s.Append(context.Background(), "s1", "", Message{Role: models.RoleUser, Content: "hi"}); err != nil {
		t.Fatalf("Append after duplicate session: %v", err)
	}
	if len(f.messages) != 1 {
		t.Errorf("messages inserted = %d, want 1", len(f.messages))
	}
}

func TestRestAppend_UsesMessageTimestampWhenSet(t *testing.T) {
	f := newFakeBackend()
	s := newTestStore(t, f)

	at := time.Date(2026, 2, 14, 9, 30, 0, 0, time.UTC)
	if err := s.Append(context.Background(), "s1", "", Message{Role: models.RoleUser, Content: "hi", CreatedAt: at}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if got := f.messages[0]["created_at"]; got != "2026-02-14T09:30:00Z" {
		t.Errorf("created_at = %v", got)
	}
}
