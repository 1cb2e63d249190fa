// Package models defines the record types exchanged with the TotiRoom
// backend. All durable state lives upstream; these types are the validated
// shapes of what PostgREST returns, not ORM entities.
package models

import "time"

// ContactStatus tracks how far an inquiry has been processed by the admin.
type ContactStatus string

const (
	ContactStatusNew       ContactStatus = "new"
	ContactStatusRead      ContactStatus = "read"
	ContactStatusContacted ContactStatus = "contacted"
)

// ContactSubmission is a message sent through the contact form.
type ContactSubmission struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Email     string        `json:"email"`
	Company   *string       `json:"company,omitempty"`
	Service   *string       `json:"service,omitempty"`
	Budget    *string       `json:"budget,omitempty"`
	Message   string        `json:"message"`
	Status    ContactStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
}

// SessionStatusVideoStarted marks a chat session that became a video call.
// Sessions carrying this status are listed as calls, everything else as chats.
const SessionStatusVideoStarted = "video_started"

// ChatSession groups the messages of one visitor conversation. When the
// visitor upgrades to a video call the same row doubles as the lead record:
// the lead-capture form fills VisitorName/VisitorPhone/CallReason and the
// status flips to video_started.
type ChatSession struct {
	ID            string     `json:"id"`
	VisitorID     string     `json:"visitor_id"`
	VisitorName   *string    `json:"visitor_name,omitempty"`
	VisitorPhone  *string    `json:"visitor_phone,omitempty"`
	CallReason    *string    `json:"call_reason,omitempty"`
	Source        *string    `json:"source,omitempty"`
	Status        string     `json:"status"`
	LeadQualified *bool      `json:"lead_qualified,omitempty"` // nil = not yet reviewed
	StartedAt     *time.Time `json:"started_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// IsCall reports whether this session represents a video call lead.
func (s *ChatSession) IsCall() bool {
	return s.Status == SessionStatusVideoStarted
}

// MessageRole is the author of a chat message.
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// ChatMessage is one utterance inside a chat session. Messages are append
// only and ordered by creation time.
type ChatMessage struct {
	ID        string      `json:"id"`
	SessionID string      `json:"session_id"`
	Role      MessageRole `json:"role"`
	Content   string      `json:"content"`
	CreatedAt time.Time   `json:"created_at"`
}

// NewsletterSubscriber is a signup from the newsletter form. Email is unique
// upstream; a duplicate insert surfaces as a conflict, not a second row.
type NewsletterSubscriber struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         *string   `json:"name,omitempty"`
	Status       string    `json:"status"`
	Source       string    `json:"source"`
	SubscribedAt time.Time `json:"subscribed_at"`
}

// BlogPost is an article managed through the admin editor.
type BlogPost struct {
	ID           string     `json:"id,omitempty"`
	Title        string     `json:"title"`
	Slug         string     `json:"slug"`
	Excerpt      string     `json:"excerpt"`
	Content      string     `json:"content"` // stored as HTML
	Category     string     `json:"category"`
	ImageURL     string     `json:"image_url"`
	Keywords     []string   `json:"keywords"`
	FocusKeyword *string    `json:"focus_keyword,omitempty"`
	ReadTime     string     `json:"read_time"`
	Published    bool       `json:"published"`
	PublishedAt  *time.Time `json:"published_at"`
	SiteID       string     `json:"site_id"`
	CreatedAt    time.Time  `json:"created_at,omitempty"`
	UpdatedAt    time.Time  `json:"updated_at,omitempty"`
}

// SEOSettings is the flat key/value view of the per-site SEO configuration.
// Upstream it is stored as one row per key; the gateway assembles the map.
type SEOSettings map[string]string

// Known SEO setting keys.
const (
	SettingSiteTitle           = "site_title"
	SettingSiteDescription     = "site_description"
	SettingGA4MeasurementID    = "ga4_measurement_id"
	SettingSearchConsoleID     = "google_search_console_id"
	SettingFacebookPixelID     = "facebook_pixel_id"
	SettingTwitterHandle       = "twitter_handle"
	SettingOGImage             = "og_image"
)

// SEOSettingRow is the upstream storage shape for a single setting.
type SEOSettingRow struct {
	SiteID       string `json:"site_id"`
	SettingKey   string `json:"setting_key"`
	SettingValue string `json:"setting_value"`
}
