// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package notify sends transactional notification emails through Resend.
// Notifications are best-effort: an unconfigured or failing mailer never
// blocks the request that triggered it.
package notify

import (
	"fmt"
	"html"
	"log/slog"
	"strings"

	"github.com/resendlabs/resend-go"
)

// Mailer sends notification emails. Implementations must be safe for
// concurrent use.
type Mailer interface {
	// SendBookingRequest notifies the team about a new booking request.
	SendBookingRequest(b BookingNotification) error
}

// BookingNotification carries the booking form fields into the email body.
type BookingNotification struct {
	Name          string
	Email         string
	Phone         string
	PreferredTime string
	Notes         string
}

// ResendMailer is the Resend-backed Mailer.
type ResendMailer struct {
	client *resend.Client
	from   string
	to     []string
}

// New creates a mailer. Returns nil when apiKey or recipients are missing;
// callers treat a nil Mailer as "notifications disabled".
func New(apiKey, from string, to []string) *ResendMailer {
	if apiKey == "" || len(to) == 0 {
		return nil
	}
	if from == "" {
		from = "Toti <noreply@stevetoti.com>"
	}
	return &ResendMailer{
		client: resend.NewClient(apiKey),
		from:   from,
		to:     to,
	}
}

// SendBookingRequest composes and sends the booking notification.
func (m *ResendMailer) SendBookingRequest(b BookingNotification) error {
	params := &resend.SendEmailRequest{
		From:    m.from,
		To:      m.to,
		Subject: fmt.Sprintf("New Booking Request from %s", b.Name),
		Html:    bookingHTML(b),
	}

	if _, err := m.client.Emails.Send(params); err != nil {
		return fmt.Errorf("notify: send booking email: %w", err)
	}
	slog.Info("booking notification sent", "name", b.Name)
	return nil
}

func bookingHTML(b BookingNotification) string {
	var sb strings.Builder
	sb.WriteString("<h2>New booking request</h2><table>")
	row := func(label, value string) {
		if value == "" {
			return
		}
		fmt.Fprintf(&sb, "<tr><td><strong>%s</strong></td><td>%s</td></tr>",
			html.EscapeString(label), html.EscapeString(value))
	}
	row("Name", b.Name)
	row("Email", b.Email)
	row("Phone", b.Phone)
	row("Preferred time", b.PreferredTime)
	row("Notes", b.Notes)
	sb.WriteString("</table>")
	return sb.String()
}
