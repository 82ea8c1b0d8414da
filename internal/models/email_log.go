package models

import (
	"time"

	"github.com/google/uuid"
)

// Email types recorded in email_logs.
const (
	EmailTypeTicket = "ticket"
	EmailTypeResend = "ticket_resend"
)

// Email delivery statuses.
const (
	EmailLogStatusSent   = "sent"
	EmailLogStatusFailed = "failed"
)

// EmailLog records one attempted ticket email delivery. Written by the
// worker, never by the request path.
type EmailLog struct {
	ID             uuid.UUID  `json:"id"`
	GuestID        *int64     `json:"guest_id,omitempty"`
	EmailType      string     `json:"email_type"`
	RecipientEmail string     `json:"recipient_email"`
	Subject        string     `json:"subject,omitempty"`
	Status         string     `json:"status"`
	SentAt         *time.Time `json:"sent_at,omitempty"`
	ErrorMessage   string     `json:"error_message,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}
