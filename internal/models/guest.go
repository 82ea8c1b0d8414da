package models

import "time"

// GuestStatus is the attendance status of a guest.
type GuestStatus string

const (
	// GuestStatusPending means the guest registered but has not checked in.
	GuestStatusPending GuestStatus = "pending"
	// GuestStatusAttended means the guest's QR was scanned at check-in.
	// Terminal for the lifetime of the record.
	GuestStatusAttended GuestStatus = "attended"
)

// DefaultInstitution is the placeholder used when registration omits instansi.
const DefaultInstitution = "Umum"

// Guest is a registered event participant. Email and normalized phone are
// unique while the record exists; guests are hard-deleted only, there is no
// inactive state (unlike agendas/sponsors).
type Guest struct {
	ID          int64       `json:"id"`
	FullName    string      `json:"nama"`
	Email       string      `json:"email"`
	Phone       string      `json:"whatsapp"` // normalized, "+<country code><digits>"
	Institution string      `json:"instansi"`
	Status      GuestStatus `json:"status"`
	Token       string      `json:"-"` // verification token; travels only inside the QR
	QRPayload   string      `json:"-"`
	AttendedAt  *time.Time  `json:"attended_at,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}
