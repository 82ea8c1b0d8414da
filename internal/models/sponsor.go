package models

import "time"

// Sponsor is an event sponsor shown on the public site.
type Sponsor struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Category  string    `json:"category,omitempty"` // e.g. platinum, gold, media partner
	LogoURL   string    `json:"logo_url,omitempty"`
	Website   string    `json:"website,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
