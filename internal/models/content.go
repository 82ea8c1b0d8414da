package models

import "time"

// Content is a key-value pair for editable site copy (hero text, venue
// address, contact info and so on).
type Content struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}
