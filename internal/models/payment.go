package models

import "time"

// PaymentSetting is the bank transfer destination shown to participants.
// Only one setting is active at a time.
type PaymentSetting struct {
	ID            int64     `json:"id"`
	BankName      string    `json:"bank_name"`
	AccountNumber string    `json:"account_number"`
	AccountHolder string    `json:"account_holder"`
	Amount        int64     `json:"amount"` // smallest currency unit (rupiah)
	Notes         string    `json:"notes,omitempty"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
