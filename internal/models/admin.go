package models

import (
	"time"

	"github.com/google/uuid"
)

// Role represents an admin's role on the dashboard.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleScanner Role = "scanner" // check-in desk account; can scan but not manage content
)

// Admin is a dashboard user.
type Admin struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	FullName  string    `json:"full_name"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AdminPublic is Admin without sensitive fields for API responses.
type AdminPublic struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// ToPublic converts Admin to AdminPublic.
func (a *Admin) ToPublic() AdminPublic {
	return AdminPublic{
		ID:        a.ID,
		Email:     a.Email,
		FullName:  a.FullName,
		Role:      a.Role,
		CreatedAt: a.CreatedAt,
	}
}
