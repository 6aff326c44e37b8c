package models

import (
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"agrodesk/domain/core"
)

// User represents a system user
type User struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	Role      Role      `json:"role" db:"role"`
	IsActive  bool      `json:"is_active" db:"is_active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Validate normalizes the email and checks the role
func (u *User) Validate() error {
	if strings.TrimSpace(u.Name) == "" {
		return core.NewMissingFieldError("name")
	}
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if u.Email == "" {
		return core.NewMissingFieldError("email")
	}
	if _, err := mail.ParseAddress(u.Email); err != nil {
		return core.NewValidationError("email", "is not a valid address")
	}
	role, err := ParseRole(string(u.Role))
	if err != nil {
		return err
	}
	u.Role = role
	return nil
}

// Session returns the session this user acts under
func (u *User) Session() Session {
	return NewSession(u.ID, u.Role)
}
