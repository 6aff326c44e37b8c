package models

import (
	"strings"

	"github.com/google/uuid"

	"agrodesk/domain/core"
)

// Role is the application role carried in the caller's user metadata
type Role string

const (
	RoleUser       Role = "user"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super-admin"
)

// ParseRole validates a role string. Empty input maps to RoleUser.
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case "", RoleUser:
		return RoleUser, nil
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleSuperAdmin:
		return RoleSuperAdmin, nil
	}
	return "", core.NewEnumError("role", s, string(RoleUser), string(RoleAdmin), string(RoleSuperAdmin))
}

// Session identifies the caller of a scoped operation. It is passed
// explicitly; nothing reads the current user from ambient state.
type Session struct {
	UserID uuid.UUID `json:"user_id"`
	Role   Role      `json:"role"`
}

// NewSession builds a session for a user with the given role
func NewSession(userID uuid.UUID, role Role) Session {
	return Session{UserID: userID, Role: role}
}

// IsAuthenticated reports whether the session names a user
func (s Session) IsAuthenticated() bool {
	return s.UserID != uuid.Nil
}

// IsAdmin is true for admin and super-admin; those roles see every row
func (s Session) IsAdmin() bool {
	return s.Role == RoleAdmin || s.Role == RoleSuperAdmin
}

// Require returns core.ErrNoSession when the session is anonymous
func (s Session) Require() error {
	if !s.IsAuthenticated() {
		return core.ErrNoSession
	}
	return nil
}
