package ports

import (
	"context"

	"agrodesk/models"

	"github.com/google/uuid"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	// GetUserByID retrieves a user by their ID
	GetUserByID(ctx context.Context, userID uuid.UUID) (*models.User, error)

	// GetUserByEmail retrieves a user by email, case-insensitively
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// CreateUser creates a new user
	CreateUser(ctx context.Context, user *models.User) error

	// SetRole changes a user's role
	SetRole(ctx context.Context, userID uuid.UUID, role models.Role) error

	// ListUsers returns all users, newest first
	ListUsers(ctx context.Context) ([]*models.User, error)
}
