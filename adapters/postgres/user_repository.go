package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"agrodesk/domain/core"
	"agrodesk/models"
	"agrodesk/ports"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const userColumns = `id, name, email, role, is_active, created_at, updated_at`

// UserRepositoryImpl implements UserRepository for PostgreSQL
type UserRepositoryImpl struct {
	db *sqlx.DB
}

// NewUserRepository creates a new PostgreSQL user repository
func NewUserRepository(db *sqlx.DB) ports.UserRepository {
	return &UserRepositoryImpl{db: db}
}

// GetUserByID retrieves a user by their ID
func (r *UserRepositoryImpl) GetUserByID(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE id = $1`, userID)
	if err != nil {
		return nil, getErr(err, core.ErrUserNotFound, userID, "get user")
	}
	return &user, nil
}

// GetUserByEmail retrieves a user by email
func (r *UserRepositoryImpl) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	email = strings.ToLower(strings.TrimSpace(email))
	err := r.db.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE lower(email) = $1`, email)
	if err != nil {
		return nil, getErr(err, core.ErrUserNotFound, email, "get user by email")
	}
	return &user, nil
}

// CreateUser creates a new user
func (r *UserRepositoryImpl) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == uuid.Nil {
		user.ID = core.NewID()
	}
	now := time.Now().UTC()
	user.CreatedAt, user.UpdatedAt = now, now
	user.IsActive = true

	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO users (id, name, email, role, is_active, created_at, updated_at)
		VALUES (:id, :name, :email, :role, :is_active, :created_at, :updated_at)
	`, user)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", uniqueErr(err, "email"))
	}
	return nil
}

// SetRole changes a user's role
func (r *UserRepositoryImpl) SetRole(ctx context.Context, userID uuid.UUID, role models.Role) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE users SET role = $2, updated_at = NOW() WHERE id = $1`, userID, role)
	if err != nil {
		return fmt.Errorf("failed to set role: %w", err)
	}
	return affected(result, core.ErrUserNotFound, userID)
}

// ListUsers returns all users
func (r *UserRepositoryImpl) ListUsers(ctx context.Context) ([]*models.User, error) {
	users := make([]*models.User, 0)
	err := r.db.SelectContext(ctx, &users, `SELECT `+userColumns+` FROM users ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}
