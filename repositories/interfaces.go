package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/upb/auth-service/models"
)

var (
	// ErrNotFound is returned when no row matches the lookup
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateEmail is returned when the email is already registered
	ErrDuplicateEmail = errors.New("email already exists")
)

// UserRepository handles user data operations
type UserRepository interface {
	// Create inserts a new user. The store enforces email uniqueness
	// atomically and reports a collision as ErrDuplicateEmail.
	Create(ctx context.Context, user *models.User) error

	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)

	// GetByEmail retrieves a user by normalized email
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// Repositories aggregates all repository interfaces
type Repositories struct {
	Users UserRepository
}
