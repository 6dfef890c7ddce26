package models

import (
	"time"

	"github.com/google/uuid"
)

// UserRole represents the role of a user; it selects the rate-limit tier.
type UserRole string

const (
	RoleAdmin UserRole = "admin"
	RoleUser  UserRole = "user"
	// RoleGuest is never stored; it labels unauthenticated traffic.
	RoleGuest UserRole = "guest"
)

// User represents a registered account
type User struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	Password  string    `json:"-" db:"password"` // bcrypt hash
	Role      UserRole  `json:"role" db:"role"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// TableName returns the table name for the User model
func (User) TableName() string {
	return "users"
}

// NewUser creates a new User instance with a fresh ID.
// passwordHash must already be hashed.
func NewUser(name, email, passwordHash string, role UserRole) *User {
	if role == "" {
		role = RoleUser
	}
	return &User{
		ID:        uuid.New(),
		Name:      name,
		Email:     email,
		Password:  passwordHash,
		Role:      role,
		CreatedAt: time.Now().UTC(),
	}
}

// IsAdmin returns true if the user has admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// PublicUser is the client-visible projection of a User
type PublicUser struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Role  UserRole  `json:"role"`
}

// Public strips everything that must not leave the server.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Role:  u.Role,
	}
}
