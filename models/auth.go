package models

import "strings"

// SignupRequest is the body of POST /auth/signup
type SignupRequest struct {
	Name     string   `json:"name" validate:"required,min=2,max=100"`
	Email    string   `json:"email" validate:"required,email,max=255"`
	Password string   `json:"password" validate:"required,min=8,max=72,maxbytes=72"`
	Role     UserRole `json:"role" validate:"oneof=user admin"`
}

// Normalize trims and lower-cases the fields the schema transforms and
// applies the default role.
func (r *SignupRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = normalizeEmail(r.Email)
	if r.Role == "" {
		r.Role = RoleUser
	}
}

// SignInRequest is the body of POST /auth/sign-in
type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

// Normalize lower-cases and trims the email.
func (r *SignInRequest) Normalize() {
	r.Email = normalizeEmail(r.Email)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// AuthResponse is returned by signup and sign-in
type AuthResponse struct {
	Message string     `json:"message"`
	User    PublicUser `json:"user"`
}

// MessageResponse carries a bare status message
type MessageResponse struct {
	Message string `json:"message"`
}
