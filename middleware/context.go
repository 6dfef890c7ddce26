package middleware

import (
	"context"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/upb/auth-service/models"
)

// Context key type to avoid collisions
type contextKey string

const (
	// ClaimsKey is the context key for verified token claims
	ClaimsKey contextKey = "claims"
)

// Claims represents the verified identity extracted from the session token
type Claims struct {
	UserID    uuid.UUID
	Email     string
	Role      models.UserRole
	ExpiresAt time.Time
}

// GetRequestIDFromContext retrieves the request ID set by chi's RequestID middleware
func GetRequestIDFromContext(ctx context.Context) string {
	return chimw.GetReqID(ctx)
}

// GetClaimsFromContext retrieves JWT claims from context
func GetClaimsFromContext(ctx context.Context) *Claims {
	if val := ctx.Value(ClaimsKey); val != nil {
		if claims, ok := val.(*Claims); ok {
			return claims
		}
	}
	return nil
}

// WithClaims adds JWT claims to the context
func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, ClaimsKey, claims)
}

// GetRoleFromContext returns the caller's role, or guest when unauthenticated
func GetRoleFromContext(ctx context.Context) models.UserRole {
	if claims := GetClaimsFromContext(ctx); claims != nil && claims.Role != "" {
		return claims.Role
	}
	return models.RoleGuest
}
