package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/upb/auth-service/middleware"
	"github.com/upb/auth-service/models"
	"github.com/upb/auth-service/utils"
	"go.uber.org/zap"
)

// UserLookup loads an account by id
type UserLookup interface {
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// UserHandler serves the current user's profile
type UserHandler struct {
	users  UserLookup
	logger *zap.Logger
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(users UserLookup, logger *zap.Logger) *UserHandler {
	return &UserHandler{users: users, logger: logger}
}

// HandleMe handles GET /api/v1/users/me. Requires RequireAuth upstream.
func (h *UserHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		_ = utils.WriteUnauthorized(w, "")
		return
	}

	user, err := h.users.GetUser(r.Context(), claims.UserID)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, user.Public())
}
