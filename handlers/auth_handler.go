package handlers

import (
	"context"
	"net/http"

	"github.com/upb/auth-service/models"
	"github.com/upb/auth-service/services"
	"github.com/upb/auth-service/utils"
	"go.uber.org/zap"
)

const (
	msgSignedUp  = "User registered successfully"
	msgSignedIn  = "User signed in successfully"
	msgSignedOut = "User signed out successfully"
)

// AuthFlow is the account logic behind the auth endpoints
type AuthFlow interface {
	SignUp(ctx context.Context, req *models.SignupRequest) (*services.AuthResult, error)
	SignIn(ctx context.Context, req *models.SignInRequest) (*services.AuthResult, error)
}

// CookieTransport carries the session token to and from the browser
type CookieTransport interface {
	Set(w http.ResponseWriter, name, value string)
	Clear(w http.ResponseWriter, name string)
}

// AuthHandler handles signup, sign-in and sign-out
type AuthHandler struct {
	flow       AuthFlow
	cookies    CookieTransport
	cookieName string
	logger     *zap.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(flow AuthFlow, cookies CookieTransport, cookieName string, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		flow:       flow,
		cookies:    cookies,
		cookieName: cookieName,
		logger:     logger,
	}
}

// HandleSignup handles POST /auth/signup
func (h *AuthHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	req := utils.DecodeAndValidate[models.SignupRequest](r.Body)
	if !req.OK() {
		HandleValidationError(w, req.Issues, h.logger)
		return
	}

	result, err := h.flow.SignUp(r.Context(), req.Value)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	h.cookies.Set(w, h.cookieName, result.Token)
	if err := utils.WriteJSON(w, http.StatusCreated, models.AuthResponse{
		Message: msgSignedUp,
		User:    result.User.Public(),
	}); err != nil {
		h.logger.Error("failed to write signup response", zap.Error(err))
	}
}

// HandleSignIn handles POST /auth/sign-in
func (h *AuthHandler) HandleSignIn(w http.ResponseWriter, r *http.Request) {
	req := utils.DecodeAndValidate[models.SignInRequest](r.Body)
	if !req.OK() {
		HandleValidationError(w, req.Issues, h.logger)
		return
	}

	result, err := h.flow.SignIn(r.Context(), req.Value)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	h.cookies.Set(w, h.cookieName, result.Token)
	if err := utils.WriteJSON(w, http.StatusOK, models.AuthResponse{
		Message: msgSignedIn,
		User:    result.User.Public(),
	}); err != nil {
		h.logger.Error("failed to write sign-in response", zap.Error(err))
	}
}

// HandleSignOut handles POST /auth/sign-out. It always succeeds.
func (h *AuthHandler) HandleSignOut(w http.ResponseWriter, r *http.Request) {
	h.cookies.Clear(w, h.cookieName)
	_ = utils.WriteJSON(w, http.StatusOK, models.MessageResponse{Message: msgSignedOut})
}
