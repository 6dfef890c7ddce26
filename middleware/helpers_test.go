package middleware

import (
	"net/http"

	"github.com/upb/auth-service/auth"
	"github.com/upb/auth-service/services"
	"github.com/upb/auth-service/utils"
	"go.uber.org/zap"
)

// testResponder mirrors the production error mapping for the types middleware emits
func testResponder(w http.ResponseWriter, err error, _ *zap.Logger) {
	switch {
	case services.IsUnauthorizedError(err):
		_ = utils.WriteUnauthorized(w, services.GetErrorMessage(err))
	case services.IsForbiddenError(err):
		_ = utils.WriteForbidden(w, services.GetErrorMessage(err))
	default:
		_ = utils.WriteInternalServerError(w, "")
	}
}

func newTestAuthMiddleware(validator TokenValidator, logger *zap.Logger) *AuthMiddleware {
	return NewAuthMiddleware(validator, auth.NewCookies(false, 0), auth.TokenCookieName, testResponder, logger)
}
