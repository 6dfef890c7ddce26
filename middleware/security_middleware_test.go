package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/upb/auth-service/models"
	"github.com/upb/auth-service/services"
	"github.com/upb/auth-service/services/ratelimit"
	"go.uber.org/zap"
)

type MockDecider struct {
	mock.Mock
}

func (m *MockDecider) Decide(ctx context.Context, req ratelimit.RequestContext, policy ratelimit.Policy) (ratelimit.Decision, error) {
	args := m.Called(ctx, req, policy)
	return args.Get(0).(ratelimit.Decision), args.Error(1)
}

func serveGuard(t *testing.T, decider ratelimit.Decider, blockBots bool, req *http.Request) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	reached := false
	mw := NewSecurityMiddleware(decider, blockBots, testResponder, zap.NewNop())
	w := httptest.NewRecorder()
	mw.Guard(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
		w.WriteHeader(http.StatusOK)
	})).ServeHTTP(w, req)
	return w, reached
}

func TestGuard(t *testing.T) {
	t.Run("allowed guest request is keyed by IP", func(t *testing.T) {
		decider := new(MockDecider)
		decider.On("Decide", mock.Anything,
			mock.MatchedBy(func(r ratelimit.RequestContext) bool {
				return r.Role == models.RoleGuest && r.Fingerprint == "203.0.113.7" && r.IP == "203.0.113.7"
			}),
			ratelimit.PolicyForRole(models.RoleGuest),
		).Return(ratelimit.Decision{Allowed: true, Reason: ratelimit.ReasonNone, Limit: 5, Remaining: 4}, nil)

		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		req.RemoteAddr = "203.0.113.7:41234"

		w, reached := serveGuard(t, decider, false, req)

		assert.True(t, reached)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "5", w.Header().Get("X-RateLimit-Limit"))
		assert.Equal(t, "4", w.Header().Get("X-RateLimit-Remaining"))
		decider.AssertExpectations(t)
	})

	t.Run("authenticated request uses role and user id", func(t *testing.T) {
		claims := testClaims(models.RoleAdmin)
		decider := new(MockDecider)
		decider.On("Decide", mock.Anything,
			mock.MatchedBy(func(r ratelimit.RequestContext) bool {
				return r.Role == models.RoleAdmin && r.Fingerprint == claims.UserID.String()
			}),
			ratelimit.PolicyForRole(models.RoleAdmin),
		).Return(ratelimit.Decision{Allowed: true, Limit: 20, Remaining: 19}, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
		req = req.WithContext(WithClaims(req.Context(), claims))

		_, reached := serveGuard(t, decider, false, req)

		assert.True(t, reached)
		decider.AssertExpectations(t)
	})

	t.Run("rate-limited request is denied with role message", func(t *testing.T) {
		decider := new(MockDecider)
		decider.On("Decide", mock.Anything, mock.Anything, mock.Anything).
			Return(ratelimit.Decision{Allowed: false, Reason: ratelimit.ReasonRateLimit, Limit: 5}, nil)

		w, reached := serveGuard(t, decider, false, httptest.NewRequest(http.MethodPost, "/auth/sign-in", nil))

		assert.False(t, reached)
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Contains(t, w.Body.String(), "guest rate limit (5 per minute) exceeded")
		assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	})

	t.Run("shielded request is denied", func(t *testing.T) {
		decider := new(MockDecider)
		decider.On("Decide", mock.Anything, mock.Anything, mock.Anything).
			Return(ratelimit.Decision{Allowed: false, Reason: ratelimit.ReasonShield, Detail: "sql_injection"}, nil)

		w, reached := serveGuard(t, decider, false, httptest.NewRequest(http.MethodGet, "/auth/sign-in?q=1", nil))

		assert.False(t, reached)
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Contains(t, w.Body.String(), "Malicious request blocked")
	})

	t.Run("bot is logged but allowed by default", func(t *testing.T) {
		decider := new(MockDecider)
		decider.On("Decide", mock.Anything, mock.Anything, mock.Anything).
			Return(ratelimit.Decision{Allowed: false, Reason: ratelimit.ReasonBot, Limit: 5, Remaining: 4, Detail: "curl"}, nil)

		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		req.Header.Set("User-Agent", "curl/8.0")

		w, reached := serveGuard(t, decider, false, req)

		assert.True(t, reached)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("bot is blocked when blocking is enabled", func(t *testing.T) {
		decider := new(MockDecider)
		decider.On("Decide", mock.Anything, mock.Anything, mock.Anything).
			Return(ratelimit.Decision{Allowed: false, Reason: ratelimit.ReasonBot, Limit: 5, Remaining: 4, Detail: "curl"}, nil)

		w, reached := serveGuard(t, decider, true, httptest.NewRequest(http.MethodGet, "/healthz", nil))

		assert.False(t, reached)
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Contains(t, w.Body.String(), "Automated client blocked")
	})

	t.Run("store failure returns 500", func(t *testing.T) {
		decider := new(MockDecider)
		decider.On("Decide", mock.Anything, mock.Anything, mock.Anything).
			Return(ratelimit.Decision{}, errors.New("rate limit store: connection refused"))

		w, reached := serveGuard(t, decider, false, httptest.NewRequest(http.MethodGet, "/healthz", nil))

		assert.False(t, reached)
		require.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "connection refused")
	})

	t.Run("store failure is reported as a guard failure", func(t *testing.T) {
		decider := new(MockDecider)
		cause := errors.New("rate limit store: i/o timeout")
		decider.On("Decide", mock.Anything, mock.Anything, mock.Anything).Return(ratelimit.Decision{}, cause)

		var got error
		mw := NewSecurityMiddleware(decider, false, func(w http.ResponseWriter, err error, logger *zap.Logger) {
			got = err
			testResponder(w, err, logger)
		}, zap.NewNop())

		w := httptest.NewRecorder()
		mw.Guard(http.NotFoundHandler()).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.ErrorIs(t, got, services.ErrGuardFailure)
		assert.ErrorIs(t, got, cause)
	})
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "[2001:db8::1]:8080"
	assert.Equal(t, "2001:db8::1", clientIP(req))

	req.RemoteAddr = "198.51.100.2"
	assert.Equal(t, "198.51.100.2", clientIP(req))
}
