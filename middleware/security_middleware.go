package middleware

import (
	"net"
	"net/http"
	"strconv"

	"github.com/upb/auth-service/services"
	"github.com/upb/auth-service/services/ratelimit"
	"github.com/upb/auth-service/utils"
	"go.uber.org/zap"
)

// SecurityMiddleware gates requests through the abuse guard.
// It must run after Authenticate so the caller's role is known.
type SecurityMiddleware struct {
	decider   ratelimit.Decider
	blockBots bool
	respond   ErrorResponder
	logger    *zap.Logger
}

// NewSecurityMiddleware creates the guard middleware. Bots are only logged unless blockBots is set.
func NewSecurityMiddleware(decider ratelimit.Decider, blockBots bool, respond ErrorResponder, logger *zap.Logger) *SecurityMiddleware {
	return &SecurityMiddleware{
		decider:   decider,
		blockBots: blockBots,
		respond:   respond,
		logger:    logger,
	}
}

// Guard applies the role policy and denies shielded, rate-limited and (optionally) bot traffic
func (m *SecurityMiddleware) Guard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		req := m.requestContext(r)
		policy := ratelimit.PolicyForRole(req.Role)

		fields := []zap.Field{
			zap.String("request_id", GetRequestIDFromContext(ctx)),
			zap.String("ip", req.IP),
			zap.String("path", req.Path),
			zap.String("role", string(policy.Role)),
		}

		decision, err := m.decider.Decide(ctx, req, policy)
		if err != nil {
			m.logger.Error("abuse guard failed", append(fields, zap.Error(err))...)
			m.respond(w, services.Wrap(services.ErrGuardFailure, err), m.logger)
			return
		}

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))

		switch {
		case decision.IsDenied(ratelimit.ReasonBot):
			m.logger.Warn("bot request detected",
				append(fields, zap.String("user_agent", req.UserAgent), zap.String("match", decision.Detail))...)
			if m.blockBots {
				_ = utils.WriteForbidden(w, "Automated client blocked")
				return
			}

		case decision.IsDenied(ratelimit.ReasonShield):
			m.logger.Warn("malicious request blocked",
				append(fields,
					zap.String("method", req.Method),
					zap.String("user_agent", req.UserAgent),
					zap.String("threat", decision.Detail))...)
			_ = utils.WriteForbidden(w, "Malicious request blocked")
			return

		case decision.IsDenied(ratelimit.ReasonRateLimit):
			m.logger.Warn("rate limit exceeded",
				append(fields, zap.Int("limit", decision.Limit))...)
			_ = utils.WriteForbidden(w, policy.DeniedMessage())
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (m *SecurityMiddleware) requestContext(r *http.Request) ratelimit.RequestContext {
	ip := clientIP(r)
	req := ratelimit.RequestContext{
		Role:        GetRoleFromContext(r.Context()),
		Fingerprint: ip,
		IP:          ip,
		UserAgent:   r.UserAgent(),
		Method:      r.Method,
		Path:        r.URL.Path,
		RawQuery:    r.URL.RawQuery,
	}
	if claims := GetClaimsFromContext(r.Context()); claims != nil {
		req.Fingerprint = claims.UserID.String()
	}
	return req
}

// clientIP strips the port from RemoteAddr; chi's RealIP has already
// replaced it with the forwarded address when present.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
