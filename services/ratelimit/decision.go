package ratelimit

import (
	"context"
	"time"

	"github.com/upb/auth-service/models"
)

// Reason explains why a decision denied the request
type Reason string

const (
	ReasonNone      Reason = "none"
	ReasonBot       Reason = "bot"
	ReasonShield    Reason = "shield"
	ReasonRateLimit Reason = "rate-limit"
)

// RequestContext is what the guard sees of an incoming request
type RequestContext struct {
	Role        models.UserRole
	Fingerprint string // user id when authenticated, client IP otherwise
	IP          string
	UserAgent   string
	Method      string
	Path        string
	RawQuery    string
}

// Decision is the outcome of one admission check
type Decision struct {
	Allowed   bool
	Reason    Reason
	Limit     int
	Remaining int
	ResetAt   time.Time
	Detail    string
}

// IsDenied reports whether the request was denied for reason r
func (d Decision) IsDenied(r Reason) bool {
	return !d.Allowed && d.Reason == r
}

// Decider decides whether a request may proceed under a policy
type Decider interface {
	Decide(ctx context.Context, req RequestContext, policy Policy) (Decision, error)
}
