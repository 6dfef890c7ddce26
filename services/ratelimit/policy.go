package ratelimit

import (
	"fmt"
	"time"

	"github.com/upb/auth-service/models"
)

// DefaultWindow is the sliding window every role policy uses
const DefaultWindow = time.Minute

// Policy is the admission rule applied to one role
type Policy struct {
	Name   string
	Role   models.UserRole
	Limit  int
	Window time.Duration
}

var rolePolicies = map[models.UserRole]int{
	models.RoleAdmin: 20,
	models.RoleUser:  10,
	models.RoleGuest: 5,
}

// PolicyForRole maps a role to its per-minute allowance.
// Unknown roles get the guest allowance.
func PolicyForRole(role models.UserRole) Policy {
	limit, ok := rolePolicies[role]
	if !ok {
		role = models.RoleGuest
		limit = rolePolicies[models.RoleGuest]
	}
	return Policy{
		Name:   fmt.Sprintf("Rate limit for %s", role),
		Role:   role,
		Limit:  limit,
		Window: DefaultWindow,
	}
}

// DeniedMessage is the client-facing text for a rate-limit denial
func (p Policy) DeniedMessage() string {
	return fmt.Sprintf("%s rate limit (%d per %s) exceeded", p.Role, p.Limit, windowUnit(p.Window))
}

func windowUnit(d time.Duration) string {
	switch d {
	case time.Second:
		return "second"
	case time.Minute:
		return "minute"
	case time.Hour:
		return "hour"
	default:
		return d.String()
	}
}
