package auth

import (
	"net/http"
	"time"
)

// TokenCookieName is the cookie that carries the signed session token
const TokenCookieName = "token"

// Cookies sets, clears and reads the auth cookie.
// Set and Clear share one attribute set so browsers accept the deletion.
type Cookies struct {
	secure bool
	maxAge time.Duration
}

// NewCookies creates a cookie transport. secure should be true only in production.
func NewCookies(secure bool, maxAge time.Duration) *Cookies {
	if maxAge <= 0 {
		maxAge = time.Hour
	}
	return &Cookies{secure: secure, maxAge: maxAge}
}

// Set attaches the cookie to the response
func (c *Cookies) Set(w http.ResponseWriter, name, value string) {
	cookie := c.base(name)
	cookie.Value = value
	cookie.MaxAge = int(c.maxAge / time.Second)
	http.SetCookie(w, cookie)
}

// Clear expires the cookie on the client
func (c *Cookies) Clear(w http.ResponseWriter, name string) {
	cookie := c.base(name)
	cookie.MaxAge = -1
	cookie.Expires = time.Unix(0, 0)
	http.SetCookie(w, cookie)
}

// Get returns the raw cookie value, or "" when absent
func (c *Cookies) Get(r *http.Request, name string) string {
	cookie, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func (c *Cookies) base(name string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteStrictMode,
	}
}
