package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCookies_Set(t *testing.T) {
	w := httptest.NewRecorder()
	NewCookies(false, time.Hour).Set(w, TokenCookieName, "abc")

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	c := cookies[0]
	assert.Equal(t, "token", c.Name)
	assert.Equal(t, "abc", c.Value)
	assert.Equal(t, "/", c.Path)
	assert.Equal(t, 3600, c.MaxAge)
	assert.True(t, c.HttpOnly)
	assert.False(t, c.Secure)
	assert.Equal(t, http.SameSiteStrictMode, c.SameSite)
}

func TestCookies_SecureInProduction(t *testing.T) {
	w := httptest.NewRecorder()
	NewCookies(true, 0).Set(w, TokenCookieName, "abc")

	c := w.Result().Cookies()[0]
	assert.True(t, c.Secure)
	assert.Equal(t, 3600, c.MaxAge)
}

func TestCookies_ClearMatchesSetAttributes(t *testing.T) {
	for _, secure := range []bool{false, true} {
		cookies := NewCookies(secure, time.Hour)

		setRec := httptest.NewRecorder()
		cookies.Set(setRec, TokenCookieName, "abc")
		clearRec := httptest.NewRecorder()
		cookies.Clear(clearRec, TokenCookieName)

		set := setRec.Result().Cookies()[0]
		cleared := clearRec.Result().Cookies()[0]

		assert.Equal(t, set.Name, cleared.Name)
		assert.Equal(t, set.Path, cleared.Path)
		assert.Equal(t, set.Domain, cleared.Domain)
		assert.Equal(t, set.HttpOnly, cleared.HttpOnly)
		assert.Equal(t, set.Secure, cleared.Secure)
		assert.Equal(t, set.SameSite, cleared.SameSite)
		assert.Empty(t, cleared.Value)
		assert.Equal(t, -1, cleared.MaxAge)
	}
}

func TestCookies_Get(t *testing.T) {
	cookies := NewCookies(false, time.Hour)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, cookies.Get(req, TokenCookieName))

	req.AddCookie(&http.Cookie{Name: TokenCookieName, Value: "xyz"})
	assert.Equal(t, "xyz", cookies.Get(req, TokenCookieName))
}
