package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type checkFunc func(ctx context.Context) error

func (f checkFunc) HealthCheck(ctx context.Context) error { return f(ctx) }

func healthy(context.Context) error { return nil }

func decodeHealth(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var response map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	return response["data"].(map[string]interface{})
}

func TestHandleHealth(t *testing.T) {
	t.Run("always returns healthy", func(t *testing.T) {
		handler := NewHealthHandler(map[string]HealthChecker{
			"database": checkFunc(func(context.Context) error { return errors.New("down") }),
		}, zap.NewNop())

		w := httptest.NewRecorder()
		handler.HandleHealth(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		data := decodeHealth(t, w)
		assert.Equal(t, "healthy", data["status"])
		assert.NotEmpty(t, data["timestamp"])
	})
}

func TestHandleReadiness(t *testing.T) {
	t.Run("healthy when all dependencies are available", func(t *testing.T) {
		handler := NewHealthHandler(map[string]HealthChecker{
			"database": checkFunc(healthy),
			"redis":    checkFunc(healthy),
		}, zap.NewNop())

		w := httptest.NewRecorder()
		handler.HandleReadiness(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		data := decodeHealth(t, w)
		assert.Equal(t, "healthy", data["status"])
		checks := data["checks"].(map[string]interface{})
		assert.Equal(t, "healthy", checks["database"])
		assert.Equal(t, "healthy", checks["redis"])
	})

	t.Run("unhealthy when redis is down", func(t *testing.T) {
		handler := NewHealthHandler(map[string]HealthChecker{
			"database": checkFunc(healthy),
			"redis":    checkFunc(func(context.Context) error { return errors.New("connection refused") }),
		}, zap.NewNop())

		w := httptest.NewRecorder()
		handler.HandleReadiness(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		data := decodeHealth(t, w)
		assert.Equal(t, "unhealthy", data["status"])
		checks := data["checks"].(map[string]interface{})
		assert.Equal(t, "healthy", checks["database"])
		assert.Equal(t, "unhealthy", checks["redis"])
		assert.NotContains(t, w.Body.String(), "connection refused")
	})
}
