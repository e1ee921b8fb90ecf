package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestNewSystemHandler(t *testing.T) {
	h := NewSystemHandler("pdf-engine", "1.0.0", HealthCheck{Name: "database"})
	assert.NotNil(t, h)
	assert.False(t, h.startTime.IsZero())
	assert.Empty(t, h.checks, "checks without a pinger are skipped")
}

func TestSystemHandler_Health(t *testing.T) {
	call := func(h *SystemHandler) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		c, _ := newTestContext(w, http.MethodGet, "/health")
		h.Health(c)
		return w
	}

	t.Run("healthy", func(t *testing.T) {
		var sawDeadline bool
		h := NewSystemHandler("pdf-engine", "1.0.0",
			HealthCheck{Name: "database", Pinger: pingerFunc(func(ctx context.Context) error {
				_, sawDeadline = ctx.Deadline()
				return nil
			})},
			HealthCheck{Name: "storage", Pinger: pingerFunc(func(context.Context) error { return nil })},
		)

		w := call(h)

		require.Equal(t, http.StatusOK, w.Code)
		resp := decodeResponse(t, w)
		assert.True(t, resp.Success)
		data := resp.Data.(map[string]any)
		assert.Equal(t, "ok", data["status"])
		assert.Equal(t, "pdf-engine", data["name"])
		assert.Equal(t, "1.0.0", data["version"])
		assert.NotEmpty(t, data["go_version"])
		checks := data["checks"].(map[string]any)
		assert.Equal(t, "ok", checks["database"])
		assert.Equal(t, "ok", checks["storage"])
		assert.True(t, sawDeadline)
	})

	t.Run("storage down", func(t *testing.T) {
		h := NewSystemHandler("pdf-engine", "1.0.0",
			HealthCheck{Name: "database", Pinger: pingerFunc(func(context.Context) error { return nil })},
			HealthCheck{Name: "storage", Pinger: pingerFunc(func(context.Context) error {
				return errors.New("bucket attachments: not found")
			})},
		)

		w := call(h)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		resp := decodeResponse(t, w)
		assert.False(t, resp.Success)
		data := resp.Data.(map[string]any)
		assert.Equal(t, "degraded", data["status"])
		checks := data["checks"].(map[string]any)
		assert.Equal(t, "ok", checks["database"])
		assert.Equal(t, "unreachable", checks["storage"])
	})

	t.Run("no checks", func(t *testing.T) {
		w := call(NewSystemHandler("pdf-engine", "1.0.0"))
		assert.Equal(t, http.StatusOK, w.Code)
	})
}
