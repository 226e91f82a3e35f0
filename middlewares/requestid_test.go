package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/velo"
	"github.com/dmitrymomot/velo/internal"
	"github.com/dmitrymomot/velo/middlewares"
)

func TestRequestID(t *testing.T) {
	t.Parallel()

	t.Run("generates an id when none is present", func(t *testing.T) {
		t.Parallel()

		var seen string
		app := newTestApp(middlewares.RequestID(), func(c *velo.Context) (any, error) {
			seen = middlewares.GetRequestID(c)
			return "ok", nil
		})

		rec := serve(t, app, httptest.NewRequest(http.MethodGet, "/test", nil))
		require.NotEmpty(t, seen)
		require.Equal(t, seen, rec.Header().Get("X-Request-ID"))
	})

	t.Run("preserves an upstream id", func(t *testing.T) {
		t.Parallel()

		app := newTestApp(middlewares.RequestID(), func(c *velo.Context) (any, error) {
			return middlewares.GetRequestID(c), nil
		})

		r := httptest.NewRequest(http.MethodGet, "/test", nil)
		r.Header.Set("X-Request-ID", "upstream-1")
		rec := serve(t, app, r)
		require.Equal(t, "upstream-1", rec.Body.String())
		require.Equal(t, "upstream-1", rec.Header().Get("X-Request-ID"))
	})

	t.Run("header priority order", func(t *testing.T) {
		t.Parallel()

		app := newTestApp(middlewares.RequestID(), func(c *velo.Context) (any, error) {
			return middlewares.GetRequestID(c), nil
		})

		r := httptest.NewRequest(http.MethodGet, "/test", nil)
		r.Header.Set("X-Correlation-ID", "corr-1")
		r.Header.Set("X-Request-ID", "req-1")
		rec := serve(t, app, r)
		require.Equal(t, "req-1", rec.Body.String())
	})

	t.Run("custom generator and response header", func(t *testing.T) {
		t.Parallel()

		mw := middlewares.RequestID(
			middlewares.WithRequestIDGenerator(func() string { return "fixed-id" }),
			middlewares.WithRequestIDResponseHeader("X-Trace-ID"),
		)
		app := newTestApp(mw, func(c *velo.Context) (any, error) { return "ok", nil })

		rec := serve(t, app, httptest.NewRequest(http.MethodGet, "/test", nil))
		require.Equal(t, "fixed-id", rec.Header().Get("X-Trace-ID"))
		require.Empty(t, rec.Header().Get("X-Request-ID"))
	})

	t.Run("id flows into the request context", func(t *testing.T) {
		t.Parallel()

		var fromCtx string
		app := newTestApp(middlewares.RequestID(), func(c *velo.Context) (any, error) {
			attr, ok := middlewares.RequestIDExtractor()(c.Context())
			require.True(t, ok)
			fromCtx = attr.Value.String()
			return "ok", nil
		})

		r := httptest.NewRequest(http.MethodGet, "/test", nil)
		r.Header.Set("X-Request-ID", "ctx-1")
		serve(t, app, r)
		require.Equal(t, "ctx-1", fromCtx)
	})

	t.Run("missing id reads as empty", func(t *testing.T) {
		t.Parallel()

		c := internal.NewContext(httptest.NewRequest(http.MethodGet, "/test", nil), nil)
		require.Empty(t, middlewares.GetRequestID(c))
	})
}
