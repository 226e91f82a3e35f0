package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dmitrymomot/velo"
	"github.com/dmitrymomot/velo/internal"
)

// newTestApp builds a single-route app wrapping the handler with the given
// middleware, mirroring how the middleware runs in production.
func newTestApp(mw internal.Middleware, h velo.HandlerFunc) *velo.App {
	return velo.New(
		velo.WithMiddleware(mw),
		velo.WithHandlers(testRoutes(func(r velo.Router) {
			r.ANY("/test", h)
		})),
	)
}

type testRoutes func(velo.Router)

func (f testRoutes) Routes(r velo.Router) { f(r) }

func serve(t *testing.T, app *velo.App, r *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, r)
	return rec
}
