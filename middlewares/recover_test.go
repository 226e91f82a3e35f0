package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/velo"
	"github.com/dmitrymomot/velo/middlewares"
)

func TestRecover(t *testing.T) {
	t.Parallel()

	t.Run("panic becomes a 500 response", func(t *testing.T) {
		t.Parallel()

		app := newTestApp(middlewares.Recover(), func(c *velo.Context) (any, error) {
			panic("something broke")
		})

		rec := serve(t, app, httptest.NewRequest(http.MethodGet, "/test", nil))
		require.Equal(t, http.StatusInternalServerError, rec.Code)
		require.NotContains(t, rec.Body.String(), "something broke")
	})

	t.Run("panic error is inspectable by a custom error handler", func(t *testing.T) {
		t.Parallel()

		var caught error
		app := velo.New(
			velo.WithMiddleware(middlewares.Recover()),
			velo.WithErrorHandler(func(c *velo.Context, err error) any {
				caught = err
				return nil
			}),
			velo.WithHandlers(testRoutes(func(r velo.Router) {
				r.GET("/boom", func(c *velo.Context) (any, error) {
					panic("kaboom")
				})
			})),
		)

		serve(t, app, httptest.NewRequest(http.MethodGet, "/boom", nil))
		require.True(t, middlewares.IsPanicError(caught))

		pe, ok := middlewares.AsPanicError(caught)
		require.True(t, ok)
		require.Equal(t, "kaboom", pe.Value)
	})

	t.Run("normal requests pass through untouched", func(t *testing.T) {
		t.Parallel()

		app := newTestApp(middlewares.Recover(), func(c *velo.Context) (any, error) {
			return "fine", nil
		})

		rec := serve(t, app, httptest.NewRequest(http.MethodGet, "/test", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "fine", rec.Body.String())
	})

	t.Run("handler errors are not wrapped", func(t *testing.T) {
		t.Parallel()

		app := newTestApp(middlewares.Recover(), func(c *velo.Context) (any, error) {
			return nil, velo.ErrConflict("busy")
		})

		rec := serve(t, app, httptest.NewRequest(http.MethodGet, "/test", nil))
		require.Equal(t, http.StatusConflict, rec.Code)
	})
}
