package internal

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func testContext(t *testing.T, method, target string, body string) *Context {
	t.Helper()
	var r *http.Request
	if body != "" {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		r = httptest.NewRequest(method, target, nil)
	}
	return NewContext(r, nil)
}

func TestCompileBare(t *testing.T) {
	t.Parallel()

	cp := newCompiler()

	t.Run("string result becomes plain text", func(t *testing.T) {
		t.Parallel()

		rt := cp.compile(http.MethodGet, "/hello", func(c *Context) (any, error) {
			return "hello", nil
		}, nil, routeConfig{})
		require.False(t, rt.hasValidation)
		require.False(t, rt.hasMiddleware)

		res, err := rt.execute(testContext(t, http.MethodGet, "/hello", ""))
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, res.StatusCode)
		require.Equal(t, "hello", string(res.Body))
		require.Equal(t, "text/plain; charset=utf-8", res.Header.Get("Content-Type"))
	})

	t.Run("nil result becomes 204", func(t *testing.T) {
		t.Parallel()

		rt := cp.compile(http.MethodDelete, "/things/:id", func(c *Context) (any, error) {
			return nil, nil
		}, nil, routeConfig{})

		res, err := rt.execute(testContext(t, http.MethodDelete, "/things/1", ""))
		require.NoError(t, err)
		require.Equal(t, http.StatusNoContent, res.StatusCode)
		require.Empty(t, res.Body)
	})

	t.Run("struct result becomes json", func(t *testing.T) {
		t.Parallel()

		rt := cp.compile(http.MethodGet, "/user", func(c *Context) (any, error) {
			return map[string]string{"name": "ada"}, nil
		}, nil, routeConfig{})

		res, err := rt.execute(testContext(t, http.MethodGet, "/user", ""))
		require.NoError(t, err)
		require.JSONEq(t, `{"name":"ada"}`, string(res.Body))
		require.Equal(t, "application/json; charset=utf-8", res.Header.Get("Content-Type"))
	})

	t.Run("ready response passes through", func(t *testing.T) {
		t.Parallel()

		want := Text(http.StatusTeapot, "tea")
		rt := cp.compile(http.MethodGet, "/tea", func(c *Context) (any, error) {
			return want, nil
		}, nil, routeConfig{})

		res, err := rt.execute(testContext(t, http.MethodGet, "/tea", ""))
		require.NoError(t, err)
		require.Same(t, want, res)
	})

	t.Run("accumulated status applies to converted results", func(t *testing.T) {
		t.Parallel()

		rt := cp.compile(http.MethodPost, "/user", func(c *Context) (any, error) {
			c.SetStatus(http.StatusCreated)
			return map[string]string{"id": "1"}, nil
		}, nil, routeConfig{})

		res, err := rt.execute(testContext(t, http.MethodPost, "/user", ""))
		require.NoError(t, err)
		require.Equal(t, http.StatusCreated, res.StatusCode)
	})

	t.Run("handler error propagates unconverted", func(t *testing.T) {
		t.Parallel()

		rt := cp.compile(http.MethodGet, "/fail", func(c *Context) (any, error) {
			return nil, ErrNotFound("no such thing")
		}, nil, routeConfig{})

		res, err := rt.execute(testContext(t, http.MethodGet, "/fail", ""))
		require.Nil(t, res)
		require.True(t, IsHTTPError(err))
	})
}

func TestCompileValidation(t *testing.T) {
	t.Parallel()

	cp := newCompiler()

	t.Run("valid request populates typed slots", func(t *testing.T) {
		t.Parallel()

		rt := cp.compile(http.MethodPost, "/users/:id", func(c *Context) (any, error) {
			require.Equal(t, 42, c.ValidatedParams().(*userParamsSchema).ID)
			require.Equal(t, "asc", c.ValidatedQuery().(*listQuerySchema).Sort)
			require.Equal(t, "Ada", c.ValidatedBody().(*createUserSchema).Name)
			return nil, nil
		}, nil, routeConfig{
			paramsSchema: &userParamsSchema{},
			querySchema:  &listQuerySchema{},
			bodySchema:   &createUserSchema{},
		})
		require.True(t, rt.hasValidation)

		c := testContext(t, http.MethodPost, "/users/42?sort=asc", `{"name":"Ada","email":"ada@example.com"}`)
		c.params = map[string]string{"id": "42"}

		res, err := rt.execute(c)
		require.NoError(t, err)
		require.Equal(t, http.StatusNoContent, res.StatusCode)
	})

	t.Run("params failure short-circuits before query and body", func(t *testing.T) {
		t.Parallel()

		handlerRan := false
		rt := cp.compile(http.MethodPost, "/users/:id", func(c *Context) (any, error) {
			handlerRan = true
			return nil, nil
		}, nil, routeConfig{
			paramsSchema: &userParamsSchema{},
			querySchema:  &listQuerySchema{},
			bodySchema:   &createUserSchema{},
		})

		c := testContext(t, http.MethodPost, "/users/abc?sort=bogus", `not json`)
		c.params = map[string]string{"id": "abc"}

		res, err := rt.execute(c)
		require.NoError(t, err)
		require.False(t, handlerRan)
		require.Equal(t, http.StatusBadRequest, res.StatusCode)
		require.Contains(t, string(res.Body), `"field":"params"`)
	})

	t.Run("query failure reported before body", func(t *testing.T) {
		t.Parallel()

		rt := cp.compile(http.MethodPost, "/users", func(c *Context) (any, error) {
			return nil, nil
		}, nil, routeConfig{
			querySchema: &listQuerySchema{},
			bodySchema:  &createUserSchema{},
		})

		c := testContext(t, http.MethodPost, "/users?sort=bogus", `not json`)
		res, err := rt.execute(c)
		require.NoError(t, err)
		require.Equal(t, http.StatusBadRequest, res.StatusCode)
		require.Contains(t, string(res.Body), `"field":"query"`)
	})

	t.Run("body failure is a structured 400", func(t *testing.T) {
		t.Parallel()

		rt := cp.compile(http.MethodPost, "/users", func(c *Context) (any, error) {
			return nil, nil
		}, nil, routeConfig{bodySchema: &createUserSchema{}})

		c := testContext(t, http.MethodPost, "/users", `{"name":"A","email":"bad"}`)
		res, err := rt.execute(c)
		require.NoError(t, err)
		require.Equal(t, http.StatusBadRequest, res.StatusCode)
		require.Contains(t, string(res.Body), "validation failed")
		require.Contains(t, string(res.Body), `"details"`)
	})
}

func TestCompileMiddleware(t *testing.T) {
	t.Parallel()

	cp := newCompiler()

	t.Run("flat middleware runs in registration order", func(t *testing.T) {
		t.Parallel()

		var order []int
		mark := func(n int) Middleware {
			return Flat(func(c *Context) (any, error) {
				order = append(order, n)
				return nil, nil
			})
		}

		rt := cp.compile(http.MethodGet, "/x", func(c *Context) (any, error) {
			order = append(order, 99)
			return "done", nil
		}, []Middleware{mark(1), mark(2), mark(3)}, routeConfig{})
		require.True(t, rt.hasMiddleware)

		_, err := rt.execute(testContext(t, http.MethodGet, "/x", ""))
		require.NoError(t, err)
		require.Equal(t, []int{1, 2, 3, 99}, order)
	})

	t.Run("flat middleware short-circuits with a result", func(t *testing.T) {
		t.Parallel()

		handlerRan := false
		deny := Flat(func(c *Context) (any, error) {
			return Text(http.StatusForbidden, "denied"), nil
		})
		rt := cp.compile(http.MethodGet, "/x", func(c *Context) (any, error) {
			handlerRan = true
			return "done", nil
		}, []Middleware{deny}, routeConfig{})

		res, err := rt.execute(testContext(t, http.MethodGet, "/x", ""))
		require.NoError(t, err)
		require.False(t, handlerRan)
		require.Equal(t, http.StatusForbidden, res.StatusCode)
	})

	t.Run("flat middleware error aborts the route", func(t *testing.T) {
		t.Parallel()

		rt := cp.compile(http.MethodGet, "/x", func(c *Context) (any, error) {
			return "done", nil
		}, []Middleware{Flat(func(c *Context) (any, error) {
			return nil, ErrUnauthorized("no token")
		})}, routeConfig{})

		res, err := rt.execute(testContext(t, http.MethodGet, "/x", ""))
		require.Nil(t, res)
		require.True(t, IsHTTPError(err))
	})

	t.Run("mixed chain preserves order and wrapping", func(t *testing.T) {
		t.Parallel()

		var order []string
		outer := Chain(func(c *Context, next Next) (any, error) {
			order = append(order, "outer-in")
			result, err := next()
			order = append(order, "outer-out")
			return result, err
		})
		inner := Flat(func(c *Context) (any, error) {
			order = append(order, "inner")
			return nil, nil
		})

		rt := cp.compile(http.MethodGet, "/x", func(c *Context) (any, error) {
			order = append(order, "handler")
			return "done", nil
		}, []Middleware{outer, inner}, routeConfig{})

		res, err := rt.execute(testContext(t, http.MethodGet, "/x", ""))
		require.NoError(t, err)
		require.Equal(t, "done", string(res.Body))
		require.Equal(t, []string{"outer-in", "inner", "handler", "outer-out"}, order)
	})

	t.Run("chained middleware can skip the handler", func(t *testing.T) {
		t.Parallel()

		handlerRan := false
		rt := cp.compile(http.MethodGet, "/x", func(c *Context) (any, error) {
			handlerRan = true
			return "done", nil
		}, []Middleware{Chain(func(c *Context, next Next) (any, error) {
			return "intercepted", nil
		})}, routeConfig{})

		res, err := rt.execute(testContext(t, http.MethodGet, "/x", ""))
		require.NoError(t, err)
		require.False(t, handlerRan)
		require.Equal(t, "intercepted", string(res.Body))
	})

	t.Run("calling next past the handler is an error", func(t *testing.T) {
		t.Parallel()

		rt := cp.compile(http.MethodGet, "/x", func(c *Context) (any, error) {
			return "done", nil
		}, []Middleware{Chain(func(c *Context, next Next) (any, error) {
			if _, err := next(); err != nil {
				return nil, err
			}
			return next()
		})}, routeConfig{})

		_, err := rt.execute(testContext(t, http.MethodGet, "/x", ""))
		require.ErrorIs(t, err, ErrNextAfterHandler)
	})

	t.Run("validation runs before middleware", func(t *testing.T) {
		t.Parallel()

		mwRan := false
		rt := cp.compile(http.MethodPost, "/x", func(c *Context) (any, error) {
			return "done", nil
		}, []Middleware{Flat(func(c *Context) (any, error) {
			mwRan = true
			return nil, nil
		})}, routeConfig{bodySchema: &createUserSchema{}})

		c := testContext(t, http.MethodPost, "/x", `{}`)
		res, err := rt.execute(c)
		require.NoError(t, err)
		require.False(t, mwRan)
		require.Equal(t, http.StatusBadRequest, res.StatusCode)
	})
}

func TestCompilePrecomputed(t *testing.T) {
	t.Parallel()

	cp := newCompiler()

	t.Run("freezes the response at registration", func(t *testing.T) {
		t.Parallel()

		calls := 0
		rt := cp.compile(http.MethodGet, "/version", func(c *Context) (any, error) {
			calls++
			c.SetHeader("X-Build", "abc123")
			return map[string]string{"version": "1.0.0"}, nil
		}, nil, routeConfig{precomputed: true})

		require.NotNil(t, rt.frozen)
		require.Equal(t, 1, calls)
		require.Equal(t, "abc123", rt.frozen.Header.Get("X-Build"))

		res, err := rt.execute(testContext(t, http.MethodGet, "/version", ""))
		require.NoError(t, err)
		require.Equal(t, 1, calls)
		require.Equal(t, rt.frozen.Body, res.Body)
		require.Equal(t, rt.frozen.Header, res.Header)

		// The frozen response is shared across requests; execute hands out
		// a copy so a caller mutating its response cannot taint it.
		require.NotSame(t, rt.frozen, res)
		res.SetHeader("X-Tainted", "yes")
		require.Empty(t, rt.frozen.Header.Get("X-Tainted"))

		next, err := rt.execute(testContext(t, http.MethodGet, "/version", ""))
		require.NoError(t, err)
		require.Empty(t, next.Header.Get("X-Tainted"))
	})

	t.Run("falls back to per-request execution on error", func(t *testing.T) {
		t.Parallel()

		rt := cp.compile(http.MethodGet, "/flaky", func(c *Context) (any, error) {
			return nil, ErrInternal("not ready")
		}, nil, routeConfig{precomputed: true})

		require.Nil(t, rt.frozen)
		_, err := rt.execute(testContext(t, http.MethodGet, "/flaky", ""))
		require.True(t, IsHTTPError(err))
	})

	t.Run("falls back on panic", func(t *testing.T) {
		t.Parallel()

		first := true
		rt := cp.compile(http.MethodGet, "/panicky", func(c *Context) (any, error) {
			if first {
				first = false
				panic("touched request state")
			}
			return "recovered", nil
		}, nil, routeConfig{precomputed: true})

		require.Nil(t, rt.frozen)
		res, err := rt.execute(testContext(t, http.MethodGet, "/panicky", ""))
		require.NoError(t, err)
		require.Equal(t, "recovered", string(res.Body))
	})
}
