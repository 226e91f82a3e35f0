package internal

// Handler declares routes on a router.
//
// Example:
//
//	type UsersHandler struct {
//	    repo *repository.Queries
//	}
//
//	func (h *UsersHandler) Routes(r velo.Router) {
//	    r.GET("/users/:id", h.show)
//	    r.POST("/users", h.create, velo.BodySchema(&CreateUser{}))
//	}
type Handler interface {
	Routes(r Router)
}

// HandlerFunc is the signature for route handlers.
// The returned value is normalized into a response: a *Response passes
// through unchanged, nil becomes an empty 204, a string becomes plain text,
// a []byte becomes a raw body, and anything else is serialized as JSON at
// the status accumulated on the context.
// Returning a non-nil error triggers the application error handler.
type HandlerFunc func(c *Context) (any, error)

// Next advances the middleware chain to the next middleware or, at the end,
// to the handler. A chained middleware that never calls Next short-circuits
// the request with its own return value.
type Next func() (any, error)

// FlatFunc is a middleware without a continuation. It runs strictly in
// sequence: a non-nil return value becomes the response and stops the chain,
// a nil return lets the chain proceed.
type FlatFunc func(c *Context) (any, error)

// ChainFunc is a middleware with an explicit continuation. It must either
// return a response value itself or call next and return what flows from it.
type ChainFunc func(c *Context, next Next) (any, error)

// Middleware is a middleware value whose shape is declared at construction
// via Flat or Chain. The shape is fixed once, so route compilation never
// inspects function signatures at request time.
type Middleware struct {
	flat  FlatFunc
	chain ChainFunc
}

// Flat wraps fn as sequential middleware without a continuation.
func Flat(fn FlatFunc) Middleware {
	return Middleware{flat: fn}
}

// Chain wraps fn as continuation-style middleware.
func Chain(fn ChainFunc) Middleware {
	return Middleware{chain: fn}
}

func (m Middleware) isChained() bool {
	return m.chain != nil
}

// BeforeHook runs before route resolution. A non-nil return value ends the
// request immediately with that value normalized into the response.
type BeforeHook func(c *Context) (any, error)

// AfterHook runs after the handler with the in-flight response and must
// return a response, possibly the same one.
type AfterHook func(c *Context, res *Response) (*Response, error)

// ErrorHandler converts an error returned from a handler or middleware into
// a response value (normalized like a handler result). Returning nil
// delegates to the default error response.
type ErrorHandler func(c *Context, err error) any
