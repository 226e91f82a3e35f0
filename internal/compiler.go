package internal

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// route is a compiled route: a single execute closure specialized at
// registration time for the route's shape, with no strategy-selection
// branching left in the per-request path. Immutable after compilation.
type route struct {
	execute func(c *Context) (*Response, error)
	// frozen is the precomputed response for routes compiled with the
	// Precomputed option; the dispatcher serves it without a context when
	// no hooks or global middleware are registered.
	frozen        *Response
	method        string
	pattern       string
	hasValidation bool
	hasMiddleware bool
}

// checkerSet holds the compiled schemas of one route in validation order.
type checkerSet struct {
	params *Checker
	query  *Checker
	body   *Checker
}

func (cs *checkerSet) empty() bool {
	return cs.params == nil && cs.query == nil && cs.body == nil
}

// compiler turns registration records into compiled routes. It owns the
// schema cache so routes sharing a schema prototype share its checker.
type compiler struct {
	schemas *schemaCache
}

func newCompiler() *compiler {
	return &compiler{schemas: newSchemaCache()}
}

// compile selects the fastest execution strategy the route shape permits:
// precomputed or bare for plain handlers, validate-only when only schemas
// are present, a single middleware sweep when every middleware is flat, and
// the index-stepped continuation chain otherwise.
func (cp *compiler) compile(method, pattern string, h HandlerFunc, mws []Middleware, cfg routeConfig) *route {
	checkers := &checkerSet{}
	if cfg.paramsSchema != nil {
		checkers.params = cp.schemas.compile(cfg.paramsSchema)
	}
	if cfg.querySchema != nil {
		checkers.query = cp.schemas.compile(cfg.querySchema)
	}
	if cfg.bodySchema != nil {
		checkers.body = cp.schemas.compile(cfg.bodySchema)
	}

	rt := &route{
		method:        method,
		pattern:       pattern,
		hasValidation: !checkers.empty(),
		hasMiddleware: len(mws) > 0,
	}

	switch {
	case len(mws) == 0 && checkers.empty():
		if cfg.precomputed {
			if frozen := precompute(h); frozen != nil {
				rt.frozen = frozen
				// Hand out a copy per request: after hooks may mutate the
				// response they receive, and the frozen one is shared.
				rt.execute = func(*Context) (*Response, error) {
					res := *frozen
					res.Header = frozen.Header.Clone()
					return &res, nil
				}
				return rt
			}
			// A handler that fails at compile time is served per-request.
		}
		rt.execute = func(c *Context) (*Response, error) {
			result, err := h(c)
			if err != nil {
				return nil, err
			}
			return normalize(c, result)
		}
	case len(mws) == 0:
		rt.execute = func(c *Context) (*Response, error) {
			if res := runValidation(c, checkers); res != nil {
				return res, nil
			}
			result, err := h(c)
			if err != nil {
				return nil, err
			}
			return normalize(c, result)
		}
	case !anyChained(mws):
		rt.execute = withValidation(checkers, func(c *Context) (*Response, error) {
			for _, mw := range mws {
				result, err := mw.flat(c)
				if err != nil {
					return nil, err
				}
				if result != nil {
					return normalize(c, result)
				}
			}
			result, err := h(c)
			if err != nil {
				return nil, err
			}
			return normalize(c, result)
		})
	default:
		rt.execute = withValidation(checkers, func(c *Context) (*Response, error) {
			result, err := runChain(c, mws, h, method, pattern)
			if err != nil {
				return nil, err
			}
			return normalize(c, result)
		})
	}
	return rt
}

// runChain executes middleware via an index-stepped continuation instead of
// building a closure chain per request. Flat middleware in a mixed chain
// short-circuits by returning a non-nil value; chained middleware
// short-circuits by not calling next.
func runChain(c *Context, mws []Middleware, h HandlerFunc, method, pattern string) (any, error) {
	idx := 0
	handlerDone := false
	var next Next
	next = func() (any, error) {
		if idx < len(mws) {
			mw := mws[idx]
			idx++
			if mw.chain != nil {
				return mw.chain(c, next)
			}
			result, err := mw.flat(c)
			if err != nil || result != nil {
				return result, err
			}
			return next()
		}
		if handlerDone {
			return nil, fmt.Errorf("%w: %s %s", ErrNextAfterHandler, method, pattern)
		}
		handlerDone = true
		return h(c)
	}
	return next()
}

func anyChained(mws []Middleware) bool {
	for _, mw := range mws {
		if mw.isChained() {
			return true
		}
	}
	return false
}

// withValidation wraps exec with schema validation, or returns exec as-is
// when the route has no schemas so the hot path carries no validation check.
func withValidation(checkers *checkerSet, exec func(*Context) (*Response, error)) func(*Context) (*Response, error) {
	if checkers.empty() {
		return exec
	}
	return func(c *Context) (*Response, error) {
		if res := runValidation(c, checkers); res != nil {
			return res, nil
		}
		return exec(c)
	}
}

// runValidation checks params, then query, then body: params are cheapest
// and most likely to reject a malformed route early. The first failure
// short-circuits into a 400 response; later fields are not evaluated. On
// success the context's validated slot is overwritten so downstream code
// sees the coerced value, not the raw one.
func runValidation(c *Context, checkers *checkerSet) *Response {
	if checkers.params != nil {
		v, errs := checkers.params.DecodeStrings(c.Params())
		if errs != nil {
			return validationFailure("params", errs)
		}
		c.validatedParams = v
	}
	if checkers.query != nil {
		v, errs := checkers.query.DecodeStrings(c.Queries())
		if errs != nil {
			return validationFailure("query", errs)
		}
		c.validatedQuery = v
	}
	if checkers.body != nil {
		body, err := c.Body()
		if err != nil {
			return validationFailure("body", []FieldError{{Message: "unable to read request body"}})
		}
		v, errs := checkers.body.DecodeJSON(body)
		if errs != nil {
			return validationFailure("body", errs)
		}
		c.validatedBody = v
	}
	return nil
}

func validationFailure(field string, errs []FieldError) *Response {
	body, _ := json.Marshal(map[string]any{
		"error":   "validation failed",
		"field":   field,
		"details": errs,
	})
	return &Response{
		StatusCode: http.StatusBadRequest,
		Header:     headerWithContentType("application/json; charset=utf-8"),
		Body:       body,
	}
}

// precompute runs a handler declared pure once at registration and freezes
// the serialized response, headers and cookies included. Returns nil when
// the handler fails or panics, in which case the route falls back to
// per-request execution.
func precompute(h HandlerFunc) (frozen *Response) {
	defer func() {
		if r := recover(); r != nil {
			frozen = nil
		}
	}()
	c := &Context{status: http.StatusOK, path: "/"}
	result, err := h(c)
	if err != nil {
		return nil
	}
	res, err := normalize(c, result)
	if err != nil {
		return nil
	}
	for name, values := range c.header {
		for _, v := range values {
			res.SetHeader(name, v)
		}
	}
	for _, sc := range c.setCookies {
		if res.Header == nil {
			res.Header = make(http.Header, 1)
		}
		res.Header.Add("Set-Cookie", sc)
	}
	return res
}

// normalize converts a handler result into a response. A ready *Response
// passes through unchanged; nil becomes an empty 204; strings are plain
// text and []byte a raw body at the accumulated status; any other value is
// serialized as JSON.
func normalize(c *Context, result any) (*Response, error) {
	switch v := result.(type) {
	case nil:
		return &Response{StatusCode: http.StatusNoContent}, nil
	case *Response:
		return v, nil
	case string:
		return &Response{
			StatusCode: c.status,
			Header:     headerWithContentType("text/plain; charset=utf-8"),
			Body:       []byte(v),
		}, nil
	case []byte:
		return &Response{StatusCode: c.status, Body: v}, nil
	default:
		body, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("marshal response: %w", err)
		}
		return &Response{
			StatusCode: c.status,
			Header:     headerWithContentType("application/json; charset=utf-8"),
			Body:       body,
		}, nil
	}
}
