package internal

import (
	"net/http"
	"slices"
	"strings"
)

// Router is the interface handlers use to declare routes.
// Routes are registered once before serving begins; the routing table is
// not safe for concurrent mutation.
type Router interface {
	// GET registers a handler for GET requests.
	GET(path string, h HandlerFunc, opts ...RouteOption)

	// POST registers a handler for POST requests.
	POST(path string, h HandlerFunc, opts ...RouteOption)

	// PUT registers a handler for PUT requests.
	PUT(path string, h HandlerFunc, opts ...RouteOption)

	// PATCH registers a handler for PATCH requests.
	PATCH(path string, h HandlerFunc, opts ...RouteOption)

	// DELETE registers a handler for DELETE requests.
	DELETE(path string, h HandlerFunc, opts ...RouteOption)

	// HEAD registers a handler for HEAD requests.
	HEAD(path string, h HandlerFunc, opts ...RouteOption)

	// OPTIONS registers a handler for OPTIONS requests.
	OPTIONS(path string, h HandlerFunc, opts ...RouteOption)

	// ANY registers a method-agnostic handler. Exact-method routes on the
	// same path take precedence at lookup.
	ANY(path string, h HandlerFunc, opts ...RouteOption)

	// Handle registers a handler for a custom HTTP method.
	Handle(method, path string, h HandlerFunc, opts ...RouteOption)

	// Route creates a route group with a pattern prefix.
	// All routes defined inside fn share the prefix and the group's
	// middleware stack.
	Route(prefix string, fn func(r Router))

	// Use appends middleware to the group's middleware stack. It applies to
	// routes registered after the call.
	Use(mw ...Middleware)
}

// RouteOption configures a single route registration.
type RouteOption func(*routeConfig)

// routeConfig is the registration record for one route before compilation.
type routeConfig struct {
	paramsSchema any
	querySchema  any
	bodySchema   any
	middlewares  []Middleware
	precomputed  bool
}

// Middlewares attaches route-specific middleware, executed after global and
// group middleware in registration order.
func Middlewares(mw ...Middleware) RouteOption {
	return func(cfg *routeConfig) {
		cfg.middlewares = append(cfg.middlewares, mw...)
	}
}

// ParamsSchema validates captured path parameters against the schema before
// the handler runs. The validated value is available via
// c.ValidatedParams().
func ParamsSchema(schema any) RouteOption {
	return func(cfg *routeConfig) {
		cfg.paramsSchema = schema
	}
}

// QuerySchema validates query parameters against the schema before the
// handler runs. The validated value is available via c.ValidatedQuery().
func QuerySchema(schema any) RouteOption {
	return func(cfg *routeConfig) {
		cfg.querySchema = schema
	}
}

// BodySchema validates the JSON body against the schema before the handler
// runs. The validated value is available via c.ValidatedBody().
func BodySchema(schema any) RouteOption {
	return func(cfg *routeConfig) {
		cfg.bodySchema = schema
	}
}

// Precomputed declares the handler a pure function of no input: it is
// invoked once at registration and its serialized response is served for
// every request. Only valid on routes without middleware or schemas.
func Precomputed() RouteOption {
	return func(cfg *routeConfig) {
		cfg.precomputed = true
	}
}

// routerAdapter implements Router for one group level. Each Route call
// derives a child adapter with the joined prefix and a copy of the group
// middleware stack.
type routerAdapter struct {
	app    *App
	prefix string
	mws    []Middleware
}

func (r *routerAdapter) GET(path string, h HandlerFunc, opts ...RouteOption) {
	r.handle(http.MethodGet, path, h, opts...)
}

func (r *routerAdapter) POST(path string, h HandlerFunc, opts ...RouteOption) {
	r.handle(http.MethodPost, path, h, opts...)
}

func (r *routerAdapter) PUT(path string, h HandlerFunc, opts ...RouteOption) {
	r.handle(http.MethodPut, path, h, opts...)
}

func (r *routerAdapter) PATCH(path string, h HandlerFunc, opts ...RouteOption) {
	r.handle(http.MethodPatch, path, h, opts...)
}

func (r *routerAdapter) DELETE(path string, h HandlerFunc, opts ...RouteOption) {
	r.handle(http.MethodDelete, path, h, opts...)
}

func (r *routerAdapter) HEAD(path string, h HandlerFunc, opts ...RouteOption) {
	r.handle(http.MethodHead, path, h, opts...)
}

func (r *routerAdapter) OPTIONS(path string, h HandlerFunc, opts ...RouteOption) {
	r.handle(http.MethodOptions, path, h, opts...)
}

func (r *routerAdapter) ANY(path string, h HandlerFunc, opts ...RouteOption) {
	r.handle(MethodAny, path, h, opts...)
}

func (r *routerAdapter) Handle(method, path string, h HandlerFunc, opts ...RouteOption) {
	r.handle(method, path, h, opts...)
}

func (r *routerAdapter) Route(prefix string, fn func(Router)) {
	fn(&routerAdapter{
		app:    r.app,
		prefix: joinPattern(r.prefix, prefix),
		mws:    slices.Clone(r.mws),
	})
}

func (r *routerAdapter) Use(mw ...Middleware) {
	r.mws = append(r.mws, mw...)
}

func (r *routerAdapter) handle(method, path string, h HandlerFunc, opts ...RouteOption) {
	cfg := routeConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	// Merge once at registration: global, then group, then route middleware.
	// Requests pay nothing for the merge.
	var mws []Middleware
	if total := len(r.app.middlewares) + len(r.mws) + len(cfg.middlewares); total > 0 {
		mws = make([]Middleware, 0, total)
		mws = append(mws, r.app.middlewares...)
		mws = append(mws, r.mws...)
		mws = append(mws, cfg.middlewares...)
	}

	pattern := joinPattern(r.prefix, path)
	r.app.register(r.app.compiler.compile(method, pattern, h, mws, cfg))
}

func joinPattern(prefix, path string) string {
	if prefix == "" {
		return path
	}
	if path == "/" || path == "" {
		return prefix
	}
	return strings.TrimSuffix(prefix, "/") + path
}
