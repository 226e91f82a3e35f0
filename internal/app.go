package internal

import (
	"errors"
	"log/slog"
	"net/http"
	"sort"
	"strings"

	"github.com/dmitrymomot/velo/pkg/logger"
)

// maxRouteSuggestions caps the "did you mean" list on dev-mode 404s.
const maxRouteSuggestions = 5

// RouteInfo describes one registered route for external tooling.
type RouteInfo struct {
	Method        string
	Pattern       string
	HasValidation bool
	HasMiddleware bool
}

// App is the request dispatcher: it resolves an incoming method and path to
// a compiled route, runs hooks and middleware, and materializes the result
// into the wire response. App is immutable after New; the routing table and
// compiled closures are read concurrently without synchronization.
type App struct {
	tree     *tree
	static   *staticIndex
	compiler *compiler

	middlewares []Middleware
	handlers    []Handler
	beforeHooks []BeforeHook
	afterHooks  []AfterHook

	errorHandler    ErrorHandler
	notFoundHandler HandlerFunc
	notFoundChain   func(c *Context) (*Response, error)

	logger *slog.Logger
	routes []RouteInfo

	devMode     bool
	decodeQuery bool
}

// New creates a new application with the given options.
// The App is immutable after creation.
//
// Example:
//
//	app := velo.New(
//	    velo.WithMiddleware(middlewares.RequestID()),
//	    velo.WithHandlers(
//	        handlers.NewUsers(repo),
//	        handlers.NewItems(repo),
//	    ),
//	)
func New(opts ...Option) *App {
	a := &App{
		tree:     newTree(),
		static:   newStaticIndex(),
		compiler: newCompiler(),
		logger:   logger.NewNope(),
	}

	for _, opt := range opts {
		opt(a)
	}

	a.setupRoutes()
	return a
}

// setupRoutes compiles all declared routes. Options run first, so global
// middleware and hooks are known before any route is compiled.
func (a *App) setupRoutes() {
	r := &routerAdapter{app: a}
	for _, h := range a.handlers {
		h.Routes(r)
	}

	// The not-found terminal gets its own compiled chain so global
	// middleware still runs for unmatched paths and may answer them
	// (cross-origin preflight being the usual case).
	nf := a.notFoundHandler
	if nf == nil {
		nf = a.defaultNotFound
	}
	a.notFoundChain = a.compiler.compile(MethodAny, "", nf, a.middlewares, routeConfig{}).execute
}

// register stores a compiled route: parameter-free patterns go to the
// static index, the rest are keyed in the tree.
func (a *App) register(rt *route) {
	if isStaticPattern(rt.pattern) {
		a.static.add(rt)
	} else {
		a.tree.add(rt.method, rt.pattern, rt)
	}
	a.routes = append(a.routes, RouteInfo{
		Method:        rt.method,
		Pattern:       rt.pattern,
		HasValidation: rt.hasValidation,
		HasMiddleware: rt.hasMiddleware,
	})
}

// Routes returns the registered routes in registration order, for
// documentation generators and introspection.
func (a *App) Routes() []RouteInfo {
	out := make([]RouteInfo, len(a.routes))
	copy(out, a.routes)
	return out
}

// ServeHTTP is the transport boundary. Listening and shutdown belong to the
// caller; the App only turns parsed requests into responses.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path, _ := splitTarget(r)

	// Zero-work fast path: with no hooks and no global middleware, a
	// precomputed static route is served without building a context.
	if len(a.beforeHooks) == 0 && len(a.afterHooks) == 0 && len(a.middlewares) == 0 {
		if rt := a.static.find(r.Method, path); rt != nil && rt.frozen != nil {
			writeResponse(w, nil, rt.frozen)
			return
		}
	}

	c := newContext(r, a.logger, a.decodeQuery)

	res, err := a.dispatch(c)
	if err != nil {
		res = a.handleError(c, err)
	}

	for _, hook := range a.afterHooks {
		next, err := hook(c, res)
		if err != nil {
			res = a.handleError(c, err)
			break
		}
		if next != nil {
			res = next
		}
	}

	writeResponse(w, c, res)
}

// dispatch runs before hooks, resolves the route (index first, tree
// second), and executes the compiled route or the not-found chain.
func (a *App) dispatch(c *Context) (*Response, error) {
	for _, hook := range a.beforeHooks {
		result, err := hook(c)
		if err != nil {
			return nil, err
		}
		if result != nil {
			return normalize(c, result)
		}
	}

	if rt := a.static.find(c.Method(), c.path); rt != nil {
		c.pattern = rt.pattern
		return rt.execute(c)
	}

	if rt, params, ok := a.tree.find(c.Method(), c.path); ok {
		c.pattern = rt.pattern
		c.params = params
		return rt.execute(c)
	}

	return a.notFoundChain(c)
}

// handleError converts an error into a response. A registered error handler
// gets first refusal; its own failure is recovered and logged, and the
// request still gets a generic 500 rather than crashing the loop.
func (a *App) handleError(c *Context, err error) *Response {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return validationFailure(ve.Field, ve.Errors)
	}

	if a.errorHandler != nil {
		if res, ok := a.runErrorHandler(c, err); ok {
			return res
		}
	}

	return a.defaultErrorResponse(c, err)
}

func (a *App) runErrorHandler(c *Context, err error) (res *Response, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.ErrorContext(c.Context(), "error handler panicked", "panic", r, "original_error", err.Error())
			res, ok = nil, false
		}
	}()

	result := a.errorHandler(c, err)
	if result == nil {
		return nil, false
	}
	normalized, nerr := normalize(c, result)
	if nerr != nil {
		a.logger.ErrorContext(c.Context(), "error handler produced unserializable response", "error", nerr)
		return nil, false
	}
	return normalized, true
}

func (a *App) defaultErrorResponse(c *Context, err error) *Response {
	if he := AsHTTPError(err); he != nil {
		body := map[string]any{"error": he.Message}
		if a.devMode && he.Detail != "" {
			body["detail"] = he.Detail
		}
		res, jerr := JSON(he.Code, body)
		if jerr == nil {
			return res
		}
	}

	a.logger.ErrorContext(c.Context(), "request failed", "method", c.Method(), "path", c.Path(), "error", err.Error())

	body := map[string]any{"error": http.StatusText(http.StatusInternalServerError)}
	if a.devMode {
		body["detail"] = err.Error()
	}
	res, jerr := JSON(http.StatusInternalServerError, body)
	if jerr != nil {
		return Text(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
	}
	return res
}

// defaultNotFound is the not-found terminal. In dev mode it suggests up to
// five registered routes ranked by segment similarity.
func (a *App) defaultNotFound(c *Context) (any, error) {
	body := map[string]any{"error": http.StatusText(http.StatusNotFound)}
	if a.devMode {
		if suggestions := a.suggestRoutes(c.Method(), c.Path()); len(suggestions) > 0 {
			body["did_you_mean"] = suggestions
		}
	}
	c.SetStatus(http.StatusNotFound)
	return body, nil
}

// suggestRoutes ranks registered routes of the same (or any) method by the
// fraction of matching path segments, with parameter and wildcard segments
// treated as always matching.
func (a *App) suggestRoutes(method, path string) []string {
	segments := splitPath(path)

	type scored struct {
		pattern string
		score   float64
	}
	var candidates []scored
	for _, info := range a.routes {
		if info.Method != method && info.Method != MethodAny {
			continue
		}
		if score := patternSimilarity(info.Pattern, segments); score > 0 {
			candidates = append(candidates, scored{info.Pattern, score})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})
	if len(candidates) > maxRouteSuggestions {
		candidates = candidates[:maxRouteSuggestions]
	}

	out := make([]string, len(candidates))
	for i, cand := range candidates {
		out[i] = cand.pattern
	}
	return out
}

func patternSimilarity(pattern string, segments []string) float64 {
	patternSegments := splitPath(pattern)
	length := max(len(patternSegments), len(segments))
	if length == 0 {
		return 0
	}
	matched := 0
	for i := range min(len(patternSegments), len(segments)) {
		seg := patternSegments[i]
		if seg == segments[i] || strings.HasPrefix(seg, ":") || seg == "*" {
			matched++
		}
	}
	return float64(matched) / float64(length)
}
