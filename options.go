package velo

import (
	"log/slog"

	"github.com/dmitrymomot/velo/internal"
	"github.com/dmitrymomot/velo/pkg/logger"
)

// App options

// WithMiddleware adds global middleware to the application.
// Middleware is applied in the order provided and also runs for unmatched
// paths, so it may answer requests with no matching route (e.g. preflight).
func WithMiddleware(mw ...Middleware) Option {
	return internal.WithMiddleware(mw...)
}

// WithHandlers registers handlers that declare routes.
// Each handler's Routes method is called during setup.
func WithHandlers(h ...Handler) Option {
	return internal.WithHandlers(h...)
}

// WithBeforeHook adds process-wide hooks that run before route resolution,
// in registration order. A hook returning a non-nil value ends the request
// immediately.
func WithBeforeHook(hooks ...BeforeHook) Option {
	return internal.WithBeforeHook(hooks...)
}

// WithAfterHook adds process-wide hooks that run after the handler, in
// registration order. Each hook may replace the in-flight response.
func WithAfterHook(hooks ...AfterHook) Option {
	return internal.WithAfterHook(hooks...)
}

// WithErrorHandler sets a custom error handler for handler errors.
func WithErrorHandler(h ErrorHandler) Option {
	return internal.WithErrorHandler(h)
}

// WithNotFoundHandler sets a custom handler for unmatched paths.
func WithNotFoundHandler(h HandlerFunc) Option {
	return internal.WithNotFoundHandler(h)
}

// WithLogger creates a logger with a component name and optional extractors.
// The component name is added to every log entry for easy filtering.
//
// Example:
//
//	velo.New(
//	    velo.WithLogger("api", middlewares.RequestIDExtractor()),
//	)
func WithLogger(component string, extractors ...logger.ContextExtractor) Option {
	return internal.WithLogger(component, extractors...)
}

// WithCustomLogger sets a fully custom logger.
func WithCustomLogger(log *slog.Logger) Option {
	return internal.WithCustomLogger(log)
}

// WithDevMode enables development diagnostics: error detail in responses
// and "did you mean" suggestions on 404s. Off in production.
func WithDevMode() Option {
	return internal.WithDevMode()
}

// WithQueryDecoding enables percent-decoding of query keys and values.
// Off by default for throughput; raw byte-for-byte extraction does not
// decode %XX sequences.
func WithQueryDecoding() Option {
	return internal.WithQueryDecoding()
}

// Route options

// Middlewares attaches route-specific middleware.
func Middlewares(mw ...Middleware) RouteOption {
	return internal.Middlewares(mw...)
}

// ParamsSchema validates captured path parameters before the handler runs.
func ParamsSchema(schema any) RouteOption {
	return internal.ParamsSchema(schema)
}

// QuerySchema validates query parameters before the handler runs.
func QuerySchema(schema any) RouteOption {
	return internal.QuerySchema(schema)
}

// BodySchema validates the JSON body before the handler runs.
func BodySchema(schema any) RouteOption {
	return internal.BodySchema(schema)
}

// Precomputed declares the handler a pure function of no input; its
// response is computed once at registration and served frozen.
func Precomputed() RouteOption {
	return internal.Precomputed()
}

// ContextExtractor extracts a slog attribute from context.
// Used with WithLogger to add request-scoped values to logs.
type ContextExtractor = logger.ContextExtractor
