package internal

import (
	"log/slog"

	"github.com/dmitrymomot/velo/pkg/logger"
)

// Option configures the application.
type Option func(*App)

// WithMiddleware adds global middleware to the application.
// Middleware is applied in the order provided, ahead of group and
// route-specific middleware. Global middleware also runs for unmatched
// paths, so it may answer requests with no matching route.
func WithMiddleware(mw ...Middleware) Option {
	return func(a *App) {
		a.middlewares = append(a.middlewares, mw...)
	}
}

// WithHandlers registers handlers that declare routes.
// Each handler's Routes method is called during setup.
func WithHandlers(h ...Handler) Option {
	return func(a *App) {
		a.handlers = append(a.handlers, h...)
	}
}

// WithBeforeHook adds a process-wide hook that runs before route
// resolution, in registration order. A hook returning a non-nil value ends
// the request immediately, skipping resolution entirely.
func WithBeforeHook(hooks ...BeforeHook) Option {
	return func(a *App) {
		a.beforeHooks = append(a.beforeHooks, hooks...)
	}
}

// WithAfterHook adds a process-wide hook that runs after the handler, in
// registration order. Each hook receives the in-flight response and may
// replace it; a later hook observes the response produced by an earlier one.
func WithAfterHook(hooks ...AfterHook) Option {
	return func(a *App) {
		a.afterHooks = append(a.afterHooks, hooks...)
	}
}

// WithErrorHandler sets a custom error handler for handler errors.
// Called when a handler or middleware returns a non-nil error.
//
// Example:
//
//	velo.WithErrorHandler(func(c *velo.Context, err error) any {
//	    c.SetStatus(http.StatusInternalServerError)
//	    return map[string]string{"error": "something went wrong"}
//	})
func WithErrorHandler(h ErrorHandler) Option {
	return func(a *App) {
		a.errorHandler = h
	}
}

// WithNotFoundHandler sets a custom handler for unmatched paths.
func WithNotFoundHandler(h HandlerFunc) Option {
	return func(a *App) {
		a.notFoundHandler = h
	}
}

// WithLogger creates a logger with a component name and optional extractors.
// The component name is added to every log entry for easy filtering.
// Extractors pull values from the request context (e.g., request_id).
func WithLogger(component string, extractors ...logger.ContextExtractor) Option {
	return func(a *App) {
		a.logger = logger.New(extractors...).With(slog.String("component", component))
	}
}

// WithCustomLogger sets a fully custom logger.
// Use this when you need complete control over logging configuration.
func WithCustomLogger(log *slog.Logger) Option {
	return func(a *App) {
		if log != nil {
			a.logger = log
		}
	}
}

// WithDevMode enables development diagnostics: error responses include the
// underlying message and 404 responses include "did you mean" route
// suggestions. Leave it off in production to avoid leaking internals.
func WithDevMode() Option {
	return func(a *App) {
		a.devMode = true
	}
}

// WithQueryDecoding enables percent-decoding of query keys and values.
// Decoding is off by default: raw byte-for-byte extraction is cheaper, and
// most consumers compare exact values that never contain escapes.
func WithQueryDecoding() Option {
	return func(a *App) {
		a.decodeQuery = true
	}
}
