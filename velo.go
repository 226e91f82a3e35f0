package velo

import (
	"github.com/dmitrymomot/velo/internal"
)

// Type aliases - public API
type (
	// App is the request dispatcher. It implements http.Handler and is
	// immutable after New.
	App = internal.App

	// Router is the interface handlers use to declare routes.
	Router = internal.Router

	// Context carries a single request through hooks, middleware, and the
	// handler.
	Context = internal.Context

	// Handler declares routes on a router.
	Handler = internal.Handler

	// HandlerFunc is the signature for route handlers.
	HandlerFunc = internal.HandlerFunc

	// Middleware is a middleware value with an explicitly declared shape.
	Middleware = internal.Middleware

	// FlatFunc is sequential middleware without a continuation.
	FlatFunc = internal.FlatFunc

	// ChainFunc is continuation-style middleware.
	ChainFunc = internal.ChainFunc

	// Next advances a middleware chain.
	Next = internal.Next

	// BeforeHook runs before route resolution.
	BeforeHook = internal.BeforeHook

	// AfterHook runs after the handler and may replace the response.
	AfterHook = internal.AfterHook

	// ErrorHandler converts handler errors into response values.
	ErrorHandler = internal.ErrorHandler

	// Response is a materialized response: status, headers, body.
	Response = internal.Response

	// RouteInfo describes a registered route for external tooling.
	RouteInfo = internal.RouteInfo

	// RouteOption configures a single route registration.
	RouteOption = internal.RouteOption

	// Option configures the application.
	Option = internal.Option

	// Checker is a compiled schema.
	Checker = internal.Checker

	// FieldError describes a single failed schema constraint.
	FieldError = internal.FieldError

	// ValidationError is the structured failure of a schema check.
	ValidationError = internal.ValidationError

	// HTTPError represents an HTTP error with a status code.
	HTTPError = internal.HTTPError

	// HTTPErrorOption configures an HTTPError.
	HTTPErrorOption = internal.HTTPErrorOption
)

// MethodAny registers a route for every HTTP method.
const MethodAny = internal.MethodAny

// WildcardParam is the parameter name holding the path remainder captured
// by a wildcard route.
const WildcardParam = internal.WildcardParam

// New creates a new application with the given options.
// The App is immutable after creation.
//
// Example:
//
//	app := velo.New(
//	    velo.WithMiddleware(middlewares.RequestID()),
//	    velo.WithHandlers(
//	        handlers.NewUsers(repo),
//	    ),
//	)
//
//	http.ListenAndServe(":8080", app)
func New(opts ...Option) *App {
	return internal.New(opts...)
}

// Middleware constructors

// Flat wraps fn as sequential middleware: a non-nil return value becomes
// the response and stops the chain.
func Flat(fn FlatFunc) Middleware {
	return internal.Flat(fn)
}

// Chain wraps fn as continuation-style middleware: it must either return a
// response value or call next and return what flows from it.
func Chain(fn ChainFunc) Middleware {
	return internal.Chain(fn)
}

// Response constructors

// NewResponse creates a response with the given status code and body.
func NewResponse(code int, body []byte) *Response {
	return internal.NewResponse(code, body)
}

// Text creates a plain-text response.
func Text(code int, s string) *Response {
	return internal.Text(code, s)
}

// JSON creates a JSON response.
func JSON(code int, v any) (*Response, error) {
	return internal.JSON(code, v)
}

// NoContent creates an empty response with the given status code.
func NoContent(code int) *Response {
	return internal.NoContent(code)
}

// Error constructors

// NewHTTPError creates a new HTTPError with the given status code and message.
func NewHTTPError(code int, message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.NewHTTPError(code, message, opts...)
}

func ErrBadRequest(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrBadRequest(message, opts...)
}

func ErrUnauthorized(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrUnauthorized(message, opts...)
}

func ErrForbidden(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrForbidden(message, opts...)
}

func ErrNotFound(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrNotFound(message, opts...)
}

func ErrConflict(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrConflict(message, opts...)
}

func ErrUnprocessable(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrUnprocessable(message, opts...)
}

func ErrInternal(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrInternal(message, opts...)
}

// WithDetail attaches an extended description rendered only in dev mode.
func WithDetail(detail string) HTTPErrorOption {
	return internal.WithDetail(detail)
}

// WithError attaches the underlying error for logging.
func WithError(err error) HTTPErrorOption {
	return internal.WithError(err)
}

// IsHTTPError returns true if the error is an HTTPError.
func IsHTTPError(err error) bool {
	return internal.IsHTTPError(err)
}

// AsHTTPError extracts the HTTPError from an error, or nil.
func AsHTTPError(err error) *HTTPError {
	return internal.AsHTTPError(err)
}

// IsValidationError returns true if the error is a ValidationError.
func IsValidationError(err error) bool {
	return internal.IsValidationError(err)
}

// ErrNextAfterHandler is returned when a chained middleware calls next
// after the handler has already run.
var ErrNextAfterHandler = internal.ErrNextAfterHandler
