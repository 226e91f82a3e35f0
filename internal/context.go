package internal

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
)

// Context carries a single request through hooks, middleware, and the
// handler. It is exclusively owned by its request and is not safe for use
// from other goroutines.
//
// Derived request data (query map, cookies, body) is parsed on first access
// and cached; the request body stream is read at most once. Response status,
// headers, and Set-Cookie values accumulate on the context and are applied
// only when the final response is written.
type Context struct {
	request *http.Request
	logger  *slog.Logger

	// Path and raw query are split from the request target with a single
	// scan for '?'; no URL object is constructed.
	path     string
	rawQuery string

	query       map[string]string
	cookies     map[string]string
	body        []byte
	bodyErr     error
	jsonValue   any
	jsonErr     error
	formValues  url.Values
	formErr     error
	queryParsed bool
	cookiesRead bool
	bodyRead    bool
	jsonParsed  bool
	formParsed  bool
	decodeQuery bool

	pattern string
	params  map[string]string

	validatedParams any
	validatedQuery  any
	validatedBody   any

	store map[string]any

	status     int
	header     http.Header
	setCookies []string
}

// NewContext creates a context for the given request. It is exported for
// middleware tests; the dispatcher constructs contexts itself.
func NewContext(r *http.Request, log *slog.Logger) *Context {
	return newContext(r, log, false)
}

func newContext(r *http.Request, log *slog.Logger, decodeQuery bool) *Context {
	path, rawQuery := splitTarget(r)
	return &Context{
		request:     r,
		logger:      log,
		path:        path,
		rawQuery:    rawQuery,
		decodeQuery: decodeQuery,
		status:      http.StatusOK,
	}
}

// splitTarget extracts the path and raw query from the request target.
// Everything before the first '?' is the path, everything after is the
// query string.
func splitTarget(r *http.Request) (string, string) {
	target := r.RequestURI
	if target == "" || target == "*" || !strings.HasPrefix(target, "/") {
		// Absolute-form or synthetic requests fall back to the parsed URL.
		return r.URL.Path, r.URL.RawQuery
	}
	if i := strings.IndexByte(target, '?'); i >= 0 {
		return target[:i], target[i+1:]
	}
	return target, ""
}

// Request returns the underlying *http.Request.
func (c *Context) Request() *http.Request {
	return c.request
}

// Context returns the request's context.Context.
func (c *Context) Context() context.Context {
	if c.request == nil {
		return context.Background()
	}
	return c.request.Context()
}

// Method returns the request method.
func (c *Context) Method() string {
	return c.request.Method
}

// Path returns the request path, excluding the query string.
func (c *Context) Path() string {
	return c.path
}

// RawQuery returns the unparsed query string.
func (c *Context) RawQuery() string {
	return c.rawQuery
}

// RoutePattern returns the registered pattern of the matched route, or an
// empty string before resolution.
func (c *Context) RoutePattern() string {
	return c.pattern
}

// Param returns the captured path parameter value by name.
// Returns empty string if the parameter doesn't exist.
func (c *Context) Param(name string) string {
	return c.params[name]
}

// Params returns all captured path parameters. The returned map is owned by
// the context; treat it as read-only.
func (c *Context) Params() map[string]string {
	return c.params
}

// Query returns the query parameter value by name.
// Returns empty string if the parameter doesn't exist.
func (c *Context) Query(name string) string {
	return c.Queries()[name]
}

// QueryDefault returns the query parameter value or a default.
func (c *Context) QueryDefault(name, defaultValue string) string {
	if v := c.Queries()[name]; v != "" {
		return v
	}
	return defaultValue
}

// Queries returns the query parameters as a map, parsed on first access.
// For repeated keys, the first occurrence wins. Keys and values are kept
// byte-for-byte unless query decoding is enabled on the application.
func (c *Context) Queries() map[string]string {
	if !c.queryParsed {
		c.query = parseQuery(c.rawQuery, c.decodeQuery)
		c.queryParsed = true
	}
	return c.query
}

func parseQuery(rawQuery string, decode bool) map[string]string {
	if rawQuery == "" {
		return nil
	}
	query := make(map[string]string, 8)
	for pair := range strings.SplitSeq(rawQuery, "&") {
		if pair == "" {
			continue
		}
		key, value, _ := strings.Cut(pair, "=")
		if decode {
			if k, err := url.QueryUnescape(key); err == nil {
				key = k
			}
			if v, err := url.QueryUnescape(value); err == nil {
				value = v
			}
		}
		if _, exists := query[key]; !exists {
			query[key] = value
		}
	}
	return query
}

// Cookie returns the request cookie value by name.
// Returns empty string if the cookie doesn't exist.
func (c *Context) Cookie(name string) string {
	return c.Cookies()[name]
}

// Cookies returns the request cookies as a map, parsed on first access.
func (c *Context) Cookies() map[string]string {
	if !c.cookiesRead {
		parsed := c.request.Cookies()
		if len(parsed) > 0 {
			c.cookies = make(map[string]string, len(parsed))
			for _, ck := range parsed {
				if _, exists := c.cookies[ck.Name]; !exists {
					c.cookies[ck.Name] = ck.Value
				}
			}
		}
		c.cookiesRead = true
	}
	return c.cookies
}

// Body returns the raw request body. The underlying stream is read on first
// access and cached; every accessor that needs the body works off the cache,
// so the stream is consumed at most once per request.
func (c *Context) Body() ([]byte, error) {
	if !c.bodyRead {
		if c.request.Body != nil {
			c.body, c.bodyErr = io.ReadAll(c.request.Body)
		}
		c.bodyRead = true
	}
	return c.body, c.bodyErr
}

// JSON returns the request body decoded as a generic JSON value, parsed on
// first access. Repeated calls return the identical cached value.
func (c *Context) JSON() (any, error) {
	if !c.jsonParsed {
		body, err := c.Body()
		if err != nil {
			c.jsonErr = err
		} else {
			c.jsonErr = json.Unmarshal(body, &c.jsonValue)
		}
		c.jsonParsed = true
	}
	return c.jsonValue, c.jsonErr
}

// Form returns the request body decoded as form-encoded values, parsed on
// first access from the cached body bytes.
func (c *Context) Form() (url.Values, error) {
	if !c.formParsed {
		body, err := c.Body()
		if err != nil {
			c.formErr = err
		} else {
			c.formValues, c.formErr = url.ParseQuery(string(body))
		}
		c.formParsed = true
	}
	return c.formValues, c.formErr
}

// ValidatedParams returns the params value produced by schema validation,
// or nil if the route has no params schema.
func (c *Context) ValidatedParams() any {
	return c.validatedParams
}

// ValidatedQuery returns the query value produced by schema validation,
// or nil if the route has no query schema.
func (c *Context) ValidatedQuery() any {
	return c.validatedQuery
}

// ValidatedBody returns the body value produced by schema validation,
// or nil if the route has no body schema.
func (c *Context) ValidatedBody() any {
	return c.validatedBody
}

// Set stores a value in the request-scoped store for middleware-to-handler
// communication.
func (c *Context) Set(key string, value any) {
	if c.store == nil {
		c.store = make(map[string]any, 4)
	}
	c.store[key] = value
}

// Get retrieves a value from the request-scoped store.
// Returns nil if the key is not found.
func (c *Context) Get(key string) any {
	return c.store[key]
}

// SetRequestValue stores a value on the underlying request context, making
// it visible to context extractors and code holding the plain
// context.Context. Use Set for cheap request-scoped storage.
func (c *Context) SetRequestValue(key, value any) {
	ctx := context.WithValue(c.request.Context(), key, value)
	c.request = c.request.WithContext(ctx)
}

// Header returns the request header value by name.
func (c *Context) Header(name string) string {
	return c.request.Header.Get(name)
}

// SetStatus sets the response status code. The default is 200; the value is
// used when the handler result is normalized into a response.
func (c *Context) SetStatus(code int) {
	c.status = code
}

// Status returns the accumulated response status code.
func (c *Context) Status() int {
	return c.status
}

// SetHeader sets a response header. Headers accumulate on the context and
// are written when the response is materialized.
func (c *Context) SetHeader(name, value string) {
	c.ResponseHeader().Set(name, value)
}

// AddHeader appends a response header value.
func (c *Context) AddHeader(name, value string) {
	c.ResponseHeader().Add(name, value)
}

// ResponseHeader returns the accumulated response header collection,
// allocating it on first use.
func (c *Context) ResponseHeader() http.Header {
	if c.header == nil {
		c.header = make(http.Header, 4)
	}
	return c.header
}

// SetCookie queues a Set-Cookie header for the response. The cookie is
// pre-formatted immediately but only appended to the headers when the
// response is written.
func (c *Context) SetCookie(cookie *http.Cookie) {
	c.setCookies = append(c.setCookies, cookie.String())
}

// Logger returns the logger for advanced usage.
func (c *Context) Logger() *slog.Logger {
	return c.logger
}

// LogDebug logs a debug message with optional attributes.
func (c *Context) LogDebug(msg string, attrs ...any) {
	c.logger.DebugContext(c.Context(), msg, attrs...)
}

// LogInfo logs an info message with optional attributes.
func (c *Context) LogInfo(msg string, attrs ...any) {
	c.logger.InfoContext(c.Context(), msg, attrs...)
}

// LogWarn logs a warning message with optional attributes.
func (c *Context) LogWarn(msg string, attrs ...any) {
	c.logger.WarnContext(c.Context(), msg, attrs...)
}

// LogError logs an error message with optional attributes.
func (c *Context) LogError(msg string, attrs ...any) {
	c.logger.ErrorContext(c.Context(), msg, attrs...)
}
