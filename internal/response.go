package internal

import (
	"encoding/json"
	"net/http"
)

// Response is the materialized result of a request: status, headers, and
// body bytes. Handlers may build one directly or return any value and let
// normalization produce it. A Response held by a precompiled route is shared
// across requests and must not be mutated after compilation.
type Response struct {
	Header     http.Header
	Body       []byte
	StatusCode int
}

// NewResponse creates a response with the given status code and body.
func NewResponse(code int, body []byte) *Response {
	return &Response{StatusCode: code, Body: body}
}

// Text creates a plain-text response.
func Text(code int, s string) *Response {
	return &Response{
		StatusCode: code,
		Header:     headerWithContentType("text/plain; charset=utf-8"),
		Body:       []byte(s),
	}
}

// JSON creates a JSON response. Marshal failures surface as handler errors.
func JSON(code int, v any) (*Response, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return &Response{
		StatusCode: code,
		Header:     headerWithContentType("application/json; charset=utf-8"),
		Body:       body,
	}, nil
}

// NoContent creates an empty response with the given status code.
func NoContent(code int) *Response {
	return &Response{StatusCode: code}
}

// SetHeader sets a header on the response, allocating the map on first use.
func (r *Response) SetHeader(name, value string) {
	if r.Header == nil {
		r.Header = make(http.Header)
	}
	r.Header.Set(name, value)
}

func headerWithContentType(ct string) http.Header {
	return http.Header{"Content-Type": []string{ct}}
}

// writeResponse sends the response to the transport. Headers accumulated on
// the context and buffered Set-Cookie values are applied here and nowhere
// earlier. The context is nil on the precompiled fast path.
func writeResponse(w http.ResponseWriter, c *Context, res *Response) {
	h := w.Header()
	if c != nil {
		for name, values := range c.header {
			h[name] = values
		}
		for _, sc := range c.setCookies {
			h.Add("Set-Cookie", sc)
		}
	}
	for name, values := range res.Header {
		h[name] = values
	}
	code := res.StatusCode
	if code == 0 {
		code = http.StatusOK
	}
	w.WriteHeader(code)
	if len(res.Body) > 0 {
		_, _ = w.Write(res.Body)
	}
}
