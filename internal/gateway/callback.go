package gateway

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
)

const maxCallbackBody = 1 << 20

// Callback is the transport-neutral capture of an inbound provider request.
type Callback struct {
	Method string
	Query  url.Values
	Form   url.Values
	Header http.Header
	Body   []byte
}

// CallbackFromHTTP reads r once. Form bodies are decoded into Form; any other
// body is kept raw for gateways that post JSON.
func CallbackFromHTTP(r *http.Request) (*Callback, error) {
	cb := &Callback{
		Method: r.Method,
		Query:  r.URL.Query(),
		Form:   url.Values{},
		Header: r.Header.Clone(),
	}

	if r.Body == nil {
		return cb, nil
	}
	defer r.Body.Close()

	body, err := io.ReadAll(io.LimitReader(r.Body, maxCallbackBody))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrInvalidCallback, err)
	}
	cb.Body = body
	r.Body = io.NopCloser(bytes.NewReader(body))

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/x-www-form-urlencoded" && len(body) > 0 {
		form, err := url.ParseQuery(string(body))
		if err != nil {
			return nil, fmt.Errorf("%w: parse form: %v", ErrInvalidCallback, err)
		}
		cb.Form = form
	}
	return cb, nil
}

// Value looks a parameter up in the form body first, then the query string.
func (c *Callback) Value(key string) string {
	if v := c.Form.Get(key); v != "" {
		return v
	}
	return c.Query.Get(key)
}

// Params merges query and form values, form winning.
func (c *Callback) Params() url.Values {
	out := url.Values{}
	for k, v := range c.Query {
		out[k] = v
	}
	for k, v := range c.Form {
		out[k] = v
	}
	return out
}

// RequireMethod returns ErrInvalidRequestMethod unless the callback used one of methods.
func (c *Callback) RequireMethod(methods ...string) error {
	for _, m := range methods {
		if c.Method == m {
			return nil
		}
	}
	return fmt.Errorf("%w: %s, expected one of %v", ErrInvalidRequestMethod, c.Method, methods)
}
