package rest

import (
	"context"
	"net/http"
	"net/url"
)

// Result carries the outcome of a Call delivered through Observe.
type Result[T any] struct {
	Value T
	Err   error
}

// Call is a prepared request whose response decodes into T.
type Call[T any] struct {
	client *Client
	method string
	path   string
	query  url.Values
	body   any
}

// Get prepares a GET of path with optional query parameters.
func Get[T any](c *Client, path string, query url.Values) *Call[T] {
	return &Call[T]{client: c, method: http.MethodGet, path: path, query: query}
}

// Send prepares a request with an encoded body, such as PUT or POST.
func Send[T any](c *Client, method, path string, body any) *Call[T] {
	return &Call[T]{client: c, method: method, path: path, body: body}
}

// Execute performs the call and returns the decoded response.
func (call *Call[T]) Execute(ctx context.Context) (T, error) {
	var out T
	req, err := call.client.NewRequest(ctx, call.method, call.path, call.query, call.body)
	if err != nil {
		return out, err
	}
	if err := call.client.Do(req, &out); err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

// Observe performs the call on its own goroutine. The returned channel
// yields exactly one Result and is then closed.
func (call *Call[T]) Observe(ctx context.Context) <-chan Result[T] {
	out := make(chan Result[T], 1)
	go func() {
		defer close(out)
		v, err := call.Execute(ctx)
		out <- Result[T]{Value: v, Err: err}
	}()
	return out
}
