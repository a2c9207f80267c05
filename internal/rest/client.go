// Package rest binds a transport client to the Qiita v2 API. It resolves
// endpoint paths against a base address, encodes and decodes payloads with a
// Codec, and adapts single responses to channels for stream-style callers.
package rest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"

	"github.com/agentstation/qiitabrowser/internal/transport"
	"github.com/agentstation/qiitabrowser/pkg/constants"
	"github.com/agentstation/qiitabrowser/pkg/errors"
	"github.com/agentstation/qiitabrowser/pkg/logging"
	"github.com/agentstation/qiitabrowser/pkg/qiita"
)

// Client performs REST calls relative to a base address.
type Client struct {
	baseURL *url.URL
	http    *transport.Client
	codec   Codec
	service string
	logger  *zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithCodec replaces the JSON codec.
func WithCodec(c Codec) Option {
	return func(cl *Client) {
		cl.codec = c
	}
}

// WithLogger sets the logger used for call diagnostics.
func WithLogger(l *zerolog.Logger) Option {
	return func(cl *Client) {
		cl.logger = l
	}
}

// WithService sets the service name reported in API errors.
func WithService(name string) Option {
	return func(cl *Client) {
		cl.service = name
	}
}

// New creates a REST client. The base address must be absolute and end
// with a slash so relative endpoint paths resolve below it.
func New(baseURL string, httpClient *transport.Client, opts ...Option) (*Client, error) {
	if httpClient == nil {
		return nil, errors.NewValidationError("transport", nil, "transport client is required")
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, errors.WrapValidation("base_url", err)
	}
	if !u.IsAbs() {
		return nil, errors.NewValidationError("base_url", baseURL, "must be absolute")
	}
	if !strings.HasSuffix(u.Path, "/") {
		return nil, errors.NewValidationError("base_url", baseURL, "must end in /")
	}

	c := &Client{
		baseURL: u,
		http:    httpClient,
		codec:   JSONCodec{},
		service: qiita.ServiceName,
		logger:  logging.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the base address.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Transport returns the transport client requests go through.
func (c *Client) Transport() *transport.Client {
	return c.http
}

// Codec returns the payload codec.
func (c *Client) Codec() Codec {
	return c.codec
}

// NewRequest builds a request for path relative to the base address. A
// non-nil body is encoded with the codec.
func (c *Client) NewRequest(ctx context.Context, method, path string, query url.Values, body any) (*http.Request, error) {
	ref, err := url.Parse(strings.TrimPrefix(path, "/"))
	if err != nil {
		return nil, errors.WrapValidation("path", err)
	}
	u := c.baseURL.ResolveReference(ref)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := c.codec.Marshal(body)
		if err != nil {
			return nil, errors.WrapParse(c.codec.Name(), "request", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return nil, errors.WrapResource("create", "request", method+" "+path, err)
	}
	req.Header.Set("Accept", c.codec.ContentType())
	if body != nil {
		req.Header.Set("Content-Type", c.codec.ContentType())
	}
	return req, nil
}

// Do sends req and decodes a successful response into target. A nil target
// discards the body. Non-2xx responses become *errors.APIError.
func (c *Client) Do(req *http.Request, target any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return c.wrapTransportError(req, err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.logger.Warn().Err(cerr).Msg("Failed to close response body")
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, constants.ErrorBodyLimit))
		apiErr := errors.NewAPIError(c.service, resp.StatusCode, errorMessage(resp.Status, body))
		apiErr.Endpoint = req.URL.Path
		if resp.StatusCode == http.StatusUnauthorized {
			return errors.NewAuthenticationError(c.service, "bearer", apiErr.Message, apiErr)
		}
		return apiErr
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.WrapIO("read", "response body", err)
	}

	c.logger.Debug().
		Str("method", req.Method).
		Str("path", req.URL.Path).
		Bool("from_cache", resp.Header.Get("X-From-Cache") == "1").
		Int("bytes", len(body)).
		Msg("REST call completed")

	if target == nil || len(body) == 0 {
		return nil
	}
	if err := c.codec.Unmarshal(body, target); err != nil {
		return errors.WrapParse(c.codec.Name(), req.URL.Path, err)
	}
	return nil
}

func (c *Client) wrapTransportError(req *http.Request, err error) error {
	switch ctxErr := req.Context().Err(); {
	case errors.Is(ctxErr, context.Canceled):
		err = fmt.Errorf("%w: %w", errors.ErrCanceled, err)
	case errors.Is(ctxErr, context.DeadlineExceeded):
		err = fmt.Errorf("%w: %w", errors.ErrTimeout, err)
	}
	return &errors.APIError{
		Service:  c.service,
		Message:  err.Error(),
		Endpoint: req.URL.Path,
		Err:      err,
	}
}

// errorMessage prefers the "message" field of a JSON error body.
func errorMessage(status string, body []byte) string {
	if gjson.ValidBytes(body) {
		if msg := gjson.GetBytes(body, "message"); msg.Exists() {
			return msg.String()
		}
	}
	if s := strings.TrimSpace(string(body)); s != "" {
		return s
	}
	return status
}
