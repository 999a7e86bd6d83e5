package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/vyfood/storefront/pkg/constants"
	"github.com/vyfood/storefront/pkg/errors"
	"github.com/vyfood/storefront/pkg/logging"
)

// DefaultHTTPTimeout is the default timeout for HTTP requests.
var DefaultHTTPTimeout = constants.DefaultHTTPTimeout

// Client provides HTTP client functionality with authentication.
type Client struct {
	http      *http.Client
	auth      Authenticator
	apiKey    string
	service   string
	userAgent string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithAPIKey sets the service credential applied through the authenticator.
func WithAPIKey(key string) Option {
	return func(c *Client) {
		c.apiKey = key
	}
}

// WithService names the remote service in errors.
func WithService(name string) Option {
	return func(c *Client) {
		c.service = name
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// New creates a new transport client with the specified authenticator.
func New(auth Authenticator, opts ...Option) *Client {
	if auth == nil {
		auth = NoAuth
	}
	c := &Client{
		http:    &http.Client{Timeout: DefaultHTTPTimeout},
		auth:    auth,
		service: "backend",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Service returns the remote service name used in errors.
func (c *Client) Service() string {
	return c.service
}

// DoWithContext performs an HTTP request with authentication applied and
// context support. The end user's token from ctx is forwarded as a bearer
// token; the request ID from ctx (or a new one) is sent along for tracing.
func (c *Client) DoWithContext(ctx context.Context, req *http.Request) (*http.Response, error) {
	req = req.WithContext(ctx)

	if c.apiKey != "" {
		c.auth.Apply(req, c.apiKey)
	}
	if token := Token(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	requestID := logging.RequestID(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	req.Header.Set(constants.RequestIDHeader, requestID)

	req.Header.Set("Accept", "application/json")
	if req.Method == http.MethodPost || req.Method == http.MethodPut || req.Method == http.MethodPatch {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	endpoint := req.Method + " " + req.URL.Path
	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			return nil, ctx.Err()
		}
		if isTimeout(err) {
			return nil, &errors.TimeoutError{Operation: endpoint, Err: err}
		}
		return nil, &errors.APIError{
			Service:  c.service,
			Endpoint: endpoint,
			Message:  "request failed: " + err.Error(),
			Err:      errors.Join(errors.ErrBackendUnavailable, err),
		}
	}
	return resp, nil
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.WrapResource("create", "request", "GET "+url, err)
	}
	return c.DoWithContext(ctx, req)
}

// JSON sends body (if not nil) as JSON and decodes the response into target
// (if not nil).
func (c *Client) JSON(ctx context.Context, method, url string, body, target any) error {
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return errors.WrapParse("json", "request", err)
		}
		r = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, r)
	if err != nil {
		return errors.WrapResource("create", "request", method+" "+url, err)
	}

	resp, err := c.DoWithContext(ctx, req)
	if err != nil {
		return err
	}
	return c.decode(resp, strings.ToUpper(method)+" "+req.URL.Path, target)
}

func (c *Client) decode(resp *http.Response, endpoint string, target any) error {
	if err := DecodeResponse(resp, target); err != nil {
		var apiErr *errors.APIError
		if errors.As(err, &apiErr) {
			apiErr.Service = c.service
			apiErr.Endpoint = endpoint
		}
		return err
	}
	return nil
}

// isTimeout reports deadline expiry, from the context or the HTTP client.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
