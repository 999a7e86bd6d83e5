// Package backend is the REST client for the VyFood backend service.
//
// The storefront never owns products, users or orders; it forwards every
// such call here, carrying the end user's token from the request context.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/vyfood/storefront/internal/transport"
	"github.com/vyfood/storefront/pkg/catalogs"
	"github.com/vyfood/storefront/pkg/errors"
	"github.com/vyfood/storefront/pkg/logging"
	"github.com/vyfood/storefront/pkg/orders"
	"github.com/vyfood/storefront/pkg/sources"
)

// Client talks to the backend service.
type Client struct {
	http *transport.Client
	urls *transport.RequestBuilder
}

// Config configures a Client.
type Config struct {
	// BaseURL is the backend API root, e.g. "https://api.vyfood.vn/v1".
	BaseURL string

	// APIKey is the storefront's own service credential.
	APIKey string

	// Auth says how APIKey is sent; see transport.ParseAuth. Empty means
	// the X-API-Key header.
	Auth string

	// Timeout bounds each request. Zero uses transport.DefaultHTTPTimeout.
	Timeout time.Duration

	// UserAgent identifies the storefront to the backend.
	UserAgent string
}

// New creates a backend client.
func New(cfg Config) (*Client, error) {
	urls, err := transport.NewRequestBuilder(cfg.BaseURL)
	if err != nil {
		return nil, err
	}
	auth, err := transport.ParseAuth(cfg.Auth)
	if err != nil {
		return nil, err
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = transport.DefaultHTTPTimeout
	}
	opts := []transport.Option{
		transport.WithService("backend"),
		transport.WithHTTPClient(&http.Client{Timeout: timeout}),
		transport.WithAPIKey(cfg.APIKey),
	}
	if cfg.UserAgent != "" {
		opts = append(opts, transport.WithUserAgent(cfg.UserAgent))
	}
	return &Client{
		http: transport.New(auth, opts...),
		urls: urls,
	}, nil
}

// BaseURL returns the backend API root.
func (c *Client) BaseURL() string {
	return c.urls.BaseURL()
}

// do sends a JSON request and decodes the response, unwrapping a
// {"data": ...} envelope when the backend uses one.
func (c *Client) do(ctx context.Context, method string, query url.Values, body, target any, path ...string) error {
	var raw json.RawMessage
	if err := c.http.JSON(ctx, method, c.urls.URL(query, path...), body, &raw); err != nil {
		return err
	}
	if target == nil || len(raw) == 0 {
		return nil
	}
	return unwrap(raw, target)
}

func unwrap(raw json.RawMessage, target any) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var env struct {
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(trimmed, &env); err == nil && len(env.Data) > 0 && string(env.Data) != "null" {
			trimmed = env.Data
		}
	}
	if err := json.Unmarshal(trimmed, target); err != nil {
		return errors.WrapParse("json", "backend response", err)
	}
	return nil
}

// Products

// ListProducts returns every product, hidden ones included.
func (c *Client) ListProducts(ctx context.Context) ([]catalogs.Product, error) {
	var raw json.RawMessage
	if err := c.http.JSON(ctx, http.MethodGet, c.urls.URL(nil, "products"), nil, &raw); err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return []catalogs.Product{}, nil
	}
	return catalogs.DecodeProducts(bytes.NewReader(raw))
}

// GetProduct returns one product.
func (c *Client) GetProduct(ctx context.Context, id string) (*catalogs.Product, error) {
	var p catalogs.Product
	if err := c.do(ctx, http.MethodGet, nil, nil, &p, "products", id); err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateProduct adds a product and returns it as stored.
func (c *Client) CreateProduct(ctx context.Context, p catalogs.Product) (*catalogs.Product, error) {
	var out catalogs.Product
	if err := c.do(ctx, http.MethodPost, nil, p, &out, "products"); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProduct replaces a product and returns it as stored.
func (c *Client) UpdateProduct(ctx context.Context, p catalogs.Product) (*catalogs.Product, error) {
	var out catalogs.Product
	if err := c.do(ctx, http.MethodPut, nil, p, &out, "products", p.ID); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteProduct removes a product.
func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, nil, nil, nil, "products", id)
}

// Accounts

// Login exchanges credentials for a session token.
func (c *Client) Login(ctx context.Context, creds Credentials) (*Session, error) {
	var s Session
	if err := c.do(ctx, http.MethodPost, nil, creds, &s, "auth", "login"); err != nil {
		if errors.IsUnauthorized(err) {
			return nil, errors.NewAuthenticationError("backend", "password", "invalid email or password", err)
		}
		return nil, err
	}
	return &s, nil
}

// Register creates an account and logs it in.
func (c *Client) Register(ctx context.Context, reg Registration) (*Session, error) {
	var s Session
	if err := c.do(ctx, http.MethodPost, nil, reg, &s, "auth", "register"); err != nil {
		return nil, err
	}
	return &s, nil
}

// Profile returns the user the context's token belongs to.
func (c *Client) Profile(ctx context.Context) (*User, error) {
	var u User
	if err := c.do(ctx, http.MethodGet, nil, nil, &u, "users", "me"); err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateProfile saves the profile of the context's user.
func (c *Client) UpdateProfile(ctx context.Context, update ProfileUpdate) (*User, error) {
	var u User
	if err := c.do(ctx, http.MethodPut, nil, update, &u, "users", "me"); err != nil {
		return nil, err
	}
	return &u, nil
}

// ListUsers returns every user. Admin only.
func (c *Client) ListUsers(ctx context.Context) ([]User, error) {
	var users []User
	if err := c.do(ctx, http.MethodGet, nil, nil, &users, "users"); err != nil {
		return nil, err
	}
	return users, nil
}

// Orders

// PlaceOrder submits an order.
func (c *Client) PlaceOrder(ctx context.Context, o *orders.Order) (*orders.Order, error) {
	var out orders.Order
	if err := c.do(ctx, http.MethodPost, nil, o, &out, "orders"); err != nil {
		return nil, err
	}
	if out.ID == "" {
		out = *o
	}
	logging.FromContext(ctx).Debug().Str("order_id", out.ID).Str("status", string(out.Status)).Msg("Order accepted by backend")
	return &out, nil
}

// ListOrders returns the context user's orders, or every order for admins
// when all is set.
func (c *Client) ListOrders(ctx context.Context, all bool) ([]orders.Order, error) {
	var query url.Values
	if all {
		query = url.Values{"scope": {"all"}}
	}
	var out []orders.Order
	if err := c.do(ctx, http.MethodGet, query, nil, &out, "orders"); err != nil {
		return nil, err
	}
	return out, nil
}

// Catalog source

// Compile-time interface check to ensure proper implementation.
var _ sources.Source = (*Client)(nil)

// ID returns sources.BackendID.
func (c *Client) ID() sources.ID {
	return sources.BackendID
}

// Fetch lists the products and builds a catalog from them.
func (c *Client) Fetch(ctx context.Context) (*catalogs.Catalog, error) {
	products, err := c.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	return catalogs.NewFromProducts(products,
		catalogs.WithSource("backend:"+c.BaseURL()),
		catalogs.WithFetchedAt(time.Now().UTC()),
	)
}
