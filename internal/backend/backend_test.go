package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/agentstation/utc"

	"github.com/vyfood/storefront/internal/transport"
	"github.com/vyfood/storefront/pkg/catalogs"
	"github.com/vyfood/storefront/pkg/errors"
	"github.com/vyfood/storefront/pkg/orders"
	"github.com/vyfood/storefront/pkg/sources"
)

// fakeBackend serves a tiny version of the backend API.
func fakeBackend(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /products", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"data": []map[string]any{
			{"id": "pho-bo", "name": "Phở bò", "price": 4500, "stock": 20},
			{"id": "bun-cha", "name": "Bún chả", "price": 5000, "stock": 3},
			{"id": "ca-phe", "name": "Cà phê", "price": 1800, "stock": 50, "hidden": true},
		}})
	})
	mux.HandleFunc("GET /products/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") != "pho-bo" {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "product not found"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"id": "pho-bo", "name": "Phở bò", "price": 4500, "stock": 20})
	})
	mux.HandleFunc("POST /products", func(w http.ResponseWriter, r *http.Request) {
		var p catalogs.Product
		_ = json.NewDecoder(r.Body).Decode(&p)
		p.ID = "new-1"
		writeJSON(w, http.StatusCreated, map[string]any{"data": p})
	})
	mux.HandleFunc("DELETE /products/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		var c Credentials
		_ = json.NewDecoder(r.Body).Decode(&c)
		if c.Password != "secret123" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "bad credentials"})
			return
		}
		writeJSON(w, http.StatusOK, Session{Token: "tok-1", User: User{ID: "u1", Email: c.Email, Role: RoleCustomer}})
	})
	mux.HandleFunc("GET /users/me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-1" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "login required"})
			return
		}
		writeJSON(w, http.StatusOK, User{ID: "u1", Email: "an@example.com", Role: RoleCustomer})
	})
	mux.HandleFunc("GET /users", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []User{{ID: "u1"}, {ID: "u2", Role: RoleAdmin}})
	})
	mux.HandleFunc("POST /orders", func(w http.ResponseWriter, r *http.Request) {
		var o orders.Order
		_ = json.NewDecoder(r.Body).Decode(&o)
		o.Status = orders.StatusConfirmed
		writeJSON(w, http.StatusCreated, o)
	})
	mux.HandleFunc("GET /orders", func(w http.ResponseWriter, r *http.Request) {
		base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		list := []orders.Order{
			{ID: "o1", Subtotal: 1000, Status: orders.StatusDelivered, CreatedAt: utc.Time{Time: base}},
			{ID: "o2", Subtotal: 2000, Status: orders.StatusPending, CreatedAt: utc.Time{Time: base.Add(time.Hour)}},
			{ID: "o3", Subtotal: 9999, Status: orders.StatusCancelled, CreatedAt: utc.Time{Time: base.Add(2 * time.Hour)}},
		}
		if r.URL.Query().Get("scope") != "all" {
			list = list[:1]
		}
		writeJSON(w, http.StatusOK, map[string]any{"data": list})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func newTestClient(t *testing.T, url string) *Client {
	t.Helper()
	c, err := New(Config{BaseURL: url, APIKey: "svc"})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return c
}

func TestNewRejectsBadURL(t *testing.T) {
	if _, err := New(Config{BaseURL: "not a url"}); !errors.IsValidationError(err) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestNewRejectsBadAuthScheme(t *testing.T) {
	if _, err := New(Config{BaseURL: "https://api.vyfood.vn/v1", Auth: "basic"}); !errors.IsValidationError(err) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestProducts(t *testing.T) {
	c := newTestClient(t, fakeBackend(t).URL)
	ctx := context.Background()

	products, err := c.ListProducts(ctx)
	if err != nil {
		t.Fatalf("ListProducts failed: %v", err)
	}
	if len(products) != 3 || products[0].ID != "pho-bo" || products[0].Price != 4500 {
		t.Errorf("unexpected products: %+v", products)
	}

	p, err := c.GetProduct(ctx, "pho-bo")
	if err != nil || p.Name != "Phở bò" {
		t.Errorf("GetProduct = %+v, %v", p, err)
	}

	_, err = c.GetProduct(ctx, "missing")
	if !errors.IsNotFound(err) {
		t.Errorf("expected not found, got %v", err)
	}
	var apiErr *errors.APIError
	if !errors.As(err, &apiErr) || apiErr.Message != "product not found" || apiErr.Service != "backend" {
		t.Errorf("unexpected API error: %#v", err)
	}

	created, err := c.CreateProduct(ctx, catalogs.Product{Name: "Chè", Price: 1500})
	if err != nil || created.ID != "new-1" || created.Name != "Chè" {
		t.Errorf("CreateProduct = %+v, %v", created, err)
	}

	if err := c.DeleteProduct(ctx, "pho-bo"); err != nil {
		t.Errorf("DeleteProduct failed: %v", err)
	}
}

func TestFetchBuildsCatalog(t *testing.T) {
	c := newTestClient(t, fakeBackend(t).URL)
	if c.ID() != sources.BackendID {
		t.Errorf("ID = %s", c.ID())
	}

	catalog, err := c.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if catalog.Len() != 3 {
		t.Errorf("expected 3 products, got %d", catalog.Len())
	}
	if !strings.HasPrefix(catalog.Source(), "backend:") {
		t.Errorf("unexpected source %q", catalog.Source())
	}
	if p, ok := catalog.Get("ca-phe"); !ok || !p.Hidden {
		t.Errorf("hidden product not carried: %+v", p)
	}
}

func TestLoginAndProfile(t *testing.T) {
	c := newTestClient(t, fakeBackend(t).URL)
	ctx := context.Background()

	_, err := c.Login(ctx, Credentials{Email: "an@example.com", Password: "wrong"})
	var authErr *errors.AuthenticationError
	if !errors.As(err, &authErr) || !errors.IsUnauthorized(err) {
		t.Errorf("expected authentication error, got %v", err)
	}

	s, err := c.Login(ctx, Credentials{Email: "an@example.com", Password: "secret123"})
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if s.Token != "tok-1" || s.User.Email != "an@example.com" || s.User.IsAdmin() {
		t.Errorf("unexpected session %+v", s)
	}

	if _, err := c.Profile(ctx); !errors.IsUnauthorized(err) {
		t.Errorf("expected unauthorized without token, got %v", err)
	}
	u, err := c.Profile(transport.WithToken(ctx, s.Token))
	if err != nil || u.ID != "u1" {
		t.Errorf("Profile = %+v, %v", u, err)
	}
}

func TestPlaceOrder(t *testing.T) {
	c := newTestClient(t, fakeBackend(t).URL)
	o := &orders.Order{ID: "abc", Items: []orders.Item{{ProductID: "pho-bo", Quantity: 2, UnitPrice: 4500}}, Subtotal: 9000, Status: orders.StatusPending}

	placed, err := c.PlaceOrder(context.Background(), o)
	if err != nil {
		t.Fatalf("PlaceOrder failed: %v", err)
	}
	if placed.ID != "abc" || placed.Status != orders.StatusConfirmed || placed.Count() != 2 {
		t.Errorf("unexpected order %+v", placed)
	}

	mine, err := c.ListOrders(context.Background(), false)
	if err != nil || len(mine) != 1 {
		t.Errorf("ListOrders = %v, %v", mine, err)
	}
}

func TestDashboard(t *testing.T) {
	c := newTestClient(t, fakeBackend(t).URL)

	d, err := c.Dashboard(context.Background())
	if err != nil {
		t.Fatalf("Dashboard failed: %v", err)
	}
	if d.Products != 3 || d.Hidden != 1 || d.Users != 2 || d.Orders != 3 {
		t.Errorf("unexpected counts: %+v", d)
	}
	if d.PendingCount != 1 || d.Revenue != 3000 {
		t.Errorf("pending=%d revenue=%d", d.PendingCount, d.Revenue)
	}
	if len(d.LowStock) != 1 || d.LowStock[0].ID != "bun-cha" {
		t.Errorf("unexpected low stock: %+v", d.LowStock)
	}
	if len(d.RecentOrders) != 3 || d.RecentOrders[0].ID != "o3" {
		t.Errorf("recent orders not newest first: %+v", d.RecentOrders)
	}
}

func TestDashboardFailureCancels(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.URL.Path == "/users" {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "db down"})
			return
		}
		writeJSON(w, http.StatusOK, []any{})
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv.URL).Dashboard(context.Background())
	if !errors.Is(err, errors.ErrBackendUnavailable) {
		t.Errorf("expected backend unavailable, got %v", err)
	}
	if calls.Load() == 0 {
		t.Error("no requests made")
	}
}
