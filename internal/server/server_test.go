package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	storefront "github.com/vyfood/storefront"
	"github.com/vyfood/storefront/internal/server/response"
	"github.com/vyfood/storefront/internal/store"
	"github.com/vyfood/storefront/pkg/cart"
	"github.com/vyfood/storefront/pkg/catalogs"
	"github.com/vyfood/storefront/pkg/orders"
	"github.com/vyfood/storefront/pkg/sources"
)

const testAdminKey = "s3cret"

type fakeOrders struct {
	mu     sync.Mutex
	placed []*orders.Order
}

func (f *fakeOrders) PlaceOrder(_ context.Context, o *orders.Order) (*orders.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	placed := *o
	placed.Status = orders.StatusConfirmed
	f.placed = append(f.placed, &placed)
	return &placed, nil
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *response.Error `json:"error"`
}

type cartBody struct {
	Lines []struct {
		ID       string `json:"id"`
		Quantity int    `json:"quantity"`
	} `json:"lines"`
	Count   int  `json:"count"`
	Changed bool `json:"changed"`
	Notices []struct {
		Kind    string `json:"kind"`
		Message string `json:"message"`
	} `json:"notices"`
	Persisted string `json:"persisted"`
}

type testEnv struct {
	sf     storefront.Storefront
	srv    *Server
	http   *httptest.Server
	client *http.Client
	orders *fakeOrders
}

func newTestEnv(t *testing.T, mutate func(*Config)) *testEnv {
	t.Helper()

	placer := &fakeOrders{}
	sf, err := storefront.New(
		storefront.WithSource(sources.NewStatic(catalogs.Sample())),
		storefront.WithInitialCatalog(catalogs.Sample()),
		storefront.WithStore(store.NewMemory()),
		storefront.WithOrders(placer),
	)
	if err != nil {
		t.Fatalf("storefront.New() failed: %v", err)
	}

	cfg := DefaultConfig()
	cfg.AdminKey = testAdminKey
	cfg.RateLimit = 0
	if mutate != nil {
		mutate(&cfg)
	}

	srv, err := New(sf, nil, cfg, nil)
	if err != nil {
		t.Fatalf("server.New() failed: %v", err)
	}
	srv.Start()

	ts := httptest.NewServer(srv.Handler())
	jar, _ := cookiejar.New(nil)

	t.Cleanup(func() {
		ts.Close()
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
		_ = sf.Close()
	})

	return &testEnv{
		sf:     sf,
		srv:    srv,
		http:   ts,
		client: &http.Client{Jar: jar},
		orders: placer,
	}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, header http.Header) (*http.Response, envelope) {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		r = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, e.http.URL+path, r)
	if err != nil {
		t.Fatal(err)
	}
	for k, v := range header {
		req.Header[k] = v
	}
	resp, err := e.client.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	raw, _ := io.ReadAll(resp.Body)
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") && len(raw) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil {
			t.Fatalf("decoding %s %s: %v", method, path, err)
		}
	}
	return resp, env
}

func decodeCart(t *testing.T, env envelope) cartBody {
	t.Helper()
	var c cartBody
	if err := json.Unmarshal(env.Data, &c); err != nil {
		t.Fatalf("decoding cart: %v", err)
	}
	return c
}

// TestServerInitialization tests that New() and Shutdown() complete without blocking.
func TestServerInitialization(t *testing.T) {
	sf, err := storefront.New(storefront.WithInitialCatalog(catalogs.Sample()))
	if err != nil {
		t.Fatal(err)
	}
	defer sf.Close()

	done := make(chan struct{})
	var srv *Server
	var newErr error
	go func() {
		srv, newErr = New(sf, nil, DefaultConfig(), nil)
		close(done)
	}()

	select {
	case <-done:
		if newErr != nil {
			t.Fatalf("server.New() failed: %v", newErr)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server.New() deadlocked - did not complete within 5 seconds")
	}

	srv.Start()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown() = %v", err)
	}
}

func TestConfigAddr(t *testing.T) {
	cfg := DefaultConfig()
	if got := cfg.Addr(); got != "localhost:8080" {
		t.Errorf("Addr() = %q", got)
	}
	cfg.Host = "::1"
	if got := cfg.Addr(); got != "[::1]:8080" {
		t.Errorf("Addr() = %q", got)
	}
}

func TestConfigNormalize(t *testing.T) {
	cfg, err := Config{PathPrefix: "api/v2/"}.normalize()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.PathPrefix != "/api/v2" || cfg.CacheTTL != DefaultConfig().CacheTTL {
		t.Errorf("normalize() = prefix %q ttl %s", cfg.PathPrefix, cfg.CacheTTL)
	}

	for _, bad := range []Config{{Port: 70000}, {PathPrefix: "/"}, {RateLimit: -1}, {CacheTTL: -time.Second}, {TrustedProxies: []string{"proxy.local"}}} {
		if _, err := bad.normalize(); err == nil {
			t.Errorf("normalize(%+v) accepted", bad)
		}
	}
}

func TestHealthAndReady(t *testing.T) {
	env := newTestEnv(t, nil)

	resp, _ := env.do(t, "GET", "/health", nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("health status = %d", resp.StatusCode)
	}
	resp, body := env.do(t, "GET", "/api/v1/ready", nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("ready status = %d", resp.StatusCode)
	}
	if !strings.Contains(string(body.Data), `"products":4`) {
		t.Errorf("ready body = %s", body.Data)
	}
}

func TestProducts(t *testing.T) {
	env := newTestEnv(t, nil)

	resp, body := env.do(t, "GET", "/api/v1/products?sort=price", nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var list struct {
		Products []catalogs.Product `json:"products"`
		Total    int                `json:"total"`
	}
	if err := json.Unmarshal(body.Data, &list); err != nil {
		t.Fatal(err)
	}
	if list.Total != 3 || list.Products[0].ID != "banh-mi" {
		t.Errorf("got total %d, first %q", list.Total, list.Products[0].ID)
	}

	resp, _ = env.do(t, "GET", "/api/v1/products/ca-phe", nil, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("hidden product status = %d, want 404", resp.StatusCode)
	}
	resp, _ = env.do(t, "GET", "/api/v1/products/pho-bo", nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("product status = %d", resp.StatusCode)
	}

	resp, body = env.do(t, "GET", "/api/v1/products?filter=price+%3E", nil, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad filter status = %d, want 400", resp.StatusCode)
	}
	if body.Error == nil {
		t.Error("bad filter should carry an error")
	}

	_, body = env.do(t, "GET", "/api/v1/categories", nil, nil)
	if string(body.Data) != `["bread","drinks","noodles"]` {
		t.Errorf("categories = %s", body.Data)
	}
}

func TestProductCacheClearedOnRefresh(t *testing.T) {
	env := newTestEnv(t, nil)

	env.do(t, "GET", "/api/v1/products", nil, nil)
	if env.srv.Cache().Len() == 0 {
		t.Fatal("product list should be cached")
	}

	updated := catalogs.Sample()
	_ = updated.Set(catalogs.Product{ID: "pho-bo", Name: "Phở bò", Category: "noodles", Price: 4800, Stock: 20})
	env.sf.SetCatalog(updated)

	if n := env.srv.Cache().Len(); n != 0 {
		t.Errorf("cache holds %d items after refresh", n)
	}
}

func TestCartFlow(t *testing.T) {
	env := newTestEnv(t, nil)

	resp, body := env.do(t, "POST", "/api/v1/cart/items", map[string]any{"product_id": "pho-bo", "quantity": 2}, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("add status = %d: %+v", resp.StatusCode, body.Error)
	}
	if c := decodeCart(t, body); c.Count != 2 {
		t.Errorf("count = %d, want 2", c.Count)
	}

	var sessionSet bool
	for _, c := range env.client.Jar.Cookies(resp.Request.URL) {
		if c.Name == "vyfood_session" {
			sessionSet = true
		}
	}
	if !sessionSet {
		t.Error("session cookie not set")
	}

	// bun-cha has 3 in stock: the line is clamped and the client is told.
	resp, body = env.do(t, "POST", "/api/v1/cart/items", map[string]any{"product_id": "bun-cha", "quantity": 5}, nil)
	if resp.StatusCode != http.StatusConflict || body.Error.Code != "OUT_OF_STOCK" {
		t.Fatalf("clamped add = %d %+v", resp.StatusCode, body.Error)
	}
	if c := decodeCart(t, body); c.Count != 5 {
		t.Errorf("count after clamp = %d, want 5", c.Count)
	}

	resp, _ = env.do(t, "POST", "/api/v1/cart/items", map[string]any{"product_id": "ca-phe"}, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("hidden product add = %d, want 404", resp.StatusCode)
	}

	resp, body = env.do(t, "PUT", "/api/v1/cart/items/pho-bo", map[string]any{"quantity": 1}, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("set quantity = %d", resp.StatusCode)
	}
	if c := decodeCart(t, body); c.Count != 4 {
		t.Errorf("count after set = %d, want 4", c.Count)
	}

	resp, body = env.do(t, "DELETE", "/api/v1/cart/items/bun-cha", nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("remove = %d", resp.StatusCode)
	}
	if c := decodeCart(t, body); len(c.Lines) != 1 || c.Lines[0].ID != "pho-bo" {
		t.Errorf("lines after remove = %+v", c.Lines)
	}

	resp, _ = env.do(t, "DELETE", "/api/v1/cart", nil, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("clear = %d", resp.StatusCode)
	}
	_, body = env.do(t, "GET", "/api/v1/cart", nil, nil)
	if c := decodeCart(t, body); c.Count != 0 || len(c.Lines) != 0 {
		t.Errorf("cart after clear = %+v", c)
	}

	resp, body = env.do(t, "POST", "/api/v1/cart/items", map[string]any{"product_id": "pho-bo", "bogus": true}, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("unknown field = %d, want 400 (%+v)", resp.StatusCode, body.Error)
	}
}

func TestReconcileBrowserCart(t *testing.T) {
	env := newTestEnv(t, nil)

	persisted := cart.New(
		cart.Line{ProductID: "ca-phe", Name: "Cà phê sữa đá", UnitPrice: 1800, Quantity: 1},
		cart.Line{ProductID: "pho-bo", Name: "Phở bò", UnitPrice: 4000, Quantity: 1},
	).MustEncode()

	_, en := env.do(t, "POST", "/api/v1/cart/reconcile", map[string]any{"cart": persisted}, http.Header{"Accept-Language": {"en-US"}})
	_, vi := env.do(t, "POST", "/api/v1/cart/reconcile", map[string]any{"cart": persisted}, http.Header{"Accept-Language": {"vi-VN,vi;q=0.9"}})

	enCart, viCart := decodeCart(t, en), decodeCart(t, vi)
	if !enCart.Changed || len(enCart.Notices) != 2 {
		t.Fatalf("notices = %+v", enCart.Notices)
	}
	if len(enCart.Lines) != 1 || enCart.Lines[0].ID != "pho-bo" {
		t.Errorf("lines = %+v", enCart.Lines)
	}
	if enCart.Persisted == "" {
		t.Error("persisted cart missing")
	}
	for i := range enCart.Notices {
		if enCart.Notices[i].Message == viCart.Notices[i].Message {
			t.Errorf("notice %d not localized: %q", i, enCart.Notices[i].Message)
		}
	}

	// The session cart is untouched.
	_, body := env.do(t, "GET", "/api/v1/cart", nil, nil)
	if c := decodeCart(t, body); c.Count != 0 {
		t.Errorf("session cart count = %d", c.Count)
	}
}

func TestCheckout(t *testing.T) {
	env := newTestEnv(t, nil)

	form := map[string]any{
		"customer": map[string]any{
			"name":    "Nguyễn Văn A",
			"phone":   "090 123 4567",
			"address": "12 Lý Thường Kiệt, Hà Nội",
		},
		"payment_method": "cod",
	}

	resp, body := env.do(t, "POST", "/api/v1/checkout", map[string]any{"payment_method": "cod"}, nil)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("invalid form = %d", resp.StatusCode)
	}
	if body.Error.Fields["name"] == "" || body.Error.Fields["phone"] == "" {
		t.Errorf("fields = %v", body.Error.Fields)
	}

	resp, _ = env.do(t, "POST", "/api/v1/checkout", form, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("empty cart checkout = %d, want 400", resp.StatusCode)
	}

	env.do(t, "POST", "/api/v1/cart/items", map[string]any{"product_id": "pho-bo", "quantity": 2}, nil)

	// The price changes behind the customer's back.
	updated := catalogs.Sample()
	_ = updated.Set(catalogs.Product{ID: "pho-bo", Name: "Phở bò", Category: "noodles", Price: 4800, Stock: 20})
	env.sf.SetCatalog(updated)

	resp, body = env.do(t, "POST", "/api/v1/checkout", form, nil)
	if resp.StatusCode != http.StatusConflict || body.Error.Code != "CART_CHANGED" {
		t.Fatalf("changed checkout = %d %+v", resp.StatusCode, body.Error)
	}
	if c := decodeCart(t, body); len(c.Notices) != 1 || c.Notices[0].Kind != "price_changed" {
		t.Errorf("notices = %+v", c.Notices)
	}

	resp, body = env.do(t, "POST", "/api/v1/checkout", form, nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("checkout = %d %+v", resp.StatusCode, body.Error)
	}
	var order orders.Order
	if err := json.Unmarshal(body.Data, &order); err != nil {
		t.Fatal(err)
	}
	if order.Subtotal != 9600 || order.Customer.Phone != "0901234567" {
		t.Errorf("order = %+v", order)
	}

	_, body = env.do(t, "GET", "/api/v1/cart", nil, nil)
	if c := decodeCart(t, body); c.Count != 0 {
		t.Errorf("cart not cleared after checkout: %+v", c)
	}
}

func TestAdminAuth(t *testing.T) {
	env := newTestEnv(t, nil)

	resp, _ := env.do(t, "POST", "/api/v1/admin/refresh", nil, nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("no key = %d, want 401", resp.StatusCode)
	}
	resp, _ = env.do(t, "POST", "/api/v1/admin/refresh", nil, http.Header{"X-Admin-Key": {"wrong"}})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("wrong key = %d, want 401", resp.StatusCode)
	}
	resp, body := env.do(t, "POST", "/api/v1/admin/refresh", nil, http.Header{"X-Admin-Key": {testAdminKey}})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("refresh = %d %+v", resp.StatusCode, body.Error)
	}

	// Product management needs a backend.
	resp, _ = env.do(t, "GET", "/api/v1/admin/dashboard", nil, http.Header{"X-Admin-Key": {testAdminKey}})
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("dashboard without backend = %d, want 503", resp.StatusCode)
	}

	closed := newTestEnv(t, func(c *Config) { c.AdminKey = "" })
	resp, _ = closed.do(t, "POST", "/api/v1/admin/refresh", nil, http.Header{"X-Admin-Key": {""}})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("closed admin API = %d, want 401", resp.StatusCode)
	}
}

func TestAccountWithoutBackend(t *testing.T) {
	env := newTestEnv(t, nil)

	resp, _ := env.do(t, "POST", "/api/v1/auth/login", map[string]any{"email": "a@b.vn", "password": "password1"}, nil)
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("login = %d, want 503", resp.StatusCode)
	}
	resp, _ = env.do(t, "GET", "/api/v1/orders", nil, nil)
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("orders = %d, want 503", resp.StatusCode)
	}
}

func TestStaticAndFallbacks(t *testing.T) {
	env := newTestEnv(t, nil)

	for _, path := range []string{"/", "/cart", "/products/pho-bo"} {
		resp, _ := env.do(t, "GET", path, nil, nil)
		if resp.StatusCode != http.StatusOK || !strings.HasPrefix(resp.Header.Get("Content-Type"), "text/html") {
			t.Errorf("GET %s = %d %s", path, resp.StatusCode, resp.Header.Get("Content-Type"))
		}
	}

	resp, _ := env.do(t, "GET", "/assets/app.js", nil, nil)
	if resp.StatusCode != http.StatusOK || !strings.Contains(resp.Header.Get("Cache-Control"), "immutable") {
		t.Errorf("asset = %d %q", resp.StatusCode, resp.Header.Get("Cache-Control"))
	}

	resp, _ = env.do(t, "GET", "/missing.png", nil, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("missing file = %d", resp.StatusCode)
	}

	resp, body := env.do(t, "GET", "/api/v1/nope", nil, nil)
	if resp.StatusCode != http.StatusNotFound || body.Error == nil {
		t.Errorf("unknown API path = %d", resp.StatusCode)
	}

	resp, _ = env.do(t, "POST", "/", nil, nil)
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("POST / = %d", resp.StatusCode)
	}

	resp, _ = env.do(t, "GET", "/api/v1/openapi.json", nil, nil)
	if resp.StatusCode != http.StatusOK || resp.Header.Get("ETag") == "" {
		t.Fatalf("openapi = %d etag=%q", resp.StatusCode, resp.Header.Get("ETag"))
	}
	resp, _ = env.do(t, "GET", "/api/v1/openapi.json", nil, http.Header{"If-None-Match": {resp.Header.Get("ETag")}})
	if resp.StatusCode != http.StatusNotModified {
		t.Errorf("conditional openapi = %d", resp.StatusCode)
	}
}

func TestRequestIDHeader(t *testing.T) {
	env := newTestEnv(t, nil)
	resp, _ := env.do(t, "GET", "/health", nil, http.Header{"X-Request-Id": {"abc-123"}})
	if got := resp.Header.Get("X-Request-ID"); got != "abc-123" {
		t.Errorf("X-Request-ID = %q", got)
	}
}
