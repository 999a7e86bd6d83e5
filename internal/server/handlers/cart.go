package handlers

import (
	"net/http"

	"github.com/vyfood/storefront/internal/server/events"
	"github.com/vyfood/storefront/internal/server/middleware"
	"github.com/vyfood/storefront/internal/server/response"
	"github.com/vyfood/storefront/pkg/cart"
	"github.com/vyfood/storefront/pkg/catalogs"
	"github.com/vyfood/storefront/pkg/errors"
	"github.com/vyfood/storefront/pkg/reconcile"
)

// CartLine is one cart line as shown to the customer.
type CartLine struct {
	cart.Line
	Total     catalogs.Money `json:"total"`
	PriceText string         `json:"price_text"`
	TotalText string         `json:"total_text"`
}

// CartView is the cart as the browser renders it.
type CartView struct {
	Lines        []CartLine         `json:"lines"`
	Count        int                `json:"count"`
	Subtotal     catalogs.Money     `json:"subtotal"`
	SubtotalText string             `json:"subtotal_text"`
	Notices      []reconcile.Notice `json:"notices"`
	Changed      bool               `json:"changed"`
	Reset        bool               `json:"reset,omitempty"`
	Summary      string             `json:"summary,omitempty"`

	// Persisted is the encoded cart, returned by /cart/reconcile so the
	// browser can write it back to local storage.
	Persisted string `json:"persisted,omitempty"`
}

// AddItemRequest is the body of POST /cart/items.
type AddItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// SetQuantityRequest is the body of PUT /cart/items/{id}.
type SetQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// ReconcileRequest is the body of POST /cart/reconcile.
type ReconcileRequest struct {
	Cart string `json:"cart"`
}

// cartView renders res in the language the browser asked for.
func (h *Handlers) cartView(r *http.Request, res *reconcile.Result) CartView {
	pr := h.storefront.Reconciler().PrinterFor(r.Header.Get("Accept-Language"))
	res.Localize(pr)

	view := CartView{
		Lines:   make([]CartLine, 0, len(res.Cart.Lines)),
		Notices: res.Notices,
		Changed: res.Changed,
		Reset:   res.Reset,
	}
	if view.Notices == nil {
		view.Notices = []reconcile.Notice{}
	}
	for _, l := range res.Cart.Lines {
		view.Lines = append(view.Lines, CartLine{
			Line:      l,
			Total:     l.Total(),
			PriceText: pr.Money(l.UnitPrice),
			TotalText: pr.Money(l.Total()),
		})
	}
	view.Count = res.Cart.Count()
	view.Subtotal = res.Cart.Subtotal()
	view.SubtotalText = pr.Money(view.Subtotal)
	if res.Changed {
		view.Summary = res.Summary()
	}
	return view
}

// respondCart writes the cart, or the error together with the cart when the
// mutation was applied partially.
func (h *Handlers) respondCart(w http.ResponseWriter, r *http.Request, res *reconcile.Result, err error) {
	switch {
	case err == nil:
		h.publishCart(r, res)
		response.OK(w, h.cartView(r, res))
	case errors.IsOutOfStock(err) && res != nil:
		h.publishCart(r, res)
		response.Conflict(w, "OUT_OF_STOCK", err.Error(), h.cartView(r, res))
	default:
		response.ErrorFromType(w, err)
	}
}

func (h *Handlers) publishCart(r *http.Request, res *reconcile.Result) {
	h.broker.PublishTo(middleware.SessionID(r.Context()), events.CartUpdated, map[string]any{
		"count":    res.Cart.Count(),
		"subtotal": res.Cart.Subtotal(),
	})
}

// HandleGetCart handles GET /api/v1/cart.
// @Summary Get cart
// @Description Reconcile the session cart against the catalog and return it
// @Tags cart
// @Produce json
// @Success 200 {object} response.Response{data=CartView}
// @Failure 503 {object} response.Response{error=response.Error}
// @Router /api/v1/cart [get].
func (h *Handlers) HandleGetCart(w http.ResponseWriter, r *http.Request) {
	res, err := h.storefront.LoadCart(r.Context(), middleware.SessionID(r.Context()))
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}
	response.OK(w, h.cartView(r, res))
}

// HandleAddItem handles POST /api/v1/cart/items.
// @Summary Add to cart
// @Tags cart
// @Accept json
// @Produce json
// @Param body body AddItemRequest true "Product and quantity"
// @Success 200 {object} response.Response{data=CartView}
// @Failure 404 {object} response.Response{error=response.Error}
// @Failure 409 {object} response.Response{error=response.Error}
// @Router /api/v1/cart/items [post].
func (h *Handlers) HandleAddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.ProductID == "" {
		response.Invalid(w, "Product is required", map[string]string{"product_id": "is required"})
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	res, err := h.storefront.UpdateCart(r.Context(), middleware.SessionID(r.Context()),
		func(c *cart.Cart, cat *catalogs.Catalog) error {
			p, ok := cat.Get(req.ProductID)
			if !ok || p.Hidden {
				return errors.NewNotFoundError("product", req.ProductID)
			}
			return c.Add(p, req.Quantity)
		})
	h.respondCart(w, r, res, err)
}

// HandleSetQuantity handles PUT /api/v1/cart/items/{id}.
// @Summary Change quantity
// @Description Set a line's quantity; zero removes the line
// @Tags cart
// @Accept json
// @Produce json
// @Param id path string true "Product ID"
// @Param body body SetQuantityRequest true "New quantity"
// @Success 200 {object} response.Response{data=CartView}
// @Failure 404 {object} response.Response{error=response.Error}
// @Router /api/v1/cart/items/{id} [put].
func (h *Handlers) HandleSetQuantity(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var req SetQuantityRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := h.storefront.UpdateCart(r.Context(), middleware.SessionID(r.Context()),
		func(c *cart.Cart, cat *catalogs.Catalog) error {
			err := c.SetQuantity(id, req.Quantity)
			if err != nil && !errors.IsOutOfStock(err) {
				return err
			}
			// Raising a quantity is checked against stock like an add.
			if l, ok := c.Line(id); ok {
				if p, ok := cat.Get(id); ok && l.Quantity > p.Stock {
					_ = c.SetQuantity(id, p.Stock)
					return errors.NewStockError(id, req.Quantity, p.Stock)
				}
			}
			return err
		})
	h.respondCart(w, r, res, err)
}

// HandleRemoveItem handles DELETE /api/v1/cart/items/{id}.
// @Summary Remove from cart
// @Tags cart
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} response.Response{data=CartView}
// @Failure 404 {object} response.Response{error=response.Error}
// @Router /api/v1/cart/items/{id} [delete].
func (h *Handlers) HandleRemoveItem(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	res, err := h.storefront.UpdateCart(r.Context(), middleware.SessionID(r.Context()),
		func(c *cart.Cart, _ *catalogs.Catalog) error {
			return c.Remove(id)
		})
	h.respondCart(w, r, res, err)
}

// HandleClearCart handles DELETE /api/v1/cart.
// @Summary Empty cart
// @Tags cart
// @Success 204
// @Router /api/v1/cart [delete].
func (h *Handlers) HandleClearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.storefront.ClearCart(r.Context(), middleware.SessionID(r.Context())); err != nil {
		response.ErrorFromType(w, err)
		return
	}
	h.broker.PublishTo(middleware.SessionID(r.Context()), events.CartUpdated, map[string]any{
		"count":    0,
		"subtotal": catalogs.Money(0),
	})
	response.NoContent(w)
}

// HandleReconcile handles POST /api/v1/cart/reconcile.
// @Summary Reconcile a browser cart
// @Description Reconcile a cart kept in browser storage without touching the session cart
// @Tags cart
// @Accept json
// @Produce json
// @Param body body ReconcileRequest true "Persisted cart"
// @Success 200 {object} response.Response{data=CartView}
// @Failure 503 {object} response.Response{error=response.Error}
// @Router /api/v1/cart/reconcile [post].
func (h *Handlers) HandleReconcile(w http.ResponseWriter, r *http.Request) {
	var req ReconcileRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	cat, err := h.storefront.Catalog()
	if err != nil {
		response.ServiceUnavailable(w, "Catalog not loaded yet")
		return
	}
	res, err := h.storefront.Reconciler().ReconcilePersisted(req.Cart, cat)
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}
	view := h.cartView(r, res)
	view.Persisted = res.Persisted
	response.OK(w, view)
}
