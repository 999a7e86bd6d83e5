package handlers

import (
	"context"
	"net/http"

	"github.com/vyfood/storefront/internal/server/response"
	"github.com/vyfood/storefront/internal/validation"
	"github.com/vyfood/storefront/pkg/catalogs"
	"github.com/vyfood/storefront/pkg/differ"
	"github.com/vyfood/storefront/pkg/logging"
)

// RefreshResult is the body of POST /admin/refresh.
type RefreshResult struct {
	Changes      *differ.Changeset `json:"changes"`
	CartsChanged int               `json:"carts_changed"`
}

// HandleCreateProduct handles POST /api/v1/admin/products.
// @Summary Create product
// @Tags admin
// @Accept json
// @Produce json
// @Security AdminKey
// @Param body body catalogs.Product true "Product"
// @Success 201 {object} response.Response{data=catalogs.Product}
// @Failure 422 {object} response.Response{error=response.Error}
// @Router /api/v1/admin/products [post].
func (h *Handlers) HandleCreateProduct(w http.ResponseWriter, r *http.Request) {
	if !h.requireBackend(w) {
		return
	}
	var p catalogs.Product
	if !decodeJSON(w, r, &p) {
		return
	}
	if err := validation.Product(p); err != nil {
		response.ErrorFromType(w, err)
		return
	}
	created, err := h.backend.CreateProduct(r.Context(), p)
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}
	h.refreshAfterWrite(r.Context())
	response.Created(w, created)
}

// HandleUpdateProduct handles PUT /api/v1/admin/products/{id}.
// @Summary Update product
// @Tags admin
// @Accept json
// @Produce json
// @Security AdminKey
// @Param id path string true "Product ID"
// @Param body body catalogs.Product true "Product"
// @Success 200 {object} response.Response{data=catalogs.Product}
// @Failure 404 {object} response.Response{error=response.Error}
// @Router /api/v1/admin/products/{id} [put].
func (h *Handlers) HandleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	if !h.requireBackend(w) {
		return
	}
	var p catalogs.Product
	if !decodeJSON(w, r, &p) {
		return
	}
	p.ID = r.PathValue("id")
	if err := validation.Product(p); err != nil {
		response.ErrorFromType(w, err)
		return
	}
	updated, err := h.backend.UpdateProduct(r.Context(), p)
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}
	h.refreshAfterWrite(r.Context())
	response.OK(w, updated)
}

// HandleDeleteProduct handles DELETE /api/v1/admin/products/{id}.
// @Summary Delete product
// @Tags admin
// @Security AdminKey
// @Param id path string true "Product ID"
// @Success 204
// @Failure 404 {object} response.Response{error=response.Error}
// @Router /api/v1/admin/products/{id} [delete].
func (h *Handlers) HandleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	if !h.requireBackend(w) {
		return
	}
	if err := h.backend.DeleteProduct(r.Context(), r.PathValue("id")); err != nil {
		response.ErrorFromType(w, err)
		return
	}
	h.refreshAfterWrite(r.Context())
	response.NoContent(w)
}

// refreshAfterWrite pulls the catalog after a product write so shoppers see
// the change without waiting for the next scheduled refresh. Failures are
// logged; the write itself already succeeded.
func (h *Handlers) refreshAfterWrite(ctx context.Context) {
	if _, err := h.storefront.Refresh(ctx); err != nil {
		logging.FromContext(ctx).Warn().Err(err).Msg("Catalog refresh after product write failed")
	}
}

// HandleListUsers handles GET /api/v1/admin/users.
// @Summary List users
// @Tags admin
// @Produce json
// @Security AdminKey
// @Success 200 {object} response.Response{data=[]backend.User}
// @Router /api/v1/admin/users [get].
func (h *Handlers) HandleListUsers(w http.ResponseWriter, r *http.Request) {
	if !h.requireBackend(w) {
		return
	}
	users, err := h.backend.ListUsers(r.Context())
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}
	response.OK(w, users)
}

// HandleListAllOrders handles GET /api/v1/admin/orders.
// @Summary List all orders
// @Tags admin
// @Produce json
// @Security AdminKey
// @Success 200 {object} response.Response{data=[]orders.Order}
// @Router /api/v1/admin/orders [get].
func (h *Handlers) HandleListAllOrders(w http.ResponseWriter, r *http.Request) {
	if !h.requireBackend(w) {
		return
	}
	list, err := h.backend.ListOrders(r.Context(), true)
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}
	response.OK(w, list)
}

// HandleDashboard handles GET /api/v1/admin/dashboard.
// @Summary Back-office dashboard
// @Tags admin
// @Produce json
// @Security AdminKey
// @Success 200 {object} response.Response{data=backend.Dashboard}
// @Failure 502 {object} response.Response{error=response.Error}
// @Router /api/v1/admin/dashboard [get].
func (h *Handlers) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	if !h.requireBackend(w) {
		return
	}
	d, err := h.backend.Dashboard(r.Context())
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}
	response.OK(w, d)
}

// HandleRefresh handles POST /api/v1/admin/refresh.
// @Summary Refresh catalog
// @Description Fetch the catalog now and reconcile every stored cart
// @Tags admin
// @Produce json
// @Security AdminKey
// @Success 200 {object} response.Response{data=RefreshResult}
// @Failure 502 {object} response.Response{error=response.Error}
// @Router /api/v1/admin/refresh [post].
func (h *Handlers) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	changes, err := h.storefront.Refresh(ctx)
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}
	n, err := h.storefront.ReconcileAll(ctx)
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}
	logging.FromContext(ctx).Info().
		Int("changes", changes.Total()).
		Int("carts_changed", n).
		Msg("Catalog refreshed by admin")
	response.OK(w, RefreshResult{Changes: changes, CartsChanged: n})
}
