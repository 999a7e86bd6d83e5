package handlers

import (
	"net/http"

	"github.com/vyfood/storefront/internal/server/filter"
	"github.com/vyfood/storefront/internal/server/response"
	"github.com/vyfood/storefront/pkg/catalogs"
	"github.com/vyfood/storefront/pkg/errors"
)

// ProductList is the body of GET /products.
type ProductList struct {
	Products []catalogs.Product `json:"products"`
	Total    int                `json:"total"`
	Limit    int                `json:"limit"`
	Offset   int                `json:"offset"`
}

// HandleListProducts handles GET /api/v1/products.
// @Summary List products
// @Description List visible products with optional filtering, sorting and paging
// @Tags products
// @Produce json
// @Param filter query string false "expr filter, e.g. price < 3000 && stock > 0"
// @Param category query string false "Category, case-insensitive"
// @Param q query string false "Substring of name or description"
// @Param available query boolean false "Only products in stock"
// @Param min_price query string false "Minimum price, e.g. 20.00"
// @Param max_price query string false "Maximum price"
// @Param sort query string false "price, name or stock"
// @Param order query string false "asc or desc"
// @Param limit query int false "Page size" default(50)
// @Param offset query int false "Page offset"
// @Success 200 {object} response.Response{data=ProductList}
// @Failure 400 {object} response.Response{error=response.Error}
// @Router /api/v1/products [get].
func (h *Handlers) HandleListProducts(w http.ResponseWriter, r *http.Request) {
	query := filter.ParseProductQuery(r)

	result, err := h.cache.GetOrLoad("products:"+query.Key(), func() (any, error) {
		cat, err := h.storefront.Catalog()
		if err != nil {
			return nil, err
		}
		matched, err := cat.Filter(query.Filter)
		if err != nil {
			return nil, err
		}
		page, total := query.Apply(matched)
		return ProductList{Products: page, Total: total, Limit: query.Limit, Offset: query.Offset}, nil
	})
	if err != nil {
		if errors.IsNotFound(err) {
			response.ServiceUnavailable(w, "Catalog not loaded yet")
			return
		}
		response.ErrorFromType(w, err)
		return
	}
	response.OK(w, result)
}

// HandleGetProduct handles GET /api/v1/products/{id}.
// @Summary Get product
// @Tags products
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} response.Response{data=catalogs.Product}
// @Failure 404 {object} response.Response{error=response.Error}
// @Router /api/v1/products/{id} [get].
func (h *Handlers) HandleGetProduct(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	cat, err := h.storefront.Catalog()
	if err != nil {
		response.ServiceUnavailable(w, "Catalog not loaded yet")
		return
	}
	p, ok := cat.Get(id)
	if !ok || p.Hidden {
		response.NotFound(w, "Product not found", id)
		return
	}
	response.OK(w, p)
}

// HandleCategories handles GET /api/v1/categories.
// @Summary List categories
// @Tags products
// @Produce json
// @Success 200 {object} response.Response{data=[]string}
// @Router /api/v1/categories [get].
func (h *Handlers) HandleCategories(w http.ResponseWriter, _ *http.Request) {
	result, err := h.cache.GetOrLoad("categories", func() (any, error) {
		cat, err := h.storefront.Catalog()
		if err != nil {
			return nil, err
		}
		return cat.Categories(), nil
	})
	if err != nil {
		response.ServiceUnavailable(w, "Catalog not loaded yet")
		return
	}
	response.OK(w, result)
}
