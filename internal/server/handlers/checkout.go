package handlers

import (
	"net/http"

	storefront "github.com/vyfood/storefront"
	"github.com/vyfood/storefront/internal/server/events"
	"github.com/vyfood/storefront/internal/server/middleware"
	"github.com/vyfood/storefront/internal/server/response"
	"github.com/vyfood/storefront/internal/validation"
	"github.com/vyfood/storefront/pkg/errors"
	"github.com/vyfood/storefront/pkg/logging"
	"github.com/vyfood/storefront/pkg/orders"
)

// HandleCheckout handles POST /api/v1/checkout.
// @Summary Place order
// @Description Reconcile the cart and place the order. If reconciliation changed the cart the order is refused with the updated cart so the customer can review it.
// @Tags checkout
// @Accept json
// @Produce json
// @Param body body orders.Request true "Delivery details and payment method"
// @Success 201 {object} response.Response{data=orders.Order}
// @Failure 409 {object} response.Response{data=CartView,error=response.Error}
// @Failure 422 {object} response.Response{error=response.Error}
// @Router /api/v1/checkout [post].
func (h *Handlers) HandleCheckout(w http.ResponseWriter, r *http.Request) {
	var req orders.Request
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Customer.Phone = validation.NormalizePhone(req.Customer.Phone)
	if err := validation.Checkout(req); err != nil {
		response.ErrorFromType(w, err)
		return
	}

	ctx := r.Context()
	session := middleware.SessionID(ctx)
	order, err := h.storefront.Checkout(ctx, session, req)
	if err != nil {
		var changed *storefront.CartChangedError
		switch {
		case errors.As(err, &changed):
			response.Conflict(w, "CART_CHANGED", "Your cart changed, please review it before ordering", h.cartView(r, changed.Result))
		case errors.IsValidationError(err):
			response.BadRequest(w, err.Error(), "")
		default:
			var cfgErr *errors.ConfigError
			if errors.As(err, &cfgErr) {
				response.ServiceUnavailable(w, "Ordering is not available")
				return
			}
			logging.FromContext(ctx).Warn().Err(err).Msg("Checkout failed")
			response.ErrorFromType(w, err)
		}
		return
	}

	h.broker.PublishTo(session, events.OrderPlaced, map[string]any{
		"id":       order.ID,
		"subtotal": order.Subtotal,
		"items":    order.Count(),
	})
	response.Created(w, order)
}
