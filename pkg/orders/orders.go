// Package orders defines the order placed at checkout.
package orders

import (
	"github.com/agentstation/utc"
	"github.com/google/uuid"

	"github.com/vyfood/storefront/pkg/cart"
	"github.com/vyfood/storefront/pkg/catalogs"
)

// PaymentMethod is how the customer pays.
type PaymentMethod string

// Supported payment methods.
const (
	PaymentCashOnDelivery PaymentMethod = "cod"
	PaymentCard           PaymentMethod = "card"
	PaymentBankTransfer   PaymentMethod = "bank_transfer"
)

// PaymentMethods returns every supported payment method.
func PaymentMethods() []PaymentMethod {
	return []PaymentMethod{PaymentCashOnDelivery, PaymentCard, PaymentBankTransfer}
}

// IsValid reports whether the payment method is supported.
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentCashOnDelivery, PaymentCard, PaymentBankTransfer:
		return true
	}
	return false
}

// Status is the fulfilment state reported by the backend.
type Status string

// Order statuses.
const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusShipped   Status = "shipped"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

// Customer holds the delivery details entered at checkout.
type Customer struct {
	Name    string `json:"name"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// Request is the checkout form.
type Request struct {
	Customer Customer      `json:"customer"`
	Payment  PaymentMethod `json:"payment_method"`
	Note     string        `json:"note,omitempty"`
}

// Item is one ordered product at the price the customer saw.
type Item struct {
	ProductID string         `json:"product_id"`
	Name      string         `json:"name"`
	UnitPrice catalogs.Money `json:"unit_price"`
	Quantity  int            `json:"quantity"`
}

// Order is an order as sent to and returned by the backend.
type Order struct {
	ID        string         `json:"id"`
	UserID    string         `json:"user_id,omitempty"`
	Items     []Item         `json:"items"`
	Customer  Customer       `json:"customer"`
	Payment   PaymentMethod  `json:"payment_method"`
	Note      string         `json:"note,omitempty"`
	Subtotal  catalogs.Money `json:"subtotal"`
	Status    Status         `json:"status"`
	CreatedAt utc.Time       `json:"created_at"`
}

// FromCart builds a pending order from a reconciled cart. The order ID doubles
// as the idempotency key for the backend.
func FromCart(c *cart.Cart, req Request) *Order {
	items := make([]Item, 0, len(c.Lines))
	for _, l := range c.Lines {
		items = append(items, Item{
			ProductID: l.ProductID,
			Name:      l.Name,
			UnitPrice: l.UnitPrice,
			Quantity:  l.Quantity,
		})
	}
	return &Order{
		ID:        uuid.NewString(),
		Items:     items,
		Customer:  req.Customer,
		Payment:   req.Payment,
		Note:      req.Note,
		Subtotal:  c.Subtotal(),
		Status:    StatusPending,
		CreatedAt: utc.Now(),
	}
}

// Count returns the number of units ordered.
func (o *Order) Count() int {
	n := 0
	for _, it := range o.Items {
		n += it.Quantity
	}
	return n
}
