package reconcile

import (
	"math"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/vyfood/storefront/pkg/catalogs"
)

// Kind identifies what reconciliation did to a cart line.
type Kind string

// Notice kinds, in the order their rules are applied.
const (
	NoticeInvalidLine     Kind = "invalid_line"
	NoticeMerged          Kind = "merged"
	NoticeRemoved         Kind = "removed"
	NoticeOutOfStock      Kind = "out_of_stock"
	NoticeQuantityReduced Kind = "quantity_reduced"
	NoticePriceChanged    Kind = "price_changed"
	NoticeCartReset       Kind = "cart_reset"
)

// String returns the string representation of a notice kind.
func (k Kind) String() string {
	return string(k)
}

// Notice describes one change reconciliation made to the cart.
type Notice struct {
	Kind        Kind           `json:"kind" yaml:"kind"`
	ProductID   string         `json:"product_id,omitempty" yaml:"product_id,omitempty"`
	Name        string         `json:"name,omitempty" yaml:"name,omitempty"`
	OldQuantity int            `json:"old_quantity,omitempty" yaml:"old_quantity,omitempty"`
	NewQuantity int            `json:"new_quantity,omitempty" yaml:"new_quantity,omitempty"`
	OldPrice    catalogs.Money `json:"old_price,omitempty" yaml:"old_price,omitempty"`
	NewPrice    catalogs.Money `json:"new_price,omitempty" yaml:"new_price,omitempty"`

	// Text is the message rendered with the reconciler's printer.
	Text string `json:"message" yaml:"message"`
}

// Removes reports whether the notice's line is gone from the cart.
func (n Notice) Removes() bool {
	switch n.Kind {
	case NoticeInvalidLine, NoticeRemoved, NoticeOutOfStock, NoticeCartReset:
		return true
	}
	return false
}

func (n Notice) label() string {
	switch {
	case n.Name != "":
		return n.Name
	case n.ProductID != "":
		return n.ProductID
	}
	return "an item"
}

// Message templates. They double as message catalog keys.
const (
	msgInvalidLine     = "An invalid cart entry (%s) was removed."
	msgMerged          = "%s appeared more than once in your cart, so the quantities were combined into %d."
	msgRemoved         = "%s is no longer available and was removed from your cart."
	msgOutOfStock      = "%s is out of stock and was removed from your cart."
	msgQuantityReduced = "Only %d of %s are available, so the quantity was reduced from %d."
	msgPriceChanged    = "The price of %s changed from %s to %s."
	msgCartReset       = "Your saved cart could not be read and was reset."
)

func init() {
	vi := language.Vietnamese
	for key, msg := range map[string]string{
		msgInvalidLine:     "Một mục không hợp lệ trong giỏ hàng (%s) đã bị xóa.",
		msgMerged:          "%s xuất hiện nhiều lần trong giỏ hàng nên số lượng đã được gộp thành %d.",
		msgRemoved:         "%s không còn bán và đã bị xóa khỏi giỏ hàng.",
		msgOutOfStock:      "%s đã hết hàng và đã bị xóa khỏi giỏ hàng.",
		msgQuantityReduced: "Chỉ còn %d %s nên số lượng đã được giảm từ %d.",
		msgPriceChanged:    "Giá của %s đã thay đổi từ %s thành %s.",
		msgCartReset:       "Không đọc được giỏ hàng đã lưu nên giỏ hàng đã được làm mới.",
	} {
		_ = message.SetString(vi, key, msg)
	}
}

// Printer renders notices and prices for one language and currency.
type Printer struct {
	p    *message.Printer
	unit currency.Unit
}

// NewPrinter returns a printer for the language and currency.
func NewPrinter(lang language.Tag, unit currency.Unit) *Printer {
	return &Printer{p: message.NewPrinter(lang), unit: unit}
}

// Money formats an amount given in the currency's minor unit, for example
// "USD 45.00".
func (pr *Printer) Money(m catalogs.Money) string {
	scale, _ := currency.Standard.Rounding(pr.unit)
	amount := float64(m) / math.Pow10(scale)
	return pr.p.Sprintf("%s %v", pr.unit.String(), number.Decimal(amount, number.Scale(scale)))
}

// Message renders the notice in the printer's language.
func (n Notice) Message(pr *Printer) string {
	p := pr.p
	switch n.Kind {
	case NoticeInvalidLine:
		return p.Sprintf(msgInvalidLine, n.label())
	case NoticeMerged:
		return p.Sprintf(msgMerged, n.label(), n.NewQuantity)
	case NoticeRemoved:
		return p.Sprintf(msgRemoved, n.label())
	case NoticeOutOfStock:
		return p.Sprintf(msgOutOfStock, n.label())
	case NoticeQuantityReduced:
		return p.Sprintf(msgQuantityReduced, n.NewQuantity, n.label(), n.OldQuantity)
	case NoticePriceChanged:
		return p.Sprintf(msgPriceChanged, n.label(), pr.Money(n.OldPrice), pr.Money(n.NewPrice))
	case NoticeCartReset:
		return p.Sprintf(msgCartReset)
	}
	return string(n.Kind)
}

// languages are the notice translations available, the first being the
// fallback.
var languages = language.NewMatcher([]language.Tag{language.English, language.Vietnamese})

// MatchLanguage picks the best supported language for an Accept-Language
// header value. ok is false when nothing in the header matched.
func MatchLanguage(acceptLanguage string) (tag language.Tag, ok bool) {
	prefs, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(prefs) == 0 {
		return language.English, false
	}
	_, index, confidence := languages.Match(prefs...)
	if confidence == language.No {
		return language.English, false
	}
	return []language.Tag{language.English, language.Vietnamese}[index], true
}
