package catalogs

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Money is an amount in the currency's minor unit (cents for USD, dong for VND).
// Integer amounts keep price comparisons exact.
type Money int64

// String renders the amount with two decimals. Callers that know the currency
// should format through the reconcile notice printer instead.
func (m Money) String() string {
	sign := ""
	v := int64(m)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// ParseMoney parses a decimal string such as "12.5" or "12.50" into minor units
// with two decimals.
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty amount")
	}
	negative := strings.HasPrefix(s, "-")
	whole, frac, hasFrac := strings.Cut(strings.TrimPrefix(s, "-"), ".")
	if hasFrac {
		if len(frac) == 0 || len(frac) > 2 {
			return 0, fmt.Errorf("amount %q must have one or two decimals", s)
		}
		frac += strings.Repeat("0", 2-len(frac))
	} else {
		frac = "00"
	}
	if whole == "" {
		whole = "0"
	}
	w, err := strconv.ParseInt(whole, 10, 64)
	if err != nil || w < 0 {
		return 0, fmt.Errorf("parsing amount %q: invalid whole part", s)
	}
	f, err := strconv.ParseInt(frac, 10, 64)
	if err != nil || f < 0 {
		return 0, fmt.Errorf("parsing amount %q: invalid decimals", s)
	}
	v := w*100 + f
	if negative {
		v = -v
	}
	return Money(v), nil
}

// Times returns the amount multiplied by a quantity, saturating at the
// int64 range instead of wrapping.
func (m Money) Times(quantity int) Money {
	if m == 0 || quantity == 0 {
		return 0
	}
	q := Money(quantity)
	p := m * q
	if p/q != m || (m == -1 && q == math.MinInt64) || (q == -1 && m == math.MinInt64) {
		if (m < 0) != (q < 0) {
			return math.MinInt64
		}
		return math.MaxInt64
	}
	return p
}

// Plus returns m+o, saturating at the int64 range.
func (m Money) Plus(o Money) Money {
	switch {
	case o > 0 && m > math.MaxInt64-o:
		return math.MaxInt64
	case o < 0 && m < math.MinInt64-o:
		return math.MinInt64
	}
	return m + o
}
