package cart

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/vyfood/storefront/pkg/constants"
)

// ErrCorrupt is returned when a persisted cart string cannot be decoded.
var ErrCorrupt = stderrors.New("corrupt persisted cart")

// Decode parses the persisted cart string. An empty or whitespace-only string
// is an empty cart. Lines are returned as stored: duplicates and bad
// quantities are left for reconciliation to resolve.
func Decode(persisted string) (*Cart, error) {
	persisted = strings.TrimSpace(persisted)
	if persisted == "" || persisted == "null" {
		return New(), nil
	}
	if len(persisted) > constants.MaxPersistedCartBytes {
		return nil, fmt.Errorf("%w: %d bytes exceeds limit of %d", ErrCorrupt, len(persisted), constants.MaxPersistedCartBytes)
	}

	dec := json.NewDecoder(strings.NewReader(persisted))
	var lines []Line
	if err := dec.Decode(&lines); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: trailing data", ErrCorrupt)
	}
	return New(lines...), nil
}

// Encode returns the persisted string for the cart. An empty cart encodes as
// "[]".
func (c *Cart) Encode() (string, error) {
	lines := c.Lines
	if lines == nil {
		lines = []Line{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(lines); err != nil {
		return "", fmt.Errorf("encoding cart: %w", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// MustEncode is Encode for carts built from already valid lines.
func (c *Cart) MustEncode() string {
	s, err := c.Encode()
	if err != nil {
		panic(err)
	}
	return s
}
