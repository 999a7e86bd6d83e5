package cart_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vyfood/storefront/pkg/cart"
	"github.com/vyfood/storefront/pkg/constants"
)

func TestDecodeEmpty(t *testing.T) {
	for _, in := range []string{"", "   ", "null", "[]"} {
		c, err := cart.Decode(in)
		require.NoError(t, err, in)
		assert.True(t, c.IsEmpty(), in)
	}
}

func TestDecodeKeepsRawLines(t *testing.T) {
	c, err := cart.Decode(`[{"id":"a","price":100,"quantity":1},{"id":"a","price":100,"quantity":-2}]`)
	require.NoError(t, err)
	require.Len(t, c.Lines, 2)
	assert.Equal(t, -2, c.Lines[1].Quantity)
}

func TestDecodeCorrupt(t *testing.T) {
	inputs := []string{
		`{`,
		`{"id":"a"}`,
		`[{"id":"a","quantity":"two"}]`,
		`[] []`,
		"[" + strings.Repeat(" ", constants.MaxPersistedCartBytes) + "]",
	}
	for _, in := range inputs {
		_, err := cart.Decode(in)
		assert.ErrorIs(t, err, cart.ErrCorrupt)
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	c := cart.New()
	require.NoError(t, c.Add(pho, 2))
	require.NoError(t, c.Add(bunCha, 1))

	s, err := c.Encode()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(s, `[{"id":"pho-bo","name":"Phở bò",`), s)

	back, err := cart.Decode(s)
	require.NoError(t, err)
	assert.Equal(t, c.Lines, back.Lines)

	assert.Equal(t, "[]", cart.New().MustEncode())
}
