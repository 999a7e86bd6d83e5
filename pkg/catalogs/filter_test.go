package catalogs_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vyfood/storefront/pkg/catalogs"
	"github.com/vyfood/storefront/pkg/errors"
)

func ids(products []catalogs.Product) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.ID)
	}
	return out
}

func TestFilter(t *testing.T) {
	c := catalogs.Sample()

	tests := []struct {
		name   string
		filter catalogs.Filter
		want   []string
	}{
		{"empty filter", catalogs.Filter{}, []string{"pho-bo", "bun-cha", "banh-mi", "ca-phe"}},
		{"available only", catalogs.Filter{AvailableOnly: true}, []string{"pho-bo", "bun-cha"}},
		{"category", catalogs.Filter{Category: "NOODLES"}, []string{"pho-bo", "bun-cha"}},
		{"query", catalogs.Filter{Query: "bánh"}, []string{"banh-mi"}},
		{"expression", catalogs.Filter{Expression: "price < 4600 && stock > 0"}, []string{"pho-bo", "ca-phe"}},
		{"expression on available", catalogs.Filter{Expression: "available && category == 'noodles' && price >= 5000"}, []string{"bun-cha"}},
		{"combined", catalogs.Filter{Expression: "stock > 10", AvailableOnly: true}, []string{"pho-bo"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.Filter(tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestFilterInvalidExpression(t *testing.T) {
	c := catalogs.Sample()

	_, err := c.Filter(catalogs.Filter{Expression: "price <"})
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))

	_, err = c.Filter(catalogs.Filter{Expression: "name"})
	require.Error(t, err, "non-boolean expressions are rejected")
}

func TestCompileFilterCaches(t *testing.T) {
	p1, err := catalogs.CompileFilter("stock > 1")
	require.NoError(t, err)
	p2, err := catalogs.CompileFilter("stock > 1")
	require.NoError(t, err)
	assert.Same(t, p1, p2)
}
