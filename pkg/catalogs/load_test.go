package catalogs_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vyfood/storefront/pkg/catalogs"
	"github.com/vyfood/storefront/pkg/errors"
)

func TestSaveAndLoad(t *testing.T) {
	for _, ext := range []string{".yaml", ".json"} {
		t.Run(ext, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", "products"+ext)
			original := catalogs.Sample()
			require.NoError(t, original.Save(path))

			loaded, err := catalogs.Load(path)
			require.NoError(t, err)
			if diff := cmp.Diff(original.List(), loaded.List()); diff != "" {
				t.Errorf("catalog mismatch (-want +got):\n%s", diff)
			}
			assert.Equal(t, "file:"+path, loaded.Source())
			assert.False(t, loaded.FetchedAt().IsZero())
		})
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := catalogs.Load(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
	var ioErr *errors.IOError
	assert.ErrorAs(t, err, &ioErr)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{not json"), 0o644))
	_, err = catalogs.Load(bad)
	require.Error(t, err)
	var parseErr *errors.ParseError
	assert.ErrorAs(t, err, &parseErr)
}

func TestDecodeProducts(t *testing.T) {
	tests := map[string]string{
		"bare array":     `[{"id":"a","name":"A","price":100,"stock":1}]`,
		"products field": `{"products":[{"id":"a","name":"A","price":100,"stock":1}]}`,
		"data field":     `{"data":[{"id":"a","name":"A","price":100,"stock":1}]}`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			products, err := catalogs.DecodeProducts(strings.NewReader(body))
			require.NoError(t, err)
			require.Len(t, products, 1)
			assert.Equal(t, catalogs.Money(100), products[0].Price)
		})
	}

	_, err := catalogs.DecodeProducts(strings.NewReader(`"nope"`))
	assert.Error(t, err)
}

func TestParse(t *testing.T) {
	yamlDoc := []byte("products:\n  - id: pho-bo\n    name: Phở bò\n    price: 4500\n    stock: 2\n")
	c, err := catalogs.Parse(yamlDoc, catalogs.WithSource("inline"))
	require.NoError(t, err)
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, "inline", c.Source())

	jsonDoc := []byte(`{"products":[{"id":"bun-cha","name":"Bún chả","price":5000,"stock":1}]}`)
	c, err = catalogs.Parse(jsonDoc)
	require.NoError(t, err)
	p, ok := c.Get("bun-cha")
	require.True(t, ok)
	assert.Equal(t, catalogs.Money(5000), p.Price)

	_, err = catalogs.Parse([]byte("products: [\n"))
	assert.True(t, errors.IsValidationError(err))
}
