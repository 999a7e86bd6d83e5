package catalogs_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vyfood/storefront/pkg/catalogs"
	"github.com/vyfood/storefront/pkg/errors"
)

func TestNewFromProducts(t *testing.T) {
	t.Run("preserves order", func(t *testing.T) {
		c := catalogs.Sample()
		ids := make([]string, 0, c.Len())
		for _, p := range c.List() {
			ids = append(ids, p.ID)
		}
		assert.Equal(t, []string{"pho-bo", "bun-cha", "banh-mi", "ca-phe"}, ids)
		assert.Equal(t, "sample", c.Source())
	})

	t.Run("rejects duplicates", func(t *testing.T) {
		_, err := catalogs.NewFromProducts([]catalogs.Product{
			{ID: "a", Name: "A", Price: 1},
			{ID: "a", Name: "A again", Price: 2},
		})
		require.Error(t, err)
		assert.True(t, errors.IsAlreadyExists(err))
	})

	t.Run("rejects invalid products", func(t *testing.T) {
		_, err := catalogs.NewFromProducts([]catalogs.Product{
			{ID: "a", Name: "", Price: -1, Stock: -2},
		})
		require.Error(t, err)
		assert.True(t, errors.IsValidationError(err))
		assert.Contains(t, err.Error(), "name")
		assert.Contains(t, err.Error(), "price")
		assert.Contains(t, err.Error(), "stock")
	})
}

func TestCatalogMutations(t *testing.T) {
	c := catalogs.Sample()

	updated, ok := c.Get("bun-cha")
	require.True(t, ok)
	updated.Price = 5500
	require.NoError(t, c.Set(updated))

	got, _ := c.Get("bun-cha")
	assert.Equal(t, catalogs.Money(5500), got.Price)
	assert.Equal(t, "bun-cha", c.List()[1].ID, "upsert keeps position")

	require.NoError(t, c.Set(catalogs.Product{ID: "che", Name: "Chè", Price: 2000, Stock: 5}))
	assert.Equal(t, "che", c.List()[c.Len()-1].ID)

	require.NoError(t, c.Delete("pho-bo"))
	assert.False(t, c.Exists("pho-bo"))
	assert.True(t, errors.IsNotFound(c.Delete("pho-bo")))
}

func TestCatalogCopyIsIndependent(t *testing.T) {
	c := catalogs.Sample()
	cp := c.Copy()

	require.NoError(t, cp.Delete("pho-bo"))
	p, _ := cp.Get("bun-cha")
	p.Stock = 99
	require.NoError(t, cp.Set(p))

	assert.True(t, c.Exists("pho-bo"))
	orig, _ := c.Get("bun-cha")
	assert.Equal(t, 3, orig.Stock)
}

func TestCategories(t *testing.T) {
	assert.Equal(t, []string{"bread", "drinks", "noodles"}, catalogs.Sample().Categories())
}

func TestProductAvailability(t *testing.T) {
	c := catalogs.Sample()
	tests := map[string]bool{
		"pho-bo":  true,
		"banh-mi": false,
		"ca-phe":  false,
	}
	for id, want := range tests {
		p, ok := c.Get(id)
		require.True(t, ok)
		assert.Equal(t, want, p.IsAvailable(), id)
	}
}

func TestConcurrentCatalogAccess(t *testing.T) {
	c := catalogs.Sample()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = c.List()
				_, _ = c.Get("pho-bo")
			}
		}()
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = c.Set(catalogs.Product{ID: "pho-bo", Name: "Phở bò", Price: catalogs.Money(4500 + n), Stock: j})
			}
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 4, c.Len())
}
