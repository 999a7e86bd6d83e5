package products

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vyfood/storefront/internal/appcontext"
	"github.com/vyfood/storefront/pkg/catalogs"
	"github.com/vyfood/storefront/pkg/differ"
	"github.com/vyfood/storefront/pkg/errors"
)

func sampleApp(format string) *appcontext.Mock {
	return &appcontext.Mock{
		Format: format,
		CatalogFunc: func(context.Context) (*catalogs.Catalog, error) {
			return catalogs.Sample(), nil
		},
	}
}

func run(t *testing.T, app appcontext.Interface, args ...string) (string, error) {
	t.Helper()
	cmd := NewCommand(app)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func ids(t *testing.T, raw string) []string {
	t.Helper()
	var products []catalogs.Product
	require.NoError(t, json.Unmarshal([]byte(raw), &products))
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.ID)
	}
	return out
}

func TestListProducts(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want []string
	}{
		{"hides hidden products", nil, []string{"pho-bo", "bun-cha", "banh-mi"}},
		{"all", []string{"--all"}, []string{"pho-bo", "bun-cha", "banh-mi", "ca-phe"}},
		{"available", []string{"--available"}, []string{"pho-bo", "bun-cha"}},
		{"category", []string{"--category", "NOODLES"}, []string{"pho-bo", "bun-cha"}},
		{"search", []string{"-s", "mì"}, []string{"banh-mi"}},
		{"expression", []string{"--filter", "price < 5000"}, []string{"pho-bo", "banh-mi"}},
		{"no match", []string{"--category", "dessert"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, sampleApp("json"), append([]string{"list"}, tt.args...)...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(t, out))
		})
	}
}

func TestListProductsTable(t *testing.T) {
	out, err := run(t, sampleApp("wide"), "list", "--all")
	require.NoError(t, err)
	assert.Contains(t, out, "pho-bo")
	assert.Contains(t, out, "sold out")
	assert.Contains(t, out, "hidden")
}

func TestListProductsBadFilter(t *testing.T) {
	_, err := run(t, sampleApp("json"), "list", "--filter", "price >")
	assert.Error(t, err)
}

func TestShowProduct(t *testing.T) {
	out, err := run(t, sampleApp("json"), "show", "bun-cha")
	require.NoError(t, err)
	var p catalogs.Product
	require.NoError(t, json.Unmarshal([]byte(out), &p))
	assert.Equal(t, "Bún chả", p.Name)

	_, err = run(t, sampleApp("json"), "show", "nope")
	var notFound *errors.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestDiffCatalogs(t *testing.T) {
	dir := t.TempDir()
	oldPath := filepath.Join(dir, "old.yaml")
	newPath := filepath.Join(dir, "new.json")

	require.NoError(t, catalogs.Sample().Save(oldPath))
	updated := catalogs.Sample()
	pho, _ := updated.Get("pho-bo")
	pho.Price = 4800
	require.NoError(t, updated.Set(pho))
	require.NoError(t, updated.Delete("banh-mi"))
	require.NoError(t, updated.Save(newPath))

	out, err := run(t, sampleApp("json"), "diff", oldPath, newPath)
	require.NoError(t, err)

	var changes differ.Changeset
	require.NoError(t, json.Unmarshal([]byte(out), &changes))
	require.Len(t, changes.Updated, 1)
	assert.Equal(t, "pho-bo", changes.Updated[0].ID)
	assert.True(t, changes.Updated[0].Changed("price"))
	require.Len(t, changes.Removed, 1)
	assert.Equal(t, "banh-mi", changes.Removed[0].ID)

	out, err = run(t, sampleApp("table"), "diff", oldPath)
	require.NoError(t, err)
	assert.Contains(t, out, "No changes.")
}
