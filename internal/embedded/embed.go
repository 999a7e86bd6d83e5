// Package embedded carries the files compiled into the vyfood binary: the
// fallback storefront bundle and a sample product catalog.
package embedded

import (
	"embed"
	"io/fs"

	"github.com/vyfood/storefront/pkg/catalogs"
)

// web holds the storefront bundle served when no static directory is
// configured. Deployments normally point the server at the built bundle.
//
//go:embed all:web
var web embed.FS

// CatalogYAML is the sample catalog used by `vyfood serve --demo` and tests.
//
//go:embed catalog/products.yaml
var CatalogYAML []byte

// Web returns the embedded bundle rooted at its index.html.
func Web() fs.FS {
	sub, err := fs.Sub(web, "web")
	if err != nil {
		// The directory is embedded at build time.
		panic(err)
	}
	return sub
}

// Catalog parses the embedded sample catalog.
func Catalog() (*catalogs.Catalog, error) {
	return catalogs.Parse(CatalogYAML, catalogs.WithSource("embedded"))
}
