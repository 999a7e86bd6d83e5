package catalogs

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/vyfood/storefront/pkg/constants"
	"github.com/vyfood/storefront/pkg/errors"
)

// document is the on-disk catalog layout.
type document struct {
	Products []Product `json:"products" yaml:"products"`
}

// Load reads a catalog file. The format follows the extension: .json for
// JSON, anything else is read as YAML.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}

	var doc document
	format := formatFor(path)
	switch format {
	case "json":
		err = json.Unmarshal(data, &doc)
	default:
		err = yaml.Unmarshal(data, &doc)
	}
	if err != nil {
		return nil, errors.WrapParse(format, path, err)
	}

	info, statErr := os.Stat(path)
	fetchedAt := time.Now().UTC()
	if statErr == nil {
		fetchedAt = info.ModTime().UTC()
	}
	return NewFromProducts(doc.Products, WithSource("file:"+path), WithFetchedAt(fetchedAt))
}

// Parse reads a catalog document from memory. YAML is a superset of JSON,
// so either format is accepted.
func Parse(data []byte, opts ...Option) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.WrapParse("yaml", "", err)
	}
	return NewFromProducts(doc.Products, opts...)
}

// Save writes the catalog to path in the format implied by the extension.
func (c *Catalog) Save(path string) error {
	doc := document{Products: c.List()}

	var (
		data []byte
		err  error
	)
	format := formatFor(path)
	switch format {
	case "json":
		data, err = json.MarshalIndent(doc, "", "  ")
	default:
		data, err = yaml.MarshalWithOptions(doc, yaml.Indent(2), yaml.IndentSequence(true))
	}
	if err != nil {
		return errors.WrapParse(format, path, err)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, constants.DirPermissions); err != nil {
			return errors.WrapIO("create", dir, err)
		}
	}
	if err := os.WriteFile(path, data, constants.FilePermissions); err != nil {
		return errors.WrapIO("write", path, err)
	}
	return nil
}

// DecodeProducts decodes the backend's JSON product list. It accepts either a
// bare array or an object with a "products" or "data" array.
func DecodeProducts(r io.Reader) ([]Product, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.WrapIO("read", "product list", err)
	}

	var products []Product
	if err := json.Unmarshal(body, &products); err == nil {
		return products, nil
	}

	var wrapped struct {
		Products []Product `json:"products"`
		Data     []Product `json:"data"`
	}
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return nil, errors.WrapParse("json", "product list", err)
	}
	if wrapped.Products != nil {
		return wrapped.Products, nil
	}
	return wrapped.Data, nil
}

func formatFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return "json"
	default:
		return "yaml"
	}
}
