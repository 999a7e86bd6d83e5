package handlers

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"

	"github.com/vyfood/storefront/internal/embedded/openapi"
	"github.com/vyfood/storefront/internal/server/response"
)

// HandleOpenAPIJSON serves the API description as JSON.
// @Summary Get OpenAPI document (JSON)
// @Tags meta
// @Produce json
// @Success 200 {object} object "OpenAPI document"
// @Success 304 "Not modified"
// @Router /api/v1/openapi.json [get].
func (h *Handlers) HandleOpenAPIJSON(w http.ResponseWriter, r *http.Request) {
	doc, err := openapi.SpecJSON()
	if err != nil {
		response.InternalError(w, err)
		return
	}
	serveDocument(w, r, "application/json", doc)
}

// HandleOpenAPIYAML serves the API description as YAML.
// @Summary Get OpenAPI document (YAML)
// @Tags meta
// @Produce application/x-yaml
// @Success 200 {string} string "OpenAPI document"
// @Success 304 "Not modified"
// @Router /api/v1/openapi.yaml [get].
func (h *Handlers) HandleOpenAPIYAML(w http.ResponseWriter, r *http.Request) {
	serveDocument(w, r, "application/x-yaml", openapi.SpecYAML)
}

// serveDocument writes an immutable embedded document with a content ETag.
func serveDocument(w http.ResponseWriter, r *http.Request, contentType string, doc []byte) {
	sum := sha256.Sum256(doc)
	etag := `"` + hex.EncodeToString(sum[:8]) + `"`

	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", contentType)
	_, _ = w.Write(doc)
}
