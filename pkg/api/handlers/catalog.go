package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/harborml/longshore/pkg/catalog"
)

// CatalogHandler handles read access to the upload catalog.
type CatalogHandler struct {
	catalog catalog.Catalog
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(c catalog.Catalog) *CatalogHandler {
	return &CatalogHandler{catalog: c}
}

// List handles GET /api/catalog.
// Lists all registered entries, newest first.
func (h *CatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	entries, err := h.catalog.List(r.Context())
	if err != nil {
		InternalServerError(w, "Failed to list catalog entries")
		return
	}

	WriteJSONOK(w, entries)
}

// Get handles GET /api/catalog/{id}.
// Returns a single catalog entry by id.
func (h *CatalogHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		BadRequest(w, "Catalog id is required")
		return
	}

	entry, err := h.catalog.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			NotFound(w, "Catalog entry not found")
			return
		}
		InternalServerError(w, "Failed to get catalog entry")
		return
	}

	WriteJSONOK(w, entry)
}
