package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/harborml/longshore/pkg/upload"
)

// SessionHandler handles the administrative session endpoints.
type SessionHandler struct {
	service *upload.Service
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(service *upload.Service) *SessionHandler {
	return &SessionHandler{service: service}
}

// List handles GET /api/upload/sessions.
// Lists all active upload sessions, oldest first.
func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	WriteJSONOK(w, h.service.List())
}

// Abort handles DELETE /api/upload/sessions/{uploadId}.
// Removes the session and its staged chunks without reassembly.
func (h *SessionHandler) Abort(w http.ResponseWriter, r *http.Request) {
	uploadID := chi.URLParam(r, "uploadId")
	if uploadID == "" {
		BadRequest(w, "Upload id is required")
		return
	}

	if err := h.service.Abort(r.Context(), uploadID); err != nil {
		if errors.Is(err, upload.ErrSessionNotFound) {
			NotFound(w, fmt.Sprintf("Upload session %s not found", uploadID))
			return
		}
		InternalServerError(w, "Failed to abort upload session")
		return
	}

	WriteNoContent(w)
}
