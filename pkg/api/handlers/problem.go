// Package handlers implements the HTTP handlers for the Longshore API.
package handlers

import (
	"encoding/json"
	"net/http"
)

// ContentTypeProblemJSON is the media type of RFC 7807 error responses.
const ContentTypeProblemJSON = "application/problem+json"

// Problem is an RFC 7807 "problem details" body. Every error the API
// returns has this shape, so clients need a single error decoder.
type Problem struct {
	// Type is a URI identifying the problem class; "about:blank" means
	// the status code says it all.
	Type string `json:"type,omitempty"`

	// Title is the generic summary of the problem class.
	Title string `json:"title"`

	// Status repeats the HTTP status code in the body.
	Status int `json:"status"`

	// Detail describes this specific occurrence.
	Detail string `json:"detail,omitempty"`

	// Instance is a URI for this specific occurrence, when one exists.
	Instance string `json:"instance,omitempty"`
}

// WriteProblem writes an RFC 7807 error response.
func WriteProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", ContentTypeProblemJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(&Problem{
		Type:   "about:blank",
		Title:  title,
		Status: status,
		Detail: detail,
	})
}

// BadRequest writes a 400 problem response.
func BadRequest(w http.ResponseWriter, detail string) {
	WriteProblem(w, http.StatusBadRequest, "Bad Request", detail)
}

// NotFound writes a 404 problem response.
func NotFound(w http.ResponseWriter, detail string) {
	WriteProblem(w, http.StatusNotFound, "Not Found", detail)
}

// UnprocessableEntity writes a 422 problem response.
func UnprocessableEntity(w http.ResponseWriter, detail string) {
	WriteProblem(w, http.StatusUnprocessableEntity, "Unprocessable Entity", detail)
}

// InternalServerError writes a 500 problem response.
func InternalServerError(w http.ResponseWriter, detail string) {
	WriteProblem(w, http.StatusInternalServerError, "Internal Server Error", detail)
}

// WriteJSON writes data as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteJSONOK writes data as a 200 JSON response.
func WriteJSONOK(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusOK, data)
}

// WriteNoContent writes an empty 204 response.
func WriteNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}
