package apiclient

import (
	"net/http"
)

// APIError is an RFC 7807 problem response from the API.
type APIError struct {
	Type     string `json:"type,omitempty"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return e.Title
}

// IsNotFound returns true if this is a not found error.
func (e *APIError) IsNotFound() bool {
	return e.Status == http.StatusNotFound
}

// IsValidationError returns true if the server rejected the request body or
// form fields.
func (e *APIError) IsValidationError() bool {
	return e.Status == http.StatusUnprocessableEntity
}

// IsClientError returns true for any 4xx status.
func (e *APIError) IsClientError() bool {
	return e.Status >= 400 && e.Status < 500
}
