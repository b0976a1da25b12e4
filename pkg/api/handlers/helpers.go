package handlers

import (
	"encoding/json"
	"net/http"
)

// decodeJSONBody decodes the request body into v. On malformed input it
// writes the 422 problem itself and returns false, so handlers can bail
// with a bare return.
func decodeJSONBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		UnprocessableEntity(w, "Invalid request body")
		return false
	}
	return true
}
