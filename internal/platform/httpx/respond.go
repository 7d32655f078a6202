// Package httpx provides JSON request/response utilities shared by all HTTP handlers.
package httpx

import (
	"encoding/json"
	"net/http"
)

// ErrorBody is the JSON error envelope returned by every endpoint. Code is a
// machine-readable identifier a cashier-facing client can branch on; Details
// carries structured context such as the offending product and quantities.
type ErrorBody struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Errors  []string `json:"errors,omitempty"`
	Details any      `json:"details,omitempty"`
}

// JSON sends a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// Error sends an error envelope with a machine-readable code.
func Error(w http.ResponseWriter, status int, code, message string) {
	JSON(w, status, ErrorBody{Code: code, Message: message})
}

// ErrorWithDetails sends an error envelope with structured details attached.
func ErrorWithDetails(w http.ResponseWriter, status int, code, message string, details any) {
	JSON(w, status, ErrorBody{Code: code, Message: message, Details: details})
}

// ValidationErrors sends the full list of request problems in one response.
func ValidationErrors(w http.ResponseWriter, errs []string) {
	JSON(w, http.StatusBadRequest, ErrorBody{
		Code:    CodeValidationFailed,
		Message: "request validation failed",
		Errors:  errs,
	})
}

// DecodeJSON decodes the JSON request body into the target struct.
func DecodeJSON(r *http.Request, target any) error {
	return json.NewDecoder(r.Body).Decode(target)
}
