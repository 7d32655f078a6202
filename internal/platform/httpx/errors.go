package httpx

import (
	"errors"
	"net/http"
)

// Machine-readable error codes carried in the response envelope.
const (
	CodeValidationFailed  = "VALIDATION_FAILED"
	CodeProductNotFound   = "PRODUCT_NOT_FOUND"
	CodeInsufficientStock = "INSUFFICIENT_STOCK"
	CodeTransactionFailed = "TRANSACTION_FAILED"
	CodeNotFound          = "NOT_FOUND"
	CodeDuplicate         = "DUPLICATE"
	CodeInternal          = "INTERNAL_ERROR"
)

// Sentinel errors for the CRUD modules' domain layers.
var (
	ErrNotFound   = errors.New("resource not found")
	ErrDuplicate  = errors.New("duplicate entry")
	ErrValidation = errors.New("validation failed")
)

// RespondError maps generic domain errors to the JSON error envelope. The
// sales module maps its own typed errors before falling through to this.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		Error(w, http.StatusNotFound, CodeNotFound, err.Error())
	case errors.Is(err, ErrDuplicate):
		Error(w, http.StatusConflict, CodeDuplicate, err.Error())
	case errors.Is(err, ErrValidation):
		Error(w, http.StatusBadRequest, CodeValidationFailed, err.Error())
	default:
		Error(w, http.StatusInternalServerError, CodeInternal, "internal error")
	}
}
