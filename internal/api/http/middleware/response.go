package middleware

import (
	"encoding/json"
	"net/http"
)

// Error codes shared by middleware and handlers.
const (
	CodeUnauthorized    = "unauthorized"
	CodeInternal        = "internal_error"
	CodeTooManyRequests = "rate_limit_exceeded"
)

// ErrorBody is the JSON body of every error response.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// WriteError writes an ErrorBody with the given status.
func WriteError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorBody{Code: code, Message: message})
}

// WriteUnauthorized answers 401 without detail.
func WriteUnauthorized(w http.ResponseWriter) {
	WriteError(w, http.StatusUnauthorized, CodeUnauthorized, "Unauthorized")
}

// WriteInternalServerError answers 500 without detail.
func WriteInternalServerError(w http.ResponseWriter) {
	WriteError(w, http.StatusInternalServerError, CodeInternal, "Internal server error")
}
