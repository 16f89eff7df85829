package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dtroode/signdesk-server/internal/api/http/middleware"
	"github.com/dtroode/signdesk-server/internal/logger"
	"github.com/dtroode/signdesk-server/internal/model"
)

// writeError maps a service error to a status and a generic body. The
// error itself is only logged: client errors at warn, the rest at error.
func writeError(w http.ResponseWriter, logger *logger.Logger, err error) {
	var maxBytesErr *http.MaxBytesError

	switch {
	case errors.As(err, &maxBytesErr):
		logger.Warn("request rejected", "status", http.StatusRequestEntityTooLarge, "error", err)
		middleware.WriteError(w, http.StatusRequestEntityTooLarge, "payload_too_large", "Request body too large")
	case errors.Is(err, model.ErrInvalidCredentials):
		logger.Warn("request rejected", "status", http.StatusUnauthorized, "error", err)
		middleware.WriteError(w, http.StatusUnauthorized, "invalid_credentials", "Invalid email or password")
	case errors.Is(err, model.ErrUnauthorized):
		logger.Warn("request rejected", "status", http.StatusUnauthorized, "error", err)
		middleware.WriteUnauthorized(w)
	case errors.Is(err, model.ErrEmailTaken):
		logger.Warn("request rejected", "status", http.StatusBadRequest, "error", err)
		middleware.WriteError(w, http.StatusBadRequest, "email_taken", "Email is already registered")
	case errors.Is(err, model.ErrInvalidInput):
		logger.Warn("request rejected", "status", http.StatusBadRequest, "error", err)
		middleware.WriteError(w, http.StatusBadRequest, "invalid_input", "Invalid request")
	case errors.Is(err, model.ErrNotFound):
		logger.Warn("request rejected", "status", http.StatusNotFound, "error", err)
		middleware.WriteError(w, http.StatusNotFound, "not_found", "Not found")
	default:
		logger.Error("request failed", "error", err)
		middleware.WriteInternalServerError(w)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeJSON reads a JSON body into v. Malformed bodies are invalid input;
// bodies over the limit keep their *http.MaxBytesError.
func decodeJSON(w http.ResponseWriter, r *http.Request, limit int64, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return err
		}
		return errors.Join(model.ErrInvalidInput, err)
	}
	return nil
}
