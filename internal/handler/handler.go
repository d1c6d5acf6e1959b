package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"sleek-shop/internal/model"

	"github.com/rs/zerolog"
)

const (
	successMessage  = "Success"
	internalMessage = "Internal server error"

	// maxBodyBytes bounds request bodies read by handlers.
	maxBodyBytes = 1 << 20
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but don't expose it to the client
		return
	}
}

// writeSuccess wraps data in a success envelope.
func writeSuccess(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, model.Envelope{
		Success: true,
		Message: successMessage,
		Data:    data,
	})
}

// writeFailure writes a failure envelope with the given status code and message.
func writeFailure(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, model.Envelope{
		Success: false,
		Message: message,
		Error:   message,
	})
}

// writeError maps err onto an HTTP status. Domain errors are shown to the
// caller; anything else is logged and reported as a generic server error.
func writeError(w http.ResponseWriter, r *http.Request, err error, logger zerolog.Logger) {
	var domainErr *model.DomainError
	if !errors.As(err, &domainErr) {
		logger.Error().
			Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("handler error")
		writeFailure(w, http.StatusInternalServerError, internalMessage)
		return
	}

	status := statusFor(domainErr.Code)
	logger.Debug().
		Str("code", domainErr.Code).
		Str("error", domainErr.Message).
		Int("status", status).
		Msg("request rejected")
	writeFailure(w, status, domainErr.Message)
}

func statusFor(code string) int {
	switch code {
	case model.ErrCodeValidation, model.ErrCodeInvalidStatus:
		return http.StatusBadRequest
	case model.ErrCodeUnauthorised:
		return http.StatusUnauthorized
	case model.ErrCodeForbidden:
		return http.StatusForbidden
	case model.ErrCodeNotFound:
		return http.StatusNotFound
	case model.ErrCodeDuplicateRequest:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON reads a JSON request body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst); err != nil {
		return model.NewValidationError("Invalid request body")
	}
	return nil
}

// queryInt parses the integer query parameter name, returning def when it is absent.
func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, model.NewValidationError("Invalid " + name + " parameter")
	}
	return v, nil
}
