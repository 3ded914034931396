package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/api/response"
	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/apperrors"
	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/validation"
)

// maxBodyBytes caps request bodies. Saved reports are the largest payload.
const maxBodyBytes = 1 << 20

// respondJSON sends a JSON response with the given status code
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			log.Error().Err(err).Msg("failed to encode JSON")
		}
	}
}

// parseJSON decodes the request body into T. Unknown fields are rejected.
func parseJSON[T any](w http.ResponseWriter, r *http.Request) (T, error) {
	var v T
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&v); err != nil {
		return v, fmt.Errorf("invalid request body: %w", err)
	}
	return v, nil
}

// statusFor maps an error kind to its HTTP status.
func statusFor(err error) int {
	var vErr *validation.Error
	switch {
	case errors.As(err, &vErr),
		errors.Is(err, apperrors.ErrValidation),
		errors.Is(err, apperrors.ErrInvalidDateRange),
		errors.Is(err, apperrors.ErrInvalidPeriod):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrNotConfigured),
		errors.Is(err, apperrors.ErrTransient):
		return http.StatusServiceUnavailable
	case errors.Is(err, apperrors.ErrDuplicateTicker),
		errors.Is(err, apperrors.ErrDuplicateLink):
		return http.StatusConflict
	case errors.Is(err, apperrors.ErrNotFound),
		errors.Is(err, apperrors.ErrDataUnavailable):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrRemote):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// respondServiceError writes err with the status of its kind. Validation
// errors carry their field map as details.
func respondServiceError(w http.ResponseWriter, err error) {
	status := statusFor(err)

	var vErr *validation.Error
	if errors.As(err, &vErr) {
		response.RespondError(w, status, "validation failed", vErr.Fields)
		return
	}
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Msg("unhandled service error")
	}
	response.RespondError(w, status, apperrors.Message(err), err.Error())
}

// respondBadRequest reports a malformed request.
func respondBadRequest(w http.ResponseWriter, err error) {
	response.RespondError(w, http.StatusBadRequest, "invalid request", err.Error())
}

// queryInt reads an optional non-negative integer query parameter.
func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, &validation.Error{Fields: map[string]string{name: name + " must be a non-negative integer"}}
	}
	return v, nil
}
