// Package middleware provides HTTP middleware for request validation and processing.
package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/api/response"
	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/validation"
)

// ValidateUUIDMiddleware validates that the uuid URL parameter is present and
// is a Notion page id, with or without dashes.
// Returns 400 Bad Request if the record id is missing or invalid.
//
// Example usage in router:
//
//	r.Route("/{uuid}", func(r chi.Router) {
//	    r.Use(middleware.ValidateUUIDMiddleware)
//	    r.Put("/", handler.UpdateHolding)
//	    r.Delete("/", handler.DeleteHolding)
//	})
func ValidateUUIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		recordID := chi.URLParam(r, "uuid")

		if recordID == "" {
			response.RespondError(w, http.StatusBadRequest, "record id is required", "")
			return
		}

		if err := validation.ValidateUUID(recordID); err != nil {
			response.RespondError(w, http.StatusBadRequest, "invalid record id", err.Error())
			return
		}

		next.ServeHTTP(w, r)
	})
}
