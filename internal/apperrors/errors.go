package apperrors

import (
	"errors"
	"strings"
)

// Configuration and availability errors describe why a collaborator could not be reached at all.
var (
	// ErrNotConfigured indicates that a required credential or database identifier is missing.
	// It is returned before any network call is made.
	ErrNotConfigured = errors.New("not configured")

	// ErrTransient indicates a timeout, rate limit or dropped connection that survived all retries.
	ErrTransient = errors.New("temporarily unavailable")

	// ErrRemote indicates that the remote service answered with a non-success status.
	ErrRemote = errors.New("remote service error")

	// ErrDataUnavailable indicates that a data source answered but returned nothing usable.
	ErrDataUnavailable = errors.New("data unavailable")
)

// Report generation errors.
var (
	// ErrQuotaExhausted indicates that every candidate model hit its usage quota.
	ErrQuotaExhausted = errors.New("quota exhausted")

	// ErrCredentialInvalid indicates that the generative-language API key was rejected.
	ErrCredentialInvalid = errors.New("invalid credential")
)

// Business logic errors represent validation failures or constraint violations.
var (
	// ErrDuplicateTicker indicates that a holding with the same normalized ticker already exists.
	ErrDuplicateTicker = errors.New("ticker already exists")

	// ErrDuplicateLink indicates that a scrap with the same link already exists.
	ErrDuplicateLink = errors.New("link already saved")

	// ErrValidation indicates that a request field failed validation.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound indicates that the referenced record does not exist or was archived.
	ErrNotFound = errors.New("record not found")

	// ErrInvalidDateRange indicates that the start date is after the end date.
	ErrInvalidDateRange = errors.New("invalid date range")

	ErrInvalidPeriod = errors.New("unsupported history period")
)

// Message turns an error into the short text shown to the user.
// Unknown errors fall back to their own message.
func Message(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotConfigured):
		return "The data store is not configured. Set the API key and database IDs."
	case errors.Is(err, ErrDuplicateTicker):
		return "This ticker is already in the portfolio."
	case errors.Is(err, ErrDuplicateLink):
		return "This link has already been saved."
	case errors.Is(err, ErrTransient):
		return "The service is busy. Please try again shortly."
	case errors.Is(err, ErrNotFound):
		return "The record no longer exists."
	case errors.Is(err, ErrQuotaExhausted):
		return "The daily request quota is exhausted for every model."
	case errors.Is(err, ErrCredentialInvalid):
		return "The API key was rejected."
	case errors.Is(err, ErrDataUnavailable):
		return "No data is available right now."
	case errors.Is(err, ErrRemote):
		// keep the remote detail after the sentinel text
		msg := err.Error()
		if i := strings.Index(msg, ErrRemote.Error()+": "); i >= 0 {
			return msg[i+len(ErrRemote.Error())+2:]
		}
		return msg
	default:
		return err.Error()
	}
}
