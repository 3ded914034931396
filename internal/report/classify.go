package report

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"google.golang.org/genai"
)

// Decision tells the fallback chain what to do after a candidate fails.
type Decision int

const (
	// Fallback moves on to the next candidate model.
	Fallback Decision = iota
	// Abort stops the chain and reports the failure.
	Abort
)

func (d Decision) String() string {
	if d == Fallback {
		return "fallback"
	}
	return "abort"
}

// Reason is the failure category behind a Decision.
type Reason string

const (
	ReasonUnavailable Reason = "unavailable"
	ReasonQuota       Reason = "quota"
	ReasonCredential  Reason = "credential"
	ReasonOther       Reason = "other"
)

var errEmptyResponse = errors.New("model returned an empty response")

// Classify maps a candidate failure to a decision. Missing or invalid models
// and quota exhaustion fall back to the next candidate; credential problems
// and everything else abort.
func Classify(err error) (Decision, Reason) {
	if err == nil {
		return Abort, ReasonOther
	}
	if errors.Is(err, errEmptyResponse) {
		return Fallback, ReasonUnavailable
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return Abort, ReasonOther
	}

	code, status := apiErrorFields(err)
	msg := strings.ToLower(err.Error())

	switch {
	case code == http.StatusTooManyRequests || status == "RESOURCE_EXHAUSTED" || isQuotaMessage(msg):
		return Fallback, ReasonQuota
	case code == http.StatusUnauthorized || code == http.StatusForbidden ||
		status == "UNAUTHENTICATED" || status == "PERMISSION_DENIED" || isCredentialMessage(msg):
		return Abort, ReasonCredential
	case code == http.StatusNotFound || status == "NOT_FOUND" || isModelMessage(msg):
		return Fallback, ReasonUnavailable
	}
	return Abort, ReasonOther
}

func apiErrorFields(err error) (int, string) {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code, apiErr.Status
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return apiErrPtr.Code, apiErrPtr.Status
	}
	return 0, ""
}

func isQuotaMessage(msg string) bool {
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "quota") ||
		strings.Contains(msg, "resource exhausted") ||
		strings.Contains(msg, "resource_exhausted") ||
		strings.Contains(msg, "rate limit")
}

func isCredentialMessage(msg string) bool {
	return strings.Contains(msg, "api key") ||
		strings.Contains(msg, "api_key") ||
		strings.Contains(msg, "permission denied") ||
		strings.Contains(msg, "unauthenticated")
}

func isModelMessage(msg string) bool {
	return strings.Contains(msg, "not found") ||
		strings.Contains(msg, "404") ||
		(strings.Contains(msg, "invalid") && strings.Contains(msg, "model")) ||
		(strings.Contains(msg, "not supported") && strings.Contains(msg, "model"))
}
