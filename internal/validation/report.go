package validation

import (
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/api/request"
)

// ValidFocusAreas are the analysis focus options a report can ask for.
var ValidFocusAreas = []string{
	"diagnosis", "hedging", "sectors", "crypto", "risk", "short-term",
}

// ValidRiskPreferences orders risk appetite from lowest to highest.
var ValidRiskPreferences = []string{
	"very-conservative", "conservative", "neutral", "aggressive", "very-aggressive",
}

const maxExtraPrompt = 2000

// ValidateGenerateReport validates the optional report steering fields.
func ValidateGenerateReport(req request.GenerateReportRequest) error {
	errors := make(map[string]string)

	for _, f := range req.Focus {
		if !slices.Contains(ValidFocusAreas, f) {
			errors["focus"] = fmt.Sprintf("invalid focus: %s", f)
			break
		}
	}

	if req.RiskPreference != "" && !slices.Contains(ValidRiskPreferences, req.RiskPreference) {
		errors["riskPreference"] = fmt.Sprintf("invalid risk preference: %s", req.RiskPreference)
	}

	if utf8.RuneCountInString(req.Extra) > maxExtraPrompt {
		errors["extra"] = fmt.Sprintf("extra must be %d characters or less", maxExtraPrompt)
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}

// ValidateSaveReport requires non-empty report text.
func ValidateSaveReport(req request.SaveReportRequest) error {
	if strings.TrimSpace(req.Text) == "" {
		return &Error{Fields: map[string]string{"text": "text is required"}}
	}
	return nil
}
