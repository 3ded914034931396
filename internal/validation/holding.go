package validation

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/api/request"
	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/model"
)

// ValidateCreateHolding validates a holding creation request.
//
// Required fields:
//   - ticker: 1 to 50 characters
//   - quantity: Must be positive
//   - averageCost: Must be positive
//
// Optional fields:
//   - assetClass: One of the known asset classes
//   - displayName: At most 100 characters
//
// Returns a validation Error with field-specific error messages if validation fails.
func ValidateCreateHolding(req request.CreateHoldingRequest) error {
	errors := make(map[string]string)

	ticker := strings.TrimSpace(req.Ticker)
	if ticker == "" {
		errors["ticker"] = "ticker is required"
	} else if utf8.RuneCountInString(ticker) > 50 {
		errors["ticker"] = "ticker must be 50 characters or less"
	}

	if !finite(req.Quantity) || req.Quantity <= 0 {
		errors["quantity"] = "quantity must be positive"
	}

	if !finite(req.AverageCost) || req.AverageCost <= 0 {
		errors["averageCost"] = "averageCost must be positive"
	}

	if req.AssetClass != "" {
		if _, err := model.ParseAssetClass(req.AssetClass); err != nil {
			errors["assetClass"] = fmt.Sprintf("invalid asset class: %s", req.AssetClass)
		}
	}

	if utf8.RuneCountInString(req.DisplayName) > 100 {
		errors["displayName"] = "displayName must be 100 characters or less"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}

// ValidateUpdateHolding validates a holding update request. Both fields are
// required and may be zero.
func ValidateUpdateHolding(req request.UpdateHoldingRequest) error {
	errors := make(map[string]string)

	if req.Quantity == nil {
		errors["quantity"] = "quantity is required"
	} else if !finite(*req.Quantity) || *req.Quantity < 0 {
		errors["quantity"] = "quantity cannot be negative"
	}

	if req.AverageCost == nil {
		errors["averageCost"] = "averageCost is required"
	} else if !finite(*req.AverageCost) || *req.AverageCost < 0 {
		errors["averageCost"] = "averageCost cannot be negative"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
