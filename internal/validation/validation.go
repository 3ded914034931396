package validation

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/apperrors"
)

// Common validation errors
var (
	ErrInvalidUUID      = fmt.Errorf("invalid UUID format")
	ErrInvalidDateRange = apperrors.ErrInvalidDateRange
)

// ValidateUUID checks if a string is a valid UUID. Notion page ids are
// accepted with or without dashes.
func ValidateUUID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidUUID, id)
	}
	return nil
}

// ParseDateRange parses start and end in YYYY-MM-DD form. Empty values
// default to the last 30 days ending today.
func ParseDateRange(start, end string, now time.Time) (time.Time, time.Time, error) {
	endDate := now.UTC().Truncate(24 * time.Hour)
	if end != "" {
		d, err := time.Parse("2006-01-02", end)
		if err != nil {
			return time.Time{}, time.Time{}, &Error{Fields: map[string]string{"end_date": "end_date must be YYYY-MM-DD"}}
		}
		endDate = d
	}

	startDate := endDate.AddDate(0, 0, -30)
	if start != "" {
		d, err := time.Parse("2006-01-02", start)
		if err != nil {
			return time.Time{}, time.Time{}, &Error{Fields: map[string]string{"start_date": "start_date must be YYYY-MM-DD"}}
		}
		startDate = d
	}

	if startDate.After(endDate) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: start_date is after end_date", ErrInvalidDateRange)
	}
	return startDate, endDate, nil
}
