package repository

import (
	"fmt"
	"time"
)

// timeLayouts are the forms dates take in the snapshot database: plain days,
// RFC3339 from the application and SQLite's CURRENT_TIMESTAMP.
var timeLayouts = []string{"2006-01-02", time.RFC3339Nano, "2006-01-02 15:04:05"}

// ParseTime parses a stored date and returns it in UTC.
func ParseTime(str string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, str); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("failed to parse date %q", str)
}
