package validation

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/api/request"
)

func ptr(v float64) *float64 { return &v }

func fieldsOf(t *testing.T, err error) map[string]string {
	t.Helper()
	var vErr *Error
	if !errors.As(err, &vErr) {
		t.Fatalf("Expected *validation.Error, got %v", err)
	}
	return vErr.Fields
}

func TestValidateCreateHolding(t *testing.T) {
	valid := request.CreateHoldingRequest{Ticker: "AAPL", Quantity: 10, AverageCost: 150, AssetClass: "foreign-equity"}

	if err := ValidateCreateHolding(valid); err != nil {
		t.Fatalf("Expected valid request, got %v", err)
	}

	tests := []struct {
		name  string
		mut   func(r *request.CreateHoldingRequest)
		field string
	}{
		{"missing ticker", func(r *request.CreateHoldingRequest) { r.Ticker = "  " }, "ticker"},
		{"zero quantity", func(r *request.CreateHoldingRequest) { r.Quantity = 0 }, "quantity"},
		{"NaN quantity", func(r *request.CreateHoldingRequest) { r.Quantity = math.NaN() }, "quantity"},
		{"negative cost", func(r *request.CreateHoldingRequest) { r.AverageCost = -1 }, "averageCost"},
		{"unknown asset class", func(r *request.CreateHoldingRequest) { r.AssetClass = "stocks" }, "assetClass"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := valid
			tt.mut(&r)
			fields := fieldsOf(t, ValidateCreateHolding(r))
			if _, ok := fields[tt.field]; !ok {
				t.Errorf("Expected error on %s, got %v", tt.field, fields)
			}
		})
	}
}

func TestValidateUpdateHolding(t *testing.T) {
	t.Run("zero is allowed", func(t *testing.T) {
		if err := ValidateUpdateHolding(request.UpdateHoldingRequest{Quantity: ptr(0), AverageCost: ptr(0)}); err != nil {
			t.Errorf("Expected valid, got %v", err)
		}
	})

	t.Run("missing fields", func(t *testing.T) {
		fields := fieldsOf(t, ValidateUpdateHolding(request.UpdateHoldingRequest{}))
		if len(fields) != 2 {
			t.Errorf("Expected 2 field errors, got %v", fields)
		}
	})

	t.Run("negative quantity", func(t *testing.T) {
		fields := fieldsOf(t, ValidateUpdateHolding(request.UpdateHoldingRequest{Quantity: ptr(-1), AverageCost: ptr(1)}))
		if fields["quantity"] == "" {
			t.Errorf("Expected quantity error, got %v", fields)
		}
	})
}

func TestValidateCreateScrap(t *testing.T) {
	tests := []struct {
		name    string
		req     request.CreateScrapRequest
		wantErr string
	}{
		{"valid with link", request.CreateScrapRequest{Title: "t", Link: "https://a.example/x"}, ""},
		{"valid without link", request.CreateScrapRequest{Title: "t"}, ""},
		{"missing title", request.CreateScrapRequest{}, "title"},
		{"relative link", request.CreateScrapRequest{Title: "t", Link: "/x"}, "link"},
		{"ftp link", request.CreateScrapRequest{Title: "t", Link: "ftp://a.example/x"}, "link"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCreateScrap(tt.req)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Expected valid, got %v", err)
				}
				return
			}
			if _, ok := fieldsOf(t, err)[tt.wantErr]; !ok {
				t.Errorf("Expected error on %s, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestValidateScrapSort(t *testing.T) {
	for _, s := range []string{"", "newest", "oldest", "ticker"} {
		if err := ValidateScrapSort(s); err != nil {
			t.Errorf("Expected %q to be valid, got %v", s, err)
		}
	}
	if err := ValidateScrapSort("random"); err == nil {
		t.Error("Expected error for unknown sort")
	}
}

func TestValidateGenerateReport(t *testing.T) {
	if err := ValidateGenerateReport(request.GenerateReportRequest{Focus: []string{"hedging", "risk"}, RiskPreference: "conservative"}); err != nil {
		t.Errorf("Expected valid, got %v", err)
	}

	fields := fieldsOf(t, ValidateGenerateReport(request.GenerateReportRequest{Focus: []string{"astrology"}, RiskPreference: "yolo"}))
	if fields["focus"] == "" || fields["riskPreference"] == "" {
		t.Errorf("Expected focus and riskPreference errors, got %v", fields)
	}

	if err := ValidateSaveReport(request.SaveReportRequest{Text: " "}); err == nil {
		t.Error("Expected empty text to be rejected")
	}
}

func TestParseDateRange(t *testing.T) {
	now := time.Date(2026, 3, 2, 15, 0, 0, 0, time.UTC)

	t.Run("defaults to the last 30 days", func(t *testing.T) {
		start, end, err := ParseDateRange("", "", now)
		if err != nil {
			t.Fatalf("ParseDateRange() error = %v", err)
		}
		if end.Format("2006-01-02") != "2026-03-02" || start.Format("2006-01-02") != "2026-01-31" {
			t.Errorf("Unexpected range %v - %v", start, end)
		}
	})

	t.Run("start after end", func(t *testing.T) {
		_, _, err := ParseDateRange("2026-03-05", "2026-03-01", now)
		if !errors.Is(err, ErrInvalidDateRange) {
			t.Errorf("Expected ErrInvalidDateRange, got %v", err)
		}
	})

	t.Run("bad format", func(t *testing.T) {
		_, _, err := ParseDateRange("03/01/2026", "", now)
		if fieldsOf(t, err)["start_date"] == "" {
			t.Errorf("Expected start_date error, got %v", err)
		}
	})
}

func TestValidateUUID(t *testing.T) {
	if err := ValidateUUID("59c1e2a4-7f2b-4c8e-9d3a-1b2c3d4e5f60"); err != nil {
		t.Errorf("Expected valid uuid, got %v", err)
	}
	if err := ValidateUUID("59c1e2a47f2b4c8e9d3a1b2c3d4e5f60"); err != nil {
		t.Errorf("Expected dashless uuid to be valid, got %v", err)
	}
	if err := ValidateUUID("not-a-uuid"); !errors.Is(err, ErrInvalidUUID) {
		t.Errorf("Expected ErrInvalidUUID, got %v", err)
	}
}

func TestErrorMessageIsSorted(t *testing.T) {
	e := &Error{Fields: map[string]string{"b": "two", "a": "one"}}
	if e.Error() != "a: one; b: two" {
		t.Errorf("Expected sorted message, got %q", e.Error())
	}
}
