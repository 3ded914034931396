package report

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/model"
)

// scriptedModel answers per model name and records the call order.
type scriptedModel struct {
	mu      sync.Mutex
	calls   []string
	answers map[string]string
	errs    map[string]error
	prompts []string
}

func (m *scriptedModel) GenerateText(_ context.Context, name, _, prompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, name)
	m.prompts = append(m.prompts, prompt)
	if err, ok := m.errs[name]; ok {
		return "", err
	}
	return m.answers[name], nil
}

var fixedNow = time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)

func newGenerator(m Model, candidates ...string) *Generator {
	return NewGenerator(m, candidates, zerolog.Nop(), WithClock(func() time.Time { return fixedNow }))
}

// TestGenerate_FallsBackOnQuota checks that a quota failure moves to the
// next candidate and stops at the first answer.
//
// WHY: Free-tier keys routinely exhaust one model's quota. The user should
// get a report from the next model without a third call being wasted.
func TestGenerate_FallsBackOnQuota(t *testing.T) {
	m := &scriptedModel{
		errs:    map[string]error{"m1": errors.New("429 quota exceeded for model m1")},
		answers: map[string]string{"m2": "## Briefing\nall good"},
	}

	r := newGenerator(m, "m1", "m2", "m3").Generate(context.Background(), Input{})

	assert.Equal(t, model.ReportOK, r.Outcome)
	assert.Equal(t, "m2", r.Model)
	assert.Equal(t, "## Briefing\nall good", r.Text)
	assert.Equal(t, []string{"m1", "m2"}, m.calls)
	assert.Equal(t, fixedNow, r.GeneratedAt)
}

// TestGenerate_AllUnavailable checks the diagnostic when every model is missing.
//
// WHY: A deterministic message lets the caller show a stable hint instead
// of a raw SDK error.
func TestGenerate_AllUnavailable(t *testing.T) {
	m := &scriptedModel{errs: map[string]error{
		"m1": errors.New("models/m1 is not found for API version v1beta"),
		"m2": errors.New("404 model not found"),
	}}

	r := newGenerator(m, "m1", "m2").Generate(context.Background(), Input{})

	assert.Equal(t, model.ReportUnavailable, r.Outcome)
	assert.Equal(t, fmt.Sprintf(DiagnosticUnavailable, "m1, m2"), r.Text)
	assert.Empty(t, r.Model)
	assert.Equal(t, []string{"m1", "m2"}, m.calls)
}

func TestGenerate_Diagnostics(t *testing.T) {
	t.Run("not configured makes no call", func(t *testing.T) {
		r := newGenerator(nil, "m1").Generate(context.Background(), Input{})
		assert.Equal(t, model.ReportNotConfigured, r.Outcome)
		assert.Equal(t, DiagnosticNotConfigured, r.Text)
	})

	t.Run("all quota exhausted", func(t *testing.T) {
		m := &scriptedModel{errs: map[string]error{
			"m1": genai.APIError{Code: 429, Status: "RESOURCE_EXHAUSTED", Message: "quota"},
			"m2": errors.New("Resource exhausted"),
		}}
		r := newGenerator(m, "m1", "m2").Generate(context.Background(), Input{})
		assert.Equal(t, model.ReportQuotaExhausted, r.Outcome)
		assert.Equal(t, DiagnosticQuota, r.Text)
	})

	t.Run("credential failure aborts the chain", func(t *testing.T) {
		m := &scriptedModel{errs: map[string]error{
			"m1": genai.APIError{Code: 400, Status: "INVALID_ARGUMENT", Message: "API key not valid. Please pass a valid API key."},
		}, answers: map[string]string{"m2": "unused"}}
		r := newGenerator(m, "m1", "m2").Generate(context.Background(), Input{})
		assert.Equal(t, model.ReportCredentialInvalid, r.Outcome)
		assert.Equal(t, DiagnosticCredential, r.Text)
		assert.Equal(t, []string{"m1"}, m.calls)
	})

	t.Run("other failure aborts the chain", func(t *testing.T) {
		m := &scriptedModel{errs: map[string]error{"m1": errors.New("internal server error")}}
		r := newGenerator(m, "m1", "m2").Generate(context.Background(), Input{})
		assert.Equal(t, model.ReportFailed, r.Outcome)
		assert.Contains(t, r.Text, "internal server error")
		assert.Equal(t, []string{"m1"}, m.calls)
	})

	t.Run("empty answer falls back", func(t *testing.T) {
		m := &scriptedModel{answers: map[string]string{"m1": "  ", "m2": "text"}}
		r := newGenerator(m, "m1", "m2").Generate(context.Background(), Input{})
		assert.Equal(t, model.ReportOK, r.Outcome)
		assert.Equal(t, "m2", r.Model)
	})
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		decision Decision
		reason   Reason
	}{
		{"quota text", errors.New("Quota exceeded"), Fallback, ReasonQuota},
		{"429 api error", genai.APIError{Code: 429}, Fallback, ReasonQuota},
		{"resource exhausted status", &genai.APIError{Code: 0, Status: "RESOURCE_EXHAUSTED"}, Fallback, ReasonQuota},
		{"not found api error", genai.APIError{Code: 404, Status: "NOT_FOUND"}, Fallback, ReasonUnavailable},
		{"invalid model text", errors.New("invalid model name"), Fallback, ReasonUnavailable},
		{"unsupported model", errors.New("model is not supported for generateContent"), Fallback, ReasonUnavailable},
		{"wrapped not found", fmt.Errorf("call: %w", errors.New("not found")), Fallback, ReasonUnavailable},
		{"unauthenticated", genai.APIError{Code: 401, Status: "UNAUTHENTICATED"}, Abort, ReasonCredential},
		{"permission denied", genai.APIError{Code: 403, Status: "PERMISSION_DENIED"}, Abort, ReasonCredential},
		{"bad api key text", errors.New("API key not valid"), Abort, ReasonCredential},
		{"deadline", context.DeadlineExceeded, Abort, ReasonOther},
		{"generic", errors.New("boom"), Abort, ReasonOther},
		{"nil", nil, Abort, ReasonOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, r := Classify(tt.err)
			if d != tt.decision || r != tt.reason {
				t.Errorf("Expected %s/%s, got %s/%s", tt.decision, tt.reason, d, r)
			}
		})
	}
}

func TestBuildPrompt(t *testing.T) {
	var scraps []model.ScrapRecord
	for i := range 20 {
		scraps = append(scraps, model.ScrapRecord{
			Title:     fmt.Sprintf("scrap-%02d", i),
			Ticker:    "AAPL",
			Category:  "news",
			ScrapedAt: fixedNow.AddDate(0, 0, -i),
		})
	}
	in := Input{
		Rows: []model.ValuationRow{{Ticker: "AAPL", Name: "Apple", AssetClass: model.AssetForeignEquity, ValueKRW: 2227500, ProfitLossPct: 10, Sector: "Technology", ChangePct: 1.2}},
		Summary: model.PortfolioSummary{
			TotalValue: 2227500, TotalProfitLoss: 202500, TotalProfitLossPct: 10,
			Allocation: []model.AllocationSlice{{AssetClass: model.AssetForeignEquity, WeightPct: 100}},
		},
		Scraps:  scraps,
		Indices: []model.IndexSnapshot{{Name: "S&P 500", Value: 5123.45, ChangePct: -0.5}},
		Extra:   "focus on hedging",
	}

	p := BuildPrompt(in, fixedNow)

	assert.Contains(t, p, "Total value: ₩2,227,500")
	assert.Contains(t, p, "+₩202,500 (+10.0%)")
	assert.Contains(t, p, "foreign-equity: 100.0%")
	assert.Contains(t, p, "| AAPL | Apple | foreign-equity | ₩2,227,500 | +10.00 | Technology | +1.20 |")
	assert.Contains(t, p, "- S&P 500: 5,123.45 (-0.50%)")
	assert.Contains(t, p, "Current time: 2026-03-02 09:30")
	assert.Contains(t, p, "Additional request: focus on hedging")

	assert.Contains(t, p, "scrap-00")
	assert.Contains(t, p, "scrap-14")
	assert.NotContains(t, p, "scrap-15", "only the 15 most recent scraps are included")
}

func TestBuildPrompt_Empty(t *testing.T) {
	p := BuildPrompt(Input{}, fixedNow)
	assert.Contains(t, p, "(no holdings registered)")
	assert.Contains(t, p, "## Scraps\n(none)")
	assert.NotContains(t, p, "Additional request")
}

func TestSystemPromptLanguage(t *testing.T) {
	assert.True(t, strings.HasSuffix(SystemPrompt("English"), "Write in English, as a clear and specific briefing to a real investor."))
}

func TestRenderHTML(t *testing.T) {
	html, err := RenderHTML("## Diagnosis\n\n**strong** tech weight\n\n| a | b |\n|---|---|\n| 1 | 2 |\n")
	require.NoError(t, err)
	assert.Contains(t, html, "<h2>Diagnosis</h2>")
	assert.Contains(t, html, "<strong>strong</strong>")
	assert.Contains(t, html, "<table>")
}

func TestFormatKRW(t *testing.T) {
	assert.Equal(t, "₩2,227,500", FormatKRW(2227500))
	assert.Equal(t, "₩0", FormatKRW(0))
	assert.Equal(t, "1,234,567.89", groupThousands(1234567.891))
	assert.Equal(t, "-12.50", groupThousands(-12.5))
	assert.Equal(t, "5,050.00", groupThousands(5050))
}
