// Package report produces the narrative portfolio briefing by asking an
// ordered list of generative models until one answers.
package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/model"
)

// Diagnostics returned in place of a report. They are fixed strings so the
// caller can show them verbatim.
const (
	DiagnosticNotConfigured = "⚠️ The Gemini API key is not configured. Set GEMINI_API_KEY to enable reports."
	DiagnosticQuota         = "⚠️ Every Gemini model has exhausted its quota. Wait for the quota to reset and try again."
	DiagnosticUnavailable   = "⚠️ No Gemini model is available for this API key. Tried: %s."
	DiagnosticCredential    = "⚠️ The Gemini API key was rejected. Issue a new key at https://aistudio.google.com/app/apikey."
	DiagnosticFailed        = "⚠️ Report generation failed: %s"
)

// Model generates text with a named model.
type Model interface {
	GenerateText(ctx context.Context, modelName, system, prompt string) (string, error)
}

// Input is everything the briefing is built from.
type Input struct {
	Rows    []model.ValuationRow
	Summary model.PortfolioSummary
	Scraps  []model.ScrapRecord
	Indices []model.IndexSnapshot
	Extra   string
}

// Generator runs the fallback chain.
type Generator struct {
	model      Model
	candidates []string
	language   string
	timeout    time.Duration
	now        func() time.Time
	log        zerolog.Logger
}

// Option configures a Generator.
type Option func(*Generator)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// WithTimeout bounds each candidate call. The default is 60 seconds.
func WithTimeout(d time.Duration) Option {
	return func(g *Generator) { g.timeout = d }
}

// WithLanguage sets the answer language. The default is Korean.
func WithLanguage(lang string) Option {
	return func(g *Generator) {
		if lang != "" {
			g.language = lang
		}
	}
}

// NewGenerator creates a generator. A nil model means the API key is not
// configured and every call returns the not-configured diagnostic.
func NewGenerator(m Model, candidates []string, log zerolog.Logger, opts ...Option) *Generator {
	g := &Generator{
		model:      m,
		candidates: candidates,
		language:   "Korean",
		timeout:    60 * time.Second,
		now:        time.Now,
		log:        log,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Ready reports whether a model client is available.
func (g *Generator) Ready() bool {
	return g.model != nil && len(g.candidates) > 0
}

// Candidates returns the model names in the order they are tried.
func (g *Generator) Candidates() []string {
	return append([]string(nil), g.candidates...)
}

// Generate builds the prompt and tries each candidate in order. It never
// returns an error: failures become a diagnostic report with an Outcome
// other than ok.
func (g *Generator) Generate(ctx context.Context, in Input) model.Report {
	now := g.now()
	if !g.Ready() {
		return diagnostic(model.ReportNotConfigured, DiagnosticNotConfigured, now)
	}

	system := SystemPrompt(g.language)
	prompt := BuildPrompt(in, now)

	quota := false
	for _, name := range g.candidates {
		text, err := g.call(ctx, name, system, prompt)
		if err == nil {
			g.log.Info().Str("model", name).Int("chars", len(text)).Msg("report generated")
			return model.Report{Text: text, Model: name, Outcome: model.ReportOK, GeneratedAt: now}
		}

		decision, reason := Classify(err)
		g.log.Warn().Err(err).Str("model", name).Str("decision", decision.String()).Str("reason", string(reason)).Msg("report candidate failed")

		if decision == Abort {
			if reason == ReasonCredential {
				return diagnostic(model.ReportCredentialInvalid, DiagnosticCredential, now)
			}
			return diagnostic(model.ReportFailed, fmt.Sprintf(DiagnosticFailed, err.Error()), now)
		}
		if reason == ReasonQuota {
			quota = true
		}
	}

	if quota {
		return diagnostic(model.ReportQuotaExhausted, DiagnosticQuota, now)
	}
	return diagnostic(model.ReportUnavailable, fmt.Sprintf(DiagnosticUnavailable, strings.Join(g.candidates, ", ")), now)
}

func (g *Generator) call(ctx context.Context, name, system, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	text, err := g.model.GenerateText(ctx, name, system, prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", errEmptyResponse
	}
	return text, nil
}

func diagnostic(outcome model.ReportOutcome, text string, now time.Time) model.Report {
	return model.Report{Text: text, Outcome: outcome, GeneratedAt: now}
}
