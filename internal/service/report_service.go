package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/apperrors"
	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/model"
	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/report"
	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/repository"
)

// Saved report scrap fields.
const (
	ReportTicker      = "PORTFOLIO"
	ReportSource      = "Gemini"
	ReportHistorySize = 5
)

// ReportOptions steer the briefing.
type ReportOptions struct {
	Focus          []string
	RiskPreference string
	Extra          string
}

// extraPrompt folds the options into the free-text request passed to the model.
func (o ReportOptions) extraPrompt() string {
	var parts []string
	if len(o.Focus) > 0 {
		parts = append(parts, fmt.Sprintf("[Focus: %s]", strings.Join(o.Focus, ", ")))
	}
	if o.RiskPreference != "" {
		parts = append(parts, fmt.Sprintf("[Risk preference: %s]", o.RiskPreference))
	}
	head := strings.Join(parts, " ")
	extra := strings.TrimSpace(o.Extra)
	switch {
	case head == "":
		return extra
	case extra == "":
		return head
	default:
		return head + "\n" + extra
	}
}

// ReportService builds the AI briefing from the current portfolio and keeps
// saved reports in the scrap collection.
type ReportService struct {
	portfolio *PortfolioService
	scraps    *ScrapService
	market    MarketData
	generator ReportGenerator
	logs      *repository.ReportLogRepository
	indices   []model.IndexDef
	now       func() time.Time
	log       zerolog.Logger
}

// NewReportService creates a new ReportService. logs may be nil.
func NewReportService(
	portfolio *PortfolioService,
	scraps *ScrapService,
	marketData MarketData,
	generator ReportGenerator,
	logs *repository.ReportLogRepository,
	indices []model.IndexDef,
	log zerolog.Logger,
) *ReportService {
	return &ReportService{
		portfolio: portfolio,
		scraps:    scraps,
		market:    marketData,
		generator: generator,
		logs:      logs,
		indices:   indices,
		now:       time.Now,
		log:       log,
	}
}

// Generate produces a briefing. It never fails: when the portfolio, scraps
// or indices cannot be loaded the report is built without them, and
// generation problems come back as a diagnostic report.
func (s *ReportService) Generate(ctx context.Context, opts ReportOptions) model.Report {
	in := report.Input{Extra: opts.extraPrompt()}
	if s.generator.Ready() {
		s.gather(ctx, &in)
	}

	rep := s.generator.Generate(ctx, in)
	if rep.Outcome == model.ReportOK {
		html, err := report.RenderHTML(rep.Text)
		if err != nil {
			s.log.Warn().Err(err).Msg("failed to render report html")
		}
		rep.HTML = html
	}

	if s.logs != nil {
		if _, err := s.logs.InsertReportLog(rep); err != nil {
			s.log.Warn().Err(err).Msg("failed to record report attempt")
		}
	}
	return rep
}

// gather loads the portfolio, scraps and indices into in. Nothing is
// fetched when no model can answer.
func (s *ReportService) gather(ctx context.Context, in *report.Input) {
	if dashboard, err := s.portfolio.GetDashboard(ctx); err != nil {
		s.log.Warn().Err(err).Msg("report built without portfolio")
	} else {
		in.Rows = dashboard.Rows
		in.Summary = dashboard.Summary
	}

	if scraps, err := s.scraps.GetScraps(ctx, ScrapFilter{Sort: SortNewest, Limit: report.MaxScraps}); err != nil {
		s.log.Warn().Err(err).Msg("report built without scraps")
	} else {
		in.Scraps = scraps
	}

	if len(s.indices) > 0 {
		in.Indices = s.market.FetchMarketIndices(ctx, s.indices)
	}
}

// Save stores a report as an ai-analysis scrap.
func (s *ReportService) Save(ctx context.Context, text, modelName string) (model.ScrapRecord, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return model.ScrapRecord{}, fmt.Errorf("report text is required: %w", apperrors.ErrValidation)
	}
	now := s.now()
	source := ReportSource
	if modelName != "" {
		source = fmt.Sprintf("%s (%s)", ReportSource, modelName)
	}
	return s.scraps.AddScrap(ctx, model.ScrapRecord{
		Title:     "AI Report " + now.Format("2006-01-02 15:04"),
		Summary:   text,
		Ticker:    ReportTicker,
		Category:  model.ScrapCategoryAIAnalysis,
		Source:    source,
		ScrapedAt: now,
	})
}

// History returns the most recent saved reports, newest first.
func (s *ReportService) History(ctx context.Context) ([]model.ScrapRecord, error) {
	return s.scraps.GetScraps(ctx, ScrapFilter{
		Category: model.ScrapCategoryAIAnalysis,
		Sort:     SortNewest,
		Limit:    ReportHistorySize,
	})
}

// RecentAttempts returns the latest logged generation attempts.
func (s *ReportService) RecentAttempts(limit int) ([]repository.ReportLogEntry, error) {
	if s.logs == nil {
		return []repository.ReportLogEntry{}, nil
	}
	return s.logs.GetRecentReportLogs(limit)
}
