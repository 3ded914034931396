package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/cache"
	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/events"
	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/market"
	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/model"
	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/repository"
	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/valuation"
)

// PortfolioService handles holding management and portfolio valuation.
// It coordinates the document store, the valuer, the snapshot history and
// change events, and keeps the holdings cache consistent with writes.
type PortfolioService struct {
	store     HoldingStore
	valuer    *valuation.Valuer
	market    MarketData
	cache     *cache.Cache
	snapshots *repository.SnapshotRepository
	events    events.Publisher
	now       func() time.Time
	log       zerolog.Logger
}

// NewPortfolioService creates a new PortfolioService. cache and snapshots may
// be nil; events defaults to a no-op publisher.
func NewPortfolioService(
	store HoldingStore,
	valuer *valuation.Valuer,
	marketData MarketData,
	c *cache.Cache,
	snapshots *repository.SnapshotRepository,
	publisher events.Publisher,
	log zerolog.Logger,
) *PortfolioService {
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &PortfolioService{
		store:     store,
		valuer:    valuer,
		market:    marketData,
		cache:     c,
		snapshots: snapshots,
		events:    publisher,
		now:       time.Now,
		log:       log,
	}
}

// GetHoldings returns the holdings, served from cache while fresh.
func (s *PortfolioService) GetHoldings(ctx context.Context) ([]model.Holding, error) {
	return cache.Fetch(ctx, s.cache, cache.OpHoldings, nil, s.store.ListHoldings)
}

// GetDashboard values every holding and aggregates the result.
//
// Holdings whose quote is unavailable are left out of the rows and the
// totals. When at least one row is produced the day's snapshot is stored;
// a failure to store it is logged and does not fail the request.
//
// Returns an error only when the holdings cannot be listed.
func (s *PortfolioService) GetDashboard(ctx context.Context) (model.Dashboard, error) {
	holdings, err := s.GetHoldings(ctx)
	if err != nil {
		return model.Dashboard{}, err
	}

	rows := s.valuer.Summarize(ctx, holdings)
	summary := valuation.Aggregate(rows)
	now := s.now()

	dashboard := model.Dashboard{
		Rows:        rows,
		Summary:     summary,
		USDKRW:      s.market.FetchFxRate(ctx, model.FxUSDKRW),
		JPYKRW:      s.market.FetchFxRate(ctx, model.FxJPYKRW),
		GeneratedAt: now,
	}

	if len(rows) > 0 {
		s.recordSnapshot(summary, now)
	}
	return dashboard, nil
}

// CaptureSnapshot values the portfolio and stores the snapshot without
// serving a request. Used by the scheduler.
func (s *PortfolioService) CaptureSnapshot(ctx context.Context) error {
	holdings, err := s.store.ListHoldings(ctx)
	if err != nil {
		return fmt.Errorf("capture snapshot: %w", err)
	}
	rows := s.valuer.Summarize(ctx, holdings)
	if len(rows) == 0 {
		s.log.Info().Msg("snapshot skipped, no valued holdings")
		return nil
	}
	s.recordSnapshot(valuation.Aggregate(rows), s.now())
	return nil
}

func (s *PortfolioService) recordSnapshot(summary model.PortfolioSummary, now time.Time) {
	if s.snapshots == nil {
		return
	}
	snap := model.PortfolioSnapshot{
		Date:               now.UTC().Truncate(24 * time.Hour),
		TotalValue:         summary.TotalValue,
		TotalCost:          summary.TotalCost,
		TotalProfitLoss:    summary.TotalProfitLoss,
		TotalProfitLossPct: summary.TotalProfitLossPct,
		HoldingCount:       summary.HoldingCount,
		CalculatedAt:       now.UTC(),
	}
	if err := s.snapshots.UpsertSnapshot(snap); err != nil {
		s.log.Warn().Err(err).Msg("failed to store portfolio snapshot")
	}
}

// GetHistory returns stored snapshots between startDate and endDate, oldest first.
func (s *PortfolioService) GetHistory(startDate, endDate time.Time) ([]model.PortfolioSnapshot, error) {
	history := []model.PortfolioSnapshot{}
	if s.snapshots == nil {
		return history, nil
	}
	err := s.snapshots.GetSnapshots(startDate, endDate, func(snap model.PortfolioSnapshot) error {
		history = append(history, snap)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return history, nil
}

// AddHolding normalizes the ticker, fills in the asset class when missing
// and stores the holding. The store rejects duplicate tickers.
func (s *PortfolioService) AddHolding(ctx context.Context, h model.Holding) (model.Holding, error) {
	h.Ticker = market.NormalizeTicker(h.Ticker)
	if h.AssetClass == "" {
		h.AssetClass = market.DetectAssetType(h.Ticker)
	}

	created, err := s.store.AddHolding(ctx, h)
	if err != nil {
		return model.Holding{}, err
	}

	s.invalidateHoldings(ctx)
	s.events.Publish(ctx, events.Event{Type: events.HoldingAdded, RecordID: created.RecordID, Ticker: created.Ticker, Payload: created})
	s.log.Info().Str("ticker", created.Ticker).Str("recordId", created.RecordID).Msg("holding added")
	return created, nil
}

// UpdateHolding overwrites quantity and average cost.
func (s *PortfolioService) UpdateHolding(ctx context.Context, recordID string, quantity, averageCost float64) error {
	if err := s.store.UpdateHolding(ctx, recordID, quantity, averageCost); err != nil {
		return err
	}

	s.invalidateHoldings(ctx)
	s.events.Publish(ctx, events.Event{
		Type:     events.HoldingUpdated,
		RecordID: recordID,
		Payload:  map[string]float64{"quantity": quantity, "averageCost": averageCost},
	})
	return nil
}

// RemoveHolding archives a holding.
func (s *PortfolioService) RemoveHolding(ctx context.Context, recordID string) error {
	if err := s.store.RemoveHolding(ctx, recordID); err != nil {
		return err
	}

	s.invalidateHoldings(ctx)
	s.events.Publish(ctx, events.Event{Type: events.HoldingRemoved, RecordID: recordID})
	return nil
}

func (s *PortfolioService) invalidateHoldings(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, cache.OpHoldings); err != nil {
		s.log.Warn().Err(err).Msg("failed to invalidate holdings cache")
	}
}
