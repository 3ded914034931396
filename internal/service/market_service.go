package service

import (
	"context"
	"fmt"

	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/apperrors"
	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/market"
	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/model"
)

// DefaultHistoryPeriod is used when no period is requested.
const DefaultHistoryPeriod = "6mo"

// FxRates is the pair of reporting rates shown together.
type FxRates struct {
	USDKRW model.FxRate `json:"usdKrw"`
	JPYKRW model.FxRate `json:"jpyKrw"`
}

// MarketService exposes market overview data.
type MarketService struct {
	market  MarketData
	indices []model.IndexDef
}

// NewMarketService creates a new MarketService over the default index list.
func NewMarketService(m MarketData) *MarketService {
	return &MarketService{market: m, indices: market.DefaultIndices}
}

// GetIndices returns index levels; failed indices are omitted.
func (s *MarketService) GetIndices(ctx context.Context) []model.IndexSnapshot {
	return s.market.FetchMarketIndices(ctx, s.indices)
}

// GetCrypto returns quotes for the major coins.
func (s *MarketService) GetCrypto(ctx context.Context) []model.QuoteSnapshot {
	return s.market.MajorCoins(ctx)
}

// GetFxRates returns USD/KRW and JPY/KRW, falling back to fixed rates.
func (s *MarketService) GetFxRates(ctx context.Context) FxRates {
	return FxRates{
		USDKRW: s.market.FetchFxRate(ctx, model.FxUSDKRW),
		JPYKRW: s.market.FetchFxRate(ctx, model.FxJPYKRW),
	}
}

// GetQuote returns the latest quote. An invalid quote is reported as
// apperrors.ErrDataUnavailable.
func (s *MarketService) GetQuote(ctx context.Context, ticker string) (model.QuoteSnapshot, error) {
	q := s.market.FetchQuote(ctx, ticker)
	if !q.Valid {
		return q, fmt.Errorf("quote %s: %s: %w", q.Ticker, q.Error, apperrors.ErrDataUnavailable)
	}
	return q, nil
}

// GetHistory returns the daily price history for one of market.HistoryPeriods.
// An empty period defaults to DefaultHistoryPeriod.
func (s *MarketService) GetHistory(ctx context.Context, ticker, period string) (model.PriceHistory, error) {
	if period == "" {
		period = DefaultHistoryPeriod
	}
	return s.market.PriceHistory(ctx, ticker, period)
}
