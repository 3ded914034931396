package service

import (
	"context"

	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/model"
	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/report"
)

// HoldingStore persists holdings. Implemented by *notion.Client.
type HoldingStore interface {
	ListHoldings(ctx context.Context) ([]model.Holding, error)
	AddHolding(ctx context.Context, h model.Holding) (model.Holding, error)
	UpdateHolding(ctx context.Context, recordID string, quantity, averageCost float64) error
	RemoveHolding(ctx context.Context, recordID string) error
}

// ScrapStore persists scraps. Implemented by *notion.Client.
type ScrapStore interface {
	ListScraps(ctx context.Context, limit int) ([]model.ScrapRecord, error)
	AddScrap(ctx context.Context, s model.ScrapRecord) (model.ScrapRecord, error)
	RemoveScrap(ctx context.Context, recordID string) error
}

// StoreStatus reports the document store configuration.
type StoreStatus interface {
	Status() model.ConnectionStatus
}

// MarketData is the market lookups used by the services. Implemented by
// *market.Fetcher.
type MarketData interface {
	FetchQuote(ctx context.Context, ticker string) model.QuoteSnapshot
	FetchFxRate(ctx context.Context, pair model.FxPair) model.FxRate
	FetchMarketIndices(ctx context.Context, defs []model.IndexDef) []model.IndexSnapshot
	MajorCoins(ctx context.Context) []model.QuoteSnapshot
	PriceHistory(ctx context.Context, ticker, period string) (model.PriceHistory, error)
}

// NewsSource retrieves headlines. Implemented by *news.Client.
type NewsSource interface {
	AssetNews(ctx context.Context, ticker, name string, class model.AssetClass, max int) []model.NewsItem
	MarketNews(ctx context.Context, max int) []model.NewsItem
	CryptoNews(ctx context.Context, max int) []model.NewsItem
	ResearchNews(ctx context.Context, query string, max int) []model.NewsItem
}

// ReportGenerator produces a briefing. Implemented by *report.Generator.
type ReportGenerator interface {
	Generate(ctx context.Context, in report.Input) model.Report
	Ready() bool
	Candidates() []string
}
