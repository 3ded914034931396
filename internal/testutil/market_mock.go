package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/apperrors"
	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/model"
	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/report"
)

// MockMarket serves fixed quotes and rates without touching Yahoo.
// Unknown tickers come back as invalid quotes.
type MockMarket struct {
	mu      sync.Mutex
	quotes  map[string]model.QuoteSnapshot
	rates   map[model.FxPair]float64
	indices []model.IndexSnapshot
	history map[string]model.PriceHistory

	QuoteCalls int
}

// NewMockMarket creates a mock with USDKRW 1350 and JPYKRW 900.
func NewMockMarket() *MockMarket {
	return &MockMarket{
		quotes:  map[string]model.QuoteSnapshot{},
		rates:   map[model.FxPair]float64{model.FxUSDKRW: 1350, model.FxJPYKRW: 900},
		history: map[string]model.PriceHistory{},
	}
}

// WithQuote adds a valid quote.
func (m *MockMarket) WithQuote(ticker, currency string, price, changePct float64) *MockMarket {
	m.quotes[ticker] = model.QuoteSnapshot{
		Ticker:    ticker,
		Name:      ticker + " Inc.",
		Price:     price,
		ChangePct: changePct,
		Currency:  currency,
		Valid:     true,
	}
	return m
}

// WithIndices sets the index levels returned for any definition list.
func (m *MockMarket) WithIndices(idx ...model.IndexSnapshot) *MockMarket {
	m.indices = append(m.indices, idx...)
	return m
}

// WithHistory sets the history returned for a ticker.
func (m *MockMarket) WithHistory(h model.PriceHistory) *MockMarket {
	m.history[h.Ticker] = h
	return m
}

func (m *MockMarket) FetchQuote(_ context.Context, ticker string) model.QuoteSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.QuoteCalls++
	if q, ok := m.quotes[ticker]; ok {
		return q
	}
	return model.QuoteSnapshot{Ticker: ticker, Error: "no data"}
}

func (m *MockMarket) FetchFxRate(_ context.Context, pair model.FxPair) model.FxRate {
	return model.FxRate{Pair: pair, Rate: m.rates[pair]}
}

func (m *MockMarket) FetchMarketIndices(_ context.Context, _ []model.IndexDef) []model.IndexSnapshot {
	return append([]model.IndexSnapshot{}, m.indices...)
}

func (m *MockMarket) MajorCoins(_ context.Context) []model.QuoteSnapshot {
	out := []model.QuoteSnapshot{}
	for _, t := range []string{"BTC-USD", "ETH-USD"} {
		if q, ok := m.quotes[t]; ok {
			out = append(out, q)
		}
	}
	return out
}

func (m *MockMarket) PriceHistory(_ context.Context, ticker, period string) (model.PriceHistory, error) {
	h, ok := m.history[ticker]
	if !ok {
		return model.PriceHistory{}, fmt.Errorf("%s: %w", ticker, apperrors.ErrDataUnavailable)
	}
	h.Period = period
	return h, nil
}

// MockGenerator returns a fixed report and records the inputs it saw.
type MockGenerator struct {
	Report    model.Report
	NotReady  bool
	Models    []string
	LastInput report.Input
	Generated int
}

func (g *MockGenerator) Generate(_ context.Context, in report.Input) model.Report {
	g.LastInput = in
	g.Generated++
	return g.Report
}

func (g *MockGenerator) Ready() bool { return !g.NotReady }

func (g *MockGenerator) Candidates() []string { return g.Models }

// MockNews returns the same headlines for every query and records the last call.
type MockNews struct {
	Items     []model.NewsItem
	LastQuery string
	LastMax   int
}

func (n *MockNews) AssetNews(_ context.Context, ticker, _ string, _ model.AssetClass, max int) []model.NewsItem {
	return n.record(ticker, max)
}

func (n *MockNews) MarketNews(_ context.Context, max int) []model.NewsItem {
	return n.record("market", max)
}

func (n *MockNews) CryptoNews(_ context.Context, max int) []model.NewsItem {
	return n.record("crypto", max)
}

func (n *MockNews) ResearchNews(_ context.Context, query string, max int) []model.NewsItem {
	return n.record(query, max)
}

func (n *MockNews) record(q string, max int) []model.NewsItem {
	n.LastQuery, n.LastMax = q, max
	out := append([]model.NewsItem{}, n.Items...)
	if len(out) > max {
		out = out[:max]
	}
	return out
}
