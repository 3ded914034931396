// Package market fetches quotes, exchange rates, index levels and price
// history from Yahoo Finance. Quote and rate lookups never fail: problems
// are reported inside the returned value.
package market

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/apperrors"
	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/cache"
	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/model"
	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/yahoo"
)

const noSector = "—"

var errNoData = errors.New("no data")

// HistoryPeriods are the accepted PriceHistory periods.
var HistoryPeriods = []string{"1mo", "3mo", "6mo", "1y", "2y", "5y"}

// MajorCoinTickers are shown on the crypto overview.
var MajorCoinTickers = []string{"BTC-USD", "ETH-USD", "SOL-USD", "XRP-USD", "ADA-USD", "DOGE-USD"}

// DefaultIndices is the dashboard's market overview list.
var DefaultIndices = []model.IndexDef{
	{Name: "S&P 500", Ticker: "^GSPC"},
	{Name: "NASDAQ", Ticker: "^IXIC"},
	{Name: "Dow Jones", Ticker: "^DJI"},
	{Name: "Russell 2000", Ticker: "^RUT"},
	{Name: "KOSPI", Ticker: "^KS11"},
	{Name: "KOSDAQ", Ticker: "^KQ11"},
	{Name: "Nikkei 225", Ticker: "^N225"},
	{Name: "Hang Seng", Ticker: "^HSI"},
	{Name: "Shanghai Composite", Ticker: "000001.SS"},
	{Name: "Euro Stoxx 50", Ticker: "^STOXX50E"},
	{Name: "VIX", Ticker: "^VIX"},
	{Name: "Dollar Index", Ticker: "DX-Y.NYB"},
	{Name: "Gold", Ticker: "GC=F"},
	{Name: "Silver", Ticker: "SI=F"},
	{Name: "WTI Crude", Ticker: "CL=F"},
	{Name: "Natural Gas", Ticker: "NG=F"},
	{Name: "US 10Y Yield", Ticker: "^TNX"},
	{Name: "US 3M Yield", Ticker: "^IRX"},
	{Name: "USD/KRW", Ticker: "KRW=X"},
	{Name: "USD/JPY", Ticker: "JPY=X"},
	{Name: "EUR/USD", Ticker: "EURUSD=X"},
	{Name: "BTC/USD", Ticker: "BTC-USD"},
	{Name: "ETH/USD", Ticker: "ETH-USD"},
}

// Fetcher answers market data questions through a Yahoo client and a cache.
type Fetcher struct {
	client      yahoo.Client
	cache       *cache.Cache
	concurrency int
	now         func() time.Time
	log         zerolog.Logger
}

// NewFetcher creates a Fetcher. A nil cache disables caching; concurrency
// below 1 is treated as 1.
func NewFetcher(client yahoo.Client, c *cache.Cache, concurrency int, log zerolog.Logger) *Fetcher {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Fetcher{
		client:      client,
		cache:       c,
		concurrency: concurrency,
		now:         time.Now,
		log:         log,
	}
}

// FetchQuote returns the latest quote for a ticker. It never returns an error;
// any failure yields a snapshot with Valid false and Error set.
func (f *Fetcher) FetchQuote(ctx context.Context, ticker string) model.QuoteSnapshot {
	sym := NormalizeTicker(ticker)
	if sym == "" {
		return model.QuoteSnapshot{Ticker: sym, Error: "empty ticker"}
	}

	snap, err := cache.Fetch(ctx, f.cache, cache.OpQuote, []string{sym}, func(ctx context.Context) (model.QuoteSnapshot, error) {
		snap, err := f.loadQuote(ctx, sym)
		if err != nil {
			return snap, err
		}
		snap.Sector = f.sector(ctx, sym)
		return snap, nil
	})
	if err != nil {
		f.log.Debug().Err(err).Str("ticker", sym).Msg("quote unavailable")
		return model.QuoteSnapshot{Ticker: sym, AssetClass: DetectAssetType(sym), Error: err.Error()}
	}
	return snap
}

// loadQuote reads the 5-day daily chart. Change is measured between the last
// two closes and is zero when fewer than two exist.
func (f *Fetcher) loadQuote(ctx context.Context, sym string) (model.QuoteSnapshot, error) {
	resp, err := f.client.QueryChart(ctx, sym, "5d")
	if err != nil {
		return model.QuoteSnapshot{}, err
	}
	chart, err := yahoo.ParseChart(resp)
	if err != nil {
		return model.QuoteSnapshot{}, errNoData
	}

	bars := chart.Indicators
	last := bars[len(bars)-1]
	var prev, change float64
	if len(bars) >= 2 {
		prev = bars[len(bars)-2].PriceClose
		if prev != 0 {
			change = (last.PriceClose - prev) / prev * 100
		}
	}

	name := chart.Name()
	if name == "" {
		name = sym
	}

	places := PricePrecision(sym)
	return model.QuoteSnapshot{
		Ticker:           sym,
		Name:             name,
		Price:            Round(last.PriceClose, places),
		PreviousClose:    Round(prev, places),
		ChangePct:        Round(change, 2),
		Currency:         strings.ToUpper(chart.Currency),
		Sector:           noSector,
		AssetClass:       DetectAssetType(sym),
		FiftyTwoWeekHigh: chart.FiftyTwoWeekHigh,
		FiftyTwoWeekLow:  chart.FiftyTwoWeekLow,
		Volume:           last.Volume,
		Valid:            true,
	}, nil
}

// sector labels a quote; it never invalidates it.
func (f *Fetcher) sector(ctx context.Context, sym string) string {
	p, err := cache.Fetch(ctx, f.cache, cache.OpProfile, []string{sym}, func(ctx context.Context) (yahoo.Profile, error) {
		return f.client.QueryProfile(ctx, sym)
	})
	if err != nil {
		f.log.Debug().Err(err).Str("ticker", sym).Msg("profile unavailable")
		return noSector
	}
	switch {
	case p.Sector != "":
		return p.Sector
	case p.Category != "":
		return p.Category
	default:
		return noSector
	}
}

// FetchFxRate returns a KRW conversion rate. USDKRW is won per dollar and
// JPYKRW is won per 100 yen. On any failure the documented fallback constant
// is returned with Fallback set.
func (f *Fetcher) FetchFxRate(ctx context.Context, pair model.FxPair) model.FxRate {
	rate, err := cache.Fetch(ctx, f.cache, cache.OpFx, []string{string(pair)}, func(ctx context.Context) (model.FxRate, error) {
		return f.loadFxRate(ctx, pair)
	})
	if err == nil {
		return rate
	}

	f.log.Warn().Err(err).Str("pair", string(pair)).Msg("using fallback exchange rate")
	fallback := model.FxRate{Pair: pair, Fallback: true, FetchedAt: f.now()}
	switch pair {
	case model.FxJPYKRW:
		fallback.Rate = model.FallbackJPYKRW
	default:
		fallback.Rate = model.FallbackUSDKRW
	}
	return fallback
}

func (f *Fetcher) loadFxRate(ctx context.Context, pair model.FxPair) (model.FxRate, error) {
	usd, err := f.lastClose(ctx, "KRW=X")
	if err != nil {
		return model.FxRate{}, fmt.Errorf("KRW=X: %w", err)
	}
	rate := usd

	switch pair {
	case model.FxUSDKRW:
	case model.FxJPYKRW:
		yen, err := f.lastClose(ctx, "JPY=X")
		if err != nil {
			return model.FxRate{}, fmt.Errorf("JPY=X: %w", err)
		}
		rate = usd / yen * 100
	default:
		return model.FxRate{}, fmt.Errorf("unsupported pair %q", pair)
	}

	return model.FxRate{Pair: pair, Rate: Round(rate, 2), FetchedAt: f.now()}, nil
}

func (f *Fetcher) lastClose(ctx context.Context, sym string) (float64, error) {
	resp, err := f.client.QueryChart(ctx, sym, "5d")
	if err != nil {
		return 0, err
	}
	chart, err := yahoo.ParseChart(resp)
	if err != nil {
		return 0, errNoData
	}
	v := chart.Indicators[len(chart.Indicators)-1].PriceClose
	if v <= 0 {
		return 0, errNoData
	}
	return v, nil
}

// FetchMarketIndices returns the level of each index that could be fetched,
// in input order. Failed items are left out. Levels are cached per index, so
// a failure never hides an index that loads on the next call.
func (f *Fetcher) FetchMarketIndices(ctx context.Context, defs []model.IndexDef) []model.IndexSnapshot {
	results := make([]*model.IndexSnapshot, len(defs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.concurrency)
	for i, d := range defs {
		g.Go(func() error {
			snap, err := f.indexLevel(gctx, d)
			if err != nil {
				f.log.Debug().Err(err).Str("ticker", d.Ticker).Msg("index skipped")
				return nil
			}
			results[i] = &snap
			return nil
		})
	}
	_ = g.Wait()

	out := make([]model.IndexSnapshot, 0, len(defs))
	for _, r := range results {
		if r != nil {
			out = append(out, *r)
		}
	}
	return out
}

func (f *Fetcher) indexLevel(ctx context.Context, d model.IndexDef) (model.IndexSnapshot, error) {
	snap, err := cache.Fetch(ctx, f.cache, cache.OpIndices, []string{d.Ticker}, func(ctx context.Context) (model.IndexSnapshot, error) {
		q, err := f.loadQuote(ctx, d.Ticker)
		if err != nil {
			return model.IndexSnapshot{}, fmt.Errorf("%w: %v", apperrors.ErrDataUnavailable, err)
		}
		return model.IndexSnapshot{
			Ticker:    d.Ticker,
			Value:     Round(q.Price, 2),
			ChangePct: q.ChangePct,
		}, nil
	})
	snap.Name = d.Name
	return snap, err
}

// MajorCoins returns valid quotes for the main cryptocurrencies in a fixed order.
func (f *Fetcher) MajorCoins(ctx context.Context) []model.QuoteSnapshot {
	return f.FetchQuotes(ctx, MajorCoinTickers)
}

// FetchQuotes fetches several quotes concurrently and keeps the valid ones in input order.
func (f *Fetcher) FetchQuotes(ctx context.Context, tickers []string) []model.QuoteSnapshot {
	results := make([]model.QuoteSnapshot, len(tickers))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.concurrency)
	for i, t := range tickers {
		g.Go(func() error {
			results[i] = f.FetchQuote(gctx, t)
			return nil
		})
	}
	_ = g.Wait()

	out := make([]model.QuoteSnapshot, 0, len(results))
	for _, q := range results {
		if q.Valid {
			out = append(out, q)
		}
	}
	return out
}

// PriceHistory returns the daily series for a ticker over one of HistoryPeriods,
// with 20 and 60 day moving averages once enough closes exist.
func (f *Fetcher) PriceHistory(ctx context.Context, ticker, period string) (model.PriceHistory, error) {
	if !slices.Contains(HistoryPeriods, period) {
		return model.PriceHistory{}, fmt.Errorf("%w: %s", apperrors.ErrInvalidPeriod, period)
	}
	sym := NormalizeTicker(ticker)

	return cache.Fetch(ctx, f.cache, cache.OpHistory, []string{sym, period}, func(ctx context.Context) (model.PriceHistory, error) {
		resp, err := f.client.QueryChart(ctx, sym, period)
		if err != nil {
			return model.PriceHistory{}, fmt.Errorf("%w: %v", apperrors.ErrDataUnavailable, err)
		}
		chart, err := yahoo.ParseChart(resp)
		if err != nil {
			return model.PriceHistory{}, fmt.Errorf("%w: %v", apperrors.ErrDataUnavailable, err)
		}

		places := PricePrecision(sym)
		points := make([]model.PricePoint, len(chart.Indicators))
		for i, bar := range chart.Indicators {
			points[i] = model.PricePoint{
				Date:   bar.Date,
				Open:   Round(bar.PriceOpen, places),
				High:   Round(bar.PriceHigh, places),
				Low:    Round(bar.PriceLow, places),
				Close:  Round(bar.PriceClose, places),
				Volume: bar.Volume,
			}
		}
		applyMovingAverage(points, 20, places, func(p *model.PricePoint, v float64) { p.MA20 = v })
		applyMovingAverage(points, 60, places, func(p *model.PricePoint, v float64) { p.MA60 = v })

		return model.PriceHistory{
			Ticker:   sym,
			Period:   period,
			Currency: strings.ToUpper(chart.Currency),
			Points:   points,
		}, nil
	})
}

func applyMovingAverage(points []model.PricePoint, window int, places int32, set func(*model.PricePoint, float64)) {
	var sum float64
	for i := range points {
		sum += points[i].Close
		if i >= window {
			sum -= points[i-window].Close
		}
		if i >= window-1 {
			set(&points[i], Round(sum/float64(window), places))
		}
	}
}
