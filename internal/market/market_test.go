package market_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/apperrors"
	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/cache"
	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/market"
	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/model"
	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/testutil"
	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/yahoo"
)

// TestNormalizeTicker verifies ticker canonicalization.
//
// WHY: Holdings, duplicate checks and quote lookups all key on the normalized
// ticker. Applying the function twice must never change the result.
func TestNormalizeTicker(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"BTC", "BTC-USD"},
		{"btc", "BTC-USD"},
		{" eth ", "ETH-USD"},
		{"BTC-USD", "BTC-USD"},
		{"BTC-KRW", "BTC-KRW"},
		{"005930.KS", "005930.KS"},
		{"035720.kq", "035720.KQ"},
		{"aapl", "AAPL"},
		{"TSLA", "TSLA"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := market.NormalizeTicker(tt.in)
			if got != tt.want {
				t.Errorf("NormalizeTicker(%q) = %q, want %q", tt.in, got, tt.want)
			}
			if again := market.NormalizeTicker(got); again != got {
				t.Errorf("NormalizeTicker not idempotent: %q -> %q", got, again)
			}
		})
	}
}

func TestDetectAssetType(t *testing.T) {
	tests := map[string]model.AssetClass{
		"005930.KS": model.AssetDomesticEquity,
		"035720.KQ": model.AssetDomesticEquity,
		"BTC":       model.AssetCrypto,
		"ETH-USD":   model.AssetCrypto,
		"SOL-USDT":  model.AssetCrypto,
		"AAPL":      model.AssetForeignEquity,
	}
	for in, want := range tests {
		if got := market.DetectAssetType(in); got != want {
			t.Errorf("DetectAssetType(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestPricePrecision(t *testing.T) {
	if market.PricePrecision("BTC-USD") != 6 || market.PricePrecision("ETH-KRW") != 6 {
		t.Error("Expected 6 decimals for BTC and ETH")
	}
	if market.PricePrecision("SOL-USD") != 2 || market.PricePrecision("AAPL") != 2 {
		t.Error("Expected 2 decimals otherwise")
	}
}

func newFetcher(client yahoo.Client) *market.Fetcher {
	c := cache.New(cache.NewMemoryStore(), map[string]time.Duration{
		cache.OpQuote:   time.Minute,
		cache.OpFx:      10 * time.Minute,
		cache.OpIndices: time.Minute,
		cache.OpHistory: time.Minute,
		cache.OpProfile: time.Hour,
	})
	return market.NewFetcher(client, c, 4, zerolog.Nop())
}

func TestFetcher_FetchQuote(t *testing.T) {
	t.Run("computes change from last two closes", func(t *testing.T) {
		client := testutil.NewMockYahooClient().
			WithCloses("AAPL", "USD", 140, 150, 165).
			WithProfile("AAPL", yahoo.Profile{Sector: "Technology"})
		f := newFetcher(client)

		q := f.FetchQuote(context.Background(), "aapl")

		if !q.Valid {
			t.Fatalf("Expected valid quote, got error %q", q.Error)
		}
		if q.Price != 165 {
			t.Errorf("Expected price 165, got %v", q.Price)
		}
		if q.ChangePct != 10 {
			t.Errorf("Expected change 10%%, got %v", q.ChangePct)
		}
		if q.Currency != "USD" {
			t.Errorf("Expected USD, got %q", q.Currency)
		}
		if q.Sector != "Technology" {
			t.Errorf("Expected sector Technology, got %q", q.Sector)
		}
	})

	t.Run("single close gives zero change", func(t *testing.T) {
		client := testutil.NewMockYahooClient().WithCloses("NEW", "USD", 10)
		q := newFetcher(client).FetchQuote(context.Background(), "NEW")

		if !q.Valid || q.ChangePct != 0 {
			t.Errorf("Expected valid quote with 0 change, got %+v", q)
		}
	})

	t.Run("empty history is invalid with no data", func(t *testing.T) {
		client := testutil.NewMockYahooClient().WithEmptyResponse("GONE")
		q := newFetcher(client).FetchQuote(context.Background(), "GONE")

		if q.Valid {
			t.Fatal("Expected invalid quote")
		}
		if q.Error != "no data" {
			t.Errorf("Expected 'no data', got %q", q.Error)
		}
	})

	t.Run("transport failure is invalid, never panics", func(t *testing.T) {
		client := testutil.NewMockYahooClient().WithError("FAIL", errors.New("connection reset"))
		q := newFetcher(client).FetchQuote(context.Background(), "FAIL")

		if q.Valid || q.Error == "" {
			t.Errorf("Expected invalid quote with error, got %+v", q)
		}
	})

	t.Run("crypto prices keep six decimals", func(t *testing.T) {
		client := testutil.NewMockYahooClient().WithCloses("BTC-USD", "USD", 64000.1234567, 65000.1234567)
		q := newFetcher(client).FetchQuote(context.Background(), "btc")

		if q.Ticker != "BTC-USD" {
			t.Errorf("Expected normalized ticker, got %q", q.Ticker)
		}
		if q.Price != 65000.123457 {
			t.Errorf("Expected 65000.123457, got %v", q.Price)
		}
	})

	t.Run("profile failure keeps quote valid", func(t *testing.T) {
		client := testutil.NewMockYahooClient().WithCloses("MSFT", "USD", 400, 410)
		client.ProfileError = errors.New("unauthorized")
		q := newFetcher(client).FetchQuote(context.Background(), "MSFT")

		if !q.Valid || q.Sector != "—" {
			t.Errorf("Expected valid quote with placeholder sector, got %+v", q)
		}
	})

	t.Run("repeated lookups are served from cache", func(t *testing.T) {
		client := testutil.NewMockYahooClient().WithCloses("AAPL", "USD", 150, 165)
		f := newFetcher(client)

		f.FetchQuote(context.Background(), "AAPL")
		f.FetchQuote(context.Background(), "AAPL")

		if client.Calls("AAPL") != 1 {
			t.Errorf("Expected 1 upstream call, got %d", client.Calls("AAPL"))
		}
	})
}

func TestFetcher_ProfileIsCached(t *testing.T) {
	client := testutil.NewMockYahooClient().
		WithCloses("MSFT", "USD", 400, 410).
		WithProfile("MSFT", yahoo.Profile{Sector: "Technology"})
	c := cache.New(cache.NewMemoryStore(), map[string]time.Duration{cache.OpProfile: time.Hour})
	f := market.NewFetcher(client, c, 1, zerolog.Nop())

	for range 2 {
		if q := f.FetchQuote(context.Background(), "MSFT"); q.Sector != "Technology" {
			t.Errorf("Expected sector Technology, got %s", q.Sector)
		}
	}
	if n := client.Calls("MSFT"); n != 2 {
		t.Errorf("Expected 2 uncached chart queries, got %d", n)
	}
	if n := client.ProfileCalls("MSFT"); n != 1 {
		t.Errorf("Expected 1 profile lookup, got %d", n)
	}
}

func TestFetcher_FetchFxRate(t *testing.T) {
	t.Run("USDKRW from KRW=X", func(t *testing.T) {
		client := testutil.NewMockYahooClient().WithCloses("KRW=X", "KRW", 1340, 1352.456)
		rate := newFetcher(client).FetchFxRate(context.Background(), model.FxUSDKRW)

		if rate.Fallback {
			t.Fatal("Expected live rate")
		}
		if rate.Rate != 1352.46 {
			t.Errorf("Expected 1352.46, got %v", rate.Rate)
		}
	})

	t.Run("JPYKRW per 100 yen", func(t *testing.T) {
		client := testutil.NewMockYahooClient().
			WithCloses("KRW=X", "KRW", 1350).
			WithCloses("JPY=X", "JPY", 150)
		rate := newFetcher(client).FetchFxRate(context.Background(), model.FxJPYKRW)

		if rate.Rate != 900 {
			t.Errorf("Expected 900, got %v", rate.Rate)
		}
	})

	t.Run("falls back on failure", func(t *testing.T) {
		client := testutil.NewMockYahooClient().WithError("KRW=X", errors.New("timeout"))
		f := newFetcher(client)

		usd := f.FetchFxRate(context.Background(), model.FxUSDKRW)
		if !usd.Fallback || usd.Rate != 1350.0 {
			t.Errorf("Expected USD fallback 1350, got %+v", usd)
		}
		jpy := f.FetchFxRate(context.Background(), model.FxJPYKRW)
		if !jpy.Fallback || jpy.Rate != 900.0 {
			t.Errorf("Expected JPY fallback 900, got %+v", jpy)
		}
	})

	t.Run("fallback is not cached", func(t *testing.T) {
		client := testutil.NewMockYahooClient()
		f := newFetcher(client)

		f.FetchFxRate(context.Background(), model.FxUSDKRW)
		client.WithCloses("KRW=X", "KRW", 1400)
		rate := f.FetchFxRate(context.Background(), model.FxUSDKRW)

		if rate.Fallback || rate.Rate != 1400 {
			t.Errorf("Expected live rate after recovery, got %+v", rate)
		}
	})
}

func TestFetcher_FetchMarketIndices(t *testing.T) {
	client := testutil.NewMockYahooClient().
		WithCloses("^GSPC", "USD", 5000, 5050).
		WithError("^IXIC", errors.New("boom")).
		WithCloses("^KS11", "KRW", 2600, 2574)
	defs := []model.IndexDef{
		{Name: "S&P 500", Ticker: "^GSPC"},
		{Name: "NASDAQ", Ticker: "^IXIC"},
		{Name: "KOSPI", Ticker: "^KS11"},
	}

	got := newFetcher(client).FetchMarketIndices(context.Background(), defs)

	if len(got) != 2 {
		t.Fatalf("Expected failed index to be skipped, got %d items", len(got))
	}
	if got[0].Name != "S&P 500" || got[1].Name != "KOSPI" {
		t.Errorf("Expected input order preserved, got %s, %s", got[0].Name, got[1].Name)
	}
	if got[0].ChangePct != 1 {
		t.Errorf("Expected 1%% change, got %v", got[0].ChangePct)
	}
	if got[1].ChangePct != -1 {
		t.Errorf("Expected -1%% change, got %v", got[1].ChangePct)
	}
}

// TestFetcher_FetchMarketIndices_Outage checks that failed lookups are not cached.
//
// WHY: An outage that returned no levels must not keep the overview empty for
// the cache lifetime once Yahoo answers again, and indices that did load stay
// served from the cache.
func TestFetcher_FetchMarketIndices_Outage(t *testing.T) {
	outage := errors.New("connection refused")
	client := testutil.NewMockYahooClient().
		WithCloses("^GSPC", "USD", 5000, 5050).
		WithCloses("^KS11", "KRW", 2600, 2574).
		WithError("^GSPC", outage).
		WithError("^KS11", outage)
	defs := []model.IndexDef{
		{Name: "S&P 500", Ticker: "^GSPC"},
		{Name: "KOSPI", Ticker: "^KS11"},
	}
	f := newFetcher(client)

	if got := f.FetchMarketIndices(context.Background(), defs); len(got) != 0 {
		t.Fatalf("Expected no levels during the outage, got %d", len(got))
	}

	client.ClearError("^GSPC")
	got := f.FetchMarketIndices(context.Background(), defs)
	if len(got) != 1 || got[0].Name != "S&P 500" {
		t.Fatalf("Expected S&P 500 after partial recovery, got %+v", got)
	}

	client.ClearError("^KS11")
	got = f.FetchMarketIndices(context.Background(), defs)
	if len(got) != 2 {
		t.Fatalf("Expected both levels after recovery, got %d", len(got))
	}
	if got[1].Name != "KOSPI" || got[1].Value != 2574 {
		t.Errorf("Expected KOSPI at 2574, got %+v", got[1])
	}
	if n := client.Calls("^GSPC"); n != 2 {
		t.Errorf("Expected the recovered S&P 500 level to be cached after 2 queries, got %d", n)
	}
}

func TestDefaultIndices(t *testing.T) {
	if len(market.DefaultIndices) != 23 {
		t.Errorf("Expected 23 default indices, got %d", len(market.DefaultIndices))
	}
}

func TestFetcher_MajorCoins(t *testing.T) {
	client := testutil.NewMockYahooClient().
		WithCloses("BTC-USD", "USD", 60000, 61000).
		WithCloses("DOGE-USD", "USD", 0.1, 0.11)

	got := newFetcher(client).MajorCoins(context.Background())

	if len(got) != 2 {
		t.Fatalf("Expected 2 valid coins, got %d", len(got))
	}
	if got[0].Ticker != "BTC-USD" || got[1].Ticker != "DOGE-USD" {
		t.Errorf("Unexpected order: %s, %s", got[0].Ticker, got[1].Ticker)
	}
}

func TestFetcher_PriceHistory(t *testing.T) {
	closes := make([]float64, 25)
	for i := range closes {
		closes[i] = float64(i + 1)
	}
	client := testutil.NewMockYahooClient().WithCloses("AAPL", "USD", closes...)
	f := newFetcher(client)

	h, err := f.PriceHistory(context.Background(), "AAPL", "1mo")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(h.Points) != 25 {
		t.Fatalf("Expected 25 points, got %d", len(h.Points))
	}
	if h.Points[18].MA20 != 0 {
		t.Errorf("Expected no MA20 before 20 points, got %v", h.Points[18].MA20)
	}
	// mean of 1..20
	if h.Points[19].MA20 != 10.5 {
		t.Errorf("Expected MA20 10.5, got %v", h.Points[19].MA20)
	}
	// mean of 6..25
	if h.Points[24].MA20 != 15.5 {
		t.Errorf("Expected MA20 15.5, got %v", h.Points[24].MA20)
	}
	if h.Points[24].MA60 != 0 {
		t.Errorf("Expected no MA60, got %v", h.Points[24].MA60)
	}

	t.Run("rejects unknown period", func(t *testing.T) {
		_, err := f.PriceHistory(context.Background(), "AAPL", "10y")
		if !errors.Is(err, apperrors.ErrInvalidPeriod) {
			t.Errorf("Expected ErrInvalidPeriod, got %v", err)
		}
	})

	t.Run("upstream failure is data unavailable", func(t *testing.T) {
		_, err := f.PriceHistory(context.Background(), "MISSING", "1y")
		if !errors.Is(err, apperrors.ErrDataUnavailable) {
			t.Errorf("Expected ErrDataUnavailable, got %v", err)
		}
	})
}
