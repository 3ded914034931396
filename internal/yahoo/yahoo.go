package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/PaesslerAG/jsonpath"
)

// DefaultBaseURL is the public Yahoo Finance query host.
const DefaultBaseURL = "https://query1.finance.yahoo.com"

// Client is the subset of Yahoo Finance used by the market package.
type Client interface {
	QueryChart(ctx context.Context, symbol, rng string) (Response, error)
	QueryProfile(ctx context.Context, symbol string) (Profile, error)
}

// Compile-time check to ensure FinanceClient implements Client
var _ Client = (*FinanceClient)(nil)

// FinanceClient provides methods for fetching financial data from Yahoo Finance API.
type FinanceClient struct {
	httpClient *http.Client
	baseURL    string
}

// Option configures a FinanceClient.
type Option func(*FinanceClient)

// WithBaseURL points the client at another host, such as a test server.
func WithBaseURL(u string) Option {
	return func(c *FinanceClient) { c.baseURL = u }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *FinanceClient) { c.httpClient.Timeout = d }
}

// NewFinanceClient creates a new Yahoo Finance client with a 12 second request timeout.
//
// Returns:
//   - *FinanceClient: A new client instance ready for use
func NewFinanceClient(opts ...Option) *FinanceClient {
	c := &FinanceClient{
		httpClient: &http.Client{Timeout: 12 * time.Second},
		baseURL:    DefaultBaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ParseChart converts a raw Yahoo Finance API response into a structured price chart.
// This method extracts price data (open, close, high, low, volume) and metadata
// (symbol, currency, exchange) from the Yahoo response format.
//
// The method performs validation to ensure:
//   - A result is present
//   - Timestamp data is present
//   - Close price data is present and aligned with the timestamps
//
// Bars whose close is null are skipped.
//
// Parameters:
//   - yahooResult: Raw response from Yahoo Finance API
//
// Returns:
//   - PriceChart: Structured chart with indicators and metadata
//   - error: If data is missing, malformed, or arrays have mismatched lengths
func ParseChart(yahooResult Response) (PriceChart, error) {
	if len(yahooResult.Chart.Result) == 0 {
		return PriceChart{}, fmt.Errorf("no results returned")
	}
	result := yahooResult.Chart.Result[0]

	if len(result.Timestamp) == 0 {
		return PriceChart{}, fmt.Errorf("no price data returned")
	}
	if len(result.Indicators.Quote) == 0 || len(result.Indicators.Quote[0].Close) == 0 {
		return PriceChart{}, fmt.Errorf("no close prices returned")
	}

	q := result.Indicators.Quote[0]
	if len(q.Close) != len(result.Timestamp) {
		return PriceChart{}, fmt.Errorf("mismatched data lengths")
	}

	indicators := make([]Indicators, 0, len(result.Timestamp))
	for i, v := range result.Timestamp {
		if q.Close[i] == nil {
			continue
		}
		indicators = append(indicators, Indicators{
			Date:       time.Unix(v, 0).UTC(),
			PriceOpen:  floatAt(q.Open, i),
			PriceClose: *q.Close[i],
			Volume:     intAt(q.Volume, i),
			PriceHigh:  floatAt(q.High, i),
			PriceLow:   floatAt(q.Low, i),
		})
	}
	if len(indicators) == 0 {
		return PriceChart{}, fmt.Errorf("no close prices returned")
	}

	return PriceChart{
		Symbol:           result.Meta.Symbol,
		Currency:         result.Meta.Currency,
		ExchangeName:     result.Meta.ExchangeName,
		FullExchangeName: result.Meta.FullExchangeName,
		InstrumentType:   result.Meta.InstrumentType,
		LongName:         result.Meta.LongName,
		Shortname:        result.Meta.Shortname,
		FiftyTwoWeekHigh: result.Meta.FiftyTwoWeekHigh,
		FiftyTwoWeekLow:  result.Meta.FiftyTwoWeekLow,
		Indicators:       indicators,
	}, nil
}

func floatAt(s []*float64, i int) float64 {
	if i < len(s) && s[i] != nil {
		return *s[i]
	}
	return 0
}

func intAt(s []*int64, i int) int64 {
	if i < len(s) && s[i] != nil {
		return *s[i]
	}
	return 0
}

// QueryChart fetches daily bars for a symbol over a Yahoo range such as "5d" or "1y".
//
// Parameters:
//   - ctx: Cancels the request
//   - symbol: Ticker symbol (e.g., "AAPL", "005930.KS", "BTC-USD")
//   - rng: Yahoo range string
//
// Returns:
//   - Response: Raw API response containing price data
//   - error: If the HTTP request fails, API returns an error, or no results found
func (c *FinanceClient) QueryChart(ctx context.Context, symbol, rng string) (Response, error) {
	u := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&range=%s", c.baseURL, url.PathEscape(symbol), url.QueryEscape(rng))

	var result Response
	if err := c.queryYahoo(ctx, u, &result); err != nil {
		return Response{}, err
	}
	if result.Chart.Error != nil {
		return Response{}, fmt.Errorf("yahoo error: %s", result.Chart.Error.Description)
	}
	if len(result.Chart.Result) == 0 {
		return Response{}, fmt.Errorf("no results returned for symbol %s", symbol)
	}
	return result, nil
}

// QueryProfile fetches the sector (equities) or category (funds) of a symbol
// from the quoteSummary endpoint.
func (c *FinanceClient) QueryProfile(ctx context.Context, symbol string) (Profile, error) {
	u := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?modules=assetProfile,fundProfile", c.baseURL, url.PathEscape(symbol))

	var doc any
	if err := c.queryYahoo(ctx, u, &doc); err != nil {
		return Profile{}, err
	}
	return ExtractProfile(doc), nil
}

// ExtractProfile pulls sector and category out of a decoded quoteSummary document.
// Missing paths leave the field empty.
func ExtractProfile(doc any) Profile {
	return Profile{
		Sector:   stringAt(doc, "$.quoteSummary.result[0].assetProfile.sector"),
		Category: stringAt(doc, "$.quoteSummary.result[0].fundProfile.categoryName"),
	}
}

func stringAt(doc any, path string) string {
	v, err := jsonpath.Get(path, doc)
	if err != nil {
		return ""
	}
	// jsonpath may wrap a single match in a list
	if list, ok := v.([]any); ok {
		if len(list) == 0 {
			return ""
		}
		v = list[0]
	}
	s, _ := v.(string)
	return s
}

// queryYahoo is an internal helper that executes HTTP requests to Yahoo Finance API.
//
// The method sets required headers:
//   - User-Agent: Mimics a browser to avoid API blocking
//   - Accept: Requests JSON response format
func (c *FinanceClient) queryYahoo(ctx context.Context, u string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}

	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(data, out); err != nil {
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("yahoo returned status %d", resp.StatusCode)
		}
		return err
	}
	return nil
}
