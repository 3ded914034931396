package model

import "time"

// QuoteSnapshot is the latest market data for one ticker.
// When Valid is false only Ticker and Error are meaningful.
type QuoteSnapshot struct {
	Ticker           string     `json:"ticker"`
	Name             string     `json:"name"`
	Price            float64    `json:"price"`
	PreviousClose    float64    `json:"previousClose"`
	ChangePct        float64    `json:"changePct"`
	Currency         string     `json:"currency"`
	Sector           string     `json:"sector"`
	AssetClass       AssetClass `json:"assetClass"`
	FiftyTwoWeekHigh float64    `json:"fiftyTwoWeekHigh,omitempty"`
	FiftyTwoWeekLow  float64    `json:"fiftyTwoWeekLow,omitempty"`
	Volume           int64      `json:"volume,omitempty"`
	Valid            bool       `json:"valid"`
	Error            string     `json:"error,omitempty"`
}

// FxPair identifies a supported exchange rate.
type FxPair string

const (
	// FxUSDKRW is Korean won per 1 US dollar.
	FxUSDKRW FxPair = "USDKRW"
	// FxJPYKRW is Korean won per 100 Japanese yen.
	FxJPYKRW FxPair = "JPYKRW"
)

// Fallback rates used when the live rate cannot be fetched.
const (
	FallbackUSDKRW = 1350.0
	FallbackJPYKRW = 900.0
)

// FxRate is a conversion rate. Fallback is set when the constant was used
// instead of a live quote.
type FxRate struct {
	Pair      FxPair    `json:"pair"`
	Rate      float64   `json:"rate"`
	Fallback  bool      `json:"fallback"`
	FetchedAt time.Time `json:"fetchedAt"`
}

// IndexDef names a market instrument shown on the dashboard.
type IndexDef struct {
	Name   string `json:"name"`
	Ticker string `json:"ticker"`
}

// IndexSnapshot is the latest level of a market index.
type IndexSnapshot struct {
	Name      string  `json:"name"`
	Ticker    string  `json:"ticker"`
	Value     float64 `json:"value"`
	ChangePct float64 `json:"changePct"`
}

// PricePoint is one daily OHLCV bar. Moving averages are zero until enough
// prior points exist.
type PricePoint struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
	MA20   float64   `json:"ma20,omitempty"`
	MA60   float64   `json:"ma60,omitempty"`
}

// PriceHistory is a daily series for one ticker.
type PriceHistory struct {
	Ticker   string       `json:"ticker"`
	Period   string       `json:"period"`
	Currency string       `json:"currency"`
	Points   []PricePoint `json:"points"`
}
