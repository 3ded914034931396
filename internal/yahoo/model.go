package yahoo

import "time"

// Response represents the raw JSON response structure from the Yahoo Finance chart API.
// Price arrays hold pointers because Yahoo returns null for bars that have not closed
// or were not traded.
type Response struct {
	Chart Chart `json:"chart"`
}

// Chart wraps the result list and an optional API error.
type Chart struct {
	Result []Result    `json:"result"`
	Error  *ChartError `json:"error"`
}

// ChartError is Yahoo's error object, e.g. for an unknown symbol.
type ChartError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// Result holds one symbol's series.
type Result struct {
	Meta       Meta                `json:"meta"`
	Timestamp  []int64             `json:"timestamp"`
	Indicators IndicatorsContainer `json:"indicators"`
}

// Meta is the symbol metadata returned alongside the series.
type Meta struct {
	Currency            string  `json:"currency"`
	Symbol              string  `json:"symbol"`
	ExchangeName        string  `json:"exchangeName"`
	FullExchangeName    string  `json:"fullExchangeName"`
	InstrumentType      string  `json:"instrumentType"`
	LongName            string  `json:"longName"`
	Shortname           string  `json:"shortName"`
	RegularMarketPrice  float64 `json:"regularMarketPrice"`
	ChartPreviousClose  float64 `json:"chartPreviousClose"`
	FiftyTwoWeekHigh    float64 `json:"fiftyTwoWeekHigh"`
	FiftyTwoWeekLow     float64 `json:"fiftyTwoWeekLow"`
	RegularMarketVolume int64   `json:"regularMarketVolume"`
}

// IndicatorsContainer holds the OHLCV arrays.
type IndicatorsContainer struct {
	Quote []Quote `json:"quote"`
}

// Quote holds parallel OHLCV arrays aligned with Result.Timestamp.
type Quote struct {
	Open   []*float64 `json:"open"`
	Close  []*float64 `json:"close"`
	Volume []*int64   `json:"volume"`
	High   []*float64 `json:"high"`
	Low    []*float64 `json:"low"`
}

// PriceChart represents a parsed price chart. Bars without a close price are dropped.
type PriceChart struct {
	Currency         string       `json:"currency"`
	Symbol           string       `json:"symbol"`
	ExchangeName     string       `json:"exchangeName"`
	FullExchangeName string       `json:"fullExchangeName"`
	InstrumentType   string       `json:"instrumentType"`
	LongName         string       `json:"longName"`
	Shortname        string       `json:"shortName"`
	FiftyTwoWeekHigh float64      `json:"fiftyTwoWeekHigh"`
	FiftyTwoWeekLow  float64      `json:"fiftyTwoWeekLow"`
	Indicators       []Indicators `json:"indicators"`
}

// Name returns the long name when present, otherwise the short name.
func (c PriceChart) Name() string {
	if c.LongName != "" {
		return c.LongName
	}
	return c.Shortname
}

// Indicators represents a single day's price data for a financial instrument.
// Missing open/high/low/volume values are zero.
type Indicators struct {
	Date       time.Time
	PriceOpen  float64
	PriceClose float64
	Volume     int64
	PriceHigh  float64
	PriceLow   float64
}

// Profile is the descriptive data used to label a holding.
type Profile struct {
	Sector   string `json:"sector"`
	Category string `json:"category"`
}
