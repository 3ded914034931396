package valuation

import (
	"context"
	"strings"

	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/model"
)

// rateTable resolves KRW conversion rates on first use so that a portfolio
// without foreign holdings never fetches a rate.
type rateTable struct {
	quotes Quoter
	rates  map[string]float64
}

func newRateTable(quotes Quoter) *rateTable {
	return &rateTable{quotes: quotes, rates: map[string]float64{"KRW": 1}}
}

// lookup returns the multiplier from one unit of currency to KRW. The second
// result is false when the currency has no known conversion; the multiplier
// is then 1.
func (t *rateTable) lookup(ctx context.Context, currency string) (float64, bool) {
	currency = strings.ToUpper(currency)
	if r, ok := t.rates[currency]; ok {
		return r, true
	}
	switch currency {
	case "USD":
		t.rates[currency] = t.quotes.FetchFxRate(ctx, model.FxUSDKRW).Rate
	case "JPY":
		// quoted per 100 yen
		t.rates[currency] = t.quotes.FetchFxRate(ctx, model.FxJPYKRW).Rate / 100
	default:
		return 1, false
	}
	return t.rates[currency], true
}
