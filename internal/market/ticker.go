package market

import (
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/model"
)

var (
	cryptoSuffixes = []string{"-USD", "-KRW", "-USDT", "-BTC"}
	marketSuffixes = []string{".KS", ".KQ"}
	cryptoSymbols  = []string{
		"BTC", "ETH", "XRP", "SOL", "ADA", "DOGE", "DOT",
		"MATIC", "AVAX", "LINK", "BNB", "TRX", "SUI",
	}
)

// NormalizeTicker upper-cases and trims a ticker and appends "-USD" to bare
// crypto symbols. Tickers that already carry a market or crypto suffix are
// returned unchanged, so the function is idempotent.
func NormalizeTicker(t string) string {
	t = strings.ToUpper(strings.TrimSpace(t))
	if t == "" || hasSuffix(t, marketSuffixes) || hasSuffix(t, cryptoSuffixes) {
		return t
	}
	if slices.Contains(cryptoSymbols, t) {
		return t + "-USD"
	}
	return t
}

// DetectAssetType guesses the asset class from the ticker shape.
func DetectAssetType(t string) model.AssetClass {
	t = strings.ToUpper(strings.TrimSpace(t))
	switch {
	case hasSuffix(t, marketSuffixes):
		return model.AssetDomesticEquity
	case hasSuffix(t, cryptoSuffixes), slices.Contains(cryptoSymbols, t):
		return model.AssetCrypto
	default:
		return model.AssetForeignEquity
	}
}

func hasSuffix(t string, suffixes []string) bool {
	for _, s := range suffixes {
		if strings.HasSuffix(t, s) {
			return true
		}
	}
	return false
}

// PricePrecision is 6 decimals for BTC and ETH pairs and 2 otherwise.
func PricePrecision(ticker string) int32 {
	if strings.Contains(ticker, "BTC") || strings.Contains(ticker, "ETH") {
		return 6
	}
	return 2
}

// Round rounds half away from zero to the given number of decimals.
func Round(v float64, places int32) float64 {
	f, _ := decimal.NewFromFloat(v).Round(places).Float64()
	return f
}
