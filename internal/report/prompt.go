package report

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/dustin/go-humanize"

	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/model"
)

// MaxScraps is how many of the most recent scraps go into the prompt.
const MaxScraps = 15

// SystemPrompt is the role and answer format given to the model.
func SystemPrompt(language string) string {
	return `You are a multi-asset portfolio manager with twenty years of experience.

Investment philosophy:
- Preserve capital first, pursue medium to long term alpha
- Optimise return per unit of volatility (Sharpe ratio)
- Use hedges actively: inverse ETFs, gold, bonds, dollar cash
- Diversify across sectors, countries and asset classes to limit correlation risk

Answer in markdown with these sections:
1. **Overall diagnosis**: strengths and weaknesses of the portfolio (3 lines)
2. **Market reading**: what the current indicators say (rates, dollar, VIX)
3. **Action plan**: concrete buy, sell or rebalance proposals naming instruments
4. **Hedging strategy**: hedges per risk type
5. **Roadmap**: short term (1 month) and medium term (3-6 months)
6. **Key risks**: the three things to watch

Write in ` + language + `, as a clear and specific briefing to a real investor.`
}

// BuildPrompt assembles the user message from portfolio, market and scrap data.
func BuildPrompt(in Input, now time.Time) string {
	var b strings.Builder

	writePortfolio(&b, in)
	b.WriteString("\n")
	writeIndices(&b, in.Indices)
	writeScraps(&b, in.Scraps)

	fmt.Fprintf(&b, "\nCurrent time: %s\n", now.Format("2006-01-02 15:04"))
	if extra := strings.TrimSpace(in.Extra); extra != "" {
		fmt.Fprintf(&b, "Additional request: %s\n", extra)
	}
	b.WriteString("\nCombine the data above into a portfolio management briefing.")
	return b.String()
}

func writePortfolio(b *strings.Builder, in Input) {
	if len(in.Rows) == 0 {
		b.WriteString("## Portfolio\n(no holdings registered)\n")
		return
	}

	s := in.Summary
	b.WriteString("## Current portfolio\n")
	fmt.Fprintf(b, "- Total value: %s\n", FormatKRW(s.TotalValue))
	fmt.Fprintf(b, "- Total profit/loss: %s (%+.1f%%)\n", signedKRW(s.TotalProfitLoss), s.TotalProfitLossPct)

	weights := make([]string, 0, len(s.Allocation))
	for _, a := range s.Allocation {
		weights = append(weights, fmt.Sprintf("%s: %.1f%%", a.AssetClass, a.WeightPct))
	}
	fmt.Fprintf(b, "- Asset class weights: %s\n\n", strings.Join(weights, ", "))

	b.WriteString("### Holdings\n")
	b.WriteString("| Ticker | Name | Class | Value (KRW) | P/L % | Sector | Change % |\n")
	b.WriteString("|---|---|---|---|---|---|---|\n")
	for _, r := range in.Rows {
		fmt.Fprintf(b, "| %s | %s | %s | %s | %+.2f | %s | %+.2f |\n",
			r.Ticker, r.Name, r.AssetClass, FormatKRW(r.ValueKRW), r.ProfitLossPct, r.Sector, r.ChangePct)
	}
}

func writeIndices(b *strings.Builder, indices []model.IndexSnapshot) {
	if len(indices) == 0 {
		return
	}
	b.WriteString("## Market indicators\n")
	for _, ix := range indices {
		fmt.Fprintf(b, "- %s: %s (%+.2f%%)\n", ix.Name, groupThousands(ix.Value), ix.ChangePct)
	}
	b.WriteString("\n")
}

func writeScraps(b *strings.Builder, scraps []model.ScrapRecord) {
	recent := RecentScraps(scraps, MaxScraps)
	if len(recent) == 0 {
		b.WriteString("## Scraps\n(none)\n")
		return
	}
	b.WriteString("## Recent scraps\n")
	for _, s := range recent {
		fmt.Fprintf(b, "[%s][%s] %s (%s)\n", s.Ticker, s.Category, s.Title, s.ScrapedAt.Format("2006-01-02"))
	}
}

// RecentScraps returns up to n scraps, newest first. The input is not modified.
func RecentScraps(scraps []model.ScrapRecord, n int) []model.ScrapRecord {
	sorted := append([]model.ScrapRecord(nil), scraps...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ScrapedAt.After(sorted[j].ScrapedAt)
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// FormatKRW renders whole won, e.g. ₩2,227,500.
func FormatKRW(v float64) string {
	return money.New(int64(math.Round(v)), money.KRW).Display()
}

func signedKRW(v float64) string {
	if v > 0 {
		return "+" + FormatKRW(v)
	}
	return FormatKRW(v)
}

// groupThousands renders an index level with grouped thousands and two decimals.
func groupThousands(v float64) string {
	return humanize.FormatFloat("#,###.##", v)
}
