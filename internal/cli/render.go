package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/charmbracelet/glamour"

	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/model"
	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/report"
	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/repository"
)

// printMarkdown renders md for the terminal. Plain output is used when
// rendering fails or raw is set.
func printMarkdown(w io.Writer, md string, raw bool) {
	if !raw {
		r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(110))
		if err == nil {
			if out, err := r.Render(md); err == nil {
				fmt.Fprint(w, out)
				return
			}
		}
	}
	fmt.Fprintln(w, md)
}

// native formats an amount in its quote currency.
func native(v float64, currency string) string {
	c := money.GetCurrency(currency)
	if c == nil {
		return fmt.Sprintf("%.2f %s", v, currency)
	}
	return money.NewFromFloat(v, currency).Display()
}

func cell(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), "|", "\\|")
}

// DashboardMarkdown renders the summary metrics, holdings table and allocation.
func DashboardMarkdown(d model.Dashboard) string {
	var b strings.Builder
	s := d.Summary

	b.WriteString("# Portfolio\n\n")
	if len(d.Rows) == 0 {
		b.WriteString("No holdings registered. Add one with `dashboard add-holding`.\n")
		return b.String()
	}

	fmt.Fprintf(&b, "| Total value | Cost | Profit/loss | Return | Mean daily change |\n")
	fmt.Fprintf(&b, "|---|---|---|---|---|\n")
	fmt.Fprintf(&b, "| %s | %s | %s | %+.2f%% | %+.2f%% |\n\n",
		report.FormatKRW(s.TotalValue), report.FormatKRW(s.TotalCost),
		report.FormatKRW(s.TotalProfitLoss), s.TotalProfitLossPct, s.MeanChangePct)

	b.WriteString("## Holdings\n\n")
	b.WriteString("| Ticker | Name | Class | Qty | Price | Value | Value (KRW) | P/L % | Day % |\n")
	b.WriteString("|---|---|---|---:|---:|---:|---:|---:|---:|\n")
	for _, r := range d.Rows {
		fmt.Fprintf(&b, "| %s | %s | %s | %g | %s | %s | %s | %+.2f | %+.2f |\n",
			cell(r.Ticker), cell(r.Name), r.AssetClass, r.Quantity,
			native(r.Price, r.Currency), native(r.Value, r.Currency),
			report.FormatKRW(r.ValueKRW), r.ProfitLossPct, r.ChangePct)
	}

	if len(s.Allocation) > 0 {
		b.WriteString("\n## Allocation\n\n")
		for _, a := range s.Allocation {
			fmt.Fprintf(&b, "- %s: %.1f%% (%s)\n", a.AssetClass, a.WeightPct, report.FormatKRW(a.ValueKRW))
		}
	}

	b.WriteString("\n")
	fmt.Fprintf(&b, "USD/KRW %.2f%s, JPY/KRW %.2f per 100%s\n",
		d.USDKRW.Rate, fallbackMark(d.USDKRW), d.JPYKRW.Rate, fallbackMark(d.JPYKRW))
	return b.String()
}

func fallbackMark(r model.FxRate) string {
	if r.Fallback {
		return " (fallback)"
	}
	return ""
}

// HoldingsMarkdown lists stored holdings with their record ids.
func HoldingsMarkdown(hs []model.Holding) string {
	if len(hs) == 0 {
		return "No holdings registered.\n"
	}
	var b strings.Builder
	b.WriteString("| Id | Ticker | Name | Class | Qty | Avg cost | Note |\n")
	b.WriteString("|---|---|---|---|---:|---:|---|\n")
	for _, h := range hs {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %g | %.2f | %s |\n",
			h.RecordID, cell(h.Ticker), cell(h.DisplayName), h.AssetClass, h.Quantity, h.AverageCost, cell(h.Note))
	}
	return b.String()
}

// MarketMarkdown renders index levels, major coins and exchange rates.
func MarketMarkdown(indices []model.IndexSnapshot, coins []model.QuoteSnapshot, usd, jpy model.FxRate) string {
	var b strings.Builder
	b.WriteString("# Market\n\n")

	if len(indices) == 0 {
		b.WriteString("Index data is unavailable.\n")
	} else {
		b.WriteString("| Index | Level | Change |\n|---|---:|---:|\n")
		for _, ix := range indices {
			fmt.Fprintf(&b, "| %s | %.2f | %+.2f%% |\n", ix.Name, ix.Value, ix.ChangePct)
		}
	}

	if len(coins) > 0 {
		b.WriteString("\n## Crypto\n\n| Coin | Price | Change |\n|---|---:|---:|\n")
		for _, q := range coins {
			fmt.Fprintf(&b, "| %s | %s | %+.2f%% |\n", q.Ticker, native(q.Price, q.Currency), q.ChangePct)
		}
	}

	fmt.Fprintf(&b, "\nUSD/KRW %.2f%s, JPY/KRW %.2f per 100%s\n",
		usd.Rate, fallbackMark(usd), jpy.Rate, fallbackMark(jpy))
	return b.String()
}

// NewsMarkdown renders headlines as a link list.
func NewsMarkdown(title string, items []model.NewsItem) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title)
	if len(items) == 0 {
		b.WriteString("No headlines found.\n")
		return b.String()
	}
	for _, it := range items {
		fmt.Fprintf(&b, "- [%s](%s)", it.Title, it.Link)
		if it.Source != "" {
			fmt.Fprintf(&b, " _%s_", it.Source)
		}
		if it.Published != "" {
			fmt.Fprintf(&b, " %s", it.Published)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// ScrapsMarkdown renders saved scraps, newest first as given.
func ScrapsMarkdown(scraps []model.ScrapRecord) string {
	if len(scraps) == 0 {
		return "No scraps saved.\n"
	}
	var b strings.Builder
	for _, s := range scraps {
		title := s.Title
		if s.Link != "" {
			title = fmt.Sprintf("[%s](%s)", s.Title, s.Link)
		}
		fmt.Fprintf(&b, "### %s\n\n", title)
		fmt.Fprintf(&b, "`%s` · %s", s.Category, s.ScrapedAt.Format("2006-01-02 15:04"))
		if s.Ticker != "" {
			fmt.Fprintf(&b, " · %s", s.Ticker)
		}
		fmt.Fprintf(&b, " · id %s\n\n", s.RecordID)
		if s.Summary != "" {
			fmt.Fprintf(&b, "%s\n\n", s.Summary)
		}
	}
	return b.String()
}

// StatusMarkdown renders which integrations are configured.
func StatusMarkdown(st model.SystemStatus) string {
	check := func(ok bool) string {
		if ok {
			return "yes"
		}
		return "no"
	}
	var b strings.Builder
	b.WriteString("| Component | Ready |\n|---|---|\n")
	fmt.Fprintf(&b, "| Notion API key | %s |\n", check(st.Notion.APIKey))
	fmt.Fprintf(&b, "| Notion portfolio database | %s |\n", check(st.Notion.PortfolioDB))
	fmt.Fprintf(&b, "| Notion scrap database | %s |\n", check(st.Notion.ScrapDB))
	fmt.Fprintf(&b, "| Gemini | %s |\n", check(st.ReportReady))
	fmt.Fprintf(&b, "| Change events | %s |\n", check(st.Events))
	fmt.Fprintf(&b, "| Cache | %s |\n", st.CacheBackend)
	fmt.Fprintf(&b, "| Snapshot database | %s |\n", st.Database)
	if len(st.ReportModels) > 0 {
		fmt.Fprintf(&b, "\nModels tried in order: %s\n", strings.Join(st.ReportModels, ", "))
	}
	return b.String()
}

// AttemptsMarkdown renders logged report attempts.
func AttemptsMarkdown(entries []repository.ReportLogEntry) string {
	if len(entries) == 0 {
		return "No report attempts logged.\n"
	}
	var b strings.Builder
	b.WriteString("| When | Model | Outcome |\n|---|---|---|\n")
	for _, e := range entries {
		m := e.Model
		if m == "" {
			m = "-"
		}
		fmt.Fprintf(&b, "| %s | %s | %s |\n", e.GeneratedAt.Local().Format("2006-01-02 15:04"), m, e.Outcome)
	}
	return b.String()
}
