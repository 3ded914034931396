// Package valuation joins holdings with quotes and reduces the result to
// portfolio totals expressed in the reporting currency.
package valuation

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/market"
	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/model"
)

// Quoter is the market data needed to value holdings.
type Quoter interface {
	FetchQuote(ctx context.Context, ticker string) model.QuoteSnapshot
	FetchFxRate(ctx context.Context, pair model.FxPair) model.FxRate
}

// Valuer values holdings against live quotes.
type Valuer struct {
	quotes      Quoter
	concurrency int
	log         zerolog.Logger
}

// NewValuer creates a Valuer that runs at most concurrency quote lookups at once.
func NewValuer(quotes Quoter, concurrency int, log zerolog.Logger) *Valuer {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Valuer{quotes: quotes, concurrency: concurrency, log: log}
}

// Summarize returns one row per holding whose quote is valid, in input order.
// Holdings with invalid quotes are left out. It never fails.
//
// Parameters:
//   - ctx: Bounds the quote lookups
//   - holdings: Positions to value; an empty slice yields an empty result
//
// Returns:
//   - []model.ValuationRow: Native amounts rounded to 2 decimals, KRW amounts to whole won
func (v *Valuer) Summarize(ctx context.Context, holdings []model.Holding) []model.ValuationRow {
	if len(holdings) == 0 {
		return []model.ValuationRow{}
	}

	quotes := make([]model.QuoteSnapshot, len(holdings))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(v.concurrency)
	for i, h := range holdings {
		g.Go(func() error {
			quotes[i] = v.quotes.FetchQuote(gctx, market.NormalizeTicker(h.Ticker))
			return nil
		})
	}
	_ = g.Wait()

	rates := newRateTable(v.quotes)
	rows := make([]model.ValuationRow, 0, len(holdings))
	for i, h := range holdings {
		q := quotes[i]
		if !q.Valid {
			v.log.Info().Str("ticker", q.Ticker).Str("reason", q.Error).Msg("holding skipped, no valid quote")
			continue
		}
		rate, converted := rates.lookup(ctx, q.Currency)
		if !converted {
			v.log.Warn().Str("ticker", q.Ticker).Str("currency", q.Currency).Msg("no KRW conversion for currency, valued at 1.0")
		}
		rows = append(rows, valueRow(h, q, rate, converted))
	}
	return rows
}

// valueRow computes one row. Percentages use the unrounded native amounts.
func valueRow(h model.Holding, q model.QuoteSnapshot, rate float64, converted bool) model.ValuationRow {
	price := decimal.NewFromFloat(q.Price)
	qty := decimal.NewFromFloat(h.Quantity)
	avg := decimal.NewFromFloat(h.AverageCost)
	fx := decimal.NewFromFloat(rate)

	value := price.Mul(qty)
	cost := avg.Mul(qty)
	pl := value.Sub(cost)

	plPct := decimal.Zero
	if !cost.IsZero() {
		plPct = pl.Div(cost).Mul(decimal.NewFromInt(100))
	}

	name := h.DisplayName
	if name == "" {
		name = q.Name
	}
	class := h.AssetClass
	if class == "" {
		class = q.AssetClass
	}

	return model.ValuationRow{
		RecordID:      h.RecordID,
		Ticker:        q.Ticker,
		Name:          name,
		AssetClass:    class,
		Price:         q.Price,
		Currency:      q.Currency,
		Quantity:      h.Quantity,
		AverageCost:   h.AverageCost,
		Value:         toFloat(value.Round(2)),
		ValueKRW:      toFloat(value.Mul(fx).Round(0)),
		CostBasis:     toFloat(cost.Round(2)),
		CostBasisKRW:  toFloat(cost.Mul(fx).Round(0)),
		ProfitLoss:    toFloat(pl.Round(2)),
		ProfitLossKRW: toFloat(pl.Mul(fx).Round(0)),
		ProfitLossPct: toFloat(plPct.Round(2)),
		ChangePct:     q.ChangePct,
		Sector:        q.Sector,
		Note:          h.Note,
		FxRate:        rate,
		Converted:     converted,
	}
}

// Aggregate reduces rows to portfolio totals. Total cost is derived as
// value minus profit so that the three totals always reconcile.
func Aggregate(rows []model.ValuationRow) model.PortfolioSummary {
	summary := model.PortfolioSummary{
		Currency:   model.ReportingCurrency,
		Allocation: []model.AllocationSlice{},
	}
	if len(rows) == 0 {
		return summary
	}

	total := decimal.Zero
	pl := decimal.Zero
	change := decimal.Zero
	for _, r := range rows {
		total = total.Add(decimal.NewFromFloat(r.ValueKRW))
		pl = pl.Add(decimal.NewFromFloat(r.ProfitLossKRW))
		change = change.Add(decimal.NewFromFloat(r.ChangePct))
	}
	cost := total.Sub(pl)

	plPct := decimal.Zero
	if !cost.IsZero() {
		plPct = pl.Div(cost).Mul(decimal.NewFromInt(100))
	}

	summary.TotalValue = toFloat(total)
	summary.TotalProfitLoss = toFloat(pl)
	summary.TotalCost = toFloat(cost)
	summary.TotalProfitLossPct = toFloat(plPct.Round(2))
	summary.MeanChangePct = toFloat(change.Div(decimal.NewFromInt(int64(len(rows)))).Round(2))
	summary.HoldingCount = len(rows)
	summary.Allocation = AllocationByClass(rows)
	return summary
}

// AllocationByClass returns each present asset class's share of total KRW
// value, rounded to one decimal, in the canonical class order.
func AllocationByClass(rows []model.ValuationRow) []model.AllocationSlice {
	byClass := make(map[model.AssetClass]decimal.Decimal)
	total := decimal.Zero
	for _, r := range rows {
		v := decimal.NewFromFloat(r.ValueKRW)
		byClass[r.AssetClass] = byClass[r.AssetClass].Add(v)
		total = total.Add(v)
	}

	out := []model.AllocationSlice{}
	for _, class := range model.AssetClasses {
		v, ok := byClass[class]
		if !ok {
			continue
		}
		weight := decimal.Zero
		if !total.IsZero() {
			weight = v.Div(total).Mul(decimal.NewFromInt(100)).Round(1)
		}
		out = append(out, model.AllocationSlice{
			AssetClass: class,
			ValueKRW:   toFloat(v),
			WeightPct:  toFloat(weight),
		})
	}
	return out
}

func toFloat(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}
