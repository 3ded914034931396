package cli

import (
	"context"
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/google/subcommands"

	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/api/request"
	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/model"
	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/report"
	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/validation"
)

type summaryCmd struct {
	env *Env
}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "show the valued portfolio with totals and allocation" }
func (*summaryCmd) Usage() string {
	return `dashboard summary

  Values every holding at the latest quote and converts it to KRW.
`
}

func (*summaryCmd) SetFlags(*flag.FlagSet) {}

func (c *summaryCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	a, err := c.env.App(ctx)
	if err != nil {
		return c.env.fail(err)
	}
	d, err := a.Portfolio.GetDashboard(ctx)
	if err != nil {
		return c.env.fail(err)
	}
	c.env.print(DashboardMarkdown(d))
	return subcommands.ExitSuccess
}

type holdingsCmd struct {
	env *Env
}

func (*holdingsCmd) Name() string     { return "holdings" }
func (*holdingsCmd) Synopsis() string { return "list stored holdings with their ids" }
func (*holdingsCmd) Usage() string {
	return `dashboard holdings

  Lists the holdings as stored, without fetching quotes.
`
}

func (*holdingsCmd) SetFlags(*flag.FlagSet) {}

func (c *holdingsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	a, err := c.env.App(ctx)
	if err != nil {
		return c.env.fail(err)
	}
	hs, err := a.Portfolio.GetHoldings(ctx)
	if err != nil {
		return c.env.fail(err)
	}
	c.env.print(HoldingsMarkdown(hs))
	return subcommands.ExitSuccess
}

type addHoldingCmd struct {
	env *Env
	req request.CreateHoldingRequest
}

func (*addHoldingCmd) Name() string     { return "add-holding" }
func (*addHoldingCmd) Synopsis() string { return "add a holding" }
func (*addHoldingCmd) Usage() string {
	return `dashboard add-holding -t <ticker> -q <quantity> -c <average cost> [-class <class>] [-name <name>] [-note <note>]

  Adds a holding. Short crypto symbols like BTC become BTC-USD and the asset
  class is guessed from the ticker when not given.
`
}

func (c *addHoldingCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.req.Ticker, "t", "", "ticker, e.g. AAPL, 005930.KS or BTC")
	f.Float64Var(&c.req.Quantity, "q", 0, "quantity held")
	f.Float64Var(&c.req.AverageCost, "c", 0, "average cost in the quote currency")
	f.StringVar(&c.req.AssetClass, "class", "", "asset class: "+classList())
	f.StringVar(&c.req.DisplayName, "name", "", "display name")
	f.StringVar(&c.req.Note, "note", "", "free-form note")
}

func (c *addHoldingCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	if err := validation.ValidateCreateHolding(c.req); err != nil {
		return c.env.fail(err)
	}
	a, err := c.env.App(ctx)
	if err != nil {
		return c.env.fail(err)
	}
	created, err := a.Portfolio.AddHolding(ctx, model.Holding{
		Ticker:      c.req.Ticker,
		DisplayName: strings.TrimSpace(c.req.DisplayName),
		Quantity:    c.req.Quantity,
		AverageCost: c.req.AverageCost,
		AssetClass:  model.AssetClass(c.req.AssetClass),
		Note:        strings.TrimSpace(c.req.Note),
	})
	if err != nil {
		return c.env.fail(err)
	}
	fmt.Fprintf(c.env.out(), "Added %s (%s) as %s\n", created.Ticker, created.AssetClass, created.RecordID)
	return subcommands.ExitSuccess
}

func classList() string {
	names := make([]string, len(model.AssetClasses))
	for i, c := range model.AssetClasses {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}

type updateHoldingCmd struct {
	env      *Env
	id       string
	quantity float64
	cost     float64
}

func (*updateHoldingCmd) Name() string     { return "update-holding" }
func (*updateHoldingCmd) Synopsis() string { return "overwrite quantity and average cost of a holding" }
func (*updateHoldingCmd) Usage() string {
	return `dashboard update-holding -id <id> -q <quantity> -c <average cost>
`
}

func (c *updateHoldingCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.id, "id", "", "holding id, see 'dashboard holdings'")
	f.Float64Var(&c.quantity, "q", -1, "new quantity")
	f.Float64Var(&c.cost, "c", -1, "new average cost")
}

func (c *updateHoldingCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	if err := validation.ValidateUUID(c.id); err != nil {
		return usage(c.env, f, err.Error())
	}
	if err := validation.ValidateUpdateHolding(request.UpdateHoldingRequest{Quantity: &c.quantity, AverageCost: &c.cost}); err != nil {
		return c.env.fail(err)
	}
	a, err := c.env.App(ctx)
	if err != nil {
		return c.env.fail(err)
	}
	if err := a.Portfolio.UpdateHolding(ctx, c.id, c.quantity, c.cost); err != nil {
		return c.env.fail(err)
	}
	fmt.Fprintf(c.env.out(), "Updated %s\n", c.id)
	return subcommands.ExitSuccess
}

type removeHoldingCmd struct {
	env *Env
	id  string
}

func (*removeHoldingCmd) Name() string     { return "remove-holding" }
func (*removeHoldingCmd) Synopsis() string { return "archive a holding" }
func (*removeHoldingCmd) Usage() string {
	return `dashboard remove-holding -id <id>
`
}

func (c *removeHoldingCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.id, "id", "", "holding id, see 'dashboard holdings'")
}

func (c *removeHoldingCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	if err := validation.ValidateUUID(c.id); err != nil {
		return usage(c.env, f, err.Error())
	}
	a, err := c.env.App(ctx)
	if err != nil {
		return c.env.fail(err)
	}
	if err := a.Portfolio.RemoveHolding(ctx, c.id); err != nil {
		return c.env.fail(err)
	}
	fmt.Fprintf(c.env.out(), "Removed %s\n", c.id)
	return subcommands.ExitSuccess
}

type snapshotCmd struct {
	env *Env
}

func (*snapshotCmd) Name() string     { return "snapshot" }
func (*snapshotCmd) Synopsis() string { return "record today's portfolio totals" }
func (*snapshotCmd) Usage() string {
	return `dashboard snapshot

  Values the portfolio and stores today's totals. Running it again the same
  day replaces the earlier snapshot.
`
}

func (*snapshotCmd) SetFlags(*flag.FlagSet) {}

func (c *snapshotCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	a, err := c.env.App(ctx)
	if err != nil {
		return c.env.fail(err)
	}
	if err := a.Portfolio.CaptureSnapshot(ctx); err != nil {
		return c.env.fail(err)
	}
	fmt.Fprintln(c.env.out(), "Snapshot recorded")
	return subcommands.ExitSuccess
}

type historyCmd struct {
	env   *Env
	start string
	end   string
}

func (*historyCmd) Name() string     { return "history" }
func (*historyCmd) Synopsis() string { return "show recorded daily snapshots" }
func (*historyCmd) Usage() string {
	return `dashboard history [-from YYYY-MM-DD] [-to YYYY-MM-DD]

  Lists daily snapshots. The default range is the last 30 days.
`
}

func (c *historyCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.start, "from", "", "first day")
	f.StringVar(&c.end, "to", "", "last day")
}

func (c *historyCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	start, end, err := validation.ParseDateRange(c.start, c.end, time.Now())
	if err != nil {
		return c.env.fail(err)
	}
	a, err := c.env.App(ctx)
	if err != nil {
		return c.env.fail(err)
	}
	snaps, err := a.Portfolio.GetHistory(start, end)
	if err != nil {
		return c.env.fail(err)
	}
	c.env.print(HistoryMarkdown(snaps))
	return subcommands.ExitSuccess
}

// HistoryMarkdown renders daily snapshots as a table.
func HistoryMarkdown(snaps []model.PortfolioSnapshot) string {
	if len(snaps) == 0 {
		return "No snapshots recorded in this range.\n"
	}
	var b strings.Builder
	b.WriteString("| Date | Value | Cost | Profit/loss | Return | Holdings |\n")
	b.WriteString("|---|---:|---:|---:|---:|---:|\n")
	for _, s := range snaps {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %+.2f%% | %d |\n",
			s.Date.Format("2006-01-02"), report.FormatKRW(s.TotalValue), report.FormatKRW(s.TotalCost),
			report.FormatKRW(s.TotalProfitLoss), s.TotalProfitLossPct, s.HoldingCount)
	}
	return b.String()
}
