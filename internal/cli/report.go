package cli

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/google/subcommands"

	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/api/request"
	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/model"
	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/service"
	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/validation"
)

type reportCmd struct {
	env   *Env
	focus string
	risk  string
	extra string
	save  bool
}

func (*reportCmd) Name() string     { return "report" }
func (*reportCmd) Synopsis() string { return "generate an AI portfolio briefing" }
func (*reportCmd) Usage() string {
	return `dashboard report [-focus a,b] [-risk <preference>] [-extra <text>] [-save]

  Asks the configured Gemini models in order until one answers. With -save
  a successful briefing is stored as an ai-analysis scrap.
`
}

func (c *reportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.focus, "focus", "", "comma separated focus areas: "+strings.Join(validation.ValidFocusAreas, ", "))
	f.StringVar(&c.risk, "risk", "", "risk preference: "+strings.Join(validation.ValidRiskPreferences, ", "))
	f.StringVar(&c.extra, "extra", "", "additional request for the model")
	f.BoolVar(&c.save, "save", false, "save a successful briefing as a scrap")
}

func (c *reportCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	req := request.GenerateReportRequest{
		Focus:          splitList(c.focus),
		RiskPreference: c.risk,
		Extra:          c.extra,
	}
	if err := validation.ValidateGenerateReport(req); err != nil {
		return c.env.fail(err)
	}

	a, err := c.env.App(ctx)
	if err != nil {
		return c.env.fail(err)
	}

	rep := a.Report.Generate(ctx, service.ReportOptions{
		Focus:          req.Focus,
		RiskPreference: req.RiskPreference,
		Extra:          req.Extra,
	})
	c.env.print(rep.Text)

	if rep.Outcome != model.ReportOK {
		return subcommands.ExitFailure
	}
	fmt.Fprintf(c.env.errOut(), "Generated by %s\n", rep.Model)

	if c.save {
		saved, err := a.Report.Save(ctx, rep.Text, rep.Model)
		if err != nil {
			return c.env.fail(err)
		}
		fmt.Fprintf(c.env.errOut(), "Saved as %s\n", saved.RecordID)
	}
	return subcommands.ExitSuccess
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

type attemptsCmd struct {
	env   *Env
	limit int
	saved bool
}

func (*attemptsCmd) Name() string     { return "report-log" }
func (*attemptsCmd) Synopsis() string { return "show recent report attempts or saved briefings" }
func (*attemptsCmd) Usage() string {
	return `dashboard report-log [-n <limit>] [-saved]
`
}

func (c *attemptsCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.limit, "n", 20, "maximum attempts")
	f.BoolVar(&c.saved, "saved", false, "show the latest saved briefings instead")
}

func (c *attemptsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	if c.limit < 1 {
		return usage(c.env, f, "-n must be at least 1")
	}
	a, err := c.env.App(ctx)
	if err != nil {
		return c.env.fail(err)
	}

	if c.saved {
		history, err := a.Report.History(ctx)
		if err != nil {
			return c.env.fail(err)
		}
		c.env.print(ScrapsMarkdown(history))
		return subcommands.ExitSuccess
	}

	entries, err := a.Report.RecentAttempts(c.limit)
	if err != nil {
		return c.env.fail(err)
	}
	c.env.print(AttemptsMarkdown(entries))
	return subcommands.ExitSuccess
}
