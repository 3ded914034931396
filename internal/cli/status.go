package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"
)

type statusCmd struct {
	env   *Env
	flush bool
}

func (*statusCmd) Name() string     { return "status" }
func (*statusCmd) Synopsis() string { return "show which integrations are configured" }
func (*statusCmd) Usage() string {
	return `dashboard status [-flush]
`
}

func (c *statusCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.flush, "flush", false, "clear cached quotes, news and records first")
}

func (c *statusCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	a, err := c.env.App(ctx)
	if err != nil {
		return c.env.fail(err)
	}
	if c.flush {
		if err := a.System.FlushCache(ctx); err != nil {
			return c.env.fail(err)
		}
		fmt.Fprintln(c.env.errOut(), "Cache cleared")
	}
	c.env.print(StatusMarkdown(a.System.Status(ctx)))
	return subcommands.ExitSuccess
}
