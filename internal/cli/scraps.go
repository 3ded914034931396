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

type scrapsCmd struct {
	env      *Env
	ticker   string
	category string
	sort     string
	limit    int
}

func (*scrapsCmd) Name() string     { return "scraps" }
func (*scrapsCmd) Synopsis() string { return "list saved scraps" }
func (*scrapsCmd) Usage() string {
	return `dashboard scraps [-t <ticker>] [-category <category>] [-sort newest|oldest|ticker] [-n <limit>]
`
}

func (c *scrapsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.ticker, "t", "", "only scraps tagged with this ticker")
	f.StringVar(&c.category, "category", "", "only scraps in this category")
	f.StringVar(&c.sort, "sort", service.SortNewest, "order: newest, oldest or ticker")
	f.IntVar(&c.limit, "n", 20, "maximum scraps")
}

func (c *scrapsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	if err := validation.ValidateScrapSort(c.sort); err != nil {
		return usage(c.env, f, "invalid -sort "+c.sort)
	}
	if c.limit < 0 {
		return usage(c.env, f, "-n must not be negative")
	}
	a, err := c.env.App(ctx)
	if err != nil {
		return c.env.fail(err)
	}
	scraps, err := a.Scrap.GetScraps(ctx, service.ScrapFilter{
		Ticker:   c.ticker,
		Category: c.category,
		Sort:     c.sort,
		Limit:    c.limit,
	})
	if err != nil {
		return c.env.fail(err)
	}
	c.env.print(ScrapsMarkdown(scraps))
	return subcommands.ExitSuccess
}

type addScrapCmd struct {
	env *Env
	req request.CreateScrapRequest
}

func (*addScrapCmd) Name() string     { return "add-scrap" }
func (*addScrapCmd) Synopsis() string { return "save an article or a note" }
func (*addScrapCmd) Usage() string {
	return `dashboard add-scrap -title <title> [-link <url>] [-summary <text>] [-t <ticker>] [-category <category>]
`
}

func (c *addScrapCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.req.Title, "title", "", "title")
	f.StringVar(&c.req.Link, "link", "", "article URL")
	f.StringVar(&c.req.Summary, "summary", "", "summary or note text")
	f.StringVar(&c.req.Ticker, "t", "", "related ticker")
	f.StringVar(&c.req.Category, "category", model.ScrapCategoryNews, "news, research, ai-analysis or other")
	f.StringVar(&c.req.Source, "source", "", "publisher")
}

func (c *addScrapCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	if err := validation.ValidateCreateScrap(c.req); err != nil {
		return c.env.fail(err)
	}
	a, err := c.env.App(ctx)
	if err != nil {
		return c.env.fail(err)
	}
	saved, err := a.Scrap.AddScrap(ctx, model.ScrapRecord{
		Title:    strings.TrimSpace(c.req.Title),
		Link:     strings.TrimSpace(c.req.Link),
		Summary:  c.req.Summary,
		Ticker:   strings.TrimSpace(c.req.Ticker),
		Category: c.req.Category,
		Source:   c.req.Source,
	})
	if err != nil {
		return c.env.fail(err)
	}
	fmt.Fprintf(c.env.out(), "Saved %q as %s\n", saved.Title, saved.RecordID)
	return subcommands.ExitSuccess
}

type removeScrapCmd struct {
	env *Env
	id  string
}

func (*removeScrapCmd) Name() string     { return "remove-scrap" }
func (*removeScrapCmd) Synopsis() string { return "archive a scrap" }
func (*removeScrapCmd) Usage() string {
	return `dashboard remove-scrap -id <id>
`
}

func (c *removeScrapCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.id, "id", "", "scrap id, see 'dashboard scraps'")
}

func (c *removeScrapCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	if err := validation.ValidateUUID(c.id); err != nil {
		return usage(c.env, f, err.Error())
	}
	a, err := c.env.App(ctx)
	if err != nil {
		return c.env.fail(err)
	}
	if err := a.Scrap.RemoveScrap(ctx, c.id); err != nil {
		return c.env.fail(err)
	}
	fmt.Fprintf(c.env.out(), "Removed %s\n", c.id)
	return subcommands.ExitSuccess
}
