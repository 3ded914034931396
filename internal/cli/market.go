package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"
	"golang.org/x/sync/errgroup"

	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/model"
	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/service"
)

type marketCmd struct {
	env *Env
}

func (*marketCmd) Name() string     { return "market" }
func (*marketCmd) Synopsis() string { return "show market indices, major coins and exchange rates" }
func (*marketCmd) Usage() string {
	return `dashboard market
`
}

func (*marketCmd) SetFlags(*flag.FlagSet) {}

func (c *marketCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	a, err := c.env.App(ctx)
	if err != nil {
		return c.env.fail(err)
	}

	var (
		indices []model.IndexSnapshot
		coins   []model.QuoteSnapshot
		fx      service.FxRates
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { indices = a.Market.GetIndices(gctx); return nil })
	g.Go(func() error { coins = a.Market.GetCrypto(gctx); return nil })
	g.Go(func() error { fx = a.Market.GetFxRates(gctx); return nil })
	_ = g.Wait()

	c.env.print(MarketMarkdown(indices, coins, fx.USDKRW, fx.JPYKRW))
	return subcommands.ExitSuccess
}

type newsCmd struct {
	env    *Env
	ticker string
	query  string
	crypto bool
	max    int
}

func (*newsCmd) Name() string     { return "news" }
func (*newsCmd) Synopsis() string { return "show headlines for the market, a holding or a topic" }
func (*newsCmd) Usage() string {
	return `dashboard news [-t <ticker> | -q <query> | -crypto] [-n <max>]

  Without flags, shows general market headlines.
`
}

func (c *newsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.ticker, "t", "", "headlines for a ticker")
	f.StringVar(&c.query, "q", "", "headlines for a free-text query")
	f.BoolVar(&c.crypto, "crypto", false, "crypto market headlines")
	f.IntVar(&c.max, "n", 0, "maximum headlines")
}

func (c *newsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	set := 0
	for _, on := range []bool{c.ticker != "", c.query != "", c.crypto} {
		if on {
			set++
		}
	}
	if set > 1 {
		return usage(c.env, f, "use only one of -t, -q and -crypto")
	}
	if c.max < 0 {
		return usage(c.env, f, "-n must not be negative")
	}

	a, err := c.env.App(ctx)
	if err != nil {
		return c.env.fail(err)
	}

	var (
		title string
		items []model.NewsItem
	)
	switch {
	case c.ticker != "":
		title = fmt.Sprintf("News: %s", c.ticker)
		items, err = a.News.GetAssetNews(ctx, c.ticker, "", c.max)
	case c.query != "":
		title = fmt.Sprintf("News: %s", c.query)
		items, err = a.News.GetResearchNews(ctx, c.query, c.max)
	case c.crypto:
		title = "Crypto news"
		items = a.News.GetCryptoNews(ctx, c.max)
	default:
		title = "Market news"
		items = a.News.GetMarketNews(ctx, c.max)
	}
	if err != nil {
		return c.env.fail(err)
	}
	c.env.print(NewsMarkdown(title, items))
	return subcommands.ExitSuccess
}
