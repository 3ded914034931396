// Package news collects headlines from Google News RSS searches.
//
// Feed failures are never returned to callers: a feed that cannot be fetched
// or parsed contributes no items.
package news

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mmcdole/gofeed"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/cache"
	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/model"
)

// DefaultBaseURL is the Google News RSS search endpoint.
const DefaultBaseURL = "https://news.google.com/rss/search"

const (
	maxSummary   = 300
	maxPublished = 25
)

// Lang selects the Google News edition.
type Lang string

const (
	Korean  Lang = "ko"
	English Lang = "en"
)

func (l Lang) params() string {
	if l == Korean {
		return "hl=ko&gl=KR&ceid=KR:ko"
	}
	return "hl=en&gl=US&ceid=US:en"
}

type query struct {
	text string
	lang Lang
	n    int
}

// Client fetches and merges RSS searches.
type Client struct {
	httpClient *http.Client
	baseURL    string
	cache      *cache.Cache
	log        zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at another search endpoint.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithTimeout sets the per-feed timeout. The default is 15 seconds.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// New creates a news client. A nil cache disables caching.
func New(c *cache.Cache, log zerolog.Logger, opts ...Option) *Client {
	cl := &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    DefaultBaseURL,
		cache:      c,
		log:        log,
	}
	for _, opt := range opts {
		opt(cl)
	}
	return cl
}

// AssetNews returns headlines for one holding. Korean results are always
// searched; English results are added for foreign equities, ETFs and crypto.
func (c *Client) AssetNews(ctx context.Context, ticker, name string, class model.AssetClass, max int) []model.NewsItem {
	base := name
	if base == "" {
		base = strings.Split(ticker, "-")[0]
		base = strings.TrimSuffix(strings.TrimSuffix(base, ".KS"), ".KQ")
	}

	queries := []query{{text: base + " 주식 투자", lang: Korean, n: 8}}
	switch class {
	case model.AssetForeignEquity, model.AssetETF, model.AssetCrypto:
		queries = append(queries, query{text: base + " stock investment", lang: English, n: 8})
	}
	return c.collect(ctx, queries, max)
}

// MarketNews returns general market headlines.
func (c *Client) MarketNews(ctx context.Context, max int) []model.NewsItem {
	return c.collect(ctx, []query{
		{text: "주식 증시 금리 시황 경제", lang: Korean, n: 8},
		{text: "stock market fed rate economy", lang: English, n: 8},
	}, max)
}

// CryptoNews returns crypto market headlines.
func (c *Client) CryptoNews(ctx context.Context, max int) []model.NewsItem {
	return c.collect(ctx, []query{
		{text: "비트코인 이더리움 암호화폐 코인", lang: Korean, n: 7},
		{text: "bitcoin ethereum crypto DeFi", lang: English, n: 7},
	}, max)
}

// ResearchNews returns research and outlook articles for a free-text query.
func (c *Client) ResearchNews(ctx context.Context, q string, max int) []model.NewsItem {
	return c.collect(ctx, []query{
		{text: q + " 리서치 분석 전망", lang: Korean, n: 6},
		{text: q + " research analysis outlook", lang: English, n: 6},
	}, max)
}

// collect runs the queries concurrently and merges the results in query
// order, dropping repeated titles.
func (c *Client) collect(ctx context.Context, queries []query, max int) []model.NewsItem {
	results := make([][]model.NewsItem, len(queries))
	g, gctx := errgroup.WithContext(ctx)
	for i, q := range queries {
		g.Go(func() error {
			results[i] = c.feed(gctx, q)
			return nil
		})
	}
	_ = g.Wait()

	var merged []model.NewsItem
	for _, r := range results {
		merged = append(merged, r...)
	}
	items := Dedup(merged)
	if max > 0 && len(items) > max {
		items = items[:max]
	}
	return items
}

func (c *Client) feed(ctx context.Context, q query) []model.NewsItem {
	items, err := cache.Fetch(ctx, c.cache, cache.OpNews, []string{string(q.lang), q.text, strconv.Itoa(q.n)},
		func(ctx context.Context) ([]model.NewsItem, error) {
			return c.fetchFeed(ctx, q)
		})
	if err != nil {
		c.log.Warn().Err(err).Str("query", q.text).Str("lang", string(q.lang)).Msg("news feed unavailable")
		return nil
	}
	return items
}

func (c *Client) fetchFeed(ctx context.Context, q query) ([]model.NewsItem, error) {
	u := c.baseURL + "?q=" + url.QueryEscape(q.text) + "&" + q.lang.params()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; portfolio-dashboard)")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed returned status %d", resp.StatusCode)
	}

	feed, err := gofeed.NewParser().Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	items := make([]model.NewsItem, 0, min(q.n, len(feed.Items)))
	for _, it := range feed.Items {
		if len(items) == q.n {
			break
		}
		items = append(items, toNewsItem(it))
	}
	return items, nil
}

func toNewsItem(it *gofeed.Item) model.NewsItem {
	return model.NewsItem{
		Title:     it.Title,
		Link:      it.Link,
		Published: truncate(it.Published, maxPublished),
		Source:    source(it),
		Summary:   truncate(it.Description, maxSummary),
	}
}

// source prefers the feed's author and falls back to the " - Publisher"
// suffix Google News appends to titles.
func source(it *gofeed.Item) string {
	if it.Author != nil && it.Author.Name != "" {
		return it.Author.Name
	}
	if i := strings.LastIndex(it.Title, " - "); i > 0 {
		return strings.TrimSpace(it.Title[i+3:])
	}
	return ""
}

// Dedup keeps the first item for each exact title.
func Dedup(items []model.NewsItem) []model.NewsItem {
	seen := make(map[string]struct{}, len(items))
	out := make([]model.NewsItem, 0, len(items))
	for _, it := range items {
		if _, ok := seen[it.Title]; ok {
			continue
		}
		seen[it.Title] = struct{}{}
		out = append(out, it)
	}
	return out
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
