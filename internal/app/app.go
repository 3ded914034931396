// Package app wires configuration into the running components. Both the
// HTTP server and the terminal client build on it.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/api"
	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/cache"
	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/config"
	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/database"
	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/events"
	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/market"
	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/news"
	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/notion"
	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/report"
	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/repository"
	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/scheduler"
	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/service"
	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/valuation"
	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/yahoo"
)

// snapshotJobTimeout bounds one scheduled snapshot run.
const snapshotJobTimeout = 2 * time.Minute

// App holds the wired services and the resources that need closing.
type App struct {
	Config    *config.Config
	Log       zerolog.Logger
	DB        *sql.DB
	Cache     *cache.Cache
	Publisher events.Publisher
	Scheduler *scheduler.Scheduler

	Portfolio *service.PortfolioService
	Scrap     *service.ScrapService
	Market    *service.MarketService
	News      *service.NewsService
	Report    *service.ReportService
	System    *service.SystemService

	redis *redis.Client
}

// New builds every component from cfg. The snapshot database is created and
// migrated if needed. Missing credentials are not an error: the affected
// features report not-configured at call time.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*App, error) {
	a := &App{Config: cfg, Log: log}

	a.Cache, a.redis = newCache(ctx, cfg, log)

	fetcher := market.NewFetcher(
		yahoo.NewFinanceClient(yahoo.WithTimeout(cfg.Market.QuoteTimeout)),
		a.Cache,
		cfg.Market.QuoteConcurrency,
		log.With().Str("component", "market").Logger(),
	)
	valuer := valuation.NewValuer(fetcher, cfg.Market.QuoteConcurrency, log.With().Str("component", "valuation").Logger())

	store := notion.New(notion.Config{
		APIKey:         cfg.Notion.APIKey,
		PortfolioDBID:  cfg.Notion.PortfolioDBID,
		ScrapDBID:      cfg.Notion.ScrapDBID,
		BaseURL:        cfg.Notion.BaseURL,
		Timeout:        cfg.Notion.RequestTimeout,
		MaxAttempts:    cfg.Notion.MaxAttempts,
		InitialBackoff: cfg.Notion.InitialBackoff,
	}, log.With().Str("component", "notion").Logger())

	feeds := news.New(a.Cache, log.With().Str("component", "news").Logger(), news.WithTimeout(cfg.Market.NewsTimeout))

	generator, err := newGenerator(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	a.Publisher = newPublisher(cfg, log)

	if dir := filepath.Dir(cfg.Database.Path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}
	a.DB, err = database.Open(cfg.Database.Path)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(ctx, a.DB); err != nil {
		a.DB.Close()
		return nil, err
	}

	a.Portfolio = service.NewPortfolioService(
		store,
		valuer,
		fetcher,
		a.Cache,
		repository.NewSnapshotRepository(a.DB),
		a.Publisher,
		log.With().Str("component", "portfolio").Logger(),
	)
	a.Scrap = service.NewScrapService(store, a.Cache, a.Publisher, log.With().Str("component", "scrap").Logger())
	a.Market = service.NewMarketService(fetcher)
	a.News = service.NewNewsService(feeds, fetcher)
	a.Report = service.NewReportService(
		a.Portfolio,
		a.Scrap,
		fetcher,
		generator,
		repository.NewReportLogRepository(a.DB),
		market.DefaultIndices,
		log.With().Str("component", "report").Logger(),
	)
	a.System = service.NewSystemService(a.DB, store, generator, a.Cache, a.Publisher)

	a.Scheduler = scheduler.New(snapshotJobTimeout, log.With().Str("component", "scheduler").Logger())
	if cfg.Snapshot.Schedule != "" {
		if err := a.Scheduler.Add("portfolio-snapshot", cfg.Snapshot.Schedule, a.Portfolio.CaptureSnapshot); err != nil {
			a.Close()
			return nil, err
		}
	}

	log.Info().
		Str("cache", a.Cache.Backend()).
		Bool("notion_ready", cfg.NotionReady()).
		Bool("report_ready", generator.Ready()).
		Bool("events", a.Publisher.Enabled()).
		Msg("application wired")

	return a, nil
}

// Router returns the HTTP handler over the wired services.
func (a *App) Router() http.Handler {
	return api.NewRouter(api.Services{
		System:    a.System,
		Portfolio: a.Portfolio,
		Scrap:     a.Scrap,
		Market:    a.Market,
		News:      a.News,
		Report:    a.Report,
	}, a.Config, a.Log)
}

// Close releases the database, the event writer and the Redis client.
func (a *App) Close() error {
	var errs []error
	if a.Publisher != nil {
		errs = append(errs, a.Publisher.Close())
	}
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	if a.DB != nil {
		errs = append(errs, a.DB.Close())
	}
	return errors.Join(errs...)
}

func cacheTTLs(cfg config.CacheConfig) map[string]time.Duration {
	return map[string]time.Duration{
		cache.OpQuote:    cfg.QuoteTTL,
		cache.OpFx:       cfg.FxTTL,
		cache.OpIndices:  cfg.IndicesTTL,
		cache.OpHistory:  cfg.HistoryTTL,
		cache.OpNews:     cfg.NewsTTL,
		cache.OpProfile:  cfg.ProfileTTL,
		cache.OpHoldings: cfg.HoldingsTTL,
		cache.OpScraps:   cfg.ScrapsTTL,
	}
}

func newCache(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*cache.Cache, *redis.Client) {
	ttls := cacheTTLs(cfg.Cache)
	cacheLog := log.With().Str("component", "cache").Logger()

	if cfg.Redis.Addr == "" {
		return cache.New(cache.NewMemoryStore(), ttls, cache.WithLogger(cacheLog)), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		cacheLog.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis unreachable, using in-memory cache")
		client.Close()
		return cache.New(cache.NewMemoryStore(), ttls, cache.WithLogger(cacheLog)), nil
	}
	return cache.New(cache.NewRedisStore(client), ttls, cache.WithLogger(cacheLog)), client
}

func newGenerator(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*report.Generator, error) {
	genLog := log.With().Str("component", "gemini").Logger()
	opts := []report.Option{
		report.WithTimeout(cfg.Gemini.Timeout),
		report.WithLanguage(cfg.Gemini.Language),
	}
	if cfg.Gemini.APIKey == "" {
		return report.NewGenerator(nil, cfg.Gemini.Models, genLog, opts...), nil
	}

	m, err := report.NewGeminiModel(ctx, cfg.Gemini.APIKey)
	if err != nil {
		return nil, err
	}
	return report.NewGenerator(m, cfg.Gemini.Models, genLog, opts...), nil
}

func newPublisher(cfg *config.Config, log zerolog.Logger) events.Publisher {
	if len(cfg.Kafka.Brokers) == 0 {
		return events.Noop{}
	}
	return events.NewKafkaPublisher(
		events.NewKafkaWriter(cfg.Kafka.Brokers, cfg.Kafka.Topic),
		log.With().Str("component", "events").Logger(),
	)
}
