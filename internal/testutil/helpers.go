package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/cache"
	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/events"
	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/market"
	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/repository"
	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/service"
	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/valuation"
)

// Services bundles the services built over shared fakes.
type Services struct {
	Store      *MockStore
	MarketData *MockMarket
	Generator  *MockGenerator
	NewsSource *MockNews
	Cache      *cache.Cache
	Portfolio  *service.PortfolioService
	Scrap      *service.ScrapService
	Report     *service.ReportService
	Market     *service.MarketService
	News       *service.NewsService
	System     *service.SystemService
}

// NewTestCache creates an in-memory cache with the production TTLs.
func NewTestCache(t *testing.T) *cache.Cache {
	t.Helper()
	return cache.New(cache.NewMemoryStore(), map[string]time.Duration{
		cache.OpQuote:    5 * time.Minute,
		cache.OpFx:       10 * time.Minute,
		cache.OpIndices:  5 * time.Minute,
		cache.OpHistory:  5 * time.Minute,
		cache.OpNews:     5 * time.Minute,
		cache.OpProfile:  24 * time.Hour,
		cache.OpHoldings: time.Minute,
		cache.OpScraps:   time.Minute,
	})
}

// NewTestServices wires every service over the given database and fakes.
// Pass a nil publisher for the no-op one.
func NewTestServices(t *testing.T, db *sql.DB, store *MockStore, m *MockMarket, publisher events.Publisher) *Services {
	t.Helper()

	c := NewTestCache(t)
	gen := &MockGenerator{Models: []string{"test-model"}}
	news := &MockNews{}
	log := zerolog.Nop()

	portfolio := service.NewPortfolioService(
		store,
		valuation.NewValuer(m, 4, log),
		m,
		c,
		repository.NewSnapshotRepository(db),
		publisher,
		log,
	)
	scraps := service.NewScrapService(store, c, publisher, log)

	return &Services{
		Store:      store,
		MarketData: m,
		Generator:  gen,
		NewsSource: news,
		Cache:      c,
		Portfolio:  portfolio,
		Scrap:      scraps,
		Report: service.NewReportService(
			portfolio, scraps, m, gen,
			repository.NewReportLogRepository(db),
			market.DefaultIndices,
			log,
		),
		Market: service.NewMarketService(m),
		News:   service.NewNewsService(news, m),
		System: service.NewSystemService(db, store, gen, c, publisher),
	}
}
