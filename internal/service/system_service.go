package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/cache"
	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/database"
	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/events"
	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/model"
	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/version"
)

// SystemService handles system-related operations
type SystemService struct {
	db        *sql.DB
	store     StoreStatus
	generator ReportGenerator
	cache     *cache.Cache
	events    events.Publisher
}

// NewSystemService creates a new SystemService
func NewSystemService(db *sql.DB, store StoreStatus, generator ReportGenerator, c *cache.Cache, publisher events.Publisher) *SystemService {
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &SystemService{
		db:        db,
		store:     store,
		generator: generator,
		cache:     c,
		events:    publisher,
	}
}

// CheckHealth checks the health of the system
func (s *SystemService) CheckHealth() error {
	return database.HealthCheck(s.db)
}

func (s *SystemService) CheckVersion() string {
	return version.Version
}

// Status reports which collaborators are configured.
func (s *SystemService) Status(ctx context.Context) model.SystemStatus {
	st := model.SystemStatus{
		Notion:       s.store.Status(),
		ReportReady:  s.generator.Ready(),
		ReportModels: s.generator.Candidates(),
		CacheBackend: s.cache.Backend(),
		Events:       s.events.Enabled(),
		Database:     "unavailable",
	}
	if v, err := database.Version(ctx, s.db); err == nil {
		st.Database = fmt.Sprintf("schema v%d", v)
	}
	return st
}

// FlushCache drops every cached entry.
func (s *SystemService) FlushCache(ctx context.Context) error {
	return s.cache.InvalidateAll(ctx)
}
