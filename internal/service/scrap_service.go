package service

import (
	"context"
	"slices"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/cache"
	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/events"
	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/model"
)

// Scrap list orderings.
const (
	SortNewest = "newest"
	SortOldest = "oldest"
	SortTicker = "ticker"
)

// maxScrapList is the most scraps the store returns in one call.
const maxScrapList = 100

// ScrapFilter narrows a scrap listing. Empty fields match everything.
type ScrapFilter struct {
	Ticker   string
	Category string
	Sort     string
	Limit    int
}

// ScrapService handles the research scrap collection.
type ScrapService struct {
	store  ScrapStore
	cache  *cache.Cache
	events events.Publisher
	log    zerolog.Logger
}

// NewScrapService creates a new ScrapService.
func NewScrapService(store ScrapStore, c *cache.Cache, publisher events.Publisher, log zerolog.Logger) *ScrapService {
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &ScrapService{
		store:  store,
		cache:  c,
		events: publisher,
		log:    log,
	}
}

// GetScraps lists scraps matching the filter.
//
// The store is always asked for the newest maxScrapList scraps (cached), and
// filtering, ordering and the limit are applied here so every filter shares
// one cached listing.
func (s *ScrapService) GetScraps(ctx context.Context, f ScrapFilter) ([]model.ScrapRecord, error) {
	all, err := cache.Fetch(ctx, s.cache, cache.OpScraps, []string{strconv.Itoa(maxScrapList)},
		func(ctx context.Context) ([]model.ScrapRecord, error) {
			return s.store.ListScraps(ctx, maxScrapList)
		})
	if err != nil {
		return nil, err
	}

	out := make([]model.ScrapRecord, 0, len(all))
	for _, sc := range all {
		if f.Ticker != "" && !strings.EqualFold(sc.Ticker, f.Ticker) {
			continue
		}
		if f.Category != "" && sc.Category != f.Category {
			continue
		}
		out = append(out, sc)
	}

	sortScraps(out, f.Sort)

	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func sortScraps(scraps []model.ScrapRecord, order string) {
	switch order {
	case SortOldest:
		slices.SortStableFunc(scraps, func(a, b model.ScrapRecord) int {
			return a.ScrapedAt.Compare(b.ScrapedAt)
		})
	case SortTicker:
		slices.SortStableFunc(scraps, func(a, b model.ScrapRecord) int {
			if c := strings.Compare(strings.ToUpper(a.Ticker), strings.ToUpper(b.Ticker)); c != 0 {
				return c
			}
			return b.ScrapedAt.Compare(a.ScrapedAt)
		})
	default:
		slices.SortStableFunc(scraps, func(a, b model.ScrapRecord) int {
			return b.ScrapedAt.Compare(a.ScrapedAt)
		})
	}
}

// AddScrap stores a scrap. The store rejects a link that is already saved.
func (s *ScrapService) AddScrap(ctx context.Context, sc model.ScrapRecord) (model.ScrapRecord, error) {
	if sc.Category == "" {
		sc.Category = model.ScrapCategoryOther
	}
	created, err := s.store.AddScrap(ctx, sc)
	if err != nil {
		return model.ScrapRecord{}, err
	}

	s.invalidateScraps(ctx)
	s.events.Publish(ctx, events.Event{Type: events.ScrapAdded, RecordID: created.RecordID, Ticker: created.Ticker, Payload: created})
	return created, nil
}

// RemoveScrap archives a scrap.
func (s *ScrapService) RemoveScrap(ctx context.Context, recordID string) error {
	if err := s.store.RemoveScrap(ctx, recordID); err != nil {
		return err
	}

	s.invalidateScraps(ctx)
	s.events.Publish(ctx, events.Event{Type: events.ScrapRemoved, RecordID: recordID})
	return nil
}

func (s *ScrapService) invalidateScraps(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, cache.OpScraps); err != nil {
		s.log.Warn().Err(err).Msg("failed to invalidate scraps cache")
	}
}
