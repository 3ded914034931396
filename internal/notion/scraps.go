package notion

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/apperrors"
	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/model"
)

// ListScraps returns up to limit scraps, newest first. limit is clamped to 1..100.
func (c *Client) ListScraps(ctx context.Context, limit int) ([]model.ScrapRecord, error) {
	if err := c.requireScraps(); err != nil {
		return nil, err
	}
	limit = min(max(limit, 1), 100)

	req := queryRequest{
		Sorts:    []any{map[string]string{"property": propScrapDate, "direction": "descending"}},
		PageSize: limit,
	}
	var resp queryResponse
	if err := c.do(ctx, http.MethodPost, "/v1/databases/"+c.scrapDB+"/query", req, &resp); err != nil {
		return nil, fmt.Errorf("list scraps: %w", err)
	}

	scraps := make([]model.ScrapRecord, 0, len(resp.Results))
	for _, p := range resp.Results {
		scraps = append(scraps, scrapFromPage(p))
	}
	return scraps, nil
}

// AddScrap saves a scrap. A non-empty link that is already saved is rejected.
func (c *Client) AddScrap(ctx context.Context, s model.ScrapRecord) (model.ScrapRecord, error) {
	if err := c.requireScraps(); err != nil {
		return model.ScrapRecord{}, err
	}

	s.Link = strings.TrimSpace(s.Link)
	if s.Link != "" {
		exists, err := c.linkExists(ctx, s.Link)
		if err != nil {
			return model.ScrapRecord{}, fmt.Errorf("duplicate check: %w", err)
		}
		if exists {
			return model.ScrapRecord{}, fmt.Errorf("%s: %w", s.Link, apperrors.ErrDuplicateLink)
		}
	}

	if s.Category == "" {
		s.Category = model.ScrapCategoryOther
	}
	s.ScrapedAt = c.now().UTC()

	props := map[string]property{
		propTitle:     titleProp(s.Title, maxTitle),
		propScrapTick: textProp(s.Ticker, maxTicker),
		propCategory:  selectProp(s.Category, maxCategory),
		propSource:    textProp(s.Source, maxSource),
		propSummary:   textProp(s.Summary, maxSummary),
		propScrapDate: dateProp(s.ScrapedAt),
	}
	if s.Link != "" {
		props[propLink] = urlProp(s.Link)
	}

	var created page
	body := createPageRequest{Parent: parent{DatabaseID: c.scrapDB}, Properties: props}
	if err := c.create(ctx, body, &created); err != nil {
		return model.ScrapRecord{}, fmt.Errorf("add scrap: %w", err)
	}

	s.RecordID = created.ID
	s.Title = truncate(s.Title, maxTitle)
	s.Summary = truncate(s.Summary, maxSummary)
	return s, nil
}

// RemoveScrap archives a scrap.
func (c *Client) RemoveScrap(ctx context.Context, recordID string) error {
	if err := c.requireScraps(); err != nil {
		return err
	}
	if err := c.archive(ctx, recordID); err != nil {
		return fmt.Errorf("remove scrap: %w", err)
	}
	return nil
}

func (c *Client) linkExists(ctx context.Context, link string) (bool, error) {
	req := queryRequest{
		Filter:   map[string]any{"property": propLink, "url": map[string]string{"equals": truncate(link, maxLink)}},
		PageSize: 1,
	}
	var resp queryResponse
	if err := c.do(ctx, http.MethodPost, "/v1/databases/"+c.scrapDB+"/query", req, &resp); err != nil {
		return false, err
	}
	return len(resp.Results) > 0, nil
}

func scrapFromPage(p page) model.ScrapRecord {
	props := p.Properties
	scraped := props[propScrapDate].date()
	if scraped.IsZero() {
		scraped = p.CreatedTime
	}
	return model.ScrapRecord{
		RecordID:  p.ID,
		Title:     props[propTitle].title(),
		Link:      props[propLink].url(),
		Summary:   props[propSummary].text(),
		Ticker:    props[propScrapTick].text(),
		Category:  props[propCategory].selected(),
		Source:    props[propSource].text(),
		ScrapedAt: scraped,
	}
}
