package notion

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/apperrors"
	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/market"
	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/model"
)

// ListHoldings returns every non-archived holding in creation order. Rows
// without a ticker are skipped.
func (c *Client) ListHoldings(ctx context.Context) ([]model.Holding, error) {
	if err := c.requirePortfolio(); err != nil {
		return nil, err
	}

	req := queryRequest{
		Sorts:    []any{map[string]string{"timestamp": "created_time", "direction": "ascending"}},
		PageSize: 100,
	}
	pages, err := c.queryAll(ctx, c.portfolioDB, req)
	if err != nil {
		return nil, fmt.Errorf("list holdings: %w", err)
	}

	holdings := make([]model.Holding, 0, len(pages))
	for _, p := range pages {
		h := holdingFromPage(p)
		if h.Ticker == "" {
			continue
		}
		holdings = append(holdings, h)
	}
	return holdings, nil
}

// AddHolding creates a new holding record. The ticker is normalized first and
// the add is rejected when any existing holding has the same normalized
// ticker. The duplicate check completes before the write; if the check
// itself fails nothing is written.
//
// The check and the write are not atomic: two concurrent adds of the same
// ticker can both succeed.
func (c *Client) AddHolding(ctx context.Context, h model.Holding) (model.Holding, error) {
	if err := c.requirePortfolio(); err != nil {
		return model.Holding{}, err
	}

	h.Ticker = market.NormalizeTicker(h.Ticker)
	existing, err := c.ListHoldings(ctx)
	if err != nil {
		return model.Holding{}, fmt.Errorf("duplicate check: %w", err)
	}
	for _, e := range existing {
		if strings.EqualFold(market.NormalizeTicker(e.Ticker), h.Ticker) {
			return model.Holding{}, fmt.Errorf("%s: %w", h.Ticker, apperrors.ErrDuplicateTicker)
		}
	}

	if h.AssetClass == "" {
		h.AssetClass = market.DetectAssetType(h.Ticker)
	}
	h.AddedAt = c.now().UTC()

	props := map[string]property{
		propTicker:    titleProp(h.Ticker, maxTicker),
		propStockName: textProp(h.DisplayName, maxTitle),
		propQuantity:  numberProp(h.Quantity),
		propAvgPrice:  numberProp(h.AverageCost),
		propAssetType: selectProp(string(h.AssetClass), maxCategory),
		propAddedDate: dayProp(h.AddedAt),
	}
	if h.Note != "" {
		props[propNote] = textProp(h.Note, maxNote)
	}

	var created page
	body := createPageRequest{Parent: parent{DatabaseID: c.portfolioDB}, Properties: props}
	if err := c.create(ctx, body, &created); err != nil {
		return model.Holding{}, fmt.Errorf("add holding: %w", err)
	}
	h.RecordID = created.ID
	return h, nil
}

// UpdateHolding overwrites quantity and average cost of an existing record.
func (c *Client) UpdateHolding(ctx context.Context, recordID string, quantity, averageCost float64) error {
	if err := c.requirePortfolio(); err != nil {
		return err
	}
	body := updatePageRequest{Properties: map[string]property{
		propQuantity: numberProp(quantity),
		propAvgPrice: numberProp(averageCost),
	}}
	if err := c.do(ctx, http.MethodPatch, "/v1/pages/"+recordID, body, nil); err != nil {
		return fmt.Errorf("update holding: %w", err)
	}
	return nil
}

// RemoveHolding archives a record. Archived records are not returned by
// ListHoldings.
func (c *Client) RemoveHolding(ctx context.Context, recordID string) error {
	if err := c.requirePortfolio(); err != nil {
		return err
	}
	if err := c.archive(ctx, recordID); err != nil {
		return fmt.Errorf("remove holding: %w", err)
	}
	return nil
}

func (c *Client) archive(ctx context.Context, recordID string) error {
	archived := true
	return c.do(ctx, http.MethodPatch, "/v1/pages/"+recordID, updatePageRequest{Archived: &archived}, nil)
}

// queryAll follows next_cursor until has_more is false.
func (c *Client) queryAll(ctx context.Context, databaseID string, req queryRequest) ([]page, error) {
	var pages []page
	for {
		var resp queryResponse
		if err := c.do(ctx, http.MethodPost, "/v1/databases/"+databaseID+"/query", req, &resp); err != nil {
			return nil, err
		}
		pages = append(pages, resp.Results...)
		if !resp.HasMore || resp.NextCursor == nil || *resp.NextCursor == "" {
			return pages, nil
		}
		req.StartCursor = *resp.NextCursor
	}
}

func holdingFromPage(p page) model.Holding {
	props := p.Properties
	added := props[propAddedDate].date()
	if added.IsZero() {
		added = p.CreatedTime
	}
	return model.Holding{
		RecordID:    p.ID,
		Ticker:      strings.ToUpper(strings.TrimSpace(props[propTicker].title())),
		DisplayName: props[propStockName].text(),
		Quantity:    props[propQuantity].number(),
		AverageCost: props[propAvgPrice].number(),
		AssetClass:  model.AssetClassOrDefault(props[propAssetType].selected()),
		Note:        props[propNote].text(),
		AddedAt:     added,
	}
}
