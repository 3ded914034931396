package testutil

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/model"
)

var seq atomic.Int64

// MakeID returns a fresh UUID string, the shape of a Notion page id.
func MakeID() string {
	return uuid.New().String()
}

// MakeTitle appends a unique counter to base.
func MakeTitle(base string) string {
	return fmt.Sprintf("%s %d", base, seq.Add(1))
}

// HoldingBuilder provides a fluent interface for creating test holdings.
//
// Example usage:
//
//	h := testutil.NewHolding().WithTicker("MSFT").WithPosition(3, 400).Build()
type HoldingBuilder struct {
	h model.Holding
}

// NewHolding creates a HoldingBuilder for 10 AAPL at 150.
func NewHolding() *HoldingBuilder {
	return &HoldingBuilder{h: model.Holding{
		RecordID:    MakeID(),
		Ticker:      "AAPL",
		DisplayName: "Apple Inc.",
		Quantity:    10,
		AverageCost: 150,
		AssetClass:  model.AssetForeignEquity,
		AddedAt:     time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
	}}
}

// WithTicker sets the ticker and display name.
func (b *HoldingBuilder) WithTicker(ticker string) *HoldingBuilder {
	b.h.Ticker = ticker
	b.h.DisplayName = ticker
	return b
}

// WithPosition sets quantity and average cost.
func (b *HoldingBuilder) WithPosition(quantity, averageCost float64) *HoldingBuilder {
	b.h.Quantity = quantity
	b.h.AverageCost = averageCost
	return b
}

// WithAssetClass sets the asset class.
func (b *HoldingBuilder) WithAssetClass(c model.AssetClass) *HoldingBuilder {
	b.h.AssetClass = c
	return b
}

// WithRecordID sets the record id.
func (b *HoldingBuilder) WithRecordID(id string) *HoldingBuilder {
	b.h.RecordID = id
	return b
}

// Build returns the holding.
func (b *HoldingBuilder) Build() model.Holding {
	return b.h
}

// ScrapBuilder provides a fluent interface for creating test scraps.
type ScrapBuilder struct {
	s model.ScrapRecord
}

// NewScrap creates a ScrapBuilder with a unique title and link.
func NewScrap() *ScrapBuilder {
	title := MakeTitle("Scrap")
	return &ScrapBuilder{s: model.ScrapRecord{
		RecordID:  MakeID(),
		Title:     title,
		Link:      "https://news.example/" + uuid.NewString(),
		Summary:   "summary of " + title,
		Category:  model.ScrapCategoryNews,
		Source:    "Reuters",
		ScrapedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}}
}

// WithTicker sets the ticker tag.
func (b *ScrapBuilder) WithTicker(ticker string) *ScrapBuilder {
	b.s.Ticker = ticker
	return b
}

// WithCategory sets the category.
func (b *ScrapBuilder) WithCategory(category string) *ScrapBuilder {
	b.s.Category = category
	return b
}

// WithTitle sets the title.
func (b *ScrapBuilder) WithTitle(title string) *ScrapBuilder {
	b.s.Title = title
	return b
}

// WithLink sets the link.
func (b *ScrapBuilder) WithLink(link string) *ScrapBuilder {
	b.s.Link = link
	return b
}

// WithSummary sets the summary.
func (b *ScrapBuilder) WithSummary(summary string) *ScrapBuilder {
	b.s.Summary = summary
	return b
}

// ScrapedAt sets the scrap time.
func (b *ScrapBuilder) ScrapedAt(t time.Time) *ScrapBuilder {
	b.s.ScrapedAt = t
	return b
}

// Build returns the scrap.
func (b *ScrapBuilder) Build() model.ScrapRecord {
	return b.s
}

// SnapshotBuilder provides a fluent interface for creating portfolio snapshots.
type SnapshotBuilder struct {
	s model.PortfolioSnapshot
}

// NewSnapshot creates a SnapshotBuilder for 2026-03-02 with one holding.
func NewSnapshot() *SnapshotBuilder {
	d := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	return &SnapshotBuilder{s: model.PortfolioSnapshot{
		Date:         d,
		HoldingCount: 1,
		CalculatedAt: d.Add(9 * time.Hour),
	}}
}

// WithDate sets the snapshot date.
func (b *SnapshotBuilder) WithDate(d time.Time) *SnapshotBuilder {
	b.s.Date = d
	b.s.CalculatedAt = d.Add(9 * time.Hour)
	return b
}

// WithTotals sets value and cost and derives profit/loss.
func (b *SnapshotBuilder) WithTotals(value, cost float64) *SnapshotBuilder {
	b.s.TotalValue = value
	b.s.TotalCost = cost
	b.s.TotalProfitLoss = value - cost
	if cost != 0 {
		b.s.TotalProfitLossPct = (value - cost) / cost * 100
	}
	return b
}

// Build returns the snapshot.
func (b *SnapshotBuilder) Build() model.PortfolioSnapshot {
	return b.s
}
