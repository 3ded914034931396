package model

import "time"

// ScrapRecord is a saved article or note. Ticker is a free tag and may be empty
// or a portfolio-wide marker.
type ScrapRecord struct {
	RecordID  string    `json:"recordId"`
	Title     string    `json:"title"`
	Link      string    `json:"link"`
	Summary   string    `json:"summary"`
	Ticker    string    `json:"ticker"`
	Category  string    `json:"category"`
	Source    string    `json:"source"`
	ScrapedAt time.Time `json:"scrapedAt"`
}

// Scrap categories used by the dashboard itself.
const (
	ScrapCategoryNews       = "news"
	ScrapCategoryResearch   = "research"
	ScrapCategoryAIAnalysis = "ai-analysis"
	ScrapCategoryOther      = "other"
)

// NewsItem is one entry from an RSS feed.
type NewsItem struct {
	Title     string `json:"title"`
	Link      string `json:"link"`
	Published string `json:"published"`
	Source    string `json:"source"`
	Summary   string `json:"summary"`
}
