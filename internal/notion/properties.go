package notion

import (
	"strings"
	"time"
	"unicode/utf8"
)

// Holdings database property names.
const (
	propTicker    = "Name"
	propStockName = "StockName"
	propQuantity  = "Quantity"
	propAvgPrice  = "AvgPrice"
	propAssetType = "AssetType"
	propNote      = "Note"
	propAddedDate = "AddedDate"
)

// Scraps database property names.
const (
	propTitle     = "Name"
	propScrapTick = "Ticker"
	propCategory  = "Category"
	propSource    = "Source"
	propSummary   = "Summary"
	propLink      = "Link"
	propScrapDate = "ScrapDate"
)

// Field limits in characters.
const (
	maxTitle    = 100
	maxTicker   = 50
	maxCategory = 50
	maxSource   = 100
	maxSummary  = 1800
	maxLink     = 2000
	maxNote     = 1800
)

type textContent struct {
	Content string `json:"content"`
}

type richText struct {
	Text      *textContent `json:"text,omitempty"`
	PlainText string       `json:"plain_text,omitempty"`
}

type selectOption struct {
	Name string `json:"name"`
}

type dateValue struct {
	Start string `json:"start"`
}

type property struct {
	Title    []richText    `json:"title,omitempty"`
	RichText []richText    `json:"rich_text,omitempty"`
	Number   *float64      `json:"number,omitempty"`
	Select   *selectOption `json:"select,omitempty"`
	Date     *dateValue    `json:"date,omitempty"`
	URL      *string       `json:"url,omitempty"`
}

type page struct {
	ID          string              `json:"id"`
	Archived    bool                `json:"archived"`
	CreatedTime time.Time           `json:"created_time"`
	Properties  map[string]property `json:"properties"`
}

type queryRequest struct {
	Filter      any    `json:"filter,omitempty"`
	Sorts       []any  `json:"sorts,omitempty"`
	PageSize    int    `json:"page_size,omitempty"`
	StartCursor string `json:"start_cursor,omitempty"`
}

type queryResponse struct {
	Results    []page  `json:"results"`
	HasMore    bool    `json:"has_more"`
	NextCursor *string `json:"next_cursor"`
}

type createPageRequest struct {
	Parent     parent              `json:"parent"`
	Properties map[string]property `json:"properties"`
}

type parent struct {
	DatabaseID string `json:"database_id"`
}

type updatePageRequest struct {
	Properties map[string]property `json:"properties,omitempty"`
	Archived   *bool               `json:"archived,omitempty"`
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}

func titleProp(s string, limit int) property {
	return property{Title: []richText{{Text: &textContent{Content: truncate(s, limit)}}}}
}

func textProp(s string, limit int) property {
	return property{RichText: []richText{{Text: &textContent{Content: truncate(s, limit)}}}}
}

func numberProp(v float64) property {
	return property{Number: &v}
}

func selectProp(s string, limit int) property {
	return property{Select: &selectOption{Name: truncate(s, limit)}}
}

func dateProp(t time.Time) property {
	return property{Date: &dateValue{Start: t.Format(time.RFC3339)}}
}

func dayProp(t time.Time) property {
	return property{Date: &dateValue{Start: t.Format("2006-01-02")}}
}

func urlProp(s string) property {
	s = truncate(s, maxLink)
	return property{URL: &s}
}

func plain(parts []richText) string {
	var b strings.Builder
	for _, p := range parts {
		switch {
		case p.PlainText != "":
			b.WriteString(p.PlainText)
		case p.Text != nil:
			b.WriteString(p.Text.Content)
		}
	}
	return b.String()
}

func (p property) title() string { return plain(p.Title) }

func (p property) text() string { return plain(p.RichText) }

func (p property) number() float64 {
	if p.Number == nil {
		return 0
	}
	return *p.Number
}

func (p property) selected() string {
	if p.Select == nil {
		return ""
	}
	return p.Select.Name
}

func (p property) url() string {
	if p.URL == nil {
		return ""
	}
	return *p.URL
}

// date parses a date or date-time start value; unparseable values are zero.
func (p property) date() time.Time {
	if p.Date == nil || p.Date.Start == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999", "2006-01-02"} {
		if t, err := time.Parse(layout, p.Date.Start); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
