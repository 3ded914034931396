package request

// CreateScrapRequest represents the request body for saving a scrap
type CreateScrapRequest struct {
	Title    string `json:"title"`
	Link     string `json:"link"`
	Summary  string `json:"summary"`
	Ticker   string `json:"ticker"`
	Category string `json:"category"`
	Source   string `json:"source"`
}
