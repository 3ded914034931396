package request

// CreateHoldingRequest represents the request body for adding a holding
type CreateHoldingRequest struct {
	Ticker      string  `json:"ticker"`
	DisplayName string  `json:"displayName"`
	Quantity    float64 `json:"quantity"`
	AverageCost float64 `json:"averageCost"`
	AssetClass  string  `json:"assetClass"`
	Note        string  `json:"note"`
}

// UpdateHoldingRequest overwrites quantity and average cost.
type UpdateHoldingRequest struct {
	Quantity    *float64 `json:"quantity"`
	AverageCost *float64 `json:"averageCost"`
}
