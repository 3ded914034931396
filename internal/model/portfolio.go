package model

import "time"

// ReportingCurrency is the currency every converted total is expressed in.
const ReportingCurrency = "KRW"

// ValuationRow is one holding joined with its quote. Native amounts are in
// the quote currency rounded to 2 decimals; KRW amounts are whole won.
type ValuationRow struct {
	RecordID      string     `json:"recordId"`
	Ticker        string     `json:"ticker"`
	Name          string     `json:"name"`
	AssetClass    AssetClass `json:"assetClass"`
	Price         float64    `json:"price"`
	Currency      string     `json:"currency"`
	Quantity      float64    `json:"quantity"`
	AverageCost   float64    `json:"averageCost"`
	Value         float64    `json:"value"`
	ValueKRW      float64    `json:"valueKrw"`
	CostBasis     float64    `json:"costBasis"`
	CostBasisKRW  float64    `json:"costBasisKrw"`
	ProfitLoss    float64    `json:"profitLoss"`
	ProfitLossKRW float64    `json:"profitLossKrw"`
	ProfitLossPct float64    `json:"profitLossPct"`
	ChangePct     float64    `json:"changePct"`
	Sector        string     `json:"sector"`
	Note          string     `json:"note"`
	FxRate        float64    `json:"fxRate"`
	Converted     bool       `json:"converted"`
}

// AllocationSlice is the share of total value held in one asset class.
type AllocationSlice struct {
	AssetClass AssetClass `json:"assetClass"`
	ValueKRW   float64    `json:"valueKrw"`
	WeightPct  float64    `json:"weightPct"`
}

// PortfolioSummary aggregates valuation rows. MeanChangePct is the plain
// arithmetic mean of daily change, not value-weighted.
type PortfolioSummary struct {
	TotalValue         float64           `json:"totalValue"`
	TotalCost          float64           `json:"totalCost"`
	TotalProfitLoss    float64           `json:"totalProfitLoss"`
	TotalProfitLossPct float64           `json:"totalProfitLossPct"`
	MeanChangePct      float64           `json:"meanChangePct"`
	HoldingCount       int               `json:"holdingCount"`
	Currency           string            `json:"currency"`
	Allocation         []AllocationSlice `json:"allocation"`
}

// Dashboard is the full portfolio view returned to callers.
type Dashboard struct {
	Rows        []ValuationRow   `json:"rows"`
	Summary     PortfolioSummary `json:"summary"`
	USDKRW      FxRate           `json:"usdKrw"`
	JPYKRW      FxRate           `json:"jpyKrw"`
	GeneratedAt time.Time        `json:"generatedAt"`
}

// PortfolioSnapshot is a daily persisted summary.
type PortfolioSnapshot struct {
	Date               time.Time `json:"date"`
	TotalValue         float64   `json:"totalValue"`
	TotalCost          float64   `json:"totalCost"`
	TotalProfitLoss    float64   `json:"totalProfitLoss"`
	TotalProfitLossPct float64   `json:"totalProfitLossPct"`
	HoldingCount       int       `json:"holdingCount"`
	CalculatedAt       time.Time `json:"calculatedAt"`
}
