package model

import "time"

// ConnectionStatus reports which pieces of document store configuration are present.
type ConnectionStatus struct {
	APIKey      bool `json:"api_key"`
	PortfolioDB bool `json:"portfolio_db"`
	ScrapDB     bool `json:"scrap_db"`
	FullyReady  bool `json:"fully_ready"`
}

// SystemStatus combines configuration and backend health for the status endpoint.
type SystemStatus struct {
	Notion       ConnectionStatus `json:"notion"`
	ReportReady  bool             `json:"report_ready"`
	ReportModels []string         `json:"report_models"`
	CacheBackend string           `json:"cache_backend"`
	Events       bool             `json:"events"`
	Database     string           `json:"database"`
}

// ReportOutcome classifies how a report request ended.
type ReportOutcome string

const (
	ReportOK                ReportOutcome = "ok"
	ReportNotConfigured     ReportOutcome = "not-configured"
	ReportQuotaExhausted    ReportOutcome = "quota-exhausted"
	ReportUnavailable       ReportOutcome = "unavailable"
	ReportCredentialInvalid ReportOutcome = "credential-invalid"
	ReportFailed            ReportOutcome = "failed"
)

// Report is the result of a generation attempt. On failure Text holds a
// diagnostic message and Model is empty.
type Report struct {
	Text        string        `json:"text"`
	HTML        string        `json:"html,omitempty"`
	Model       string        `json:"model,omitempty"`
	Outcome     ReportOutcome `json:"outcome"`
	GeneratedAt time.Time     `json:"generatedAt"`
}
