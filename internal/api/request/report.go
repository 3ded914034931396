package request

// GenerateReportRequest holds the optional steering for a report.
type GenerateReportRequest struct {
	Focus          []string `json:"focus"`
	RiskPreference string   `json:"riskPreference"`
	Extra          string   `json:"extra"`
}

// SaveReportRequest saves a generated report as a scrap.
type SaveReportRequest struct {
	Text  string `json:"text"`
	Model string `json:"model"`
}
