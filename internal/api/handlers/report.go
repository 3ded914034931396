package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/api/request"
	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/service"
	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/validation"
)

// ReportHandler handles AI briefing requests
type ReportHandler struct {
	reportService *service.ReportService
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reportService *service.ReportService) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
	}
}

// Generate produces a briefing. Generation problems are not HTTP errors:
// the report comes back with a non-ok outcome and a diagnostic text.
//
// Endpoint: POST /api/report
// Request: request.GenerateReportRequest (optional body)
// Response: 200 OK with model.Report
// Error: 400 Bad Request on validation failure
func (h *ReportHandler) Generate(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.GenerateReportRequest](w, r)
	if err != nil && !errors.Is(err, io.EOF) {
		respondBadRequest(w, err)
		return
	}
	if err := validation.ValidateGenerateReport(req); err != nil {
		respondServiceError(w, err)
		return
	}

	rep := h.reportService.Generate(r.Context(), service.ReportOptions{
		Focus:          req.Focus,
		RiskPreference: req.RiskPreference,
		Extra:          req.Extra,
	})
	respondJSON(w, http.StatusOK, rep)
}

// Save stores a report as an ai-analysis scrap.
//
// Endpoint: POST /api/report/save
// Request: request.SaveReportRequest
// Response: 201 Created with model.ScrapRecord
// Error: 400 Bad Request on empty text
func (h *ReportHandler) Save(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.SaveReportRequest](w, r)
	if err != nil {
		respondBadRequest(w, err)
		return
	}
	if err := validation.ValidateSaveReport(req); err != nil {
		respondServiceError(w, err)
		return
	}

	saved, err := h.reportService.Save(r.Context(), req.Text, req.Model)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, saved)
}

// History returns the latest saved reports.
//
// Endpoint: GET /api/report/history
// Response: 200 OK with []model.ScrapRecord
func (h *ReportHandler) History(w http.ResponseWriter, r *http.Request) {
	history, err := h.reportService.History(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, history)
}

// Attempts returns the latest logged generation attempts.
//
// Endpoint: GET /api/report/attempts?limit=
// Response: 200 OK with []repository.ReportLogEntry
func (h *ReportHandler) Attempts(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if limit == 0 {
		limit = 20
	}
	attempts, err := h.reportService.RecentAttempts(limit)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, attempts)
}
