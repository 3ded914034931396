package handlers

import (
	"net/http"
	"time"

	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/model"
	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/service"
	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/validation"
)

// PortfolioHandler handles portfolio-related HTTP requests
type PortfolioHandler struct {
	portfolioService *service.PortfolioService
}

// NewPortfolioHandler creates a new PortfolioHandler
func NewPortfolioHandler(portfolioService *service.PortfolioService) *PortfolioHandler {
	return &PortfolioHandler{
		portfolioService: portfolioService,
	}
}

// Dashboard values every holding and returns the rows with their totals.
// Holdings without a price are left out of both.
//
// Endpoint: GET /api/portfolio
// Response: 200 OK with model.Dashboard
// Error: 503 Service Unavailable if the store is not configured or busy
func (h *PortfolioHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.portfolioService.GetDashboard(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dashboard)
}

// PortfolioHistoryResponse is the stored daily snapshots in a date range.
type PortfolioHistoryResponse struct {
	StartDate string                    `json:"start_date"`
	EndDate   string                    `json:"end_date"`
	Snapshots []model.PortfolioSnapshot `json:"snapshots"`
}

// History returns daily snapshots, oldest first. Both dates are optional
// and default to the last 30 days.
//
// Endpoint: GET /api/portfolio/history?start_date=YYYY-MM-DD&end_date=YYYY-MM-DD
// Response: 200 OK with PortfolioHistoryResponse
// Error: 400 Bad Request for a malformed date or start after end
func (h *PortfolioHandler) History(w http.ResponseWriter, r *http.Request) {
	startDate, endDate, err := validation.ParseDateRange(
		r.URL.Query().Get("start_date"),
		r.URL.Query().Get("end_date"),
		time.Now(),
	)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	snapshots, err := h.portfolioService.GetHistory(startDate, endDate)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, PortfolioHistoryResponse{
		StartDate: startDate.Format("2006-01-02"),
		EndDate:   endDate.Format("2006-01-02"),
		Snapshots: snapshots,
	})
}
