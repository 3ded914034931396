package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/api/request"
	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/model"
	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/service"
	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/validation"
)

// HoldingHandler handles holding CRUD requests
type HoldingHandler struct {
	portfolioService *service.PortfolioService
}

// NewHoldingHandler creates a new HoldingHandler
func NewHoldingHandler(portfolioService *service.PortfolioService) *HoldingHandler {
	return &HoldingHandler{
		portfolioService: portfolioService,
	}
}

// Holdings lists every holding as stored, without prices.
//
// Endpoint: GET /api/holding
// Response: 200 OK with []model.Holding
// Error: 503 Service Unavailable if the store is not configured or busy
func (h *HoldingHandler) Holdings(w http.ResponseWriter, r *http.Request) {
	holdings, err := h.portfolioService.GetHoldings(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, holdings)
}

// CreateHolding adds a holding. The ticker is normalized and the asset class
// guessed from it when not given.
//
// Endpoint: POST /api/holding
// Request: request.CreateHoldingRequest
// Response: 201 Created with model.Holding
// Error: 400 Bad Request on validation failure, 409 Conflict if the ticker is already held
func (h *HoldingHandler) CreateHolding(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.CreateHoldingRequest](w, r)
	if err != nil {
		respondBadRequest(w, err)
		return
	}
	if err := validation.ValidateCreateHolding(req); err != nil {
		respondServiceError(w, err)
		return
	}

	holding := model.Holding{
		Ticker:      req.Ticker,
		DisplayName: strings.TrimSpace(req.DisplayName),
		Quantity:    req.Quantity,
		AverageCost: req.AverageCost,
		AssetClass:  model.AssetClass(req.AssetClass),
		Note:        strings.TrimSpace(req.Note),
	}

	created, err := h.portfolioService.AddHolding(r.Context(), holding)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

// UpdateHolding overwrites quantity and average cost.
//
// Endpoint: PUT /api/holding/{uuid}
// Request: request.UpdateHoldingRequest
// Response: 204 No Content
// Error: 400 Bad Request on validation failure, 404 Not Found if the holding is gone
func (h *HoldingHandler) UpdateHolding(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.UpdateHoldingRequest](w, r)
	if err != nil {
		respondBadRequest(w, err)
		return
	}
	if err := validation.ValidateUpdateHolding(req); err != nil {
		respondServiceError(w, err)
		return
	}

	err = h.portfolioService.UpdateHolding(r.Context(), chi.URLParam(r, "uuid"), *req.Quantity, *req.AverageCost)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteHolding archives a holding.
//
// Endpoint: DELETE /api/holding/{uuid}
// Response: 204 No Content
// Error: 404 Not Found if the holding is gone
func (h *HoldingHandler) DeleteHolding(w http.ResponseWriter, r *http.Request) {
	if err := h.portfolioService.RemoveHolding(r.Context(), chi.URLParam(r, "uuid")); err != nil {
		respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
