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

// ScrapHandler handles research scrap requests
type ScrapHandler struct {
	scrapService *service.ScrapService
}

// NewScrapHandler creates a new ScrapHandler
func NewScrapHandler(scrapService *service.ScrapService) *ScrapHandler {
	return &ScrapHandler{
		scrapService: scrapService,
	}
}

// Scraps lists saved scraps.
//
// Endpoint: GET /api/scrap?ticker=&category=&sort=newest|oldest|ticker&limit=
// Response: 200 OK with []model.ScrapRecord
// Error: 400 Bad Request for an unknown sort or bad limit
func (h *ScrapHandler) Scraps(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if err := validation.ValidateScrapSort(q.Get("sort")); err != nil {
		respondServiceError(w, err)
		return
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		respondServiceError(w, err)
		return
	}

	scraps, err := h.scrapService.GetScraps(r.Context(), service.ScrapFilter{
		Ticker:   strings.TrimSpace(q.Get("ticker")),
		Category: strings.TrimSpace(q.Get("category")),
		Sort:     q.Get("sort"),
		Limit:    limit,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, scraps)
}

// CreateScrap saves a scrap. Long fields are truncated by the store.
//
// Endpoint: POST /api/scrap
// Request: request.CreateScrapRequest
// Response: 201 Created with model.ScrapRecord
// Error: 400 Bad Request on validation failure, 409 Conflict if the link is already saved
func (h *ScrapHandler) CreateScrap(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.CreateScrapRequest](w, r)
	if err != nil {
		respondBadRequest(w, err)
		return
	}
	if err := validation.ValidateCreateScrap(req); err != nil {
		respondServiceError(w, err)
		return
	}

	created, err := h.scrapService.AddScrap(r.Context(), model.ScrapRecord{
		Title:    strings.TrimSpace(req.Title),
		Link:     strings.TrimSpace(req.Link),
		Summary:  req.Summary,
		Ticker:   strings.TrimSpace(req.Ticker),
		Category: strings.TrimSpace(req.Category),
		Source:   strings.TrimSpace(req.Source),
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

// DeleteScrap archives a scrap.
//
// Endpoint: DELETE /api/scrap/{uuid}
// Response: 204 No Content
// Error: 404 Not Found if the scrap is gone
func (h *ScrapHandler) DeleteScrap(w http.ResponseWriter, r *http.Request) {
	if err := h.scrapService.RemoveScrap(r.Context(), chi.URLParam(r, "uuid")); err != nil {
		respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
