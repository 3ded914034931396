package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/service"
)

// MarketHandler handles market overview requests
type MarketHandler struct {
	marketService *service.MarketService
}

// NewMarketHandler creates a new MarketHandler
func NewMarketHandler(marketService *service.MarketService) *MarketHandler {
	return &MarketHandler{
		marketService: marketService,
	}
}

// Indices returns the market index levels. Indices that could not be
// fetched are left out.
//
// Endpoint: GET /api/market/indices
// Response: 200 OK with []model.IndexSnapshot
func (h *MarketHandler) Indices(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.marketService.GetIndices(r.Context()))
}

// Crypto returns quotes for the major coins.
//
// Endpoint: GET /api/market/crypto
// Response: 200 OK with []model.QuoteSnapshot
func (h *MarketHandler) Crypto(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.marketService.GetCrypto(r.Context()))
}

// Fx returns the USD/KRW and JPY/KRW rates. Fallback rates are flagged.
//
// Endpoint: GET /api/market/fx
// Response: 200 OK with service.FxRates
func (h *MarketHandler) Fx(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.marketService.GetFxRates(r.Context()))
}

// Quote returns the latest quote for a ticker.
//
// Endpoint: GET /api/market/quote/{ticker}
// Response: 200 OK with model.QuoteSnapshot
// Error: 404 Not Found if no price is available
func (h *MarketHandler) Quote(w http.ResponseWriter, r *http.Request) {
	q, err := h.marketService.GetQuote(r.Context(), chi.URLParam(r, "ticker"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, q)
}

// History returns the daily price series with moving averages.
//
// Endpoint: GET /api/market/history/{ticker}?period=6mo
// Response: 200 OK with model.PriceHistory
// Error: 400 Bad Request for an unsupported period, 404 Not Found if no data
func (h *MarketHandler) History(w http.ResponseWriter, r *http.Request) {
	hist, err := h.marketService.GetHistory(r.Context(), chi.URLParam(r, "ticker"), r.URL.Query().Get("period"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, hist)
}
