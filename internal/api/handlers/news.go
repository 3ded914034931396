package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/service"
)

// NewsHandler serves headline listings. Feed failures give empty lists.
type NewsHandler struct {
	newsService *service.NewsService
}

// NewNewsHandler creates a new NewsHandler
func NewNewsHandler(newsService *service.NewsService) *NewsHandler {
	return &NewsHandler{
		newsService: newsService,
	}
}

// Market handles GET /api/news/market?max=
func (h *NewsHandler) Market(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "max")
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, h.newsService.GetMarketNews(r.Context(), limit))
}

// Crypto handles GET /api/news/crypto?max=
func (h *NewsHandler) Crypto(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "max")
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, h.newsService.GetCryptoNews(r.Context(), limit))
}

// Asset handles GET /api/news/asset/{ticker}?name=&max=
func (h *NewsHandler) Asset(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "max")
	if err != nil {
		respondServiceError(w, err)
		return
	}
	items, err := h.newsService.GetAssetNews(r.Context(), chi.URLParam(r, "ticker"), r.URL.Query().Get("name"), limit)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, items)
}

// Research handles GET /api/news/research?q=&max=
func (h *NewsHandler) Research(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "max")
	if err != nil {
		respondServiceError(w, err)
		return
	}
	items, err := h.newsService.GetResearchNews(r.Context(), r.URL.Query().Get("q"), limit)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, items)
}
