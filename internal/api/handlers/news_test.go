package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/api/handlers"
	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/model"
	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/testutil"
)

func setupNewsHandler(t *testing.T) (*handlers.NewsHandler, *testutil.MockNews) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	svcs := testutil.NewTestServices(t, db, testutil.NewMockStore(), testutil.NewMockMarket(), nil)
	svcs.NewsSource.Items = []model.NewsItem{
		{Title: "Rates hold", Link: "https://news.example/1", Source: "Reuters"},
		{Title: "Chips rally", Link: "https://news.example/2", Source: "Bloomberg"},
	}
	return handlers.NewNewsHandler(svcs.News), svcs.NewsSource
}

// TestNewsHandler tests the headline endpoints.
//
// WHY: Feeds fail often. The endpoints must answer with a JSON list and
// apply the default limit when max is absent.
func TestNewsHandler(t *testing.T) {
	t.Run("market uses default max", func(t *testing.T) {
		handler, news := setupNewsHandler(t)

		w := httptest.NewRecorder()
		handler.Market(w, httptest.NewRequest(http.MethodGet, "/api/news/market", nil))

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d", w.Code)
		}
		if news.LastMax != 12 {
			t.Errorf("Expected default max 12, got %d", news.LastMax)
		}
		if got := testutil.DecodeJSON[[]model.NewsItem](t, w); len(got) != 2 {
			t.Errorf("Expected 2 items, got %d", len(got))
		}
	})

	t.Run("crypto honors max", func(t *testing.T) {
		handler, news := setupNewsHandler(t)

		w := httptest.NewRecorder()
		handler.Crypto(w, testutil.NewRequestWithQueryParams(http.MethodGet, "/api/news/crypto", map[string]string{"max": "1"}))

		if news.LastMax != 1 {
			t.Errorf("Expected max 1, got %d", news.LastMax)
		}
		if got := testutil.DecodeJSON[[]model.NewsItem](t, w); len(got) != 1 {
			t.Errorf("Expected 1 item, got %d", len(got))
		}
	})

	t.Run("asset normalizes ticker", func(t *testing.T) {
		handler, news := setupNewsHandler(t)

		w := httptest.NewRecorder()
		handler.Asset(w, testutil.NewRequestWithURLParams(http.MethodGet, "/api/news/asset/btc", map[string]string{"ticker": "btc"}))

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d", w.Code)
		}
		if news.LastQuery != "BTC-USD" {
			t.Errorf("Expected BTC-USD, got %s", news.LastQuery)
		}
	})

	t.Run("research requires q", func(t *testing.T) {
		handler, _ := setupNewsHandler(t)

		w := httptest.NewRecorder()
		handler.Research(w, httptest.NewRequest(http.MethodGet, "/api/news/research", nil))

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", w.Code)
		}
	})

	t.Run("bad max", func(t *testing.T) {
		handler, _ := setupNewsHandler(t)

		w := httptest.NewRecorder()
		handler.Market(w, testutil.NewRequestWithQueryParams(http.MethodGet, "/api/news/market", map[string]string{"max": "x"}))

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", w.Code)
		}
	})
}
