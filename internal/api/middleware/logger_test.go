package middleware_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/api/middleware"
)

func TestLogger(t *testing.T) {
	t.Run("logs status and strips newlines from the path", func(t *testing.T) {
		var buf bytes.Buffer
		log := zerolog.New(&buf)

		next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})

		req := httptest.NewRequest(http.MethodGet, "/api/scrap", nil)
		req.URL.Path = "/api/scrap\r\nfake entry"
		w := httptest.NewRecorder()
		middleware.Logger(log)(next).ServeHTTP(w, req)

		var entry map[string]any
		if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
			t.Fatalf("Expected one JSON log line, got %q", buf.String())
		}
		if entry["path"] != "/api/scrapfake entry" {
			t.Errorf("Expected sanitized path, got %v", entry["path"])
		}
		if entry["status"] != float64(http.StatusNotFound) {
			t.Errorf("Expected status 404, got %v", entry["status"])
		}
		if entry["level"] != "warn" {
			t.Errorf("Expected warn level, got %v", entry["level"])
		}
	})

	t.Run("defaults to 200 when handler does not write a header", func(t *testing.T) {
		var buf bytes.Buffer
		next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte("ok")) //nolint:errcheck // test handler
		})

		w := httptest.NewRecorder()
		middleware.Logger(zerolog.New(&buf))(next).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		var entry map[string]any
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.Unmarshal(buf.Bytes(), &entry)
		if entry["status"] != float64(http.StatusOK) {
			t.Errorf("Expected status 200, got %v", entry["status"])
		}
	})
}
