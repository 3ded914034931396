package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/cache"
	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Database: config.DatabaseConfig{Path: filepath.Join(t.TempDir(), "data", "dashboard.db")},
		CORS:     config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}},
		Gemini:   config.GeminiConfig{Models: config.DefaultModels, Timeout: time.Second},
		Cache:    config.CacheConfig{QuoteTTL: time.Minute},
		Kafka:    config.KafkaConfig{Topic: "dashboard.changes"},
		Market:   config.MarketConfig{QuoteConcurrency: 2, QuoteTimeout: time.Second, NewsTimeout: time.Second},
	}
}

// TestNew_WithoutCredentials checks that a bare configuration still starts.
//
// WHY: The dashboard must come up before Notion, Gemini, Redis or Kafka are
// configured so the status endpoint can tell the user what is missing.
func TestNew_WithoutCredentials(t *testing.T) {
	a, err := New(context.Background(), testConfig(t), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })

	assert.Equal(t, "memory", a.Cache.Backend())
	assert.False(t, a.Publisher.Enabled())
	assert.Equal(t, 0, a.Scheduler.Len())

	w := httptest.NewRecorder()
	a.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/system/status", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"fully_ready":false`)
}

func TestNew_SnapshotSchedule(t *testing.T) {
	cfg := testConfig(t)

	cfg.Snapshot.Schedule = "0 18 * * 1-5"
	a, err := New(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	assert.Equal(t, 1, a.Scheduler.Len())

	cfg = testConfig(t)
	cfg.Snapshot.Schedule = "every day"
	_, err = New(context.Background(), cfg, zerolog.Nop())
	assert.Error(t, err)
}

// TestCacheTTLs checks that the default configuration caches every operation.
//
// WHY: An operation without a TTL silently calls through on every request.
func TestCacheTTLs(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	ttls := cacheTTLs(cfg.Cache)
	for _, op := range cache.Operations {
		assert.Positive(t, ttls[op], "operation %s", op)
	}
}
