package middleware

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/api/response"
)

// timeTokenWindow is how long one time token stays valid. The previous
// window is also accepted so a token minted just before a boundary works.
const timeTokenWindow = 5 * time.Minute

// GenerateTimeToken returns the HMAC-SHA256 of the current time window keyed
// with apiKey, hex encoded.
func GenerateTimeToken(apiKey string) string {
	return timeToken(apiKey, time.Now())
}

func timeToken(apiKey string, at time.Time) string {
	window := at.Unix() / int64(timeTokenWindow.Seconds())
	mac := hmac.New(sha256.New, []byte(apiKey))
	mac.Write([]byte(strconv.FormatInt(window, 10)))
	return hex.EncodeToString(mac.Sum(nil))
}

func validTimeToken(apiKey, token string) bool {
	now := time.Now()
	for _, at := range []time.Time{now, now.Add(-timeTokenWindow)} {
		if hmac.Equal([]byte(token), []byte(timeToken(apiKey, at))) {
			return true
		}
	}
	return false
}

// APIKeyMiddleware requires the X-API-Key header to match INTERNAL_API_KEY
// and X-Time-Token to be a current GenerateTimeToken value.
// Returns 401 Unauthorized on a missing or wrong header and
// 500 Internal Server Error when INTERNAL_API_KEY is not set.
//
// Example usage in router:
//
//	r.With(middleware.APIKeyMiddleware).Post("/", handler.CreateHolding)
func APIKeyMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		expected := os.Getenv("INTERNAL_API_KEY")
		if expected == "" {
			response.RespondError(w, http.StatusInternalServerError, "authentication error", "Authentication not loaded")
			return
		}

		key := r.Header.Get("X-API-Key")
		if key == "" {
			response.RespondError(w, http.StatusUnauthorized, "unauthorized", "Missing API key")
			return
		}
		if !hmac.Equal([]byte(key), []byte(expected)) {
			response.RespondError(w, http.StatusUnauthorized, "unauthorized", "Invalid API key")
			return
		}

		token := r.Header.Get("X-Time-Token")
		if token == "" {
			response.RespondError(w, http.StatusUnauthorized, "unauthorized", "Missing Time token")
			return
		}
		if !validTimeToken(expected, token) {
			response.RespondError(w, http.StatusUnauthorized, "unauthorized", "Time token is invalid or expired")
			return
		}

		next.ServeHTTP(w, r)
	})
}
