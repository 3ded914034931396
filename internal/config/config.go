package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fernet/fernet-go"
	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	CORS     CORSConfig
	Notion   NotionConfig
	Gemini   GeminiConfig
	Cache    CacheConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Log      LogConfig
	Market   MarketConfig
	Snapshot SnapshotConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port string
	Host string
	Addr string // Combined host:port for convenience
	// RequireAPIKey guards write routes with the INTERNAL_API_KEY check.
	RequireAPIKey bool
}

// DatabaseConfig holds the location of the local snapshot database
type DatabaseConfig struct {
	Path string
}

// CORSConfig holds CORS-specific configuration
type CORSConfig struct {
	AllowedOrigins []string
}

// NotionConfig holds the document store credentials.
// Empty values mean the corresponding piece is not configured.
type NotionConfig struct {
	APIKey         string
	PortfolioDBID  string
	ScrapDBID      string
	BaseURL        string
	RequestTimeout time.Duration
	MaxAttempts    int
	InitialBackoff time.Duration
}

// GeminiConfig holds the report generation settings
type GeminiConfig struct {
	APIKey   string
	Models   []string
	Language string
	Timeout  time.Duration
}

// CacheConfig holds per-operation time-to-live values
type CacheConfig struct {
	QuoteTTL    time.Duration
	FxTTL       time.Duration
	IndicesTTL  time.Duration
	HistoryTTL  time.Duration
	NewsTTL     time.Duration
	HoldingsTTL time.Duration
	ScrapsTTL   time.Duration
	ProfileTTL  time.Duration
}

// RedisConfig selects the shared cache backend. An empty Addr keeps the cache in memory.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// KafkaConfig configures change event publishing. No brokers disables publishing.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// LogConfig holds logger settings
type LogConfig struct {
	Level  string
	Format string
}

// MarketConfig holds quote fetching settings
type MarketConfig struct {
	QuoteConcurrency int
	QuoteTimeout     time.Duration
	NewsTimeout      time.Duration
}

// SnapshotConfig holds the optional cron schedule for daily snapshots
type SnapshotConfig struct {
	Schedule string
}

// DefaultModels is the report model candidate list, tried in order.
var DefaultModels = []string{
	"gemini-2.0-flash",
	"gemini-2.0-flash-lite",
	"gemini-1.5-flash",
	"gemini-1.5-flash-latest",
	"gemini-1.5-pro",
	"gemini-pro",
}

// Load reads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	secretKey := os.Getenv("CONFIG_SECRET_KEY")

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "5001"),
			Host: getEnv("SERVER_HOST", "localhost"),

			RequireAPIKey: os.Getenv("INTERNAL_API_KEY") != "",
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "./data/dashboard.db"),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{
				"http://localhost:3000",
				"http://localhost",
			}),
		},
		Notion: NotionConfig{
			APIKey:         getSecret("NOTION_API_KEY", secretKey),
			PortfolioDBID:  getSecret("NOTION_PORTFOLIO_DB_ID", secretKey),
			ScrapDBID:      getSecret("NOTION_SCRAP_DB_ID", secretKey),
			BaseURL:        getEnv("NOTION_BASE_URL", "https://api.notion.com"),
			RequestTimeout: 20 * time.Second,
			MaxAttempts:    3,
			InitialBackoff: time.Second,
		},
		Gemini: GeminiConfig{
			APIKey:   getSecret("GEMINI_API_KEY", secretKey),
			Models:   getEnvList("GEMINI_MODELS", DefaultModels),
			Language: getEnv("REPORT_LANGUAGE", "Korean"),
			Timeout:  60 * time.Second,
		},
		Cache: CacheConfig{
			QuoteTTL:    getEnvSeconds("CACHE_QUOTE_TTL", 300),
			FxTTL:       getEnvSeconds("CACHE_FX_TTL", 600),
			IndicesTTL:  getEnvSeconds("CACHE_INDICES_TTL", 300),
			HistoryTTL:  getEnvSeconds("CACHE_HISTORY_TTL", 300),
			NewsTTL:     getEnvSeconds("CACHE_NEWS_TTL", 300),
			HoldingsTTL: getEnvSeconds("CACHE_HOLDINGS_TTL", 60),
			ScrapsTTL:   getEnvSeconds("CACHE_SCRAPS_TTL", 60),
			ProfileTTL:  getEnvSeconds("CACHE_PROFILE_TTL", 86400),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getSecret("REDIS_PASSWORD", secretKey),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Kafka: KafkaConfig{
			Brokers: getEnvList("KAFKA_BROKERS", nil),
			Topic:   getEnv("KAFKA_TOPIC", "dashboard.changes"),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Market: MarketConfig{
			QuoteConcurrency: getEnvInt("QUOTE_CONCURRENCY", 4),
			QuoteTimeout:     12 * time.Second,
			NewsTimeout:      15 * time.Second,
		},
		Snapshot: SnapshotConfig{
			Schedule: getEnv("SNAPSHOT_SCHEDULE", ""),
		},
	}

	if config.Market.QuoteConcurrency < 1 {
		return nil, fmt.Errorf("QUOTE_CONCURRENCY must be at least 1, got %d", config.Market.QuoteConcurrency)
	}

	// Combine host and port
	config.Server.Addr = fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port)

	return config, nil
}

// NotionReady reports whether the key and both database IDs are present.
func (c *Config) NotionReady() bool {
	return c.Notion.APIKey != "" && c.Notion.PortfolioDBID != "" && c.Notion.ScrapDBID != ""
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getSecret reads a credential. Template placeholders count as unset, and values
// prefixed with "fernet:" are decrypted with the secret key.
func getSecret(key, secretKey string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if IsPlaceholder(value) {
		return ""
	}
	if token, ok := strings.CutPrefix(value, "fernet:"); ok {
		return decrypt(token, secretKey)
	}
	return value
}

// IsPlaceholder reports whether a value is empty or still holds the sample .env text.
func IsPlaceholder(value string) bool {
	v := strings.ToLower(strings.TrimSpace(value))
	return v == "" || strings.HasPrefix(v, "your_") || strings.HasPrefix(v, "secret_your")
}

func decrypt(token, secretKey string) string {
	if secretKey == "" {
		return ""
	}
	keys, err := fernet.DecodeKeys(secretKey)
	if err != nil {
		return ""
	}
	plain := fernet.VerifyAndDecrypt([]byte(token), 0, keys)
	if plain == nil {
		return ""
	}
	return string(plain)
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnvInt(key string, defaultValue int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return n
}

func getEnvSeconds(key string, defaultSeconds int) time.Duration {
	return time.Duration(getEnvInt(key, defaultSeconds)) * time.Second
}
