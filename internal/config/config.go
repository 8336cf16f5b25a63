package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config aggregates runtime configuration for the DocVault API.
type Config struct {
	Server   ServerConfig
	Postgres PostgresConfig
	Blob     BlobConfig
	MinIO    MinIOConfig
	Auth     AuthConfig
	Quota    QuotaConfig
	Search   SearchConfig
	Enrich   EnrichConfig
	OpenAI   OpenAIConfig
	Cache    CacheConfig
	Metrics  MetricsConfig
}

// ServerConfig parameterizes the HTTP server.
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// Address returns the listen address in host:port form.
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// PostgresConfig contains PostgreSQL connection details.
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// DSN returns the PostgreSQL DSN string.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.Database, p.SSLMode)
}

// BlobConfig selects the blob backend variant.
type BlobConfig struct {
	// Backend is either "minio" or "local".
	Backend   string
	LocalRoot string
}

// MinIOConfig carries MinIO connection and bucket information.
type MinIOConfig struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	UseSSL          bool
	Region          string
}

// AuthConfig groups authentication-related settings.
type AuthConfig struct {
	AccessTokenSecret string
	AccessTokenTTL    time.Duration
	BcryptCost        int
}

// QuotaConfig caps per-owner storage consumption.
type QuotaConfig struct {
	CeilingBytes int64
}

// SearchConfig tunes the semantic ranker. Both values are deployment
// parameters, not fixed contracts; the operating point has moved between
// 0.5/20 and 0.78/3 over the system's history.
type SearchConfig struct {
	Threshold float64
	Limit     int
}

// EnrichConfig controls the best-effort enrichment pipeline.
type EnrichConfig struct {
	// EligibleTypes are MIME substrings that qualify a file for enrichment.
	EligibleTypes []string
	Timeout       time.Duration
}

// OpenAIConfig configures the embedding/keyword/summary collaborators.
type OpenAIConfig struct {
	APIKey     string
	BaseURL    string
	EmbedModel string
	ChatModel  string
	Timeout    time.Duration
}

// CacheConfig sizes the in-memory file record cache.
type CacheConfig struct {
	MaxEntries int
	TTL        time.Duration
}

// MetricsConfig groups observability settings.
type MetricsConfig struct {
	PrometheusPath string
}

// Load reads configuration values from environment variables, applying defaults.
func Load() (Config, error) {
	cfg := Config{
		Server: ServerConfig{
			Host:         getString("DOCVAULT_API_HOST", "0.0.0.0"),
			Port:         getInt("DOCVAULT_API_PORT", 8080),
			ReadTimeout:  getDuration("DOCVAULT_API_READ_TIMEOUT", 15*time.Second),
			WriteTimeout: getDuration("DOCVAULT_API_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:  getDuration("DOCVAULT_API_IDLE_TIMEOUT", 60*time.Second),
		},
		Postgres: PostgresConfig{
			Host:     getString("POSTGRES_HOST", "localhost"),
			Port:     getInt("POSTGRES_PORT", 5432),
			User:     getString("POSTGRES_USER", "docvault_app"),
			Password: getString("POSTGRES_PASSWORD", "change-me"),
			Database: getString("POSTGRES_DB", "docvault"),
			SSLMode:  strings.ToLower(getString("POSTGRES_SSL_MODE", "disable")),
		},
		Blob: BlobConfig{
			Backend:   strings.ToLower(getString("BLOB_BACKEND", "minio")),
			LocalRoot: getString("BLOB_LOCAL_ROOT", "./data/blobs"),
		},
		MinIO: MinIOConfig{
			Endpoint:        getString("MINIO_ENDPOINT", "localhost:9000"),
			AccessKeyID:     getString("MINIO_ROOT_USER", "docvault"),
			SecretAccessKey: getString("MINIO_ROOT_PASSWORD", "change-me-strong-password"),
			Bucket:          getString("MINIO_BUCKET", "docvault"),
			UseSSL:          getBool("MINIO_USE_SSL", false),
			Region:          getString("MINIO_REGION", ""),
		},
		Auth: loadAuthConfig(),
		Quota: QuotaConfig{
			CeilingBytes: getInt64("DOCVAULT_QUOTA_BYTES", 15*1024*1024*1024),
		},
		Search: SearchConfig{
			Threshold: getFloat("DOCVAULT_SEARCH_THRESHOLD", 0.5),
			Limit:     getInt("DOCVAULT_SEARCH_LIMIT", 20),
		},
		Enrich: EnrichConfig{
			EligibleTypes: getStringSlice("DOCVAULT_ENRICH_TYPES",
				[]string{"pdf", "text", "document", "msword", "officedocument"}),
			Timeout: getDuration("DOCVAULT_ENRICH_TIMEOUT", 30*time.Second),
		},
		OpenAI: OpenAIConfig{
			APIKey:     getString("OPENAI_API_KEY", ""),
			BaseURL:    getString("OPENAI_BASE_URL", "https://api.openai.com"),
			EmbedModel: getString("OPENAI_EMBED_MODEL", "text-embedding-3-small"),
			ChatModel:  getString("OPENAI_CHAT_MODEL", "gpt-3.5-turbo"),
			Timeout:    getDuration("OPENAI_TIMEOUT", 30*time.Second),
		},
		Cache: CacheConfig{
			MaxEntries: getInt("DOCVAULT_CACHE_SIZE", 512),
			TTL:        getDuration("DOCVAULT_CACHE_TTL", 5*time.Minute),
		},
		Metrics: MetricsConfig{
			PrometheusPath: getString("DOCVAULT_METRICS_PATH", "/metrics"),
		},
	}

	if cfg.Blob.Backend != "minio" && cfg.Blob.Backend != "local" {
		return Config{}, fmt.Errorf("unknown blob backend %q", cfg.Blob.Backend)
	}
	if cfg.Quota.CeilingBytes <= 0 {
		return Config{}, fmt.Errorf("quota ceiling must be positive, got %d", cfg.Quota.CeilingBytes)
	}
	if cfg.Search.Limit <= 0 {
		return Config{}, fmt.Errorf("search limit must be positive, got %d", cfg.Search.Limit)
	}

	return cfg, nil
}

func getString(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getInt64(key string, fallback int64) int64 {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseInt(val, 10, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func getFloat(key string, fallback float64) float64 {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseFloat(val, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if val, ok := os.LookupEnv(key); ok {
		val = strings.ToLower(strings.TrimSpace(val))
		switch val {
		case "1", "true", "t", "yes", "y":
			return true
		case "0", "false", "f", "no", "n":
			return false
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getStringSlice(key string, fallback []string) []string {
	val, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

func loadAuthConfig() AuthConfig {
	cost := getInt("DOCVAULT_AUTH_BCRYPT_COST", 12)
	if cost < 4 || cost > 31 {
		cost = 12
	}

	return AuthConfig{
		AccessTokenSecret: getString("DOCVAULT_JWT_SECRET", "change-me-to-a-32-byte-secret"),
		AccessTokenTTL:    getDuration("DOCVAULT_AUTH_ACCESS_TOKEN_TTL", 24*time.Hour),
		BcryptCost:        cost,
	}
}
