package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	BlobBackendLocal = "local"
	BlobBackendGCS   = "gcs"
)

type Config struct {
	Addr               string
	DBPath             string
	LogLevel           string
	JWTSecret          string
	JWTIssuer          string
	CORSAllowedOrigins []string
	FrontendURL        string
	OpenAIAPIKey       string
	OpenAIBaseURL      string
	OpenAIModel        string
	CompletionTimeout  time.Duration
	BlobBackend        string
	BlobDir            string
	BlobPublicBaseURL  string
	GCSBucket          string
	CleanupWorkerCount int
	CleanupQueueSize   int
	MaxUploadBytes     int64
}

// Load reads configuration from a .env file (if present) and environment variables,
// applying sensible defaults when values are missing or invalid.
func Load() Config {
	// Ignore error so the app still starts when .env is absent in production.
	_ = godotenv.Load()

	return Config{
		Addr:               envOr("ADDR", ":8080"),
		DBPath:             envOr("DB_PATH", "file:brainyflash.db"),
		LogLevel:           envOr("LOG_LEVEL", "INFO"),
		JWTSecret:          os.Getenv("JWT_SECRET"),
		JWTIssuer:          os.Getenv("JWT_ISSUER"),
		CORSAllowedOrigins: envListOr("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		FrontendURL:        envOr("FRONTEND_URL", "http://localhost:3000"),
		OpenAIAPIKey:       os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:      envOr("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIModel:        envOr("OPENAI_MODEL", "gpt-3.5-turbo"),
		CompletionTimeout:  time.Duration(envIntOr("COMPLETION_TIMEOUT_SECONDS", 20)) * time.Second,
		BlobBackend:        strings.ToLower(envOr("BLOB_BACKEND", BlobBackendLocal)),
		BlobDir:            envOr("BLOB_DIR", "./uploads"),
		BlobPublicBaseURL:  os.Getenv("BLOB_PUBLIC_BASE_URL"),
		GCSBucket:          os.Getenv("GCS_BUCKET"),
		CleanupWorkerCount: envIntOr("CLEANUP_WORKER_COUNT", 2),
		CleanupQueueSize:   envIntOr("CLEANUP_QUEUE_SIZE", 64),
		MaxUploadBytes:     int64(envIntOr("MAX_UPLOAD_BYTES", 10<<20)),
	}
}

// Validate checks the configuration and returns every problem found, joined.
func (c Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Addr) == "" {
		errs = append(errs, errors.New("ADDR cannot be empty"))
	}
	if strings.TrimSpace(c.DBPath) == "" {
		errs = append(errs, errors.New("DB_PATH cannot be empty"))
	}
	switch strings.ToUpper(c.LogLevel) {
	case "DEBUG", "INFO", "WARN", "ERROR":
	default:
		errs = append(errs, fmt.Errorf("LOG_LEVEL must be one of DEBUG, INFO, WARN, ERROR (got %q)", c.LogLevel))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET cannot be empty"))
	}
	if c.CompletionTimeout <= 0 {
		errs = append(errs, errors.New("COMPLETION_TIMEOUT_SECONDS must be positive"))
	}
	switch c.BlobBackend {
	case BlobBackendLocal:
		if c.BlobDir == "" {
			errs = append(errs, errors.New("BLOB_DIR cannot be empty when BLOB_BACKEND=local"))
		}
	case BlobBackendGCS:
		if c.GCSBucket == "" {
			errs = append(errs, errors.New("GCS_BUCKET cannot be empty when BLOB_BACKEND=gcs"))
		}
	default:
		errs = append(errs, fmt.Errorf("BLOB_BACKEND must be local or gcs (got %q)", c.BlobBackend))
	}
	if c.CleanupWorkerCount <= 0 {
		errs = append(errs, errors.New("CLEANUP_WORKER_COUNT must be positive"))
	}
	if c.CleanupQueueSize <= 0 {
		errs = append(errs, errors.New("CLEANUP_QUEUE_SIZE must be positive"))
	}
	if c.MaxUploadBytes <= 0 {
		errs = append(errs, errors.New("MAX_UPLOAD_BYTES must be positive"))
	}

	return errors.Join(errs...)
}

// BlobBaseURL is the public URL prefix of stored objects. The local backend defaults to
// the server's own /files route; GCS defaults to the bucket's public URL.
func (c Config) BlobBaseURL() string {
	if c.BlobPublicBaseURL != "" || c.BlobBackend != BlobBackendLocal {
		return c.BlobPublicBaseURL
	}
	host := c.Addr
	if strings.HasPrefix(host, ":") {
		host = "localhost" + host
	}
	return "http://" + host + "/files"
}

// CompletionEnabled reports whether a text-completion API key is configured.
func (c Config) CompletionEnabled() bool {
	return c.OpenAIAPIKey != ""
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		log.Printf("invalid value for %s=%q, using default %d", key, v, def)
	}
	return def
}

func envListOr(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
