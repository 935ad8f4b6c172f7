package config

import (
	"time"

	"github.com/joho/godotenv"
)

// DefaultBaseURL is the product API the explorer talks to when API_BASE_URL is unset.
// Override at build time with -ldflags "-X github.com/Checker-Finance/product-explorer/pkg/config.DefaultBaseURL=...".
var DefaultBaseURL = "https://petersenkelthepool.onrender.com/api"

// DefaultDocsURL points at the Swagger UI of the default product API.
var DefaultDocsURL = "https://petersenkelthepool.onrender.com/api-docs"

// Config holds the runtime configuration for the explorer service and CLI.
type Config struct {
	ServiceName string // e.g. "product-explorer"
	Env         string // "dev", "uat", "prod"
	LogLevel    string // "debug", "info", etc.

	Port             int
	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	HTTPBodyLimit    int
	StreamKeepAlive  time.Duration // keep below HTTPWriteTimeout

	// Remote product API
	APIBaseURL        string
	APIDocsURL        string
	APIRequestTimeout time.Duration // 0 keeps the http.Client default (no timeout)
	RateLimitRPS      int           // 0 disables client-side throttling
	RateLimitBurst    int

	// Optional NATS mirror of the request log
	NATSURL     string
	NATSSubject string
}

// Load loads configuration from environment variables and .env file if present.
func Load() *Config {
	// load .env silently (no error if missing)
	_ = godotenv.Load()

	return &Config{
		ServiceName:       GetEnv("SERVICE_NAME", "product-explorer"),
		Env:               GetEnv("ENV", "dev"),
		LogLevel:          GetEnv("LOG_LEVEL", "info"),
		Port:              GetEnvInt("EXPLORER_PORT", 9020),
		HTTPReadTimeout:   GetEnvDuration("HTTP_READ_TIMEOUT", 10*time.Second),
		HTTPWriteTimeout:  GetEnvDuration("HTTP_WRITE_TIMEOUT", 10*time.Second),
		HTTPIdleTimeout:   GetEnvDuration("HTTP_IDLE_TIMEOUT", 60*time.Second),
		HTTPBodyLimit:     GetEnvInt("HTTP_BODY_LIMIT", 1*1024*1024),
		StreamKeepAlive:   GetEnvDuration("STREAM_KEEPALIVE", 5*time.Second),
		APIBaseURL:        GetEnvURL("API_BASE_URL", DefaultBaseURL),
		APIDocsURL:        GetEnv("API_DOCS_URL", DefaultDocsURL),
		APIRequestTimeout: GetEnvDuration("API_REQUEST_TIMEOUT", 0),
		RateLimitRPS:      GetEnvInt("API_RATE_LIMIT_RPS", 0),
		RateLimitBurst:    GetEnvInt("API_RATE_LIMIT_BURST", 5),
		NATSURL:           GetEnv("NATS_URL", ""),
		NATSSubject:       GetEnv("NATS_SUBJECT", "evt.explorer.api_call.v1"),
	}
}
