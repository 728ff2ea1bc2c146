package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// GeminiKeyPlaceholder is the value shipped in the sample .env file. It is treated
// the same as an absent key.
const GeminiKeyPlaceholder = "your_gemini_api_key_here"

// Config holds all configuration for the NovaDesk service
type Config struct {
	// Server configuration
	Port string `envconfig:"PORT" default:"5000"`

	// Public base URL for this service (e.g. https://xxx.ngrok-free.dev when behind ngrok).
	// Twilio signs the full public URL, so signature validation needs it when the
	// service runs behind a proxy. Optional; if unset the request Host is used.
	PublicBaseURL string `envconfig:"PUBLIC_BASE_URL" default:""`

	SecretKey   string `envconfig:"SECRET_KEY" default:"dev-secret-key"`
	AdminAPIKey string `envconfig:"ADMIN_API_KEY" default:""` // Empty leaves admin endpoints open

	// Google Gemini configuration
	GeminiAPIKey  string `envconfig:"GEMINI_API_KEY" default:""`
	GeminiModel   string `envconfig:"GEMINI_MODEL" default:"gemini-2.0-flash"`
	GeminiTimeout int    `envconfig:"GEMINI_TIMEOUT" default:"30"` // seconds
	GeminiBaseURL string `envconfig:"GEMINI_BASE_URL" default:""`  // Optional API endpoint override

	// Twilio WhatsApp gateway configuration
	TwilioAccountSID        string `envconfig:"TWILIO_ACCOUNT_SID" default:""`
	TwilioAuthToken         string `envconfig:"TWILIO_AUTH_TOKEN" default:""`
	TwilioPhoneNumber       string `envconfig:"TWILIO_PHONE_NUMBER" default:"whatsapp:+1234567890"`
	TwilioValidateSignature bool   `envconfig:"TWILIO_VALIDATE_SIGNATURE" default:"false"`

	// Database configuration
	DBDriver   string `envconfig:"DB_DRIVER" default:"mysql"` // mysql, sqlite
	DBHost     string `envconfig:"DB_HOST" default:"localhost"`
	DBPort     int    `envconfig:"DB_PORT" default:"3306"`
	DBUser     string `envconfig:"DB_USER" default:"root"`
	DBPassword string `envconfig:"DB_PASSWORD" default:"root"`
	DBName     string `envconfig:"DB_NAME" default:"esquema_t"`
	DBPath     string `envconfig:"DB_PATH" default:"data/novadesk.db"` // sqlite only

	// Resilience configuration
	DBConnectAttempts          int `envconfig:"DB_CONNECT_ATTEMPTS" default:"5"`            // Ping attempts at startup
	DBConnectBackoff           int `envconfig:"DB_CONNECT_BACKOFF" default:"1000"`          // Milliseconds between ping attempts
	CircuitBreakerMaxFailures  int `envconfig:"CIRCUIT_BREAKER_MAX_FAILURES" default:"5"`   // Provider failures before opening circuit
	CircuitBreakerResetTimeout int `envconfig:"CIRCUIT_BREAKER_RESET_TIMEOUT" default:"30"` // Seconds before attempting recovery

	// Observability configuration
	LogLevel       string `envconfig:"LOG_LEVEL" default:"info"`       // Log level: debug, info, warn, error
	LogPretty      bool   `envconfig:"LOG_PRETTY" default:"false"`     // Pretty print logs (for development)
	MetricsEnabled bool   `envconfig:"METRICS_ENABLED" default:"true"` // Enable Prometheus metrics
}

// Load reads configuration from environment variables
// It first attempts to load from .env file if it exists, then from environment
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	return LoadFromEnv()
}

// LoadFromEnv loads configuration directly from environment variables
// without attempting to load .env file (useful for containerized deployments)
func LoadFromEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Older deployments export the key under the Google-prefixed name
	if cfg.GeminiAPIKey == "" {
		cfg.GeminiAPIKey = os.Getenv("GOOGLE_GEMINI_API_KEY")
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.DBDriver {
	case "mysql", "sqlite":
	default:
		return fmt.Errorf("DB_DRIVER must be mysql or sqlite, got %q", c.DBDriver)
	}
	if c.GeminiTimeout <= 0 {
		return fmt.Errorf("GEMINI_TIMEOUT must be positive")
	}
	return nil
}

// GeminiConfigured reports whether a usable Gemini key is present
func (c *Config) GeminiConfigured() bool {
	return UsableAPIKey(c.GeminiAPIKey)
}

// TwilioConfigured reports whether Twilio REST credentials are present
func (c *Config) TwilioConfigured() bool {
	return c.TwilioAccountSID != "" && c.TwilioAuthToken != ""
}

// UsableAPIKey reports whether key is neither empty nor the sample placeholder
func UsableAPIKey(key string) bool {
	key = strings.TrimSpace(key)
	return key != "" && key != GeminiKeyPlaceholder
}
