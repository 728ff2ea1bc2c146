package config

import (
	"os"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "GEMINI_API_KEY", "GOOGLE_GEMINI_API_KEY", "GEMINI_MODEL",
		"TWILIO_ACCOUNT_SID", "TWILIO_AUTH_TOKEN", "DB_DRIVER", "LOG_LEVEL",
	} {
		os.Unsetenv(key)
	}
}

func TestLoad(t *testing.T) {
	clearEnv(t)
	os.Setenv("GEMINI_API_KEY", "test-gemini-key")
	os.Setenv("TWILIO_ACCOUNT_SID", "AC123")
	os.Setenv("TWILIO_AUTH_TOKEN", "token")
	defer os.Unsetenv("GEMINI_API_KEY")
	defer os.Unsetenv("TWILIO_ACCOUNT_SID")
	defer os.Unsetenv("TWILIO_AUTH_TOKEN")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.GeminiAPIKey != "test-gemini-key" {
		t.Errorf("Expected GeminiAPIKey 'test-gemini-key', got '%s'", cfg.GeminiAPIKey)
	}
	if !cfg.GeminiConfigured() {
		t.Error("Expected Gemini to be configured")
	}
	if !cfg.TwilioConfigured() {
		t.Error("Expected Twilio to be configured")
	}
}

func TestLoad_NothingRequired(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("Expected no error without credentials, got %v", err)
	}
	if cfg.GeminiConfigured() {
		t.Error("Expected Gemini to be unconfigured")
	}
	if cfg.TwilioConfigured() {
		t.Error("Expected Twilio to be unconfigured")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv() failed: %v", err)
	}

	// Check defaults
	if cfg.Port != "5000" {
		t.Errorf("Expected default Port '5000', got '%s'", cfg.Port)
	}
	if cfg.GeminiModel != "gemini-2.0-flash" {
		t.Errorf("Expected default GeminiModel 'gemini-2.0-flash', got '%s'", cfg.GeminiModel)
	}
	if cfg.TwilioPhoneNumber != "whatsapp:+1234567890" {
		t.Errorf("Expected default TwilioPhoneNumber, got '%s'", cfg.TwilioPhoneNumber)
	}
	if cfg.DBDriver != "mysql" {
		t.Errorf("Expected default DBDriver 'mysql', got '%s'", cfg.DBDriver)
	}
	if cfg.DBHost != "localhost" {
		t.Errorf("Expected default DBHost 'localhost', got '%s'", cfg.DBHost)
	}
	if cfg.DBPort != 3306 {
		t.Errorf("Expected default DBPort 3306, got %d", cfg.DBPort)
	}
	if cfg.DBName != "esquema_t" {
		t.Errorf("Expected default DBName 'esquema_t', got '%s'", cfg.DBName)
	}
	if cfg.SecretKey != "dev-secret-key" {
		t.Errorf("Expected default SecretKey 'dev-secret-key', got '%s'", cfg.SecretKey)
	}
}

func TestLoad_GoogleKeyFallback(t *testing.T) {
	clearEnv(t)
	os.Setenv("GOOGLE_GEMINI_API_KEY", "legacy-key")
	defer os.Unsetenv("GOOGLE_GEMINI_API_KEY")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv() failed: %v", err)
	}
	if cfg.GeminiAPIKey != "legacy-key" {
		t.Errorf("Expected GeminiAPIKey 'legacy-key', got '%s'", cfg.GeminiAPIKey)
	}
}

func TestLoad_InvalidDriver(t *testing.T) {
	clearEnv(t)
	os.Setenv("DB_DRIVER", "postgres")
	defer os.Unsetenv("DB_DRIVER")

	if _, err := LoadFromEnv(); err == nil {
		t.Error("Expected error for unsupported DB_DRIVER")
	}
}

func TestUsableAPIKey(t *testing.T) {
	tests := []struct {
		key      string
		expected bool
	}{
		{"", false},
		{"   ", false},
		{GeminiKeyPlaceholder, false},
		{"AIza-real", true},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if got := UsableAPIKey(tt.key); got != tt.expected {
				t.Errorf("Expected %v for %q, got %v", tt.expected, tt.key, got)
			}
		})
	}
}

func TestConfig_ObservabilityDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv() failed: %v", err)
	}

	if cfg.LogLevel != "info" {
		t.Errorf("Expected default LogLevel 'info', got '%s'", cfg.LogLevel)
	}
	if cfg.LogPretty {
		t.Error("Expected default LogPretty false, got true")
	}
	if !cfg.MetricsEnabled {
		t.Error("Expected default MetricsEnabled true, got false")
	}
	if cfg.CircuitBreakerMaxFailures != 5 {
		t.Errorf("Expected default CircuitBreakerMaxFailures 5, got %d", cfg.CircuitBreakerMaxFailures)
	}
	if cfg.DBConnectAttempts != 5 {
		t.Errorf("Expected default DBConnectAttempts 5, got %d", cfg.DBConnectAttempts)
	}
}
