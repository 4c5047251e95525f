package config

import (
	"os"
	"testing"
	"time"
)

// TestLoadDefaults tests that default configuration values are loaded correctly.
func TestLoadDefaults(t *testing.T) {
	// Load configuration without a config file
	cfg, err := Load("nonexistent.yaml")
	if err != nil {
		t.Fatalf("Failed to load defaults: %v", err)
	}

	// Test Server defaults
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Expected default server host '0.0.0.0', got '%s'", cfg.Server.Host)
	}
	if cfg.Server.Port != 8095 {
		t.Errorf("Expected default server port 8095, got %d", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != 30*time.Second {
		t.Errorf("Expected default read timeout 30s, got %v", cfg.Server.ReadTimeout)
	}
	if cfg.Server.WriteTimeout != 30*time.Second {
		t.Errorf("Expected default write timeout 30s, got %v", cfg.Server.WriteTimeout)
	}
	if cfg.Server.ShutdownTimeout != 10*time.Second {
		t.Errorf("Expected default shutdown timeout 10s, got %v", cfg.Server.ShutdownTimeout)
	}
	if cfg.Server.Debug != false {
		t.Errorf("Expected default debug false, got %v", cfg.Server.Debug)
	}
	if cfg.Server.TLSEnabled != false {
		t.Errorf("Expected default tls_enabled false, got %v", cfg.Server.TLSEnabled)
	}

	// Test Storage defaults
	if cfg.Storage.Path != "./data/portico.db" {
		t.Errorf("Expected default storage path './data/portico.db', got '%s'", cfg.Storage.Path)
	}

	// Test Agent defaults
	if cfg.Agent.Enabled != false {
		t.Errorf("Expected default agent enabled false, got %v", cfg.Agent.Enabled)
	}
	if cfg.Agent.APIURL != "http://localhost:8095" {
		t.Errorf("Expected default api_url 'http://localhost:8095', got '%s'", cfg.Agent.APIURL)
	}
	if cfg.Agent.ListenPort != 8443 {
		t.Errorf("Expected default agent listen port 8443, got %d", cfg.Agent.ListenPort)
	}
	if cfg.Agent.SyncInterval != 30*time.Second {
		t.Errorf("Expected default sync interval 30s, got %v", cfg.Agent.SyncInterval)
	}

	// Test Probe defaults
	if cfg.Probe.Timeout != 3*time.Second {
		t.Errorf("Expected default probe timeout 3s, got %v", cfg.Probe.Timeout)
	}
	if cfg.Probe.Interval != 30*time.Second {
		t.Errorf("Expected default probe interval 30s, got %v", cfg.Probe.Interval)
	}

	// Test Notices defaults
	if cfg.Notices.TTL != 30*time.Second {
		t.Errorf("Expected default notices ttl 30s, got %v", cfg.Notices.TTL)
	}
	if cfg.Notices.Max != 50 {
		t.Errorf("Expected default notices max 50, got %d", cfg.Notices.Max)
	}

	// Test Logging defaults
	if cfg.Logging.Level != "info" {
		t.Errorf("Expected default logging level 'info', got '%s'", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Expected default logging format 'json', got '%s'", cfg.Logging.Format)
	}
	if cfg.Logging.Output != "stdout" {
		t.Errorf("Expected default logging output 'stdout', got '%s'", cfg.Logging.Output)
	}
	if cfg.Logging.MaxSize != 100 {
		t.Errorf("Expected default max size 100, got %d", cfg.Logging.MaxSize)
	}
	if cfg.Logging.MaxBackups != 3 {
		t.Errorf("Expected default max backups 3, got %d", cfg.Logging.MaxBackups)
	}
	if cfg.Logging.MaxAge != 7 {
		t.Errorf("Expected default max age 7, got %d", cfg.Logging.MaxAge)
	}

	// Test Security defaults
	if cfg.Security.RateLimit != 100 {
		t.Errorf("Expected default rate limit 100, got %d", cfg.Security.RateLimit)
	}
	if len(cfg.Security.AllowedOrigins) != 1 || cfg.Security.AllowedOrigins[0] != "*" {
		t.Errorf("Expected default allowed origins ['*'], got %v", cfg.Security.AllowedOrigins)
	}
	if cfg.Security.AuthEnabled != false {
		t.Errorf("Expected default auth_enabled false, got %v", cfg.Security.AuthEnabled)
	}
	if cfg.Security.JWTSecret != "change-me-in-production" {
		t.Errorf("Expected default jwt_secret 'change-me-in-production', got '%s'", cfg.Security.JWTSecret)
	}
	if cfg.Security.JWTExpiration != 24*time.Hour {
		t.Errorf("Expected default jwt expiration 24h, got %v", cfg.Security.JWTExpiration)
	}
}

// TestValidation tests the configuration validation logic.
func TestValidation(t *testing.T) {
	base := func() *Config {
		return &Config{
			Server:  ServerConfig{Port: 8095},
			Storage: StorageConfig{Path: "./data/portico.db"},
			Probe:   ProbeConfig{Timeout: 3 * time.Second},
			Notices: NoticesConfig{Max: 50},
		}
	}

	tests := []struct {
		name      string
		mutate    func(*Config)
		expectErr bool
		errMsg    string
	}{
		{
			name:      "valid configuration",
			mutate:    func(*Config) {},
			expectErr: false,
		},
		{
			name:      "invalid port - too low",
			mutate:    func(c *Config) { c.Server.Port = 0 },
			expectErr: true,
			errMsg:    "invalid server port",
		},
		{
			name:      "invalid port - too high",
			mutate:    func(c *Config) { c.Server.Port = 70000 },
			expectErr: true,
			errMsg:    "invalid server port",
		},
		{
			name:      "missing storage path",
			mutate:    func(c *Config) { c.Storage.Path = "" },
			expectErr: true,
			errMsg:    "storage path is required",
		},
		{
			name:      "zero notice capacity",
			mutate:    func(c *Config) { c.Notices.Max = 0 },
			expectErr: true,
			errMsg:    "notices.max",
		},
		{
			name:      "non-positive probe timeout",
			mutate:    func(c *Config) { c.Probe.Timeout = 0 },
			expectErr: true,
			errMsg:    "probe.timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := validate(cfg)
			if tt.expectErr {
				if err == nil {
					t.Errorf("Expected error containing '%s', got nil", tt.errMsg)
				} else if !contains(err.Error(), tt.errMsg) {
					t.Errorf("Expected error containing '%s', got '%s'", tt.errMsg, err.Error())
				}
			} else {
				if err != nil {
					t.Errorf("Expected no error, got %v", err)
				}
			}
		})
	}
}

// TestEnvironmentVariableOverride tests that environment variables override config values.
func TestEnvironmentVariableOverride(t *testing.T) {
	// Save original env vars
	originalPort := os.Getenv("PORTICO_SERVER_PORT")
	originalHost := os.Getenv("PORTICO_SERVER_HOST")
	originalDebug := os.Getenv("PORTICO_SERVER_DEBUG")

	// Set test env vars
	os.Setenv("PORTICO_SERVER_PORT", "9999")
	os.Setenv("PORTICO_SERVER_HOST", "127.0.0.1")
	os.Setenv("PORTICO_SERVER_DEBUG", "true")

	// Cleanup after test
	defer func() {
		if originalPort != "" {
			os.Setenv("PORTICO_SERVER_PORT", originalPort)
		} else {
			os.Unsetenv("PORTICO_SERVER_PORT")
		}
		if originalHost != "" {
			os.Setenv("PORTICO_SERVER_HOST", originalHost)
		} else {
			os.Unsetenv("PORTICO_SERVER_HOST")
		}
		if originalDebug != "" {
			os.Setenv("PORTICO_SERVER_DEBUG", originalDebug)
		} else {
			os.Unsetenv("PORTICO_SERVER_DEBUG")
		}
	}()

	cfg, err := Load("nonexistent.yaml")
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Server.Port != 9999 {
		t.Errorf("Expected port 9999 from environment, got %d", cfg.Server.Port)
	}
	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("Expected host '127.0.0.1' from environment, got '%s'", cfg.Server.Host)
	}
	if cfg.Server.Debug != true {
		t.Errorf("Expected debug true from environment, got %v", cfg.Server.Debug)
	}
}

// TestGet tests the global config getter.
func TestGet(t *testing.T) {
	// Load configuration first
	_, err := Load("nonexistent.yaml")
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	// Get should return the loaded config
	retrieved := Get()
	if retrieved == nil {
		t.Error("Get() returned nil")
		return
	}

	// Verify it's the same instance
	if retrieved.Server.Port != 8095 {
		t.Errorf("Expected port 8095 from Get(), got %d", retrieved.Server.Port)
	}
}

// Helper function to check if a string contains a substring
func contains(s, substr string) bool {
	return len(s) >= len(substr) && (s == substr || len(substr) == 0 ||
		(len(s) > 0 && len(substr) > 0 && findSubstring(s, substr)))
}

func findSubstring(s, substr string) bool {
	for i := 0; i <= len(s)-len(substr); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
