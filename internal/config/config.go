// Package config provides configuration management for Portico.
//
// This package handles loading configuration from multiple sources:
//   - YAML configuration files
//   - Environment variables (with PORTICO_ prefix)
//   - .env files
//   - Default values
//
// # Configuration Sources Priority
//
// Configuration is loaded in the following order (later sources override earlier ones):
//  1. Default values (hardcoded)
//  2. Configuration files (./configs/config.yaml, ~/.portico/config.yaml, /etc/portico/config.yaml)
//  3. .env files
//  4. Environment variables (PORTICO_ prefix)
//
// # Usage Example
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("Server: %s:%d\n", cfg.Server.Host, cfg.Server.Port)
//
// # Environment Variables
//
// Environment variables override all other configuration sources.
// Use PORTICO_ prefix and underscores for nested keys:
//   - PORTICO_SERVER_PORT=8095
//   - PORTICO_STORAGE_PATH=/var/lib/portico/portico.db
//   - PORTICO_AGENT_ENABLED=true
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the root configuration structure for Portico.
// It contains all configuration sections for server, storage, agent, probing,
// notices, logging, and security.
type Config struct {
	// Server contains HTTP server configuration
	Server ServerConfig `mapstructure:"server"`

	// Storage contains database settings
	Storage StorageConfig `mapstructure:"storage"`

	// Agent contains node agent configuration
	Agent AgentConfig `mapstructure:"agent"`

	// Probe contains node status probe settings
	Probe ProbeConfig `mapstructure:"probe"`

	// Notices contains transient notice queue settings
	Notices NoticesConfig `mapstructure:"notices"`

	// Logging contains logging and observability settings
	Logging LoggingConfig `mapstructure:"logging"`

	// Security contains security and rate limiting settings
	Security SecurityConfig `mapstructure:"security"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	// Host is the server bind address (default: 0.0.0.0)
	Host string `mapstructure:"host"`

	// Port is the server listen port (default: 8095)
	Port int `mapstructure:"port"`

	// ReadTimeout is the maximum duration for reading requests
	ReadTimeout time.Duration `mapstructure:"read_timeout"`

	// WriteTimeout is the maximum duration for writing responses
	WriteTimeout time.Duration `mapstructure:"write_timeout"`

	// ShutdownTimeout is the maximum duration for graceful shutdown
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`

	// Debug enables debug logging and additional endpoints
	Debug bool `mapstructure:"debug"`

	// TLSEnabled enables HTTPS
	TLSEnabled bool `mapstructure:"tls_enabled"`

	// TLSCert is the path to the TLS certificate file
	TLSCert string `mapstructure:"tls_cert"`

	// TLSKey is the path to the TLS private key file
	TLSKey string `mapstructure:"tls_key"`
}

// StorageConfig contains database settings.
type StorageConfig struct {
	// Path is the bbolt database file location
	Path string `mapstructure:"path"`
}

// AgentConfig contains node agent configuration.
type AgentConfig struct {
	// Enabled determines if the agent should run
	Enabled bool `mapstructure:"enabled"`

	// APIURL is the URL of the Portico API server
	APIURL string `mapstructure:"api_url"`

	// NodeID is the node this agent reports for
	NodeID string `mapstructure:"node_id"`

	// ListenHost is the agent's own HTTP bind address
	ListenHost string `mapstructure:"listen_host"`

	// ListenPort is the agent's own HTTP port (the node's daemon port)
	ListenPort int `mapstructure:"listen_port"`

	// SyncInterval is the duration between workload state pushes
	SyncInterval time.Duration `mapstructure:"sync_interval"`

	// AgentToken is the JWT token for agent authentication
	AgentToken string `mapstructure:"agent_token"`
}

// ProbeConfig contains node status probe settings.
type ProbeConfig struct {
	// Timeout bounds a single status probe request
	Timeout time.Duration `mapstructure:"timeout"`

	// Interval is the period of the background status sweep
	Interval time.Duration `mapstructure:"interval"`
}

// NoticesConfig contains transient notice queue settings.
type NoticesConfig struct {
	// TTL is how long a notice stays visible before the sweep drops it
	TTL time.Duration `mapstructure:"ttl"`

	// Max bounds the queue; older notices are evicted first
	Max int `mapstructure:"max"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the log level (debug, info, warn, error)
	Level string `mapstructure:"level"`

	// Format is the log format (json, text)
	Format string `mapstructure:"format"`

	// Output is the log output destination (stdout, file)
	Output string `mapstructure:"output"`

	// MaxSize is the maximum log file size in megabytes
	MaxSize int `mapstructure:"max_size"`

	// MaxBackups is the maximum number of old log files to keep
	MaxBackups int `mapstructure:"max_backups"`

	// MaxAge is the maximum number of days to keep old log files
	MaxAge int `mapstructure:"max_age"`
}

// SecurityConfig contains security and rate limiting settings.
type SecurityConfig struct {
	// RateLimit is the maximum requests per second per client
	RateLimit int `mapstructure:"rate_limit"`

	// AllowedOrigins are the CORS allowed origins
	AllowedOrigins []string `mapstructure:"allowed_origins"`

	// AuthEnabled enables JWT authentication (default: false for local development)
	AuthEnabled bool `mapstructure:"auth_enabled"`

	// JWTSecret is the secret key for validating JWT tokens. Tokens are
	// minted by the external auth system (or the token utilities) with the
	// same secret.
	JWTSecret string `mapstructure:"jwt_secret"`

	// JWTExpiration is the expiration applied by the token utilities (default: 24h)
	JWTExpiration time.Duration `mapstructure:"jwt_expiration"`
}

var cfg *Config

// Load reads configuration from a file and environment variables.
// If cfgFile is empty, it searches for config.yaml in standard locations.
//
// Configuration precedence (highest to lowest):
//  1. Environment variables (PORTICO_ prefix)
//  2. .env file
//  3. Configuration file
//  4. Default values
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("$HOME/.portico")
		v.AddConfigPath("/etc/portico")
	}

	if err := v.ReadInConfig(); err != nil {
		// If config file was explicitly specified, fail on any error
		// If searching multiple paths, only fail on errors other than ConfigFileNotFoundError
		if cfgFile != "" {
			// For explicit file path, check if it's a "file not found" type error
			// In this case, we want to proceed with defaults
			if !isFileNotFoundError(err) {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		} else {
			// For auto-discovery, only fail on non-NotFound errors
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.MergeInConfig() // Ignore error if .env file doesn't exist

	v.SetEnvPrefix("PORTICO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg = &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8095)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.debug", false)
	v.SetDefault("server.tls_enabled", false)

	v.SetDefault("storage.path", "./data/portico.db")

	v.SetDefault("agent.enabled", false)
	v.SetDefault("agent.api_url", "http://localhost:8095")
	v.SetDefault("agent.listen_host", "0.0.0.0")
	v.SetDefault("agent.listen_port", 8443)
	v.SetDefault("agent.sync_interval", "30s")

	v.SetDefault("probe.timeout", "3s")
	v.SetDefault("probe.interval", "30s")

	v.SetDefault("notices.ttl", "30s")
	v.SetDefault("notices.max", 50)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")
	v.SetDefault("logging.max_size", 100)
	v.SetDefault("logging.max_backups", 3)
	v.SetDefault("logging.max_age", 7)

	v.SetDefault("security.rate_limit", 100)
	v.SetDefault("security.allowed_origins", []string{"*"})
	v.SetDefault("security.auth_enabled", false)
	v.SetDefault("security.jwt_secret", "change-me-in-production")
	v.SetDefault("security.jwt_expiration", "24h")
}

func validate(cfg *Config) error {
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", cfg.Server.Port)
	}

	if cfg.Storage.Path == "" {
		return fmt.Errorf("storage path is required")
	}

	if cfg.Notices.Max < 1 {
		return fmt.Errorf("notices.max must be at least 1")
	}

	if cfg.Probe.Timeout <= 0 {
		return fmt.Errorf("probe.timeout must be positive")
	}

	return nil
}

func Get() *Config {
	return cfg
}

// isFileNotFoundError checks if an error is a file not found error.
func isFileNotFoundError(err error) bool {
	var pathErr *os.PathError
	if errors.As(err, &pathErr) {
		return errors.Is(pathErr, os.ErrNotExist)
	}
	return false
}
