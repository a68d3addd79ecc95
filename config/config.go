package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config represents the complete application configuration.
//
// Provider credentials are loaded here but never validated up front: a
// missing API key is only an error when that provider is actually addressed,
// consistent with lazy adapter construction.
type Config struct {
	Server        ServerConfig
	Database      *DatabaseConfig // Optional: completion audit log. Nil disables it.
	Auth          AuthConfig
	Providers     ProvidersConfig
	Observability ObservabilityConfig
	Environment   string
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// DatabaseConfig holds PostgreSQL configuration for the audit log.
type DatabaseConfig struct {
	ConnectionString string
	MaxOpenConns     int
	MaxIdleConns     int
	ConnMaxLifetime  time.Duration
}

// AuthConfig holds gateway authentication settings. Auth is enforced when a
// signing secret is configured.
type AuthConfig struct {
	JWTSecret string
}

// Enabled reports whether bearer-token auth should be enforced
func (c AuthConfig) Enabled() bool {
	return c.JWTSecret != ""
}

// ProvidersConfig holds per-provider settings, keyed by provider
type ProvidersConfig struct {
	OpenAI    ProviderSettings
	Anthropic ProviderSettings
	Groq      ProviderSettings
	Mistral   ProviderSettings
	Fireworks ProviderSettings
}

// ProviderSettings holds one provider's credentials and endpoint settings
type ProviderSettings struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
	OrgID   string
}

// ObservabilityConfig holds logging configuration
type ObservabilityConfig struct {
	LogLevel  string
	LogFormat string // json or text
}

// New creates a Config by loading environment variables. Provider API keys
// follow the one-variable-per-provider convention (OPENAI_API_KEY,
// ANTHROPIC_API_KEY, GROQ_API_KEY, MISTRAL_API_KEY, FIREWORKS_API_KEY).
func New() (*Config, error) {
	// Load .env if it exists
	_ = godotenv.Load(".env")

	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnvAsInt("SERVER_PORT", 8080),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 120*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Database: loadDatabaseConfig(),
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
		},
		Providers: ProvidersConfig{
			OpenAI: ProviderSettings{
				APIKey:  getEnv("OPENAI_API_KEY", ""),
				BaseURL: getEnv("OPENAI_BASE_URL", ""),
				Timeout: getEnvAsDuration("OPENAI_TIMEOUT", 60*time.Second),
				OrgID:   getEnv("OPENAI_ORG_ID", ""),
			},
			Anthropic: ProviderSettings{
				APIKey:  getEnv("ANTHROPIC_API_KEY", ""),
				BaseURL: getEnv("ANTHROPIC_BASE_URL", ""),
				Timeout: getEnvAsDuration("ANTHROPIC_TIMEOUT", 60*time.Second),
			},
			Groq: ProviderSettings{
				APIKey:  getEnv("GROQ_API_KEY", ""),
				BaseURL: getEnv("GROQ_BASE_URL", ""),
				Timeout: getEnvAsDuration("GROQ_TIMEOUT", 60*time.Second),
			},
			Mistral: ProviderSettings{
				APIKey:  getEnv("MISTRAL_API_KEY", ""),
				BaseURL: getEnv("MISTRAL_BASE_URL", ""),
				Timeout: getEnvAsDuration("MISTRAL_TIMEOUT", 60*time.Second),
			},
			Fireworks: ProviderSettings{
				APIKey:  getEnv("FIREWORKS_API_KEY", ""),
				BaseURL: getEnv("FIREWORKS_BASE_URL", ""),
				Timeout: getEnvAsDuration("FIREWORKS_TIMEOUT", 60*time.Second),
			},
		},
		Observability: ObservabilityConfig{
			LogLevel:  getEnv("LOG_LEVEL", "info"),
			LogFormat: getEnv("LOG_FORMAT", "json"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks the fields that must be set at startup. Provider
// credentials are deliberately not checked here (defer-validation: a missing
// key surfaces when the provider is first addressed).
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Observability.LogLevel == "" {
		return fmt.Errorf("log level is required")
	}
	switch c.Observability.LogFormat {
	case "json", "text":
	default:
		return fmt.Errorf("log format must be json or text, got %q", c.Observability.LogFormat)
	}
	return nil
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Environment == "production" || c.Environment == "prod"
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development" || c.Environment == "dev"
}

// Address returns the HTTP server address
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DSN() string {
	return c.ConnectionString
}

// LogString returns a safe string for logging (no password)
func (c *DatabaseConfig) LogString() string {
	u, err := url.Parse(c.ConnectionString)
	if err != nil {
		return "host=<from DATABASE_URL>"
	}
	host := u.Hostname()
	port := u.Port()
	if port == "" {
		port = "5432"
	}
	db := strings.TrimPrefix(u.Path, "/")
	return fmt.Sprintf("host=%s port=%s database=%s", host, port, db)
}

// loadDatabaseConfig loads audit DB config from DATABASE_URL.
// Returns nil when not set (audit logging disabled).
func loadDatabaseConfig() *DatabaseConfig {
	dbURL := getEnv("DATABASE_URL", "")
	if dbURL == "" {
		return nil
	}
	return &DatabaseConfig{
		ConnectionString: dbURL,
		MaxOpenConns:     getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
		MaxIdleConns:     getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
		ConnMaxLifetime:  getEnvAsDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
	}
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
