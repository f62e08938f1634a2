package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// placeholderAPIKey is the value shipped in the sample .env file
const placeholderAPIKey = "your_api_key_here"

// Supported AI providers
const (
	ProviderGemini    = "gemini"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Config holds all configuration values
type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Upload      UploadConfig
	Directories DirectoriesConfig
	AI          AIConfig
	GitHub      GitHubConfig
	RateLimit   RateLimitConfig
	Logging     LoggingConfig
	CORS        CORSConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port         int
	Host         string
	Environment  string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// UploadConfig holds upload configuration
type UploadConfig struct {
	MaxFileSize int64
}

// DirectoriesConfig holds directory paths
type DirectoriesConfig struct {
	UploadsDir string
	StaticDir  string
}

// AIConfig holds language model configuration
type AIConfig struct {
	GeminiAPIKey    string
	OpenAIAPIKey    string
	OpenAIBaseURL   string
	AnthropicAPIKey string
	Provider        string
	Model           string
	AnalysisEnabled bool
	RequestTimeout  time.Duration
}

// GitHubConfig holds the profile lookup settings
type GitHubConfig struct {
	Username string
	APIURL   string
	Timeout  time.Duration
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	RequestsPerMinute int
	BurstSize         int
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
	Output string
}

// CORSConfig holds cross-origin settings
type CORSConfig struct {
	AllowedOrigins []string
}

// Load loads configuration from the environment, after reading an optional .env file
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read .env file: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnvInt("PORT", 8080),
			Host:         getEnv("HOST", "0.0.0.0"),
			Environment:  getEnv("APP_ENV", "development"),
			ReadTimeout:  getEnvDuration("READ_TIMEOUT", 30*time.Second),
			WriteTimeout: getEnvDuration("WRITE_TIMEOUT", 60*time.Second),
			IdleTimeout:  getEnvDuration("IDLE_TIMEOUT", 120*time.Second),
		},
		Database: DatabaseConfig{
			Path:            getEnv("DB_PATH", "data/synthara.db"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 1),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 1),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 1*time.Hour),
		},
		Upload: UploadConfig{
			MaxFileSize: getEnvInt64("MAX_CONTENT_LENGTH", 16*1024*1024), // 16MB
		},
		Directories: DirectoriesConfig{
			UploadsDir: getEnv("UPLOAD_FOLDER", "uploads"),
			StaticDir:  getEnv("STATIC_DIR", ""),
		},
		AI: AIConfig{
			GeminiAPIKey:    getEnv("GEMINI_API_KEY", ""),
			OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
			OpenAIBaseURL:   getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
			Provider:        strings.ToLower(getEnv("AI_PROVIDER", ProviderGemini)),
			Model:           getEnv("AI_MODEL", ""),
			AnalysisEnabled: getEnvBool("ENABLE_AI_ANALYSIS", true),
			RequestTimeout:  getEnvDuration("AI_REQUEST_TIMEOUT", 30*time.Second),
		},
		GitHub: GitHubConfig{
			Username: getEnv("GITHUB_USERNAME", "bniladridas"),
			APIURL:   getEnv("GITHUB_API_URL", "https://api.github.com"),
			Timeout:  getEnvDuration("GITHUB_TIMEOUT", 5*time.Second),
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: getEnvInt("REQUESTS_PER_MINUTE", 120),
			BurstSize:         getEnvInt("BURST_SIZE", 20),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
			Output: getEnv("LOG_OUTPUT", "stdout"),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		},
	}

	if cfg.AI.Model == "" {
		cfg.AI.Model = defaultModel(cfg.AI.Provider)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	// Resolve absolute paths
	if err := cfg.resolvePaths(); err != nil {
		return nil, fmt.Errorf("failed to resolve paths: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Server.Port)
	}

	if c.Upload.MaxFileSize <= 0 {
		return fmt.Errorf("max file size must be positive, got %d", c.Upload.MaxFileSize)
	}

	switch c.AI.Provider {
	case ProviderGemini, ProviderOpenAI, ProviderAnthropic:
	default:
		return fmt.Errorf("unknown AI provider %q", c.AI.Provider)
	}

	if c.AI.RequestTimeout <= 0 {
		return fmt.Errorf("AI request timeout must be positive, got %s", c.AI.RequestTimeout)
	}

	if c.GitHub.Timeout <= 0 {
		return fmt.Errorf("GitHub timeout must be positive, got %s", c.GitHub.Timeout)
	}

	return nil
}

// APIKey returns the credential for the configured provider
func (c *AIConfig) APIKey() string {
	switch c.Provider {
	case ProviderOpenAI:
		return c.OpenAIAPIKey
	case ProviderAnthropic:
		return c.AnthropicAPIKey
	default:
		return c.GeminiAPIKey
	}
}

// HasCredential reports whether a usable key is configured for the provider.
// The sample placeholder counts as missing.
func (c *AIConfig) HasCredential() bool {
	key := c.APIKey()
	return key != "" && key != placeholderAPIKey
}

// FileAnalysisEnabled reports whether uploads may be sent to the model
func (c *AIConfig) FileAnalysisEnabled() bool {
	return c.AnalysisEnabled && c.HasCredential()
}

func defaultModel(provider string) string {
	switch provider {
	case ProviderOpenAI:
		return "gpt-4o-mini"
	case ProviderAnthropic:
		return "claude-3-5-haiku-latest"
	default:
		return "gemini-1.5-flash"
	}
}

// resolvePaths resolves all directory paths to absolute paths
func (c *Config) resolvePaths() error {
	var err error

	c.Directories.UploadsDir, err = filepath.Abs(c.Directories.UploadsDir)
	if err != nil {
		return fmt.Errorf("failed to resolve uploads directory: %w", err)
	}

	if c.Directories.StaticDir != "" {
		c.Directories.StaticDir, err = filepath.Abs(c.Directories.StaticDir)
		if err != nil {
			return fmt.Errorf("failed to resolve static directory: %w", err)
		}
	}

	c.Database.Path, err = filepath.Abs(c.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to resolve database path: %w", err)
	}

	return nil
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return defaultValue
	}
	return items
}
