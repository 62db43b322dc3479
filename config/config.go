package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Elevenst  ElevenstConfig  `mapstructure:"elevenst"`
	Shopping  ShoppingConfig  `mapstructure:"shopping"`
	AI        AIConfig        `mapstructure:"ai"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string        `mapstructure:"port"`
	Environment    string        `mapstructure:"environment"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// ElevenstConfig holds 11st OpenAPI configuration
type ElevenstConfig struct {
	BaseURL           string        `mapstructure:"base_url"`
	APIKey            string        `mapstructure:"api_key"`
	ConnectTimeout    time.Duration `mapstructure:"connect_timeout"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	Burst             int           `mapstructure:"burst"`
}

// ShoppingConfig holds product resolution settings
type ShoppingConfig struct {
	UseMockWhenError    bool `mapstructure:"use_mock_when_error"`
	PageSize            int  `mapstructure:"page_size"`
	RerankEnabled       bool `mapstructure:"rerank_enabled"`
	RerankTopK          int  `mapstructure:"rerank_top_k"`
	StrictCategoryCodes bool `mapstructure:"strict_category_codes"`
	BatchConcurrency    int  `mapstructure:"batch_concurrency"`
}

// AIConfig holds chat model configuration
type AIConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	APIKey         string        `mapstructure:"api_key"`
	Model          string        `mapstructure:"model"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
	Timeout        time.Duration `mapstructure:"timeout"`
	Temperature    float64       `mapstructure:"temperature"`
}

// RateLimitConfig holds inbound rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"` // requests per minute
}

// Load loads configuration from an optional .env file, environment variables and config files
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/dietcoach/")

	// DIETCOACH_ELEVENST_API_KEY -> elevenst.api_key
	v.SetEnvPrefix("DIETCOACH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Config file is optional
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// loadEnvFile loads .env from the working directory when present
func loadEnvFile() error {
	err := godotenv.Load()
	if err != nil && errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "30s")

	v.SetDefault("log.level", "info")

	// 11st defaults
	v.SetDefault("elevenst.base_url", "http://openapi.11st.co.kr/openapi/OpenApiService.tmall")
	v.SetDefault("elevenst.api_key", "")
	v.SetDefault("elevenst.connect_timeout", "3s")
	v.SetDefault("elevenst.read_timeout", "5s")
	v.SetDefault("elevenst.requests_per_second", 5)
	v.SetDefault("elevenst.burst", 5)

	// Shopping defaults
	v.SetDefault("shopping.use_mock_when_error", true)
	v.SetDefault("shopping.page_size", 20)
	v.SetDefault("shopping.rerank_enabled", true)
	v.SetDefault("shopping.rerank_top_k", 5)
	v.SetDefault("shopping.strict_category_codes", false)
	v.SetDefault("shopping.batch_concurrency", 4)

	// AI defaults
	v.SetDefault("ai.base_url", "https://api.openai.com/v1/chat/completions")
	v.SetDefault("ai.api_key", "")
	v.SetDefault("ai.model", "gpt-4o-mini")
	v.SetDefault("ai.connect_timeout", "3s")
	v.SetDefault("ai.timeout", "8s")
	v.SetDefault("ai.temperature", 0.1)

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 100)
}

// validate validates the configuration
func validate(config *Config) error {
	if strings.TrimSpace(config.Server.Port) == "" {
		return fmt.Errorf("server port is required")
	}

	switch strings.ToLower(config.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log level must be one of debug, info, warn, error, got: %s", config.Log.Level)
	}

	if config.Shopping.PageSize < 1 || config.Shopping.PageSize > 100 {
		return fmt.Errorf("shopping page size must be within 1..100, got: %d", config.Shopping.PageSize)
	}
	if config.Shopping.RerankTopK < 1 {
		return fmt.Errorf("shopping rerank top k must be at least 1, got: %d", config.Shopping.RerankTopK)
	}
	if config.Shopping.BatchConcurrency < 1 {
		return fmt.Errorf("shopping batch concurrency must be at least 1, got: %d", config.Shopping.BatchConcurrency)
	}

	if config.RateLimit.PerIP < 1 {
		return fmt.Errorf("rate limit per ip must be at least 1, got: %d", config.RateLimit.PerIP)
	}

	return nil
}
