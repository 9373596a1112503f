package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	BackendHuggingFace = "huggingface"
	BackendGemini      = "gemini"

	FormatText = "text"
	FormatJSON = "json"
)

type Config struct {
	// Pipeline settings
	MaxArticlesPerSource int
	FeedsConfigPath      string // empty means the built-in source list
	RequestTimeout       time.Duration

	// Model settings
	ModelBackend string // huggingface | gemini
	ModelTimeout time.Duration

	HuggingFaceAPIKey string
	HuggingFaceAPIURL string
	SummaryModel      string
	SentimentModel    string

	GeminiAPIKey string
	GeminiModel  string

	// Output and monitoring
	OutputFormat         string // text | json
	EnableHTTPMonitoring bool
	MonitoringPort       string
}

// Load reads an optional .env file, then the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds the config from the process environment only.
func FromEnv() (*Config, error) {
	cfg := &Config{
		MaxArticlesPerSource: getEnvIntOrDefault("MAX_ARTICLES_PER_SOURCE", 3),
		FeedsConfigPath:      os.Getenv("FEEDS_CONFIG_PATH"),
		RequestTimeout:       getEnvDurationOrDefault("REQUEST_TIMEOUT", 15*time.Second),

		ModelBackend: strings.ToLower(getEnvOrDefault("MODEL_BACKEND", BackendHuggingFace)),
		ModelTimeout: getEnvDurationOrDefault("MODEL_TIMEOUT", 0),

		HuggingFaceAPIKey: os.Getenv("HUGGINGFACE_API_KEY"),
		HuggingFaceAPIURL: getEnvOrDefault("HUGGINGFACE_API_URL", "https://api-inference.huggingface.co/models"),
		SummaryModel:      getEnvOrDefault("SUMMARY_MODEL", "sshleifer/distilbart-cnn-12-6"),
		SentimentModel:    getEnvOrDefault("SENTIMENT_MODEL", "cardiffnlp/twitter-xlm-roberta-base-sentiment"),

		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		GeminiModel:  getEnvOrDefault("GEMINI_MODEL", "gemini-1.5-flash"),

		OutputFormat:         strings.ToLower(getEnvOrDefault("OUTPUT_FORMAT", FormatText)),
		EnableHTTPMonitoring: os.Getenv("ENABLE_HTTP_MONITORING") == "true",
		MonitoringPort:       getEnvOrDefault("MONITORING_PORT", "8080"),
	}

	return cfg, cfg.Validate()
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvDurationOrDefault accepts Go durations ("20s") or plain seconds ("20").
func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

func (c *Config) Validate() error {
	if c.MaxArticlesPerSource <= 0 {
		return fmt.Errorf("MAX_ARTICLES_PER_SOURCE must be positive")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive")
	}
	if c.ModelTimeout < 0 {
		return fmt.Errorf("MODEL_TIMEOUT must not be negative")
	}

	switch c.ModelBackend {
	case BackendHuggingFace:
		if c.HuggingFaceAPIKey == "" {
			return fmt.Errorf("HUGGINGFACE_API_KEY is required")
		}
	case BackendGemini:
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required")
		}
	default:
		return fmt.Errorf("MODEL_BACKEND must be '%s' or '%s'", BackendHuggingFace, BackendGemini)
	}

	if c.OutputFormat != FormatText && c.OutputFormat != FormatJSON {
		return fmt.Errorf("OUTPUT_FORMAT must be '%s' or '%s'", FormatText, FormatJSON)
	}
	return nil
}
