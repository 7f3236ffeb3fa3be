package config

import (
	"os"
	"strconv"
	"time"
)

// ProviderEndpoint is one OpenAI-compatible completion endpoint.
type ProviderEndpoint struct {
	BaseURL string
	APIKey  string
}

// Config holds all application configuration
type Config struct {
	Port     string
	MongoURI string

	// Tool endpoints
	SearxngURL string // SearXNG instance for the web_search tool
	SandboxURL string // code execution microservice for code_interpreter

	// Provider endpoints keyed by catalogue provider name
	Providers map[string]ProviderEndpoint

	// Engine cache behaviour
	EngineCacheTTL     time.Duration // idle eviction window for cached engines
	EngineCacheCleanup time.Duration

	// Provider client throttle (requests per second, shared per engine)
	ProviderRateLimit float64
}

// Load loads configuration from environment variables with defaults
func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "8000"),
		MongoURI: getEnv("MONGODB_URI", "mongodb://localhost:27017/agenthub"),

		SearxngURL: getEnv("SEARXNG_URL", "http://localhost:8080"),
		SandboxURL: getEnv("SANDBOX_URL", "http://localhost:8001"),

		Providers: map[string]ProviderEndpoint{
			"azure_openai": {
				BaseURL: getEnv("AZURE_OPENAI_BASE_URL", ""),
				APIKey:  getEnv("AZURE_OPENAI_API_KEY", ""),
			},
			"anthropic": {
				BaseURL: getEnv("ANTHROPIC_BASE_URL", "https://api.anthropic.com/v1"),
				APIKey:  getEnv("ANTHROPIC_API_KEY", ""),
			},
			"google": {
				BaseURL: getEnv("GOOGLE_BASE_URL", "https://generativelanguage.googleapis.com/v1beta/openai"),
				APIKey:  getEnv("GOOGLE_API_KEY", ""),
			},
		},

		EngineCacheTTL:     getDurationEnv("ENGINE_CACHE_TTL", 30*time.Minute),
		EngineCacheCleanup: getDurationEnv("ENGINE_CACHE_CLEANUP", 10*time.Minute),

		ProviderRateLimit: getFloatEnv("PROVIDER_RATE_LIMIT", 5),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseFloat(value, 64)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		parsed, err := time.ParseDuration(value)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}
