package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Providers
	SearchProvider string // "tavily" or "rss"
	AIProvider     string // "gemini" or "openai"

	// Tavily settings
	TavilyAPIKey      string
	TavilyBaseURL     string
	TavilySearchDepth string
	SearchMaxResults  int

	// RSS settings
	FeedsConfigPath  string
	FetchArticlePage bool

	// Gemini settings
	GeminiAPIKey string
	GeminiModel  string

	// Generation settings shared by the AI providers
	AITemperature float32
	AIMaxTokens   int32

	// OpenAI settings
	OpenAIAPIKey string
	OpenAIModel  string

	// Pipeline settings
	MaxArticlesPerSearch int
	RequestTimeout       time.Duration
	MaxRetries           int
	RetryMinDelay        time.Duration
	RetryMaxDelay        time.Duration

	// AI budget (0 = unlimited)
	MaxAIRequestsPerDay int
	AIRequestsPerMinute int

	// Cache settings
	SearchCacheTTL  time.Duration
	SearchCacheSize int

	// App settings
	Port       string
	Debug      bool
	LogFormat  string
	AppVersion string
}

// Load reads an optional .env file, then the environment, then validates.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{
		SearchProvider:       getEnvOrDefault("SEARCH_PROVIDER", "tavily"),
		AIProvider:           getEnvOrDefault("AI_PROVIDER", "gemini"),
		TavilyAPIKey:         os.Getenv("TAVILY_API_KEY"),
		TavilyBaseURL:        getEnvOrDefault("TAVILY_BASE_URL", "https://api.tavily.com"),
		TavilySearchDepth:    getEnvOrDefault("TAVILY_SEARCH_DEPTH", "basic"),
		SearchMaxResults:     getEnvIntOrDefault("SEARCH_MAX_RESULTS", getEnvIntOrDefault("TAVILY_MAX_RESULTS", 15)),
		FeedsConfigPath:      getEnvOrDefault("FEEDS_CONFIG_PATH", "configs/feeds.yaml"),
		FetchArticlePage:     getEnvOrDefault("RSS_FETCH_ARTICLES", "false") == "true",
		GeminiAPIKey:         os.Getenv("GEMINI_API_KEY"),
		GeminiModel:          getEnvOrDefault("GEMINI_MODEL", "gemini-2.0-flash"),
		AITemperature:        0.3,
		AIMaxTokens:          int32(getEnvIntOrDefault("GEMINI_MAX_TOKENS", 2048)),
		OpenAIAPIKey:         os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:          getEnvOrDefault("OPENAI_MODEL", "gpt-4o-mini"),
		MaxArticlesPerSearch: getEnvIntOrDefault("MAX_ARTICLES_PER_SEARCH", 20),
		RequestTimeout:       time.Duration(getEnvIntOrDefault("REQUEST_TIMEOUT", 30)) * time.Second,
		MaxRetries:           getEnvIntOrDefault("MAX_RETRIES", 3),
		RetryMinDelay:        time.Duration(getEnvIntOrDefault("RETRY_MIN_DELAY_MS", 1000)) * time.Millisecond,
		RetryMaxDelay:        time.Duration(getEnvIntOrDefault("RETRY_MAX_DELAY_MS", 10000)) * time.Millisecond,
		MaxAIRequestsPerDay:  getEnvIntOrDefault("MAX_AI_REQUESTS_PER_DAY", 0),
		AIRequestsPerMinute:  getEnvIntOrDefault("AI_REQUESTS_PER_MINUTE", 0),
		SearchCacheTTL:       time.Duration(getEnvIntOrDefault("SEARCH_CACHE_TTL", 300)) * time.Second,
		SearchCacheSize:      getEnvIntOrDefault("SEARCH_CACHE_SIZE", 128),
		Port:                 getEnvOrDefault("PORT", "8080"),
		Debug:                os.Getenv("DEBUG") == "true",
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "text"),
		AppVersion:           getEnvOrDefault("APP_VERSION", "1.0.0"),
	}

	if v := os.Getenv("GEMINI_TEMPERATURE"); v != "" {
		if val, err := strconv.ParseFloat(v, 32); err == nil && val >= 0 && val <= 2 {
			cfg.AITemperature = float32(val)
		}
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

func (c *Config) Validate() error {
	switch c.SearchProvider {
	case "tavily":
		if c.TavilyAPIKey == "" {
			return fmt.Errorf("TAVILY_API_KEY is required when SEARCH_PROVIDER=tavily")
		}
	case "rss":
		if c.FeedsConfigPath == "" {
			return fmt.Errorf("FEEDS_CONFIG_PATH is required when SEARCH_PROVIDER=rss")
		}
	default:
		return fmt.Errorf("SEARCH_PROVIDER must be 'tavily' or 'rss'")
	}

	switch c.AIProvider {
	case "gemini":
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required when AI_PROVIDER=gemini")
		}
	case "openai":
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required when AI_PROVIDER=openai")
		}
	default:
		return fmt.Errorf("AI_PROVIDER must be 'gemini' or 'openai'")
	}

	if c.SearchMaxResults <= 0 {
		return fmt.Errorf("SEARCH_MAX_RESULTS must be positive")
	}
	if c.MaxArticlesPerSearch <= 0 {
		return fmt.Errorf("MAX_ARTICLES_PER_SEARCH must be positive")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive")
	}
	if c.MaxRetries <= 0 {
		return fmt.Errorf("MAX_RETRIES must be positive")
	}
	if c.RetryMinDelay <= 0 || c.RetryMaxDelay < c.RetryMinDelay {
		return fmt.Errorf("retry delays must satisfy 0 < RETRY_MIN_DELAY_MS <= RETRY_MAX_DELAY_MS")
	}
	if c.MaxAIRequestsPerDay < 0 || c.AIRequestsPerMinute < 0 {
		return fmt.Errorf("AI request limits must not be negative")
	}
	if c.SearchCacheTTL < 0 || c.SearchCacheSize <= 0 {
		return fmt.Errorf("SEARCH_CACHE_TTL must not be negative and SEARCH_CACHE_SIZE must be positive")
	}
	return nil
}
