package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// ValidationMode decides what Load does when a required setting is missing.
type ValidationMode string

const (
	// Strict fails startup.
	Strict ValidationMode = "strict"
	// Lenient logs a warning and continues; calls upstream will then fail.
	Lenient ValidationMode = "lenient"
)

type Config struct {
	Env     string
	Port    string
	LLM     LLMConfig
	Session SessionConfig
	HTTP    HTTPConfig
}

type LLMConfig struct {
	Provider  string
	APIKey    string
	BaseURL   string
	Model     string
	Timeout   time.Duration
	MaxTokens int

	QuestionTemperature float64
	AnalysisTemperature float64
	FollowUpTemperature float64
}

type SessionConfig struct {
	Secret string
	TTL    time.Duration
}

type HTTPConfig struct {
	AllowedOrigins  []string
	CatalogPath     string
	ShutdownTimeout time.Duration
}

// ParseValidationMode accepts "strict" or "lenient" (case insensitive);
// empty means strict.
func ParseValidationMode(s string) (ValidationMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(Strict):
		return Strict, nil
	case string(Lenient):
		return Lenient, nil
	default:
		return "", fmt.Errorf("unknown validation mode %q", s)
	}
}

// LoadDotEnv loads a .env file from the working directory when present.
func LoadDotEnv() {
	if _, err := os.Stat(".env"); err == nil {
		_ = godotenv.Load()
	}
}

// Load builds the configuration from the environment once at startup.
func Load(mode ValidationMode, logger *zap.Logger) (*Config, error) {
	provider := strings.ToLower(getEnvWithDefault("LLM_PROVIDER", "openai"))

	cfg := &Config{
		Env:  getEnvWithDefault("APP_ENV", "production"),
		Port: getEnvWithDefault("PORT", "8080"),
		LLM: LLMConfig{
			Provider:            provider,
			APIKey:              apiKeyFor(provider),
			BaseURL:             os.Getenv("LLM_BASE_URL"),
			Model:               os.Getenv("LLM_MODEL"),
			Timeout:             getEnvAsDuration("LLM_TIMEOUT", 55*time.Second),
			MaxTokens:           getEnvAsInt("LLM_MAX_TOKENS", 2000),
			QuestionTemperature: getEnvAsFloat("QUESTION_TEMPERATURE", 0.8),
			AnalysisTemperature: getEnvAsFloat("ANALYSIS_TEMPERATURE", 0.8),
			FollowUpTemperature: getEnvAsFloat("FOLLOWUP_TEMPERATURE", 0.7),
		},
		Session: SessionConfig{
			Secret: os.Getenv("SESSION_SECRET"),
			TTL:    getEnvAsDuration("SESSION_TTL", 2*time.Hour),
		},
		HTTP: HTTPConfig{
			AllowedOrigins:  splitList(getEnvWithDefault("CORS_ALLOWED_ORIGINS", "*")),
			CatalogPath:     os.Getenv("ASSESSMENT_CATALOG_PATH"),
			ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.LLM.APIKey == "" {
		if mode != Lenient {
			return nil, fmt.Errorf("LLM_API_KEY is required for the %s provider", provider)
		}
		logger.Warn("LLM API key is not set, every completion call will be rejected upstream",
			zap.String("provider", provider))
	}

	return cfg, nil
}

// Validate checks values that no validation mode can tolerate.
func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case "openai", "deepseek", "gemini":
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.LLM.Provider)
	}
	if c.LLM.Timeout <= 0 {
		return fmt.Errorf("LLM_TIMEOUT must be positive")
	}
	if c.LLM.MaxTokens <= 0 {
		return fmt.Errorf("LLM_MAX_TOKENS must be positive")
	}
	for name, t := range map[string]float64{
		"QUESTION_TEMPERATURE": c.LLM.QuestionTemperature,
		"ANALYSIS_TEMPERATURE": c.LLM.AnalysisTemperature,
		"FOLLOWUP_TEMPERATURE": c.LLM.FollowUpTemperature,
	} {
		if t < 0 || t > 2 {
			return fmt.Errorf("%s must be between 0 and 2", name)
		}
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// apiKeyFor prefers LLM_API_KEY and falls back to the provider's
// conventional variable.
func apiKeyFor(provider string) string {
	if k := os.Getenv("LLM_API_KEY"); k != "" {
		return k
	}
	switch provider {
	case "gemini":
		return os.Getenv("GEMINI_API_KEY")
	default:
		if k := os.Getenv("DEEPSEEK_API_KEY"); k != "" {
			return k
		}
		return os.Getenv("OPENAI_API_KEY")
	}
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
