package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Application
	AppName string
	AppEnv  string
	AppURL  string
	Port    string

	// Database (optional driver switch via ENV, default: sqlite)
	DBDriver     string
	DBConnection string

	// Security
	JWTSecret   string
	JWTExpiry   time.Duration
	DevUserID   string // development only: requests without a token act as this user
	RateLimit   int    // journey generations per minute per user
	RateWindow  time.Duration
	ReadTimeout time.Duration

	// Journey generation (LLM_PROVIDER: gemini, anthropic or openai)
	LLMProvider     string
	GeminiAPIKey    string
	GeminiModel     string
	AnthropicAPIKey string
	AnthropicModel  string
	OpenAIAPIKey    string
	OpenAIModel     string
	OpenAIBaseURL   string
	GenerateTimeout time.Duration

	// Email
	EmailFrom        string
	ResendAPIKey     string
	NotifyMilestones bool

	// Observability (optional)
	SentryDSN string

	// Journey archive (optional, S3-compatible: MinIO, AWS S3, Cloudflare R2, etc.)
	S3Region    string
	S3Bucket    string
	S3AccessKey string
	S3SecretKey string
	S3Endpoint  string
}

func Load() *Config {
	err := godotenv.Load()
	if err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg := &Config{
		AppName: envString("APP_NAME", "Pro Buddy"),
		AppEnv:  envString("APP_ENV", "development"),
		AppURL:  envString("APP_URL", "http://localhost:8000"),
		Port:    envString("PORT", "8000"),

		DBDriver:     envString("DB_DRIVER", "sqlite"),
		DBConnection: envString("DB_CONNECTION", "./data/journeys.db?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"),

		JWTSecret:   envString("JWT_SECRET", ""),
		JWTExpiry:   envDuration("JWT_EXPIRY", 7*24*time.Hour),
		DevUserID:   envString("DEV_USER_ID", "dev_user_123"),
		RateLimit:   envInt("RATE_LIMIT_PER_MINUTE", 60),
		RateWindow:  envDuration("RATE_LIMIT_WINDOW", time.Minute),
		ReadTimeout: envDuration("READ_TIMEOUT", 15*time.Second),

		LLMProvider:     envString("LLM_PROVIDER", "gemini"),
		GeminiAPIKey:    envString("GEMINI_API_KEY", ""),
		GeminiModel:     envString("GEMINI_MODEL", "gemini-2.0-flash"),
		AnthropicAPIKey: envString("ANTHROPIC_API_KEY", ""),
		AnthropicModel:  envString("ANTHROPIC_MODEL", ""),
		OpenAIAPIKey:    envString("OPENAI_API_KEY", ""),
		OpenAIModel:     envString("OPENAI_MODEL", ""),
		OpenAIBaseURL:   envString("OPENAI_BASE_URL", ""),
		GenerateTimeout: envDuration("GENERATE_TIMEOUT", 60*time.Second),

		EmailFrom:        envString("EMAIL_FROM", "noreply@example.com"),
		ResendAPIKey:     envString("RESEND_API_KEY", ""),
		NotifyMilestones: envBool("NOTIFY_MILESTONES", true),

		SentryDSN: envString("SENTRY_DSN", ""),

		S3Region:    envString("S3_REGION", "us-east-1"),
		S3Bucket:    envString("S3_BUCKET", ""),
		S3AccessKey: envString("S3_ACCESS_KEY", ""),
		S3SecretKey: envString("S3_SECRET_KEY", ""),
		S3Endpoint:  envString("S3_ENDPOINT", ""),
	}

	if cfg.IsProduction() {
		validateProduction(cfg)
	}

	return cfg
}

// validateProduction ensures the services a production deployment depends on
// are configured. Development runs without a token secret, a model key or
// email delivery.
func validateProduction(cfg *Config) {
	missing := cfg.missingProduction()
	if len(missing) > 0 {
		slog.Error("production deployment requires configuration",
			"missing", missing,
			"hint", "set APP_ENV=development for local testing")
		os.Exit(1)
	}
}

func (c *Config) missingProduction() []string {
	var missing []string
	if c.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if key, name := c.ModelKey(); key == "" {
		missing = append(missing, name)
	}
	if c.ResendAPIKey == "" && c.NotifyMilestones {
		missing = append(missing, "RESEND_API_KEY")
	}
	return missing
}

func envString(key, def string) string {
	value := os.Getenv(key)
	if value == "" {
		value = def
	}
	return value
}

func envInt(key string, def int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("config invalid int, using default", "key", key, "value", v, "default", def)
		return def
	}
	return n
}

func envBool(key string, def bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("config invalid bool, using default", "key", key, "value", v, "default", def)
		return def
	}
	return b
}

func envDuration(key string, def time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("config invalid duration, using default", "key", key, "value", v, "default", def)
		return def
	}
	return d
}

// ModelKey returns the API key of the selected model provider and the
// variable it is read from.
func (c *Config) ModelKey() (key, name string) {
	switch c.LLMProvider {
	case "anthropic":
		return c.AnthropicAPIKey, "ANTHROPIC_API_KEY"
	case "openai":
		return c.OpenAIAPIKey, "OPENAI_API_KEY"
	default:
		return c.GeminiAPIKey, "GEMINI_API_KEY"
	}
}

// ModelName returns the configured model of the selected provider.
func (c *Config) ModelName() string {
	switch c.LLMProvider {
	case "anthropic":
		return c.AnthropicModel
	case "openai":
		return c.OpenAIModel
	default:
		return c.GeminiModel
	}
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}
