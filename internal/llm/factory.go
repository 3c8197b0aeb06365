package llm

import (
	"context"
	"fmt"
	"time"
)

const (
	retryAttempts = 3
	retryWait     = time.Second
)

// Config selects and configures the model backend. Provider is one of
// gemini, anthropic, openai or mock.
type Config struct {
	Provider string
	APIKey   string
	Model    string
	BaseURL  string // openai-compatible endpoints only
}

// NewProvider builds the configured provider wrapped with retry and logging.
func NewProvider(ctx context.Context, cfg Config) (Provider, error) {
	var base Provider
	var err error

	switch cfg.Provider {
	case "gemini", "":
		base, err = NewGeminiProvider(ctx, cfg.APIKey, cfg.Model)
	case "anthropic":
		base, err = NewAnthropicProvider(cfg.APIKey, cfg.Model)
	case "openai":
		base, err = NewOpenAIProvider(cfg.APIKey, cfg.Model, cfg.BaseURL)
	case "mock":
		return NewMockProvider(), nil
	default:
		return nil, fmt.Errorf("unknown model provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s provider: %w", cfg.Provider, err)
	}

	return WithLogging(WithRetry(base, retryAttempts, retryWait)), nil
}
