package llm

import (
	"fmt"
	"math"
	"os"
	"strings"
	"time"
)

// Config holds all LLM provider configuration.
type Config struct {
	// Provider selects which LLM provider to use.
	// Values: "gemini", "openai", "anthropic", "openrouter", "mock"
	Provider string

	Gemini     GeminiConfig
	OpenAI     OpenAIConfig
	Anthropic  AnthropicConfig
	OpenRouter OpenRouterConfig
	Retry      RetryConfig

	// Timeout is the maximum duration for a single logical request
	// (including retries). Default: 2m.
	Timeout time.Duration
}

// GeminiConfig holds Gemini-specific configuration.
type GeminiConfig struct {
	APIKey  string
	Model   string // Default: "gemini-2.5-flash"
	BaseURL string // Optional. Override for tests or proxies.
}

// OpenAIConfig holds OpenAI-specific configuration.
type OpenAIConfig struct {
	APIKey  string
	Model   string // Default: "gpt-4o-mini"
	BaseURL string // Optional. Override for OpenRouter or compatible APIs.
}

// AnthropicConfig holds Anthropic-specific configuration.
type AnthropicConfig struct {
	APIKey  string
	Model   string // Default: "claude-haiku"
	BaseURL string // Optional.
}

// OpenRouterConfig holds OpenRouter-specific configuration.
type OpenRouterConfig struct {
	APIKey  string
	Model   string // Default: "google/gemini-2.5-flash"
	BaseURL string // Default: "https://openrouter.ai/api/v1"
}

// RetryConfig configures retry behavior for rate-limited calls.
type RetryConfig struct {
	// MaxRetries is the number of extra attempts after the first.
	MaxRetries  int
	InitialWait time.Duration
	MaxWait     time.Duration // 0 = uncapped
	Multiplier  float64
}

// Backoff returns the wait before retry n (0-based):
// InitialWait * Multiplier^n, capped at MaxWait.
func (c RetryConfig) Backoff(n int) time.Duration {
	mult := c.Multiplier
	if mult <= 0 {
		mult = 2
	}
	wait := time.Duration(float64(c.InitialWait) * math.Pow(mult, float64(n)))
	if c.MaxWait > 0 && wait > c.MaxWait {
		wait = c.MaxWait
	}
	return wait
}

// DefaultRetryConfig waits 1s, 2s, then 4s between attempts.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:  3,
		InitialWait: 1 * time.Second,
		Multiplier:  2.0,
	}
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Provider: "gemini",
		Gemini: GeminiConfig{
			Model: "gemini-2.5-flash",
		},
		OpenAI: OpenAIConfig{
			Model: "gpt-4o-mini",
		},
		Anthropic: AnthropicConfig{
			Model: "claude-haiku",
		},
		OpenRouter: OpenRouterConfig{
			Model: "google/gemini-2.5-flash",
		},
		Retry:   DefaultRetryConfig(),
		Timeout: 2 * time.Minute,
	}
}

// ConfigFromEnv builds a Config from environment variables, falling back
// to defaults for unset values. The Gemini key is left for ResolveAPIKey so
// that a key saved in settings takes precedence.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	if p := os.Getenv("INVESTIQ_LLM_PROVIDER"); p != "" {
		cfg.Provider = p
	}

	if m := os.Getenv("INVESTIQ_GEMINI_MODEL"); m != "" {
		cfg.Gemini.Model = m
	}
	if u := os.Getenv("INVESTIQ_GEMINI_BASE_URL"); u != "" {
		cfg.Gemini.BaseURL = u
	}

	if k := os.Getenv("INVESTIQ_OPENAI_API_KEY"); k != "" {
		cfg.OpenAI.APIKey = k
	}
	if m := os.Getenv("INVESTIQ_OPENAI_MODEL"); m != "" {
		cfg.OpenAI.Model = m
	}
	if u := os.Getenv("INVESTIQ_OPENAI_BASE_URL"); u != "" {
		cfg.OpenAI.BaseURL = u
	}

	if k := os.Getenv("INVESTIQ_ANTHROPIC_API_KEY"); k != "" {
		cfg.Anthropic.APIKey = k
	}
	if m := os.Getenv("INVESTIQ_ANTHROPIC_MODEL"); m != "" {
		cfg.Anthropic.Model = m
	}

	if k := os.Getenv("INVESTIQ_OPENROUTER_API_KEY"); k != "" {
		cfg.OpenRouter.APIKey = k
	}
	if m := os.Getenv("INVESTIQ_OPENROUTER_MODEL"); m != "" {
		cfg.OpenRouter.Model = m
	}

	return cfg
}

// ResolveAPIKey picks the Gemini key: the key saved in settings first,
// then INVESTIQ_GEMINI_API_KEY, then GEMINI_API_KEY.
func ResolveAPIKey(stored string) (string, error) {
	for _, k := range []string{
		stored,
		os.Getenv("INVESTIQ_GEMINI_API_KEY"),
		os.Getenv("GEMINI_API_KEY"),
	} {
		if k = strings.TrimSpace(k); k != "" {
			return k, nil
		}
	}
	return "", ErrMissingAPIKey
}

// Validate checks that the selected provider has its required API key set.
func (c Config) Validate() error {
	switch c.Provider {
	case "gemini":
		if c.Gemini.APIKey == "" {
			return ErrMissingAPIKey
		}
	case "openai":
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("INVESTIQ_OPENAI_API_KEY is required for the openai provider")
		}
	case "anthropic":
		if c.Anthropic.APIKey == "" {
			return fmt.Errorf("INVESTIQ_ANTHROPIC_API_KEY is required for the anthropic provider")
		}
	case "openrouter":
		if c.OpenRouter.APIKey == "" {
			return fmt.Errorf("INVESTIQ_OPENROUTER_API_KEY is required for the openrouter provider")
		}
	case "mock":
		// No API key needed.
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	return nil
}
