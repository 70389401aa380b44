package assistant

import (
	"os"
	"strings"
	"time"
)

const (
	defaultModel   = "gpt-4.1-mini"
	defaultBaseURL = "https://api.openai.com/v1"
	defaultTimeout = 15 * time.Second
)

// Config collects everything the assistant needs from the environment. An
// empty APIKey selects the deterministic-only resolver mode.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
	// FallbackOnError makes a completion-service failure (timeout,
	// transport error) fall back to the keyword resolver instead of
	// degrading straight to HELP.
	FallbackOnError bool
}

// FromEnv reads OPENAI_API_KEY, OPENAI_MODEL, OPENAI_BASE_URL and
// ASSISTANT_FALLBACK_ON_ERROR, applying defaults for the unset ones.
func FromEnv() Config {
	cfg := Config{
		APIKey:          strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
		Model:           os.Getenv("OPENAI_MODEL"),
		BaseURL:         os.Getenv("OPENAI_BASE_URL"),
		Timeout:         defaultTimeout,
		FallbackOnError: os.Getenv("ASSISTANT_FALLBACK_ON_ERROR") != "false",
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	return cfg
}
