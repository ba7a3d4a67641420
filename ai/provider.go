package ai

import (
	"fmt"
	"net/http"
	"time"
	"unicode/utf8"
	"wisp/contract"
	"wisp/errors"

	anthropicoption "github.com/anthropics/anthropic-sdk-go/option"
	openaioption "github.com/openai/openai-go/v3/option"
)

type Provider string

const maxErrorBody = 2048

const (
	ProviderGemini    Provider = "gemini"
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
)

type GeneratorConfig struct {
	Provider Provider
	APIKey   *string
	Model    string
	BaseURL  string
	Timeout  time.Duration
}

// NewGenerator builds the generator of the configured provider.
// Without an api key it returns nil: generative features are then disabled.
func NewGenerator(cfg GeneratorConfig) (contract.Generator, error) {
	if cfg.APIKey == nil || *cfg.APIKey == "" {
		return nil, nil
	}
	httpClient := &http.Client{Timeout: cfg.Timeout}

	switch cfg.Provider {
	case ProviderGemini, "":
		generator, err := NewGeminiGenerator(httpClient, cfg.BaseURL, cfg.Model, *cfg.APIKey)
		if err != nil {
			return nil, err
		}
		return generator, nil
	case ProviderOpenAI:
		return NewOpenAIGenerator(*cfg.APIKey, cfg.BaseURL, cfg.Model, openaioption.WithHTTPClient(httpClient)), nil
	case ProviderAnthropic:
		return NewAnthropicGenerator(*cfg.APIKey, cfg.BaseURL, cfg.Model, anthropicoption.WithHTTPClient(httpClient)), nil
	default:
		return nil, fmt.Errorf("%w: %q", errors.ErrUnknownProvider, cfg.Provider)
	}
}

// truncate keeps at most n bytes of s without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
