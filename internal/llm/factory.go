package llm

import (
	"fmt"
	"strings"

	"github.com/tahcohcat/steamwrapped-web/config"
	"github.com/tahcohcat/steamwrapped-web/internal/llm/ollama"
	"github.com/tahcohcat/steamwrapped-web/internal/llm/openai"
)

type Provider string

const (
	ProviderGemini Provider = "gemini"
	ProviderOllama Provider = "ollama"
	ProviderOpenAI Provider = "openai"
	ProviderNone   Provider = "none"
)

// NewLLMClient creates a new LLM client based on the configuration.
// It returns ErrProviderDisabled when the provider is "none" or has no key.
func NewLLMClient(cfg *config.Config) (LLM, error) {
	switch Provider(strings.ToLower(cfg.LLM.Provider)) {
	case ProviderOllama:
		return ollama.NewClient(&cfg.Ollama)
	case ProviderOpenAI:
		if cfg.OpenAI.APIKey == "" {
			return nil, ErrProviderDisabled
		}
		return openai.NewClient(&cfg.OpenAI)
	case ProviderGemini:
		if cfg.Gemini.APIKey == "" {
			return nil, ErrProviderDisabled
		}
		return openai.NewClient(&config.OpenAIConfig{
			APIKey:  cfg.Gemini.APIKey,
			Model:   cfg.Gemini.Model,
			BaseURL: cfg.Gemini.BaseURL,
			Timeout: cfg.Gemini.Timeout,
		})
	case ProviderNone, "":
		return nil, ErrProviderDisabled
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.LLM.Provider)
	}
}
