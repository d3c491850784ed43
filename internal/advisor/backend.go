package advisor

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms/openai"
)

// Supported text-generation providers.
const (
	ProviderOpenAI     = "openai"
	ProviderOpenRouter = "openrouter"
	ProviderGemini     = "gemini"
)

const openRouterBaseURL = "https://openrouter.ai/api/v1"

// Prompt is one request to a text-generation backend.
type Prompt struct {
	// System holds the leading instructions.
	System string
	// User holds the user-facing content.
	User string
	// Closing is an optional instruction sent after the user content.
	Closing string
}

// Backend turns a prompt into plain text. Both synthesizers share one Backend
// and differ only in prompt content.
type Backend interface {
	Generate(ctx context.Context, p Prompt) (string, error)
}

// LLMConfig selects and configures a Backend.
type LLMConfig struct {
	Provider  string
	APIKey    string
	Model     string
	MaxTokens int
}

func defaultModel(provider string) string {
	switch provider {
	case ProviderOpenRouter:
		return "openai/gpt-4o-mini"
	case ProviderGemini:
		return "gemini-2.0-flash"
	default:
		return "gpt-4o-mini"
	}
}

// NewBackend builds the Backend for cfg.Provider.
func NewBackend(ctx context.Context, cfg LLMConfig) (Backend, error) {
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if provider == "" {
		provider = ProviderOpenAI
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("api key is required for llm provider %q", provider)
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel(provider)
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 1024
	}

	switch provider {
	case ProviderOpenAI:
		llm, err := openai.New(
			openai.WithToken(cfg.APIKey),
			openai.WithModel(cfg.Model),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create OpenAI LLM: %w", err)
		}
		return NewLangChainBackend(llm, cfg.MaxTokens), nil

	case ProviderOpenRouter:
		// OpenRouter speaks the OpenAI API.
		llm, err := openai.New(
			openai.WithToken(cfg.APIKey),
			openai.WithBaseURL(openRouterBaseURL),
			openai.WithModel(cfg.Model),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create OpenRouter LLM: %w", err)
		}
		return NewLangChainBackend(llm, cfg.MaxTokens), nil

	case ProviderGemini:
		return NewGeminiBackend(ctx, cfg.APIKey, cfg.Model, cfg.MaxTokens)

	default:
		return nil, fmt.Errorf("unknown llm provider %q", provider)
	}
}
