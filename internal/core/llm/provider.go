// Package llm abstracts the chat-completion providers used for
// AI-generated replies.
package llm

import (
	"context"
	"fmt"
	"os"
)

// LLMProvider is implemented by every chat-completion backend.
type LLMProvider interface {
	GenerateResponse(ctx context.Context, systemPrompt, userMessage string) (string, error)
	GetProviderName() string
}

// ProviderType selects a backend in the factory.
type ProviderType string

const (
	ProviderOpenAI   ProviderType = "openai"
	ProviderGroq     ProviderType = "groq"
	ProviderDeepSeek ProviderType = "deepseek"
)

// ProviderConfig carries everything the factory needs.
type ProviderConfig struct {
	Type ProviderType

	OpenAIKey   string
	GroqKey     string
	DeepSeekKey string

	Model       string
	Temperature float32
	MaxTokens   int
}

// NewProvider builds the configured LLM provider.
func NewProvider(cfg *ProviderConfig) (LLMProvider, error) {
	switch cfg.Type {
	case ProviderOpenAI:
		if cfg.OpenAIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required")
		}
		return NewOpenAIProvider(cfg.OpenAIKey, cfg.Model, cfg.Temperature, cfg.MaxTokens), nil

	case ProviderGroq:
		if cfg.GroqKey == "" {
			return nil, fmt.Errorf("GROQ_API_KEY is required")
		}
		return NewGroqProvider(cfg.GroqKey, cfg.Model, cfg.Temperature, cfg.MaxTokens), nil

	case ProviderDeepSeek:
		if cfg.DeepSeekKey == "" {
			return nil, fmt.Errorf("DEEPSEEK_API_KEY is required")
		}
		return NewDeepSeekProvider(cfg.DeepSeekKey, cfg.Model, cfg.Temperature, cfg.MaxTokens), nil

	default:
		return nil, fmt.Errorf("unknown LLM provider type: %s", cfg.Type)
	}
}

// LoadProviderFromEnv reads provider selection and keys from the
// environment.
func LoadProviderFromEnv() (*ProviderConfig, error) {
	providerType := os.Getenv("LLM_PROVIDER")
	if providerType == "" {
		providerType = "openai" // default
	}

	cfg := &ProviderConfig{
		Type:        ProviderType(providerType),
		OpenAIKey:   os.Getenv("OPENAI_API_KEY"),
		GroqKey:     os.Getenv("GROQ_API_KEY"),
		DeepSeekKey: os.Getenv("DEEPSEEK_API_KEY"),
	}

	if model := os.Getenv("LLM_MODEL"); model != "" {
		cfg.Model = model
	} else {
		switch cfg.Type {
		case ProviderOpenAI:
			cfg.Model = "gpt-4o-mini"
		case ProviderGroq:
			cfg.Model = "llama-3.1-8b-instant"
		case ProviderDeepSeek:
			cfg.Model = "deepseek-chat"
		}
	}

	cfg.Temperature = 0.7
	cfg.MaxTokens = 512

	return cfg, nil
}
