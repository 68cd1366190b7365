package llm

import (
	"context"
	"strings"
)

// defaultSystemPrompt frames rule-triggered AI replies. Tenants supply
// the user-level prompt on the rule itself.
const defaultSystemPrompt = "You are a helpful customer support assistant replying on WhatsApp " +
	"on behalf of a business. Keep answers short, friendly, and in the customer's language. " +
	"Never invent order details, prices, or policies."

// Service wraps an LLMProvider behind the small generation surface the
// dispatcher needs.
type Service struct {
	provider     LLMProvider
	systemPrompt string
}

func NewService(provider LLMProvider) *Service {
	return &Service{provider: provider, systemPrompt: defaultSystemPrompt}
}

// WithSystemPrompt overrides the framing prompt, for workspaces with a
// custom persona.
func (s *Service) WithSystemPrompt(prompt string) *Service {
	if strings.TrimSpace(prompt) != "" {
		s.systemPrompt = prompt
	}
	return s
}

// Generate produces one reply from the rule's prompt.
func (s *Service) Generate(ctx context.Context, prompt string) (string, error) {
	reply, err := s.provider.GenerateResponse(ctx, s.systemPrompt, prompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(reply), nil
}

// ProviderName exposes the backend name for logging.
func (s *Service) ProviderName() string {
	return s.provider.GetProviderName()
}
