package whatsapp

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Service hands out channel providers per workspace and caches them so
// repeated webhook deliveries reuse connections.
type Service struct {
	mu        sync.Mutex
	providers map[uuid.UUID]Provider
	fallback  *ProviderConfig
}

// NewService builds the service. fallback is used for workspaces that
// have no channel credentials of their own.
func NewService(fallback *ProviderConfig) *Service {
	return &Service{
		providers: make(map[uuid.UUID]Provider),
		fallback:  fallback,
	}
}

// ProviderFor returns the cached provider for a workspace, building and
// connecting one from cfg on first use. A nil cfg falls back to the
// environment-level config.
func (s *Service) ProviderFor(workspaceID uuid.UUID, cfg *ProviderConfig) (Provider, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p, ok := s.providers[workspaceID]; ok {
		return p, nil
	}

	if cfg == nil {
		cfg = s.fallback
	}
	if cfg == nil {
		return nil, fmt.Errorf("workspace %s has no channel configuration", workspaceID)
	}

	p, err := NewProvider(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build channel provider: %w", err)
	}
	if err := p.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect channel provider: %w", err)
	}

	log.Info().Str("workspace_id", workspaceID.String()).
		Str("provider", p.GetProviderName()).Msg("channel provider attached")
	s.providers[workspaceID] = p
	return p, nil
}

// Evict drops a workspace's cached provider, forcing a rebuild on the
// next send. Called when credentials change.
func (s *Service) Evict(workspaceID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.providers[workspaceID]; ok {
		p.Disconnect()
		delete(s.providers, workspaceID)
	}
}

// Shutdown disconnects every cached provider.
func (s *Service) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, p := range s.providers {
		p.Disconnect()
		delete(s.providers, id)
	}
}
