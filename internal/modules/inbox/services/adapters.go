package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/chatandika/wa-automation-be/internal/core/flow"
	"github.com/chatandika/wa-automation-be/internal/core/whatsapp"
	"github.com/chatandika/wa-automation-be/internal/modules/inbox/models"
	"github.com/chatandika/wa-automation-be/internal/modules/inbox/repositories"
)

// ChannelResolver hands out the outbound provider for a workspace.
type ChannelResolver interface {
	ProviderFor(ws *models.Workspace) (whatsapp.Provider, error)
}

// channelService adapts whatsapp.Service, decoding the per-workspace
// credentials blob into a provider config.
type channelService struct {
	svc *whatsapp.Service
}

func NewChannelResolver(svc *whatsapp.Service) ChannelResolver {
	return &channelService{svc: svc}
}

func (c *channelService) ProviderFor(ws *models.Workspace) (whatsapp.Provider, error) {
	var cfg *whatsapp.ProviderConfig
	if len(ws.ChannelCreds) > 0 {
		var creds struct {
			PhoneID     string `json:"phone_id"`
			AccessToken string `json:"access_token"`
			APIVersion  string `json:"api_version"`
			StoreURL    string `json:"store_url"`
		}
		if err := json.Unmarshal(ws.ChannelCreds, &creds); err != nil {
			return nil, fmt.Errorf("failed to decode channel credentials: %w", err)
		}
		cfg = &whatsapp.ProviderConfig{
			Type:        whatsapp.ProviderType(ws.Channel),
			PhoneID:     creds.PhoneID,
			AccessToken: creds.AccessToken,
			APIVersion:  creds.APIVersion,
			StoreURL:    creds.StoreURL,
		}
	}
	return c.svc.ProviderFor(ws.ID, cfg)
}

// providerSender adapts a channel provider to the dispatcher's sender
// surface.
type providerSender struct {
	provider whatsapp.Provider
	language string
}

func (s *providerSender) SendText(ctx context.Context, to, body string) error {
	return s.provider.SendText(ctx, to, body)
}

func (s *providerSender) SendTemplate(ctx context.Context, to, templateName string) error {
	return s.provider.SendTemplate(ctx, to, templateName, s.language)
}

// providerEmitter adapts a channel provider to the flow emitter
// surface, recording every delivered message on the conversation.
type providerEmitter struct {
	provider       whatsapp.Provider
	msgs           repositories.MessageRepo
	conversationID uuid.UUID
	httpClient     *http.Client
}

func newProviderEmitter(provider whatsapp.Provider, msgs repositories.MessageRepo, conversationID uuid.UUID) *providerEmitter {
	return &providerEmitter{
		provider:       provider,
		msgs:           msgs,
		conversationID: conversationID,
		httpClient:     &http.Client{Timeout: 10 * time.Second},
	}
}

func (e *providerEmitter) record(body, messageType string) {
	_ = e.msgs.Create(&models.Message{
		ConversationID: e.conversationID,
		Direction:      "outgoing",
		Sender:         "bot",
		Body:           body,
		MessageType:    messageType,
	})
}

func (e *providerEmitter) SendText(ctx context.Context, to, body string) error {
	if err := e.provider.SendText(ctx, to, body); err != nil {
		return err
	}
	e.record(body, "text")
	return nil
}

func (e *providerEmitter) SendMedia(ctx context.Context, to, link, fileType, caption string) error {
	if err := e.provider.SendMedia(ctx, to, link, fileType, caption); err != nil {
		return err
	}
	e.record(link, fileType)
	return nil
}

func (e *providerEmitter) SendButtons(ctx context.Context, to, body string, buttons []flow.Button) error {
	converted := make([]whatsapp.Button, 0, len(buttons))
	for _, b := range buttons {
		converted = append(converted, whatsapp.Button{ID: b.ID, Title: b.Title})
	}
	if err := e.provider.SendButtons(ctx, to, body, converted); err != nil {
		return err
	}
	e.record(body, "interactive")
	return nil
}

func (e *providerEmitter) SendLocation(ctx context.Context, to string, loc flow.Location) error {
	err := e.provider.SendLocation(ctx, to, whatsapp.Location{
		Name:      loc.Name,
		Address:   loc.Address,
		Latitude:  loc.Latitude,
		Longitude: loc.Longitude,
	})
	if err != nil {
		return err
	}
	e.record(loc.Name, "location")
	return nil
}

func (e *providerEmitter) SendCTA(ctx context.Context, to, body string, cta flow.CTAButton) error {
	err := e.provider.SendCTA(ctx, to, body, whatsapp.CTAButton{
		Text: cta.ButtonText,
		URL:  cta.URL,
	})
	if err != nil {
		return err
	}
	e.record(body, "interactive")
	return nil
}

// CallAPI fires a node's webhook. The response body is discarded.
func (e *providerEmitter) CallAPI(ctx context.Context, call flow.APICall) error {
	method := call.Method
	if method == "" {
		method = http.MethodGet
	}
	req, err := http.NewRequestWithContext(ctx, method, call.Endpoint, nil)
	if err != nil {
		return err
	}
	resp, err := e.httpClient.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("node api call returned status %d", resp.StatusCode)
	}
	return nil
}

// cannedStore adapts the canned response repo to the dispatcher's
// material lookup.
type cannedStore struct {
	repo repositories.CannedResponseRepo
}

func (c *cannedStore) GetBody(ctx context.Context, materialID string) (string, error) {
	id, err := uuid.Parse(materialID)
	if err != nil {
		return "", fmt.Errorf("invalid material id: %w", err)
	}
	resp, err := c.repo.GetByID(id)
	if err != nil {
		return "", err
	}
	return resp.Body, nil
}

// teamAvailability answers the no-agent rule from team presence.
type teamAvailability struct {
	repo repositories.TeamRepo
}

func (t *teamAvailability) AnyAgentAvailable(ctx context.Context, workspaceID uuid.UUID) (bool, error) {
	count, err := t.repo.CountOnline(workspaceID)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// botRecorder persists one outbound record per dispatched rule reply.
type botRecorder struct {
	repo repositories.MessageRepo
}

func (b *botRecorder) RecordBotMessage(ctx context.Context, conversationID, body string) error {
	id, err := uuid.Parse(conversationID)
	if err != nil {
		return fmt.Errorf("invalid conversation id: %w", err)
	}
	return b.repo.Create(&models.Message{
		ConversationID: id,
		Direction:      "outgoing",
		Sender:         "bot",
		Body:           body,
		MessageType:    "text",
	})
}
