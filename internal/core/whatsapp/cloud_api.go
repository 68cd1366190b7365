package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// maxReplyButtons is the Cloud API limit for interactive reply buttons.
const maxReplyButtons = 3

// CloudAPIProvider implements the official WhatsApp Business Cloud API.
// Documentation: https://developers.facebook.com/docs/whatsapp/cloud-api
type CloudAPIProvider struct {
	baseURL     string
	phoneID     string
	accessToken string
	apiVersion  string
	client      *http.Client
}

// CloudAPIConfig holds workspace credentials for the Cloud API.
type CloudAPIConfig struct {
	PhoneID     string `json:"phone_id"`
	AccessToken string `json:"access_token"`
	APIVersion  string `json:"api_version"`
}

// NewCloudAPIProvider creates a Cloud API provider for one business
// phone number.
func NewCloudAPIProvider(config CloudAPIConfig) (*CloudAPIProvider, error) {
	if config.PhoneID == "" {
		return nil, fmt.Errorf("phone_id is required")
	}
	if config.AccessToken == "" {
		return nil, fmt.Errorf("access_token is required")
	}
	if config.APIVersion == "" {
		config.APIVersion = "v18.0"
	}

	return &CloudAPIProvider{
		baseURL:     fmt.Sprintf("https://graph.facebook.com/%s/%s", config.APIVersion, config.PhoneID),
		phoneID:     config.PhoneID,
		accessToken: config.AccessToken,
		apiVersion:  config.APIVersion,
		client:      &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// Connect is a no-op; the Cloud API is plain HTTP.
func (p *CloudAPIProvider) Connect() error {
	log.Info().Str("phone_id", p.phoneID).Msg("WhatsApp Cloud API initialized")
	return nil
}

func (p *CloudAPIProvider) Disconnect() {}

func (p *CloudAPIProvider) SendText(ctx context.Context, to, body string) error {
	payload := map[string]interface{}{
		"messaging_product": "whatsapp",
		"recipient_type":    "individual",
		"to":                cleanPhoneNumber(to),
		"type":              "text",
		"text": map[string]string{
			"preview_url": "false",
			"body":        body,
		},
	}
	return p.sendRequest(ctx, "/messages", payload)
}

func (p *CloudAPIProvider) SendTemplate(ctx context.Context, to, templateName, languageCode string) error {
	if languageCode == "" {
		languageCode = "en"
	}
	payload := map[string]interface{}{
		"messaging_product": "whatsapp",
		"recipient_type":    "individual",
		"to":                cleanPhoneNumber(to),
		"type":              "template",
		"template": map[string]interface{}{
			"name":     templateName,
			"language": map[string]string{"code": languageCode},
		},
	}
	return p.sendRequest(ctx, "/messages", payload)
}

func (p *CloudAPIProvider) SendButtons(ctx context.Context, to, body string, buttons []Button) error {
	if len(buttons) > maxReplyButtons {
		log.Warn().Int("buttons", len(buttons)).Msg("truncating reply buttons to Cloud API limit")
		buttons = buttons[:maxReplyButtons]
	}

	replies := make([]map[string]interface{}, 0, len(buttons))
	for _, b := range buttons {
		replies = append(replies, map[string]interface{}{
			"type": "reply",
			"reply": map[string]string{
				"id":    b.ID,
				"title": truncate(b.Title, 20), // Cloud API title limit
			},
		})
	}

	payload := map[string]interface{}{
		"messaging_product": "whatsapp",
		"recipient_type":    "individual",
		"to":                cleanPhoneNumber(to),
		"type":              "interactive",
		"interactive": map[string]interface{}{
			"type":   "button",
			"body":   map[string]string{"text": body},
			"action": map[string]interface{}{"buttons": replies},
		},
	}
	return p.sendRequest(ctx, "/messages", payload)
}

func (p *CloudAPIProvider) SendMedia(ctx context.Context, to, link, fileType, caption string) error {
	mediaType := normalizeMediaType(fileType)
	media := map[string]string{"link": link}
	if caption != "" && mediaType != "audio" {
		media["caption"] = caption
	}

	payload := map[string]interface{}{
		"messaging_product": "whatsapp",
		"recipient_type":    "individual",
		"to":                cleanPhoneNumber(to),
		"type":              mediaType,
		mediaType:           media,
	}
	return p.sendRequest(ctx, "/messages", payload)
}

func (p *CloudAPIProvider) SendLocation(ctx context.Context, to string, loc Location) error {
	payload := map[string]interface{}{
		"messaging_product": "whatsapp",
		"recipient_type":    "individual",
		"to":                cleanPhoneNumber(to),
		"type":              "location",
		"location": map[string]interface{}{
			"latitude":  loc.Latitude,
			"longitude": loc.Longitude,
			"name":      loc.Name,
			"address":   loc.Address,
		},
	}
	return p.sendRequest(ctx, "/messages", payload)
}

func (p *CloudAPIProvider) SendCTA(ctx context.Context, to, body string, cta CTAButton) error {
	payload := map[string]interface{}{
		"messaging_product": "whatsapp",
		"recipient_type":    "individual",
		"to":                cleanPhoneNumber(to),
		"type":              "interactive",
		"interactive": map[string]interface{}{
			"type": "cta_url",
			"body": map[string]string{"text": body},
			"action": map[string]interface{}{
				"name": "cta_url",
				"parameters": map[string]string{
					"display_text": cta.Text,
					"url":          cta.URL,
				},
			},
		},
	}
	return p.sendRequest(ctx, "/messages", payload)
}

// GenerateQR is not applicable; Cloud API onboards by phone number
// verification.
func (p *CloudAPIProvider) GenerateQR(sessionID string) ([]byte, error) {
	return nil, fmt.Errorf("cloud API does not use QR pairing")
}

func (p *CloudAPIProvider) IsConnected() bool {
	return true
}

func (p *CloudAPIProvider) GetProviderName() string {
	return "WhatsApp Cloud API"
}

// MarkMessageAsRead acknowledges an inbound message id.
func (p *CloudAPIProvider) MarkMessageAsRead(ctx context.Context, messageID string) error {
	payload := map[string]interface{}{
		"messaging_product": "whatsapp",
		"status":            "read",
		"message_id":        messageID,
	}
	return p.sendRequest(ctx, "/messages", payload)
}

func (p *CloudAPIProvider) sendRequest(ctx context.Context, endpoint string, payload interface{}) error {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(respBody))
	}
	return nil
}

// cleanPhoneNumber strips a WhatsApp JID suffix; the Cloud API wants
// bare phone numbers.
func cleanPhoneNumber(phone string) string {
	if i := strings.IndexByte(phone, '@'); i > 0 {
		return phone[:i]
	}
	return phone
}

func normalizeMediaType(fileType string) string {
	switch strings.ToLower(fileType) {
	case "image", "video", "audio", "document", "sticker":
		return strings.ToLower(fileType)
	default:
		return "document"
	}
}

// truncate shortens s to at most n characters. It counts runes so a
// multi-byte title is never cut mid-character.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
