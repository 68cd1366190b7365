// Package whatsapp holds the outbound channel providers a workspace can
// attach: the official Cloud API or a paired personal account via
// whatsmeow.
package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"os"
)

// ErrUnsupported marks a message type the active provider cannot
// deliver. Callers degrade to plain text when they see it.
var ErrUnsupported = errors.New("message type not supported by this provider")

// Button is one interactive reply button.
type Button struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Location is a location card payload.
type Location struct {
	Name      string  `json:"name"`
	Address   string  `json:"address"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// CTAButton is a single call-to-action URL button.
type CTAButton struct {
	Text string `json:"text"`
	URL  string `json:"url"`
}

// Provider is implemented by every WhatsApp delivery backend.
type Provider interface {
	Connect() error
	Disconnect()

	SendText(ctx context.Context, to, body string) error
	SendTemplate(ctx context.Context, to, templateName, languageCode string) error
	SendButtons(ctx context.Context, to, body string, buttons []Button) error
	SendMedia(ctx context.Context, to, link, fileType, caption string) error
	SendLocation(ctx context.Context, to string, loc Location) error
	SendCTA(ctx context.Context, to, body string, cta CTAButton) error

	// GenerateQR returns a pairing QR code as PNG bytes, for providers
	// that pair by scanning.
	GenerateQR(sessionID string) ([]byte, error)

	IsConnected() bool
	GetProviderName() string
}

// ProviderType selects a backend in the factory.
type ProviderType string

const (
	ProviderCloudAPI  ProviderType = "cloud_api"
	ProviderWhatsmeow ProviderType = "whatsmeow"
)

// ProviderConfig carries per-workspace channel credentials.
type ProviderConfig struct {
	Type ProviderType

	// Cloud API
	PhoneID     string
	AccessToken string
	APIVersion  string

	// Whatsmeow
	StoreURL string
}

// NewProvider builds the configured channel provider.
func NewProvider(cfg *ProviderConfig) (Provider, error) {
	switch cfg.Type {
	case ProviderCloudAPI:
		return NewCloudAPIProvider(CloudAPIConfig{
			PhoneID:     cfg.PhoneID,
			AccessToken: cfg.AccessToken,
			APIVersion:  cfg.APIVersion,
		})

	case ProviderWhatsmeow:
		return NewWhatsmeowProvider(cfg.StoreURL), nil

	default:
		return nil, fmt.Errorf("unknown provider type: %s", cfg.Type)
	}
}

// LoadProviderFromEnv reads the default channel config from the
// environment. Per-workspace credentials stored in the database
// override this.
func LoadProviderFromEnv() (*ProviderConfig, error) {
	providerType := os.Getenv("WHATSAPP_PROVIDER")
	if providerType == "" {
		providerType = "cloud_api" // default
	}

	cfg := &ProviderConfig{
		Type:        ProviderType(providerType),
		PhoneID:     os.Getenv("WHATSAPP_PHONE_ID"),
		AccessToken: os.Getenv("WHATSAPP_ACCESS_TOKEN"),
		APIVersion:  os.Getenv("WHATSAPP_API_VERSION"),
		StoreURL:    os.Getenv("WHATSAPP_STORE_URL"),
	}

	return cfg, nil
}
