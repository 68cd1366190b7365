package whatsapp

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"image/png"
	"log"

	_ "github.com/lib/pq"
	qrcode "github.com/skip2/go-qrcode"
	"go.mau.fi/whatsmeow"
	waProto "go.mau.fi/whatsmeow/binary/proto"
	"go.mau.fi/whatsmeow/store/sqlstore"
	"go.mau.fi/whatsmeow/types"
	waLog "go.mau.fi/whatsmeow/util/log"
	"google.golang.org/protobuf/proto"
	_ "modernc.org/sqlite"
)

// WhatsmeowProvider pairs a personal WhatsApp account over the
// multi-device protocol. Templates and interactive messages are not
// part of that protocol; those sends return ErrUnsupported and callers
// degrade to text.
type WhatsmeowProvider struct {
	client   *whatsmeow.Client
	storeURL string
}

func NewWhatsmeowProvider(storeURL string) *WhatsmeowProvider {
	return &WhatsmeowProvider{storeURL: storeURL}
}

func (w *WhatsmeowProvider) GetProviderName() string {
	return "Whatsmeow"
}

func (w *WhatsmeowProvider) initStore() (*sqlstore.Container, error) {
	ctx := context.Background()
	dbLog := waLog.Stdout("Database", "ERROR", true)

	if w.storeURL != "" {
		container, err := sqlstore.New(ctx, "postgres", w.storeURL, dbLog)
		if err != nil {
			return nil, fmt.Errorf("failed to init PostgreSQL store: %w", err)
		}
		if err := container.Upgrade(ctx); err != nil {
			return nil, fmt.Errorf("failed to upgrade PostgreSQL schema: %w", err)
		}
		return container, nil
	}

	rawDB, err := sql.Open("sqlite", "file:store.db?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	if _, err = rawDB.Exec("PRAGMA foreign_keys = ON;"); err != nil {
		log.Printf("failed to enable foreign_keys pragma: %v", err)
	}

	container := sqlstore.NewWithDB(rawDB, "sqlite", dbLog)
	if err := container.Upgrade(ctx); err != nil {
		return nil, fmt.Errorf("failed to upgrade SQLite schema: %w", err)
	}
	return container, nil
}

func (w *WhatsmeowProvider) Connect() error {
	container, err := w.initStore()
	if err != nil {
		return fmt.Errorf("failed to init store: %w", err)
	}

	deviceStore, err := container.GetFirstDevice(context.Background())
	if err != nil {
		return fmt.Errorf("failed to get device: %w", err)
	}

	w.client = whatsmeow.NewClient(deviceStore, waLog.Stdout("Client", "INFO", true))

	if w.client.Store.ID == nil {
		return fmt.Errorf("device not paired yet, scan the QR code first")
	}
	if err := w.client.Connect(); err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	return nil
}

func (w *WhatsmeowProvider) Disconnect() {
	if w.client != nil {
		w.client.Disconnect()
	}
}

func (w *WhatsmeowProvider) SendText(ctx context.Context, to, body string) error {
	if w.client == nil {
		return fmt.Errorf("client not initialized")
	}

	jid := types.NewJID(cleanPhoneNumber(to), "s.whatsapp.net")
	msg := &waProto.Message{Conversation: proto.String(body)}

	_, err := w.client.SendMessage(ctx, jid, msg)
	return err
}

func (w *WhatsmeowProvider) SendTemplate(ctx context.Context, to, templateName, languageCode string) error {
	return ErrUnsupported
}

func (w *WhatsmeowProvider) SendButtons(ctx context.Context, to, body string, buttons []Button) error {
	return ErrUnsupported
}

// SendMedia sends the caption plus the media link as text. Uploading
// media blobs over the multi-device protocol is not wired up.
func (w *WhatsmeowProvider) SendMedia(ctx context.Context, to, link, fileType, caption string) error {
	body := link
	if caption != "" {
		body = caption + "\n" + link
	}
	return w.SendText(ctx, to, body)
}

func (w *WhatsmeowProvider) SendLocation(ctx context.Context, to string, loc Location) error {
	if w.client == nil {
		return fmt.Errorf("client not initialized")
	}

	jid := types.NewJID(cleanPhoneNumber(to), "s.whatsapp.net")
	msg := &waProto.Message{
		LocationMessage: &waProto.LocationMessage{
			DegreesLatitude:  proto.Float64(loc.Latitude),
			DegreesLongitude: proto.Float64(loc.Longitude),
			Name:             proto.String(loc.Name),
			Address:          proto.String(loc.Address),
		},
	}

	_, err := w.client.SendMessage(ctx, jid, msg)
	return err
}

func (w *WhatsmeowProvider) SendCTA(ctx context.Context, to, body string, cta CTAButton) error {
	return ErrUnsupported
}

// GenerateQR starts a pairing attempt and returns the first QR code as
// PNG bytes.
func (w *WhatsmeowProvider) GenerateQR(sessionID string) ([]byte, error) {
	container, err := w.initStore()
	if err != nil {
		return nil, fmt.Errorf("failed to init store: %w", err)
	}

	deviceStore, err := container.GetFirstDevice(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to get device: %w", err)
	}

	client := whatsmeow.NewClient(deviceStore, waLog.Stdout("Client", "INFO", true))
	qrChan, _ := client.GetQRChannel(context.Background())

	go func() {
		_ = client.Connect()
	}()

	for evt := range qrChan {
		switch evt.Event {
		case "code":
			var buf bytes.Buffer
			img, err := qrcode.New(evt.Code, qrcode.Medium)
			if err != nil {
				client.Disconnect()
				return nil, fmt.Errorf("failed to generate QR: %w", err)
			}
			if err := png.Encode(&buf, img.Image(256)); err != nil {
				client.Disconnect()
				return nil, fmt.Errorf("failed to encode QR png: %w", err)
			}
			return buf.Bytes(), nil
		case "timeout":
			client.Disconnect()
			return nil, fmt.Errorf("QR code timeout")
		}
	}

	client.Disconnect()
	return nil, fmt.Errorf("pairing channel closed without a code")
}

func (w *WhatsmeowProvider) IsConnected() bool {
	return w.client != nil && w.client.IsConnected()
}
