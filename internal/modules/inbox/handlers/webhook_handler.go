package handlers

import (
	"log"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/chatandika/wa-automation-be/internal/modules/inbox/repositories"
	"github.com/chatandika/wa-automation-be/internal/modules/inbox/services"
)

type WebhookHandler struct {
	webhookService *services.WebhookService
	workspaceRepo  repositories.WorkspaceRepo
}

func NewWebhookHandler(webhookService *services.WebhookService, workspaceRepo repositories.WorkspaceRepo) *WebhookHandler {
	return &WebhookHandler{
		webhookService: webhookService,
		workspaceRepo:  workspaceRepo,
	}
}

// MetaWebhookPayload is the Cloud API webhook envelope.
// https://developers.facebook.com/docs/whatsapp/cloud-api/webhooks/payload-examples
type MetaWebhookPayload struct {
	Object string `json:"object"`
	Entry  []struct {
		ID      string `json:"id"`
		Changes []struct {
			Field string `json:"field"`
			Value struct {
				Metadata struct {
					DisplayPhoneNumber string `json:"display_phone_number"`
					PhoneNumberID      string `json:"phone_number_id"`
				} `json:"metadata"`
				Contacts []struct {
					WaID    string `json:"wa_id"`
					Profile struct {
						Name string `json:"name"`
					} `json:"profile"`
				} `json:"contacts"`
				Messages []struct {
					ID        string `json:"id"`
					From      string `json:"from"`
					Timestamp string `json:"timestamp"`
					Type      string `json:"type"`
					Text      *struct {
						Body string `json:"body"`
					} `json:"text,omitempty"`
					Interactive *struct {
						Type        string `json:"type"`
						ButtonReply *struct {
							ID    string `json:"id"`
							Title string `json:"title"`
						} `json:"button_reply,omitempty"`
						ListReply *struct {
							ID    string `json:"id"`
							Title string `json:"title"`
						} `json:"list_reply,omitempty"`
					} `json:"interactive,omitempty"`
				} `json:"messages"`
			} `json:"value"`
		} `json:"changes"`
	} `json:"entry"`
}

// Verify answers Meta's webhook subscription handshake.
func (h *WebhookHandler) Verify(c *fiber.Ctx) error {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	if mode == "subscribe" && token == os.Getenv("WEBHOOK_VERIFY_TOKEN") {
		return c.SendString(challenge)
	}
	return c.SendStatus(fiber.StatusForbidden)
}

// Receive ingests one webhook delivery. It always acks with 200 for
// parseable payloads; Meta retries aggressively on anything else.
func (h *WebhookHandler) Receive(c *fiber.Ctx) error {
	var payload MetaWebhookPayload
	if err := c.BodyParser(&payload); err != nil {
		log.Printf("❌ Failed to parse webhook: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid payload",
		})
	}

	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			if change.Field != "messages" {
				continue
			}
			value := change.Value

			workspaceID, err := h.resolveWorkspace(c, value.Metadata.DisplayPhoneNumber)
			if err != nil {
				log.Printf("⚠️ No workspace for phone %s: %v", value.Metadata.DisplayPhoneNumber, err)
				continue
			}

			names := make(map[string]string, len(value.Contacts))
			for _, contact := range value.Contacts {
				names[contact.WaID] = contact.Profile.Name
			}

			for _, msg := range value.Messages {
				in := services.Inbound{
					From:      msg.From,
					Name:      names[msg.From],
					MessageID: msg.ID,
				}

				switch {
				case msg.Text != nil:
					in.Body = msg.Text.Body
				case msg.Interactive != nil && msg.Interactive.ButtonReply != nil:
					in.IsButtonReply = true
					in.ButtonID = msg.Interactive.ButtonReply.ID
					in.Body = msg.Interactive.ButtonReply.Title
				case msg.Interactive != nil && msg.Interactive.ListReply != nil:
					in.IsButtonReply = true
					in.ButtonID = msg.Interactive.ListReply.ID
					in.Body = msg.Interactive.ListReply.Title
				default:
					// Media, reactions, stickers: record nothing, automate nothing.
					continue
				}

				if err := h.webhookService.HandleInbound(c.Context(), workspaceID, in); err != nil {
					log.Printf("❌ Failed to handle inbound message %s: %v", msg.ID, err)
				}
			}
		}
	}

	return c.JSON(fiber.Map{"status": "success"})
}

// resolveWorkspace maps the receiving business number to a workspace,
// with a workspace_id query override for single-tenant setups.
func (h *WebhookHandler) resolveWorkspace(c *fiber.Ctx, displayPhone string) (uuid.UUID, error) {
	if idStr := c.Query("workspace_id"); idStr != "" {
		return uuid.Parse(idStr)
	}
	ws, err := h.workspaceRepo.GetByPhone(displayPhone)
	if err != nil {
		return uuid.Nil, err
	}
	return ws.ID, nil
}
