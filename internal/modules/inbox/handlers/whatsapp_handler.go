package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/chatandika/wa-automation-be/internal/modules/inbox/repositories"
	"github.com/chatandika/wa-automation-be/internal/modules/inbox/services"
)

type WhatsAppHandler struct {
	workspaceRepo repositories.WorkspaceRepo
	channels      services.ChannelResolver
}

func NewWhatsAppHandler(workspaceRepo repositories.WorkspaceRepo, channels services.ChannelResolver) *WhatsAppHandler {
	return &WhatsAppHandler{workspaceRepo: workspaceRepo, channels: channels}
}

// GetQR returns a pairing QR code PNG for workspaces on the whatsmeow
// channel.
func (h *WhatsAppHandler) GetQR(c *fiber.Ctx) error {
	workspaceID, err := uuid.Parse(c.Params("workspace_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid workspace_id format",
		})
	}

	ws, err := h.workspaceRepo.GetByID(workspaceID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "workspace not found",
		})
	}

	provider, err := h.channels.ProviderFor(ws)
	if err != nil {
		log.Printf("❌ Failed to resolve channel provider: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to resolve channel provider",
		})
	}

	png, err := provider.GenerateQR(workspaceID.String())
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	c.Set("Content-Type", "image/png")
	return c.Send(png)
}
