package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/chatandika/wa-automation-be/internal/modules/inbox/services"
)

type SettingsHandler struct {
	settingsService *services.SettingsService
}

func NewSettingsHandler(settingsService *services.SettingsService) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService}
}

// GetSettings returns the workspace automation settings, creating
// defaults on first access.
func (h *SettingsHandler) GetSettings(c *fiber.Ctx) error {
	workspaceID, err := uuid.Parse(c.Params("workspace_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid workspace_id format",
		})
	}

	setting, err := h.settingsService.Get(workspaceID)
	if err != nil {
		log.Printf("❌ Failed to load settings: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to load settings",
		})
	}

	return c.JSON(fiber.Map{
		"status": "success",
		"data":   setting,
	})
}

// UpdateSettings applies a partial settings change.
func (h *SettingsHandler) UpdateSettings(c *fiber.Ctx) error {
	workspaceID, err := uuid.Parse(c.Params("workspace_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid workspace_id format",
		})
	}

	var in services.UpdateInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	setting, err := h.settingsService.Update(workspaceID, in)
	if err != nil {
		log.Printf("❌ Failed to update settings: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to update settings",
		})
	}

	return c.JSON(fiber.Map{
		"status":  "success",
		"message": "Settings updated successfully",
		"data":    setting,
	})
}
