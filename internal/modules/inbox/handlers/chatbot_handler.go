package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/chatandika/wa-automation-be/internal/modules/inbox/models"
	"github.com/chatandika/wa-automation-be/internal/modules/inbox/services"
)

type ChatbotHandler struct {
	chatbotService *services.ChatbotService
}

func NewChatbotHandler(chatbotService *services.ChatbotService) *ChatbotHandler {
	return &ChatbotHandler{chatbotService: chatbotService}
}

type chatbotRequest struct {
	Name           string         `json:"name"`
	Trigger        string         `json:"trigger"`
	Enabled        *bool          `json:"enabled,omitempty"`
	Graph          datatypes.JSON `json:"graph"`
	TimeoutMinutes int            `json:"timeout_minutes"`
}

func (h *ChatbotHandler) ListChatbots(c *fiber.Ctx) error {
	workspaceID, err := uuid.Parse(c.Params("workspace_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid workspace_id format",
		})
	}

	bots, err := h.chatbotService.List(workspaceID)
	if err != nil {
		log.Printf("❌ Failed to list chatbots: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to retrieve chatbots",
		})
	}

	return c.JSON(fiber.Map{
		"status": "success",
		"count":  len(bots),
		"data":   bots,
	})
}

func (h *ChatbotHandler) GetChatbot(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid chatbot id format",
		})
	}

	bot, err := h.chatbotService.Get(id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "chatbot not found",
		})
	}

	return c.JSON(fiber.Map{
		"status": "success",
		"data":   bot,
	})
}

func (h *ChatbotHandler) CreateChatbot(c *fiber.Ctx) error {
	workspaceID, err := uuid.Parse(c.Params("workspace_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid workspace_id format",
		})
	}

	var req chatbotRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	if req.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "name is required",
		})
	}

	bot := models.Chatbot{
		WorkspaceID:    workspaceID,
		Name:           req.Name,
		Trigger:        req.Trigger,
		Enabled:        true,
		Graph:          req.Graph,
		TimeoutMinutes: req.TimeoutMinutes,
	}
	if req.Enabled != nil {
		bot.Enabled = *req.Enabled
	}

	if err := h.chatbotService.Create(&bot); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"status":  "success",
		"message": "Chatbot created successfully",
		"data":    bot,
	})
}

func (h *ChatbotHandler) UpdateChatbot(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid chatbot id format",
		})
	}

	bot, err := h.chatbotService.Get(id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "chatbot not found",
		})
	}

	var req chatbotRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	if req.Name != "" {
		bot.Name = req.Name
	}
	if req.Trigger != "" {
		bot.Trigger = req.Trigger
	}
	if req.Enabled != nil {
		bot.Enabled = *req.Enabled
	}
	if len(req.Graph) > 0 {
		bot.Graph = req.Graph
	}
	if req.TimeoutMinutes > 0 {
		bot.TimeoutMinutes = req.TimeoutMinutes
	}

	if err := h.chatbotService.Update(bot); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"status":  "success",
		"message": "Chatbot updated successfully",
		"data":    bot,
	})
}

func (h *ChatbotHandler) DeleteChatbot(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid chatbot id format",
		})
	}

	if err := h.chatbotService.Delete(id); err != nil {
		log.Printf("❌ Failed to delete chatbot: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to delete chatbot",
		})
	}

	return c.JSON(fiber.Map{
		"status":  "success",
		"message": "Chatbot deleted successfully",
	})
}
