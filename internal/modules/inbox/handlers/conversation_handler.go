package handlers

import (
	"log"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/chatandika/wa-automation-be/internal/modules/inbox/repositories"
)

type ConversationHandler struct {
	convRepo repositories.ConversationRepo
	msgRepo  repositories.MessageRepo
}

func NewConversationHandler(convRepo repositories.ConversationRepo, msgRepo repositories.MessageRepo) *ConversationHandler {
	return &ConversationHandler{convRepo: convRepo, msgRepo: msgRepo}
}

// GetMessages returns the recent message history of a conversation.
func (h *ConversationHandler) GetMessages(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid conversation id format",
		})
	}

	limit, _ := strconv.Atoi(c.Query("limit", "50"))

	msgs, err := h.msgRepo.ListByConversation(id, limit)
	if err != nil {
		log.Printf("❌ Failed to list messages: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to retrieve messages",
		})
	}

	return c.JSON(fiber.Map{
		"status": "success",
		"count":  len(msgs),
		"data":   msgs,
	})
}

// GetConversation returns one conversation with its session state.
func (h *ConversationHandler) GetConversation(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid conversation id format",
		})
	}

	conv, err := h.convRepo.GetByID(id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "conversation not found",
		})
	}

	return c.JSON(fiber.Map{
		"status": "success",
		"data":   conv,
	})
}
