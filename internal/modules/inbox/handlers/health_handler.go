package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/chatandika/wa-automation-be/internal/shared/database"
)

type HealthHandler struct {
	db *database.DB
}

func NewHealthHandler(db *database.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	if err := h.db.Ping(); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "unhealthy",
			"error":  "database unreachable",
		})
	}
	return c.JSON(fiber.Map{
		"status": "healthy",
	})
}
