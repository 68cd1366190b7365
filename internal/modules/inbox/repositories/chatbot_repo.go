package repositories

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/chatandika/wa-automation-be/internal/modules/inbox/models"
)

type ChatbotRepo interface {
	GetByID(id uuid.UUID) (*models.Chatbot, error)
	ListByWorkspace(workspaceID uuid.UUID) ([]models.Chatbot, error)
	ListEnabled(workspaceID uuid.UUID) ([]models.Chatbot, error)
	Create(bot *models.Chatbot) error
	Update(bot *models.Chatbot) error
	Delete(id uuid.UUID) error
}

type chatbotRepo struct {
	db *gorm.DB
}

func NewChatbotRepo(db *gorm.DB) ChatbotRepo {
	return &chatbotRepo{db: db}
}

func (r *chatbotRepo) GetByID(id uuid.UUID) (*models.Chatbot, error) {
	var bot models.Chatbot
	if err := r.db.First(&bot, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &bot, nil
}

func (r *chatbotRepo) ListByWorkspace(workspaceID uuid.UUID) ([]models.Chatbot, error) {
	var bots []models.Chatbot
	err := r.db.Where("workspace_id = ?", workspaceID).
		Order("created_at ASC").
		Find(&bots).Error
	return bots, err
}

func (r *chatbotRepo) ListEnabled(workspaceID uuid.UUID) ([]models.Chatbot, error) {
	var bots []models.Chatbot
	err := r.db.Where("workspace_id = ? AND enabled = ?", workspaceID, true).
		Order("created_at ASC").
		Find(&bots).Error
	return bots, err
}

func (r *chatbotRepo) Create(bot *models.Chatbot) error {
	return r.db.Create(bot).Error
}

func (r *chatbotRepo) Update(bot *models.Chatbot) error {
	return r.db.Save(bot).Error
}

func (r *chatbotRepo) Delete(id uuid.UUID) error {
	return r.db.Delete(&models.Chatbot{}, "id = ?", id).Error
}
