package repositories

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/chatandika/wa-automation-be/internal/modules/inbox/models"
)

type MessageRepo interface {
	Create(msg *models.Message) error
	ListByConversation(conversationID uuid.UUID, limit int) ([]models.Message, error)
	ExistsByExternalID(externalID string) (bool, error)
}

type messageRepo struct {
	db *gorm.DB
}

func NewMessageRepo(db *gorm.DB) MessageRepo {
	return &messageRepo{db: db}
}

func (r *messageRepo) Create(msg *models.Message) error {
	return r.db.Create(msg).Error
}

func (r *messageRepo) ListByConversation(conversationID uuid.UUID, limit int) ([]models.Message, error) {
	if limit <= 0 {
		limit = 50
	}
	var msgs []models.Message
	err := r.db.Where("conversation_id = ?", conversationID).
		Order("created_at DESC").
		Limit(limit).
		Find(&msgs).Error
	return msgs, err
}

// ExistsByExternalID supports webhook dedup; Meta redelivers on slow
// acks.
func (r *messageRepo) ExistsByExternalID(externalID string) (bool, error) {
	if externalID == "" {
		return false, nil
	}
	var count int64
	err := r.db.Model(&models.Message{}).
		Where("external_id = ?", externalID).
		Count(&count).Error
	return count > 0, err
}
