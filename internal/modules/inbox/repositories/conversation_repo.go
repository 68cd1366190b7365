package repositories

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/chatandika/wa-automation-be/internal/modules/inbox/models"
)

type ConversationRepo interface {
	GetByID(id uuid.UUID) (*models.Conversation, error)
	// FindOrCreate returns the open conversation for a customer phone,
	// creating one when none exists. The bool reports whether it was
	// created.
	FindOrCreate(workspaceID uuid.UUID, customerPhone, customerName string) (*models.Conversation, bool, error)
	Update(conv *models.Conversation) error
	Touch(id uuid.UUID) error
	// IdleSince lists open conversations with no activity after the
	// cutoff that have not been followed up yet.
	IdleSince(workspaceID uuid.UUID, cutoff time.Time) ([]models.Conversation, error)
	MarkFollowedUp(id uuid.UUID, at time.Time) error
}

type conversationRepo struct {
	db *gorm.DB
}

func NewConversationRepo(db *gorm.DB) ConversationRepo {
	return &conversationRepo{db: db}
}

func (r *conversationRepo) GetByID(id uuid.UUID) (*models.Conversation, error) {
	var conv models.Conversation
	if err := r.db.First(&conv, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &conv, nil
}

func (r *conversationRepo) FindOrCreate(workspaceID uuid.UUID, customerPhone, customerName string) (*models.Conversation, bool, error) {
	var conv models.Conversation
	err := r.db.Where("workspace_id = ? AND customer_phone = ? AND status <> ?",
		workspaceID, customerPhone, "closed").
		Order("created_at DESC").
		First(&conv).Error
	if err == nil {
		return &conv, false, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, false, err
	}

	conv = models.Conversation{
		WorkspaceID:   workspaceID,
		CustomerPhone: customerPhone,
		CustomerName:  customerName,
		Status:        "open",
	}
	if err := r.db.Create(&conv).Error; err != nil {
		return nil, false, err
	}
	return &conv, true, nil
}

func (r *conversationRepo) Update(conv *models.Conversation) error {
	return r.db.Save(conv).Error
}

// Touch bumps updated_at so idle thresholds measure from the latest
// message.
func (r *conversationRepo) Touch(id uuid.UUID) error {
	return r.db.Model(&models.Conversation{}).
		Where("id = ?", id).
		Update("updated_at", time.Now()).Error
}

func (r *conversationRepo) IdleSince(workspaceID uuid.UUID, cutoff time.Time) ([]models.Conversation, error) {
	var convs []models.Conversation
	err := r.db.Where("workspace_id = ? AND status = ? AND updated_at < ? AND follow_up_sent_at IS NULL",
		workspaceID, "open", cutoff).
		Find(&convs).Error
	return convs, err
}

func (r *conversationRepo) MarkFollowedUp(id uuid.UUID, at time.Time) error {
	return r.db.Model(&models.Conversation{}).
		Where("id = ?", id).
		Update("follow_up_sent_at", at).Error
}
