package repositories

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/chatandika/wa-automation-be/internal/modules/inbox/models"
)

type CannedResponseRepo interface {
	GetByID(id uuid.UUID) (*models.CannedResponse, error)
	ListByWorkspace(workspaceID uuid.UUID) ([]models.CannedResponse, error)
	Create(resp *models.CannedResponse) error
	Update(resp *models.CannedResponse) error
	Delete(id uuid.UUID) error
}

type cannedResponseRepo struct {
	db *gorm.DB
}

func NewCannedResponseRepo(db *gorm.DB) CannedResponseRepo {
	return &cannedResponseRepo{db: db}
}

func (r *cannedResponseRepo) GetByID(id uuid.UUID) (*models.CannedResponse, error) {
	var resp models.CannedResponse
	if err := r.db.First(&resp, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &resp, nil
}

func (r *cannedResponseRepo) ListByWorkspace(workspaceID uuid.UUID) ([]models.CannedResponse, error) {
	var resps []models.CannedResponse
	err := r.db.Where("workspace_id = ?", workspaceID).
		Order("title ASC").
		Find(&resps).Error
	return resps, err
}

func (r *cannedResponseRepo) Create(resp *models.CannedResponse) error {
	return r.db.Create(resp).Error
}

func (r *cannedResponseRepo) Update(resp *models.CannedResponse) error {
	return r.db.Save(resp).Error
}

func (r *cannedResponseRepo) Delete(id uuid.UUID) error {
	return r.db.Delete(&models.CannedResponse{}, "id = ?", id).Error
}
