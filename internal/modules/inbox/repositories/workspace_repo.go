package repositories

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/chatandika/wa-automation-be/internal/modules/inbox/models"
)

type WorkspaceRepo interface {
	GetByID(id uuid.UUID) (*models.Workspace, error)
	GetByPhone(phone string) (*models.Workspace, error)
	ListAll() ([]models.Workspace, error)
	Create(ws *models.Workspace) error
	Update(ws *models.Workspace) error
}

type workspaceRepo struct {
	db *gorm.DB
}

func NewWorkspaceRepo(db *gorm.DB) WorkspaceRepo {
	return &workspaceRepo{db: db}
}

func (r *workspaceRepo) GetByID(id uuid.UUID) (*models.Workspace, error) {
	var ws models.Workspace
	if err := r.db.First(&ws, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &ws, nil
}

func (r *workspaceRepo) GetByPhone(phone string) (*models.Workspace, error) {
	var ws models.Workspace
	if err := r.db.First(&ws, "phone = ?", phone).Error; err != nil {
		return nil, err
	}
	return &ws, nil
}

func (r *workspaceRepo) ListAll() ([]models.Workspace, error) {
	var list []models.Workspace
	err := r.db.Order("created_at ASC").Find(&list).Error
	return list, err
}

func (r *workspaceRepo) Create(ws *models.Workspace) error {
	return r.db.Create(ws).Error
}

func (r *workspaceRepo) Update(ws *models.Workspace) error {
	return r.db.Save(ws).Error
}
