package repositories

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/chatandika/wa-automation-be/internal/modules/inbox/models"
)

type SettingsRepo interface {
	GetByWorkspace(workspaceID uuid.UUID) (*models.AutomationSetting, error)
	Create(setting *models.AutomationSetting) error
	Update(setting *models.AutomationSetting) error
}

type settingsRepo struct {
	db *gorm.DB
}

func NewSettingsRepo(db *gorm.DB) SettingsRepo {
	return &settingsRepo{db: db}
}

func (r *settingsRepo) GetByWorkspace(workspaceID uuid.UUID) (*models.AutomationSetting, error) {
	var setting models.AutomationSetting
	if err := r.db.First(&setting, "workspace_id = ?", workspaceID).Error; err != nil {
		return nil, err
	}
	return &setting, nil
}

func (r *settingsRepo) Create(setting *models.AutomationSetting) error {
	return r.db.Create(setting).Error
}

func (r *settingsRepo) Update(setting *models.AutomationSetting) error {
	return r.db.Save(setting).Error
}
