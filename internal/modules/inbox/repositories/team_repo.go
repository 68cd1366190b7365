package repositories

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/chatandika/wa-automation-be/internal/modules/inbox/models"
)

type TeamRepo interface {
	CountOnline(workspaceID uuid.UUID) (int64, error)
	ListByWorkspace(workspaceID uuid.UUID) ([]models.TeamMember, error)
	SetOnline(id uuid.UUID, online bool) error
}

type teamRepo struct {
	db *gorm.DB
}

func NewTeamRepo(db *gorm.DB) TeamRepo {
	return &teamRepo{db: db}
}

func (r *teamRepo) CountOnline(workspaceID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&models.TeamMember{}).
		Where("workspace_id = ? AND online = ?", workspaceID, true).
		Count(&count).Error
	return count, err
}

func (r *teamRepo) ListByWorkspace(workspaceID uuid.UUID) ([]models.TeamMember, error) {
	var members []models.TeamMember
	err := r.db.Where("workspace_id = ?", workspaceID).
		Order("name ASC").
		Find(&members).Error
	return members, err
}

func (r *teamRepo) SetOnline(id uuid.UUID, online bool) error {
	return r.db.Model(&models.TeamMember{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"online": online, "last_seen_at": gorm.Expr("NOW()")}).Error
}
