package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AutomationSetting is the per-workspace automation configuration:
// holiday mode, the weekly schedule, and the rule list, with the
// schedule and rules stored as JSON blobs.
type AutomationSetting struct {
	ID          uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	WorkspaceID uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex" json:"workspace_id"`
	HolidayMode bool           `gorm:"default:false" json:"holiday_mode"`
	Schedule    datatypes.JSON `gorm:"type:jsonb" json:"schedule"`
	Rules       datatypes.JSON `gorm:"type:jsonb" json:"rules"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`

	Workspace Workspace `gorm:"foreignKey:WorkspaceID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
}

func (AutomationSetting) TableName() string {
	return "inbox_automation_settings"
}

func (s *AutomationSetting) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
