package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TeamMember is a human agent in a workspace. Online powers the
// no-agent-available rule.
type TeamMember struct {
	ID          uuid.UUID  `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	WorkspaceID uuid.UUID  `gorm:"type:uuid;not null;index" json:"workspace_id"`
	Name        string     `gorm:"type:text;not null" json:"name"`
	Email       string     `gorm:"type:text;not null" json:"email"`
	Role        string     `gorm:"type:text;default:'agent'" json:"role"` // owner, admin, agent
	Online      bool       `gorm:"default:false" json:"online"`
	LastSeenAt  *time.Time `json:"last_seen_at,omitempty"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	Workspace Workspace `gorm:"foreignKey:WorkspaceID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
}

func (TeamMember) TableName() string {
	return "inbox_team_members"
}

func (t *TeamMember) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
