package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Chatbot is a tenant-authored scripted flow. Graph holds the node map
// as JSON; it is validated on save and decoded per traversal.
type Chatbot struct {
	ID             uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	WorkspaceID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"workspace_id"`
	Name           string         `gorm:"type:text;not null" json:"name"`
	Trigger        string         `gorm:"type:text" json:"trigger"`
	Enabled        bool           `gorm:"default:true" json:"enabled"`
	Graph          datatypes.JSON `gorm:"type:jsonb" json:"graph"`
	TimeoutMinutes int            `gorm:"default:30" json:"timeout_minutes"`
	CreatedAt      time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"autoUpdateTime" json:"updated_at"`

	Workspace Workspace `gorm:"foreignKey:WorkspaceID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Chatbot) TableName() string {
	return "inbox_chatbots"
}

func (c *Chatbot) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// Timeout returns the session inactivity deadline as a duration.
func (c *Chatbot) Timeout() time.Duration {
	if c.TimeoutMinutes <= 0 {
		return 30 * time.Minute
	}
	return time.Duration(c.TimeoutMinutes) * time.Minute
}
