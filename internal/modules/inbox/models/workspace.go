package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Workspace is one tenant: a business with its own WhatsApp channel,
// team, and automation settings.
type Workspace struct {
	ID           uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Name         string         `gorm:"type:text;not null" json:"name"`
	Phone        string         `gorm:"type:text" json:"phone"`
	Channel      string         `gorm:"type:text;default:'cloud_api'" json:"channel"` // cloud_api or whatsmeow
	ChannelCreds datatypes.JSON `gorm:"type:jsonb" json:"-"`
	Timezone     string         `gorm:"type:text;default:'Asia/Jakarta'" json:"timezone"`
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Workspace) TableName() string {
	return "inbox_workspaces"
}

func (w *Workspace) BeforeCreate(tx *gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return nil
}
