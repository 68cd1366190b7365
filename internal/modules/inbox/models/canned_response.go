package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CannedResponse is a stored reply material that text rules can
// reference by id instead of carrying an inline body.
type CannedResponse struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	WorkspaceID uuid.UUID `gorm:"type:uuid;not null;index" json:"workspace_id"`
	Title       string    `gorm:"type:text;not null" json:"title"`
	Body        string    `gorm:"type:text;not null" json:"body"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Workspace Workspace `gorm:"foreignKey:WorkspaceID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
}

func (CannedResponse) TableName() string {
	return "inbox_canned_responses"
}

func (c *CannedResponse) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
