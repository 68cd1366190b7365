package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Conversation is one customer thread within a workspace. The chatbot
// session fields track an active flow: ChatbotID and CurrentNode are
// set while a flow waits for input and cleared when it ends.
type Conversation struct {
	ID             uuid.UUID  `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	WorkspaceID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"workspace_id"`
	CustomerPhone  string     `gorm:"type:text;not null;index" json:"customer_phone"`
	CustomerName   string     `gorm:"type:text" json:"customer_name"`
	Status         string     `gorm:"type:text;default:'open'" json:"status"` // open, pending, closed
	NeedsAgent     bool       `gorm:"default:false" json:"needs_agent"`
	ChatbotID      *uuid.UUID `gorm:"type:uuid" json:"chatbot_id,omitempty"`
	CurrentNode    string     `gorm:"type:text" json:"current_node,omitempty"`
	ChatbotExpiry  *time.Time `json:"chatbot_expiry,omitempty"`
	FollowUpSentAt *time.Time `json:"follow_up_sent_at,omitempty"`
	CreatedAt      time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	Workspace Workspace `gorm:"foreignKey:WorkspaceID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Conversation) TableName() string {
	return "inbox_conversations"
}

func (c *Conversation) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// InFlow reports whether a chatbot session is active on this thread.
func (c *Conversation) InFlow() bool {
	return c.ChatbotID != nil && c.CurrentNode != ""
}

// FlowExpired reports whether the active session passed its inactivity
// deadline at the given instant.
func (c *Conversation) FlowExpired(now time.Time) bool {
	return c.ChatbotExpiry != nil && now.After(*c.ChatbotExpiry)
}

// ClearFlow resets all chatbot session state.
func (c *Conversation) ClearFlow() {
	c.ChatbotID = nil
	c.CurrentNode = ""
	c.ChatbotExpiry = nil
}
