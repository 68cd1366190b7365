package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Message is one inbound or outbound message on a conversation.
type Message struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	ConversationID uuid.UUID `gorm:"type:uuid;not null;index" json:"conversation_id"`
	Direction      string    `gorm:"type:text;not null" json:"direction"`           // incoming, outgoing
	Sender         string    `gorm:"type:text;default:'customer'" json:"sender"`    // customer, bot, agent
	Body           string    `gorm:"type:text" json:"body"`
	MessageType    string    `gorm:"type:text;default:'text'" json:"message_type"`  // text, image, interactive, template
	ExternalID     string    `gorm:"type:text;index" json:"external_id"`            // provider message id
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`

	Conversation Conversation `gorm:"foreignKey:ConversationID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Message) TableName() string {
	return "inbox_messages"
}

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
