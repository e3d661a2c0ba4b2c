package message

import (
	"time"

	"github.com/google/uuid"

	"talkative-chat/internal/domain/user"
)

// Message represents the messages table
type Message struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	ChatID    uuid.UUID `gorm:"type:uuid;index;not null"`
	SenderID  uuid.UUID `gorm:"type:uuid;not null"`
	Content   string    `gorm:"not null"`
	CreatedAt time.Time

	Sender user.User `gorm:"foreignKey:SenderID"`
}

func (Message) TableName() string {
	return "messages"
}
