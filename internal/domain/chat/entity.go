package chat

import (
	"time"

	"github.com/google/uuid"

	"talkative-chat/internal/domain/user"
)

// Chat represents the chats table. A one-to-one chat has exactly two
// members and no admin; a group chat has any number of members and the
// creator as admin.
type Chat struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name            string    `gorm:"not null"`
	IsGroup         bool
	AdminID         uuid.NullUUID `gorm:"type:uuid"`
	LatestMessageID uuid.NullUUID `gorm:"type:uuid"`
	CreatedAt       time.Time
	UpdatedAt       time.Time

	// Relationships
	Members []Member
}

// Member represents the chat_members table. The member set of a chat is
// what the real-time layer fans a new message out over.
type Member struct {
	ChatID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	JoinedAt time.Time

	User user.User `gorm:"foreignKey:UserID"`
}

// MemberIDs returns the member user ids of the chat.
func (c Chat) MemberIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(c.Members))
	for _, m := range c.Members {
		ids = append(ids, m.UserID)
	}
	return ids
}

// HasMember reports whether userID belongs to the chat.
func (c Chat) HasMember(userID uuid.UUID) bool {
	for _, m := range c.Members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}

func (Chat) TableName() string {
	return "chats"
}

func (Member) TableName() string {
	return "chat_members"
}
