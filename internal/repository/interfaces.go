package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"talkative-chat/internal/domain/chat"
	"talkative-chat/internal/domain/message"
	"talkative-chat/internal/domain/user"
)

type UserRepository interface {
	Create(ctx context.Context, u *user.User) error
	GetByID(ctx context.Context, id uuid.UUID) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
	Search(ctx context.Context, query string, excludeID uuid.UUID) ([]user.User, error)
	Update(ctx context.Context, u user.User) error
	UpdateOnlineStatus(ctx context.Context, id uuid.UUID, isOnline bool, lastSeen time.Time) error
}

type ChatRepository interface {
	Create(ctx context.Context, c *chat.Chat) error
	GetByID(ctx context.Context, id uuid.UUID) (chat.Chat, error)
	FindDirect(ctx context.Context, userA, userB uuid.UUID) (chat.Chat, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]chat.Chat, error)
	Rename(ctx context.Context, id uuid.UUID, name string) error
	AddMember(ctx context.Context, chatID, userID uuid.UUID) error
	RemoveMember(ctx context.Context, chatID, userID uuid.UUID) error
	SetLatestMessage(ctx context.Context, chatID, messageID uuid.UUID) error
}

type MessageRepository interface {
	Create(ctx context.Context, m *message.Message) error
	GetByID(ctx context.Context, id uuid.UUID) (message.Message, error)
	ListForChat(ctx context.Context, chatID uuid.UUID) ([]message.Message, error)
}
