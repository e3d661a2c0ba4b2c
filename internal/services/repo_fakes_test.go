package services

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"

	"talkative-chat/internal/domain/chat"
	"talkative-chat/internal/domain/message"
	"talkative-chat/internal/domain/user"
	apperrors "talkative-chat/pkg/errors"
)

type fakeUserRepo struct {
	users map[uuid.UUID]user.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]user.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, u *user.User) error {
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return apperrors.ErrAlreadyExists
		}
	}
	r.users[u.ID] = *u
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (user.User, error) {
	u, ok := r.users[id]
	if !ok {
		return user.User{}, apperrors.ErrNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (user.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return user.User{}, apperrors.ErrNotFound
}

func (r *fakeUserRepo) Search(_ context.Context, query string, excludeID uuid.UUID) ([]user.User, error) {
	var result []user.User
	for _, u := range r.users {
		if u.ID == excludeID {
			continue
		}
		if query == "" || strings.Contains(u.Name, query) || strings.Contains(u.Email, query) {
			result = append(result, u)
		}
	}
	return result, nil
}

func (r *fakeUserRepo) Update(_ context.Context, u user.User) error {
	if _, ok := r.users[u.ID]; !ok {
		return apperrors.ErrNotFound
	}
	r.users[u.ID] = u
	return nil
}

func (r *fakeUserRepo) UpdateOnlineStatus(_ context.Context, id uuid.UUID, isOnline bool, lastSeen time.Time) error {
	u, ok := r.users[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	u.IsOnline = isOnline
	u.LastSeenAt = sql.NullTime{Time: lastSeen, Valid: true}
	r.users[id] = u
	return nil
}

type fakeChatRepo struct {
	chats map[uuid.UUID]chat.Chat
}

func newFakeChatRepo() *fakeChatRepo {
	return &fakeChatRepo{chats: make(map[uuid.UUID]chat.Chat)}
}

func (r *fakeChatRepo) Create(_ context.Context, c *chat.Chat) error {
	for i := range c.Members {
		c.Members[i].ChatID = c.ID
	}
	r.chats[c.ID] = *c
	return nil
}

func (r *fakeChatRepo) GetByID(_ context.Context, id uuid.UUID) (chat.Chat, error) {
	c, ok := r.chats[id]
	if !ok {
		return chat.Chat{}, apperrors.ErrNotFound
	}
	return c, nil
}

func (r *fakeChatRepo) FindDirect(_ context.Context, userA, userB uuid.UUID) (chat.Chat, error) {
	for _, c := range r.chats {
		if !c.IsGroup && c.HasMember(userA) && c.HasMember(userB) {
			return c, nil
		}
	}
	return chat.Chat{}, apperrors.ErrNotFound
}

func (r *fakeChatRepo) ListForUser(_ context.Context, userID uuid.UUID) ([]chat.Chat, error) {
	var result []chat.Chat
	for _, c := range r.chats {
		if c.HasMember(userID) {
			result = append(result, c)
		}
	}
	return result, nil
}

func (r *fakeChatRepo) Rename(_ context.Context, id uuid.UUID, name string) error {
	c, ok := r.chats[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	c.Name = name
	r.chats[id] = c
	return nil
}

func (r *fakeChatRepo) AddMember(_ context.Context, chatID, userID uuid.UUID) error {
	c, ok := r.chats[chatID]
	if !ok {
		return apperrors.ErrNotFound
	}
	if c.HasMember(userID) {
		return apperrors.ErrAlreadyExists
	}
	c.Members = append(c.Members, chat.Member{ChatID: chatID, UserID: userID, JoinedAt: time.Now()})
	r.chats[chatID] = c
	return nil
}

func (r *fakeChatRepo) RemoveMember(_ context.Context, chatID, userID uuid.UUID) error {
	c, ok := r.chats[chatID]
	if !ok {
		return apperrors.ErrNotFound
	}
	members := c.Members[:0]
	for _, m := range c.Members {
		if m.UserID != userID {
			members = append(members, m)
		}
	}
	c.Members = members
	r.chats[chatID] = c
	return nil
}

func (r *fakeChatRepo) SetLatestMessage(_ context.Context, chatID, messageID uuid.UUID) error {
	c, ok := r.chats[chatID]
	if !ok {
		return apperrors.ErrNotFound
	}
	c.LatestMessageID = uuid.NullUUID{UUID: messageID, Valid: true}
	r.chats[chatID] = c
	return nil
}

type fakeMessageRepo struct {
	messages map[uuid.UUID]message.Message
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{messages: make(map[uuid.UUID]message.Message)}
}

func (r *fakeMessageRepo) Create(_ context.Context, m *message.Message) error {
	r.messages[m.ID] = *m
	return nil
}

func (r *fakeMessageRepo) GetByID(_ context.Context, id uuid.UUID) (message.Message, error) {
	m, ok := r.messages[id]
	if !ok {
		return message.Message{}, apperrors.ErrNotFound
	}
	return m, nil
}

func (r *fakeMessageRepo) ListForChat(_ context.Context, chatID uuid.UUID) ([]message.Message, error) {
	var result []message.Message
	for _, m := range r.messages {
		if m.ChatID == chatID {
			result = append(result, m)
		}
	}
	return result, nil
}
