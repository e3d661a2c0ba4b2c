package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"talkative-chat/internal/domain/chat"
	"talkative-chat/internal/domain/message"
	"talkative-chat/internal/repository"
	apperrors "talkative-chat/pkg/errors"
)

type MessageService struct {
	messageRepo repository.MessageRepository
	chatRepo    repository.ChatRepository
}

func NewMessageService(messageRepo repository.MessageRepository, chatRepo repository.ChatRepository) *MessageService {
	return &MessageService{messageRepo: messageRepo, chatRepo: chatRepo}
}

// SentMessage is a persisted message together with the chat it belongs
// to. The chat carries its full member set, which is what the client
// forwards to the push channel for fan-out.
type SentMessage struct {
	Message message.Message
	Chat    chat.Chat
}

func (s *MessageService) Send(ctx context.Context, senderID, chatID uuid.UUID, content string) (SentMessage, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return SentMessage{}, apperrors.ErrInvalidInput
	}

	c, err := s.chatRepo.GetByID(ctx, chatID)
	if err != nil {
		return SentMessage{}, err
	}
	if !c.HasMember(senderID) {
		return SentMessage{}, apperrors.ErrNotMember
	}

	m := &message.Message{
		ID:        uuid.New(),
		ChatID:    chatID,
		SenderID:  senderID,
		Content:   content,
		CreatedAt: time.Now(),
	}
	if err := s.messageRepo.Create(ctx, m); err != nil {
		return SentMessage{}, err
	}

	// Best effort; a missed latest-message pointer only affects chat
	// list ordering.
	_ = s.chatRepo.SetLatestMessage(ctx, chatID, m.ID)

	full, err := s.messageRepo.GetByID(ctx, m.ID)
	if err != nil {
		return SentMessage{}, err
	}
	return SentMessage{Message: full, Chat: c}, nil
}

func (s *MessageService) ListForChat(ctx context.Context, requesterID, chatID uuid.UUID) ([]message.Message, error) {
	c, err := s.chatRepo.GetByID(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if !c.HasMember(requesterID) {
		return nil, apperrors.ErrNotMember
	}
	return s.messageRepo.ListForChat(ctx, chatID)
}
