package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"talkative-chat/internal/domain/chat"
	"talkative-chat/internal/repository"
	apperrors "talkative-chat/pkg/errors"
)

type ChatService struct {
	chatRepo repository.ChatRepository
	userRepo repository.UserRepository
}

func NewChatService(chatRepo repository.ChatRepository, userRepo repository.UserRepository) *ChatService {
	return &ChatService{chatRepo: chatRepo, userRepo: userRepo}
}

// AccessDirect returns the one-to-one chat between the requester and
// otherUserID, creating it on first access.
func (s *ChatService) AccessDirect(ctx context.Context, requesterID, otherUserID uuid.UUID) (chat.Chat, error) {
	if otherUserID == uuid.Nil || otherUserID == requesterID {
		return chat.Chat{}, apperrors.ErrInvalidInput
	}

	if _, err := s.userRepo.GetByID(ctx, otherUserID); err != nil {
		return chat.Chat{}, err
	}

	existing, err := s.chatRepo.FindDirect(ctx, requesterID, otherUserID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return chat.Chat{}, err
	}

	now := time.Now()
	c := chat.Chat{
		ID:        uuid.New(),
		Name:      "direct",
		IsGroup:   false,
		CreatedAt: now,
		UpdatedAt: now,
		Members: []chat.Member{
			{UserID: requesterID, JoinedAt: now},
			{UserID: otherUserID, JoinedAt: now},
		},
	}
	if err := s.chatRepo.Create(ctx, &c); err != nil {
		return chat.Chat{}, err
	}
	return s.chatRepo.GetByID(ctx, c.ID)
}

func (s *ChatService) ListForUser(ctx context.Context, userID uuid.UUID) ([]chat.Chat, error) {
	return s.chatRepo.ListForUser(ctx, userID)
}

// CreateGroup creates a group chat from the requester plus at least two
// other members, with the requester as admin.
func (s *ChatService) CreateGroup(ctx context.Context, requesterID uuid.UUID, name string, memberIDs []uuid.UUID) (chat.Chat, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return chat.Chat{}, apperrors.ErrInvalidInput
	}

	seen := map[uuid.UUID]struct{}{requesterID: {}}
	members := []chat.Member{{UserID: requesterID}}
	for _, id := range memberIDs {
		if id == uuid.Nil {
			return chat.Chat{}, apperrors.ErrInvalidInput
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		members = append(members, chat.Member{UserID: id})
	}
	if len(members) < 3 {
		return chat.Chat{}, apperrors.ErrInvalidInput
	}

	now := time.Now()
	for i := range members {
		members[i].JoinedAt = now
	}

	c := chat.Chat{
		ID:        uuid.New(),
		Name:      name,
		IsGroup:   true,
		AdminID:   uuid.NullUUID{UUID: requesterID, Valid: true},
		CreatedAt: now,
		UpdatedAt: now,
		Members:   members,
	}
	if err := s.chatRepo.Create(ctx, &c); err != nil {
		return chat.Chat{}, err
	}
	return s.chatRepo.GetByID(ctx, c.ID)
}

func (s *ChatService) RenameGroup(ctx context.Context, requesterID, chatID uuid.UUID, name string) (chat.Chat, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return chat.Chat{}, apperrors.ErrInvalidInput
	}

	c, err := s.requireGroup(ctx, chatID, requesterID)
	if err != nil {
		return chat.Chat{}, err
	}

	if err := s.chatRepo.Rename(ctx, c.ID, name); err != nil {
		return chat.Chat{}, err
	}
	return s.chatRepo.GetByID(ctx, c.ID)
}

func (s *ChatService) AddMember(ctx context.Context, requesterID, chatID, userID uuid.UUID) (chat.Chat, error) {
	c, err := s.requireGroup(ctx, chatID, requesterID)
	if err != nil {
		return chat.Chat{}, err
	}
	if c.HasMember(userID) {
		return chat.Chat{}, apperrors.ErrAlreadyExists
	}
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return chat.Chat{}, err
	}

	if err := s.chatRepo.AddMember(ctx, c.ID, userID); err != nil {
		return chat.Chat{}, err
	}
	return s.chatRepo.GetByID(ctx, c.ID)
}

// RemoveMember removes a member from a group. A member may remove
// themselves (leave); removing anyone else requires the admin.
func (s *ChatService) RemoveMember(ctx context.Context, requesterID, chatID, userID uuid.UUID) (chat.Chat, error) {
	c, err := s.requireGroup(ctx, chatID, requesterID)
	if err != nil {
		return chat.Chat{}, err
	}
	if !c.HasMember(userID) {
		return chat.Chat{}, apperrors.ErrNotFound
	}
	if userID != requesterID && (!c.AdminID.Valid || c.AdminID.UUID != requesterID) {
		return chat.Chat{}, apperrors.ErrForbidden
	}

	if err := s.chatRepo.RemoveMember(ctx, c.ID, userID); err != nil {
		return chat.Chat{}, err
	}
	return s.chatRepo.GetByID(ctx, c.ID)
}

func (s *ChatService) requireGroup(ctx context.Context, chatID, requesterID uuid.UUID) (chat.Chat, error) {
	c, err := s.chatRepo.GetByID(ctx, chatID)
	if err != nil {
		return chat.Chat{}, err
	}
	if !c.IsGroup {
		return chat.Chat{}, apperrors.ErrInvalidInput
	}
	if !c.HasMember(requesterID) {
		return chat.Chat{}, apperrors.ErrForbidden
	}
	return c, nil
}
