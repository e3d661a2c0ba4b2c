package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"talkative-chat/internal/repository"
	apperrors "talkative-chat/pkg/errors"
)

// OnlineStore is the shared presence set, kept in redis so restarts do
// not lose it.
type OnlineStore interface {
	SetOnline(ctx context.Context, userID string) error
	SetOffline(ctx context.Context, userID string) error
	OnlineUsers(ctx context.Context) ([]string, error)
}

// PresenceService records online transitions in both the presence set
// and the users table, so user responses carry is_online/last_seen_at
// without touching redis on every read. The hub reports transitions;
// OnlineUsers serves the online-users endpoint.
type PresenceService struct {
	store    OnlineStore
	userRepo repository.UserRepository
}

func NewPresenceService(store OnlineStore, userRepo repository.UserRepository) *PresenceService {
	return &PresenceService{store: store, userRepo: userRepo}
}

func (s *PresenceService) SetOnline(ctx context.Context, userID string) error {
	if err := s.store.SetOnline(ctx, userID); err != nil {
		return err
	}
	return s.markUser(ctx, userID, true)
}

func (s *PresenceService) SetOffline(ctx context.Context, userID string) error {
	if err := s.store.SetOffline(ctx, userID); err != nil {
		return err
	}
	return s.markUser(ctx, userID, false)
}

func (s *PresenceService) markUser(ctx context.Context, userID string, online bool) error {
	id, err := uuid.Parse(userID)
	if err != nil {
		return apperrors.ErrInvalidInput
	}
	return s.userRepo.UpdateOnlineStatus(ctx, id, online, time.Now())
}

// OnlineUsers returns the ids of users holding at least one live
// connection.
func (s *PresenceService) OnlineUsers(ctx context.Context) ([]string, error) {
	return s.store.OnlineUsers(ctx)
}
