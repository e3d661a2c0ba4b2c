package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"talkative-chat/internal/domain/user"
	"talkative-chat/internal/repository"
	apperrors "talkative-chat/pkg/errors"
)

type UserService struct {
	repo repository.UserRepository
}

func NewUserService(repo repository.UserRepository) *UserService {
	return &UserService{repo: repo}
}

// Search finds users matching the query by name or email, excluding the
// requester, so the result set can seed a new chat's member picker.
func (s *UserService) Search(ctx context.Context, requesterID uuid.UUID, query string) ([]user.User, error) {
	return s.repo.Search(ctx, strings.TrimSpace(query), requesterID)
}

func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (user.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *UserService) UpdateProfile(ctx context.Context, id uuid.UUID, name, avatarURL string) (user.User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return user.User{}, err
	}
	if name != "" {
		u.Name = strings.TrimSpace(name)
		if u.Name == "" {
			return user.User{}, apperrors.ErrInvalidInput
		}
	}
	if avatarURL != "" {
		u.AvatarURL = avatarURL
	}
	u.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, u); err != nil {
		return user.User{}, err
	}
	return u, nil
}
