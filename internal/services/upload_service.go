package services

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"

	"talkative-chat/internal/storage"
	apperrors "talkative-chat/pkg/errors"
)

// Avatar uploads only; anything else is rejected up front.
var allowedAvatarTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

type UploadService struct {
	storage *storage.Client
}

func NewUploadService(storage *storage.Client) *UploadService {
	return &UploadService{storage: storage}
}

type AvatarUpload struct {
	UploadURL string `json:"upload_url"`
	PublicURL string `json:"public_url"`
	Key       string `json:"key"`
}

// PresignAvatar issues a presigned PUT for a user's profile picture.
func (s *UploadService) PresignAvatar(ctx context.Context, userID uuid.UUID, contentType string) (AvatarUpload, error) {
	if s.storage == nil {
		return AvatarUpload{}, errors.New("s3 storage is not configured")
	}

	ext, ok := allowedAvatarTypes[strings.ToLower(contentType)]
	if !ok {
		return AvatarUpload{}, apperrors.ErrInvalidInput
	}

	key := path.Join("avatars", userID.String(), fmt.Sprintf("%s%s", uuid.New().String(), ext))
	uploadURL, err := s.storage.PresignPut(ctx, key, contentType)
	if err != nil {
		return AvatarUpload{}, err
	}

	return AvatarUpload{
		UploadURL: uploadURL,
		PublicURL: s.storage.PublicURL(key),
		Key:       key,
	}, nil
}
