package httpdto

import (
	"time"

	"talkative-chat/internal/domain/user"
)

type UserResponse struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Email      string     `json:"email"`
	AvatarURL  string     `json:"avatar_url,omitempty"`
	IsOnline   bool       `json:"is_online"`
	LastSeenAt *time.Time `json:"last_seen_at,omitempty"`
}

type UpdateProfileRequest struct {
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
}

type PresignAvatarRequest struct {
	ContentType string `json:"content_type" binding:"required"`
}

func FromUser(u user.User) UserResponse {
	resp := UserResponse{
		ID:        u.ID.String(),
		Name:      u.Name,
		Email:     u.Email,
		AvatarURL: u.AvatarURL,
		IsOnline:  u.IsOnline,
	}
	if u.LastSeenAt.Valid {
		t := u.LastSeenAt.Time
		resp.LastSeenAt = &t
	}
	return resp
}

func FromUserSlice(users []user.User) []UserResponse {
	result := make([]UserResponse, 0, len(users))
	for _, u := range users {
		result = append(result, FromUser(u))
	}
	return result
}
