package httpdto

import (
	"time"

	"talkative-chat/internal/domain/chat"
)

type AccessChatRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

type CreateGroupRequest struct {
	Name    string   `json:"name" binding:"required"`
	Members []string `json:"members" binding:"required"`
}

type RenameGroupRequest struct {
	ChatID string `json:"chat_id" binding:"required"`
	Name   string `json:"name" binding:"required"`
}

type GroupMemberRequest struct {
	ChatID string `json:"chat_id" binding:"required"`
	UserID string `json:"user_id" binding:"required"`
}

type ChatResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	IsGroup bool   `json:"is_group"`
	AdminID string `json:"admin_id,omitempty"`
	// Members is the chat's complete member id set, the shape the push
	// channel fans new-message events out over.
	Members   []string       `json:"members"`
	Users     []UserResponse `json:"users"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func FromChat(c chat.Chat) ChatResponse {
	resp := ChatResponse{
		ID:        c.ID.String(),
		Name:      c.Name,
		IsGroup:   c.IsGroup,
		Members:   make([]string, 0, len(c.Members)),
		Users:     make([]UserResponse, 0, len(c.Members)),
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
	if c.AdminID.Valid {
		resp.AdminID = c.AdminID.UUID.String()
	}
	for _, id := range c.MemberIDs() {
		resp.Members = append(resp.Members, id.String())
	}
	for _, m := range c.Members {
		resp.Users = append(resp.Users, FromUser(m.User))
	}
	return resp
}

func FromChatSlice(chats []chat.Chat) []ChatResponse {
	result := make([]ChatResponse, 0, len(chats))
	for _, c := range chats {
		result = append(result, FromChat(c))
	}
	return result
}
