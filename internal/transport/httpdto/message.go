package httpdto

import (
	"time"

	"talkative-chat/internal/domain/message"
	"talkative-chat/internal/services"
)

type SendMessageRequest struct {
	ChatID  string `json:"chat_id" binding:"required"`
	Content string `json:"content" binding:"required"`
}

type MessageResponse struct {
	ID        string       `json:"id"`
	Sender    UserResponse `json:"sender"`
	Content   string       `json:"content"`
	ChatID    string       `json:"chat_id"`
	CreatedAt time.Time    `json:"created_at"`
}

// SentMessageResponse carries the persisted message plus the chat with
// its member set, so the client can hand it straight to the push
// channel as a new-message event.
type SentMessageResponse struct {
	MessageResponse
	Chat ChatResponse `json:"chat"`
}

func FromMessage(m message.Message) MessageResponse {
	return MessageResponse{
		ID:        m.ID.String(),
		Sender:    FromUser(m.Sender),
		Content:   m.Content,
		ChatID:    m.ChatID.String(),
		CreatedAt: m.CreatedAt,
	}
}

func FromMessageSlice(messages []message.Message) []MessageResponse {
	result := make([]MessageResponse, 0, len(messages))
	for _, m := range messages {
		result = append(result, FromMessage(m))
	}
	return result
}

func FromSentMessage(sent services.SentMessage) SentMessageResponse {
	return SentMessageResponse{
		MessageResponse: FromMessage(sent.Message),
		Chat:            FromChat(sent.Chat),
	}
}
