package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"talkative-chat/internal/services"
	"talkative-chat/internal/transport/httpdto"
	apperrors "talkative-chat/pkg/errors"
)

type MessageHandler struct {
	service *services.MessageService
}

func NewMessageHandler(service *services.MessageService) *MessageHandler {
	return &MessageHandler{service: service}
}

// Send handles POST /api/message. The response carries the chat's full
// member set so the client can emit the new-message event on the push
// channel.
func (h *MessageHandler) Send(c *gin.Context) {
	var req httpdto.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	senderID, ok := services.UserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	chatID, err := uuid.Parse(req.ChatID)
	if err != nil {
		writeError(c, apperrors.ErrInvalidInput)
		return
	}

	sent, err := h.service.Send(c.Request.Context(), senderID, chatID, req.Content)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, httpdto.NewSuccessResponse(httpdto.FromSentMessage(sent)))
}

// List handles GET /api/message/:chatId
func (h *MessageHandler) List(c *gin.Context) {
	requesterID, ok := services.UserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	chatID, err := uuid.Parse(c.Param("chatId"))
	if err != nil {
		writeError(c, apperrors.ErrInvalidInput)
		return
	}

	messages, err := h.service.ListForChat(c.Request.Context(), requesterID, chatID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.FromMessageSlice(messages)))
}
