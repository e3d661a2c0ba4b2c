package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"talkative-chat/internal/domain/chat"
	"talkative-chat/internal/services"
	"talkative-chat/internal/transport/httpdto"
	apperrors "talkative-chat/pkg/errors"
)

type ChatHandler struct {
	service *services.ChatService
}

func NewChatHandler(service *services.ChatService) *ChatHandler {
	return &ChatHandler{service: service}
}

// Access handles POST /api/chat, fetching or creating a one-to-one chat.
func (h *ChatHandler) Access(c *gin.Context) {
	var req httpdto.AccessChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	requesterID, ok := services.UserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	otherID, err := uuid.Parse(req.UserID)
	if err != nil {
		writeError(c, apperrors.ErrInvalidInput)
		return
	}

	chatResult, err := h.service.AccessDirect(c.Request.Context(), requesterID, otherID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.FromChat(chatResult)))
}

// List handles GET /api/chat, all chats for the requester.
func (h *ChatHandler) List(c *gin.Context) {
	requesterID, ok := services.UserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	chats, err := h.service.ListForUser(c.Request.Context(), requesterID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.FromChatSlice(chats)))
}

// CreateGroup handles POST /api/chat/group
func (h *ChatHandler) CreateGroup(c *gin.Context) {
	var req httpdto.CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	requesterID, ok := services.UserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	memberIDs, err := parseUUIDs(req.Members)
	if err != nil {
		writeError(c, apperrors.ErrInvalidInput)
		return
	}

	chatResult, err := h.service.CreateGroup(c.Request.Context(), requesterID, req.Name, memberIDs)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, httpdto.NewSuccessResponse(httpdto.FromChat(chatResult)))
}

// RenameGroup handles PUT /api/chat/rename
func (h *ChatHandler) RenameGroup(c *gin.Context) {
	var req httpdto.RenameGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	requesterID, ok := services.UserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	chatID, err := uuid.Parse(req.ChatID)
	if err != nil {
		writeError(c, apperrors.ErrInvalidInput)
		return
	}

	chatResult, err := h.service.RenameGroup(c.Request.Context(), requesterID, chatID, req.Name)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.FromChat(chatResult)))
}

// AddMember handles PUT /api/chat/groupadd
func (h *ChatHandler) AddMember(c *gin.Context) {
	h.editMember(c, h.service.AddMember)
}

// RemoveMember handles PUT /api/chat/groupremove
func (h *ChatHandler) RemoveMember(c *gin.Context) {
	h.editMember(c, h.service.RemoveMember)
}

func (h *ChatHandler) editMember(c *gin.Context, edit func(ctx context.Context, requesterID, chatID, userID uuid.UUID) (chat.Chat, error)) {
	var req httpdto.GroupMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	requesterID, ok := services.UserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	chatID, err := uuid.Parse(req.ChatID)
	if err != nil {
		writeError(c, apperrors.ErrInvalidInput)
		return
	}
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		writeError(c, apperrors.ErrInvalidInput)
		return
	}

	chatResult, err := edit(c.Request.Context(), requesterID, chatID, userID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.FromChat(chatResult)))
}

func parseUUIDs(values []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(values))
	for _, v := range values {
		id, err := uuid.Parse(v)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
