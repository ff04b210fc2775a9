package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopdesk/backend/internal/application/messaging"
	"github.com/shopdesk/backend/internal/domain/shared"
)

// MessageHandler handles direct messages between staff
type MessageHandler struct {
	BaseHandler
	messageService *messaging.Service
}

// NewMessageHandler creates a new MessageHandler
func NewMessageHandler(messageService *messaging.Service) *MessageHandler {
	return &MessageHandler{messageService: messageService}
}

// Send godoc
// @Summary      Send a message
// @Tags         messages
// @Accept       json
// @Produce      json
// @Param        request body messaging.SendMessageRequest true "Message"
// @Success      201 {object} dto.Response{data=messaging.MessageResponse}
// @Security     BearerAuth
// @Router       /messages [post]
func (h *MessageHandler) Send(c *gin.Context) {
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}
	var req messaging.SendMessageRequest
	if !h.BindJSON(c, &req) {
		return
	}

	msg, err := h.messageService.Send(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, msg)
}

// Inbox godoc
// @Summary      Received messages
// @Tags         messages
// @Produce      json
// @Param        unread query bool false "Only unread"
// @Param        search query string false "Subject or body search"
// @Success      200 {object} dto.Response{data=[]messaging.MessageResponse,meta=dto.Meta}
// @Security     BearerAuth
// @Router       /messages/inbox [get]
func (h *MessageHandler) Inbox(c *gin.Context) {
	h.list(c, h.messageService.Inbox)
}

// Sent godoc
// @Summary      Sent messages
// @Tags         messages
// @Produce      json
// @Success      200 {object} dto.Response{data=[]messaging.MessageResponse,meta=dto.Meta}
// @Security     BearerAuth
// @Router       /messages/sent [get]
func (h *MessageHandler) Sent(c *gin.Context) {
	h.list(c, h.messageService.Sent)
}

func (h *MessageHandler) list(
	c *gin.Context,
	fetch func(ctx context.Context, userID uuid.UUID, f messaging.MessageListFilter) (*shared.Paginated[messaging.MessageResponse], error),
) {
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}
	var filter messaging.MessageListFilter
	if !h.BindQuery(c, &filter) {
		return
	}

	result, err := fetch(c.Request.Context(), userID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	SuccessPage(&h.BaseHandler, c, result)
}

// Conversations godoc
// @Summary      Conversation list
// @Description  One entry per counterpart with the last message and unread count, newest first
// @Tags         messages
// @Produce      json
// @Success      200 {object} dto.Response{data=[]messaging.ConversationSummaryResponse}
// @Security     BearerAuth
// @Router       /messages/conversations [get]
func (h *MessageHandler) Conversations(c *gin.Context) {
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}

	conversations, err := h.messageService.Conversations(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, conversations)
}

// Conversation godoc
// @Summary      Thread with one user
// @Tags         messages
// @Produce      json
// @Param        user_id path string true "Counterpart user ID"
// @Success      200 {object} dto.Response{data=messaging.ConversationResponse}
// @Security     BearerAuth
// @Router       /messages/conversations/{user_id} [get]
func (h *MessageHandler) Conversation(c *gin.Context) {
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}
	counterpartID, ok := h.ParamUUID(c, "user_id")
	if !ok {
		return
	}

	conversation, err := h.messageService.Conversation(c.Request.Context(), userID, counterpartID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, conversation)
}

// MarkConversationRead godoc
// @Summary      Mark a thread read
// @Tags         messages
// @Produce      json
// @Param        user_id path string true "Counterpart user ID"
// @Success      200 {object} dto.Response{data=messaging.MarkedReadResponse}
// @Security     BearerAuth
// @Router       /messages/conversations/{user_id}/read [post]
func (h *MessageHandler) MarkConversationRead(c *gin.Context) {
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}
	counterpartID, ok := h.ParamUUID(c, "user_id")
	if !ok {
		return
	}

	marked, err := h.messageService.MarkConversationRead(c.Request.Context(), userID, counterpartID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, marked)
}

// UnreadCount godoc
// @Summary      Unread message count
// @Tags         messages
// @Produce      json
// @Success      200 {object} dto.Response{data=messaging.UnreadCountResponse}
// @Security     BearerAuth
// @Router       /messages/unread-count [get]
func (h *MessageHandler) UnreadCount(c *gin.Context) {
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}

	count, err := h.messageService.UnreadCount(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, count)
}

// MarkRead godoc
// @Summary      Mark a message read
// @Description  Only the recipient can mark a message read
// @Tags         messages
// @Produce      json
// @Param        id path string true "Message ID"
// @Success      200 {object} dto.Response{data=messaging.MessageResponse}
// @Security     BearerAuth
// @Router       /messages/{id}/read [post]
func (h *MessageHandler) MarkRead(c *gin.Context) {
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}

	msg, err := h.messageService.MarkRead(c.Request.Context(), userID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, msg)
}

// Delete godoc
// @Summary      Delete a message from the caller's view
// @Tags         messages
// @Param        id path string true "Message ID"
// @Success      204
// @Security     BearerAuth
// @Router       /messages/{id} [delete]
func (h *MessageHandler) Delete(c *gin.Context) {
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}

	if err := h.messageService.Delete(c.Request.Context(), userID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
