package messaging

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopdesk/backend/internal/domain/messaging"
)

// ===== Message DTOs =====

// SendMessageRequest represents a request to send a direct message
type SendMessageRequest struct {
	RecipientID uuid.UUID `json:"recipient_id" binding:"required"`
	Subject     string    `json:"subject" binding:"max=200"`
	Body        string    `json:"body" binding:"required,max=10000"`
}

// MessageListFilter filters inbox and sent lists
type MessageListFilter struct {
	Unread   bool   `form:"unread"`
	Search   string `form:"search" binding:"max=100"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// ParticipantResponse describes the other side of a message
type ParticipantResponse struct {
	ID         uuid.UUID  `json:"id"`
	Username   string     `json:"username"`
	FullName   string     `json:"full_name"`
	IsOnline   bool       `json:"is_online"`
	LastSeenAt *time.Time `json:"last_seen_at,omitempty"`
}

// MessageResponse represents a message in API responses
type MessageResponse struct {
	ID          uuid.UUID            `json:"id"`
	SenderID    uuid.UUID            `json:"sender_id"`
	RecipientID uuid.UUID            `json:"recipient_id"`
	Subject     string               `json:"subject,omitempty"`
	Body        string               `json:"body"`
	IsRead      bool                 `json:"is_read"`
	ReadAt      *time.Time           `json:"read_at,omitempty"`
	Sender      *ParticipantResponse `json:"sender,omitempty"`
	Recipient   *ParticipantResponse `json:"recipient,omitempty"`
	CreatedAt   time.Time            `json:"created_at"`
}

// ToMessageResponse converts a domain Message to MessageResponse
func ToMessageResponse(m *messaging.Message) MessageResponse {
	return MessageResponse{
		ID:          m.ID,
		SenderID:    m.SenderID,
		RecipientID: m.RecipientID,
		Subject:     m.Subject,
		Body:        m.Body,
		IsRead:      m.IsRead,
		ReadAt:      m.ReadAt,
		CreatedAt:   m.CreatedAt,
	}
}

// ===== Conversation DTOs =====

// ConversationSummaryResponse is one entry of the conversation list
type ConversationSummaryResponse struct {
	Counterpart  ParticipantResponse `json:"counterpart"`
	LastMessage  MessageResponse     `json:"last_message"`
	UnreadCount  int                 `json:"unread_count"`
	MessageCount int                 `json:"message_count"`
}

// ConversationResponse is the full thread with one counterpart
type ConversationResponse struct {
	Counterpart ParticipantResponse `json:"counterpart"`
	Messages    []MessageResponse   `json:"messages"`
}

// UnreadCountResponse reports the caller's unread messages
type UnreadCountResponse struct {
	Unread int64 `json:"unread"`
}

// MarkedReadResponse reports how many messages were marked read
type MarkedReadResponse struct {
	Marked int64 `json:"marked"`
}
