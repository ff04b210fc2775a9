package messaging

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopdesk/backend/internal/domain/shared"
)

// Message is a direct message between two staff accounts
type Message struct {
	shared.BaseEntity
	SenderID           uuid.UUID `gorm:"type:uuid;not null;index"`
	RecipientID        uuid.UUID `gorm:"type:uuid;not null;index:idx_message_recipient_read,priority:1"`
	Subject            string    `gorm:"type:varchar(200)"`
	Body               string    `gorm:"type:text;not null"`
	IsRead             bool      `gorm:"not null;index:idx_message_recipient_read,priority:2"`
	ReadAt             *time.Time
	DeletedBySender    bool `gorm:"not null"`
	DeletedByRecipient bool `gorm:"not null"`
}

// TableName returns the table name for GORM
func (Message) TableName() string {
	return "messages"
}

// NewMessage creates an unread message
func NewMessage(senderID, recipientID uuid.UUID, subject, body string) (*Message, error) {
	if senderID == uuid.Nil || recipientID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PARTICIPANT", "Sender and recipient are required")
	}
	if senderID == recipientID {
		return nil, shared.NewDomainError("INVALID_RECIPIENT", "Cannot send a message to yourself")
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, shared.NewDomainError("INVALID_BODY", "Message body cannot be empty")
	}
	subject = strings.TrimSpace(subject)
	if len(subject) > 200 {
		return nil, shared.NewDomainError("INVALID_SUBJECT", "Subject cannot exceed 200 characters")
	}
	return &Message{
		BaseEntity:  shared.NewBaseEntity(),
		SenderID:    senderID,
		RecipientID: recipientID,
		Subject:     subject,
		Body:        body,
	}, nil
}

// MarkRead marks the message read; only the recipient may do so
func (m *Message) MarkRead(readerID uuid.UUID, at time.Time) error {
	if readerID != m.RecipientID {
		return shared.NewDomainError("FORBIDDEN", "Only the recipient can mark a message as read")
	}
	if m.IsRead {
		return nil
	}
	m.IsRead = true
	m.ReadAt = &at
	m.UpdatedAt = at
	return nil
}

// DeleteFor hides the message for one participant
func (m *Message) DeleteFor(userID uuid.UUID) error {
	switch userID {
	case m.SenderID:
		m.DeletedBySender = true
	case m.RecipientID:
		m.DeletedByRecipient = true
	default:
		return shared.NewDomainError("FORBIDDEN", "Only a participant can delete a message")
	}
	m.Touch()
	return nil
}

// Counterpart returns the other participant from userID's point of view
func (m *Message) Counterpart(userID uuid.UUID) uuid.UUID {
	if m.SenderID == userID {
		return m.RecipientID
	}
	return m.SenderID
}

// VisibleTo reports whether userID participates and has not deleted the message
func (m *Message) VisibleTo(userID uuid.UUID) bool {
	switch userID {
	case m.SenderID:
		return !m.DeletedBySender
	case m.RecipientID:
		return !m.DeletedByRecipient
	}
	return false
}

// Conversation summarizes the thread with one counterpart
type Conversation struct {
	CounterpartID uuid.UUID
	LastMessage   Message
	UnreadCount   int
	MessageCount  int
}

// GroupConversations groups messages by counterpart from userID's point of
// view, newest conversation first. Unread counts only include messages
// received by userID.
func GroupConversations(userID uuid.UUID, messages []Message) []Conversation {
	byCounterpart := make(map[uuid.UUID]*Conversation)
	for _, msg := range messages {
		if !msg.VisibleTo(userID) {
			continue
		}
		other := msg.Counterpart(userID)
		conv, ok := byCounterpart[other]
		if !ok {
			conv = &Conversation{CounterpartID: other, LastMessage: msg}
			byCounterpart[other] = conv
		}
		conv.MessageCount++
		if msg.CreatedAt.After(conv.LastMessage.CreatedAt) {
			conv.LastMessage = msg
		}
		if msg.RecipientID == userID && !msg.IsRead {
			conv.UnreadCount++
		}
	}

	result := make([]Conversation, 0, len(byCounterpart))
	for _, conv := range byCounterpart {
		result = append(result, *conv)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].LastMessage.CreatedAt.After(result[j].LastMessage.CreatedAt)
	})
	return result
}
