package messaging

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopdesk/backend/internal/domain/shared"
)

// MessageRepository defines the interface for message persistence
type MessageRepository interface {
	Create(ctx context.Context, msg *Message) error
	Update(ctx context.Context, msg *Message) error
	FindByID(ctx context.Context, id uuid.UUID) (*Message, error)
	FindInbox(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]Message, int64, error)
	FindSent(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]Message, int64, error)
	// FindThread returns messages between two users visible to userID, oldest first
	FindThread(ctx context.Context, userID, counterpartID uuid.UUID) ([]Message, error)
	// FindAllFor returns every message where userID is sender or recipient
	FindAllFor(ctx context.Context, userID uuid.UUID) ([]Message, error)
	CountUnread(ctx context.Context, userID uuid.UUID) (int64, error)
	// MarkThreadRead marks all unread messages from counterpartID to userID as read
	MarkThreadRead(ctx context.Context, userID, counterpartID uuid.UUID) (int64, error)
}
