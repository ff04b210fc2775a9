package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopdesk/backend/internal/domain/messaging"
	"github.com/shopdesk/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormMessageRepository implements MessageRepository using GORM
type GormMessageRepository struct {
	db *gorm.DB
}

// NewGormMessageRepository creates a new GormMessageRepository
func NewGormMessageRepository(db *gorm.DB) *GormMessageRepository {
	return &GormMessageRepository{db: db}
}

func (r *GormMessageRepository) Create(ctx context.Context, msg *messaging.Message) error {
	return r.db.WithContext(ctx).Create(msg).Error
}

func (r *GormMessageRepository) Update(ctx context.Context, msg *messaging.Message) error {
	return r.db.WithContext(ctx).Save(msg).Error
}

func (r *GormMessageRepository) FindByID(ctx context.Context, id uuid.UUID) (*messaging.Message, error) {
	var msg messaging.Message
	if err := r.db.WithContext(ctx).First(&msg, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err)
	}
	return &msg, nil
}

// FindInbox lists received messages. Filter "unread" (bool) limits to unread ones.
func (r *GormMessageRepository) FindInbox(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]messaging.Message, int64, error) {
	query := r.db.WithContext(ctx).Model(&messaging.Message{}).
		Where("recipient_id = ? AND deleted_by_recipient = ?", userID, false)
	if unread, ok := filterValue[bool](filter, "unread"); ok && unread {
		query = query.Where("is_read = ?", false)
	}
	return r.page(query, filter)
}

func (r *GormMessageRepository) FindSent(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]messaging.Message, int64, error) {
	query := r.db.WithContext(ctx).Model(&messaging.Message{}).
		Where("sender_id = ? AND deleted_by_sender = ?", userID, false)
	return r.page(query, filter)
}

func (r *GormMessageRepository) page(query *gorm.DB, filter shared.Filter) ([]messaging.Message, int64, error) {
	if filter.Search != "" {
		p := likePattern(filter.Search)
		query = query.Where("LOWER(subject) LIKE ? OR LOWER(body) LIKE ?", p, p)
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var msgs []messaging.Message
	if err := paginate(query, filter, MessageSortFields, "created_at").Find(&msgs).Error; err != nil {
		return nil, 0, err
	}
	return msgs, total, nil
}

// FindThread returns messages between two users visible to userID, oldest first
func (r *GormMessageRepository) FindThread(ctx context.Context, userID, counterpartID uuid.UUID) ([]messaging.Message, error) {
	var msgs []messaging.Message
	err := r.db.WithContext(ctx).
		Where("(sender_id = ? AND recipient_id = ? AND deleted_by_sender = ?) OR (sender_id = ? AND recipient_id = ? AND deleted_by_recipient = ?)",
			userID, counterpartID, false, counterpartID, userID, false).
		Order("created_at ASC").
		Find(&msgs).Error
	return msgs, err
}

// FindAllFor returns every message where userID is sender or recipient
func (r *GormMessageRepository) FindAllFor(ctx context.Context, userID uuid.UUID) ([]messaging.Message, error) {
	var msgs []messaging.Message
	err := r.db.WithContext(ctx).
		Where("sender_id = ? OR recipient_id = ?", userID, userID).
		Order("created_at DESC").
		Find(&msgs).Error
	return msgs, err
}

func (r *GormMessageRepository) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&messaging.Message{}).
		Where("recipient_id = ? AND is_read = ? AND deleted_by_recipient = ?", userID, false, false).
		Count(&count).Error
	return count, err
}

// MarkThreadRead marks all unread messages from counterpartID to userID as read
func (r *GormMessageRepository) MarkThreadRead(ctx context.Context, userID, counterpartID uuid.UUID) (int64, error) {
	now := time.Now()
	result := r.db.WithContext(ctx).Model(&messaging.Message{}).
		Where("recipient_id = ? AND sender_id = ? AND is_read = ?", userID, counterpartID, false).
		Updates(map[string]any{"is_read": true, "read_at": now, "updated_at": now})
	return result.RowsAffected, result.Error
}

var _ messaging.MessageRepository = (*GormMessageRepository)(nil)
