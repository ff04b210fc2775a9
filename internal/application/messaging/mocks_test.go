package messaging

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopdesk/backend/internal/domain/identity"
	"github.com/shopdesk/backend/internal/domain/messaging"
	"github.com/shopdesk/backend/internal/domain/shared"
	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock implementation of identity.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *identity.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, user *identity.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]identity.User, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByLogin(ctx context.Context, login string) (*identity.User, error) {
	args := m.Called(ctx, login)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindAll(ctx context.Context, filter shared.Filter) ([]identity.User, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]identity.User), args.Get(1).(int64), args.Error(2)
}

func (m *MockUserRepository) ExistsByUsername(ctx context.Context, username string, excludeID *uuid.UUID) (bool, error) {
	args := m.Called(ctx, username, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) ExistsByEmail(ctx context.Context, email string, excludeID *uuid.UUID) (bool, error) {
	args := m.Called(ctx, email, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) TouchLastSeen(ctx context.Context, id uuid.UUID, at time.Time) error {
	return m.Called(ctx, id, at).Error(0)
}

func (m *MockUserRepository) CountByRole(ctx context.Context, role identity.Role) (int64, error) {
	args := m.Called(ctx, role)

// memoryMessageRepository keeps messages in a slice with repository semantics
type memoryMessageRepository struct {
	mu       sync.Mutex
	messages []*messaging.Message
}

func (r *memoryMessageRepository) Create(_ context.Context, msg *messaging.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, msg)
	return nil
}

func (r *memoryMessageRepository) Update(_ context.Context, msg *messaging.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, m := range r.messages {
		if m.ID == msg.ID {
			r.messages[i] = msg
			return nil
		}
	}
	return shared.ErrNotFound
}

func (r *memoryMessageRepository) FindByID(_ context.Context, id uuid.UUID) (*messaging.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.messages {
		if m.ID == id {
			cp := *m
			return &cp, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memoryMessageRepository) collect(keep func(*messaging.Message) bool) []messaging.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []messaging.Message
	for _, m := range r.messages {
		if keep(m) {
			out = append(out, *m)
		}
	}
	return out
}

func (r *memoryMessageRepository) FindInbox(_ context.Context, userID uuid.UUID, filter shared.Filter) ([]messaging.Message, int64, error) {
	unread, _ := filter.Filters["unread"].(bool)
	out := r.collect(func(m *messaging.Message) bool {
		return m.RecipientID == userID && !m.DeletedByRecipient && (!unread || !m.IsRead)
	})
	return out, int64(len(out)), nil
}

func (r *memoryMessageRepository) FindSent(_ context.Context, userID uuid.UUID, _ shared.Filter) ([]messaging.Message, int64, error) {
	out := r.collect(func(m *messaging.Message) bool { return m.SenderID == userID && !m.DeletedBySender })
	return out, int64(len(out)), nil
}

func (r *memoryMessageRepository) FindThread(_ context.Context, userID, counterpartID uuid.UUID) ([]messaging.Message, error) {
	out := r.collect(func(m *messaging.Message) bool {
		return m.Counterpart(userID) == counterpartID && m.VisibleTo(userID)
	})
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *memoryMessageRepository) FindAllFor(_ context.Context, userID uuid.UUID) ([]messaging.Message, error) {
	return r.collect(func(m *messaging.Message) bool { return m.SenderID == userID || m.RecipientID == userID }), nil
}

func (r *memoryMessageRepository) CountUnread(_ context.Context, userID uuid.UUID) (int64, error) {
	out := r.collect(func(m *messaging.Message) bool {
		return m.RecipientID == userID && !m.IsRead && !m.DeletedByRecipient
	})
	return int64(len(out)), nil
}

func (r *memoryMessageRepository) MarkThreadRead(_ context.Context, userID, counterpartID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var marked int64
	now := time.Now()
	for _, m := range r.messages {
		if m.RecipientID == userID && m.SenderID == counterpartID && !m.IsRead {
			m.IsRead = true
			m.ReadAt = &now
			marked++
		}
	}
	return marked, nil
}

var _ messaging.MessageRepository = (*memoryMessageRepository)(nil)
