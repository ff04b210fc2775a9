package messaging

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	appshared "github.com/shopdesk/backend/internal/application/shared"
	"github.com/shopdesk/backend/internal/domain/identity"
	"github.com/shopdesk/backend/internal/domain/messaging"
	"github.com/shopdesk/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Config configures online status reporting
type Config struct {
	OnlineThreshold time.Duration
}

// Service handles direct messages between staff accounts
type Service struct {
	messageRepo messaging.MessageRepository
	userRepo    identity.UserRepository
	presence    identity.PresenceStore
	config      Config
	metrics     appshared.BusinessMetrics
	logger      *zap.Logger
	now         func() time.Time
}

// NewService creates a new messaging service. presence and metrics may be nil.
func NewService(
	messageRepo messaging.MessageRepository,
	userRepo identity.UserRepository,
	presence identity.PresenceStore,
	config Config,
	metrics appshared.BusinessMetrics,
	logger *zap.Logger,
) *Service {
	if config.OnlineThreshold <= 0 {
		config.OnlineThreshold = 5 * time.Minute
	}
	return &Service{
		messageRepo: messageRepo,
		userRepo:    userRepo,
		presence:    presence,
		config:      config,
		metrics:     appshared.MetricsOrNop(metrics),
		logger:      logger,
		now:         time.Now,
	}
}

// Send delivers a message to an active recipient
func (s *Service) Send(ctx context.Context, senderID uuid.UUID, req SendMessageRequest) (*MessageResponse, error) {
	recipient, err := s.userRepo.FindByID(ctx, req.RecipientID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("RECIPIENT_NOT_FOUND", "Recipient not found")
		}
		return nil, err
	}
	if !recipient.IsActive() {
		return nil, shared.NewDomainError("RECIPIENT_INACTIVE", "Recipient account is inactive")
	}

	msg, err := messaging.NewMessage(senderID, recipient.ID, req.Subject, req.Body)
	if err != nil {
		return nil, err
	}
	if err := s.messageRepo.Create(ctx, msg); err != nil {
		s.logger.Error("Failed to create message", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to send message")
	}

	s.metrics.MessageSent()
	s.logger.Info("Message sent",
		zap.String("message_id", msg.ID.String()),
		zap.String("sender_id", senderID.String()),
		zap.String("recipient_id", recipient.ID.String()))

	resp := ToMessageResponse(msg)
	participants, err := s.participants(ctx, []uuid.UUID{senderID, recipient.ID})
	if err == nil {
		resp.Sender = participants[senderID]
		resp.Recipient = participants[recipient.ID]
	}
	return &resp, nil
}

// Inbox lists received messages, newest first
func (s *Service) Inbox(ctx context.Context, userID uuid.UUID, f MessageListFilter) (*shared.Paginated[MessageResponse], error) {
	filter := messageFilter(f)
	if f.Unread {
		filter = filter.With("unread", true)
	}
	msgs, total, err := s.messageRepo.FindInbox(ctx, userID, filter)
	if err != nil {
		return nil, err
	}
	return s.page(ctx, msgs, total, filter, func(m *messaging.Message) uuid.UUID { return m.SenderID })
}

// Sent lists sent messages, newest first
func (s *Service) Sent(ctx context.Context, userID uuid.UUID, f MessageListFilter) (*shared.Paginated[MessageResponse], error) {
	filter := messageFilter(f)
	msgs, total, err := s.messageRepo.FindSent(ctx, userID, filter)
	if err != nil {
		return nil, err
	}
	return s.page(ctx, msgs, total, filter, func(m *messaging.Message) uuid.UUID { return m.RecipientID })
}

// Conversation returns the thread with counterpartID, oldest first
func (s *Service) Conversation(ctx context.Context, userID, counterpartID uuid.UUID) (*ConversationResponse, error) {
	participants, err := s.participants(ctx, []uuid.UUID{counterpartID})
	if err != nil {
		return nil, err
	}
	counterpart, ok := participants[counterpartID]
	if !ok {
		return nil, shared.NewDomainError("USER_NOT_FOUND", "User not found")
	}

	msgs, err := s.messageRepo.FindThread(ctx, userID, counterpartID)
	if err != nil {
		return nil, err
	}
	resp := &ConversationResponse{Counterpart: *counterpart, Messages: make([]MessageResponse, len(msgs))}
	for i := range msgs {
		resp.Messages[i] = ToMessageResponse(&msgs[i])
	}
	return resp, nil
}

// Conversations groups the caller's messages by counterpart, newest first
func (s *Service) Conversations(ctx context.Context, userID uuid.UUID) ([]ConversationSummaryResponse, error) {
	msgs, err := s.messageRepo.FindAllFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	convs := messaging.GroupConversations(userID, msgs)

	ids := make([]uuid.UUID, len(convs))
	for i, c := range convs {
		ids[i] = c.CounterpartID
	}
	participants, err := s.participants(ctx, ids)
	if err != nil {
		return nil, err
	}

	result := make([]ConversationSummaryResponse, 0, len(convs))
	for _, c := range convs {
		counterpart, ok := participants[c.CounterpartID]
		if !ok {
			counterpart = &ParticipantResponse{ID: c.CounterpartID, FullName: "Deleted user"}
		}
		result = append(result, ConversationSummaryResponse{
			Counterpart:  *counterpart,
			LastMessage:  ToMessageResponse(&c.LastMessage),
			UnreadCount:  c.UnreadCount,
			MessageCount: c.MessageCount,
		})
	}
	return result, nil
}

// UnreadCount returns the number of unread received messages
func (s *Service) UnreadCount(ctx context.Context, userID uuid.UUID) (*UnreadCountResponse, error) {
	count, err := s.messageRepo.CountUnread(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &UnreadCountResponse{Unread: count}, nil
}

// MarkRead marks a received message read
func (s *Service) MarkRead(ctx context.Context, userID, id uuid.UUID) (*MessageResponse, error) {
	msg, err := s.find(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := msg.MarkRead(userID, s.now()); err != nil {
		return nil, err
	}
	if err := s.messageRepo.Update(ctx, msg); err != nil {
		return nil, err
	}
	resp := ToMessageResponse(msg)
	return &resp, nil
}

// MarkConversationRead marks every unread message from counterpartID read
func (s *Service) MarkConversationRead(ctx context.Context, userID, counterpartID uuid.UUID) (*MarkedReadResponse, error) {
	marked, err := s.messageRepo.MarkThreadRead(ctx, userID, counterpartID)
	if err != nil {
		return nil, err
	}
	return &MarkedReadResponse{Marked: marked}, nil
}

// Delete hides a message for the caller; the other side keeps its copy
func (s *Service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	msg, err := s.find(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := msg.DeleteFor(userID); err != nil {
		return err
	}
	return s.messageRepo.Update(ctx, msg)
}

// find loads a message visible to userID
func (s *Service) find(ctx context.Context, userID, id uuid.UUID) (*messaging.Message, error) {
	msg, err := s.messageRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("MESSAGE_NOT_FOUND", "Message not found")
		}
		return nil, err
	}
	if !msg.VisibleTo(userID) {
		return nil, shared.NewDomainError("MESSAGE_NOT_FOUND", "Message not found")
	}
	return msg, nil
}

func (s *Service) page(
	ctx context.Context,
	msgs []messaging.Message,
	total int64,
	filter shared.Filter,
	other func(*messaging.Message) uuid.UUID,
) (*shared.Paginated[MessageResponse], error) {
	ids := make([]uuid.UUID, len(msgs))
	for i := range msgs {
		ids[i] = other(&msgs[i])
	}
	participants, err := s.participants(ctx, ids)
	if err != nil {
		return nil, err
	}

	items := make([]MessageResponse, len(msgs))
	for i := range msgs {
		items[i] = ToMessageResponse(&msgs[i])
		items[i].Sender = participants[msgs[i].SenderID]
		items[i].Recipient = participants[msgs[i].RecipientID]
	}
	result := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &result, nil
}

// participants loads users with their online status. The presence store
// wins over the persisted last-seen time when it knows the user.
func (s *Service) participants(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*ParticipantResponse, error) {
	ids = uniqueIDs(ids)
	result := make(map[uuid.UUID]*ParticipantResponse, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	users, err := s.userRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	var seen map[uuid.UUID]time.Time
	if s.presence != nil {
		if seen, err = s.presence.LastSeenMany(ctx, ids); err != nil {
			s.logger.Debug("Failed to load presence", zap.Error(err))
		}
	}

	now := s.now()
	for i := range users {
		u := &users[i]
		lastSeen := u.LastSeenAt
		if t, ok := seen[u.ID]; ok {
			lastSeen = &t
		}
		result[u.ID] = &ParticipantResponse{
			ID:         u.ID,
			Username:   u.Username,
			FullName:   u.FullName,
			IsOnline:   identity.IsOnline(lastSeen, now, s.config.OnlineThreshold),
			LastSeenAt: lastSeen,
		}
	}
	return result, nil
}

func messageFilter(f MessageListFilter) shared.Filter {
	filter := shared.DefaultFilter()
	if f.Page > 0 {
		filter.Page = f.Page
	}
	if f.PageSize > 0 {
		filter.PageSize = f.PageSize
	}
	filter.Search = f.Search
	return filter
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
