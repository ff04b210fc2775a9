// Package notification emails account and purchase request notifications.
// Delivery is best-effort: failures are logged and counted, never propagated
// to the operation that triggered them.
package notification

import (
	"context"
	"fmt"

	"github.com/shopdesk/backend/internal/application/printing"
	appshared "github.com/shopdesk/backend/internal/application/shared"
	"github.com/shopdesk/backend/internal/domain/identity"
	"github.com/shopdesk/backend/internal/domain/trade"
	"github.com/shopdesk/backend/internal/infrastructure/email"
	infraprinting "github.com/shopdesk/backend/internal/infrastructure/printing"
	"github.com/shopdesk/backend/internal/infrastructure/storage"
	"go.uber.org/zap"
)

// Email template names used for metrics
const (
	templateWelcome         = "account_welcome"
	templatePasswordReset   = "account_password_reset"
	templatePurchaseRequest = "purchase_request_status"
)

// Side effect kinds counted on failure
const (
	sideEffectEmail   = "email"
	sideEffectPDF     = "pdf"
	sideEffectArchive = "archive"
)

// DocumentRenderer renders email bodies and receipts.
// *printing.DocumentService satisfies it.
type DocumentRenderer interface {
	Store() infraprinting.StoreInfo
	ReceiptPDF(ctx context.Context, sale *trade.Sale, cashierName, customerName string) (*printing.Document, error)
	PurchaseRequestEmail(pr *trade.PurchaseRequest, message string, hasReceipt bool) (string, error)
	AccountEmail(fullName, username, password string, reset bool) (string, error)
}

// Service sends notification emails
type Service struct {
	sender    email.Sender
	documents DocumentRenderer
	archive   storage.Archive
	metrics   appshared.BusinessMetrics
	logger    *zap.Logger
}

// NewService creates a notification Service. archive and metrics may be nil.
func NewService(
	sender email.Sender,
	documents DocumentRenderer,
	archive storage.Archive,
	metrics appshared.BusinessMetrics,
	logger *zap.Logger,
) *Service {
	if archive == nil {
		archive = storage.NopArchive{}
	}
	return &Service{
		sender:    sender,
		documents: documents,
		archive:   archive,
		metrics:   appshared.MetricsOrNop(metrics),
		logger:    logger,
	}
}

// SendWelcome emails the credentials of a newly created account
func (s *Service) SendWelcome(ctx context.Context, user *identity.User, password string) error {
	return s.sendAccountEmail(ctx, user, password, false)
}

// SendPasswordReset emails a newly generated password
func (s *Service) SendPasswordReset(ctx context.Context, user *identity.User, password string) error {
	return s.sendAccountEmail(ctx, user, password, true)
}

func (s *Service) sendAccountEmail(ctx context.Context, user *identity.User, password string, reset bool) error {
	template := templateWelcome
	subject := fmt.Sprintf("Welcome to %s", s.documents.Store().Name)
	if reset {
		template = templatePasswordReset
		subject = fmt.Sprintf("Your %s password has been reset", s.documents.Store().Name)
	}

	html, err := s.documents.AccountEmail(user.FullName, user.Username, password, reset)
	if err != nil {
		s.metrics.SideEffectFailed(sideEffectEmail)
		return fmt.Errorf("failed to render %s email: %w", template, err)
	}
	err = s.sender.Send(ctx, email.Message{
		To:      []string{user.Email},
		Subject: subject,
		HTML:    html,
	})
	s.metrics.EmailSent(template, err)
	if err != nil {
		s.metrics.SideEffectFailed(sideEffectEmail)
		return fmt.Errorf("failed to send %s email: %w", template, err)
	}
	s.logger.Info("Account email sent",
		zap.String("template", template),
		zap.String("user_id", user.ID.String()))
	return nil
}
