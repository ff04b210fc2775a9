package notification

import (
	"context"
	"fmt"

	"github.com/shopdesk/backend/internal/domain/shared"
	"github.com/shopdesk/backend/internal/domain/trade"
	"github.com/shopdesk/backend/internal/infrastructure/email"
	"go.uber.org/zap"
)

var statusMessages = map[trade.PurchaseRequestStatus]string{
	trade.PurchaseRequestStatusPending:    "We have received your purchase request.",
	trade.PurchaseRequestStatusApproved:   "Your purchase request has been approved and will be prepared shortly.",
	trade.PurchaseRequestStatusProcessing: "Your order is being prepared.",
	trade.PurchaseRequestStatusShipped:    "Your order is on its way.",
	trade.PurchaseRequestStatusDelivered:  "Your order has been delivered.",
	trade.PurchaseRequestStatusCompleted:  "Your purchase is complete. Thank you for shopping with us.",
	trade.PurchaseRequestStatusCancelled:  "Your purchase request has been cancelled.",
}

// PurchaseRequestHandler emails the contact of a purchase request on every
// status change. A completed request gets its sale receipt attached, which
// is also archived when storage is configured.
type PurchaseRequestHandler struct {
	service     *Service
	requestRepo trade.PurchaseRequestRepository
	saleRepo    trade.SaleRepository
}

// NewPurchaseRequestHandler creates a handler for purchase request status events
func NewPurchaseRequestHandler(
	service *Service,
	requestRepo trade.PurchaseRequestRepository,
	saleRepo trade.SaleRepository,
) *PurchaseRequestHandler {
	return &PurchaseRequestHandler{
		service:     service,
		requestRepo: requestRepo,
		saleRepo:    saleRepo,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *PurchaseRequestHandler) EventTypes() []string {
	return []string{trade.EventTypePurchaseRequestStatusChanged}
}

// Handle sends the status email. It only returns an error for an unexpected
// event type; delivery failures are logged and counted.
func (h *PurchaseRequestHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	changed, ok := event.(*trade.PurchaseRequestStatusChangedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			trade.EventTypePurchaseRequestStatusChanged, event.EventType())
	}
	logger := h.service.logger.With(
		zap.String("request_number", changed.RequestNumber),
		zap.String("status", string(changed.ToStatus)))

	if changed.ContactEmail == "" {
		logger.Warn("Purchase request has no contact email, notification skipped")
		return nil
	}

	pr, err := h.requestRepo.FindByID(ctx, changed.RequestID)
	if err != nil {
		h.service.metrics.SideEffectFailed(sideEffectEmail)
		logger.Error("Failed to load purchase request for notification", zap.Error(err))
		return nil
	}

	var attachments []email.Attachment
	if changed.ToStatus == trade.PurchaseRequestStatusCompleted && changed.SaleID != nil {
		if attachment, ok := h.receipt(ctx, logger, changed, pr); ok {
			attachments = append(attachments, attachment)
		}
	}

	message := statusMessages[changed.ToStatus]
	if changed.ToStatus == trade.PurchaseRequestStatusCancelled && changed.Reason != "" {
		message = fmt.Sprintf("%s Reason: %s", message, changed.Reason)
	}
	html, err := h.service.documents.PurchaseRequestEmail(pr, message, len(attachments) > 0)
	if err != nil {
		h.service.metrics.SideEffectFailed(sideEffectEmail)
		logger.Error("Failed to render purchase request email", zap.Error(err))
		return nil
	}

	err = h.service.sender.Send(ctx, email.Message{
		To:          []string{changed.ContactEmail},
		Subject:     fmt.Sprintf("Purchase request %s: %s", changed.RequestNumber, changed.ToStatus.Label()),
		HTML:        html,
		Attachments: attachments,
	})
	h.service.metrics.EmailSent(templatePurchaseRequest, err)
	if err != nil {
		h.service.metrics.SideEffectFailed(sideEffectEmail)
		logger.Error("Failed to send purchase request email", zap.Error(err))
		return nil
	}
	logger.Info("Purchase request notification sent", zap.Int("attachments", len(attachments)))
	return nil
}

// receipt renders and archives the receipt of the completing sale
func (h *PurchaseRequestHandler) receipt(
	ctx context.Context,
	logger *zap.Logger,
	changed *trade.PurchaseRequestStatusChangedEvent,
	pr *trade.PurchaseRequest,
) (email.Attachment, bool) {
	sale, err := h.saleRepo.FindByID(ctx, *changed.SaleID)
	if err != nil {
		h.service.metrics.SideEffectFailed(sideEffectPDF)
		logger.Error("Failed to load sale for receipt", zap.Error(err))
		return email.Attachment{}, false
	}
	doc, err := h.service.documents.ReceiptPDF(ctx, sale, "", pr.ContactName)
	if err != nil {
		h.service.metrics.SideEffectFailed(sideEffectPDF)
		logger.Error("Failed to render receipt", zap.Error(err))
		return email.Attachment{}, false
	}

	if h.service.archive.Enabled() {
		key := fmt.Sprintf("receipts/%s/%s", sale.SoldAt.UTC().Format("2006/01"), doc.Filename)
		if _, err := h.service.archive.Put(ctx, key, doc.ContentType, doc.Data); err != nil {
			h.service.metrics.SideEffectFailed(sideEffectArchive)
			logger.Warn("Failed to archive receipt", zap.String("key", key), zap.Error(err))
		}
	}

	return email.Attachment{
		Filename:    doc.Filename,
		ContentType: doc.ContentType,
		Data:        doc.Data,
	}, true
}
