package trade

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	appshared "github.com/shopdesk/backend/internal/application/shared"
	"github.com/shopdesk/backend/internal/domain/catalog"
	"github.com/shopdesk/backend/internal/domain/partner"
	"github.com/shopdesk/backend/internal/domain/shared"
	"github.com/shopdesk/backend/internal/domain/trade"
	"github.com/shopdesk/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// PurchaseRequestService manages customer purchase requests through their
// fulfillment lifecycle
type PurchaseRequestService struct {
	txScope      appshared.TransactionScope
	requestRepo  trade.PurchaseRequestRepository
	customerRepo partner.CustomerRepository
	publisher    shared.EventPublisher
	metrics      appshared.BusinessMetrics
	logger       *zap.Logger
}

// NewPurchaseRequestService creates a new PurchaseRequestService.
// publisher and metrics may be nil.
func NewPurchaseRequestService(
	txScope appshared.TransactionScope,
	requestRepo trade.PurchaseRequestRepository,
	customerRepo partner.CustomerRepository,
	publisher shared.EventPublisher,
	metrics appshared.BusinessMetrics,
	logger *zap.Logger,
) *PurchaseRequestService {
	return &PurchaseRequestService{
		txScope:      txScope,
		requestRepo:  requestRepo,
		customerRepo: customerRepo,
		publisher:    publisher,
		metrics:      appshared.MetricsOrNop(metrics),
		logger:       logger,
	}
}

// Create records a pending purchase request from explicit items or from the
// customer's cart. A cart used this way is cleared in the same transaction.
func (s *PurchaseRequestService) Create(ctx context.Context, req CreatePurchaseRequestRequest) (*PurchaseRequestResponse, error) {
	customer, err := s.customerRepo.FindByID(ctx, req.CustomerID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("CUSTOMER_NOT_FOUND", "Customer not found")
		}
		return nil, err
	}
	contactName := req.ContactName
	if contactName == "" {
		contactName = customer.Name
	}
	contactEmail := req.ContactEmail
	if contactEmail == "" {
		contactEmail = customer.Email
	}
	if !req.FromCart && len(req.Items) == 0 {
		return nil, shared.NewDomainError("NO_ITEMS", "Purchase request must have at least one item")
	}

	var pr *trade.PurchaseRequest
	err = s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		items := req.Items
		var cart *partner.CustomerCart
		if req.FromCart {
			var err error
			cart, err = repos.Carts().FindByCustomer(ctx, customer.ID)
			if err != nil && !errors.Is(err, shared.ErrNotFound) {
				return err
			}
			if cart == nil || len(cart.Items) == 0 {
				return shared.NewDomainError("CART_EMPTY", "Cart is empty")
			}
			items = make([]LineItemRequest, len(cart.Items))
			for i, item := range cart.Items {
				items[i] = LineItemRequest{ProductID: item.ProductID, Quantity: item.Quantity}
			}
		}

		_, lines, err := resolveLines(ctx, repos.Products(), items, false)
		if err != nil {
			return err
		}
		pr, err = trade.NewPurchaseRequest(customer.ID, contactName, contactEmail, req.Notes, lines)
		if err != nil {
			return err
		}
		if err := repos.PurchaseRequests().Create(ctx, pr); err != nil {
			return err
		}
		if cart != nil {
			return repos.Carts().ClearItems(ctx, cart.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.PurchaseRequestTransition(string(pr.Status))
	s.logger.Info("Purchase request created",
		zap.String("request_number", pr.RequestNumber),
		zap.String("customer_id", pr.CustomerID.String()),
		zap.Bool("from_cart", req.FromCart),
		zap.String("total", pr.Total.StringFixed(2)))
	resp := ToPurchaseRequestResponse(pr)
	return &resp, nil
}

// GetByID retrieves a purchase request with its items
func (s *PurchaseRequestService) GetByID(ctx context.Context, id uuid.UUID) (*PurchaseRequestResponse, error) {
	pr, err := s.requestRepo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundRequest(err)
	}
	resp := ToPurchaseRequestResponse(pr)
	return &resp, nil
}

// List retrieves purchase requests page by page
func (s *PurchaseRequestService) List(ctx context.Context, f PurchaseRequestListFilter) (*shared.Paginated[PurchaseRequestResponse], error) {
	filter := listFilter(f.Page, f.PageSize, f.From, f.To)
	if f.Status != "" {
		status, err := trade.ParsePurchaseRequestStatus(f.Status)
		if err != nil {
			return nil, err
		}
		filter = filter.With("status", string(status))
	}
	if f.CustomerID != nil {
		filter = filter.With("customer_id", *f.CustomerID)
	}

	prs, total, err := s.requestRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	result := shared.NewPaginated(ToPurchaseRequestResponses(prs), total, filter.Page, filter.PageSize)
	return &result, nil
}

// UpdateStatus moves a request to the target status. Completing a request
// creates its sale and deducts stock; the status change, the sale and the
// stock movements commit together or not at all. Notifications follow the
// commit through the published status-changed event.
func (s *PurchaseRequestService) UpdateStatus(ctx context.Context, id, actorID uuid.UUID, req UpdateStatusRequest) (_ *StatusChangeResult, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "purchase_request", "update_status",
		"purchase_request_id", id.String(),
		"status", req.Status,
	)
	defer func() {
		telemetry.RecordError(span, err)
		span.End()
	}()

	target, err := trade.ParsePurchaseRequestStatus(req.Status)
	if err != nil {
		return nil, err
	}
	method := trade.PaymentMethodCash
	if req.PaymentMethod != "" {
		method = trade.PaymentMethod(strings.ToLower(req.PaymentMethod))
	}

	var pr *trade.PurchaseRequest
	var sale *trade.Sale
	err = s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		var err error
		pr, err = repos.PurchaseRequests().FindByID(ctx, id)
		if err != nil {
			return notFoundRequest(err)
		}

		opts := trade.TransitionOptions{Reason: req.Reason, ActorID: &actorID}
		if target == trade.PurchaseRequestStatusCompleted && pr.Status.CanTransitionTo(target) {
			sale, err = s.completeSale(ctx, repos, pr, method, actorID)
			if err != nil {
				return err
			}
			opts.SaleID = &sale.ID
		}
		if err := pr.TransitionTo(target, opts); err != nil {
			return err
		}
		return repos.PurchaseRequests().SaveWithLock(ctx, pr)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.PurchaseRequestTransition(string(target))
	if sale != nil {
		s.metrics.SaleCompleted(string(sale.PaymentMethod), channelPurchaseRequest, sale.Total)
		for range sale.Items {
			s.metrics.StockMoved(string(catalog.MovementPurchase))
		}
	}
	s.logger.Info("Purchase request status changed",
		zap.String("request_number", pr.RequestNumber),
		zap.String("status", string(pr.Status)),
		zap.String("actor_id", actorID.String()))

	s.publishEvents(ctx, pr, sale)

	result := &StatusChangeResult{Request: ToPurchaseRequestResponse(pr)}
	if sale != nil {
		resp := ToSaleResponse(sale)
		result.Sale = &resp
	}
	return result, nil
}

// completeSale creates the request's single sale from its items at the
// requested prices and deducts stock for every line
func (s *PurchaseRequestService) completeSale(
	ctx context.Context,
	repos appshared.TransactionalRepositories,
	pr *trade.PurchaseRequest,
	method trade.PaymentMethod,
	actorID uuid.UUID,
) (*trade.Sale, error) {
	existing, err := repos.Sales().CountByPurchaseRequest(ctx, pr.ID)
	if err != nil {
		return nil, err
	}
	if existing > 0 {
		return nil, shared.NewDomainError("ALREADY_EXISTS",
			fmt.Sprintf("A sale already exists for purchase request %s", pr.RequestNumber))
	}

	lines := pr.SaleLines()
	products := make(map[uuid.UUID]*catalog.Product, len(lines))
	for i := range lines {
		product, ok := products[lines[i].ProductID]
		if !ok {
			if product, err = findProduct(ctx, repos.Products(), lines[i].ProductID); err != nil {
				return nil, err
			}
			products[product.ID] = product
		}
		lines[i].CostPrice = product.CostPrice
	}

	customerID := pr.CustomerID
	requestID := pr.ID
	sale, err := trade.NewSale(trade.SaleParams{
		CashierID:         &actorID,
		CustomerID:        &customerID,
		PurchaseRequestID: &requestID,
		PaymentMethod:     method,
		Lines:             lines,
		AmountPaid:        pr.ItemsTotal(),
	})
	if err != nil {
		return nil, err
	}
	if err := deductStock(ctx, repos, products, sale.Items, catalog.MovementPurchase, pr.RequestNumber, &actorID); err != nil {
		return nil, err
	}
	if err := repos.Sales().Create(ctx, sale); err != nil {
		return nil, err
	}
	return sale, nil
}

func (s *PurchaseRequestService) publishEvents(ctx context.Context, pr *trade.PurchaseRequest, sale *trade.Sale) {
	events := pr.GetDomainEvents()
	pr.ClearDomainEvents()
	if sale != nil {
		events = append(events, sale.GetDomainEvents()...)
		sale.ClearDomainEvents()
	}
	if s.publisher == nil || len(events) == 0 {
		return
	}
	if err := s.publisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("Failed to publish purchase request events",
			zap.String("request_number", pr.RequestNumber),
			zap.Error(err))
	}
}

func notFoundRequest(err error) error {
	if errors.Is(err, shared.ErrNotFound) {
		return shared.NewDomainError("PURCHASE_REQUEST_NOT_FOUND", "Purchase request not found")
	}
	return err
}
