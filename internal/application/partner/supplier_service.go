package partner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	appshared "github.com/shopdesk/backend/internal/application/shared"
	"github.com/shopdesk/backend/internal/domain/catalog"
	"github.com/shopdesk/backend/internal/domain/partner"
	"github.com/shopdesk/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// SupplierService handles supplier-related business operations
type SupplierService struct {
	txScope      appshared.TransactionScope
	supplierRepo partner.SupplierRepository
	metrics      appshared.BusinessMetrics
	logger       *zap.Logger
}

// NewSupplierService creates a new SupplierService
func NewSupplierService(
	txScope appshared.TransactionScope,
	supplierRepo partner.SupplierRepository,
	metrics appshared.BusinessMetrics,
	logger *zap.Logger,
) *SupplierService {
	return &SupplierService{
		txScope:      txScope,
		supplierRepo: supplierRepo,
		metrics:      appshared.MetricsOrNop(metrics),
		logger:       logger,
	}
}

// Create creates a new supplier
func (s *SupplierService) Create(ctx context.Context, req CreateSupplierRequest) (*SupplierResponse, error) {
	if err := s.checkName(ctx, req.Name, nil); err != nil {
		return nil, err
	}
	supplier, err := partner.NewSupplier(req.Name, req.ContactPerson, req.Email, req.Phone, req.Address)
	if err != nil {
		return nil, err
	}
	if err := s.supplierRepo.Save(ctx, supplier); err != nil {
		return nil, err
	}
	s.logger.Info("Supplier created", zap.String("supplier_id", supplier.ID.String()))
	resp := ToSupplierResponse(supplier)
	return &resp, nil
}

// GetByID retrieves a supplier by ID
func (s *SupplierService) GetByID(ctx context.Context, id uuid.UUID) (*SupplierResponse, error) {
	supplier, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToSupplierResponse(supplier)
	return &resp, nil
}

// List retrieves suppliers page by page
func (s *SupplierService) List(ctx context.Context, f SupplierListFilter) (*shared.Paginated[SupplierResponse], error) {
	filter := shared.DefaultFilter()
	filter.Search = f.Search
	filter.OrderBy = "name"
	filter.OrderDir = "asc"
	if f.Page > 0 {
		filter.Page = f.Page
	}
	if f.PageSize > 0 {
		filter.PageSize = f.PageSize
	}
	if f.IsActive != nil {
		filter = filter.With("is_active", *f.IsActive)
	}

	suppliers, total, err := s.supplierRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]SupplierResponse, len(suppliers))
	for i := range suppliers {
		items[i] = ToSupplierResponse(&suppliers[i])
	}
	result := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &result, nil
}

// Update replaces a supplier's details
func (s *SupplierService) Update(ctx context.Context, id uuid.UUID, req UpdateSupplierRequest) (*SupplierResponse, error) {
	supplier, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkName(ctx, req.Name, &id); err != nil {
		return nil, err
	}
	if err := supplier.Update(req.Name, req.ContactPerson, req.Email, req.Phone, req.Address); err != nil {
		return nil, err
	}
	if err := s.supplierRepo.Save(ctx, supplier); err != nil {
		return nil, err
	}
	resp := ToSupplierResponse(supplier)
	return &resp, nil
}

// Delete deletes a supplier
func (s *SupplierService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.supplierRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("SUPPLIER_NOT_FOUND", "Supplier not found")
		}
		return err
	}
	s.logger.Info("Supplier deleted", zap.String("supplier_id", id.String()))
	return nil
}

// ToggleActive flips the supplier's active flag
func (s *SupplierService) ToggleActive(ctx context.Context, id uuid.UUID) (*SupplierResponse, error) {
	supplier, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	supplier.ToggleActive()
	if err := s.supplierRepo.Save(ctx, supplier); err != nil {
		return nil, err
	}
	resp := ToSupplierResponse(supplier)
	return &resp, nil
}

// RecordSupply records received goods and adds them to product stock.
// The supply record, stock change and movement are written in one transaction.
func (s *SupplierService) RecordSupply(ctx context.Context, supplierID uuid.UUID, req RecordSupplyRequest, userID *uuid.UUID) (*SupplyResponse, error) {
	supplier, err := s.find(ctx, supplierID)
	if err != nil {
		return nil, err
	}
	if !supplier.IsActive {
		return nil, shared.NewDomainError("SUPPLIER_INACTIVE", "Cannot record supply from an inactive supplier")
	}

	suppliedAt := time.Time{}
	if req.SuppliedAt != nil {
		suppliedAt = *req.SuppliedAt
	}
	supply, err := partner.NewSupplierProductSupply(supplierID, req.ProductID, req.Quantity, req.UnitCost, suppliedAt, userID, req.Note)
	if err != nil {
		return nil, err
	}

	err = s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		product, err := repos.Products().FindByID(ctx, req.ProductID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return shared.NewDomainError("PRODUCT_NOT_FOUND", "Product not found")
			}
			return err
		}
		if err := product.AddStock(req.Quantity); err != nil {
			return err
		}
		if product.SupplierID == nil {
			product.SetSupplier(&supplierID)
		}
		if err := repos.Products().Save(ctx, product); err != nil {
			return err
		}
		if err := repos.Suppliers().CreateSupply(ctx, supply); err != nil {
			return err
		}
		movement := catalog.NewStockMovement(product, req.Quantity, catalog.MovementSupply,
			"SUP-"+supply.ID.String()[:8], fmt.Sprintf("Supplied by %s", supplier.Name), userID)
		return repos.StockMovements().Create(ctx, movement)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.StockMoved(string(catalog.MovementSupply))
	s.logger.Info("Supply recorded",
		zap.String("supplier_id", supplierID.String()),
		zap.String("product_id", req.ProductID.String()),
		zap.Int("quantity", req.Quantity))
	resp := ToSupplyResponse(supply)
	return &resp, nil
}

// ListSupplies lists supply records of a supplier, optionally within [from, to)
func (s *SupplierService) ListSupplies(ctx context.Context, supplierID uuid.UUID, from, to *time.Time) ([]SupplyResponse, error) {
	if _, err := s.find(ctx, supplierID); err != nil {
		return nil, err
	}
	supplies, err := s.supplierRepo.FindSupplies(ctx, &supplierID, from, to)
	if err != nil {
		return nil, err
	}
	out := make([]SupplyResponse, len(supplies))
	for i := range supplies {
		out[i] = ToSupplyResponse(&supplies[i])
	}
	return out, nil
}

// CreateInvoice records an invoice; invoice numbers are unique per supplier
func (s *SupplierService) CreateInvoice(ctx context.Context, supplierID uuid.UUID, req CreateInvoiceRequest) (*InvoiceResponse, error) {
	if _, err := s.find(ctx, supplierID); err != nil {
		return nil, err
	}
	issuedAt := time.Time{}
	if req.IssuedAt != nil {
		issuedAt = *req.IssuedAt
	}
	invoice, err := partner.NewSupplierInvoice(supplierID, req.InvoiceNumber, req.Amount, issuedAt, req.DueDate, req.Note)
	if err != nil {
		return nil, err
	}
	exists, err := s.supplierRepo.ExistsInvoiceNumber(ctx, supplierID, invoice.InvoiceNumber)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS",
			fmt.Sprintf("invoice %q already exists for this supplier", invoice.InvoiceNumber))
	}
	if err := s.supplierRepo.SaveInvoice(ctx, invoice); err != nil {
		return nil, err
	}
	resp := ToInvoiceResponse(invoice)
	return &resp, nil
}

// ListInvoices lists a supplier's invoices
func (s *SupplierService) ListInvoices(ctx context.Context, supplierID uuid.UUID) ([]InvoiceResponse, error) {
	if _, err := s.find(ctx, supplierID); err != nil {
		return nil, err
	}
	invoices, err := s.supplierRepo.FindInvoices(ctx, supplierID)
	if err != nil {
		return nil, err
	}
	out := make([]InvoiceResponse, len(invoices))
	for i := range invoices {
		out[i] = ToInvoiceResponse(&invoices[i])
	}
	return out, nil
}

// RecordPayment pays an invoice. The amount cannot exceed the invoice balance.
func (s *SupplierService) RecordPayment(ctx context.Context, supplierID uuid.UUID, req RecordSupplierPaymentRequest) (*SupplierPaymentResponse, error) {
	paidAt := time.Time{}
	if req.PaidAt != nil {
		paidAt = *req.PaidAt
	}

	var payment *partner.SupplierPayment
	err := s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		invoice, err := repos.Suppliers().FindInvoiceByID(ctx, req.InvoiceID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return shared.NewDomainError("INVOICE_NOT_FOUND", "Invoice not found")
			}
			return err
		}
		if invoice.SupplierID != supplierID {
			return shared.NewDomainError("INVOICE_NOT_FOUND", "Invoice does not belong to this supplier")
		}
		payment, err = partner.NewSupplierPayment(invoice, req.Amount, req.Method, req.Reference, paidAt)
		if err != nil {
			return err
		}
		if err := repos.Suppliers().SaveInvoiceWithLock(ctx, invoice); err != nil {
			return err
		}
		return repos.Suppliers().CreatePayment(ctx, payment)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Supplier payment recorded",
		zap.String("supplier_id", supplierID.String()),
		zap.String("invoice_id", req.InvoiceID.String()),
		zap.String("amount", payment.Amount.StringFixed(2)))
	resp := ToSupplierPaymentResponse(payment)
	return &resp, nil
}

// ListPayments lists payments made to a supplier
func (s *SupplierService) ListPayments(ctx context.Context, supplierID uuid.UUID) ([]SupplierPaymentResponse, error) {
	if _, err := s.find(ctx, supplierID); err != nil {
		return nil, err
	}
	payments, err := s.supplierRepo.FindPayments(ctx, supplierID)
	if err != nil {
		return nil, err
	}
	out := make([]SupplierPaymentResponse, len(payments))
	for i := range payments {
		out[i] = ToSupplierPaymentResponse(&payments[i])
	}
	return out, nil
}

// Balance returns invoiced, paid and outstanding totals
func (s *SupplierService) Balance(ctx context.Context, supplierID uuid.UUID) (*SupplierBalanceResponse, error) {
	if _, err := s.find(ctx, supplierID); err != nil {
		return nil, err
	}
	invoiced, paid, err := s.supplierRepo.Totals(ctx, supplierID)
	if err != nil {
		return nil, err
	}
	return &SupplierBalanceResponse{
		SupplierID:  supplierID,
		Invoiced:    invoiced,
		Paid:        paid,
		Outstanding: invoiced.Sub(paid),
	}, nil
}

func (s *SupplierService) find(ctx context.Context, id uuid.UUID) (*partner.Supplier, error) {
	supplier, err := s.supplierRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("SUPPLIER_NOT_FOUND", "Supplier not found")
		}
		return nil, err
	}
	return supplier, nil
}

func (s *SupplierService) checkName(ctx context.Context, name string, excludeID *uuid.UUID) error {
	exists, err := s.supplierRepo.ExistsByName(ctx, name, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return shared.NewDomainError("ALREADY_EXISTS", fmt.Sprintf("supplier %q already exists", name))
	}
	return nil
}
