package partner

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopdesk/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// SupplierRepository defines the interface for supplier persistence
type SupplierRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Supplier, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Supplier, int64, error)
	Save(ctx context.Context, supplier *Supplier) error
	Delete(ctx context.Context, id uuid.UUID) error
	ExistsByName(ctx context.Context, name string, excludeID *uuid.UUID) (bool, error)

	CreateSupply(ctx context.Context, supply *SupplierProductSupply) error
	FindSupplies(ctx context.Context, supplierID *uuid.UUID, from, to *time.Time) ([]SupplierProductSupply, error)

	SaveInvoice(ctx context.Context, invoice *SupplierInvoice) error
	// SaveInvoiceWithLock updates an invoice whose version was incremented
	// once since it was loaded
	SaveInvoiceWithLock(ctx context.Context, invoice *SupplierInvoice) error
	FindInvoiceByID(ctx context.Context, id uuid.UUID) (*SupplierInvoice, error)
	FindInvoices(ctx context.Context, supplierID uuid.UUID) ([]SupplierInvoice, error)
	ExistsInvoiceNumber(ctx context.Context, supplierID uuid.UUID, number string) (bool, error)

	CreatePayment(ctx context.Context, payment *SupplierPayment) error
	FindPayments(ctx context.Context, supplierID uuid.UUID) ([]SupplierPayment, error)

	// Totals returns invoiced and paid sums for a supplier
	Totals(ctx context.Context, supplierID uuid.UUID) (invoiced, paid decimal.Decimal, err error)
}
