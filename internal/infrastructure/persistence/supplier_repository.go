package persistence

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopdesk/backend/internal/domain/partner"
	"github.com/shopdesk/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormSupplierRepository implements SupplierRepository using GORM
type GormSupplierRepository struct {
	db *gorm.DB
}

// NewGormSupplierRepository creates a new GormSupplierRepository
func NewGormSupplierRepository(db *gorm.DB) *GormSupplierRepository {
	return &GormSupplierRepository{db: db}
}

// FindByID finds a supplier by its ID
func (r *GormSupplierRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Supplier, error) {
	var supplier partner.Supplier
	if err := r.db.WithContext(ctx).First(&supplier, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err)
	}
	return &supplier, nil
}

// FindAll finds all suppliers matching the filter
func (r *GormSupplierRepository) FindAll(ctx context.Context, filter shared.Filter) ([]partner.Supplier, int64, error) {
	query := r.db.WithContext(ctx).Model(&partner.Supplier{})
	if filter.Search != "" {
		p := likePattern(filter.Search)
		query = query.Where("LOWER(name) LIKE ? OR LOWER(contact_person) LIKE ? OR LOWER(email) LIKE ?", p, p, p)
	}
	if active, ok := filterValue[bool](filter, "is_active"); ok {
		query = query.Where("is_active = ?", active)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var suppliers []partner.Supplier
	if err := paginate(query, filter, SupplierSortFields, "name").Find(&suppliers).Error; err != nil {
		return nil, 0, err
	}
	return suppliers, total, nil
}

// Save creates or updates a supplier
func (r *GormSupplierRepository) Save(ctx context.Context, supplier *partner.Supplier) error {
	return r.db.WithContext(ctx).Save(supplier).Error
}

// Delete deletes a supplier
func (r *GormSupplierRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&partner.Supplier{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// ExistsByName checks for a supplier with the same name ignoring case
func (r *GormSupplierRepository) ExistsByName(ctx context.Context, name string, excludeID *uuid.UUID) (bool, error) {
	query := r.db.WithContext(ctx).Model(&partner.Supplier{}).
		Where("LOWER(name) = ?", strings.ToLower(strings.TrimSpace(name)))
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CreateSupply records a delivery from a supplier
func (r *GormSupplierRepository) CreateSupply(ctx context.Context, supply *partner.SupplierProductSupply) error {
	return r.db.WithContext(ctx).Create(supply).Error
}

// FindSupplies lists deliveries, optionally for one supplier and a date window
func (r *GormSupplierRepository) FindSupplies(ctx context.Context, supplierID *uuid.UUID, from, to *time.Time) ([]partner.SupplierProductSupply, error) {
	query := r.db.WithContext(ctx).Model(&partner.SupplierProductSupply{})
	if supplierID != nil {
		query = query.Where("supplier_id = ?", *supplierID)
	}
	query = dateBetween(query, "supplied_at", shared.Filter{From: from, To: to})
	var supplies []partner.SupplierProductSupply
	err := query.Order("supplied_at DESC").Find(&supplies).Error
	return supplies, err
}

// SaveInvoice creates or updates an invoice
func (r *GormSupplierRepository) SaveInvoice(ctx context.Context, invoice *partner.SupplierInvoice) error {
	return r.db.WithContext(ctx).Save(invoice).Error
}

// SaveInvoiceWithLock saves payment state with optimistic locking (checks version)
func (r *GormSupplierRepository) SaveInvoiceWithLock(ctx context.Context, invoice *partner.SupplierInvoice) error {
	result := r.db.WithContext(ctx).
		Model(invoice).
		Where("id = ? AND version = ?", invoice.ID, invoice.Version-1).
		Updates(map[string]any{
			"paid_amount": invoice.PaidAmount,
			"status":      invoice.Status,
			"version":     invoice.Version,
			"updated_at":  invoice.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("CONCURRENT_MODIFICATION", "The invoice has been modified by another user")
	}
	return nil
}

// FindInvoiceByID finds an invoice by its ID
func (r *GormSupplierRepository) FindInvoiceByID(ctx context.Context, id uuid.UUID) (*partner.SupplierInvoice, error) {
	var invoice partner.SupplierInvoice
	if err := r.db.WithContext(ctx).First(&invoice, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err)
	}
	return &invoice, nil
}

// FindInvoices lists a supplier's invoices, newest first
func (r *GormSupplierRepository) FindInvoices(ctx context.Context, supplierID uuid.UUID) ([]partner.SupplierInvoice, error) {
	var invoices []partner.SupplierInvoice
	err := r.db.WithContext(ctx).
		Where("supplier_id = ?", supplierID).
		Order("issued_at DESC").
		Find(&invoices).Error
	return invoices, err
}

// ExistsInvoiceNumber checks invoice number uniqueness per supplier
func (r *GormSupplierRepository) ExistsInvoiceNumber(ctx context.Context, supplierID uuid.UUID, number string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&partner.SupplierInvoice{}).
		Where("supplier_id = ? AND LOWER(invoice_number) = ?", supplierID, strings.ToLower(strings.TrimSpace(number))).
		Count(&count).Error
	return count > 0, err
}

// CreatePayment records a supplier payment
func (r *GormSupplierRepository) CreatePayment(ctx context.Context, payment *partner.SupplierPayment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

// FindPayments lists a supplier's payments, newest first
func (r *GormSupplierRepository) FindPayments(ctx context.Context, supplierID uuid.UUID) ([]partner.SupplierPayment, error) {
	var payments []partner.SupplierPayment
	err := r.db.WithContext(ctx).
		Where("supplier_id = ?", supplierID).
		Order("paid_at DESC").
		Find(&payments).Error
	return payments, err
}

// Totals returns invoiced and paid sums for a supplier
func (r *GormSupplierRepository) Totals(ctx context.Context, supplierID uuid.UUID) (decimal.Decimal, decimal.Decimal, error) {
	var row struct {
		Invoiced decimal.NullDecimal
		Paid     decimal.NullDecimal
	}
	err := r.db.WithContext(ctx).Model(&partner.SupplierInvoice{}).
		Select("SUM(amount) AS invoiced, SUM(paid_amount) AS paid").
		Where("supplier_id = ?", supplierID).
		Scan(&row).Error
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	invoiced, paid := decimal.Zero, decimal.Zero
	if row.Invoiced.Valid {
		invoiced = row.Invoiced.Decimal
	}
	if row.Paid.Valid {
		paid = row.Paid.Decimal
	}
	return invoiced, paid, nil
}

var _ partner.SupplierRepository = (*GormSupplierRepository)(nil)
