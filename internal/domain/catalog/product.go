package catalog

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopdesk/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Product represents a stock-keeping unit in the catalog
// It is the aggregate root for product and stock operations
type Product struct {
	shared.BaseAggregateRoot
	SKU           string          `gorm:"column:sku;type:varchar(50);not null;uniqueIndex"`
	Name          string          `gorm:"type:varchar(200);not null"`
	Description   string          `gorm:"type:text"`
	CategoryID    *uuid.UUID      `gorm:"type:uuid;index"`
	SupplierID    *uuid.UUID      `gorm:"type:uuid;index"`
	Unit          string          `gorm:"type:varchar(20);not null"`
	CostPrice     decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	SellingPrice  decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	StockQuantity int             `gorm:"not null;default:0"`
	ReorderLevel  int             `gorm:"not null;default:0"`
	Barcode       string          `gorm:"type:varchar(50);index"`
	IsActive      bool            `gorm:"not null"`

	// stock change not yet written by the repository
	pendingStock int
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a new active product with zero stock
func NewProduct(sku, name, unit string, costPrice, sellingPrice decimal.Decimal) (*Product, error) {
	sku = NormalizeSKU(sku)
	if err := validateSKU(sku); err != nil {
		return nil, err
	}
	if err := validateProductName(name); err != nil {
		return nil, err
	}
	unit = strings.TrimSpace(unit)
	if unit == "" {
		unit = "pcs"
	}
	if len(unit) > 20 {
		return nil, shared.NewDomainError("INVALID_UNIT", "Unit cannot exceed 20 characters")
	}

	product := &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		SKU:               sku,
		Name:              strings.TrimSpace(name),
		Unit:              unit,
		IsActive:          true,
	}
	if err := product.SetPrices(costPrice, sellingPrice); err != nil {
		return nil, err
	}

	product.AddDomainEvent(NewProductCreatedEvent(product))
	return product, nil
}

// Update updates the product's descriptive fields
func (p *Product) Update(name, description, unit string) error {
	if err := validateProductName(name); err != nil {
		return err
	}
	p.Name = strings.TrimSpace(name)
	p.Description = strings.TrimSpace(description)
	if unit = strings.TrimSpace(unit); unit != "" {
		p.Unit = unit
	}
	p.Touch()
	p.IncrementVersion()
	return nil
}

// ChangeSKU replaces the SKU; uniqueness is checked by the caller
func (p *Product) ChangeSKU(sku string) error {
	sku = NormalizeSKU(sku)
	if err := validateSKU(sku); err != nil {
		return err
	}
	p.SKU = sku
	p.Touch()
	p.IncrementVersion()
	return nil
}

// SetPrices sets cost and selling prices
func (p *Product) SetPrices(costPrice, sellingPrice decimal.Decimal) error {
	if costPrice.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Cost price cannot be negative")
	}
	if sellingPrice.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Selling price cannot be negative")
	}
	p.CostPrice = costPrice.Round(2)
	p.SellingPrice = sellingPrice.Round(2)
	p.Touch()
	return nil
}

// SetReorderLevel sets the low-stock threshold
func (p *Product) SetReorderLevel(level int) error {
	if level < 0 {
		return shared.NewDomainError("INVALID_REORDER_LEVEL", "Reorder level cannot be negative")
	}
	p.ReorderLevel = level
	p.Touch()
	return nil
}

// SetBarcode sets the barcode value
func (p *Product) SetBarcode(barcode string) error {
	barcode = strings.TrimSpace(barcode)
	if len(barcode) > 50 {
		return shared.NewDomainError("INVALID_BARCODE", "Barcode cannot exceed 50 characters")
	}
	p.Barcode = barcode
	p.Touch()
	return nil
}

// SetCategory assigns the product to a category
func (p *Product) SetCategory(categoryID *uuid.UUID) {
	p.CategoryID = categoryID
	p.Touch()
}

// SetSupplier assigns the default supplier
func (p *Product) SetSupplier(supplierID *uuid.UUID) {
	p.SupplierID = supplierID
	p.Touch()
}

// ToggleActive flips the active flag and refreshes the update timestamp
func (p *Product) ToggleActive() {
	p.IsActive = !p.IsActive
	p.Touch()
	p.IncrementVersion()
	p.AddDomainEvent(NewProductStatusChangedEvent(p))
}

// AdjustStock applies a signed quantity change. Stock never goes below zero.
func (p *Product) AdjustStock(delta int) error {
	if delta == 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Stock adjustment cannot be zero")
	}
	if p.StockQuantity+delta < 0 {
		return shared.NewDomainError("INSUFFICIENT_STOCK",
			fmt.Sprintf("insufficient stock for %s: available %d, requested %d", p.SKU, p.StockQuantity, -delta))
	}
	p.StockQuantity += delta
	p.pendingStock += delta
	p.Touch()
	p.IncrementVersion()
	return nil
}

// PendingStockChange returns the stock delta applied since the product was
// loaded or last persisted
func (p *Product) PendingStockChange() int {
	return p.pendingStock
}

// StockPersisted records the stored quantity after the pending change was written
func (p *Product) StockPersisted(quantity int) {
	p.StockQuantity = quantity
	p.pendingStock = 0
}

// DeductStock removes quantity units from stock
func (p *Product) DeductStock(quantity int) error {
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	return p.AdjustStock(-quantity)
}

// AddStock adds quantity units to stock
func (p *Product) AddStock(quantity int) error {
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	return p.AdjustStock(quantity)
}

// CanSell reports whether quantity units can be sold
func (p *Product) CanSell(quantity int) bool {
	return p.IsActive && quantity > 0 && p.StockQuantity >= quantity
}

// IsLowStock reports whether stock is at or below the reorder level
func (p *Product) IsLowStock() bool {
	return p.StockQuantity <= p.ReorderLevel
}

// StockValue returns stock quantity valued at cost
func (p *Product) StockValue() decimal.Decimal {
	return p.CostPrice.Mul(decimal.NewFromInt(int64(p.StockQuantity)))
}

// NormalizeSKU upper-cases and trims a SKU
func NormalizeSKU(sku string) string {
	return strings.ToUpper(strings.TrimSpace(sku))
}

func validateSKU(sku string) error {
	if sku == "" {
		return shared.NewDomainError("INVALID_SKU", "SKU cannot be empty")
	}
	if len(sku) > 50 {
		return shared.NewDomainError("INVALID_SKU", "SKU cannot exceed 50 characters")
	}
	for _, r := range sku {
		if !((r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' || r == '-') {
			return shared.NewDomainError("INVALID_SKU", "SKU can only contain letters, numbers, underscores, and hyphens")
		}
	}
	return nil
}

func validateProductName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot exceed 200 characters")
	}
	return nil
}
