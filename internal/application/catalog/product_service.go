package catalog

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
	"github.com/shopdesk/backend/internal/infrastructure/barcode"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PriceFormatter formats money for labels
type PriceFormatter interface {
	FormatMoney(d decimal.Decimal) string
}

// SupplierFinder looks up the supplier a product is linked to
type SupplierFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*partner.Supplier, error)
}

// ProductServiceConfig holds optional product service settings
type ProductServiceConfig struct {
	// BarcodePrefix is the leading digits of generated EAN-13 codes
	BarcodePrefix string
	StoreName     string
}

// ProductService handles product-related business operations
type ProductService struct {
	txScope      appshared.TransactionScope
	productRepo  catalog.ProductRepository
	categoryRepo catalog.CategoryRepository
	supplierRepo SupplierFinder
	movementRepo catalog.StockMovementRepository
	publisher    shared.EventPublisher
	formatter    PriceFormatter
	metrics      appshared.BusinessMetrics
	config       ProductServiceConfig
	logger       *zap.Logger
}

// NewProductService creates a new ProductService. publisher, formatter and
// metrics may be nil.
func NewProductService(
	txScope appshared.TransactionScope,
	productRepo catalog.ProductRepository,
	categoryRepo catalog.CategoryRepository,
	supplierRepo SupplierFinder,
	movementRepo catalog.StockMovementRepository,
	publisher shared.EventPublisher,
	formatter PriceFormatter,
	metrics appshared.BusinessMetrics,
	config ProductServiceConfig,
	logger *zap.Logger,
) *ProductService {
	if config.BarcodePrefix == "" {
		config.BarcodePrefix = "200"
	}
	return &ProductService{
		txScope:      txScope,
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		supplierRepo: supplierRepo,
		movementRepo: movementRepo,
		publisher:    publisher,
		formatter:    formatter,
		metrics:      appshared.MetricsOrNop(metrics),
		config:       config,
		logger:       logger,
	}
}

// Create creates a new product
func (s *ProductService) Create(ctx context.Context, req CreateProductRequest, userID *uuid.UUID) (*ProductResponse, error) {
	if err := s.checkSKU(ctx, req.SKU, nil); err != nil {
		return nil, err
	}
	if err := s.checkCategory(ctx, req.CategoryID); err != nil {
		return nil, err
	}
	if err := s.checkSupplier(ctx, req.SupplierID); err != nil {
		return nil, err
	}

	product, err := catalog.NewProduct(req.SKU, req.Name, req.Unit, req.CostPrice, req.SellingPrice)
	if err != nil {
		return nil, err
	}
	if req.Description != "" {
		if err := product.Update(req.Name, req.Description, product.Unit); err != nil {
			return nil, err
		}
	}
	if err := product.SetReorderLevel(req.ReorderLevel); err != nil {
		return nil, err
	}
	if err := s.applyBarcode(ctx, product, req.Barcode); err != nil {
		return nil, err
	}
	product.SetCategory(req.CategoryID)
	product.SetSupplier(req.SupplierID)

	if req.InitialStock > 0 {
		if err := product.AddStock(req.InitialStock); err != nil {
			return nil, err
		}
	}

	err = s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		if err := repos.Products().Save(ctx, product); err != nil {
			return err
		}
		if req.InitialStock <= 0 {
			return nil
		}
		movement := catalog.NewStockMovement(product, req.InitialStock, catalog.MovementAdjustment, "", "Opening stock", userID)
		return repos.StockMovements().Create(ctx, movement)
	})
	if err != nil {
		return nil, err
	}
	if req.InitialStock > 0 {
		s.metrics.StockMoved(string(catalog.MovementAdjustment))
	}

	s.publishEvents(ctx, product)
	s.logger.Info("Product created", zap.String("product_id", product.ID.String()), zap.String("sku", product.SKU))
	resp := ToProductResponse(product)
	return &resp, nil
}

// GetByID retrieves a product by ID
func (s *ProductService) GetByID(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	product, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToProductResponse(product)
	return &resp, nil
}

// GetBySKU retrieves a product by SKU, falling back to the barcode so that
// scanners can use the same lookup
func (s *ProductService) GetBySKU(ctx context.Context, code string) (*ProductResponse, error) {
	product, err := s.productRepo.FindBySKU(ctx, code)
	if errors.Is(err, shared.ErrNotFound) {
		product, err = s.productRepo.FindByBarcode(ctx, strings.TrimSpace(code))
	}
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("PRODUCT_NOT_FOUND", fmt.Sprintf("product %q not found", code))
		}
		return nil, err
	}
	resp := ToProductResponse(product)
	return &resp, nil
}

// List retrieves products page by page
func (s *ProductService) List(ctx context.Context, f ProductListFilter) (*shared.Paginated[ProductResponse], error) {
	filter := shared.DefaultFilter()
	filter.Search = f.Search
	if f.OrderBy != "" {
		filter.OrderBy = f.OrderBy
	}
	if f.OrderDir != "" {
		filter.OrderDir = f.OrderDir
	}
	if f.Page > 0 {
		filter.Page = f.Page
	}
	if f.PageSize > 0 {
		filter.PageSize = f.PageSize
	}
	if f.CategoryID != nil {
		filter = filter.With("category_id", *f.CategoryID)
	}
	if f.SupplierID != nil {
		filter = filter.With("supplier_id", *f.SupplierID)
	}
	if f.IsActive != nil {
		filter = filter.With("is_active", *f.IsActive)
	}
	if f.LowStock {
		filter = filter.With("low_stock", true)
	}

	products, total, err := s.productRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	result := shared.NewPaginated(ToProductResponses(products), total, filter.Page, filter.PageSize)
	return &result, nil
}

// Update updates a product. Stock is changed only through AdjustStock.
func (s *ProductService) Update(ctx context.Context, id uuid.UUID, req UpdateProductRequest) (*ProductResponse, error) {
	product, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if catalog.NormalizeSKU(req.SKU) != product.SKU {
		if err := s.checkSKU(ctx, req.SKU, &id); err != nil {
			return nil, err
		}
		if err := product.ChangeSKU(req.SKU); err != nil {
			return nil, err
		}
	}
	if err := s.checkCategory(ctx, req.CategoryID); err != nil {
		return nil, err
	}
	if err := s.checkSupplier(ctx, req.SupplierID); err != nil {
		return nil, err
	}

	if err := product.Update(req.Name, req.Description, req.Unit); err != nil {
		return nil, err
	}
	if err := product.SetPrices(req.CostPrice, req.SellingPrice); err != nil {
		return nil, err
	}
	if err := product.SetReorderLevel(req.ReorderLevel); err != nil {
		return nil, err
	}
	if req.Barcode != product.Barcode {
		if err := s.applyBarcode(ctx, product, req.Barcode); err != nil {
			return nil, err
		}
	}
	product.SetCategory(req.CategoryID)
	product.SetSupplier(req.SupplierID)

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	resp := ToProductResponse(product)
	return &resp, nil
}

// Delete deletes a product
func (s *ProductService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.find(ctx, id); err != nil {
		return err
	}
	if err := s.productRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Product deleted", zap.String("product_id", id.String()))
	return nil
}

// ToggleActive flips the product's active flag and refreshes updated_at
func (s *ProductService) ToggleActive(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	product, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	product.ToggleActive()
	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, product)
	s.logger.Info("Product status toggled",
		zap.String("product_id", id.String()),
		zap.Bool("is_active", product.IsActive))
	resp := ToProductResponse(product)
	return &resp, nil
}

// AdjustStock applies a signed stock change and records the movement
func (s *ProductService) AdjustStock(ctx context.Context, id uuid.UUID, req AdjustStockRequest, userID *uuid.UUID) (*ProductResponse, error) {
	reason := catalog.MovementAdjustment
	if req.Reason == string(catalog.MovementSupply) {
		reason = catalog.MovementSupply
	}

	var product *catalog.Product
	err := s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		var err error
		product, err = repos.Products().FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return shared.NewDomainError("PRODUCT_NOT_FOUND", "Product not found")
			}
			return err
		}
		if err := product.AdjustStock(req.Delta); err != nil {
			return err
		}
		if err := repos.Products().Save(ctx, product); err != nil {
			return err
		}
		movement := catalog.NewStockMovement(product, req.Delta, reason, req.Reference, req.Note, userID)
		return repos.StockMovements().Create(ctx, movement)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.StockMoved(string(reason))
	s.logger.Info("Stock adjusted",
		zap.String("product_id", id.String()),
		zap.Int("delta", req.Delta),
		zap.Int("balance", product.StockQuantity))
	resp := ToProductResponse(product)
	return &resp, nil
}

// StockHistory returns the most recent stock movements of a product
func (s *ProductService) StockHistory(ctx context.Context, id uuid.UUID, limit int) ([]StockMovementResponse, error) {
	if _, err := s.find(ctx, id); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	movements, err := s.movementRepo.FindByProduct(ctx, id, limit)
	if err != nil {
		return nil, err
	}
	out := make([]StockMovementResponse, len(movements))
	for i := range movements {
		out[i] = ToStockMovementResponse(&movements[i])
	}
	return out, nil
}

// LowStock lists active products at or below their reorder level
func (s *ProductService) LowStock(ctx context.Context) ([]ProductResponse, error) {
	products, err := s.productRepo.FindLowStock(ctx)
	if err != nil {
		return nil, err
	}
	return ToProductResponses(products), nil
}

// Barcode renders the product's barcode, or its SKU when it has none, as PNG
func (s *ProductService) Barcode(ctx context.Context, id uuid.UUID, width, height int) (*ImageResult, error) {
	product, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if width <= 0 {
		width = barcode.DefaultWidth
	}
	if height <= 0 {
		height = barcode.DefaultHeight
	}
	data, err := barcode.Encode(codeOf(product), width, height)
	if err != nil {
		if errors.Is(err, barcode.ErrInvalidSize) {
			return nil, shared.NewDomainError("INVALID_INPUT", err.Error())
		}
		return nil, fmt.Errorf("render barcode for %s: %w", product.SKU, err)
	}
	return &ImageResult{
		Data:        data,
		ContentType: barcode.ContentTypePNG,
		Filename:    "barcode-" + product.SKU + ".png",
	}, nil
}

// Label renders a shelf label with name, price and barcode as PNG
func (s *ProductService) Label(ctx context.Context, id uuid.UUID) (*ImageResult, error) {
	product, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	price := product.SellingPrice.StringFixed(2)
	if s.formatter != nil {
		price = s.formatter.FormatMoney(product.SellingPrice)
	}
	data, err := barcode.RenderLabel(barcode.Label{
		Name:    product.Name,
		Price:   price,
		Code:    codeOf(product),
		Caption: s.config.StoreName,
	})
	if err != nil {
		return nil, fmt.Errorf("render label for %s: %w", product.SKU, err)
	}
	return &ImageResult{
		Data:        data,
		ContentType: barcode.ContentTypePNG,
		Filename:    "label-" + product.SKU + ".png",
	}, nil
}

// GenerateBarcode assigns a new EAN-13 barcode to a product that has none
func (s *ProductService) GenerateBarcode(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	product, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if product.Barcode != "" {
		return nil, shared.NewDomainError("BARCODE_EXISTS", fmt.Sprintf("product %s already has barcode %s", product.SKU, product.Barcode))
	}

	for attempt := 0; attempt < 5; attempt++ {
		code, err := barcode.GenerateEAN13(s.config.BarcodePrefix)
		if err != nil {
			return nil, fmt.Errorf("generate barcode: %w", err)
		}
		if _, err := s.productRepo.FindByBarcode(ctx, code); errors.Is(err, shared.ErrNotFound) {
			if err := product.SetBarcode(code); err != nil {
				return nil, err
			}
			if err := s.productRepo.Save(ctx, product); err != nil {
				return nil, err
			}
			resp := ToProductResponse(product)
			return &resp, nil
		} else if err != nil {
			return nil, err
		}
	}
	return nil, shared.NewDomainError("BARCODE_GENERATION_FAILED", "could not generate a unique barcode")
}

func (s *ProductService) find(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("PRODUCT_NOT_FOUND", "Product not found")
		}
		return nil, err
	}
	return product, nil
}

func (s *ProductService) checkSKU(ctx context.Context, sku string, excludeID *uuid.UUID) error {
	exists, err := s.productRepo.ExistsBySKU(ctx, sku, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return shared.NewDomainError("ALREADY_EXISTS",
			fmt.Sprintf("product with SKU %q already exists", catalog.NormalizeSKU(sku)))
	}
	return nil
}

func (s *ProductService) checkCategory(ctx context.Context, categoryID *uuid.UUID) error {
	if categoryID == nil {
		return nil
	}
	if _, err := s.categoryRepo.FindByID(ctx, *categoryID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("INVALID_CATEGORY", "Category not found")
		}
		return err
	}
	return nil
}

func (s *ProductService) checkSupplier(ctx context.Context, supplierID *uuid.UUID) error {
	if supplierID == nil {
		return nil
	}
	if _, err := s.supplierRepo.FindByID(ctx, *supplierID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("INVALID_SUPPLIER", "Supplier not found")
		}
		return err
	}
	return nil
}

func (s *ProductService) applyBarcode(ctx context.Context, product *catalog.Product, code string) error {
	code = strings.TrimSpace(code)
	if code != "" {
		other, err := s.productRepo.FindByBarcode(ctx, code)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return err
		}
		if other != nil && other.ID != product.ID {
			return shared.NewDomainError("ALREADY_EXISTS", fmt.Sprintf("barcode %q is used by product %s", code, other.SKU))
		}
	}
	return product.SetBarcode(code)
}

func (s *ProductService) publishEvents(ctx context.Context, product *catalog.Product) {
	events := product.GetDomainEvents()
	product.ClearDomainEvents()
	if s.publisher == nil || len(events) == 0 {
		return
	}
	if err := s.publisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("Failed to publish product events", zap.Error(err))
	}
}

func codeOf(p *catalog.Product) string {
	if p.Barcode != "" {
		return p.Barcode
	}
	return p.SKU
}
