package trade

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	appshared "github.com/shopdesk/backend/internal/application/shared"
	"github.com/shopdesk/backend/internal/domain/catalog"
	"github.com/shopdesk/backend/internal/domain/shared"
	"github.com/shopdesk/backend/internal/domain/trade"
)

// mergeItems sums quantities of repeated products, keeping first-seen order
func mergeItems(items []LineItemRequest) []LineItemRequest {
	index := make(map[uuid.UUID]int, len(items))
	out := make([]LineItemRequest, 0, len(items))
	for _, item := range items {
		if i, ok := index[item.ProductID]; ok {
			out[i].Quantity += item.Quantity
			continue
		}
		index[item.ProductID] = len(out)
		out = append(out, item)
	}
	return out
}

// resolveLines prices items at the current selling price. Every product
// must exist and be active; with requireStock the quantity must be on hand.
func resolveLines(
	ctx context.Context,
	products catalog.ProductRepository,
	items []LineItemRequest,
	requireStock bool,
) (map[uuid.UUID]*catalog.Product, []trade.SaleLine, error) {
	items = mergeItems(items)
	byID := make(map[uuid.UUID]*catalog.Product, len(items))
	lines := make([]trade.SaleLine, 0, len(items))
	for _, item := range items {
		if item.Quantity <= 0 {
			return nil, nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
		}
		product, err := findProduct(ctx, products, item.ProductID)
		if err != nil {
			return nil, nil, err
		}
		if !product.IsActive {
			return nil, nil, shared.NewDomainError("PRODUCT_INACTIVE", fmt.Sprintf("Product %s is not available", product.SKU))
		}
		if requireStock && product.StockQuantity < item.Quantity {
			return nil, nil, insufficientStock(product, item.Quantity)
		}
		byID[product.ID] = product
		lines = append(lines, trade.SaleLine{
			ProductID:   product.ID,
			ProductName: product.Name,
			SKU:         product.SKU,
			Quantity:    item.Quantity,
			UnitPrice:   product.SellingPrice,
			CostPrice:   product.CostPrice,
		})
	}
	return byID, lines, nil
}

// deductStock removes sold quantities and records one movement per line
func deductStock(
	ctx context.Context,
	repos appshared.TransactionalRepositories,
	products map[uuid.UUID]*catalog.Product,
	items []trade.SaleItem,
	reason catalog.MovementReason,
	reference string,
	userID *uuid.UUID,
) error {
	for _, item := range items {
		product, ok := products[item.ProductID]
		if !ok {
			return shared.NewDomainError("PRODUCT_NOT_FOUND", "Product not found")
		}
		if product.StockQuantity < item.Quantity {
			return insufficientStock(product, item.Quantity)
		}
		if err := product.DeductStock(item.Quantity); err != nil {
			return err
		}
		if err := repos.Products().Save(ctx, product); err != nil {
			return err
		}
		movement := catalog.NewStockMovement(product, -item.Quantity, reason, reference, "", userID)
		if err := repos.StockMovements().Create(ctx, movement); err != nil {
			return err
		}
	}
	return nil
}

// restoreStock puts voided quantities back. Products deleted since the sale
// are skipped and returned.
func restoreStock(
	ctx context.Context,
	repos appshared.TransactionalRepositories,
	items []trade.SaleItem,
	reference string,
	userID *uuid.UUID,
) ([]uuid.UUID, error) {
	var missing []uuid.UUID
	for _, item := range items {
		product, err := repos.Products().FindByID(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				missing = append(missing, item.ProductID)
				continue
			}
			return nil, err
		}
		if err := product.AddStock(item.Quantity); err != nil {
			return nil, err
		}
		if err := repos.Products().Save(ctx, product); err != nil {
			return nil, err
		}
		movement := catalog.NewStockMovement(product, item.Quantity, catalog.MovementSaleVoid, reference, "", userID)
		if err := repos.StockMovements().Create(ctx, movement); err != nil {
			return nil, err
		}
	}
	return missing, nil
}

func findProduct(ctx context.Context, products catalog.ProductRepository, id uuid.UUID) (*catalog.Product, error) {
	product, err := products.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("PRODUCT_NOT_FOUND", fmt.Sprintf("Product %s not found", id))
		}
		return nil, err
	}
	return product, nil
}

func insufficientStock(p *catalog.Product, requested int) error {
	return shared.NewDomainError("INSUFFICIENT_STOCK",
		fmt.Sprintf("Insufficient stock for %s: requested %d, available %d", p.SKU, requested, p.StockQuantity))
}
