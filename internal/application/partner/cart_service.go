package partner

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopdesk/backend/internal/domain/catalog"
	"github.com/shopdesk/backend/internal/domain/partner"
	"github.com/shopdesk/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// CartService manages customer carts and wishlists
type CartService struct {
	customerRepo partner.CustomerRepository
	cartRepo     partner.CartRepository
	wishlistRepo partner.WishlistRepository
	productRepo  catalog.ProductRepository
	logger       *zap.Logger
}

// NewCartService creates a new CartService
func NewCartService(
	customerRepo partner.CustomerRepository,
	cartRepo partner.CartRepository,
	wishlistRepo partner.WishlistRepository,
	productRepo catalog.ProductRepository,
	logger *zap.Logger,
) *CartService {
	return &CartService{
		customerRepo: customerRepo,
		cartRepo:     cartRepo,
		wishlistRepo: wishlistRepo,
		productRepo:  productRepo,
		logger:       logger,
	}
}

// GetCart returns the customer's cart. A customer without a cart gets an empty one.
func (s *CartService) GetCart(ctx context.Context, customerID uuid.UUID) (*CartResponse, error) {
	if err := s.checkCustomer(ctx, customerID); err != nil {
		return nil, err
	}
	cart, err := s.cartRepo.FindByCustomer(ctx, customerID)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
		cart = partner.NewCustomerCart(customerID)
	}
	return s.toCartResponse(ctx, cart)
}

// AddItem adds a product to the cart, merging with an existing line.
// The product must be active and the merged quantity must be in stock.
func (s *CartService) AddItem(ctx context.Context, customerID uuid.UUID, req CartItemRequest) (*CartResponse, error) {
	cart, err := s.loadOrCreateCart(ctx, customerID)
	if err != nil {
		return nil, err
	}
	product, err := s.sellableProduct(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	item, err := cart.AddItem(product.ID, req.Quantity, product.SellingPrice, product.StockQuantity)
	if err != nil {
		return nil, err
	}
	if err := s.cartRepo.SaveItem(ctx, item); err != nil {
		return nil, err
	}
	return s.toCartResponse(ctx, cart)
}

// UpdateItem sets the quantity of a cart line
func (s *CartService) UpdateItem(ctx context.Context, customerID uuid.UUID, req CartItemRequest) (*CartResponse, error) {
	cart, err := s.findCart(ctx, customerID)
	if err != nil {
		return nil, err
	}
	product, err := s.sellableProduct(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	item, err := cart.UpdateItem(product.ID, req.Quantity, product.StockQuantity)
	if err != nil {
		return nil, err
	}
	item.UnitPrice = product.SellingPrice
	if err := s.cartRepo.SaveItem(ctx, item); err != nil {
		return nil, err
	}
	return s.toCartResponse(ctx, cart)
}

// RemoveItem removes a product from the cart
func (s *CartService) RemoveItem(ctx context.Context, customerID, productID uuid.UUID) (*CartResponse, error) {
	cart, err := s.findCart(ctx, customerID)
	if err != nil {
		return nil, err
	}
	removed, err := cart.RemoveItem(productID)
	if err != nil {
		return nil, err
	}
	if err := s.cartRepo.DeleteItem(ctx, removed.ID); err != nil {
		return nil, err
	}
	return s.toCartResponse(ctx, cart)
}

// Clear empties the cart
func (s *CartService) Clear(ctx context.Context, customerID uuid.UUID) error {
	cart, err := s.findCart(ctx, customerID)
	if err != nil {
		return err
	}
	if err := s.cartRepo.ClearItems(ctx, cart.ID); err != nil {
		return err
	}
	cart.Clear()
	return nil
}

// ListWishlist returns the customer's wishlist with product details
func (s *CartService) ListWishlist(ctx context.Context, customerID uuid.UUID) ([]WishlistItemResponse, error) {
	if err := s.checkCustomer(ctx, customerID); err != nil {
		return nil, err
	}
	items, err := s.wishlistRepo.FindByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, len(items))
	for i := range items {
		ids[i] = items[i].ProductID
	}
	products, err := s.productsByID(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]WishlistItemResponse, 0, len(items))
	for _, item := range items {
		resp := WishlistItemResponse{ID: item.ID, ProductID: item.ProductID, AddedAt: item.AddedAt}
		if p, ok := products[item.ProductID]; ok {
			resp.ProductName = p.Name
			resp.SKU = p.SKU
			resp.SellingPrice = p.SellingPrice
			resp.InStock = p.IsActive && p.StockQuantity > 0
		}
		out = append(out, resp)
	}
	return out, nil
}

// AddToWishlist adds a product to the wishlist once
func (s *CartService) AddToWishlist(ctx context.Context, customerID, productID uuid.UUID) error {
	if err := s.checkCustomer(ctx, customerID); err != nil {
		return err
	}
	if _, err := s.findProduct(ctx, productID); err != nil {
		return err
	}
	exists, err := s.wishlistRepo.Exists(ctx, customerID, productID)
	if err != nil {
		return err
	}
	if exists {
		return shared.NewDomainError("ALREADY_EXISTS", "Product is already in the wishlist")
	}
	return s.wishlistRepo.Create(ctx, partner.NewWishlistItem(customerID, productID))
}

// RemoveFromWishlist removes a product from the wishlist
func (s *CartService) RemoveFromWishlist(ctx context.Context, customerID, productID uuid.UUID) error {
	if err := s.wishlistRepo.Delete(ctx, customerID, productID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("NOT_FOUND", "Product is not in the wishlist")
		}
		return err
	}
	return nil
}

// MoveToCart adds a wishlist product to the cart and removes it from the wishlist
func (s *CartService) MoveToCart(ctx context.Context, customerID, productID uuid.UUID, quantity int) (*CartResponse, error) {
	exists, err := s.wishlistRepo.Exists(ctx, customerID, productID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, shared.NewDomainError("NOT_FOUND", "Product is not in the wishlist")
	}
	if quantity <= 0 {
		quantity = 1
	}
	cart, err := s.AddItem(ctx, customerID, CartItemRequest{ProductID: productID, Quantity: quantity})
	if err != nil {
		return nil, err
	}
	if err := s.wishlistRepo.Delete(ctx, customerID, productID); err != nil {
		s.logger.Warn("Failed to remove moved product from wishlist",
			zap.String("customer_id", customerID.String()),
			zap.String("product_id", productID.String()),
			zap.Error(err))
	}
	return cart, nil
}

func (s *CartService) checkCustomer(ctx context.Context, customerID uuid.UUID) error {
	if _, err := s.customerRepo.FindByID(ctx, customerID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("CUSTOMER_NOT_FOUND", "Customer not found")
		}
		return err
	}
	return nil
}

func (s *CartService) findCart(ctx context.Context, customerID uuid.UUID) (*partner.CustomerCart, error) {
	cart, err := s.cartRepo.FindByCustomer(ctx, customerID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("CART_NOT_FOUND", "Cart is empty")
		}
		return nil, err
	}
	return cart, nil
}

func (s *CartService) loadOrCreateCart(ctx context.Context, customerID uuid.UUID) (*partner.CustomerCart, error) {
	cart, err := s.cartRepo.FindByCustomer(ctx, customerID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if err := s.checkCustomer(ctx, customerID); err != nil {
		return nil, err
	}
	cart = partner.NewCustomerCart(customerID)
	if err := s.cartRepo.Create(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

func (s *CartService) findProduct(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("PRODUCT_NOT_FOUND", "Product not found")
		}
		return nil, err
	}
	return product, nil
}

func (s *CartService) sellableProduct(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	product, err := s.findProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if !product.IsActive {
		return nil, shared.NewDomainError("PRODUCT_INACTIVE", "Product "+product.SKU+" is not available")
	}
	return product, nil
}

func (s *CartService) productsByID(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]catalog.Product, error) {
	out := make(map[uuid.UUID]catalog.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	products, err := s.productRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, p := range products {
		out[p.ID] = p
	}
	return out, nil
}

func (s *CartService) toCartResponse(ctx context.Context, cart *partner.CustomerCart) (*CartResponse, error) {
	ids := make([]uuid.UUID, len(cart.Items))
	for i := range cart.Items {
		ids[i] = cart.Items[i].ProductID
	}
	products, err := s.productsByID(ctx, ids)
	if err != nil {
		return nil, err
	}

	items := make([]CartItemResponse, 0, len(cart.Items))
	for _, item := range cart.Items {
		resp := CartItemResponse{
			ID:        item.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			LineTotal: item.LineTotal(),
		}
		if p, ok := products[item.ProductID]; ok {
			resp.ProductName = p.Name
			resp.SKU = p.SKU
			resp.InStock = p.IsActive && p.StockQuantity >= item.Quantity
		}
		items = append(items, resp)
	}
	return &CartResponse{
		ID:         cart.ID,
		CustomerID: cart.CustomerID,
		Items:      items,
		ItemCount:  cart.ItemCount(),
		Total:      cart.Total(),
		UpdatedAt:  cart.UpdatedAt,
	}, nil
}
