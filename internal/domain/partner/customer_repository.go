package partner

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopdesk/backend/internal/domain/shared"
)

// CustomerRepository defines the interface for customer persistence
type CustomerRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Customer, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Customer, int64, error)
	Save(ctx context.Context, customer *Customer) error
	Delete(ctx context.Context, id uuid.UUID) error
	ExistsByEmail(ctx context.Context, email string, excludeID *uuid.UUID) (bool, error)
}

// CartRepository persists customer carts
type CartRepository interface {
	// FindByCustomer returns the cart with items, or shared.ErrNotFound
	FindByCustomer(ctx context.Context, customerID uuid.UUID) (*CustomerCart, error)
	Create(ctx context.Context, cart *CustomerCart) error
	SaveItem(ctx context.Context, item *CartItem) error
	DeleteItem(ctx context.Context, itemID uuid.UUID) error
	ClearItems(ctx context.Context, cartID uuid.UUID) error
}

// WishlistRepository persists wishlist entries
type WishlistRepository interface {
	FindByCustomer(ctx context.Context, customerID uuid.UUID) ([]WishlistItem, error)
	Exists(ctx context.Context, customerID, productID uuid.UUID) (bool, error)
	Create(ctx context.Context, item *WishlistItem) error
	Delete(ctx context.Context, customerID, productID uuid.UUID) error
}
