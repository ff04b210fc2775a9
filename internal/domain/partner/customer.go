package partner

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopdesk/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Customer is a buyer who can hold a cart, a wishlist and purchase requests
type Customer struct {
	shared.BaseAggregateRoot
	Name    string `gorm:"type:varchar(200);not null"`
	Email   string `gorm:"type:varchar(200);not null;uniqueIndex"`
	Phone   string `gorm:"type:varchar(50)"`
	Address string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Customer) TableName() string {
	return "customers"
}

// NewCustomer creates a customer
func NewCustomer(name, email, phone, address string) (*Customer, error) {
	c := &Customer{BaseAggregateRoot: shared.NewBaseAggregateRoot()}
	if err := c.Update(name, email, phone, address); err != nil {
		return nil, err
	}
	c.Version = 1
	return c, nil
}

// Update replaces the customer's contact details
func (c *Customer) Update(name, email, phone, address string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Customer name cannot be empty")
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if !emailRegex.MatchString(email) {
		return shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
	}
	c.Name = name
	c.Email = email
	c.Phone = strings.TrimSpace(phone)
	c.Address = strings.TrimSpace(address)
	c.Touch()
	c.IncrementVersion()
	return nil
}

// CustomerCart holds the items a customer intends to buy (one per customer)
type CustomerCart struct {
	shared.BaseEntity
	CustomerID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex"`
	Items      []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (CustomerCart) TableName() string {
	return "customer_carts"
}

// CartItem is a product line in a cart
type CartItem struct {
	shared.BaseEntity
	CartID    uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_cart_item_product,priority:1"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_cart_item_product,priority:2"`
	Quantity  int             `gorm:"not null"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(18,2);not null"`
}

// TableName returns the table name for GORM
func (CartItem) TableName() string {
	return "cart_items"
}

// LineTotal returns quantity × unit price
func (i CartItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// NewCustomerCart creates an empty cart
func NewCustomerCart(customerID uuid.UUID) *CustomerCart {
	return &CustomerCart{
		BaseEntity: shared.NewBaseEntity(),
		CustomerID: customerID,
		Items:      make([]CartItem, 0),
	}
}

// AddItem adds quantity of a product, merging with an existing line.
// available is the product's current stock.
func (c *CustomerCart) AddItem(productID uuid.UUID, quantity int, unitPrice decimal.Decimal, available int) (*CartItem, error) {
	if quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	for idx := range c.Items {
		if c.Items[idx].ProductID == productID {
			newQty := c.Items[idx].Quantity + quantity
			if newQty > available {
				return nil, shared.NewDomainError("INSUFFICIENT_STOCK", "Requested quantity exceeds available stock")
			}
			c.Items[idx].Quantity = newQty
			c.Items[idx].UnitPrice = unitPrice
			c.Items[idx].Touch()
			c.Touch()
			return &c.Items[idx], nil
		}
	}
	if quantity > available {
		return nil, shared.NewDomainError("INSUFFICIENT_STOCK", "Requested quantity exceeds available stock")
	}
	item := CartItem{
		BaseEntity: shared.NewBaseEntity(),
		CartID:     c.ID,
		ProductID:  productID,
		Quantity:   quantity,
		UnitPrice:  unitPrice,
	}
	c.Items = append(c.Items, item)
	c.Touch()
	return &c.Items[len(c.Items)-1], nil
}

// UpdateItem sets the quantity of an existing line
func (c *CustomerCart) UpdateItem(productID uuid.UUID, quantity, available int) (*CartItem, error) {
	if quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if quantity > available {
		return nil, shared.NewDomainError("INSUFFICIENT_STOCK", "Requested quantity exceeds available stock")
	}
	item := c.FindItem(productID)
	if item == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Product is not in the cart")
	}
	item.Quantity = quantity
	item.Touch()
	c.Touch()
	return item, nil
}

// RemoveItem removes a product line and returns it
func (c *CustomerCart) RemoveItem(productID uuid.UUID) (*CartItem, error) {
	for idx := range c.Items {
		if c.Items[idx].ProductID == productID {
			removed := c.Items[idx]
			c.Items = append(c.Items[:idx], c.Items[idx+1:]...)
			c.Touch()
			return &removed, nil
		}
	}
	return nil, shared.NewDomainError("NOT_FOUND", "Product is not in the cart")
}

// FindItem returns the line for productID, or nil
func (c *CustomerCart) FindItem(productID uuid.UUID) *CartItem {
	for idx := range c.Items {
		if c.Items[idx].ProductID == productID {
			return &c.Items[idx]
		}
	}
	return nil
}

// Clear empties the cart
func (c *CustomerCart) Clear() {
	c.Items = c.Items[:0]
	c.Touch()
}

// Total returns the sum of line totals
func (c *CustomerCart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.LineTotal())
	}
	return total
}

// ItemCount returns the total quantity in the cart
func (c *CustomerCart) ItemCount() int {
	n := 0
	for _, item := range c.Items {
		n += item.Quantity
	}
	return n
}

// WishlistItem marks a product a customer is interested in
type WishlistItem struct {
	shared.BaseEntity
	CustomerID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_wishlist_customer_product,priority:1"`
	ProductID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_wishlist_customer_product,priority:2"`
	AddedAt    time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (WishlistItem) TableName() string {
	return "wishlist_items"
}

// NewWishlistItem creates a wishlist entry
func NewWishlistItem(customerID, productID uuid.UUID) *WishlistItem {
	return &WishlistItem{
		BaseEntity: shared.NewBaseEntity(),
		CustomerID: customerID,
		ProductID:  productID,
		AddedAt:    time.Now(),
	}
}
