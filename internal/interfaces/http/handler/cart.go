package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	partnerapp "github.com/shopdesk/backend/internal/application/partner"
)

// CartHandler handles a customer's cart and wishlist
type CartHandler struct {
	BaseHandler
	cartService *partnerapp.CartService
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(cartService *partnerapp.CartService) *CartHandler {
	return &CartHandler{cartService: cartService}
}

// WishlistRequest names the product to add to a wishlist
type WishlistRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
}

// CartQuantityRequest sets the quantity of a cart line
type CartQuantityRequest struct {
	Quantity int `json:"quantity" binding:"required,min=1"`
}

// GetCart godoc
// @Summary      Get a customer's cart
// @Tags         cart
// @Produce      json
// @Param        id path string true "Customer ID"
// @Success      200 {object} dto.Response{data=partnerapp.CartResponse}
// @Security     BearerAuth
// @Router       /customers/{id}/cart [get]
func (h *CartHandler) GetCart(c *gin.Context) {
	customerID, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}

	cart, err := h.cartService.GetCart(c.Request.Context(), customerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cart)
}

// AddItem godoc
// @Summary      Add a product to the cart
// @Description  Quantities of a product already in the cart are merged
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        id path string true "Customer ID"
// @Param        request body partnerapp.CartItemRequest true "Item"
// @Success      200 {object} dto.Response{data=partnerapp.CartResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /customers/{id}/cart/items [post]
func (h *CartHandler) AddItem(c *gin.Context) {
	customerID, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req partnerapp.CartItemRequest
	if !h.BindJSON(c, &req) {
		return
	}

	cart, err := h.cartService.AddItem(c.Request.Context(), customerID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cart)
}

// UpdateItem godoc
// @Summary      Set the quantity of a cart item
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        id path string true "Customer ID"
// @Param        product_id path string true "Product ID"
// @Param        request body CartQuantityRequest true "Quantity"
// @Success      200 {object} dto.Response{data=partnerapp.CartResponse}
// @Security     BearerAuth
// @Router       /customers/{id}/cart/items/{product_id} [put]
func (h *CartHandler) UpdateItem(c *gin.Context) {
	customerID, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	productID, ok := h.ParamUUID(c, "product_id")
	if !ok {
		return
	}
	var req CartQuantityRequest
	if !h.BindJSON(c, &req) {
		return
	}

	cart, err := h.cartService.UpdateItem(c.Request.Context(), customerID, partnerapp.CartItemRequest{
		ProductID: productID,
		Quantity:  req.Quantity,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cart)
}

// RemoveItem godoc
// @Summary      Remove a product from the cart
// @Tags         cart
// @Produce      json
// @Param        id path string true "Customer ID"
// @Param        product_id path string true "Product ID"
// @Success      200 {object} dto.Response{data=partnerapp.CartResponse}
// @Security     BearerAuth
// @Router       /customers/{id}/cart/items/{product_id} [delete]
func (h *CartHandler) RemoveItem(c *gin.Context) {
	customerID, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	productID, ok := h.ParamUUID(c, "product_id")
	if !ok {
		return
	}

	cart, err := h.cartService.RemoveItem(c.Request.Context(), customerID, productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cart)
}

// Clear godoc
// @Summary      Empty the cart
// @Tags         cart
// @Param        id path string true "Customer ID"
// @Success      204
// @Security     BearerAuth
// @Router       /customers/{id}/cart [delete]
func (h *CartHandler) Clear(c *gin.Context) {
	customerID, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}

	if err := h.cartService.Clear(c.Request.Context(), customerID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ListWishlist godoc
// @Summary      Get a customer's wishlist
// @Tags         wishlist
// @Produce      json
// @Param        id path string true "Customer ID"
// @Success      200 {object} dto.Response{data=[]partnerapp.WishlistItemResponse}
// @Security     BearerAuth
// @Router       /customers/{id}/wishlist [get]
func (h *CartHandler) ListWishlist(c *gin.Context) {
	customerID, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}

	items, err := h.cartService.ListWishlist(c.Request.Context(), customerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}

// AddToWishlist godoc
// @Summary      Add a product to the wishlist
// @Tags         wishlist
// @Accept       json
// @Param        id path string true "Customer ID"
// @Param        request body WishlistRequest true "Product"
// @Success      204
// @Security     BearerAuth
// @Router       /customers/{id}/wishlist [post]
func (h *CartHandler) AddToWishlist(c *gin.Context) {
	customerID, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req WishlistRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if err := h.cartService.AddToWishlist(c.Request.Context(), customerID, req.ProductID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// RemoveFromWishlist godoc
// @Summary      Remove a product from the wishlist
// @Tags         wishlist
// @Param        id path string true "Customer ID"
// @Param        product_id path string true "Product ID"
// @Success      204
// @Security     BearerAuth
// @Router       /customers/{id}/wishlist/{product_id} [delete]
func (h *CartHandler) RemoveFromWishlist(c *gin.Context) {
	customerID, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	productID, ok := h.ParamUUID(c, "product_id")
	if !ok {
		return
	}

	if err := h.cartService.RemoveFromWishlist(c.Request.Context(), customerID, productID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// MoveToCart godoc
// @Summary      Move a wishlist item into the cart
// @Tags         wishlist
// @Accept       json
// @Produce      json
// @Param        id path string true "Customer ID"
// @Param        product_id path string true "Product ID"
// @Param        request body partnerapp.MoveToCartRequest false "Quantity, default 1"
// @Success      200 {object} dto.Response{data=partnerapp.CartResponse}
// @Security     BearerAuth
// @Router       /customers/{id}/wishlist/{product_id}/move-to-cart [post]
func (h *CartHandler) MoveToCart(c *gin.Context) {
	customerID, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	productID, ok := h.ParamUUID(c, "product_id")
	if !ok {
		return
	}
	var req partnerapp.MoveToCartRequest
	if c.Request.ContentLength != 0 && !h.BindJSON(c, &req) {
		return
	}

	cart, err := h.cartService.MoveToCart(c.Request.Context(), customerID, productID, req.Quantity)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cart)
}
