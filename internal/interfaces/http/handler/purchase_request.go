package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/shopdesk/backend/internal/application/trade"
)

// PurchaseRequestHandler handles customer purchase requests and their
// status workflow
type PurchaseRequestHandler struct {
	BaseHandler
	requestService *trade.PurchaseRequestService
}

// NewPurchaseRequestHandler creates a new PurchaseRequestHandler
func NewPurchaseRequestHandler(requestService *trade.PurchaseRequestService) *PurchaseRequestHandler {
	return &PurchaseRequestHandler{
		requestService: requestService,
	}
}

// Create godoc
// @Summary      Create a purchase request
// @Description  Uses the given items, or the customer's cart when from_cart is set
// @Tags         purchase-requests
// @Accept       json
// @Produce      json
// @Param        request body trade.CreatePurchaseRequestRequest true "Purchase request"
// @Success      201 {object} dto.Response{data=trade.PurchaseRequestResponse}
// @Security     BearerAuth
// @Router       /employee/purchase-requests [post]
func (h *PurchaseRequestHandler) Create(c *gin.Context) {
	var req trade.CreatePurchaseRequestRequest
	if !h.BindJSON(c, &req) {
		return
	}

	pr, err := h.requestService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, pr)
}

// GetByID godoc
// @Summary      Get a purchase request
// @Tags         purchase-requests
// @Produce      json
// @Param        id path string true "Purchase request ID"
// @Success      200 {object} dto.Response{data=trade.PurchaseRequestResponse}
// @Security     BearerAuth
// @Router       /employee/purchase-requests/{id} [get]
func (h *PurchaseRequestHandler) GetByID(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}

	pr, err := h.requestService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, pr)
}

// List godoc
// @Summary      List purchase requests
// @Tags         purchase-requests
// @Produce      json
// @Param        status query string false "Status"
// @Param        customer_id query string false "Customer ID"
// @Param        from query string false "From date (YYYY-MM-DD)"
// @Param        to query string false "To date (YYYY-MM-DD)"
// @Success      200 {object} dto.Response{data=[]trade.PurchaseRequestResponse,meta=dto.Meta}
// @Security     BearerAuth
// @Router       /employee/purchase-requests [get]
func (h *PurchaseRequestHandler) List(c *gin.Context) {
	var filter trade.PurchaseRequestListFilter
	if !h.BindQuery(c, &filter) {
		return
	}
	var ok bool
	if filter.CustomerID, ok = h.QueryUUID(c, "customer_id"); !ok {
		return
	}

	result, err := h.requestService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	SuccessPage(&h.BaseHandler, c, result)
}

// UpdateStatus godoc
// @Summary      Move a purchase request to another status
// @Description  Completing a request creates its sale and deducts stock atomically.
// @Description  Cancelling requires a reason.
// @Tags         purchase-requests
// @Accept       json
// @Produce      json
// @Param        id path string true "Purchase request ID"
// @Param        request body trade.UpdateStatusRequest true "Target status"
// @Success      200 {object} dto.Response{data=trade.StatusChangeResult}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /employee/purchase-requests/{id}/status [put]
func (h *PurchaseRequestHandler) UpdateStatus(c *gin.Context) {
	actorID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req trade.UpdateStatusRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.requestService.UpdateStatus(c.Request.Context(), id, actorID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
