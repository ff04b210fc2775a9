package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopdesk/backend/internal/application/trade"
	"github.com/shopdesk/backend/internal/domain/identity"
	"github.com/shopdesk/backend/internal/interfaces/http/middleware"
)

// SaleHandler handles point-of-sale checkout and sale records
type SaleHandler struct {
	BaseHandler
	saleService *trade.SaleService
}

// NewSaleHandler creates a new SaleHandler
func NewSaleHandler(saleService *trade.SaleService) *SaleHandler {
	return &SaleHandler{
		saleService: saleService,
	}
}

// Checkout godoc
// @Summary      Point-of-sale checkout
// @Description  Prices the items at their current selling price, deducts stock and records the sale
// @Tags         sales
// @Accept       json
// @Produce      json
// @Param        request body trade.CheckoutRequest true "Checkout"
// @Success      201 {object} dto.Response{data=trade.SaleResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /employee/sales [post]
func (h *SaleHandler) Checkout(c *gin.Context) {
	cashierID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}
	var req trade.CheckoutRequest
	if !h.BindJSON(c, &req) {
		return
	}

	sale, err := h.saleService.Checkout(c.Request.Context(), cashierID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, sale)
}

// GetByID godoc
// @Summary      Get a sale
// @Tags         sales
// @Produce      json
// @Param        id path string true "Sale ID"
// @Success      200 {object} dto.Response{data=trade.SaleResponse}
// @Security     BearerAuth
// @Router       /employee/sales/{id} [get]
func (h *SaleHandler) GetByID(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}

	sale, err := h.saleService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, sale)
}

// GetByReceiptNumber godoc
// @Summary      Find a sale by receipt number
// @Tags         sales
// @Produce      json
// @Param        receipt path string true "Receipt number, e.g. RCPT-20260314-A1B2C3"
// @Success      200 {object} dto.Response{data=trade.SaleResponse}
// @Security     BearerAuth
// @Router       /employee/sales/receipt/{receipt} [get]
func (h *SaleHandler) GetByReceiptNumber(c *gin.Context) {
	sale, err := h.saleService.GetByReceiptNumber(c.Request.Context(), c.Param("receipt"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, sale)
}

// List godoc
// @Summary      List sales
// @Description  Employees only see their own sales
// @Tags         sales
// @Produce      json
// @Param        from query string false "From date (YYYY-MM-DD)"
// @Param        to query string false "To date (YYYY-MM-DD)"
// @Param        cashier_id query string false "Cashier ID"
// @Param        customer_id query string false "Customer ID"
// @Param        payment_method query string false "cash, mpesa or card"
// @Param        status query string false "completed or voided"
// @Success      200 {object} dto.Response{data=[]trade.SaleResponse,meta=dto.Meta}
// @Security     BearerAuth
// @Router       /employee/sales [get]
func (h *SaleHandler) List(c *gin.Context) {
	var filter trade.SaleListFilter
	if !h.BindQuery(c, &filter) {
		return
	}
	var ok bool
	if filter.CashierID, ok = h.QueryUUID(c, "cashier_id"); !ok {
		return
	}
	if filter.CustomerID, ok = h.QueryUUID(c, "customer_id"); !ok {
		return
	}
	if middleware.GetJWTRole(c) != string(identity.RoleAdmin) {
		filter.CashierID = optionalUserID(c)
	}

	result, err := h.saleService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	SuccessPage(&h.BaseHandler, c, result)
}

// Void godoc
// @Summary      Void a sale
// @Description  Restores the stock of every line and marks the sale voided
// @Tags         sales
// @Accept       json
// @Produce      json
// @Param        id path string true "Sale ID"
// @Param        request body trade.VoidSaleRequest true "Reason"
// @Success      200 {object} dto.Response{data=trade.SaleResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/sales/{id}/void [post]
func (h *SaleHandler) Void(c *gin.Context) {
	actorID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req trade.VoidSaleRequest
	if !h.BindJSON(c, &req) {
		return
	}

	sale, err := h.saleService.Void(c.Request.Context(), id, actorID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, sale)
}

// Receipt godoc
// @Summary      Sale receipt as PDF
// @Tags         sales
// @Produce      application/pdf
// @Param        id path string true "Sale ID"
// @Param        download query bool false "Send as attachment"
// @Success      200 {file} binary
// @Security     BearerAuth
// @Router       /employee/sales/{id}/receipt [get]
func (h *SaleHandler) Receipt(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}

	doc, err := h.saleService.Receipt(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.File(c, doc.Data, doc.ContentType, doc.Filename, c.Query("download") == "true")
}

// DailySummaryQuery selects the cashier and day of a summary
type DailySummaryQuery struct {
	Date *time.Time `form:"date" time_format:"2006-01-02"`
}

// DailySummary godoc
// @Summary      Cashier takings for a day
// @Description  Employees get their own summary; admins may pass cashier_id
// @Tags         sales
// @Produce      json
// @Param        date query string false "Day (YYYY-MM-DD), defaults to today"
// @Param        cashier_id query string false "Cashier ID"
// @Success      200 {object} dto.Response{data=trade.DailySummaryResponse}
// @Security     BearerAuth
// @Router       /employee/sales/summary [get]
func (h *SaleHandler) DailySummary(c *gin.Context) {
	cashierID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}
	var query DailySummaryQuery
	if !h.BindQuery(c, &query) {
		return
	}
	if middleware.GetJWTRole(c) == string(identity.RoleAdmin) {
		requested, ok := h.QueryUUID(c, "cashier_id")
		if !ok {
			return
		}
		if requested != nil {
			cashierID = *requested
		}
	}
	date := time.Now()
	if query.Date != nil {
		date = *query.Date
	}

	summary, err := h.saleService.DailySummary(c.Request.Context(), cashierID, date)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}
