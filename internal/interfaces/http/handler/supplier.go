package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	partnerapp "github.com/shopdesk/backend/internal/application/partner"
)

// SupplierHandler handles suppliers, their deliveries, invoices and payments
type SupplierHandler struct {
	BaseHandler
	supplierService *partnerapp.SupplierService
}

// NewSupplierHandler creates a new SupplierHandler
func NewSupplierHandler(supplierService *partnerapp.SupplierService) *SupplierHandler {
	return &SupplierHandler{
		supplierService: supplierService,
	}
}

// SupplyListQuery bounds the supply listing by date
type SupplyListQuery struct {
	From *time.Time `form:"from" time_format:"2006-01-02"`
	To   *time.Time `form:"to" time_format:"2006-01-02"`
}

// Create godoc
// @Summary      Create a supplier
// @Tags         suppliers
// @Accept       json
// @Produce      json
// @Param        request body partnerapp.CreateSupplierRequest true "Supplier"
// @Success      201 {object} dto.Response{data=partnerapp.SupplierResponse}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/suppliers [post]
func (h *SupplierHandler) Create(c *gin.Context) {
	var req partnerapp.CreateSupplierRequest
	if !h.BindJSON(c, &req) {
		return
	}

	supplier, err := h.supplierService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, supplier)
}

// GetByID godoc
// @Summary      Get a supplier
// @Tags         suppliers
// @Produce      json
// @Param        id path string true "Supplier ID"
// @Success      200 {object} dto.Response{data=partnerapp.SupplierResponse}
// @Security     BearerAuth
// @Router       /admin/suppliers/{id} [get]
func (h *SupplierHandler) GetByID(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}

	supplier, err := h.supplierService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, supplier)
}

// List godoc
// @Summary      List suppliers
// @Tags         suppliers
// @Produce      json
// @Success      200 {object} dto.Response{data=[]partnerapp.SupplierResponse,meta=dto.Meta}
// @Security     BearerAuth
// @Router       /admin/suppliers [get]
func (h *SupplierHandler) List(c *gin.Context) {
	var filter partnerapp.SupplierListFilter
	if !h.BindQuery(c, &filter) {
		return
	}

	result, err := h.supplierService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	SuccessPage(&h.BaseHandler, c, result)
}

// Update godoc
// @Summary      Update a supplier
// @Tags         suppliers
// @Accept       json
// @Produce      json
// @Param        id path string true "Supplier ID"
// @Param        request body partnerapp.UpdateSupplierRequest true "Supplier"
// @Success      200 {object} dto.Response{data=partnerapp.SupplierResponse}
// @Security     BearerAuth
// @Router       /admin/suppliers/{id} [put]
func (h *SupplierHandler) Update(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req partnerapp.UpdateSupplierRequest
	if !h.BindJSON(c, &req) {
		return
	}

	supplier, err := h.supplierService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, supplier)
}

// Delete godoc
// @Summary      Delete a supplier
// @Tags         suppliers
// @Param        id path string true "Supplier ID"
// @Success      204
// @Security     BearerAuth
// @Router       /admin/suppliers/{id} [delete]
func (h *SupplierHandler) Delete(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}

	if err := h.supplierService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ToggleActive godoc
// @Summary      Toggle a supplier's active flag
// @Tags         suppliers
// @Produce      json
// @Param        id path string true "Supplier ID"
// @Success      200 {object} dto.Response{data=partnerapp.SupplierResponse}
// @Security     BearerAuth
// @Router       /admin/suppliers/{id}/toggle [post]
func (h *SupplierHandler) ToggleActive(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}

	supplier, err := h.supplierService.ToggleActive(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, supplier)
}

// RecordSupply godoc
// @Summary      Record a delivery
// @Description  Increases the product's stock in the same transaction
// @Tags         suppliers
// @Accept       json
// @Produce      json
// @Param        id path string true "Supplier ID"
// @Param        request body partnerapp.RecordSupplyRequest true "Delivery"
// @Success      201 {object} dto.Response{data=partnerapp.SupplyResponse}
// @Security     BearerAuth
// @Router       /admin/suppliers/{id}/supplies [post]
func (h *SupplierHandler) RecordSupply(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req partnerapp.RecordSupplyRequest
	if !h.BindJSON(c, &req) {
		return
	}

	supply, err := h.supplierService.RecordSupply(c.Request.Context(), id, req, optionalUserID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, supply)
}

// ListSupplies godoc
// @Summary      List deliveries
// @Tags         suppliers
// @Produce      json
// @Param        id path string true "Supplier ID"
// @Param        from query string false "From date (YYYY-MM-DD)"
// @Param        to query string false "To date (YYYY-MM-DD)"
// @Success      200 {object} dto.Response{data=[]partnerapp.SupplyResponse}
// @Security     BearerAuth
// @Router       /admin/suppliers/{id}/supplies [get]
func (h *SupplierHandler) ListSupplies(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	var query SupplyListQuery
	if !h.BindQuery(c, &query) {
		return
	}

	supplies, err := h.supplierService.ListSupplies(c.Request.Context(), id, query.From, query.To)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, supplies)
}

// CreateInvoice godoc
// @Summary      Record a supplier invoice
// @Tags         suppliers
// @Accept       json
// @Produce      json
// @Param        id path string true "Supplier ID"
// @Param        request body partnerapp.CreateInvoiceRequest true "Invoice"
// @Success      201 {object} dto.Response{data=partnerapp.InvoiceResponse}
// @Security     BearerAuth
// @Router       /admin/suppliers/{id}/invoices [post]
func (h *SupplierHandler) CreateInvoice(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req partnerapp.CreateInvoiceRequest
	if !h.BindJSON(c, &req) {
		return
	}

	invoice, err := h.supplierService.CreateInvoice(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, invoice)
}

// ListInvoices godoc
// @Summary      List supplier invoices
// @Tags         suppliers
// @Produce      json
// @Param        id path string true "Supplier ID"
// @Success      200 {object} dto.Response{data=[]partnerapp.InvoiceResponse}
// @Security     BearerAuth
// @Router       /admin/suppliers/{id}/invoices [get]
func (h *SupplierHandler) ListInvoices(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}

	invoices, err := h.supplierService.ListInvoices(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoices)
}

// RecordPayment godoc
// @Summary      Pay a supplier invoice
// @Description  The amount may not exceed the invoice balance
// @Tags         suppliers
// @Accept       json
// @Produce      json
// @Param        id path string true "Supplier ID"
// @Param        request body partnerapp.RecordSupplierPaymentRequest true "Payment"
// @Success      201 {object} dto.Response{data=partnerapp.SupplierPaymentResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/suppliers/{id}/payments [post]
func (h *SupplierHandler) RecordPayment(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req partnerapp.RecordSupplierPaymentRequest
	if !h.BindJSON(c, &req) {
		return
	}

	payment, err := h.supplierService.RecordPayment(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, payment)
}

// ListPayments godoc
// @Summary      List supplier payments
// @Tags         suppliers
// @Produce      json
// @Param        id path string true "Supplier ID"
// @Success      200 {object} dto.Response{data=[]partnerapp.SupplierPaymentResponse}
// @Security     BearerAuth
// @Router       /admin/suppliers/{id}/payments [get]
func (h *SupplierHandler) ListPayments(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}

	payments, err := h.supplierService.ListPayments(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, payments)
}

// Balance godoc
// @Summary      Supplier account balance
// @Tags         suppliers
// @Produce      json
// @Param        id path string true "Supplier ID"
// @Success      200 {object} dto.Response{data=partnerapp.SupplierBalanceResponse}
// @Security     BearerAuth
// @Router       /admin/suppliers/{id}/balance [get]
func (h *SupplierHandler) Balance(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}

	balance, err := h.supplierService.Balance(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, balance)
}
