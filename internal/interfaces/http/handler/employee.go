package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopdesk/backend/internal/application/hr"
)

// EmployeeHandler handles employee profiles and their pay records
type EmployeeHandler struct {
	BaseHandler
	employeeService *hr.EmployeeService
}

// NewEmployeeHandler creates a new EmployeeHandler
func NewEmployeeHandler(employeeService *hr.EmployeeService) *EmployeeHandler {
	return &EmployeeHandler{employeeService: employeeService}
}

// Create godoc
// @Summary      Create an employee
// @Description  Creates the user account and the employee profile together
// @Tags         employees
// @Accept       json
// @Produce      json
// @Param        request body hr.CreateEmployeeRequest true "Employee"
// @Success      201 {object} dto.Response{data=hr.EmployeeResponse}
// @Security     BearerAuth
// @Router       /admin/employees [post]
func (h *EmployeeHandler) Create(c *gin.Context) {
	var req hr.CreateEmployeeRequest
	if !h.BindJSON(c, &req) {
		return
	}

	emp, err := h.employeeService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, emp)
}

// Get godoc
// @Summary      Get an employee
// @Tags         employees
// @Produce      json
// @Param        id path string true "User ID"
// @Success      200 {object} dto.Response{data=hr.EmployeeResponse}
// @Security     BearerAuth
// @Router       /admin/employees/{id} [get]
func (h *EmployeeHandler) Get(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}

	emp, err := h.employeeService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, emp)
}

// Me returns the caller's own employee profile
func (h *EmployeeHandler) Me(c *gin.Context) {
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}

	emp, err := h.employeeService.Get(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, emp)
}

// List godoc
// @Summary      List employees
// @Tags         employees
// @Produce      json
// @Success      200 {object} dto.Response{data=[]hr.EmployeeResponse,meta=dto.Meta}
// @Security     BearerAuth
// @Router       /admin/employees [get]
func (h *EmployeeHandler) List(c *gin.Context) {
	var filter hr.EmployeeListFilter
	if !h.BindQuery(c, &filter) {
		return
	}

	result, err := h.employeeService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	SuccessPage(&h.BaseHandler, c, result)
}

// Update godoc
// @Summary      Update an employee profile
// @Tags         employees
// @Accept       json
// @Produce      json
// @Param        id path string true "User ID"
// @Param        request body hr.UpdateEmployeeRequest true "Changes"
// @Success      200 {object} dto.Response{data=hr.EmployeeResponse}
// @Security     BearerAuth
// @Router       /admin/employees/{id} [put]
func (h *EmployeeHandler) Update(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req hr.UpdateEmployeeRequest
	if !h.BindJSON(c, &req) {
		return
	}

	emp, err := h.employeeService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, emp)
}

// Deactivate godoc
// @Summary      Deactivate an employee
// @Tags         employees
// @Produce      json
// @Param        id path string true "User ID"
// @Success      200 {object} dto.Response{data=hr.EmployeeResponse}
// @Security     BearerAuth
// @Router       /admin/employees/{id}/deactivate [post]
func (h *EmployeeHandler) Deactivate(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}

	emp, err := h.employeeService.Deactivate(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, emp)
}

// AddSalary godoc
// @Summary      Add a salary entry
// @Description  One entry per YYYY-MM period
// @Tags         employees
// @Accept       json
// @Produce      json
// @Param        id path string true "User ID"
// @Param        request body hr.AddSalaryRequest true "Salary"
// @Success      201 {object} dto.Response{data=hr.SalaryResponse}
// @Security     BearerAuth
// @Router       /admin/employees/{id}/salaries [post]
func (h *EmployeeHandler) AddSalary(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req hr.AddSalaryRequest
	if !h.BindJSON(c, &req) {
		return
	}

	salary, err := h.employeeService.AddSalary(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, salary)
}

// ListSalaries godoc
// @Summary      List salary entries
// @Tags         employees
// @Produce      json
// @Param        id path string true "User ID"
// @Success      200 {object} dto.Response{data=[]hr.SalaryResponse}
// @Security     BearerAuth
// @Router       /admin/employees/{id}/salaries [get]
func (h *EmployeeHandler) ListSalaries(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}

	salaries, err := h.employeeService.ListSalaries(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, salaries)
}

// MarkSalaryPaid godoc
// @Summary      Mark a salary entry as paid
// @Tags         employees
// @Produce      json
// @Param        salary_id path string true "Salary ID"
// @Success      200 {object} dto.Response{data=hr.SalaryResponse}
// @Security     BearerAuth
// @Router       /admin/salaries/{salary_id}/pay [post]
func (h *EmployeeHandler) MarkSalaryPaid(c *gin.Context) {
	id, ok := h.ParamUUID(c, "salary_id")
	if !ok {
		return
	}

	salary, err := h.employeeService.MarkSalaryPaid(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, salary)
}

// IssueFine godoc
// @Summary      Issue a fine
// @Tags         employees
// @Accept       json
// @Produce      json
// @Param        id path string true "User ID"
// @Param        request body hr.IssueFineRequest true "Fine"
// @Success      201 {object} dto.Response{data=hr.FineResponse}
// @Security     BearerAuth
// @Router       /admin/employees/{id}/fines [post]
func (h *EmployeeHandler) IssueFine(c *gin.Context) {
	issuedBy, ok := h.CurrentUserID(c)
	if !ok {
		return
	}
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req hr.IssueFineRequest
	if !h.BindJSON(c, &req) {
		return
	}

	fine, err := h.employeeService.IssueFine(c.Request.Context(), id, issuedBy, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, fine)
}

// WaiveFine godoc
// @Summary      Waive a fine
// @Tags         employees
// @Produce      json
// @Param        fine_id path string true "Fine ID"
// @Success      200 {object} dto.Response{data=hr.FineResponse}
// @Security     BearerAuth
// @Router       /admin/fines/{fine_id}/waive [post]
func (h *EmployeeHandler) WaiveFine(c *gin.Context) {
	id, ok := h.ParamUUID(c, "fine_id")
	if !ok {
		return
	}

	fine, err := h.employeeService.WaiveFine(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, fine)
}

// ListFines godoc
// @Summary      List fines
// @Tags         employees
// @Produce      json
// @Param        id path string true "User ID"
// @Param        from query string false "From date (YYYY-MM-DD)"
// @Param        to query string false "To date (YYYY-MM-DD)"
// @Success      200 {object} dto.Response{data=[]hr.FineResponse}
// @Security     BearerAuth
// @Router       /admin/employees/{id}/fines [get]
func (h *EmployeeHandler) ListFines(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	var filter hr.DateRangeFilter
	if !h.BindQuery(c, &filter) {
		return
	}

	fines, err := h.employeeService.ListFines(c.Request.Context(), id, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, fines)
}

// RecordPayment godoc
// @Summary      Record a payment to an employee
// @Tags         employees
// @Accept       json
// @Produce      json
// @Param        id path string true "User ID"
// @Param        request body hr.RecordPaymentRequest true "Payment"
// @Success      201 {object} dto.Response{data=hr.PaymentResponse}
// @Security     BearerAuth
// @Router       /admin/employees/{id}/payments [post]
func (h *EmployeeHandler) RecordPayment(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req hr.RecordPaymentRequest
	if !h.BindJSON(c, &req) {
		return
	}

	payment, err := h.employeeService.RecordPayment(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, payment)
}

// ListPayments godoc
// @Summary      List payments to an employee
// @Tags         employees
// @Produce      json
// @Param        id path string true "User ID"
// @Success      200 {object} dto.Response{data=[]hr.PaymentResponse}
// @Security     BearerAuth
// @Router       /admin/employees/{id}/payments [get]
func (h *EmployeeHandler) ListPayments(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	var filter hr.DateRangeFilter
	if !h.BindQuery(c, &filter) {
		return
	}

	payments, err := h.employeeService.ListPayments(c.Request.Context(), id, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, payments)
}

// Summary godoc
// @Summary      Pay summary for a period
// @Description  Net payable is salary minus pending fines minus payments in the period
// @Tags         employees
// @Produce      json
// @Param        id path string true "User ID"
// @Param        period query string false "Pay period YYYY-MM, defaults to the current month"
// @Success      200 {object} dto.Response{data=hr.PaySummaryResponse}
// @Security     BearerAuth
// @Router       /admin/employees/{id}/summary [get]
func (h *EmployeeHandler) Summary(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	h.summary(c, id)
}

// MySummary returns the caller's own pay summary
func (h *EmployeeHandler) MySummary(c *gin.Context) {
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}
	h.summary(c, userID)
}

func (h *EmployeeHandler) summary(c *gin.Context, id uuid.UUID) {
	period := c.DefaultQuery("period", time.Now().Format("2006-01"))

	summary, err := h.employeeService.Summary(c.Request.Context(), id, period)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}
