package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	reportapp "github.com/shopdesk/backend/internal/application/report"
)

// ArchiveKeyHeader carries the object key of an archived export
const ArchiveKeyHeader = "X-Archive-Key"

// ReportHandler handles reports, the dashboard and file exports
type ReportHandler struct {
	BaseHandler
	reportService *reportapp.ReportService
	exportService *reportapp.ExportService
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reportService *reportapp.ReportService, exportService *reportapp.ExportService) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
		exportService: exportService,
	}
}

// reportFunc computes one report for a date range
type reportFunc[T any] func(ctx context.Context, req reportapp.RangeRequest) (*T, error)

func serveReport[T any](h *ReportHandler, c *gin.Context, compute reportFunc[T]) {
	var req reportapp.RangeRequest
	if !h.BindQuery(c, &req) {
		return
	}

	result, err := compute(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// SalesReport godoc
// @Summary      Sales report
// @Description  Totals, revenue per day, payment method breakdown and top products
// @Tags         reports
// @Produce      json
// @Param        preset query string false "today, yesterday, this_week, last_7_days, this_month, last_month, this_year"
// @Param        from query string false "From date (YYYY-MM-DD)"
// @Param        to query string false "To date (YYYY-MM-DD)"
// @Success      200 {object} dto.Response{data=report.SalesReport}
// @Security     BearerAuth
// @Router       /admin/reports/sales [get]
func (h *ReportHandler) SalesReport(c *gin.Context) {
	serveReport(h, c, h.reportService.SalesReport)
}

// ProductReport godoc
// @Summary      Product report
// @Tags         reports
// @Produce      json
// @Success      200 {object} dto.Response{data=report.ProductReport}
// @Security     BearerAuth
// @Router       /admin/reports/products [get]
func (h *ReportHandler) ProductReport(c *gin.Context) {
	serveReport(h, c, h.reportService.ProductReport)
}

// SupplierReport godoc
// @Summary      Supplier report
// @Tags         reports
// @Produce      json
// @Success      200 {object} dto.Response{data=report.SupplierReport}
// @Security     BearerAuth
// @Router       /admin/reports/suppliers [get]
func (h *ReportHandler) SupplierReport(c *gin.Context) {
	serveReport(h, c, h.reportService.SupplierReport)
}

// EmployeeReport godoc
// @Summary      Employee pay report
// @Tags         reports
// @Produce      json
// @Success      200 {object} dto.Response{data=report.EmployeeReport}
// @Security     BearerAuth
// @Router       /admin/reports/employees [get]
func (h *ReportHandler) EmployeeReport(c *gin.Context) {
	serveReport(h, c, h.reportService.EmployeeReport)
}

// Dashboard godoc
// @Summary      Dashboard summary
// @Tags         reports
// @Produce      json
// @Success      200 {object} dto.Response{data=report.Dashboard}
// @Security     BearerAuth
// @Router       /employee/dashboard [get]
func (h *ReportHandler) Dashboard(c *gin.Context) {
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}

	dashboard, err := h.reportService.Dashboard(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dashboard)
}

// Export godoc
// @Summary      Export a report
// @Tags         reports
// @Produce      application/pdf
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        type query string true "sales, products, suppliers or employees"
// @Param        format query string false "pdf (default) or xlsx"
// @Param        preset query string false "Date preset"
// @Param        from query string false "From date (YYYY-MM-DD)"
// @Param        to query string false "To date (YYYY-MM-DD)"
// @Success      200 {file} binary
// @Security     BearerAuth
// @Router       /admin/reports/export [get]
func (h *ReportHandler) Export(c *gin.Context) {
	var req reportapp.ExportRequest
	if !h.BindQuery(c, &req) {
		return
	}

	export, err := h.exportService.Export(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.sendExport(c, export)
}

// ExportProducts godoc
// @Summary      Product list as Excel
// @Tags         reports
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success      200 {file} binary
// @Security     BearerAuth
// @Router       /admin/exports/products [get]
func (h *ReportHandler) ExportProducts(c *gin.Context) {
	export, err := h.exportService.ExportProducts(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.sendExport(c, export)
}

// ExportSuppliers godoc
// @Summary      Supplier list as Excel
// @Tags         reports
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success      200 {file} binary
// @Security     BearerAuth
// @Router       /admin/exports/suppliers [get]
func (h *ReportHandler) ExportSuppliers(c *gin.Context) {
	export, err := h.exportService.ExportSuppliers(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.sendExport(c, export)
}

func (h *ReportHandler) sendExport(c *gin.Context, export *reportapp.Export) {
	if export.ArchiveKey != "" {
		c.Header(ArchiveKeyHeader, export.ArchiveKey)
	}
	h.File(c, export.Data, export.ContentType, export.Filename, true)
}
