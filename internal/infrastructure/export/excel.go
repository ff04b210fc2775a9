// Package export writes reports and catalog lists as Excel workbooks.
package export

import (
	"fmt"
	"time"

	"github.com/shopdesk/backend/internal/domain/catalog"
	"github.com/shopdesk/backend/internal/domain/partner"
	"github.com/shopdesk/backend/internal/domain/report"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// ContentTypeXLSX is the MIME type of the generated workbooks
const ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const defaultSheet = "Sheet1"

// ExcelExporter builds .xlsx documents
type ExcelExporter struct {
	loc *time.Location
}

// NewExcelExporter creates an exporter that writes dates in loc
func NewExcelExporter(loc *time.Location) *ExcelExporter {
	if loc == nil {
		loc = time.UTC
	}
	return &ExcelExporter{loc: loc}
}

// sheet is one worksheet: a bold header row followed by data rows
type sheet struct {
	name    string
	headers []string
	rows    [][]any
}

func (e *ExcelExporter) write(sheets ...sheet) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E7E6E6"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName(defaultSheet, s.name); err != nil {
				return nil, fmt.Errorf("rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(s.name); err != nil {
			return nil, fmt.Errorf("create sheet %s: %w", s.name, err)
		}

		header := make([]any, len(s.headers))
		for j, h := range s.headers {
			header[j] = h
		}
		if err := f.SetSheetRow(s.name, "A1", &header); err != nil {
			return nil, fmt.Errorf("write header: %w", err)
		}
		if len(s.headers) > 0 {
			last, _ := excelize.CoordinatesToCellName(len(s.headers), 1)
			if err := f.SetCellStyle(s.name, "A1", last, headerStyle); err != nil {
				return nil, fmt.Errorf("style header: %w", err)
			}
			lastCol, _ := excelize.ColumnNumberToName(len(s.headers))
			if err := f.SetColWidth(s.name, "A", lastCol, 18); err != nil {
				return nil, fmt.Errorf("set column width: %w", err)
			}
		}

		for r, row := range s.rows {
			cell, _ := excelize.CoordinatesToCellName(1, r+2)
			values := make([]any, len(row))
			for j, v := range row {
				values[j] = e.cellValue(v)
			}
			if err := f.SetSheetRow(s.name, cell, &values); err != nil {
				return nil, fmt.Errorf("write row %d: %w", r+2, err)
			}
		}
	}
	f.SetActiveSheet(0)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func (e *ExcelExporter) cellValue(v any) any {
	switch x := v.(type) {
	case decimal.Decimal:
		return x.Round(2).InexactFloat64()
	case time.Time:
		if x.IsZero() {
			return ""
		}
		return x.In(e.loc).Format("2006-01-02 15:04")
	case *time.Time:
		if x == nil {
			return ""
		}
		return x.In(e.loc).Format("2006-01-02 15:04")
	case bool:
		if x {
			return "Yes"
		}
		return "No"
	}
	return v
}

func (e *ExcelExporter) day(t time.Time) string {
	return t.In(e.loc).Format("2006-01-02")
}

// SalesReport writes the summary, daily, payment-method and top-product sheets
func (e *ExcelExporter) SalesReport(r *report.SalesReport) ([]byte, error) {
	s := r.Summary
	summary := sheet{
		name:    "Summary",
		headers: []string{"Metric", "Value"},
		rows: [][]any{
			{"From", e.day(r.Range.From)},
			{"To", e.day(r.Range.To.Add(-time.Nanosecond))},
			{"Sales", s.SaleCount},
			{"Items sold", s.ItemsSold},
			{"Revenue", s.Revenue},
			{"Discount", s.Discount},
			{"Tax", s.Tax},
			{"Cost", s.Cost},
			{"Gross profit", s.GrossProfit},
			{"Average ticket", s.AverageTicket},
		},
	}

	daily := sheet{name: "Daily", headers: []string{"Date", "Sales", "Revenue"}}
	for _, d := range r.Daily {
		daily.rows = append(daily.rows, []any{e.day(d.Date), d.SaleCount, d.Revenue})
	}

	methods := sheet{name: "Payment methods", headers: []string{"Method", "Sales", "Revenue"}}
	for _, m := range r.ByMethod {
		methods.rows = append(methods.rows, []any{string(m.Method), m.SaleCount, m.Revenue})
	}

	top := sheet{name: "Top products", headers: []string{"Rank", "SKU", "Product", "Quantity", "Revenue", "Profit"}}
	for _, p := range r.TopProducts {
		top.rows = append(top.rows, []any{p.Rank, p.SKU, p.ProductName, p.Quantity, p.Revenue, p.Profit})
	}

	sales := sheet{name: "Sales", headers: []string{"Receipt", "Date", "Method", "Status", "Subtotal", "Discount", "Tax", "Total"}}
	for _, sale := range r.Sales {
		sales.rows = append(sales.rows, []any{
			sale.ReceiptNumber, sale.SoldAt, string(sale.PaymentMethod), string(sale.Status),
			sale.Subtotal, sale.Discount, sale.Tax, sale.Total,
		})
	}

	return e.write(summary, daily, methods, top, sales)
}

// ProductReport writes stock levels and top sellers
func (e *ExcelExporter) ProductReport(r *report.ProductReport) ([]byte, error) {
	stock := sheet{
		name:    "Stock",
		headers: []string{"SKU", "Name", "Category", "Stock", "Reorder level", "Cost price", "Selling price", "Stock value", "Low stock", "Active"},
	}
	for _, p := range r.Products {
		stock.rows = append(stock.rows, []any{
			p.SKU, p.Name, p.CategoryName, p.StockQuantity, p.ReorderLevel,
			p.CostPrice, p.SellingPrice, p.StockValue, p.LowStock, p.IsActive,
		})
	}
	stock.rows = append(stock.rows, []any{"TOTAL", "", "", "", "", "", "", r.TotalValue})

	top := sheet{name: "Top sellers", headers: []string{"Rank", "SKU", "Product", "Quantity", "Revenue"}}
	for _, p := range r.TopSellers {
		top.rows = append(top.rows, []any{p.Rank, p.SKU, p.ProductName, p.Quantity, p.Revenue})
	}
	return e.write(stock, top)
}

// SupplierReport writes one row per supplier and a totals row
func (e *ExcelExporter) SupplierReport(r *report.SupplierReport) ([]byte, error) {
	s := sheet{
		name:    "Suppliers",
		headers: []string{"Supplier", "Products supplied", "Quantity", "Supply cost", "Invoiced", "Paid", "Outstanding"},
	}
	for _, row := range r.Suppliers {
		s.rows = append(s.rows, []any{
			row.Name, row.ProductsSupplied, row.QuantitySupplied, row.SupplyCost, row.Invoiced, row.Paid, row.Outstanding,
		})
	}
	s.rows = append(s.rows, []any{"TOTAL", "", "", r.TotalCost, "", "", r.Outstanding})
	return e.write(s)
}

// EmployeeReport writes one row per employee
func (e *ExcelExporter) EmployeeReport(r *report.EmployeeReport) ([]byte, error) {
	s := sheet{
		name:    "Employees",
		headers: []string{"Employee No.", "Name", "Sales", "Sales revenue", "Salary paid", "Fines", "Payments"},
	}
	for _, row := range r.Employees {
		s.rows = append(s.rows, []any{
			row.EmployeeNumber, row.Name, row.SalesCount, row.SalesRevenue, row.SalaryPaid, row.Fines, row.Payments,
		})
	}
	return e.write(s)
}

// Products writes the product list
func (e *ExcelExporter) Products(products []catalog.Product) ([]byte, error) {
	s := sheet{
		name:    "Products",
		headers: []string{"SKU", "Name", "Barcode", "Unit", "Cost price", "Selling price", "Stock", "Reorder level", "Active", "Updated"},
	}
	for _, p := range products {
		s.rows = append(s.rows, []any{
			p.SKU, p.Name, p.Barcode, p.Unit, p.CostPrice, p.SellingPrice,
			p.StockQuantity, p.ReorderLevel, p.IsActive, p.UpdatedAt,
		})
	}
	return e.write(s)
}

// Suppliers writes the supplier list
func (e *ExcelExporter) Suppliers(suppliers []partner.Supplier) ([]byte, error) {
	s := sheet{
		name:    "Suppliers",
		headers: []string{"Name", "Contact person", "Email", "Phone", "Address", "Active"},
	}
	for _, sp := range suppliers {
		s.rows = append(s.rows, []any{sp.Name, sp.ContactPerson, sp.Email, sp.Phone, sp.Address, sp.IsActive})
	}
	return e.write(s)
}
