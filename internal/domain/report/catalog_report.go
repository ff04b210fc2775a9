package report

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductStockRow is one line of the product/inventory report
type ProductStockRow struct {
	ProductID     uuid.UUID       `json:"product_id"`
	SKU           string          `json:"sku"`
	Name          string          `json:"name"`
	CategoryName  string          `json:"category_name"`
	StockQuantity int             `json:"stock_quantity"`
	ReorderLevel  int             `json:"reorder_level"`
	CostPrice     decimal.Decimal `json:"cost_price"`
	SellingPrice  decimal.Decimal `json:"selling_price"`
	StockValue    decimal.Decimal `json:"stock_value"`
	LowStock      bool            `json:"low_stock"`
	IsActive      bool            `json:"is_active"`
}

// ProductReport is the product/inventory report
type ProductReport struct {
	Range         DateRange             `json:"range"`
	Products      []ProductStockRow     `json:"products"`
	TotalProducts int                   `json:"total_products"`
	LowStockCount int                   `json:"low_stock_count"`
	TotalValue    decimal.Decimal       `json:"total_value"`
	TopSellers    []ProductSalesRanking `json:"top_sellers"`
}

// SupplierRow is one supplier's position in the supplier report
type SupplierRow struct {
	SupplierID       uuid.UUID       `json:"supplier_id"`
	Name             string          `json:"name"`
	ProductsSupplied int             `json:"products_supplied"`
	QuantitySupplied int64           `json:"quantity_supplied"`
	SupplyCost       decimal.Decimal `json:"supply_cost"`
	Invoiced         decimal.Decimal `json:"invoiced"`
	Paid             decimal.Decimal `json:"paid"`
	Outstanding      decimal.Decimal `json:"outstanding"`
}

// SupplierReport is the supplier report
type SupplierReport struct {
	Range       DateRange       `json:"range"`
	Suppliers   []SupplierRow   `json:"suppliers"`
	TotalCost   decimal.Decimal `json:"total_cost"`
	Outstanding decimal.Decimal `json:"outstanding"`
}

// EmployeeRow summarizes HR money flows for one employee
type EmployeeRow struct {
	UserID         uuid.UUID       `json:"user_id"`
	EmployeeNumber string          `json:"employee_number"`
	Name           string          `json:"name"`
	SalaryPaid     decimal.Decimal `json:"salary_paid"`
	Fines          decimal.Decimal `json:"fines"`
	Payments       decimal.Decimal `json:"payments"`
	SalesCount     int64           `json:"sales_count"`
	SalesRevenue   decimal.Decimal `json:"sales_revenue"`
}

// EmployeeReport is the employee report
type EmployeeReport struct {
	Range     DateRange     `json:"range"`
	Employees []EmployeeRow `json:"employees"`
}

// Dashboard is the landing summary for staff
type Dashboard struct {
	TodaySales      SalesSummary `json:"today_sales"`
	MonthSales      SalesSummary `json:"month_sales"`
	ProductCount    int64        `json:"product_count"`
	LowStockCount   int          `json:"low_stock_count"`
	PendingRequests int64        `json:"pending_requests"`
	UnreadMessages  int64        `json:"unread_messages"`
	EmployeeCount   int64        `json:"employee_count"`
}
