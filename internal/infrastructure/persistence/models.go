package persistence

import (
	"github.com/shopdesk/backend/internal/domain/catalog"
	"github.com/shopdesk/backend/internal/domain/hr"
	"github.com/shopdesk/backend/internal/domain/identity"
	"github.com/shopdesk/backend/internal/domain/messaging"
	"github.com/shopdesk/backend/internal/domain/partner"
	"github.com/shopdesk/backend/internal/domain/trade"
)

// AllModels lists every persisted type, in dependency order.
// Production schemas come from SQL migrations; this list backs AutoMigrate in tests and dev.
func AllModels() []any {
	return []any{
		&identity.User{},
		&identity.Department{},
		&identity.UserDepartment{},
		&hr.EmployeeProfile{},
		&hr.EmployeeSalary{},
		&hr.EmployeeFine{},
		&hr.EmployeePayment{},
		&catalog.Category{},
		&catalog.Product{},
		&catalog.StockMovement{},
		&partner.Supplier{},
		&partner.SupplierProductSupply{},
		&partner.SupplierInvoice{},
		&partner.SupplierPayment{},
		&partner.Customer{},
		&partner.CustomerCart{},
		&partner.CartItem{},
		&partner.WishlistItem{},
		&trade.Sale{},
		&trade.SaleItem{},
		&trade.PurchaseRequest{},
		&trade.PurchaseRequestItem{},
		&trade.MpesaTransaction{},
		&messaging.Message{},
	}
}
