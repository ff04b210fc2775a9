package persistence

import (
	"errors"
	"strings"

	"github.com/shopdesk/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	if strings.ToUpper(strings.TrimSpace(orderDir)) == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed != "" && allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

var (
	UserSortFields = map[string]bool{
		"created_at": true, "updated_at": true, "username": true, "email": true,
		"full_name": true, "role": true, "status": true, "last_login_at": true,
	}
	DepartmentSortFields = map[string]bool{
		"created_at": true, "updated_at": true, "name": true, "status": true,
	}
	EmployeeSortFields = map[string]bool{
		"created_at": true, "employee_number": true, "position": true, "hire_date": true, "base_salary": true,
	}
	CategorySortFields = map[string]bool{
		"created_at": true, "updated_at": true, "name": true,
	}
	ProductSortFields = map[string]bool{
		"created_at": true, "updated_at": true, "sku": true, "name": true,
		"selling_price": true, "cost_price": true, "stock_quantity": true,
	}
	SupplierSortFields = map[string]bool{
		"created_at": true, "updated_at": true, "name": true,
	}
	CustomerSortFields = map[string]bool{
		"created_at": true, "updated_at": true, "name": true, "email": true,
	}
	SaleSortFields = map[string]bool{
		"created_at": true, "sold_at": true, "total": true, "receipt_number": true,
	}
	PurchaseRequestSortFields = map[string]bool{
		"created_at": true, "updated_at": true, "status": true, "total": true, "request_number": true,
	}
	MpesaSortFields = map[string]bool{
		"created_at": true, "transaction_date": true, "amount": true,
	}
	MessageSortFields = map[string]bool{
		"created_at": true,
	}
)

// paginate applies ordering, offset and limit from the filter
func paginate(query *gorm.DB, filter shared.Filter, allowed map[string]bool, defaultField string) *gorm.DB {
	field := ValidateSortField(filter.OrderBy, allowed, defaultField)
	query = query.Order(field + " " + ValidateSortOrder(filter.OrderDir))
	if filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	return query
}

// dateBetween restricts column to the filter's [From, To) window
func dateBetween(query *gorm.DB, column string, filter shared.Filter) *gorm.DB {
	if filter.From != nil {
		query = query.Where(column+" >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where(column+" < ?", *filter.To)
	}
	return query
}

// likePattern builds a case-insensitive LIKE pattern for a search term
func likePattern(search string) string {
	return "%" + strings.ToLower(strings.TrimSpace(search)) + "%"
}

// filterValue reads a typed value from filter.Filters
func filterValue[T any](filter shared.Filter, key string) (T, bool) {
	var zero T
	if filter.Filters == nil {
		return zero, false
	}
	raw, ok := filter.Filters[key]
	if !ok {
		return zero, false
	}
	v, ok := raw.(T)
	return v, ok
}

// notFoundOr maps gorm.ErrRecordNotFound to shared.ErrNotFound
func notFoundOr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.ErrNotFound
	}
	return err
}
