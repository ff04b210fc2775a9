package shared

import (
	"context"

	"github.com/shopdesk/backend/internal/domain/catalog"
	"github.com/shopdesk/backend/internal/domain/hr"
	"github.com/shopdesk/backend/internal/domain/identity"
	"github.com/shopdesk/backend/internal/domain/partner"
	"github.com/shopdesk/backend/internal/domain/trade"
)

// TransactionScope runs a unit of work atomically.
// If fn returns an error the transaction is rolled back, otherwise it is committed.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories exposes repositories bound to one transaction.
// All repositories returned share the same underlying database transaction.
type TransactionalRepositories interface {
	Products() catalog.ProductRepository
	StockMovements() catalog.StockMovementRepository
	Sales() trade.SaleRepository
	PurchaseRequests() trade.PurchaseRequestRepository
	Mpesa() trade.MpesaRepository
	Suppliers() partner.SupplierRepository
	Carts() partner.CartRepository
	Users() identity.UserRepository
	Employees() hr.EmployeeRepository
}

// StaticRepositories is a plain set of repositories
type StaticRepositories struct {
	ProductRepo         catalog.ProductRepository
	StockMovementRepo   catalog.StockMovementRepository
	SaleRepo            trade.SaleRepository
	PurchaseRequestRepo trade.PurchaseRequestRepository
	MpesaRepo           trade.MpesaRepository
	SupplierRepo        partner.SupplierRepository
	CartRepo            partner.CartRepository
	UserRepo            identity.UserRepository
	EmployeeRepo        hr.EmployeeRepository
}

func (r *StaticRepositories) Products() catalog.ProductRepository {
	return r.ProductRepo
}

func (r *StaticRepositories) StockMovements() catalog.StockMovementRepository {
	return r.StockMovementRepo
}

func (r *StaticRepositories) Sales() trade.SaleRepository {
	return r.SaleRepo
}

func (r *StaticRepositories) PurchaseRequests() trade.PurchaseRequestRepository {
	return r.PurchaseRequestRepo
}

func (r *StaticRepositories) Mpesa() trade.MpesaRepository {
	return r.MpesaRepo
}

func (r *StaticRepositories) Suppliers() partner.SupplierRepository {
	return r.SupplierRepo
}

func (r *StaticRepositories) Carts() partner.CartRepository {
	return r.CartRepo
}

func (r *StaticRepositories) Users() identity.UserRepository {
	return r.UserRepo
}

func (r *StaticRepositories) Employees() hr.EmployeeRepository {
	return r.EmployeeRepo
}

// NoOpTransactionScope runs fn against fixed repositories without a transaction.
// Used by unit tests with mocked repositories.
type NoOpTransactionScope struct {
	Repos *StaticRepositories
}

// Execute runs fn directly
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s.Repos)
}

var (
	_ TransactionScope          = (*NoOpTransactionScope)(nil)
	_ TransactionalRepositories = (*StaticRepositories)(nil)
)
