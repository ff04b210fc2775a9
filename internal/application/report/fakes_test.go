package report

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopdesk/backend/internal/application/printing"
	"github.com/shopdesk/backend/internal/domain/catalog"
	"github.com/shopdesk/backend/internal/domain/hr"
	"github.com/shopdesk/backend/internal/domain/identity"
	"github.com/shopdesk/backend/internal/domain/messaging"
	"github.com/shopdesk/backend/internal/domain/partner"
	"github.com/shopdesk/backend/internal/domain/shared"
	"github.com/shopdesk/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
)

// The fakes embed the repository interface and implement only the
// queries reports run; any other call panics.

type fakeSales struct {
	trade.SaleRepository
	sales []trade.Sale
	err   error
}

func (f *fakeSales) FindCompletedBetween(_ context.Context, from, to time.Time) ([]trade.Sale, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []trade.Sale
	for _, s := range f.sales {
		if s.Status == trade.SaleStatusCompleted && !s.SoldAt.Before(from) && s.SoldAt.Before(to) {
			out = append(out, s)
		}
	}
	return out, nil
}

type fakeRequests struct {
	trade.PurchaseRequestRepository
	pending int64
}

func (f *fakeRequests) CountByStatus(_ context.Context, status trade.PurchaseRequestStatus) (int64, error) {
	if status == trade.PurchaseRequestStatusPending {
		return f.pending, nil
	}
	return 0, nil
}

type fakeProducts struct {
	catalog.ProductRepository
	products []catalog.Product
}

func (f *fakeProducts) FindAll(_ context.Context, _ shared.Filter) ([]catalog.Product, int64, error) {
	return f.products, int64(len(f.products)), nil
}

func (f *fakeProducts) FindLowStock(_ context.Context) ([]catalog.Product, error) {
	var out []catalog.Product
	for _, p := range f.products {
		if p.IsActive && p.IsLowStock() {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeProducts) Count(_ context.Context) (int64, error) {
	return int64(len(f.products)), nil
}

type fakeCategories struct {
	catalog.CategoryRepository
	categories []catalog.Category
}

func (f *fakeCategories) FindAll(_ context.Context, _ shared.Filter) ([]catalog.Category, int64, error) {
	return f.categories, int64(len(f.categories)), nil
}

type fakeSuppliers struct {
	partner.SupplierRepository
	suppliers []partner.Supplier
	supplies  []partner.SupplierProductSupply
	invoiced  map[uuid.UUID]decimal.Decimal
	paid      map[uuid.UUID]decimal.Decimal
}

func (f *fakeSuppliers) FindAll(_ context.Context, _ shared.Filter) ([]partner.Supplier, int64, error) {
	return f.suppliers, int64(len(f.suppliers)), nil
}

func (f *fakeSuppliers) FindSupplies(_ context.Context, _ *uuid.UUID, from, to *time.Time) ([]partner.SupplierProductSupply, error) {
	var out []partner.SupplierProductSupply
	for _, s := range f.supplies {
		if !s.SuppliedAt.Before(*from) && s.SuppliedAt.Before(*to) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSuppliers) Totals(_ context.Context, supplierID uuid.UUID) (decimal.Decimal, decimal.Decimal, error) {
	return f.invoiced[supplierID], f.paid[supplierID], nil
}

type fakeEmployees struct {
	hr.EmployeeRepository
	profiles []hr.EmployeeProfile
	salaries []hr.EmployeeSalary
	fines    []hr.EmployeeFine
	payments []hr.EmployeePayment
}

func (f *fakeEmployees) FindProfiles(_ context.Context, _ shared.Filter) ([]hr.EmployeeProfile, int64, error) {
	return f.profiles, int64(len(f.profiles)), nil
}

func (f *fakeEmployees) FindSalaries(_ context.Context, userID uuid.UUID) ([]hr.EmployeeSalary, error) {
	var out []hr.EmployeeSalary
	for _, s := range f.salaries {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeEmployees) FindFines(_ context.Context, userID uuid.UUID, from, to *time.Time) ([]hr.EmployeeFine, error) {
	var out []hr.EmployeeFine
	for _, fine := range f.fines {
		if fine.UserID == userID && !fine.IssuedAt.Before(*from) && fine.IssuedAt.Before(*to) {
			out = append(out, fine)
		}
	}
	return out, nil
}

func (f *fakeEmployees) FindPayments(_ context.Context, userID uuid.UUID, from, to *time.Time) ([]hr.EmployeePayment, error) {
	var out []hr.EmployeePayment
	for _, p := range f.payments {
		if p.UserID == userID && !p.PaidAt.Before(*from) && p.PaidAt.Before(*to) {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakeUsers struct {
	identity.UserRepository
	users []identity.User
}

func (f *fakeUsers) FindByIDs(_ context.Context, ids []uuid.UUID) ([]identity.User, error) {
	want := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []identity.User
	for _, u := range f.users {
		if want[u.ID] {
			out = append(out, u)
		}
	}
	return out, nil
}

type fakeMessages struct {
	messaging.MessageRepository
	unread map[uuid.UUID]int64
}

func (f *fakeMessages) CountUnread(_ context.Context, userID uuid.UUID) (int64, error) {
	return f.unread[userID], nil
}

type fakePDF struct {
	requests []printing.ReportPDFRequest
}

func (f *fakePDF) ReportPDF(_ context.Context, req printing.ReportPDFRequest) (*printing.Document, error) {
	f.requests = append(f.requests, req)
	return &printing.Document{
		Data:        []byte("%PDF-1.4"),
		ContentType: printing.ContentTypePDF,
		Filename:    string(req.Kind) + "-report-" + req.Range.From.Format("20060102") + ".pdf",
	}, nil
}

type memoryArchive struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (a *memoryArchive) Put(_ context.Context, key, _ string, data []byte) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.objects == nil {
		a.objects = make(map[string][]byte)
	}
	a.objects[key] = data
	return key, nil
}

func (a *memoryArchive) DownloadURL(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://archive.local/" + key, nil
}

func (a *memoryArchive) Enabled() bool { return true }
