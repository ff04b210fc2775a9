// Package report computes sales, catalog, supplier and staff reports from
// repository queries and exports them as PDF or Excel documents.
package report

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopdesk/backend/internal/domain/catalog"
	"github.com/shopdesk/backend/internal/domain/hr"
	"github.com/shopdesk/backend/internal/domain/identity"
	"github.com/shopdesk/backend/internal/domain/messaging"
	"github.com/shopdesk/backend/internal/domain/partner"
	"github.com/shopdesk/backend/internal/domain/report"
	"github.com/shopdesk/backend/internal/domain/shared"
	"github.com/shopdesk/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// topProductsLimit bounds product rankings in reports
const topProductsLimit = 10

// Repositories groups the read models reports are computed from
type Repositories struct {
	Sales            trade.SaleRepository
	PurchaseRequests trade.PurchaseRequestRepository
	Products         catalog.ProductRepository
	Categories       catalog.CategoryRepository
	Suppliers        partner.SupplierRepository
	Employees        hr.EmployeeRepository
	Users            identity.UserRepository
	Messages         messaging.MessageRepository
}

// ReportService computes reports in memory. Independent queries of one
// report run concurrently.
type ReportService struct {
	repos  Repositories
	loc    *time.Location
	logger *zap.Logger
	now    func() time.Time
}

// NewReportService creates a new ReportService. Periods are resolved in loc.
func NewReportService(repos Repositories, loc *time.Location, logger *zap.Logger) *ReportService {
	if loc == nil {
		loc = time.Local
	}
	return &ReportService{
		repos:  repos,
		loc:    loc,
		logger: logger,
		now:    time.Now,
	}
}

// Range resolves a request into a half-open date range
func (s *ReportService) Range(req RangeRequest) (report.DateRange, error) {
	from, to := req.From, req.To
	if from != nil {
		t := inLocation(*from, s.loc)
		from = &t
	}
	if to != nil {
		t := inLocation(*to, s.loc)
		to = &t
	}
	return report.ResolveRange(req.Preset, from, to, s.now().In(s.loc))
}

// SalesReport summarizes completed sales in the range
func (s *ReportService) SalesReport(ctx context.Context, req RangeRequest) (*report.SalesReport, error) {
	rng, err := s.Range(req)
	if err != nil {
		return nil, err
	}
	sales, err := s.repos.Sales.FindCompletedBetween(ctx, rng.From, rng.To)
	if err != nil {
		return nil, err
	}
	return &report.SalesReport{
		Range:       rng,
		Summary:     report.SummarizeSales(sales),
		Daily:       report.DailyRevenue(rng, sales),
		ByMethod:    report.RevenueByMethod(sales),
		TopProducts: report.RankProducts(sales, topProductsLimit),
		Sales:       sales,
	}, nil
}

// ProductReport lists every product with stock valuation and the top
// sellers of the range
func (s *ReportService) ProductReport(ctx context.Context, req RangeRequest) (*report.ProductReport, error) {
	rng, err := s.Range(req)
	if err != nil {
		return nil, err
	}

	var (
		products   []catalog.Product
		categories []catalog.Category
		sales      []trade.Sale
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		products, _, err = s.repos.Products.FindAll(gctx, allRows("name"))
		return err
	})
	g.Go(func() error {
		var err error
		categories, _, err = s.repos.Categories.FindAll(gctx, allRows("name"))
		return err
	})
	g.Go(func() error {
		var err error
		sales, err = s.repos.Sales.FindCompletedBetween(gctx, rng.From, rng.To)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	categoryNames := make(map[uuid.UUID]string, len(categories))
	for _, c := range categories {
		categoryNames[c.ID] = c.Name
	}

	result := &report.ProductReport{
		Range:      rng,
		Products:   make([]report.ProductStockRow, 0, len(products)),
		TotalValue: decimal.Zero,
		TopSellers: report.RankProducts(sales, topProductsLimit),
	}
	for i := range products {
		p := &products[i]
		row := report.ProductStockRow{
			ProductID:     p.ID,
			SKU:           p.SKU,
			Name:          p.Name,
			StockQuantity: p.StockQuantity,
			ReorderLevel:  p.ReorderLevel,
			CostPrice:     p.CostPrice,
			SellingPrice:  p.SellingPrice,
			StockValue:    p.StockValue(),
			LowStock:      p.IsLowStock(),
			IsActive:      p.IsActive,
		}
		if p.CategoryID != nil {
			row.CategoryName = categoryNames[*p.CategoryID]
		}
		result.Products = append(result.Products, row)
		result.TotalValue = result.TotalValue.Add(row.StockValue)
		if row.LowStock && row.IsActive {
			result.LowStockCount++
		}
	}
	result.TotalProducts = len(result.Products)
	return result, nil
}

// SupplierReport reports supplies in the range with each supplier's
// invoiced, paid and outstanding totals
func (s *ReportService) SupplierReport(ctx context.Context, req RangeRequest) (*report.SupplierReport, error) {
	rng, err := s.Range(req)
	if err != nil {
		return nil, err
	}

	var (
		suppliers []partner.Supplier
		supplies  []partner.SupplierProductSupply
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		suppliers, _, err = s.repos.Suppliers.FindAll(gctx, allRows("name"))
		return err
	})
	g.Go(func() error {
		var err error
		supplies, err = s.repos.Suppliers.FindSupplies(gctx, nil, &rng.From, &rng.To)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	rows := make([]report.SupplierRow, len(suppliers))
	index := make(map[uuid.UUID]int, len(suppliers))
	for i, sup := range suppliers {
		index[sup.ID] = i
		rows[i] = report.SupplierRow{
			SupplierID:  sup.ID,
			Name:        sup.Name,
			SupplyCost:  decimal.Zero,
			Invoiced:    decimal.Zero,
			Paid:        decimal.Zero,
			Outstanding: decimal.Zero,
		}
	}

	products := make(map[uuid.UUID]map[uuid.UUID]struct{}, len(suppliers))
	for _, supply := range supplies {
		i, ok := index[supply.SupplierID]
		if !ok {
			continue
		}
		rows[i].QuantitySupplied += int64(supply.Quantity)
		rows[i].SupplyCost = rows[i].SupplyCost.Add(supply.TotalCost)
		if products[supply.SupplierID] == nil {
			products[supply.SupplierID] = make(map[uuid.UUID]struct{})
		}
		products[supply.SupplierID][supply.ProductID] = struct{}{}
	}

	g, gctx = errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i := range rows {
		row := &rows[i]
		row.ProductsSupplied = len(products[row.SupplierID])
		g.Go(func() error {
			invoiced, paid, err := s.repos.Suppliers.Totals(gctx, row.SupplierID)
			if err != nil {
				return err
			}
			row.Invoiced = invoiced
			row.Paid = paid
			row.Outstanding = invoiced.Sub(paid)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &report.SupplierReport{Range: rng, Suppliers: rows, TotalCost: decimal.Zero, Outstanding: decimal.Zero}
	for _, row := range rows {
		result.TotalCost = result.TotalCost.Add(row.SupplyCost)
		result.Outstanding = result.Outstanding.Add(row.Outstanding)
	}
	return result, nil
}

// EmployeeReport reports salaries paid, fines issued, payments and sales
// per employee for the range
func (s *ReportService) EmployeeReport(ctx context.Context, req RangeRequest) (*report.EmployeeReport, error) {
	rng, err := s.Range(req)
	if err != nil {
		return nil, err
	}

	var (
		profiles []hr.EmployeeProfile
		sales    []trade.Sale
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		profiles, _, err = s.repos.Employees.FindProfiles(gctx, allRows("employee_number"))
		return err
	})
	g.Go(func() error {
		var err error
		sales, err = s.repos.Sales.FindCompletedBetween(gctx, rng.From, rng.To)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	userIDs := make([]uuid.UUID, len(profiles))
	for i, p := range profiles {
		userIDs[i] = p.UserID
	}
	users, err := s.repos.Users.FindByIDs(ctx, userIDs)
	if err != nil {
		return nil, err
	}
	names := make(map[uuid.UUID]string, len(users))
	for _, u := range users {
		names[u.ID] = u.FullName
	}

	rows := make([]report.EmployeeRow, len(profiles))
	g, gctx = errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i := range profiles {
		profile := profiles[i]
		row := &rows[i]
		*row = report.EmployeeRow{
			UserID:         profile.UserID,
			EmployeeNumber: profile.EmployeeNumber,
			Name:           names[profile.UserID],
			SalaryPaid:     decimal.Zero,
			Fines:          decimal.Zero,
			Payments:       decimal.Zero,
			SalesRevenue:   decimal.Zero,
		}
		g.Go(func() error {
			return s.fillEmployeeRow(gctx, row, rng)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	byCashier := make(map[uuid.UUID]int, len(rows))
	for i, row := range rows {
		byCashier[row.UserID] = i
	}
	for _, sale := range sales {
		if sale.CashierID == nil {
			continue
		}
		if i, ok := byCashier[*sale.CashierID]; ok {
			rows[i].SalesCount++
			rows[i].SalesRevenue = rows[i].SalesRevenue.Add(sale.Total)
		}
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Name < rows[j].Name })
	return &report.EmployeeReport{Range: rng, Employees: rows}, nil
}

func (s *ReportService) fillEmployeeRow(ctx context.Context, row *report.EmployeeRow, rng report.DateRange) error {
	salaries, err := s.repos.Employees.FindSalaries(ctx, row.UserID)
	if err != nil {
		return err
	}
	for _, salary := range salaries {
		if salary.Paid && salary.PaidAt != nil && rng.Contains(*salary.PaidAt) {
			row.SalaryPaid = row.SalaryPaid.Add(salary.Amount)
		}
	}

	fines, err := s.repos.Employees.FindFines(ctx, row.UserID, &rng.From, &rng.To)
	if err != nil {
		return err
	}
	for _, fine := range fines {
		if fine.Status != hr.FineStatusWaived {
			row.Fines = row.Fines.Add(fine.Amount)
		}
	}

	payments, err := s.repos.Employees.FindPayments(ctx, row.UserID, &rng.From, &rng.To)
	if err != nil {
		return err
	}
	for _, p := range payments {
		row.Payments = row.Payments.Add(p.Amount)
	}
	return nil
}

// Dashboard summarizes today, the current month and pending work for userID
func (s *ReportService) Dashboard(ctx context.Context, userID uuid.UUID) (*report.Dashboard, error) {
	now := s.now().In(s.loc)
	today, err := report.ResolveRange(string(report.PresetToday), nil, nil, now)
	if err != nil {
		return nil, err
	}
	month, err := report.ResolveRange(string(report.PresetThisMonth), nil, nil, now)
	if err != nil {
		return nil, err
	}

	var (
		dash       report.Dashboard
		monthSales []trade.Sale
		lowStock   []catalog.Product
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		monthSales, err = s.repos.Sales.FindCompletedBetween(gctx, month.From, month.To)
		return err
	})
	g.Go(func() error {
		var err error
		dash.ProductCount, err = s.repos.Products.Count(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		lowStock, err = s.repos.Products.FindLowStock(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		dash.PendingRequests, err = s.repos.PurchaseRequests.CountByStatus(gctx, trade.PurchaseRequestStatusPending)
		return err
	})
	g.Go(func() error {
		var err error
		dash.UnreadMessages, err = s.repos.Messages.CountUnread(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		_, dash.EmployeeCount, err = s.repos.Employees.FindProfiles(gctx, shared.Filter{Page: 1, PageSize: 1})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	todaySales := make([]trade.Sale, 0, len(monthSales))
	for _, sale := range monthSales {
		if today.Contains(sale.SoldAt.In(s.loc)) {
			todaySales = append(todaySales, sale)
		}
	}
	dash.TodaySales = report.SummarizeSales(todaySales)
	dash.MonthSales = report.SummarizeSales(monthSales)
	dash.LowStockCount = len(lowStock)
	return &dash, nil
}

// allRows is an unpaginated filter ordered by field
func allRows(orderBy string) shared.Filter {
	return shared.Filter{OrderBy: orderBy, OrderDir: "asc"}
}

// inLocation reinterprets a date-only value as midnight in loc
func inLocation(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
