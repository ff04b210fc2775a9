package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/shopdesk/backend/internal/application/catalog"
	"github.com/shopdesk/backend/internal/application/hr"
	"github.com/shopdesk/backend/internal/application/identity"
	"github.com/shopdesk/backend/internal/application/partner"
	"github.com/shopdesk/backend/internal/domain/shared"
	"github.com/shopdesk/backend/internal/infrastructure/persistence"
	"github.com/shopdesk/backend/internal/infrastructure/printing"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Counts sets how many records of each kind are generated
type Counts struct {
	Employees           int
	Suppliers           int
	Customers           int
	ProductsPerCategory int
}

// Admin is the bootstrap administrator account
type Admin struct {
	Username string
	Email    string
	Password string
}

// Result reports what a run created. Records that already existed are
// counted as skipped.
type Result struct {
	Created map[string]int
	Skipped int
}

var departmentNames = []string{"Sales Floor", "Stores", "Accounts"}

var categoryNames = []string{"Beverages", "Bakery", "Household", "Personal Care", "Snacks"}

// seeder fills an empty database through the application services, so every
// generated record passes the same validation as API input
type seeder struct {
	users       *identity.UserService
	departments *identity.DepartmentService
	employees   *hr.EmployeeService
	categories  *catalog.CategoryService
	products    *catalog.ProductService
	suppliers   *partner.SupplierService
	customers   *partner.CustomerService
	faker       *gofakeit.Faker
	logger      *zap.Logger
	result      Result
}

func newSeeder(db *gorm.DB, faker *gofakeit.Faker, currency string, logger *zap.Logger) (*seeder, error) {
	templates, err := printing.NewTemplateEngine(currency, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}
	txScope := persistence.NewGormTransactionScope(db)
	userRepo := persistence.NewGormUserRepository(db)
	productRepo := persistence.NewGormProductRepository(db)
	categoryRepo := persistence.NewGormCategoryRepository(db)
	supplierRepo := persistence.NewGormSupplierRepository(db)

	return &seeder{
		users:       identity.NewUserService(userRepo, nil, nil, nil, identity.UserServiceConfig{}, logger),
		departments: identity.NewDepartmentService(persistence.NewGormDepartmentRepository(db), userRepo, logger),
		employees:   hr.NewEmployeeService(txScope, userRepo, persistence.NewGormEmployeeRepository(db), logger),
		categories:  catalog.NewCategoryService(categoryRepo, productRepo, logger),
		products: catalog.NewProductService(txScope, productRepo, categoryRepo, supplierRepo,
			persistence.NewGormStockMovementRepository(db), nil, templates, nil,
			catalog.ProductServiceConfig{}, logger),
		suppliers: partner.NewSupplierService(txScope, supplierRepo, nil, logger),
		customers: partner.NewCustomerService(persistence.NewGormCustomerRepository(db), logger),
		faker:     faker,
		logger:    logger,
		result:    Result{Created: make(map[string]int)},
	}, nil
}

// skipped reports whether err only says the record is already there
func (s *seeder) skipped(kind string, err error) bool {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) && strings.HasSuffix(domainErr.Code, "EXISTS") {
		s.logger.Debug("Record exists, skipping", zap.String("kind", kind), zap.String("reason", domainErr.Message))
		s.result.Skipped++
		return true
	}
	return false
}

func (s *seeder) created(kind string) {
	s.result.Created[kind]++
}

// Run generates the admin account, departments, staff, suppliers, the
// catalog and customers
func (s *seeder) Run(ctx context.Context, admin Admin, counts Counts) (*Result, error) {
	if err := s.seedAdmin(ctx, admin); err != nil {
		return nil, err
	}
	departments, err := s.seedDepartments(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.seedEmployees(ctx, counts.Employees, departments); err != nil {
		return nil, err
	}
	suppliers, err := s.seedSuppliers(ctx, counts.Suppliers)
	if err != nil {
		return nil, err
	}
	if err := s.seedCatalog(ctx, counts.ProductsPerCategory, suppliers); err != nil {
		return nil, err
	}
	if err := s.seedCustomers(ctx, counts.Customers); err != nil {
		return nil, err
	}
	return &s.result, nil
}

func (s *seeder) seedAdmin(ctx context.Context, admin Admin) error {
	_, err := s.users.Create(ctx, identity.CreateUserRequest{
		Username: admin.Username,
		Email:    admin.Email,
		FullName: "Store Administrator",
		Password: admin.Password,
		Role:     "admin",
	})
	if err != nil && !s.skipped("admin", err) {
		return fmt.Errorf("failed to create admin: %w", err)
	}
	if err == nil {
		s.created("admin")
	}
	return nil
}

func (s *seeder) seedDepartments(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for _, name := range departmentNames {
		dept, err := s.departments.Create(ctx, identity.CreateDepartmentRequest{
			Name:        name,
			Description: s.faker.Sentence(6),
		})
		if err != nil {
			if s.skipped("department", err) {
				continue
			}
			return nil, fmt.Errorf("failed to create department %q: %w", name, err)
		}
		s.created("department")
		ids = append(ids, dept.ID)
	}
	return ids, nil
}

func (s *seeder) seedEmployees(ctx context.Context, n int, departments []uuid.UUID) error {
	for i := 0; i < n; i++ {
		first, last := s.faker.FirstName(), s.faker.LastName()
		username := strings.ToLower(fmt.Sprintf("%s.%s%d", first, last, i+1))
		hired := s.faker.DateRange(time.Now().AddDate(-5, 0, 0), time.Now().AddDate(0, -1, 0))
		salary := decimal.NewFromInt(int64(s.faker.IntRange(25, 90)) * 1000)

		emp, err := s.employees.Create(ctx, hr.CreateEmployeeRequest{
			Username:         username,
			Email:            username + "@shopdesk.test",
			FullName:         first + " " + last,
			Phone:            s.faker.Phone(),
			Password:         "counter-" + s.faker.Password(true, true, true, false, false, 10),
			EmployeeNumber:   fmt.Sprintf("EMP-%04d", i+1),
			Position:         s.faker.JobTitle(),
			HireDate:         &hired,
			NationalID:       s.faker.Numerify("########"),
			Address:          s.faker.Street() + ", " + s.faker.City(),
			EmergencyContact: s.faker.Name() + " " + s.faker.Phone(),
			BaseSalary:       salary,
		})
		if err != nil {
			if s.skipped("employee", err) {
				continue
			}
			return fmt.Errorf("failed to create employee %s: %w", username, err)
		}
		s.created("employee")

		if len(departments) > 0 {
			dept := departments[i%len(departments)]
			if err := s.departments.AssignUser(ctx, dept, emp.UserID); err != nil && !s.skipped("membership", err) {
				return fmt.Errorf("failed to assign %s to a department: %w", username, err)
			}
		}
	}
	return nil
}

func (s *seeder) seedSuppliers(ctx context.Context, n int) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for i := 0; i < n; i++ {
		name := fmt.Sprintf("%s %s", s.faker.Company(), s.faker.CompanySuffix())
		sup, err := s.suppliers.Create(ctx, partner.CreateSupplierRequest{
			Name:          name,
			ContactPerson: s.faker.Name(),
			Email:         s.faker.Email(),
			Phone:         s.faker.Phone(),
			Address:       s.faker.Street() + ", " + s.faker.City(),
		})
		if err != nil {
			if s.skipped("supplier", err) {
				continue
			}
			return nil, fmt.Errorf("failed to create supplier %q: %w", name, err)
		}
		s.created("supplier")
		ids = append(ids, sup.ID)
	}
	return ids, nil
}

func (s *seeder) seedCatalog(ctx context.Context, perCategory int, suppliers []uuid.UUID) error {
	sku := 0
	for _, name := range categoryNames {
		cat, err := s.categories.Create(ctx, catalog.CreateCategoryRequest{
			Name:        name,
			Description: s.faker.Sentence(5),
		})
		if err != nil {
			if s.skipped("category", err) {
				continue
			}
			return fmt.Errorf("failed to create category %q: %w", name, err)
		}
		s.created("category")

		for i := 0; i < perCategory; i++ {
			sku++
			price := decimal.NewFromFloat(s.faker.Price(50, 2500)).Round(0)
			req := catalog.CreateProductRequest{
				SKU:          fmt.Sprintf("%s-%04d", strings.ToUpper(name[:3]), sku),
				Name:         s.faker.ProductName(),
				Description:  s.faker.ProductDescription(),
				CategoryID:   &cat.ID,
				Unit:         s.faker.RandomString([]string{"pcs", "pack", "kg", "ltr"}),
				CostPrice:    price.Mul(decimal.NewFromFloat(0.7)).Round(2),
				SellingPrice: price,
				InitialStock: s.faker.IntRange(0, 120),
				ReorderLevel: s.faker.IntRange(5, 20),
			}
			if len(suppliers) > 0 {
				req.SupplierID = &suppliers[sku%len(suppliers)]
			}
			if _, err := s.products.Create(ctx, req, nil); err != nil {
				if s.skipped("product", err) {
					continue
				}
				return fmt.Errorf("failed to create product %s: %w", req.SKU, err)
			}
			s.created("product")
		}
	}
	return nil
}

func (s *seeder) seedCustomers(ctx context.Context, n int) error {
	for i := 0; i < n; i++ {
		_, err := s.customers.Create(ctx, partner.CreateCustomerRequest{
			Name:    s.faker.Name(),
			Email:   fmt.Sprintf("customer%03d.%s", i+1, s.faker.Email()),
			Phone:   s.faker.Phone(),
			Address: s.faker.Street() + ", " + s.faker.City(),
		})
		if err != nil {
			if s.skipped("customer", err) {
				continue
			}
			return fmt.Errorf("failed to create customer: %w", err)
		}
		s.created("customer")
	}
	return nil
}

// validate applies the rules the user endpoints enforce on input
func (a Admin) validate() error {
	if len(a.Password) < 8 || len(a.Password) > 72 {
		return errors.New("admin password must be 8 to 72 characters")
	}
	if len(a.Username) < 3 || !strings.Contains(a.Email, "@") {
		return errors.New("admin username and a valid email are required")
	}
	return nil
}
