package hr

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	appshared "github.com/shopdesk/backend/internal/application/shared"
	"github.com/shopdesk/backend/internal/domain/hr"
	"github.com/shopdesk/backend/internal/domain/identity"
	"github.com/shopdesk/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// EmployeeService manages employee profiles and their pay records
type EmployeeService struct {
	txScope      appshared.TransactionScope
	userRepo     identity.UserRepository
	employeeRepo hr.EmployeeRepository
	logger       *zap.Logger
	now          func() time.Time
}

// NewEmployeeService creates a new employee service
func NewEmployeeService(
	txScope appshared.TransactionScope,
	userRepo identity.UserRepository,
	employeeRepo hr.EmployeeRepository,
	logger *zap.Logger,
) *EmployeeService {
	return &EmployeeService{
		txScope:      txScope,
		userRepo:     userRepo,
		employeeRepo: employeeRepo,
		logger:       logger,
		now:          time.Now,
	}
}

// Create creates the employee's user account and HR profile atomically
func (s *EmployeeService) Create(ctx context.Context, req CreateEmployeeRequest) (*EmployeeResponse, error) {
	s.logger.Info("Creating employee", zap.String("username", req.Username))

	hireDate := s.now()
	if req.HireDate != nil {
		hireDate = *req.HireDate
	}

	var (
		user    *identity.User
		profile *hr.EmployeeProfile
	)
	err := s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		users, employees := repos.Users(), repos.Employees()

		if exists, err := users.ExistsByUsername(ctx, req.Username, nil); err != nil {
			return err
		} else if exists {
			return shared.NewDomainError("USERNAME_EXISTS", "Username already exists")
		}
		if exists, err := users.ExistsByEmail(ctx, req.Email, nil); err != nil {
			return err
		} else if exists {
			return shared.NewDomainError("EMAIL_EXISTS", "Email already exists")
		}

		number := strings.ToUpper(strings.TrimSpace(req.EmployeeNumber))
		if number == "" {
			number = generateEmployeeNumber()
		}
		if exists, err := employees.ExistsByEmployeeNumber(ctx, number); err != nil {
			return err
		} else if exists {
			return shared.NewDomainError("ALREADY_EXISTS", "Employee number \""+number+"\" already exists")
		}

		var err error
		user, err = identity.NewUser(req.Username, req.Email, req.FullName, req.Password, identity.RoleEmployee)
		if err != nil {
			return err
		}
		if req.Phone != "" {
			if err := user.UpdateProfile("", "", req.Phone); err != nil {
				return err
			}
		}
		if err := users.Create(ctx, user); err != nil {
			return err
		}

		profile, err = hr.NewEmployeeProfile(user.ID, number, req.Position, hireDate, req.BaseSalary)
		if err != nil {
			return err
		}
		if req.NationalID != "" || req.Address != "" || req.EmergencyContact != "" {
			if err := profile.Update(req.Position, req.NationalID, req.Address, req.EmergencyContact, req.BaseSalary); err != nil {
				return err
			}
		}
		return employees.CreateProfile(ctx, profile)
	})
	if err != nil {
		return nil, s.wrap(err, "Failed to create employee")
	}

	s.logger.Info("Employee created",
		zap.String("user_id", user.ID.String()),
		zap.String("employee_number", profile.EmployeeNumber))
	resp := ToEmployeeResponse(user, profile)
	return &resp, nil
}

// Get returns an employee by user ID
func (s *EmployeeService) Get(ctx context.Context, userID uuid.UUID) (*EmployeeResponse, error) {
	profile, err := s.findProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, s.wrap(err, "Failed to load employee account")
	}
	resp := ToEmployeeResponse(user, profile)
	return &resp, nil
}

// List returns employees page by page
func (s *EmployeeService) List(ctx context.Context, f EmployeeListFilter) (*shared.Paginated[EmployeeResponse], error) {
	filter := shared.DefaultFilter()
	filter.Search = f.Search
	filter.OrderBy = "employee_number"
	filter.OrderDir = "asc"
	if f.Page > 0 {
		filter.Page = f.Page
	}
	if f.PageSize > 0 {
		filter.PageSize = f.PageSize
	}

	profiles, total, err := s.employeeRepo.FindProfiles(ctx, filter)
	if err != nil {
		s.logger.Error("Failed to list employees", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to list employees")
	}

	ids := make([]uuid.UUID, len(profiles))
	for i := range profiles {
		ids[i] = profiles[i].UserID
	}
	users, err := s.userRepo.FindByIDs(ctx, ids)
	if err != nil {
		s.logger.Error("Failed to load employee accounts", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to list employees")
	}
	byID := make(map[uuid.UUID]*identity.User, len(users))
	for i := range users {
		byID[users[i].ID] = &users[i]
	}

	items := make([]EmployeeResponse, len(profiles))
	for i := range profiles {
		items[i] = ToEmployeeResponse(byID[profiles[i].UserID], &profiles[i])
	}
	result := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &result, nil
}

// Update updates the employee's HR profile
func (s *EmployeeService) Update(ctx context.Context, userID uuid.UUID, req UpdateEmployeeRequest) (*EmployeeResponse, error) {
	profile, err := s.findProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, s.wrap(err, "Failed to load employee account")
	}

	if err := profile.Update(req.Position, req.NationalID, req.Address, req.EmergencyContact, req.BaseSalary); err != nil {
		return nil, err
	}
	if err := s.employeeRepo.UpdateProfile(ctx, profile); err != nil {
		s.logger.Error("Failed to update employee profile", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to update employee")
	}
	if req.Phone != "" && req.Phone != user.Phone {
		if err := user.UpdateProfile("", "", req.Phone); err != nil {
			return nil, err
		}
		if err := s.userRepo.Update(ctx, user); err != nil {
			s.logger.Error("Failed to update employee phone", zap.Error(err))
		}
	}

	resp := ToEmployeeResponse(user, profile)
	return &resp, nil
}

// Deactivate deactivates the employee's account. HR records are kept.
func (s *EmployeeService) Deactivate(ctx context.Context, userID uuid.UUID) (*EmployeeResponse, error) {
	profile, err := s.findProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, s.wrap(err, "Failed to load employee account")
	}
	if err := user.Deactivate(); err != nil {
		return nil, err
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		s.logger.Error("Failed to deactivate employee", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to deactivate employee")
	}
	s.logger.Info("Employee deactivated", zap.String("user_id", userID.String()))
	resp := ToEmployeeResponse(user, profile)
	return &resp, nil
}

// AddSalary adds the salary entry for a period; one entry per period
func (s *EmployeeService) AddSalary(ctx context.Context, userID uuid.UUID, req AddSalaryRequest) (*SalaryResponse, error) {
	if _, err := s.findProfile(ctx, userID); err != nil {
		return nil, err
	}
	salary, err := hr.NewEmployeeSalary(userID, req.Period, req.Amount, req.Note)
	if err != nil {
		return nil, err
	}

	existing, err := s.employeeRepo.FindSalaryForPeriod(ctx, userID, req.Period)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, s.wrap(err, "Failed to check salary period")
	}
	if existing != nil {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Salary for period "+req.Period+" already exists")
	}

	if err := s.employeeRepo.CreateSalary(ctx, salary); err != nil {
		s.logger.Error("Failed to add salary", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to add salary")
	}
	resp := ToSalaryResponse(salary)
	return &resp, nil
}

// MarkSalaryPaid marks a salary entry as paid. Pending fines issued in the
// salary's period are marked deducted in the same transaction, so they stop
// reducing the period's net payable.
func (s *EmployeeService) MarkSalaryPaid(ctx context.Context, salaryID uuid.UUID) (*SalaryResponse, error) {
	var (
		salary   *hr.EmployeeSalary
		deducted = decimal.Zero
		count    int
	)
	err := s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		employees := repos.Employees()

		var err error
		salary, err = employees.FindSalaryByID(ctx, salaryID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return shared.NewDomainError("SALARY_NOT_FOUND", "Salary entry not found")
			}
			return err
		}
		if err := salary.MarkPaid(s.now()); err != nil {
			return err
		}
		if err := employees.UpdateSalary(ctx, salary); err != nil {
			return err
		}

		start, end, err := hr.PeriodRange(salary.Period)
		if err != nil {
			return err
		}
		fines, err := employees.FindFines(ctx, salary.UserID, &start, &end)
		if err != nil {
			return err
		}
		for i := range fines {
			fine := &fines[i]
			if fine.Status != hr.FineStatusPending {
				continue
			}
			if err := fine.MarkDeducted(); err != nil {
				return err
			}
			if err := employees.UpdateFine(ctx, fine); err != nil {
				return err
			}
			deducted = deducted.Add(fine.Amount)
			count++
		}
		return nil
	})
	if err != nil {
		var domainErr *shared.DomainError
		if errors.As(err, &domainErr) {
			return nil, err
		}
		s.logger.Error("Failed to mark salary paid", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to update salary")
	}

	s.logger.Info("Salary paid",
		zap.String("user_id", salary.UserID.String()),
		zap.String("period", salary.Period),
		zap.Int("fines_deducted", count))
	resp := ToSalaryResponse(salary)
	if count > 0 {
		resp.FinesDeducted = &deducted
	}
	return &resp, nil
}

// ListSalaries returns the employee's salary entries, newest period first
func (s *EmployeeService) ListSalaries(ctx context.Context, userID uuid.UUID) ([]SalaryResponse, error) {
	salaries, err := s.employeeRepo.FindSalaries(ctx, userID)
	if err != nil {
		return nil, s.wrap(err, "Failed to list salaries")
	}
	out := make([]SalaryResponse, len(salaries))
	for i := range salaries {
		out[i] = ToSalaryResponse(&salaries[i])
	}
	return out, nil
}

// IssueFine issues a pending fine against the employee
func (s *EmployeeService) IssueFine(ctx context.Context, userID, issuedBy uuid.UUID, req IssueFineRequest) (*FineResponse, error) {
	if _, err := s.findProfile(ctx, userID); err != nil {
		return nil, err
	}
	issuedAt := s.now()
	if req.IssuedAt != nil {
		issuedAt = *req.IssuedAt
	}
	fine, err := hr.NewEmployeeFine(userID, issuedBy, req.Amount, req.Reason, issuedAt)
	if err != nil {
		return nil, err
	}
	if err := s.employeeRepo.CreateFine(ctx, fine); err != nil {
		s.logger.Error("Failed to issue fine", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to issue fine")
	}
	s.logger.Info("Fine issued",
		zap.String("user_id", userID.String()),
		zap.String("amount", fine.Amount.StringFixed(2)))
	resp := ToFineResponse(fine)
	return &resp, nil
}

// WaiveFine waives a pending fine
func (s *EmployeeService) WaiveFine(ctx context.Context, fineID uuid.UUID) (*FineResponse, error) {
	fine, err := s.employeeRepo.FindFineByID(ctx, fineID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("FINE_NOT_FOUND", "Fine not found")
		}
		return nil, s.wrap(err, "Failed to load fine")
	}
	if err := fine.Waive(); err != nil {
		return nil, err
	}
	if err := s.employeeRepo.UpdateFine(ctx, fine); err != nil {
		s.logger.Error("Failed to waive fine", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to waive fine")
	}
	resp := ToFineResponse(fine)
	return &resp, nil
}

// ListFines returns the employee's fines issued in the range
func (s *EmployeeService) ListFines(ctx context.Context, userID uuid.UUID, f DateRangeFilter) ([]FineResponse, error) {
	fines, err := s.employeeRepo.FindFines(ctx, userID, f.From, f.To)
	if err != nil {
		return nil, s.wrap(err, "Failed to list fines")
	}
	out := make([]FineResponse, len(fines))
	for i := range fines {
		out[i] = ToFineResponse(&fines[i])
	}
	return out, nil
}

// RecordPayment records a payment to the employee
func (s *EmployeeService) RecordPayment(ctx context.Context, userID uuid.UUID, req RecordPaymentRequest) (*PaymentResponse, error) {
	if _, err := s.findProfile(ctx, userID); err != nil {
		return nil, err
	}
	paidAt := s.now()
	if req.PaidAt != nil {
		paidAt = *req.PaidAt
	}
	payment, err := hr.NewEmployeePayment(userID, req.Amount, req.Method, req.Reference, req.Note, paidAt)
	if err != nil {
		return nil, err
	}
	if err := s.employeeRepo.CreatePayment(ctx, payment); err != nil {
		s.logger.Error("Failed to record payment", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to record payment")
	}
	resp := ToPaymentResponse(payment)
	return &resp, nil
}

// ListPayments returns the employee's payments made in the range
func (s *EmployeeService) ListPayments(ctx context.Context, userID uuid.UUID, f DateRangeFilter) ([]PaymentResponse, error) {
	payments, err := s.employeeRepo.FindPayments(ctx, userID, f.From, f.To)
	if err != nil {
		return nil, s.wrap(err, "Failed to list payments")
	}
	out := make([]PaymentResponse, len(payments))
	for i := range payments {
		out[i] = ToPaymentResponse(&payments[i])
	}
	return out, nil
}

// Summary computes the employee's pay position for a YYYY-MM period
func (s *EmployeeService) Summary(ctx context.Context, userID uuid.UUID, period string) (*PaySummaryResponse, error) {
	start, end, err := hr.PeriodRange(period)
	if err != nil {
		return nil, err
	}
	profile, err := s.findProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	salary, err := s.employeeRepo.FindSalaryForPeriod(ctx, userID, period)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			return nil, s.wrap(err, "Failed to load salary")
		}
		salary = nil
	}
	fines, err := s.employeeRepo.FindFines(ctx, userID, &start, &end)
	if err != nil {
		return nil, s.wrap(err, "Failed to load fines")
	}
	payments, err := s.employeeRepo.FindPayments(ctx, userID, &start, &end)
	if err != nil {
		return nil, s.wrap(err, "Failed to load payments")
	}

	sum := hr.ComputePaySummary(profile, salary, fines, payments, period)
	resp := &PaySummaryResponse{
		UserID:       sum.UserID,
		Period:       sum.Period,
		BaseSalary:   sum.BaseSalary,
		SalaryAmount: sum.SalaryAmount,
		SalaryPaid:   sum.SalaryPaid,
		PendingFines: sum.PendingFines,
		Payments:     sum.Payments,
		NetPayable:   sum.NetPayable,
		Fines:        make([]FineResponse, len(fines)),
		PaymentItems: make([]PaymentResponse, len(payments)),
	}
	for i := range fines {
		resp.Fines[i] = ToFineResponse(&fines[i])
	}
	for i := range payments {
		resp.PaymentItems[i] = ToPaymentResponse(&payments[i])
	}
	return resp, nil
}

func (s *EmployeeService) findProfile(ctx context.Context, userID uuid.UUID) (*hr.EmployeeProfile, error) {
	profile, err := s.employeeRepo.FindProfileByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("EMPLOYEE_NOT_FOUND", "Employee not found")
		}
		s.logger.Error("Failed to find employee profile", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to find employee")
	}
	return profile, nil
}

// wrap passes domain errors through and hides infrastructure errors
func (s *EmployeeService) wrap(err error, msg string) error {
	var de *shared.DomainError
	if errors.As(err, &de) {
		return err
	}
	s.logger.Error(msg, zap.Error(err))
	return shared.NewDomainError("INTERNAL_ERROR", msg)
}

func generateEmployeeNumber() string {
	return "EMP-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}
