package hr

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopdesk/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

var periodRegex = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// EmployeeProfile holds HR metadata attached to a staff account (one per user)
type EmployeeProfile struct {
	shared.BaseAggregateRoot
	UserID           uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex"`
	EmployeeNumber   string          `gorm:"type:varchar(30);not null;uniqueIndex"`
	Position         string          `gorm:"type:varchar(100)"`
	HireDate         time.Time       `gorm:"not null"`
	NationalID       string          `gorm:"type:varchar(50)"`
	Address          string          `gorm:"type:text"`
	EmergencyContact string          `gorm:"type:varchar(200)"`
	BaseSalary       decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
}

// TableName returns the table name for GORM
func (EmployeeProfile) TableName() string {
	return "employee_profiles"
}

// NewEmployeeProfile creates a profile for the given user
func NewEmployeeProfile(userID uuid.UUID, employeeNumber, position string, hireDate time.Time, baseSalary decimal.Decimal) (*EmployeeProfile, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User ID cannot be empty")
	}
	employeeNumber = strings.ToUpper(strings.TrimSpace(employeeNumber))
	if employeeNumber == "" {
		return nil, shared.NewDomainError("INVALID_EMPLOYEE_NUMBER", "Employee number cannot be empty")
	}
	if baseSalary.IsNegative() {
		return nil, shared.NewDomainError("INVALID_SALARY", "Base salary cannot be negative")
	}
	if hireDate.IsZero() {
		hireDate = time.Now()
	}
	return &EmployeeProfile{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		UserID:            userID,
		EmployeeNumber:    employeeNumber,
		Position:          strings.TrimSpace(position),
		HireDate:          hireDate,
		BaseSalary:        baseSalary,
	}, nil
}

// Update replaces the editable profile fields
func (p *EmployeeProfile) Update(position, nationalID, address, emergencyContact string, baseSalary decimal.Decimal) error {
	if baseSalary.IsNegative() {
		return shared.NewDomainError("INVALID_SALARY", "Base salary cannot be negative")
	}
	p.Position = strings.TrimSpace(position)
	p.NationalID = strings.TrimSpace(nationalID)
	p.Address = strings.TrimSpace(address)
	p.EmergencyContact = strings.TrimSpace(emergencyContact)
	p.BaseSalary = baseSalary
	p.Touch()
	p.IncrementVersion()
	return nil
}

// EmployeeSalary is a salary entry for one pay period (YYYY-MM)
type EmployeeSalary struct {
	shared.BaseEntity
	UserID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_salary_user_period,priority:1"`
	Period string          `gorm:"type:varchar(7);not null;uniqueIndex:idx_salary_user_period,priority:2"`
	Amount decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Paid   bool            `gorm:"not null;default:false"`
	PaidAt *time.Time
	Note   string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (EmployeeSalary) TableName() string {
	return "employee_salaries"
}

// NewEmployeeSalary creates an unpaid salary entry
func NewEmployeeSalary(userID uuid.UUID, period string, amount decimal.Decimal, note string) (*EmployeeSalary, error) {
	if err := ValidatePeriod(period); err != nil {
		return nil, err
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Salary amount must be positive")
	}
	return &EmployeeSalary{
		BaseEntity: shared.NewBaseEntity(),
		UserID:     userID,
		Period:     period,
		Amount:     amount,
		Note:       strings.TrimSpace(note),
	}, nil
}

// MarkPaid marks the salary as paid
func (s *EmployeeSalary) MarkPaid(at time.Time) error {
	if s.Paid {
		return shared.NewDomainError("ALREADY_PAID", "Salary is already marked as paid")
	}
	s.Paid = true
	s.PaidAt = &at
	s.Touch()
	return nil
}

// FineStatus is the lifecycle state of a fine
type FineStatus string

const (
	FineStatusPending  FineStatus = "pending"
	FineStatusDeducted FineStatus = "deducted"
	FineStatusWaived   FineStatus = "waived"
)

// EmployeeFine is a penalty issued against an employee
type EmployeeFine struct {
	shared.BaseEntity
	UserID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount   decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Reason   string          `gorm:"type:text;not null"`
	IssuedAt time.Time       `gorm:"not null"`
	IssuedBy uuid.UUID       `gorm:"type:uuid"`
	Status   FineStatus      `gorm:"type:varchar(20);not null;default:'pending'"`
}

// TableName returns the table name for GORM
func (EmployeeFine) TableName() string {
	return "employee_fines"
}

// NewEmployeeFine issues a pending fine
func NewEmployeeFine(userID, issuedBy uuid.UUID, amount decimal.Decimal, reason string, issuedAt time.Time) (*EmployeeFine, error) {
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Fine amount must be positive")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, shared.NewDomainError("INVALID_REASON", "Fine reason cannot be empty")
	}
	if issuedAt.IsZero() {
		issuedAt = time.Now()
	}
	return &EmployeeFine{
		BaseEntity: shared.NewBaseEntity(),
		UserID:     userID,
		Amount:     amount,
		Reason:     reason,
		IssuedAt:   issuedAt,
		IssuedBy:   issuedBy,
		Status:     FineStatusPending,
	}, nil
}

// Waive cancels a pending fine
func (f *EmployeeFine) Waive() error {
	if f.Status != FineStatusPending {
		return shared.NewDomainError("INVALID_STATE", "Only pending fines can be waived")
	}
	f.Status = FineStatusWaived
	f.Touch()
	return nil
}

// MarkDeducted records that the fine was taken from pay
func (f *EmployeeFine) MarkDeducted() error {
	if f.Status != FineStatusPending {
		return shared.NewDomainError("INVALID_STATE", "Only pending fines can be deducted")
	}
	f.Status = FineStatusDeducted
	f.Touch()
	return nil
}

// EmployeePayment is an ad-hoc payment (advance, bonus, allowance) to an employee
type EmployeePayment struct {
	shared.BaseEntity
	UserID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount    decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Method    string          `gorm:"type:varchar(30);not null"`
	Reference string          `gorm:"type:varchar(100)"`
	PaidAt    time.Time       `gorm:"not null;index"`
	Note      string          `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (EmployeePayment) TableName() string {
	return "employee_payments"
}

// NewEmployeePayment records a payment
func NewEmployeePayment(userID uuid.UUID, amount decimal.Decimal, method, reference, note string, paidAt time.Time) (*EmployeePayment, error) {
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	method = strings.ToLower(strings.TrimSpace(method))
	if method == "" {
		method = "cash"
	}
	if paidAt.IsZero() {
		paidAt = time.Now()
	}
	return &EmployeePayment{
		BaseEntity: shared.NewBaseEntity(),
		UserID:     userID,
		Amount:     amount,
		Method:     method,
		Reference:  strings.TrimSpace(reference),
		PaidAt:     paidAt,
		Note:       strings.TrimSpace(note),
	}, nil
}

// ValidatePeriod checks the YYYY-MM pay period format
func ValidatePeriod(period string) error {
	if !periodRegex.MatchString(period) {
		return shared.NewDomainError("INVALID_PERIOD", "Period must be in YYYY-MM format")
	}
	return nil
}

// PeriodRange returns the [start, end) time range covered by a YYYY-MM period
func PeriodRange(period string) (time.Time, time.Time, error) {
	if err := ValidatePeriod(period); err != nil {
		return time.Time{}, time.Time{}, err
	}
	start, err := time.ParseInLocation("2006-01", period, time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, shared.NewDomainError("INVALID_PERIOD", "Period must be in YYYY-MM format")
	}
	return start, start.AddDate(0, 1, 0), nil
}

// PaySummary is the computed pay position of an employee for one period
type PaySummary struct {
	UserID       uuid.UUID
	Period       string
	BaseSalary   decimal.Decimal
	SalaryAmount decimal.Decimal
	SalaryPaid   bool
	PendingFines decimal.Decimal
	Payments     decimal.Decimal
	NetPayable   decimal.Decimal
}

// ComputePaySummary derives net payable as salary minus pending fines minus payments.
// When no salary entry exists the base salary is used.
func ComputePaySummary(profile *EmployeeProfile, salary *EmployeeSalary, fines []EmployeeFine, payments []EmployeePayment, period string) PaySummary {
	summary := PaySummary{
		UserID:       profile.UserID,
		Period:       period,
		BaseSalary:   profile.BaseSalary,
		SalaryAmount: profile.BaseSalary,
		PendingFines: decimal.Zero,
		Payments:     decimal.Zero,
	}
	if salary != nil {
		summary.SalaryAmount = salary.Amount
		summary.SalaryPaid = salary.Paid
	}
	for _, f := range fines {
		if f.Status == FineStatusPending {
			summary.PendingFines = summary.PendingFines.Add(f.Amount)
		}
	}
	for _, p := range payments {
		summary.Payments = summary.Payments.Add(p.Amount)
	}
	summary.NetPayable = summary.SalaryAmount.Sub(summary.PendingFines).Sub(summary.Payments)
	return summary
}
