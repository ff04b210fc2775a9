package hr

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopdesk/backend/internal/domain/shared"
)

// EmployeeRepository persists employee profiles and their HR records
type EmployeeRepository interface {
	CreateProfile(ctx context.Context, profile *EmployeeProfile) error
	UpdateProfile(ctx context.Context, profile *EmployeeProfile) error
	FindProfileByUserID(ctx context.Context, userID uuid.UUID) (*EmployeeProfile, error)
	FindProfiles(ctx context.Context, filter shared.Filter) ([]EmployeeProfile, int64, error)
	ExistsByEmployeeNumber(ctx context.Context, number string) (bool, error)

	CreateSalary(ctx context.Context, salary *EmployeeSalary) error
	UpdateSalary(ctx context.Context, salary *EmployeeSalary) error
	FindSalaryByID(ctx context.Context, id uuid.UUID) (*EmployeeSalary, error)
	FindSalaryForPeriod(ctx context.Context, userID uuid.UUID, period string) (*EmployeeSalary, error)
	FindSalaries(ctx context.Context, userID uuid.UUID) ([]EmployeeSalary, error)

	CreateFine(ctx context.Context, fine *EmployeeFine) error
	UpdateFine(ctx context.Context, fine *EmployeeFine) error
	FindFineByID(ctx context.Context, id uuid.UUID) (*EmployeeFine, error)
	FindFines(ctx context.Context, userID uuid.UUID, from, to *time.Time) ([]EmployeeFine, error)

	CreatePayment(ctx context.Context, payment *EmployeePayment) error
	FindPayments(ctx context.Context, userID uuid.UUID, from, to *time.Time) ([]EmployeePayment, error)
}
