package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopdesk/backend/internal/domain/hr"
	"github.com/shopdesk/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormEmployeeRepository implements hr.EmployeeRepository using GORM
type GormEmployeeRepository struct {
	db *gorm.DB
}

// NewGormEmployeeRepository creates a new GormEmployeeRepository
func NewGormEmployeeRepository(db *gorm.DB) *GormEmployeeRepository {
	return &GormEmployeeRepository{db: db}
}

func (r *GormEmployeeRepository) CreateProfile(ctx context.Context, profile *hr.EmployeeProfile) error {
	return r.db.WithContext(ctx).Create(profile).Error
}

func (r *GormEmployeeRepository) UpdateProfile(ctx context.Context, profile *hr.EmployeeProfile) error {
	return r.db.WithContext(ctx).Save(profile).Error
}

func (r *GormEmployeeRepository) FindProfileByUserID(ctx context.Context, userID uuid.UUID) (*hr.EmployeeProfile, error) {
	var profile hr.EmployeeProfile
	if err := r.db.WithContext(ctx).First(&profile, "user_id = ?", userID).Error; err != nil {
		return nil, notFoundOr(err)
	}
	return &profile, nil
}

func (r *GormEmployeeRepository) FindProfiles(ctx context.Context, filter shared.Filter) ([]hr.EmployeeProfile, int64, error) {
	query := r.db.WithContext(ctx).Model(&hr.EmployeeProfile{})
	if filter.Search != "" {
		p := likePattern(filter.Search)
		query = query.Where("LOWER(employee_number) LIKE ? OR LOWER(position) LIKE ?", p, p)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var profiles []hr.EmployeeProfile
	if err := paginate(query, filter, EmployeeSortFields, "employee_number").Find(&profiles).Error; err != nil {
		return nil, 0, err
	}
	return profiles, total, nil
}

func (r *GormEmployeeRepository) ExistsByEmployeeNumber(ctx context.Context, number string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&hr.EmployeeProfile{}).Where("employee_number = ?", number).Count(&count).Error
	return count > 0, err
}

func (r *GormEmployeeRepository) CreateSalary(ctx context.Context, salary *hr.EmployeeSalary) error {
	return r.db.WithContext(ctx).Create(salary).Error
}

func (r *GormEmployeeRepository) UpdateSalary(ctx context.Context, salary *hr.EmployeeSalary) error {
	return r.db.WithContext(ctx).Save(salary).Error
}

func (r *GormEmployeeRepository) FindSalaryByID(ctx context.Context, id uuid.UUID) (*hr.EmployeeSalary, error) {
	var salary hr.EmployeeSalary
	if err := r.db.WithContext(ctx).First(&salary, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err)
	}
	return &salary, nil
}

func (r *GormEmployeeRepository) FindSalaryForPeriod(ctx context.Context, userID uuid.UUID, period string) (*hr.EmployeeSalary, error) {
	var salary hr.EmployeeSalary
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND period = ?", userID, period).
		First(&salary).Error; err != nil {
		return nil, notFoundOr(err)
	}
	return &salary, nil
}

func (r *GormEmployeeRepository) FindSalaries(ctx context.Context, userID uuid.UUID) ([]hr.EmployeeSalary, error) {
	var salaries []hr.EmployeeSalary
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("period DESC").Find(&salaries).Error
	return salaries, err
}

func (r *GormEmployeeRepository) CreateFine(ctx context.Context, fine *hr.EmployeeFine) error {
	return r.db.WithContext(ctx).Create(fine).Error
}

func (r *GormEmployeeRepository) UpdateFine(ctx context.Context, fine *hr.EmployeeFine) error {
	return r.db.WithContext(ctx).Save(fine).Error
}

func (r *GormEmployeeRepository) FindFineByID(ctx context.Context, id uuid.UUID) (*hr.EmployeeFine, error) {
	var fine hr.EmployeeFine
	if err := r.db.WithContext(ctx).First(&fine, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err)
	}
	return &fine, nil
}

func (r *GormEmployeeRepository) FindFines(ctx context.Context, userID uuid.UUID, from, to *time.Time) ([]hr.EmployeeFine, error) {
	query := r.db.WithContext(ctx).Where("user_id = ?", userID)
	query = dateBetween(query, "issued_at", shared.Filter{From: from, To: to})
	var fines []hr.EmployeeFine
	err := query.Order("issued_at DESC").Find(&fines).Error
	return fines, err
}

func (r *GormEmployeeRepository) CreatePayment(ctx context.Context, payment *hr.EmployeePayment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *GormEmployeeRepository) FindPayments(ctx context.Context, userID uuid.UUID, from, to *time.Time) ([]hr.EmployeePayment, error) {
	query := r.db.WithContext(ctx).Where("user_id = ?", userID)
	query = dateBetween(query, "paid_at", shared.Filter{From: from, To: to})
	var payments []hr.EmployeePayment
	err := query.Order("paid_at DESC").Find(&payments).Error
	return payments, err
}

var _ hr.EmployeeRepository = (*GormEmployeeRepository)(nil)
