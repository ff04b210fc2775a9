package persistence

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopdesk/backend/internal/domain/identity"
	"github.com/shopdesk/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormDepartmentRepository implements identity.DepartmentRepository using GORM
type GormDepartmentRepository struct {
	db *gorm.DB
}

// NewGormDepartmentRepository creates a new GormDepartmentRepository
func NewGormDepartmentRepository(db *gorm.DB) *GormDepartmentRepository {
	return &GormDepartmentRepository{db: db}
}

func (r *GormDepartmentRepository) Create(ctx context.Context, dept *identity.Department) error {
	return r.db.WithContext(ctx).Create(dept).Error
}

func (r *GormDepartmentRepository) Update(ctx context.Context, dept *identity.Department) error {
	return r.db.WithContext(ctx).Save(dept).Error
}

// Delete removes the department and its memberships
func (r *GormDepartmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("department_id = ?", id).Delete(&identity.UserDepartment{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&identity.Department{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

func (r *GormDepartmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Department, error) {
	var dept identity.Department
	if err := r.db.WithContext(ctx).First(&dept, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err)
	}
	return &dept, nil
}

func (r *GormDepartmentRepository) FindAll(ctx context.Context, filter shared.Filter) ([]identity.Department, int64, error) {
	query := r.db.WithContext(ctx).Model(&identity.Department{})
	if filter.Search != "" {
		query = query.Where("LOWER(name) LIKE ?", likePattern(filter.Search))
	}
	if status, ok := filterValue[string](filter, "status"); ok && status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var depts []identity.Department
	if err := paginate(query, filter, DepartmentSortFields, "name").Find(&depts).Error; err != nil {
		return nil, 0, err
	}
	return depts, total, nil
}

// ExistsByName checks for a department with the same name ignoring case
func (r *GormDepartmentRepository) ExistsByName(ctx context.Context, name string, excludeID *uuid.UUID) (bool, error) {
	query := r.db.WithContext(ctx).Model(&identity.Department{}).
		Where("LOWER(name) = ?", strings.ToLower(strings.TrimSpace(name)))
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormDepartmentRepository) AddMember(ctx context.Context, member *identity.UserDepartment) error {
	return r.db.WithContext(ctx).Create(member).Error
}

func (r *GormDepartmentRepository) RemoveMember(ctx context.Context, departmentID, userID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("department_id = ? AND user_id = ?", departmentID, userID).
		Delete(&identity.UserDepartment{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *GormDepartmentRepository) IsMember(ctx context.Context, departmentID, userID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&identity.UserDepartment{}).
		Where("department_id = ? AND user_id = ?", departmentID, userID).
		Count(&count).Error
	return count > 0, err
}

func (r *GormDepartmentRepository) FindMembers(ctx context.Context, departmentID uuid.UUID) ([]identity.User, error) {
	var users []identity.User
	err := r.db.WithContext(ctx).
		Joins("JOIN user_departments ud ON ud.user_id = users.id").
		Where("ud.department_id = ?", departmentID).
		Order("users.full_name ASC").
		Find(&users).Error
	return users, err
}

func (r *GormDepartmentRepository) FindDepartmentsOfUser(ctx context.Context, userID uuid.UUID) ([]identity.Department, error) {
	var depts []identity.Department
	err := r.db.WithContext(ctx).
		Joins("JOIN user_departments ud ON ud.department_id = departments.id").
		Where("ud.user_id = ?", userID).
		Order("departments.name ASC").
		Find(&depts).Error
	return depts, err
}

var _ identity.DepartmentRepository = (*GormDepartmentRepository)(nil)
