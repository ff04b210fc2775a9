package identity

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopdesk/backend/internal/domain/shared"
)

// DepartmentStatus represents the status of a department
type DepartmentStatus string

const (
	DepartmentStatusActive   DepartmentStatus = "active"
	DepartmentStatusInactive DepartmentStatus = "inactive"
)

// Department groups staff accounts. Names are unique regardless of case.
type Department struct {
	shared.BaseAggregateRoot
	Name        string           `gorm:"type:varchar(100);not null"`
	Description string           `gorm:"type:text"`
	Status      DepartmentStatus `gorm:"type:varchar(20);not null;default:'active'"`
}

// TableName returns the table name for GORM
func (Department) TableName() string {
	return "departments"
}

// UserDepartment is the membership join between users and departments
type UserDepartment struct {
	UserID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	DepartmentID uuid.UUID `gorm:"type:uuid;primaryKey"`
	AssignedAt   time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (UserDepartment) TableName() string {
	return "user_departments"
}

// NewDepartment creates a new active department
func NewDepartment(name, description string) (*Department, error) {
	if err := validateDepartmentName(name); err != nil {
		return nil, err
	}
	return &Department{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              strings.TrimSpace(name),
		Description:       strings.TrimSpace(description),
		Status:            DepartmentStatusActive,
	}, nil
}

// Update updates the department's name and description
func (d *Department) Update(name, description string) error {
	if err := validateDepartmentName(name); err != nil {
		return err
	}
	d.Name = strings.TrimSpace(name)
	d.Description = strings.TrimSpace(description)
	d.Touch()
	d.IncrementVersion()
	return nil
}

// Activate activates the department
func (d *Department) Activate() error {
	if d.Status == DepartmentStatusActive {
		return shared.NewDomainError("ALREADY_ACTIVE", "Department is already active")
	}
	d.Status = DepartmentStatusActive
	d.Touch()
	d.IncrementVersion()
	return nil
}

// Deactivate deactivates the department
func (d *Department) Deactivate() error {
	if d.Status == DepartmentStatusInactive {
		return shared.NewDomainError("ALREADY_INACTIVE", "Department is already inactive")
	}
	d.Status = DepartmentStatusInactive
	d.Touch()
	d.IncrementVersion()
	return nil
}

// SameName reports whether name matches this department's name ignoring case
func (d *Department) SameName(name string) bool {
	return strings.EqualFold(strings.TrimSpace(name), d.Name)
}

func validateDepartmentName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Department name cannot be empty")
	}
	if len(name) > 100 {
		return shared.NewDomainError("INVALID_NAME", "Department name cannot exceed 100 characters")
	}
	return nil
}
