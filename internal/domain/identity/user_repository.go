package identity

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopdesk/backend/internal/domain/shared"
)

// UserRepository defines the interface for user persistence
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	Update(ctx context.Context, user *User) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]User, error)
	// FindByLogin finds a user by username or email, case-insensitively
	FindByLogin(ctx context.Context, login string) (*User, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]User, int64, error)
	ExistsByUsername(ctx context.Context, username string, excludeID *uuid.UUID) (bool, error)
	ExistsByEmail(ctx context.Context, email string, excludeID *uuid.UUID) (bool, error)
	TouchLastSeen(ctx context.Context, id uuid.UUID, at time.Time) error
	CountByRole(ctx context.Context, role Role) (int64, error)
}

// DepartmentRepository defines the interface for department persistence
type DepartmentRepository interface {
	Create(ctx context.Context, dept *Department) error
	Update(ctx context.Context, dept *Department) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*Department, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Department, int64, error)
	// ExistsByName checks for a department with the same name ignoring case
	ExistsByName(ctx context.Context, name string, excludeID *uuid.UUID) (bool, error)
	AddMember(ctx context.Context, member *UserDepartment) error
	RemoveMember(ctx context.Context, departmentID, userID uuid.UUID) error
	IsMember(ctx context.Context, departmentID, userID uuid.UUID) (bool, error)
	FindMembers(ctx context.Context, departmentID uuid.UUID) ([]User, error)
	FindDepartmentsOfUser(ctx context.Context, userID uuid.UUID) ([]Department, error)
}
