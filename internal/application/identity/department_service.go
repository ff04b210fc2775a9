package identity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopdesk/backend/internal/domain/identity"
	"github.com/shopdesk/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// DepartmentService manages departments and their members
type DepartmentService struct {
	deptRepo identity.DepartmentRepository
	userRepo identity.UserRepository
	logger   *zap.Logger
}

// NewDepartmentService creates a new department service
func NewDepartmentService(
	deptRepo identity.DepartmentRepository,
	userRepo identity.UserRepository,
	logger *zap.Logger,
) *DepartmentService {
	return &DepartmentService{
		deptRepo: deptRepo,
		userRepo: userRepo,
		logger:   logger,
	}
}

// Create creates a department. Names are unique ignoring case.
func (s *DepartmentService) Create(ctx context.Context, req CreateDepartmentRequest) (*DepartmentResponse, error) {
	if err := s.checkName(ctx, req.Name, nil); err != nil {
		return nil, err
	}
	dept, err := identity.NewDepartment(req.Name, req.Description)
	if err != nil {
		return nil, err
	}
	if err := s.deptRepo.Create(ctx, dept); err != nil {
		s.logger.Error("Failed to create department", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to create department")
	}
	s.logger.Info("Department created", zap.String("department_id", dept.ID.String()), zap.String("name", dept.Name))
	resp := ToDepartmentResponse(dept)
	return &resp, nil
}

// GetByID retrieves a department
func (s *DepartmentService) GetByID(ctx context.Context, id uuid.UUID) (*DepartmentResponse, error) {
	dept, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToDepartmentResponse(dept)
	return &resp, nil
}

// List returns departments page by page
func (s *DepartmentService) List(ctx context.Context, f DepartmentListFilter) (*shared.Paginated[DepartmentResponse], error) {
	filter := shared.DefaultFilter()
	filter.Search = f.Search
	filter.OrderBy = "name"
	filter.OrderDir = "asc"
	if f.Page > 0 {
		filter.Page = f.Page
	}
	if f.PageSize > 0 {
		filter.PageSize = f.PageSize
	}
	if f.Status != "" {
		filter = filter.With("status", f.Status)
	}

	depts, total, err := s.deptRepo.FindAll(ctx, filter)
	if err != nil {
		s.logger.Error("Failed to list departments", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to list departments")
	}
	items := make([]DepartmentResponse, len(depts))
	for i := range depts {
		items[i] = ToDepartmentResponse(&depts[i])
	}
	result := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &result, nil
}

// Update renames or re-describes a department and optionally changes its status
func (s *DepartmentService) Update(ctx context.Context, id uuid.UUID, req UpdateDepartmentRequest) (*DepartmentResponse, error) {
	dept, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !dept.SameName(req.Name) {
		if err := s.checkName(ctx, req.Name, &id); err != nil {
			return nil, err
		}
	}
	if err := dept.Update(req.Name, req.Description); err != nil {
		return nil, err
	}
	switch identity.DepartmentStatus(req.Status) {
	case identity.DepartmentStatusActive:
		if dept.Status != identity.DepartmentStatusActive {
			_ = dept.Activate()
		}
	case identity.DepartmentStatusInactive:
		if dept.Status != identity.DepartmentStatusInactive {
			_ = dept.Deactivate()
		}
	}

	if err := s.deptRepo.Update(ctx, dept); err != nil {
		s.logger.Error("Failed to update department", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to update department")
	}
	resp := ToDepartmentResponse(dept)
	return &resp, nil
}

// Delete removes a department and its memberships
func (s *DepartmentService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.find(ctx, id); err != nil {
		return err
	}
	if err := s.deptRepo.Delete(ctx, id); err != nil {
		s.logger.Error("Failed to delete department", zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to delete department")
	}
	s.logger.Info("Department deleted", zap.String("department_id", id.String()))
	return nil
}

// AssignUser adds a user to a department
func (s *DepartmentService) AssignUser(ctx context.Context, departmentID, userID uuid.UUID) error {
	dept, err := s.find(ctx, departmentID)
	if err != nil {
		return err
	}
	if dept.Status != identity.DepartmentStatusActive {
		return shared.NewDomainError("DEPARTMENT_INACTIVE", "Cannot assign users to an inactive department")
	}
	if _, err := s.userRepo.FindByID(ctx, userID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("USER_NOT_FOUND", "User not found")
		}
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to find user")
	}
	member, err := s.deptRepo.IsMember(ctx, departmentID, userID)
	if err != nil {
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to check membership")
	}
	if member {
		return shared.NewDomainError("ALREADY_MEMBER", "User is already in this department")
	}
	if err := s.deptRepo.AddMember(ctx, &identity.UserDepartment{
		UserID:       userID,
		DepartmentID: departmentID,
		AssignedAt:   time.Now(),
	}); err != nil {
		s.logger.Error("Failed to assign user", zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to assign user")
	}
	s.logger.Info("User assigned to department",
		zap.String("department_id", departmentID.String()),
		zap.String("user_id", userID.String()))
	return nil
}

// RemoveUser removes a user from a department
func (s *DepartmentService) RemoveUser(ctx context.Context, departmentID, userID uuid.UUID) error {
	member, err := s.deptRepo.IsMember(ctx, departmentID, userID)
	if err != nil {
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to check membership")
	}
	if !member {
		return shared.NewDomainError("NOT_MEMBER", "User is not in this department")
	}
	if err := s.deptRepo.RemoveMember(ctx, departmentID, userID); err != nil {
		s.logger.Error("Failed to remove user", zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to remove user")
	}
	return nil
}

// ListMembers returns the users in a department
func (s *DepartmentService) ListMembers(ctx context.Context, departmentID uuid.UUID) ([]UserResponse, error) {
	if _, err := s.find(ctx, departmentID); err != nil {
		return nil, err
	}
	users, err := s.deptRepo.FindMembers(ctx, departmentID)
	if err != nil {
		s.logger.Error("Failed to list members", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to list members")
	}
	out := make([]UserResponse, len(users))
	for i := range users {
		out[i] = ToUserResponse(&users[i])
	}
	return out, nil
}

// ListForUser returns the departments a user belongs to
func (s *DepartmentService) ListForUser(ctx context.Context, userID uuid.UUID) ([]DepartmentResponse, error) {
	depts, err := s.deptRepo.FindDepartmentsOfUser(ctx, userID)
	if err != nil {
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to list departments")
	}
	out := make([]DepartmentResponse, len(depts))
	for i := range depts {
		out[i] = ToDepartmentResponse(&depts[i])
	}
	return out, nil
}

func (s *DepartmentService) find(ctx context.Context, id uuid.UUID) (*identity.Department, error) {
	dept, err := s.deptRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("DEPARTMENT_NOT_FOUND", "Department not found")
		}
		s.logger.Error("Failed to find department", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to find department")
	}
	return dept, nil
}

func (s *DepartmentService) checkName(ctx context.Context, name string, excludeID *uuid.UUID) error {
	exists, err := s.deptRepo.ExistsByName(ctx, name, excludeID)
	if err != nil {
		s.logger.Error("Failed to check department name", zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to check department name")
	}
	if exists {
		return shared.NewDomainError("ALREADY_EXISTS", "Department \""+name+"\" already exists")
	}
	return nil
}
