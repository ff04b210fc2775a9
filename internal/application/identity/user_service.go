package identity

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/shopdesk/backend/internal/domain/identity"
	"github.com/shopdesk/backend/internal/domain/shared"
	"github.com/shopdesk/backend/internal/infrastructure/auth"
	"go.uber.org/zap"
)

// AccountNotifier emails account lifecycle messages. Failures are logged by
// the caller and never fail the operation.
type AccountNotifier interface {
	SendWelcome(ctx context.Context, user *identity.User, password string) error
	SendPasswordReset(ctx context.Context, user *identity.User, password string) error
}

// UserServiceConfig configures online status reporting
type UserServiceConfig struct {
	OnlineThreshold time.Duration
	// SessionTTL bounds how long revocations of a deactivated user are kept
	SessionTTL time.Duration
}

// UserService handles staff account management
type UserService struct {
	userRepo  identity.UserRepository
	presence  identity.PresenceStore
	notifier  AccountNotifier
	blacklist auth.TokenBlacklist
	config    UserServiceConfig
	logger    *zap.Logger
	now       func() time.Time
}

// NewUserService creates a new user service. presence, notifier and
// blacklist may be nil.
func NewUserService(
	userRepo identity.UserRepository,
	presence identity.PresenceStore,
	notifier AccountNotifier,
	blacklist auth.TokenBlacklist,
	config UserServiceConfig,
	logger *zap.Logger,
) *UserService {
	if config.OnlineThreshold <= 0 {
		config.OnlineThreshold = 5 * time.Minute
	}
	return &UserService{
		userRepo:  userRepo,
		presence:  presence,
		notifier:  notifier,
		blacklist: blacklist,
		config:    config,
		logger:    logger,
		now:       time.Now,
	}
}

// Create creates a new staff account
func (s *UserService) Create(ctx context.Context, req CreateUserRequest) (*UserResponse, error) {
	s.logger.Info("Creating new user", zap.String("username", req.Username), zap.String("role", req.Role))

	if err := s.checkUnique(ctx, req.Username, req.Email, nil); err != nil {
		return nil, err
	}

	user, err := identity.NewUser(req.Username, req.Email, req.FullName, req.Password, identity.Role(req.Role))
	if err != nil {
		return nil, err
	}
	if req.Phone != "" {
		if err := user.UpdateProfile("", "", req.Phone); err != nil {
			return nil, err
		}
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		s.logger.Error("Failed to create user", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to create user")
	}

	if req.SendWelcome && s.notifier != nil {
		if err := s.notifier.SendWelcome(ctx, user, req.Password); err != nil {
			s.logger.Warn("Failed to send welcome email", zap.String("user_id", user.ID.String()), zap.Error(err))
		}
	}

	s.logger.Info("User created successfully",
		zap.String("user_id", user.ID.String()),
		zap.String("username", user.Username))

	resp := ToUserResponse(user)
	return &resp, nil
}

// GetByID retrieves a user by ID
func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*UserResponse, error) {
	user, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToUserResponse(user)
	s.fillPresence(ctx, []*UserResponse{&resp})
	return &resp, nil
}

// List retrieves a paginated list of users with their online status
func (s *UserService) List(ctx context.Context, f UserListFilter) (*shared.Paginated[UserResponse], error) {
	filter := shared.DefaultFilter()
	filter.Search = f.Search
	if f.Page > 0 {
		filter.Page = f.Page
	}
	if f.PageSize > 0 {
		filter.PageSize = f.PageSize
	}
	if f.Role != "" {
		filter = filter.With("role", f.Role)
	}
	if f.Status != "" {
		filter = filter.With("status", f.Status)
	}

	users, total, err := s.userRepo.FindAll(ctx, filter)
	if err != nil {
		s.logger.Error("Failed to list users", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to list users")
	}

	items := make([]UserResponse, len(users))
	ptrs := make([]*UserResponse, len(users))
	for i := range users {
		items[i] = ToUserResponse(&users[i])
		ptrs[i] = &items[i]
	}
	s.fillPresence(ctx, ptrs)

	result := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &result, nil
}

// Update updates a user's profile and role
func (s *UserService) Update(ctx context.Context, id uuid.UUID, req UpdateUserRequest) (*UserResponse, error) {
	user, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Email != "" {
		if err := s.checkUnique(ctx, "", req.Email, &id); err != nil {
			return nil, err
		}
	}
	phone := req.Phone
	if phone == "" {
		phone = user.Phone
	}
	if err := user.UpdateProfile(req.Email, req.FullName, phone); err != nil {
		return nil, err
	}
	if req.Role != "" && identity.Role(req.Role) != user.Role {
		if user.Role == identity.RoleAdmin {
			if err := s.ensureAnotherAdmin(ctx); err != nil {
				return nil, err
			}
		}
		if err := user.SetRole(identity.Role(req.Role)); err != nil {
			return nil, err
		}
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		s.logger.Error("Failed to update user", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to update user")
	}

	s.logger.Info("User updated", zap.String("user_id", id.String()))
	resp := ToUserResponse(user)
	return &resp, nil
}

// Activate re-enables a deactivated account
func (s *UserService) Activate(ctx context.Context, id uuid.UUID) (*UserResponse, error) {
	user, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := user.Activate(); err != nil {
		return nil, err
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		s.logger.Error("Failed to activate user", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to activate user")
	}
	s.logger.Info("User activated", zap.String("user_id", id.String()))
	resp := ToUserResponse(user)
	return &resp, nil
}

// Deactivate disables an account and revokes its sessions. An admin cannot
// deactivate their own account.
func (s *UserService) Deactivate(ctx context.Context, id, actorID uuid.UUID) (*UserResponse, error) {
	if id == actorID {
		return nil, shared.NewDomainError("CANNOT_DEACTIVATE_SELF", "You cannot deactivate your own account")
	}
	user, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.IsAdmin() {
		if err := s.ensureAnotherAdmin(ctx); err != nil {
			return nil, err
		}
	}
	if err := user.Deactivate(); err != nil {
		return nil, err
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		s.logger.Error("Failed to deactivate user", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to deactivate user")
	}
	s.revokeSessions(ctx, user.ID)

	s.logger.Info("User deactivated", zap.String("user_id", id.String()))
	resp := ToUserResponse(user)
	return &resp, nil
}

// ResetPassword sets a new password for a user. When no password is given a
// random one is generated and returned.
func (s *UserService) ResetPassword(ctx context.Context, id uuid.UUID, req ResetPasswordRequest) (string, error) {
	user, err := s.find(ctx, id)
	if err != nil {
		return "", err
	}

	password := req.Password
	if password == "" {
		if password, err = GeneratePassword(12); err != nil {
			return "", shared.NewDomainError("INTERNAL_ERROR", "Failed to generate password")
		}
	}
	if err := user.SetPassword(password); err != nil {
		return "", err
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		s.logger.Error("Failed to reset password", zap.Error(err))
		return "", shared.NewDomainError("INTERNAL_ERROR", "Failed to reset password")
	}
	s.revokeSessions(ctx, user.ID)

	if req.Notify && s.notifier != nil {
		if err := s.notifier.SendPasswordReset(ctx, user, password); err != nil {
			s.logger.Warn("Failed to send password reset email", zap.String("user_id", id.String()), zap.Error(err))
		}
	}

	s.logger.Info("Password reset", zap.String("user_id", id.String()))
	return password, nil
}

// Delete removes a staff account
func (s *UserService) Delete(ctx context.Context, id, actorID uuid.UUID) error {
	if id == actorID {
		return shared.NewDomainError("CANNOT_DELETE_SELF", "You cannot delete your own account")
	}
	user, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if user.IsAdmin() {
		if err := s.ensureAnotherAdmin(ctx); err != nil {
			return err
		}
	}
	if err := s.userRepo.Delete(ctx, id); err != nil {
		s.logger.Error("Failed to delete user", zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to delete user")
	}
	s.revokeSessions(ctx, id)
	s.logger.Info("User deleted", zap.String("user_id", id.String()))
	return nil
}

// lastSeenPersistInterval throttles writes of users.last_seen_at
const lastSeenPersistInterval = time.Minute

// TouchPresence records activity in the presence store and persists it to
// the user row at most once per lastSeenPersistInterval
func (s *UserService) TouchPresence(ctx context.Context, id uuid.UUID) {
	now := s.now()
	persist := true
	if s.presence != nil {
		if prev, err := s.presence.LastSeen(ctx, id); err == nil && prev != nil && now.Sub(*prev) < lastSeenPersistInterval {
			persist = false
		}
		if err := s.presence.Touch(ctx, id, now); err != nil {
			s.logger.Debug("Failed to record presence", zap.Error(err))
		}
	}
	if !persist {
		return
	}
	if err := s.userRepo.TouchLastSeen(ctx, id, now); err != nil {
		s.logger.Debug("Failed to record last seen", zap.Error(err))
	}
}

func (s *UserService) find(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("USER_NOT_FOUND", "User not found")
		}
		s.logger.Error("Failed to find user", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to find user")
	}
	return user, nil
}

func (s *UserService) checkUnique(ctx context.Context, username, email string, excludeID *uuid.UUID) error {
	if username != "" {
		exists, err := s.userRepo.ExistsByUsername(ctx, username, excludeID)
		if err != nil {
			s.logger.Error("Failed to check username existence", zap.Error(err))
			return shared.NewDomainError("INTERNAL_ERROR", "Failed to check username availability")
		}
		if exists {
			return shared.NewDomainError("USERNAME_EXISTS", "Username already exists")
		}
	}
	if email != "" {
		exists, err := s.userRepo.ExistsByEmail(ctx, email, excludeID)
		if err != nil {
			s.logger.Error("Failed to check email existence", zap.Error(err))
			return shared.NewDomainError("INTERNAL_ERROR", "Failed to check email availability")
		}
		if exists {
			return shared.NewDomainError("EMAIL_EXISTS", "Email already exists")
		}
	}
	return nil
}

// ensureAnotherAdmin guards against removing the last administrator
func (s *UserService) ensureAnotherAdmin(ctx context.Context) error {
	count, err := s.userRepo.CountByRole(ctx, identity.RoleAdmin)
	if err != nil {
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to count administrators")
	}
	if count <= 1 {
		return shared.NewDomainError("LAST_ADMIN", "At least one administrator must remain")
	}
	return nil
}

func (s *UserService) revokeSessions(ctx context.Context, id uuid.UUID) {
	if s.blacklist == nil {
		return
	}
	ttl := s.config.SessionTTL
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	if err := s.blacklist.RevokeUser(ctx, id.String(), ttl); err != nil {
		s.logger.Warn("Failed to revoke user sessions", zap.String("user_id", id.String()), zap.Error(err))
	}
}

// fillPresence sets IsOnline and LastSeenAt from the presence store, falling
// back to the persisted last-seen time
func (s *UserService) fillPresence(ctx context.Context, users []*UserResponse) {
	if len(users) == 0 {
		return
	}
	var seen map[uuid.UUID]time.Time
	if s.presence != nil {
		ids := make([]uuid.UUID, len(users))
		for i, u := range users {
			ids[i] = u.ID
		}
		var err error
		if seen, err = s.presence.LastSeenMany(ctx, ids); err != nil {
			s.logger.Debug("Failed to load presence", zap.Error(err))
		}
	}
	now := s.now()
	for _, u := range users {
		if t, ok := seen[u.ID]; ok {
			u.LastSeenAt = &t
		}
		u.IsOnline = identity.IsOnline(u.LastSeenAt, now, s.config.OnlineThreshold)
	}
}

const passwordAlphabet = "abcdefghjkmnpqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// GeneratePassword returns a random password of length n containing at least
// one letter and one digit
func GeneratePassword(n int) (string, error) {
	if n < 8 {
		n = 8
	}
	for {
		buf := make([]byte, n)
		for i := range buf {
			idx, err := rand.Int(rand.Reader, big.NewInt(int64(len(passwordAlphabet))))
			if err != nil {
				return "", err
			}
			buf[i] = passwordAlphabet[idx.Int64()]
		}
		if hasLetterAndDigit(buf) {
			return string(buf), nil
		}
	}
}

func hasLetterAndDigit(b []byte) bool {
	var letter, digit bool
	for _, c := range b {
		switch {
		case c >= '0' && c <= '9':
			digit = true
		default:
			letter = true
		}
	}
	return letter && digit
}
