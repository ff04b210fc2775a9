package identity

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopdesk/backend/internal/domain/identity"
	"github.com/shopdesk/backend/internal/domain/shared"
	"github.com/shopdesk/backend/internal/infrastructure/auth"
	"github.com/shopdesk/backend/internal/infrastructure/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestUserService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("success sends welcome", func(t *testing.T) {
		repo := new(MockUserRepository)
		notifier := new(MockAccountNotifier)
		svc := NewUserService(repo, nil, notifier, nil, UserServiceConfig{}, zap.NewNop())

		repo.On("ExistsByUsername", ctx, "dave", (*uuid.UUID)(nil)).Return(false, nil)
		repo.On("ExistsByEmail", ctx, "dave@shop.test", (*uuid.UUID)(nil)).Return(false, nil)
		repo.On("Create", ctx, mock.AnythingOfType("*identity.User")).Return(nil)
		notifier.On("SendWelcome", ctx, mock.AnythingOfType("*identity.User"), "secret123").Return(nil)

		resp, err := svc.Create(ctx, CreateUserRequest{
			Username:    "dave",
			Email:       "dave@shop.test",
			FullName:    "Dave Kamau",
			Phone:       "+254700000001",
			Password:    "secret123",
			Role:        "employee",
			SendWelcome: true,
		})
		require.NoError(t, err)
		assert.Equal(t, "dave", resp.Username)
		assert.Equal(t, "+254700000001", resp.Phone)
		assert.Equal(t, "active", resp.Status)
		repo.AssertExpectations(t)
		notifier.AssertExpectations(t)
	})

	t.Run("duplicate username", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc := NewUserService(repo, nil, nil, nil, UserServiceConfig{}, zap.NewNop())
		repo.On("ExistsByUsername", ctx, "dave", (*uuid.UUID)(nil)).Return(true, nil)

		_, err := svc.Create(ctx, CreateUserRequest{
			Username: "dave", Email: "dave@shop.test", FullName: "Dave", Password: "secret123", Role: "employee",
		})
		assert.Equal(t, "USERNAME_EXISTS", shared.CodeOf(err))
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("weak password", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc := NewUserService(repo, nil, nil, nil, UserServiceConfig{}, zap.NewNop())
		repo.On("ExistsByUsername", ctx, mock.Anything, mock.Anything).Return(false, nil)
		repo.On("ExistsByEmail", ctx, mock.Anything, mock.Anything).Return(false, nil)

		_, err := svc.Create(ctx, CreateUserRequest{
			Username: "erin", Email: "erin@shop.test", FullName: "Erin", Password: "onlyletters", Role: "employee",
		})
		assert.Error(t, err)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestUserService_ListReportsOnlineStatus(t *testing.T) {
	ctx := context.Background()
	repo := new(MockUserRepository)
	presence := cache.NewInMemoryPresenceStore()
	svc := NewUserService(repo, presence, nil, nil, UserServiceConfig{OnlineThreshold: 5 * time.Minute}, zap.NewNop())

	online := newTestUser("online", identity.RoleEmployee)
	idle := newTestUser("idle", identity.RoleEmployee)
	require.NoError(t, presence.Touch(ctx, online.ID, time.Now().Add(-time.Minute)))
	require.NoError(t, presence.Touch(ctx, idle.ID, time.Now().Add(-time.Hour)))

	repo.On("FindAll", ctx, mock.MatchedBy(func(f shared.Filter) bool {
		return f.Filters["role"] == "employee" && f.Page == 1
	})).Return([]identity.User{*online, *idle}, int64(2), nil)

	result, err := svc.List(ctx, UserListFilter{Role: "employee"})
	require.NoError(t, err)
	require.Len(t, result.Items, 2)
	assert.True(t, result.Items[0].IsOnline)
	assert.False(t, result.Items[1].IsOnline)
	assert.NotNil(t, result.Items[1].LastSeenAt)
	assert.Equal(t, int64(2), result.Total)
}

func TestUserService_Deactivate(t *testing.T) {
	ctx := context.Background()

	t.Run("cannot deactivate self", func(t *testing.T) {
		svc := NewUserService(new(MockUserRepository), nil, nil, nil, UserServiceConfig{}, zap.NewNop())
		id := uuid.New()
		_, err := svc.Deactivate(ctx, id, id)
		assert.Equal(t, "CANNOT_DEACTIVATE_SELF", shared.CodeOf(err))
	})

	t.Run("last admin kept", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc := NewUserService(repo, nil, nil, nil, UserServiceConfig{}, zap.NewNop())
		admin := newTestUser("root", identity.RoleAdmin)
		repo.On("FindByID", ctx, admin.ID).Return(admin, nil)
		repo.On("CountByRole", ctx, identity.RoleAdmin).Return(int64(1), nil)

		_, err := svc.Deactivate(ctx, admin.ID, uuid.New())
		assert.Equal(t, "LAST_ADMIN", shared.CodeOf(err))
		assert.True(t, admin.IsActive())
	})

	t.Run("employee revoked", func(t *testing.T) {
		repo := new(MockUserRepository)
		blacklist := auth.NewInMemoryTokenBlacklist()
		svc := NewUserService(repo, nil, nil, blacklist, UserServiceConfig{}, zap.NewNop())
		emp := newTestUser("frank", identity.RoleEmployee)
		repo.On("FindByID", ctx, emp.ID).Return(emp, nil)
		repo.On("Update", ctx, emp).Return(nil)

		resp, err := svc.Deactivate(ctx, emp.ID, uuid.New())
		require.NoError(t, err)
		assert.Equal(t, "inactive", resp.Status)

		revoked, err := blacklist.IsUserRevoked(ctx, emp.ID.String(), time.Now().Add(-time.Minute))
		require.NoError(t, err)
		assert.True(t, revoked)
	})
}

func TestUserService_ResetPasswordGenerates(t *testing.T) {
	ctx := context.Background()
	repo := new(MockUserRepository)
	notifier := new(MockAccountNotifier)
	svc := NewUserService(repo, nil, notifier, nil, UserServiceConfig{}, zap.NewNop())
	user := newTestUser("gina", identity.RoleEmployee)

	repo.On("FindByID", ctx, user.ID).Return(user, nil)
	repo.On("Update", ctx, user).Return(nil)
	notifier.On("SendPasswordReset", ctx, user, mock.AnythingOfType("string")).Return(nil)

	password, err := svc.ResetPassword(ctx, user.ID, ResetPasswordRequest{Notify: true})
	require.NoError(t, err)
	assert.Len(t, password, 12)
	assert.True(t, user.VerifyPassword(password))
	assert.False(t, user.VerifyPassword("secret123"))
	notifier.AssertExpectations(t)
}

func TestGeneratePassword(t *testing.T) {
	for i := 0; i < 20; i++ {
		p, err := GeneratePassword(10)
		require.NoError(t, err)
		assert.Len(t, p, 10)
		assert.True(t, hasLetterAndDigit([]byte(p)))
	}
	p, err := GeneratePassword(3)
	require.NoError(t, err)
	assert.Len(t, p, 8)
}

func TestUserService_TouchPresenceThrottlesPersistence(t *testing.T) {
	ctx := context.Background()
	repo := new(MockUserRepository)
	presence := cache.NewInMemoryPresenceStore()
	svc := NewUserService(repo, presence, nil, nil, UserServiceConfig{}, zap.NewNop())
	userID := uuid.New()
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	repo.On("TouchLastSeen", ctx, userID, mock.AnythingOfType("time.Time")).Return(nil)

	svc.TouchPresence(ctx, userID)
	now = now.Add(20 * time.Second)
	svc.TouchPresence(ctx, userID)
	now = now.Add(2 * time.Minute)
	svc.TouchPresence(ctx, userID)

	repo.AssertNumberOfCalls(t, "TouchLastSeen", 2)
	seen, err := presence.LastSeen(ctx, userID)
	require.NoError(t, err)
	require.NotNil(t, seen)
	assert.Equal(t, now, *seen)
}
