package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopdesk/backend/internal/domain/identity"
	"github.com/shopdesk/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	identity.PasswordCost = bcrypt.MinCost
}

func createUser(t *testing.T, repo *GormUserRepository, username string, role identity.Role) *identity.User {
	t.Helper()
	u, err := identity.NewUser(username, username+"@shop.test", "User "+username, "secret123", role)
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), u))
	return u
}

func TestGormUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewGormUserRepository(newTestDB(t))

	alice := createUser(t, repo, "alice", identity.RoleAdmin)
	createUser(t, repo, "bob", identity.RoleEmployee)
	createUser(t, repo, "carol", identity.RoleEmployee)

	t.Run("find by login ignores case", func(t *testing.T) {
		u, err := repo.FindByLogin(ctx, "ALICE@shop.test")
		require.NoError(t, err)
		assert.Equal(t, alice.ID, u.ID)

		u, err = repo.FindByLogin(ctx, " Alice ")
		require.NoError(t, err)
		assert.Equal(t, alice.ID, u.ID)

		_, err = repo.FindByLogin(ctx, "nobody")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("exists checks honour exclusion", func(t *testing.T) {
		exists, err := repo.ExistsByUsername(ctx, "ALICE", nil)
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = repo.ExistsByEmail(ctx, "alice@shop.test", &alice.ID)
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("list with role filter and paging", func(t *testing.T) {
		filter := shared.DefaultFilter().With("role", string(identity.RoleEmployee))
		filter.PageSize = 1
		filter.OrderBy = "username"
		filter.OrderDir = "asc"
		users, total, err := repo.FindAll(ctx, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		require.Len(t, users, 1)
		assert.Equal(t, "bob", users[0].Username)
	})

	t.Run("touch last seen", func(t *testing.T) {
		at := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
		require.NoError(t, repo.TouchLastSeen(ctx, alice.ID, at))
		u, err := repo.FindByID(ctx, alice.ID)
		require.NoError(t, err)
		require.NotNil(t, u.LastSeenAt)
		assert.True(t, at.Equal(u.LastSeenAt.UTC()))
	})

	t.Run("count by role and delete", func(t *testing.T) {
		n, err := repo.CountByRole(ctx, identity.RoleEmployee)
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)

		assert.ErrorIs(t, repo.Delete(ctx, uuid.New()), shared.ErrNotFound)
	})
}

func TestGormDepartmentRepository(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	users := NewGormUserRepository(db)
	repo := NewGormDepartmentRepository(db)

	sales, err := identity.NewDepartment("Sales", "Front of house")
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, sales))

	t.Run("duplicate names are detected ignoring case", func(t *testing.T) {
		exists, err := repo.ExistsByName(ctx, "  sALES ", nil)
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = repo.ExistsByName(ctx, "sales", &sales.ID)
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("membership", func(t *testing.T) {
		u := createUser(t, users, "dave", identity.RoleEmployee)
		require.NoError(t, repo.AddMember(ctx, &identity.UserDepartment{UserID: u.ID, DepartmentID: sales.ID, AssignedAt: time.Now()}))

		ok, err := repo.IsMember(ctx, sales.ID, u.ID)
		require.NoError(t, err)
		assert.True(t, ok)

		members, err := repo.FindMembers(ctx, sales.ID)
		require.NoError(t, err)
		require.Len(t, members, 1)
		assert.Equal(t, "dave", members[0].Username)

		depts, err := repo.FindDepartmentsOfUser(ctx, u.ID)
		require.NoError(t, err)
		require.Len(t, depts, 1)

		require.NoError(t, repo.RemoveMember(ctx, sales.ID, u.ID))
		assert.ErrorIs(t, repo.RemoveMember(ctx, sales.ID, u.ID), shared.ErrNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, sales.ID))
		_, err := repo.FindByID(ctx, sales.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}
