package hr

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEmployeeProfile(t *testing.T) {
	t.Run("normalizes employee number", func(t *testing.T) {
		p, err := NewEmployeeProfile(uuid.New(), " emp-001 ", "Cashier", time.Time{}, decimal.NewFromInt(30000))
		require.NoError(t, err)
		assert.Equal(t, "EMP-001", p.EmployeeNumber)
		assert.False(t, p.HireDate.IsZero())
	})

	t.Run("rejects negative salary", func(t *testing.T) {
		_, err := NewEmployeeProfile(uuid.New(), "EMP-1", "", time.Now(), decimal.NewFromInt(-1))
		assert.Error(t, err)
	})

	t.Run("rejects nil user", func(t *testing.T) {
		_, err := NewEmployeeProfile(uuid.Nil, "EMP-1", "", time.Now(), decimal.Zero)
		assert.Error(t, err)
	})
}

func TestPeriodRange(t *testing.T) {
	start, end, err := PeriodRange("2024-02")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), end)

	_, _, err = PeriodRange("2024-13")
	assert.Error(t, err)
	_, _, err = PeriodRange("24-01")
	assert.Error(t, err)
}

func TestEmployeeFine_Lifecycle(t *testing.T) {
	fine, err := NewEmployeeFine(uuid.New(), uuid.New(), decimal.NewFromInt(500), "Late", time.Time{})
	require.NoError(t, err)
	assert.Equal(t, FineStatusPending, fine.Status)

	require.NoError(t, fine.Waive())
	assert.Equal(t, FineStatusWaived, fine.Status)
	assert.Error(t, fine.Waive())
	assert.Error(t, fine.MarkDeducted())

	_, err = NewEmployeeFine(uuid.New(), uuid.New(), decimal.NewFromInt(500), "  ", time.Time{})
	assert.Error(t, err)
}

func TestEmployeeSalary_MarkPaid(t *testing.T) {
	salary, err := NewEmployeeSalary(uuid.New(), "2024-06", decimal.NewFromInt(40000), "")
	require.NoError(t, err)

	require.NoError(t, salary.MarkPaid(time.Now()))
	assert.True(t, salary.Paid)
	assert.NotNil(t, salary.PaidAt)
	assert.Error(t, salary.MarkPaid(time.Now()))
}

func TestComputePaySummary(t *testing.T) {
	userID := uuid.New()
	profile, err := NewEmployeeProfile(userID, "EMP-9", "Clerk", time.Now(), decimal.NewFromInt(30000))
	require.NoError(t, err)

	pending, _ := NewEmployeeFine(userID, uuid.New(), decimal.NewFromInt(1000), "Shortage", time.Now())
	waived, _ := NewEmployeeFine(userID, uuid.New(), decimal.NewFromInt(700), "Late", time.Now())
	require.NoError(t, waived.Waive())
	advance, _ := NewEmployeePayment(userID, decimal.NewFromInt(5000), "mpesa", "QK1", "", time.Now())

	t.Run("falls back to base salary", func(t *testing.T) {
		s := ComputePaySummary(profile, nil, []EmployeeFine{*pending, *waived}, []EmployeePayment{*advance}, "2024-06")
		assert.True(t, s.PendingFines.Equal(decimal.NewFromInt(1000)))
		assert.True(t, s.NetPayable.Equal(decimal.NewFromInt(24000)))
	})

	t.Run("uses salary entry when present", func(t *testing.T) {
		salary, _ := NewEmployeeSalary(userID, "2024-06", decimal.NewFromInt(32000), "")
		s := ComputePaySummary(profile, salary, []EmployeeFine{*pending}, nil, "2024-06")
		assert.True(t, s.NetPayable.Equal(decimal.NewFromInt(31000)))
	})
}
