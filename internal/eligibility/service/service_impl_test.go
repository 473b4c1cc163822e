package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/coopfoods/ajomart/internal/config"
	"github.com/coopfoods/ajomart/internal/eligibility/domain"
	memberdomain "github.com/coopfoods/ajomart/internal/member/domain"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.Exec(`
		CREATE TABLE orders (
			id INTEGER PRIMARY KEY,
			member_id INTEGER NOT NULL,
			status TEXT NOT NULL,
			payment_option TEXT NOT NULL,
			total_amount INTEGER NOT NULL
		)
	`).Error)
	return db
}

func seedOrder(t *testing.T, db *gorm.DB, id int64, memberID snowflake.ID, status, option string, total int64) {
	t.Helper()
	require.NoError(t, db.Exec(
		`INSERT INTO orders (id, member_id, status, payment_option, total_amount) VALUES (?, ?, ?, ?, ?)`,
		id, memberID, status, option, total,
	).Error)
}

func newTestService(t *testing.T, db *gorm.DB, policy string) domain.Service {
	t.Helper()

	svc, err := New(Params{
		Config: config.Config{EligibilityPolicy: policy},
		DB:     db,
		Log:    zaptest.NewLogger(t),
		Policy: config.NewPolicyConfigHolder(config.PolicyConfig{
			InterestRate: 0.13,
			SavingsRatio: 0.5,
			LoanMultiple: 5,
			LoanFacility: 30_000_000,
			LoanCap:      100_000_000,
			MaxLineQty:   10_000,
		}),
	})
	require.NoError(t, err)
	return svc
}

func TestComputeExposure(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(t, db, config.PolicyStrict)
	ctx := context.Background()

	memberID := snowflake.ID(1001)
	otherID := snowflake.ID(2002)

	seedOrder(t, db, 1, memberID, "PENDING", "SAVINGS", 500_000)
	seedOrder(t, db, 2, memberID, "POSTED", "SAVINGS", 250_000)
	seedOrder(t, db, 3, memberID, "DELIVERED", "LOAN", 1_000_000)
	seedOrder(t, db, 4, memberID, "PENDING", "LOAN", 300_000)
	// released and non-credit rows must not count
	seedOrder(t, db, 5, memberID, "CANCELLED", "SAVINGS", 9_000_000)
	seedOrder(t, db, 6, memberID, "PENDING", "CASH", 9_000_000)
	// another member entirely
	seedOrder(t, db, 7, otherID, "PENDING", "SAVINGS", 9_000_000)

	exp, err := svc.ComputeExposure(ctx, memberID)
	require.NoError(t, err)
	assert.Equal(t, domain.Exposure{Savings: 750_000, Loan: 1_300_000}, exp)

	t.Run("no live orders means zero exposure", func(t *testing.T) {
		exp, err := svc.ComputeExposure(ctx, snowflake.ID(3003))
		require.NoError(t, err)
		assert.Equal(t, domain.Exposure{}, exp)
	})
}

func TestComputeSnapshot(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	member := memberdomain.Member{
		ID:          snowflake.ID(1001),
		MemberCode:  "M-0001",
		Savings:     10_000_000,
		GlobalLimit: 80_000_000,
	}

	seedOrder(t, db, 1, member.ID, "PENDING", "SAVINGS", 1_500_000)

	t.Run("strict", func(t *testing.T) {
		svc := newTestService(t, db, config.PolicyStrict)
		snap, err := svc.ComputeSnapshot(ctx, member)
		require.NoError(t, err)

		assert.Equal(t, config.PolicyStrict, snap.Policy)
		assert.Equal(t, int64(3_500_000), snap.SavingsEligible)
		assert.Equal(t, int64(80_000_000), snap.LoanEligible)
		assert.Equal(t, int64(0), snap.OutstandingLoans)
		assert.Equal(t, domain.Exposure{Savings: 1_500_000}, snap.Exposure)
	})

	t.Run("facility", func(t *testing.T) {
		svc := newTestService(t, db, config.PolicyFacility)
		snap, err := svc.ComputeSnapshot(ctx, member)
		require.NoError(t, err)
		assert.Equal(t, config.PolicyFacility, snap.Policy)
		assert.Equal(t, int64(3_500_000), snap.SavingsEligible)
	})
}

func TestNewRejectsUnknownPolicy(t *testing.T) {
	_, err := New(Params{
		Config: config.Config{EligibilityPolicy: "lenient"},
		DB:     setupTestDB(t),
		Log:    zaptest.NewLogger(t),
		Policy: config.NewPolicyConfigHolder(config.DefaultPolicyConfig()),
	})
	assert.ErrorIs(t, err, domain.ErrUnknownPolicy)
}
