package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/coopfoods/ajomart/internal/auth/domain"
	"github.com/coopfoods/ajomart/internal/auth/pin"
	authrepo "github.com/coopfoods/ajomart/internal/auth/repository"
	"github.com/coopfoods/ajomart/internal/config"
	memberrepo "github.com/coopfoods/ajomart/internal/member/repository"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

func setupAuthTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.Exec(`
		CREATE TABLE members (
			id INTEGER PRIMARY KEY,
			member_code TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			category TEXT,
			savings INTEGER NOT NULL DEFAULT 0,
			loans INTEGER NOT NULL DEFAULT 0,
			global_limit INTEGER NOT NULL DEFAULT 0,
			branch_id INTEGER NOT NULL,
			pin_hash TEXT,
			is_active INTEGER NOT NULL DEFAULT 1,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`).Error)
	require.NoError(t, db.Exec(`
		CREATE TABLE sessions (
			id INTEGER PRIMARY KEY,
			member_id INTEGER NOT NULL,
			token_hash TEXT NOT NULL UNIQUE,
			roles TEXT,
			expires_at TIMESTAMP NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`).Error)
	return db
}

func seedAuthMember(t *testing.T, db *gorm.DB, id int64, code, category, rawPIN string, active bool) {
	t.Helper()

	hash, err := pin.Hash(rawPIN)
	require.NoError(t, err)
	require.NoError(t, db.Exec(
		`INSERT INTO members (id, member_code, name, category, branch_id, pin_hash, is_active)
		 VALUES (?, ?, ?, ?, 1, ?, ?)`,
		id, code, "Member "+code, category, hash, active,
	).Error)
}

func newAuthService(t *testing.T, db *gorm.DB, ttl time.Duration) domain.Service {
	t.Helper()

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return New(Params{
		Config:     config.Config{SessionTTL: ttl},
		DB:         db,
		Log:        zaptest.NewLogger(t),
		GenID:      node,
		Repo:       authrepo.Provide(),
		MemberRepo: memberrepo.Provide(),
	})
}

func TestLogin(t *testing.T) {
	db := setupAuthTestDB(t)
	svc := newAuthService(t, db, time.Hour)
	ctx := context.Background()

	seedAuthMember(t, db, 1, "M-0001", "", "4321", true)
	seedAuthMember(t, db, 2, "M-0002", "ADMIN", "9876", true)
	seedAuthMember(t, db, 3, "M-0003", "", "1111", false)

	t.Run("valid pin opens a session", func(t *testing.T) {
		result, err := svc.Login(ctx, "M-0001", "4321")
		require.NoError(t, err)
		assert.NotEmpty(t, result.Token)
		assert.Equal(t, "M-0001", result.MemberCode)
		assert.True(t, result.Session.HasRole(domain.RoleMember))
		assert.False(t, result.Session.HasRole(domain.RoleAdmin))

		// the raw token is never stored
		var count int64
		require.NoError(t, db.Raw(
			`SELECT COUNT(*) FROM sessions WHERE token_hash = ?`, result.Token,
		).Scan(&count).Error)
		assert.Zero(t, count)
	})

	t.Run("admin category carries the admin role", func(t *testing.T) {
		result, err := svc.Login(ctx, "M-0002", "9876")
		require.NoError(t, err)
		assert.True(t, result.Session.HasRole(domain.RoleAdmin))
	})

	t.Run("wrong pin", func(t *testing.T) {
		_, err := svc.Login(ctx, "M-0001", "0000")
		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	})

	t.Run("unknown member looks like wrong pin", func(t *testing.T) {
		_, err := svc.Login(ctx, "M-9999", "4321")
		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	})

	t.Run("inactive member cannot log in", func(t *testing.T) {
		_, err := svc.Login(ctx, "M-0003", "1111")
		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	})
}

func TestAuthenticate(t *testing.T) {
	db := setupAuthTestDB(t)
	ctx := context.Background()

	seedAuthMember(t, db, 1, "M-0001", "", "4321", true)

	t.Run("live session round trips", func(t *testing.T) {
		svc := newAuthService(t, db, time.Hour)
		result, err := svc.Login(ctx, "M-0001", "4321")
		require.NoError(t, err)

		session, err := svc.Authenticate(ctx, result.Token)
		require.NoError(t, err)
		assert.Equal(t, result.Session.ID, session.ID)
		assert.Equal(t, result.Session.MemberID, session.MemberID)
	})

	t.Run("garbage token", func(t *testing.T) {
		svc := newAuthService(t, db, time.Hour)
		_, err := svc.Authenticate(ctx, "not-a-token")
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("expired session is rejected and removed", func(t *testing.T) {
		svc := newAuthService(t, db, -time.Minute)
		result, err := svc.Login(ctx, "M-0001", "4321")
		require.NoError(t, err)

		_, err = svc.Authenticate(ctx, result.Token)
		assert.ErrorIs(t, err, domain.ErrSessionExpired)

		// second attempt finds nothing at all
		_, err = svc.Authenticate(ctx, result.Token)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})
}

func TestLogout(t *testing.T) {
	db := setupAuthTestDB(t)
	svc := newAuthService(t, db, time.Hour)
	ctx := context.Background()

	seedAuthMember(t, db, 1, "M-0001", "", "4321", true)

	result, err := svc.Login(ctx, "M-0001", "4321")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, result.Token))

	_, err = svc.Authenticate(ctx, result.Token)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	// logging out twice is harmless
	require.NoError(t, svc.Logout(ctx, result.Token))
}

func TestSetPIN(t *testing.T) {
	db := setupAuthTestDB(t)
	svc := newAuthService(t, db, time.Hour)
	ctx := context.Background()

	seedAuthMember(t, db, 1, "M-0001", "", "4321", true)

	require.NoError(t, svc.SetPIN(ctx, "M-0001", "5555"))

	_, err := svc.Login(ctx, "M-0001", "4321")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	result, err := svc.Login(ctx, "M-0001", "5555")
	require.NoError(t, err)
	assert.Equal(t, "M-0001", result.MemberCode)

	t.Run("short pin", func(t *testing.T) {
		assert.Error(t, svc.SetPIN(ctx, "M-0001", "99"))
	})

	t.Run("unknown member", func(t *testing.T) {
		assert.Error(t, svc.SetPIN(ctx, "M-9999", "5555"))
	})
}
