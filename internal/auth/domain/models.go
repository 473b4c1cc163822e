// Package domain contains session types for PIN authentication.
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

const (
	RoleMember = "member"
	RoleAdmin  = "admin"
)

// Session is a server-side session. Only a SHA-256 hash of the opaque
// token is stored; the raw token exists only in the member's cookie.
type Session struct {
	ID        snowflake.ID   `gorm:"primaryKey" json:"id"`
	MemberID  snowflake.ID   `gorm:"column:member_id;not null;index" json:"member_id"`
	TokenHash string         `gorm:"column:token_hash;type:text;not null;uniqueIndex" json:"-"`
	Roles     pq.StringArray `gorm:"type:text[]" json:"roles"`
	ExpiresAt time.Time      `gorm:"column:expires_at;not null" json:"expires_at"`
	CreatedAt time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (Session) TableName() string { return "sessions" }

func (s Session) HasRole(role string) bool {
	for _, r := range s.Roles {
		if r == role {
			return true
		}
	}
	return false
}

var (
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrSessionNotFound    = errors.New("session_not_found")
	ErrSessionExpired     = errors.New("session_expired")
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, session *Session) error
	FindByTokenHash(ctx context.Context, db *gorm.DB, tokenHash string) (*Session, error)
	DeleteByTokenHash(ctx context.Context, db *gorm.DB, tokenHash string) error
	DeleteExpired(ctx context.Context, db *gorm.DB) error
}

type LoginResult struct {
	Token      string
	Session    Session
	MemberCode string
	MemberName string
}

type Service interface {
	// Login verifies the member's PIN and opens a session. Verification is
	// constant time; unknown member and wrong PIN are indistinguishable.
	Login(ctx context.Context, memberCode, rawPIN string) (LoginResult, error)
	Logout(ctx context.Context, token string) error
	Authenticate(ctx context.Context, token string) (Session, error)
	SetPIN(ctx context.Context, memberCode, rawPIN string) error
}
