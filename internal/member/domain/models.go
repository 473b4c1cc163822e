// Package domain contains core types for cooperative members.
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Member is a cooperative member. Balance fields are maintained by the
// external membership system and are authoritative inputs here; the portal
// never writes them.
type Member struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	MemberCode  string       `gorm:"column:member_code;type:text;not null;uniqueIndex" json:"member_code"`
	Name        string       `gorm:"type:text;not null" json:"name"`
	Category    string       `gorm:"type:text" json:"category"`
	Savings     int64        `gorm:"not null;default:0" json:"savings"`
	Loans       int64        `gorm:"not null;default:0" json:"loans"`
	GlobalLimit int64        `gorm:"column:global_limit;not null;default:0" json:"global_limit"`
	BranchID    snowflake.ID `gorm:"column:branch_id;not null;index" json:"branch_id"`
	PINHash     *string      `gorm:"column:pin_hash;type:text" json:"-"`
	IsActive    bool         `gorm:"column:is_active;not null;default:true" json:"is_active"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Member) TableName() string { return "members" }

// Snapshot is the denormalized member identity frozen onto an order.
type Snapshot struct {
	MemberCode string `json:"member_code"`
	Name       string `json:"name"`
	Category   string `json:"category"`
}

func (m Member) Snapshot() Snapshot {
	return Snapshot{MemberCode: m.MemberCode, Name: m.Name, Category: m.Category}
}

var (
	ErrNotFound          = errors.New("member_not_found")
	ErrInvalidMemberCode = errors.New("invalid_member_code")
	ErrInactive          = errors.New("member_inactive")
)

type Repository interface {
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Member, error)
	FindByCode(ctx context.Context, db *gorm.DB, code string) (*Member, error)
	// FindByCodeForUpdate takes a row lock on the member for the duration of
	// the enclosing transaction. Placement serializes on this lock.
	FindByCodeForUpdate(ctx context.Context, tx *gorm.DB, code string) (*Member, error)
	List(ctx context.Context, db *gorm.DB, branchID snowflake.ID) ([]*Member, error)
	UpdatePINHash(ctx context.Context, db *gorm.DB, id snowflake.ID, hash string) error
}

type Service interface {
	Get(ctx context.Context, code string) (Member, error)
	GetByID(ctx context.Context, id snowflake.ID) (Member, error)
	List(ctx context.Context, branchID snowflake.ID) ([]Member, error)
}
