// Package domain contains branch and department types.
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Branch is a cooperative location. It can be both a member's home branch
// and the delivery branch of an order; pricing is always scoped to the
// delivery branch.
type Branch struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	Code      string       `gorm:"type:text;not null;uniqueIndex" json:"code"`
	Name      string       `gorm:"type:text;not null" json:"name"`
	IsActive  bool         `gorm:"column:is_active;not null;default:true" json:"is_active"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Branch) TableName() string { return "branches" }

// Department groups members for distribution runs.
type Department struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	Name      string       `gorm:"type:text;not null;uniqueIndex" json:"name"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (Department) TableName() string { return "departments" }

var (
	ErrBranchNotFound     = errors.New("branch_not_found")
	ErrDepartmentNotFound = errors.New("department_not_found")
	ErrInvalidBranchCode  = errors.New("invalid_branch_code")
)

type Repository interface {
	FindByCode(ctx context.Context, db *gorm.DB, code string) (*Branch, error)
	FindDepartmentByName(ctx context.Context, db *gorm.DB, name string) (*Department, error)
	ListBranches(ctx context.Context, db *gorm.DB) ([]*Branch, error)
	ListDepartments(ctx context.Context, db *gorm.DB) ([]*Department, error)
}

type Service interface {
	GetByCode(ctx context.Context, code string) (Branch, error)
	ListBranches(ctx context.Context) ([]Branch, error)
	ListDepartments(ctx context.Context) ([]Department, error)
}
