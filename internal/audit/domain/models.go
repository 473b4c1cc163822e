// Package domain contains the append-only audit trail types.
package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/coopfoods/ajomart/pkg/db/pagination"
	"gorm.io/gorm"
)

// Entry is one audit record. Entries are append-only and never mutated;
// every order lifecycle transition writes one.
type Entry struct {
	ID               snowflake.ID  `gorm:"primaryKey" json:"id"`
	Actor            string        `gorm:"type:text;not null" json:"actor"`
	Action           string        `gorm:"type:text;not null;index" json:"action"`
	OrderID          snowflake.ID  `gorm:"column:order_id;not null;index" json:"order_id"`
	CycleID          snowflake.ID  `gorm:"column:cycle_id" json:"cycle_id"`
	DeliveryBranchID snowflake.ID  `gorm:"column:delivery_branch_id" json:"delivery_branch_id"`
	Detail           string        `gorm:"type:text" json:"detail"`
	CreatedAt        time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (Entry) TableName() string { return "audit_logs" }

// Lifecycle actions recorded against orders.
const (
	ActionOrderPlace     = "order.place"
	ActionOrderEditLines = "order.edit_lines"
	ActionOrderPost      = "order.post"
	ActionOrderCancel    = "order.cancel"
	ActionOrderDeliver   = "order.deliver"
	ActionOrderDelete    = "order.delete"
)

type ListFilter struct {
	OrderID snowflake.ID
	Action  string
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, entry *Entry) error
	List(ctx context.Context, db *gorm.DB, filter ListFilter, p pagination.Pagination) ([]*Entry, error)
}

type Service interface {
	// Record appends one entry. Callers treat failure as non-fatal: an
	// audit write error never fails the transition it describes.
	Record(ctx context.Context, actor, action string, orderID, cycleID, deliveryBranchID snowflake.ID, detail string) error
	List(ctx context.Context, filter ListFilter, p pagination.Pagination) ([]Entry, *pagination.PageInfo, error)
}
