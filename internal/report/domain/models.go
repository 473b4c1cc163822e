// Package domain contains report aggregate types.
package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
)

// BranchSummaryRow is one (status, payment option) bucket of a branch's
// orders.
type BranchSummaryRow struct {
	Status        string `gorm:"column:status" json:"status"`
	PaymentOption string `gorm:"column:payment_option" json:"payment_option"`
	Orders        int64  `gorm:"column:orders" json:"orders"`
	Total         int64  `gorm:"column:total" json:"total"`
}

// BranchSummary aggregates a delivery branch's orders, optionally scoped
// to one pricing cycle. Summaries are cacheable; they are display data,
// never an input to eligibility.
type BranchSummary struct {
	BranchID    snowflake.ID       `json:"branch_id"`
	CycleID     snowflake.ID       `json:"cycle_id,omitempty"`
	Rows        []BranchSummaryRow `json:"rows"`
	GeneratedAt time.Time          `json:"generated_at"`
}

type Service interface {
	BranchSummary(ctx context.Context, branchID, cycleID snowflake.ID) (BranchSummary, error)
	// InvalidateBranch drops cached summaries after order rows changed.
	InvalidateBranch(ctx context.Context, branchID snowflake.ID)
}
