// Package domain defines member credit exposure and eligibility types.
//
// Exposure and eligibility are derived values. They are recomputed from the
// data store on every request and never persisted or cached; a stale figure
// here would let a member bypass their limit.
package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	memberdomain "github.com/coopfoods/ajomart/internal/member/domain"
	"gorm.io/gorm"
)

// Exposure is the open financial commitment of a member: the sum of
// total_amount over live (PENDING/POSTED/DELIVERED) orders per payment
// option. Cash orders carry no credit exposure and are excluded, as are
// cancelled orders whose hold is released.
type Exposure struct {
	Savings int64 `json:"savings"`
	Loan    int64 `json:"loan"`
}

// Balances are the member balance fields the engine reads. All kobo.
type Balances struct {
	Savings     int64
	Loans       int64
	GlobalLimit int64
}

// Snapshot is the eligibility computed for one request. It is returned to
// the caller for display and audit but never stored.
type Snapshot struct {
	SavingsEligible  int64    `json:"savings_eligible"`
	LoanEligible     int64    `json:"loan_eligible"`
	OutstandingLoans int64    `json:"outstanding_loans"`
	Exposure         Exposure `json:"exposure"`
	Policy           string   `json:"policy"`
}

var ErrUnknownPolicy = errors.New("unknown_eligibility_policy")

type Service interface {
	// ComputeExposure aggregates live-order totals for the member.
	ComputeExposure(ctx context.Context, memberID snowflake.ID) (Exposure, error)
	// ComputeExposureTx is ComputeExposure on the caller's transaction.
	ComputeExposureTx(ctx context.Context, tx *gorm.DB, memberID snowflake.ID) (Exposure, error)

	// ComputeSnapshot derives the full eligibility snapshot for a member.
	ComputeSnapshot(ctx context.Context, member memberdomain.Member) (Snapshot, error)
	// ComputeSnapshotTx runs on the caller's transaction so placement sees
	// exposure consistent with the rows it is about to write.
	ComputeSnapshotTx(ctx context.Context, tx *gorm.DB, member memberdomain.Member) (Snapshot, error)
}
