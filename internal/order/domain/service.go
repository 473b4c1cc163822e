package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/coopfoods/ajomart/internal/catalog/domain"
	eligibilitydomain "github.com/coopfoods/ajomart/internal/eligibility/domain"
	"gorm.io/gorm"
)

// PlaceOrderRequest is the typed placement input. It is validated at the
// boundary; nothing malformed reaches pricing or eligibility.
type PlaceOrderRequest struct {
	MemberCode         string                     `json:"member_code"`
	DeliveryBranchCode string                     `json:"delivery_branch_code"`
	DepartmentName     string                     `json:"department_name"`
	PaymentOption      string                     `json:"payment_option"`
	Lines              []catalogdomain.LineInput  `json:"lines"`
}

// PlaceOrderResult carries the eligibility snapshot that authorized the
// order, for client display and audit.
type PlaceOrderResult struct {
	OrderID       snowflake.ID               `json:"order_id"`
	Total         int64                      `json:"total"`
	PaymentOption string                     `json:"payment_option"`
	CycleID       snowflake.ID               `json:"cycle_id"`
	Eligibility   eligibilitydomain.Snapshot `json:"eligibility"`
}

// BulkPostResult is the outcome for one order in a bulk post. The batch
// has no all-or-nothing semantics.
type BulkPostResult struct {
	OrderID snowflake.ID `json:"order_id"`
	OK      bool         `json:"ok"`
	Error   string       `json:"error,omitempty"`
}

type Repository interface {
	// Insert writes the header and all lines on the caller's transaction.
	Insert(ctx context.Context, tx *gorm.DB, order *Order, lines []OrderLine) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Order, error)
	// FindByIDForUpdate row-locks the order for the enclosing transaction.
	FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id snowflake.ID) (*Order, error)
	FindLines(ctx context.Context, db *gorm.DB, orderID snowflake.ID) ([]OrderLine, error)
	ListByMember(ctx context.Context, db *gorm.DB, memberID snowflake.ID) ([]*Order, error)
	// ReplaceLines deletes all existing lines, inserts the new set and
	// overwrites the header total, all on the caller's transaction.
	ReplaceLines(ctx context.Context, tx *gorm.DB, orderID snowflake.ID, lines []OrderLine, total int64) error
	Delete(ctx context.Context, tx *gorm.DB, id snowflake.ID) error
	SetPostMeta(ctx context.Context, db *gorm.DB, id snowflake.ID, actor string, note *string) error
	SetCancelMeta(ctx context.Context, db *gorm.DB, id snowflake.ID, reason string) error
	SetDeliveryMeta(ctx context.Context, db *gorm.DB, id snowflake.ID, actor string) error
}

// Procedures is the contract over the stored procedures that own status
// transitions. Each call is an opaque transactional black box returning
// success or a structured reason.
type Procedures interface {
	Post(ctx context.Context, db *gorm.DB, orderID snowflake.ID, actor string) error
	Cancel(ctx context.Context, db *gorm.DB, orderID snowflake.ID, actor string) error
	Deliver(ctx context.Context, db *gorm.DB, orderID snowflake.ID, actor string) error
}

// ReportInvalidator drops cached report aggregates after a lifecycle
// transition changes the underlying order rows.
type ReportInvalidator interface {
	InvalidateBranch(ctx context.Context, branchID snowflake.ID)
}

type Service interface {
	PlaceOrder(ctx context.Context, req PlaceOrderRequest) (PlaceOrderResult, error)
	Get(ctx context.Context, id snowflake.ID) (Order, error)
	ListByMember(ctx context.Context, memberID snowflake.ID) ([]Order, error)

	// EditLines re-prices and replaces all lines of a PENDING order and
	// returns the new total.
	EditLines(ctx context.Context, id snowflake.ID, actor string, lines []catalogdomain.LineInput) (int64, error)
	Post(ctx context.Context, id snowflake.ID, actor, note string) error
	Cancel(ctx context.Context, id snowflake.ID, actor, reason string) error
	Deliver(ctx context.Context, id snowflake.ID, actor string) error
	Delete(ctx context.Context, id snowflake.ID, actor string) error
	BulkPost(ctx context.Context, ids []snowflake.ID, actor string) []BulkPostResult
}
