// Package domain contains order types and the lifecycle contract.
package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
)

// Order statuses. Transitions are monotonic: PENDING -> POSTED -> DELIVERED,
// PENDING -> CANCELLED. Only PENDING and CANCELLED orders may be deleted.
const (
	StatusPending   = "PENDING"
	StatusPosted    = "POSTED"
	StatusDelivered = "DELIVERED"
	StatusCancelled = "CANCELLED"
)

// Payment options. SAVINGS and LOAN count toward credit exposure; CASH
// carries no limit check.
const (
	PaymentSavings = "SAVINGS"
	PaymentLoan    = "LOAN"
	PaymentCash    = "CASH"
)

func ValidPaymentOption(option string) bool {
	switch option {
	case PaymentSavings, PaymentLoan, PaymentCash:
		return true
	default:
		return false
	}
}

// Order is an order header. Member identity fields are a point-in-time
// snapshot frozen at placement; they do not follow later member edits.
type Order struct {
	ID               snowflake.ID `gorm:"primaryKey" json:"id"`
	MemberID         snowflake.ID `gorm:"column:member_id;not null;index" json:"member_id"`
	MemberCode       string       `gorm:"column:member_code;type:text;not null" json:"member_code"`
	MemberName       string       `gorm:"column:member_name;type:text;not null" json:"member_name"`
	MemberCategory   string       `gorm:"column:member_category;type:text" json:"member_category"`
	HomeBranchID     snowflake.ID `gorm:"column:home_branch_id;not null" json:"home_branch_id"`
	DeliveryBranchID snowflake.ID `gorm:"column:delivery_branch_id;not null;index" json:"delivery_branch_id"`
	DepartmentID     snowflake.ID `gorm:"column:department_id;not null" json:"department_id"`
	CycleID          snowflake.ID `gorm:"column:cycle_id;index" json:"cycle_id"`
	PaymentOption    string       `gorm:"column:payment_option;type:text;not null" json:"payment_option"`
	TotalAmount      int64        `gorm:"column:total_amount;not null" json:"total_amount"`
	Status           string       `gorm:"type:text;not null;index" json:"status"`
	AdminNote        *string      `gorm:"column:admin_note;type:text" json:"admin_note,omitempty"`
	CancelReason     *string      `gorm:"column:cancel_reason;type:text" json:"cancel_reason,omitempty"`
	PostedBy         *string      `gorm:"column:posted_by;type:text" json:"posted_by,omitempty"`
	PostedAt         *time.Time   `gorm:"column:posted_at" json:"posted_at,omitempty"`
	DeliveredBy      *string      `gorm:"column:delivered_by;type:text" json:"delivered_by,omitempty"`
	DeliveredAt      *time.Time   `gorm:"column:delivered_at" json:"delivered_at,omitempty"`
	CreatedAt        time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt        time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	Lines []OrderLine `gorm:"-" json:"lines,omitempty"`
}

// TableName sets the database table name.
func (Order) TableName() string { return "orders" }

// OrderLine is one priced line of an order. UnitPrice is frozen at write
// time and never recomputed, even if the branch price row changes later.
type OrderLine struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	OrderID   snowflake.ID `gorm:"column:order_id;not null;index" json:"order_id"`
	ItemID    snowflake.ID `gorm:"column:item_id;not null" json:"item_id"`
	PriceID   snowflake.ID `gorm:"column:price_id;not null" json:"price_id"`
	SKU       string       `gorm:"type:text;not null" json:"sku"`
	ItemName  string       `gorm:"column:item_name;type:text;not null" json:"item_name"`
	Qty       int64        `gorm:"not null" json:"qty"`
	UnitPrice int64        `gorm:"column:unit_price;not null" json:"unit_price"`
	Amount    int64        `gorm:"not null" json:"amount"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (OrderLine) TableName() string { return "order_lines" }

var (
	ErrValidation            = errors.New("validation_error")
	ErrOrderNotFound         = errors.New("order_not_found")
	ErrInvalidPaymentOption  = errors.New("invalid_payment_option")
	ErrSavingsBlockedByLoans = errors.New("savings_blocked_by_loans")
	ErrStateConflict         = errors.New("state_conflict")
	ErrDeleteNotAllowed      = errors.New("delete_not_allowed")
)

// LimitError reports a rejected order with the computed limit and the
// attempted total, so the caller can show both.
type LimitError struct {
	Option    string
	Limit     int64
	Attempted int64
}

func (e *LimitError) Error() string {
	switch e.Option {
	case PaymentSavings:
		return fmt.Sprintf("exceeds_savings_limit: limit %d attempted %d", e.Limit, e.Attempted)
	default:
		return fmt.Sprintf("exceeds_loan_limit: limit %d attempted %d", e.Limit, e.Attempted)
	}
}

// ProcedureError is a structured failure reason returned by one of the
// stored procedures. It is surfaced verbatim and never retried.
type ProcedureError struct {
	Op     string
	Reason string
}

func (e *ProcedureError) Error() string {
	return fmt.Sprintf("%s failed: %s", e.Op, e.Reason)
}
