// Package domain contains catalog types: items and branch price rows.
package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

// Item is a stock-keeping unit sold through the cooperative.
type Item struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	SKU       string       `gorm:"type:text;not null;uniqueIndex" json:"sku"`
	Name      string       `gorm:"type:text;not null" json:"name"`
	Unit      string       `gorm:"type:text" json:"unit"`
	Category  string       `gorm:"type:text" json:"category"`
	ImageURL  *string      `gorm:"column:image_url;type:text" json:"image_url,omitempty"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Item) TableName() string { return "items" }

// BranchItemPrice is the unit price of an item at a branch for a pricing
// cycle. An item without an active price row is not orderable at that
// branch; absence is a hard error, never a zero-price default.
type BranchItemPrice struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	BranchID  snowflake.ID `gorm:"column:branch_id;not null;index:ix_branch_item,priority:1" json:"branch_id"`
	ItemID    snowflake.ID `gorm:"column:item_id;not null;index:ix_branch_item,priority:2" json:"item_id"`
	CycleID   snowflake.ID `gorm:"column:cycle_id;not null;index" json:"cycle_id"`
	UnitPrice int64        `gorm:"column:unit_price;not null" json:"unit_price"`
	IsActive  bool         `gorm:"column:is_active;not null;default:true" json:"is_active"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (BranchItemPrice) TableName() string { return "branch_item_prices" }

// LineInput is one requested order line, before pricing.
type LineInput struct {
	SKU string `json:"sku"`
	Qty int64  `json:"qty"`
}

// PricedLine is a line resolved against an item and its branch price.
// UnitPrice is frozen here and never recomputed after the order is written.
type PricedLine struct {
	ItemID    snowflake.ID `json:"item_id"`
	PriceID   snowflake.ID `json:"price_id"`
	SKU       string       `json:"sku"`
	ItemName  string       `json:"item_name"`
	Qty       int64        `json:"qty"`
	UnitPrice int64        `json:"unit_price"`
	Amount    int64        `json:"amount"`
}

// PriceResult is the full pricing of a line set at one branch.
type PriceResult struct {
	Lines   []PricedLine `json:"lines"`
	Total   int64        `json:"total"`
	CycleID snowflake.ID `json:"cycle_id"`
}

var (
	ErrEmptyLines      = errors.New("empty_lines")
	ErrInvalidQuantity = errors.New("invalid_quantity")
	ErrItemNotFound    = errors.New("item_not_found")
	ErrPriceNotFound   = errors.New("price_not_found")
	ErrInvalidSKU      = errors.New("invalid_sku")
	ErrInvalidPrice    = errors.New("invalid_price")
)
