package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	FindItemBySKU(ctx context.Context, db *gorm.DB, sku string) (*Item, error)
	FindActivePrice(ctx context.Context, db *gorm.DB, branchID, itemID snowflake.ID) (*BranchItemPrice, error)
	ListItems(ctx context.Context, db *gorm.DB) ([]*Item, error)
	ListActivePrices(ctx context.Context, db *gorm.DB, branchID snowflake.ID) ([]*BranchItemPrice, error)
	UpsertPrice(ctx context.Context, db *gorm.DB, price *BranchItemPrice) error
}

type UpsertPriceRequest struct {
	BranchID  snowflake.ID
	SKU       string
	CycleID   snowflake.ID
	UnitPrice int64
}

type Service interface {
	// PriceLines resolves and prices lines against the given branch. Pure
	// read-then-compute; no side effects.
	PriceLines(ctx context.Context, branchID snowflake.ID, lines []LineInput) (PriceResult, error)
	// PriceLinesTx is PriceLines running on the caller's transaction, so
	// order placement prices against the same snapshot it commits with.
	PriceLinesTx(ctx context.Context, tx *gorm.DB, branchID snowflake.ID, lines []LineInput) (PriceResult, error)

	ListItems(ctx context.Context) ([]Item, error)
	ListPrices(ctx context.Context, branchID snowflake.ID) ([]BranchItemPrice, error)
	UpsertPrice(ctx context.Context, req UpsertPriceRequest) (BranchItemPrice, error)
}
