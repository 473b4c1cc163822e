package repository

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/coopfoods/ajomart/internal/catalog/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindItemBySKU(ctx context.Context, db *gorm.DB, sku string) (*domain.Item, error) {
	var item domain.Item
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM items WHERE sku = ?`,
		strings.ToUpper(strings.TrimSpace(sku)),
	).Scan(&item).Error
	if err != nil {
		return nil, err
	}
	if item.ID == 0 {
		return nil, nil
	}
	return &item, nil
}

func (r *repo) FindActivePrice(ctx context.Context, db *gorm.DB, branchID, itemID snowflake.ID) (*domain.BranchItemPrice, error) {
	var price domain.BranchItemPrice
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM branch_item_prices
		 WHERE branch_id = ? AND item_id = ? AND is_active = true
		 ORDER BY cycle_id DESC LIMIT 1`,
		branchID, itemID,
	).Scan(&price).Error
	if err != nil {
		return nil, err
	}
	if price.ID == 0 {
		return nil, nil
	}
	return &price, nil
}

func (r *repo) ListItems(ctx context.Context, db *gorm.DB) ([]*domain.Item, error) {
	var items []*domain.Item
	err := db.WithContext(ctx).Model(&domain.Item{}).
		Order("sku asc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) ListActivePrices(ctx context.Context, db *gorm.DB, branchID snowflake.ID) ([]*domain.BranchItemPrice, error) {
	var prices []*domain.BranchItemPrice
	err := db.WithContext(ctx).Model(&domain.BranchItemPrice{}).
		Where("branch_id = ? AND is_active = true", branchID).
		Order("item_id asc").
		Find(&prices).Error
	if err != nil {
		return nil, err
	}
	return prices, nil
}

func (r *repo) UpsertPrice(ctx context.Context, db *gorm.DB, price *domain.BranchItemPrice) error {
	// Retire the previous active row first so historical orders keep their
	// original price reference.
	err := db.WithContext(ctx).Exec(
		`UPDATE branch_item_prices SET is_active = false, updated_at = CURRENT_TIMESTAMP
		 WHERE branch_id = ? AND item_id = ? AND is_active = true`,
		price.BranchID, price.ItemID,
	).Error
	if err != nil {
		return err
	}

	return db.WithContext(ctx).Exec(
		`INSERT INTO branch_item_prices (id, branch_id, item_id, cycle_id, unit_price, is_active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		price.ID,
		price.BranchID,
		price.ItemID,
		price.CycleID,
		price.UnitPrice,
		price.IsActive,
		price.CreatedAt,
		price.UpdatedAt,
	).Error
}
