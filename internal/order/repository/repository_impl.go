package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/coopfoods/ajomart/internal/order/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, tx *gorm.DB, order *domain.Order, lines []domain.OrderLine) error {
	if err := tx.WithContext(ctx).Create(order).Error; err != nil {
		return err
	}
	return tx.WithContext(ctx).CreateInBatches(lines, 100).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Order, error) {
	var order domain.Order
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM orders WHERE id = ?`, id,
	).Scan(&order).Error
	if err != nil {
		return nil, err
	}
	if order.ID == 0 {
		return nil, nil
	}
	return &order, nil
}

func (r *repo) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id snowflake.ID) (*domain.Order, error) {
	var order domain.Order
	err := tx.WithContext(ctx).Raw(
		`SELECT * FROM orders WHERE id = ? FOR UPDATE`, id,
	).Scan(&order).Error
	if err != nil {
		return nil, err
	}
	if order.ID == 0 {
		return nil, nil
	}
	return &order, nil
}

func (r *repo) FindLines(ctx context.Context, db *gorm.DB, orderID snowflake.ID) ([]domain.OrderLine, error) {
	var lines []domain.OrderLine
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM order_lines WHERE order_id = ? ORDER BY id`, orderID,
	).Scan(&lines).Error
	if err != nil {
		return nil, err
	}
	return lines, nil
}

func (r *repo) ListByMember(ctx context.Context, db *gorm.DB, memberID snowflake.ID) ([]*domain.Order, error) {
	var orders []*domain.Order
	err := db.WithContext(ctx).
		Model(&domain.Order{}).
		Where("member_id = ?", memberID).
		Order("created_at desc, id desc").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *repo) ReplaceLines(ctx context.Context, tx *gorm.DB, orderID snowflake.ID, lines []domain.OrderLine, total int64) error {
	if err := tx.WithContext(ctx).Exec(
		`DELETE FROM order_lines WHERE order_id = ?`, orderID,
	).Error; err != nil {
		return err
	}
	if err := tx.WithContext(ctx).CreateInBatches(lines, 100).Error; err != nil {
		return err
	}
	return tx.WithContext(ctx).Exec(
		`UPDATE orders SET total_amount = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		total, orderID,
	).Error
}

func (r *repo) Delete(ctx context.Context, tx *gorm.DB, id snowflake.ID) error {
	if err := tx.WithContext(ctx).Exec(
		`DELETE FROM order_lines WHERE order_id = ?`, id,
	).Error; err != nil {
		return err
	}
	return tx.WithContext(ctx).Exec(
		`DELETE FROM orders WHERE id = ?`, id,
	).Error
}

func (r *repo) SetPostMeta(ctx context.Context, db *gorm.DB, id snowflake.ID, actor string, note *string) error {
	return db.WithContext(ctx).Exec(
		`UPDATE orders
		 SET posted_by = ?, posted_at = CURRENT_TIMESTAMP, admin_note = COALESCE(?, admin_note),
		     updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		actor, note, id,
	).Error
}

func (r *repo) SetCancelMeta(ctx context.Context, db *gorm.DB, id snowflake.ID, reason string) error {
	return db.WithContext(ctx).Exec(
		`UPDATE orders SET cancel_reason = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		reason, id,
	).Error
}

func (r *repo) SetDeliveryMeta(ctx context.Context, db *gorm.DB, id snowflake.ID, actor string) error {
	return db.WithContext(ctx).Exec(
		`UPDATE orders
		 SET delivered_by = ?, delivered_at = CURRENT_TIMESTAMP, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		actor, id,
	).Error
}
