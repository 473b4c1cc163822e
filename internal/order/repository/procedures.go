package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/coopfoods/ajomart/internal/order/domain"
	"gorm.io/gorm"
)

// procedures invokes the Postgres functions that own status transitions.
// Each function runs its whole transition atomically and reports either
// success or a reason string.
type procedures struct{}

func ProvideProcedures() domain.Procedures {
	return &procedures{}
}

type procedureResult struct {
	Success bool    `gorm:"column:success"`
	Error   *string `gorm:"column:error"`
}

func (p *procedures) Post(ctx context.Context, db *gorm.DB, orderID snowflake.ID, actor string) error {
	return p.call(ctx, db, "post_order", orderID, actor)
}

func (p *procedures) Cancel(ctx context.Context, db *gorm.DB, orderID snowflake.ID, actor string) error {
	return p.call(ctx, db, "cancel_order", orderID, actor)
}

func (p *procedures) Deliver(ctx context.Context, db *gorm.DB, orderID snowflake.ID, actor string) error {
	return p.call(ctx, db, "deliver_order", orderID, actor)
}

func (p *procedures) call(ctx context.Context, db *gorm.DB, name string, orderID snowflake.ID, actor string) error {
	var result procedureResult
	err := db.WithContext(ctx).
		Raw(`SELECT success, error FROM `+name+`(?, ?)`, orderID, actor).
		Scan(&result).Error
	if err != nil {
		return err
	}
	if !result.Success {
		reason := "unknown"
		if result.Error != nil && *result.Error != "" {
			reason = *result.Error
		}
		return &domain.ProcedureError{Op: name, Reason: reason}
	}
	return nil
}
