// Package service records and lists audit trail entries.
package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/coopfoods/ajomart/internal/audit/domain"
	"github.com/coopfoods/ajomart/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("audit.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Record(ctx context.Context, actor, action string, orderID, cycleID, deliveryBranchID snowflake.ID, detail string) error {
	entry := domain.Entry{
		ID:               s.genID.Generate(),
		Actor:            actor,
		Action:           action,
		OrderID:          orderID,
		CycleID:          cycleID,
		DeliveryBranchID: deliveryBranchID,
		Detail:           detail,
		CreatedAt:        time.Now().UTC(),
	}
	if err := s.repo.Insert(ctx, s.db, &entry); err != nil {
		s.log.Error("audit write failed",
			zap.String("action", action),
			zap.Int64("order_id", int64(orderID)),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (s *Service) List(ctx context.Context, filter domain.ListFilter, p pagination.Pagination) ([]domain.Entry, *pagination.PageInfo, error) {
	if p.PageSize <= 0 {
		p.PageSize = 50
	}

	rows, err := s.repo.List(ctx, s.db, filter, p)
	if err != nil {
		return nil, nil, err
	}

	pageInfo := pagination.BuildCursorPageInfo(rows, int32(p.PageSize), func(e *domain.Entry) string {
		token, _ := pagination.EncodeCursor(pagination.Cursor{ID: e.ID.String()})
		return token
	})

	if len(rows) > p.PageSize {
		rows = rows[:p.PageSize]
	}
	entries := make([]domain.Entry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, *row)
	}
	return entries, pageInfo, nil
}
