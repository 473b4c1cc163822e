package repository

import (
	"context"
	"strconv"

	"github.com/coopfoods/ajomart/internal/audit/domain"
	"github.com/coopfoods/ajomart/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, entry *domain.Entry) error {
	return db.WithContext(ctx).Create(entry).Error
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter, p pagination.Pagination) ([]*domain.Entry, error) {
	stmt := db.WithContext(ctx).Model(&domain.Entry{})
	if filter.OrderID != 0 {
		stmt = stmt.Where("order_id = ?", filter.OrderID)
	}
	if filter.Action != "" {
		stmt = stmt.Where("action = ?", filter.Action)
	}

	if p.PageToken != "" {
		cursor, err := pagination.DecodeCursor(p.PageToken)
		if err != nil {
			return nil, err
		}
		if cursor.ID != "" {
			id, err := strconv.ParseInt(cursor.ID, 10, 64)
			if err != nil {
				return nil, err
			}
			stmt = stmt.Where("id < ?", id)
		}
	}

	// one extra row to detect a following page
	var entries []*domain.Entry
	err := stmt.Order("id desc").Limit(p.PageSize + 1).Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}
