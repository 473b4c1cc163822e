package repository

import (
	"context"

	"github.com/coopfoods/ajomart/internal/auth/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, session *domain.Session) error {
	return db.WithContext(ctx).Create(session).Error
}

func (r *repo) FindByTokenHash(ctx context.Context, db *gorm.DB, tokenHash string) (*domain.Session, error) {
	var session domain.Session
	err := db.WithContext(ctx).
		Where("token_hash = ?", tokenHash).
		Limit(1).
		Find(&session).Error
	if err != nil {
		return nil, err
	}
	if session.ID == 0 {
		return nil, nil
	}
	return &session, nil
}

func (r *repo) DeleteByTokenHash(ctx context.Context, db *gorm.DB, tokenHash string) error {
	return db.WithContext(ctx).Exec(
		`DELETE FROM sessions WHERE token_hash = ?`, tokenHash,
	).Error
}

func (r *repo) DeleteExpired(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).Exec(
		`DELETE FROM sessions WHERE expires_at < CURRENT_TIMESTAMP`,
	).Error
}
