package repository

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/coopfoods/ajomart/internal/member/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Member, error) {
	var member domain.Member
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM members WHERE id = ?`, id,
	).Scan(&member).Error
	if err != nil {
		return nil, err
	}
	if member.ID == 0 {
		return nil, nil
	}
	return &member, nil
}

func (r *repo) FindByCode(ctx context.Context, db *gorm.DB, code string) (*domain.Member, error) {
	var member domain.Member
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM members WHERE member_code = ?`,
		normalizeCode(code),
	).Scan(&member).Error
	if err != nil {
		return nil, err
	}
	if member.ID == 0 {
		return nil, nil
	}
	return &member, nil
}

func (r *repo) FindByCodeForUpdate(ctx context.Context, tx *gorm.DB, code string) (*domain.Member, error) {
	var member domain.Member
	err := tx.WithContext(ctx).Raw(
		`SELECT * FROM members WHERE member_code = ? FOR UPDATE`,
		normalizeCode(code),
	).Scan(&member).Error
	if err != nil {
		return nil, err
	}
	if member.ID == 0 {
		return nil, nil
	}
	return &member, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, branchID snowflake.ID) ([]*domain.Member, error) {
	var members []*domain.Member
	stmt := db.WithContext(ctx).Model(&domain.Member{})
	if branchID != 0 {
		stmt = stmt.Where("branch_id = ?", branchID)
	}
	err := stmt.Order("member_code asc").Find(&members).Error
	if err != nil {
		return nil, err
	}
	return members, nil
}

func (r *repo) UpdatePINHash(ctx context.Context, db *gorm.DB, id snowflake.ID, hash string) error {
	return db.WithContext(ctx).Exec(
		`UPDATE members SET pin_hash = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		hash, id,
	).Error
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
