package repository

import (
	"context"
	"strings"

	"github.com/coopfoods/ajomart/internal/branch/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindByCode(ctx context.Context, db *gorm.DB, code string) (*domain.Branch, error) {
	var branch domain.Branch
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM branches WHERE code = ? AND is_active = true`,
		strings.ToUpper(strings.TrimSpace(code)),
	).Scan(&branch).Error
	if err != nil {
		return nil, err
	}
	if branch.ID == 0 {
		return nil, nil
	}
	return &branch, nil
}

func (r *repo) FindDepartmentByName(ctx context.Context, db *gorm.DB, name string) (*domain.Department, error) {
	var department domain.Department
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM departments WHERE name = ?`,
		strings.TrimSpace(name),
	).Scan(&department).Error
	if err != nil {
		return nil, err
	}
	if department.ID == 0 {
		return nil, nil
	}
	return &department, nil
}

func (r *repo) ListBranches(ctx context.Context, db *gorm.DB) ([]*domain.Branch, error) {
	var branches []*domain.Branch
	err := db.WithContext(ctx).Model(&domain.Branch{}).
		Where("is_active = true").
		Order("code asc").
		Find(&branches).Error
	if err != nil {
		return nil, err
	}
	return branches, nil
}

func (r *repo) ListDepartments(ctx context.Context, db *gorm.DB) ([]*domain.Department, error) {
	var departments []*domain.Department
	err := db.WithContext(ctx).Model(&domain.Department{}).
		Order("name asc").
		Find(&departments).Error
	if err != nil {
		return nil, err
	}
	return departments, nil
}
