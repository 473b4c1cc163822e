package service

import (
	"context"
	"strings"

	"github.com/coopfoods/ajomart/internal/branch/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB   *gorm.DB
	Log  *zap.Logger
	Repo domain.Repository
}

type Service struct {
	db   *gorm.DB
	log  *zap.Logger
	repo domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:   p.DB,
		log:  p.Log.Named("branch.service"),
		repo: p.Repo,
	}
}

func (s *Service) GetByCode(ctx context.Context, code string) (domain.Branch, error) {
	if strings.TrimSpace(code) == "" {
		return domain.Branch{}, domain.ErrInvalidBranchCode
	}

	branch, err := s.repo.FindByCode(ctx, s.db, code)
	if err != nil {
		return domain.Branch{}, err
	}
	if branch == nil {
		return domain.Branch{}, domain.ErrBranchNotFound
	}
	return *branch, nil
}

func (s *Service) ListBranches(ctx context.Context) ([]domain.Branch, error) {
	items, err := s.repo.ListBranches(ctx, s.db)
	if err != nil {
		return nil, err
	}

	branches := make([]domain.Branch, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		branches = append(branches, *item)
	}
	return branches, nil
}

func (s *Service) ListDepartments(ctx context.Context) ([]domain.Department, error) {
	items, err := s.repo.ListDepartments(ctx, s.db)
	if err != nil {
		return nil, err
	}

	departments := make([]domain.Department, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		departments = append(departments, *item)
	}
	return departments, nil
}
