package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/coopfoods/ajomart/internal/member/domain"
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
		log:  p.Log.Named("member.service"),
		repo: p.Repo,
	}
}

func (s *Service) Get(ctx context.Context, code string) (domain.Member, error) {
	if strings.TrimSpace(code) == "" {
		return domain.Member{}, domain.ErrInvalidMemberCode
	}

	member, err := s.repo.FindByCode(ctx, s.db, code)
	if err != nil {
		return domain.Member{}, err
	}
	if member == nil {
		return domain.Member{}, domain.ErrNotFound
	}
	return *member, nil
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (domain.Member, error) {
	member, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Member{}, err
	}
	if member == nil {
		return domain.Member{}, domain.ErrNotFound
	}
	return *member, nil
}

func (s *Service) List(ctx context.Context, branchID snowflake.ID) ([]domain.Member, error) {
	items, err := s.repo.List(ctx, s.db, branchID)
	if err != nil {
		return nil, err
	}

	members := make([]domain.Member, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		members = append(members, *item)
	}
	return members, nil
}
