// Package service computes member exposure and eligibility snapshots.
package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/coopfoods/ajomart/internal/config"
	"github.com/coopfoods/ajomart/internal/eligibility/domain"
	memberdomain "github.com/coopfoods/ajomart/internal/member/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	Config config.Config
	DB     *gorm.DB
	Log    *zap.Logger
	Policy *config.PolicyConfigHolder
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	policy   *config.PolicyConfigHolder
	strategy domain.Policy
}

func New(p Params) (domain.Service, error) {
	strategy, err := domain.PolicyByName(p.Config.EligibilityPolicy)
	if err != nil {
		return nil, err
	}

	return &Service{
		db:       p.DB,
		log:      p.Log.Named("eligibility.service"),
		policy:   p.Policy,
		strategy: strategy,
	}, nil
}

type exposureRow struct {
	PaymentOption string `gorm:"column:payment_option"`
	Total         int64  `gorm:"column:total"`
}

func (s *Service) ComputeExposure(ctx context.Context, memberID snowflake.ID) (domain.Exposure, error) {
	return s.ComputeExposureTx(ctx, s.db, memberID)
}

// ComputeExposureTx sums live-order totals grouped by payment option.
// Cancelled orders and cash orders contribute nothing.
func (s *Service) ComputeExposureTx(ctx context.Context, tx *gorm.DB, memberID snowflake.ID) (domain.Exposure, error) {
	var rows []exposureRow
	err := tx.WithContext(ctx).Raw(`
		SELECT payment_option, COALESCE(SUM(total_amount), 0) AS total
		FROM orders
		WHERE member_id = ?
		  AND status IN ('PENDING', 'POSTED', 'DELIVERED')
		  AND payment_option IN ('SAVINGS', 'LOAN')
		GROUP BY payment_option
	`, memberID).Scan(&rows).Error
	if err != nil {
		return domain.Exposure{}, err
	}

	var exp domain.Exposure
	for _, row := range rows {
		switch row.PaymentOption {
		case "SAVINGS":
			exp.Savings = row.Total
		case "LOAN":
			exp.Loan = row.Total
		}
	}
	return exp, nil
}

func (s *Service) ComputeSnapshot(ctx context.Context, member memberdomain.Member) (domain.Snapshot, error) {
	return s.ComputeSnapshotTx(ctx, s.db, member)
}

func (s *Service) ComputeSnapshotTx(ctx context.Context, tx *gorm.DB, member memberdomain.Member) (domain.Snapshot, error) {
	exp, err := s.ComputeExposureTx(ctx, tx, member.ID)
	if err != nil {
		return domain.Snapshot{}, err
	}

	bal := domain.Balances{
		Savings:     member.Savings,
		Loans:       member.Loans,
		GlobalLimit: member.GlobalLimit,
	}
	return s.strategy.Compute(bal, exp, s.policy.Get()), nil
}
