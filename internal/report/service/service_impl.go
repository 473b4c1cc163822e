// Package service builds branch report aggregates over the orders table.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/coopfoods/ajomart/internal/cache"
	"github.com/coopfoods/ajomart/internal/config"
	"github.com/coopfoods/ajomart/internal/ratelimit"
	"github.com/coopfoods/ajomart/internal/report/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	summaryTTL     = 2 * time.Minute
	refreshLockTTL = 5 * time.Second
)

type Params struct {
	fx.In

	Config config.Config
	DB     *gorm.DB
	Log    *zap.Logger
	Store  cache.Store
	Locker *ratelimit.Locker `optional:"true"`
}

type Service struct {
	cfg    config.Config
	db     *gorm.DB
	log    *zap.Logger
	store  cache.Store
	locker *ratelimit.Locker

	mu   sync.Mutex
	keys map[snowflake.ID]map[string]struct{}
}

func New(p Params) *Service {
	return &Service{
		cfg:    p.Config,
		db:     p.DB,
		log:    p.Log.Named("report.service"),
		store:  p.Store,
		locker: p.Locker,
		keys:   make(map[snowflake.ID]map[string]struct{}),
	}
}

func (s *Service) BranchSummary(ctx context.Context, branchID, cycleID snowflake.ID) (domain.BranchSummary, error) {
	key := summaryKey(branchID, cycleID)

	if cached, ok, err := s.store.Get(ctx, key); err == nil && ok {
		var summary domain.BranchSummary
		if err := json.Unmarshal(cached, &summary); err == nil {
			return summary, nil
		}
	}

	// only one refresher per key when a locker is configured
	if s.locker != nil {
		token, ok, err := s.locker.TryLock(ctx, "lock:"+key, refreshLockTTL)
		if err == nil && ok {
			defer func() {
				_ = s.locker.Release(ctx, "lock:"+key, token)
			}()
		}
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.StoreReadTimeout)
	defer cancel()

	summary, err := s.queryBranchSummary(ctx, branchID, cycleID)
	if err != nil {
		return domain.BranchSummary{}, err
	}

	if encoded, err := json.Marshal(summary); err == nil {
		if err := s.store.Set(ctx, key, encoded, summaryTTL); err != nil {
			s.log.Warn("report cache write failed", zap.String("key", key), zap.Error(err))
		}
		s.rememberKey(branchID, key)
	}
	return summary, nil
}

func (s *Service) InvalidateBranch(ctx context.Context, branchID snowflake.ID) {
	s.mu.Lock()
	keys := s.keys[branchID]
	delete(s.keys, branchID)
	s.mu.Unlock()

	for key := range keys {
		if err := s.store.Delete(ctx, key); err != nil {
			s.log.Warn("report cache invalidation failed", zap.String("key", key), zap.Error(err))
		}
	}
}

func (s *Service) queryBranchSummary(ctx context.Context, branchID, cycleID snowflake.ID) (domain.BranchSummary, error) {
	query := `
		SELECT status, payment_option, COUNT(*) AS orders, COALESCE(SUM(total_amount), 0) AS total
		FROM orders
		WHERE delivery_branch_id = ?`
	args := []interface{}{branchID}
	if cycleID != 0 {
		query += ` AND cycle_id = ?`
		args = append(args, cycleID)
	}
	query += ` GROUP BY status, payment_option ORDER BY status, payment_option`

	var rows []domain.BranchSummaryRow
	if err := s.db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return domain.BranchSummary{}, err
	}

	return domain.BranchSummary{
		BranchID:    branchID,
		CycleID:     cycleID,
		Rows:        rows,
		GeneratedAt: time.Now().UTC(),
	}, nil
}

func (s *Service) rememberKey(branchID snowflake.ID, key string) {
	s.mu.Lock()
	if s.keys[branchID] == nil {
		s.keys[branchID] = make(map[string]struct{})
	}
	s.keys[branchID][key] = struct{}{}
	s.mu.Unlock()
}

func summaryKey(branchID, cycleID snowflake.ID) string {
	return fmt.Sprintf("report:branch_summary:%d:%d", branchID, cycleID)
}
