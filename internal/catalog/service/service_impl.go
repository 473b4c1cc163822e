package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/coopfoods/ajomart/internal/catalog/domain"
	"github.com/coopfoods/ajomart/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	GenID  *snowflake.Node
	Repo   domain.Repository
	Policy *config.PolicyConfigHolder
}

type Service struct {
	db     *gorm.DB
	log    *zap.Logger
	genID  *snowflake.Node
	repo   domain.Repository
	policy *config.PolicyConfigHolder
}

func New(p Params) domain.Service {
	return &Service{
		db:     p.DB,
		log:    p.Log.Named("catalog.service"),
		genID:  p.GenID,
		repo:   p.Repo,
		policy: p.Policy,
	}
}

func (s *Service) PriceLines(ctx context.Context, branchID snowflake.ID, lines []domain.LineInput) (domain.PriceResult, error) {
	return s.PriceLinesTx(ctx, s.db, branchID, lines)
}

func (s *Service) PriceLinesTx(ctx context.Context, tx *gorm.DB, branchID snowflake.ID, lines []domain.LineInput) (domain.PriceResult, error) {
	if len(lines) == 0 {
		return domain.PriceResult{}, domain.ErrEmptyLines
	}

	maxQty := s.policy.Get().MaxLineQty
	result := domain.PriceResult{Lines: make([]domain.PricedLine, 0, len(lines))}

	for _, line := range lines {
		sku := strings.ToUpper(strings.TrimSpace(line.SKU))
		if sku == "" {
			return domain.PriceResult{}, domain.ErrInvalidSKU
		}
		if line.Qty <= 0 || line.Qty > maxQty {
			return domain.PriceResult{}, fmt.Errorf("%w: sku %s qty %d", domain.ErrInvalidQuantity, sku, line.Qty)
		}

		item, err := s.repo.FindItemBySKU(ctx, tx, sku)
		if err != nil {
			return domain.PriceResult{}, err
		}
		if item == nil {
			return domain.PriceResult{}, fmt.Errorf("%w: %s", domain.ErrItemNotFound, sku)
		}

		price, err := s.repo.FindActivePrice(ctx, tx, branchID, item.ID)
		if err != nil {
			return domain.PriceResult{}, err
		}
		if price == nil {
			return domain.PriceResult{}, fmt.Errorf("%w: %s at branch %s", domain.ErrPriceNotFound, sku, branchID)
		}

		amount := price.UnitPrice * line.Qty
		result.Lines = append(result.Lines, domain.PricedLine{
			ItemID:    item.ID,
			PriceID:   price.ID,
			SKU:       item.SKU,
			ItemName:  item.Name,
			Qty:       line.Qty,
			UnitPrice: price.UnitPrice,
			Amount:    amount,
		})
		result.Total += amount
		if result.CycleID == 0 {
			result.CycleID = price.CycleID
		}
	}

	return result, nil
}

func (s *Service) ListItems(ctx context.Context) ([]domain.Item, error) {
	rows, err := s.repo.ListItems(ctx, s.db)
	if err != nil {
		return nil, err
	}

	items := make([]domain.Item, 0, len(rows))
	for _, row := range rows {
		if row == nil {
			continue
		}
		items = append(items, *row)
	}
	return items, nil
}

func (s *Service) ListPrices(ctx context.Context, branchID snowflake.ID) ([]domain.BranchItemPrice, error) {
	rows, err := s.repo.ListActivePrices(ctx, s.db, branchID)
	if err != nil {
		return nil, err
	}

	prices := make([]domain.BranchItemPrice, 0, len(rows))
	for _, row := range rows {
		if row == nil {
			continue
		}
		prices = append(prices, *row)
	}
	return prices, nil
}

func (s *Service) UpsertPrice(ctx context.Context, req domain.UpsertPriceRequest) (domain.BranchItemPrice, error) {
	if req.UnitPrice <= 0 {
		return domain.BranchItemPrice{}, domain.ErrInvalidPrice
	}

	item, err := s.repo.FindItemBySKU(ctx, s.db, req.SKU)
	if err != nil {
		return domain.BranchItemPrice{}, err
	}
	if item == nil {
		return domain.BranchItemPrice{}, fmt.Errorf("%w: %s", domain.ErrItemNotFound, req.SKU)
	}

	now := time.Now().UTC()
	price := domain.BranchItemPrice{
		ID:        s.genID.Generate(),
		BranchID:  req.BranchID,
		ItemID:    item.ID,
		CycleID:   req.CycleID,
		UnitPrice: req.UnitPrice,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.UpsertPrice(ctx, s.db, &price); err != nil {
		return domain.BranchItemPrice{}, err
	}
	return price, nil
}
