// Package service implements order placement and the admin lifecycle.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/coopfoods/ajomart/internal/audit/domain"
	branchdomain "github.com/coopfoods/ajomart/internal/branch/domain"
	catalogdomain "github.com/coopfoods/ajomart/internal/catalog/domain"
	"github.com/coopfoods/ajomart/internal/config"
	eligibilitydomain "github.com/coopfoods/ajomart/internal/eligibility/domain"
	memberdomain "github.com/coopfoods/ajomart/internal/member/domain"
	"github.com/coopfoods/ajomart/internal/order/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	Config      config.Config
	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Repo        domain.Repository
	Procedures  domain.Procedures
	MemberRepo  memberdomain.Repository
	BranchRepo  branchdomain.Repository
	Catalog     catalogdomain.Service
	Eligibility eligibilitydomain.Service
	Audit       auditdomain.Service
	Reports     domain.ReportInvalidator `optional:"true"`
}

type Service struct {
	cfg         config.Config
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	repo        domain.Repository
	procedures  domain.Procedures
	memberRepo  memberdomain.Repository
	branchRepo  branchdomain.Repository
	catalog     catalogdomain.Service
	eligibility eligibilitydomain.Service
	audit       auditdomain.Service
	reports     domain.ReportInvalidator
}

func New(p Params) domain.Service {
	return &Service{
		cfg:         p.Config,
		db:          p.DB,
		log:         p.Log.Named("order.service"),
		genID:       p.GenID,
		repo:        p.Repo,
		procedures:  p.Procedures,
		memberRepo:  p.MemberRepo,
		branchRepo:  p.BranchRepo,
		catalog:     p.Catalog,
		eligibility: p.Eligibility,
		audit:       p.Audit,
		reports:     p.Reports,
	}
}

// PlaceOrder validates the request, then runs everything else inside one
// transaction holding a row lock on the member: member resolution first,
// then the delivery branch and department, exposure, eligibility, pricing,
// the payment gate and the header+lines insert. Two placements by the same
// member serialize on that lock, so both can never pass the limit check
// against the same exposure reading.
func (s *Service) PlaceOrder(ctx context.Context, req domain.PlaceOrderRequest) (domain.PlaceOrderResult, error) {
	req.PaymentOption = strings.ToUpper(strings.TrimSpace(req.PaymentOption))
	if err := validatePlaceOrder(req); err != nil {
		return domain.PlaceOrderResult{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.StoreWriteTimeout)
	defer cancel()

	var (
		result           domain.PlaceOrderResult
		deliveryBranchID snowflake.ID
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		member, err := s.memberRepo.FindByCodeForUpdate(ctx, tx, req.MemberCode)
		if err != nil {
			return err
		}
		if member == nil {
			return fmt.Errorf("%w: %s", memberdomain.ErrNotFound, req.MemberCode)
		}
		if !member.IsActive {
			return fmt.Errorf("%w: %s", memberdomain.ErrInactive, member.MemberCode)
		}

		branch, err := s.branchRepo.FindByCode(ctx, tx, req.DeliveryBranchCode)
		if err != nil {
			return err
		}
		if branch == nil {
			return fmt.Errorf("%w: %s", branchdomain.ErrBranchNotFound, req.DeliveryBranchCode)
		}
		deliveryBranchID = branch.ID

		department, err := s.branchRepo.FindDepartmentByName(ctx, tx, req.DepartmentName)
		if err != nil {
			return err
		}
		if department == nil {
			return fmt.Errorf("%w: %s", branchdomain.ErrDepartmentNotFound, req.DepartmentName)
		}

		snapshot, err := s.eligibility.ComputeSnapshotTx(ctx, tx, *member)
		if err != nil {
			return err
		}

		priced, err := s.catalog.PriceLinesTx(ctx, tx, branch.ID, req.Lines)
		if err != nil {
			return err
		}

		if err := checkPaymentGate(req.PaymentOption, priced.Total, snapshot); err != nil {
			return err
		}

		now := time.Now().UTC()
		order := domain.Order{
			ID:               s.genID.Generate(),
			MemberID:         member.ID,
			MemberCode:       member.MemberCode,
			MemberName:       member.Name,
			MemberCategory:   member.Category,
			HomeBranchID:     member.BranchID,
			DeliveryBranchID: branch.ID,
			DepartmentID:     department.ID,
			CycleID:          priced.CycleID,
			PaymentOption:    req.PaymentOption,
			TotalAmount:      priced.Total,
			Status:           domain.StatusPending,
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		if err := s.repo.Insert(ctx, tx, &order, s.buildLines(order.ID, priced.Lines, now)); err != nil {
			return err
		}

		result = domain.PlaceOrderResult{
			OrderID:       order.ID,
			Total:         order.TotalAmount,
			PaymentOption: order.PaymentOption,
			CycleID:       order.CycleID,
			Eligibility:   snapshot,
		}
		return nil
	})
	if err != nil {
		return domain.PlaceOrderResult{}, err
	}

	_ = s.audit.Record(ctx, req.MemberCode, auditdomain.ActionOrderPlace,
		result.OrderID, result.CycleID, deliveryBranchID,
		fmt.Sprintf("total %d via %s", result.Total, result.PaymentOption))

	return result, nil
}

func (s *Service) Get(ctx context.Context, id snowflake.ID) (domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.StoreReadTimeout)
	defer cancel()

	order, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Order{}, err
	}
	if order == nil {
		return domain.Order{}, domain.ErrOrderNotFound
	}

	lines, err := s.repo.FindLines(ctx, s.db, id)
	if err != nil {
		return domain.Order{}, err
	}
	order.Lines = lines
	return *order, nil
}

func (s *Service) ListByMember(ctx context.Context, memberID snowflake.ID) ([]domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.StoreReadTimeout)
	defer cancel()

	rows, err := s.repo.ListByMember(ctx, s.db, memberID)
	if err != nil {
		return nil, err
	}
	orders := make([]domain.Order, 0, len(rows))
	for _, row := range rows {
		orders = append(orders, *row)
	}
	return orders, nil
}

func (s *Service) EditLines(ctx context.Context, id snowflake.ID, actor string, lines []catalogdomain.LineInput) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.StoreWriteTimeout)
	defer cancel()

	var (
		total            int64
		cycleID          snowflake.ID
		deliveryBranchID snowflake.ID
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := s.repo.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if order == nil {
			return domain.ErrOrderNotFound
		}
		if order.Status != domain.StatusPending {
			return fmt.Errorf("%w: cannot edit lines of a %s order", domain.ErrStateConflict, order.Status)
		}

		priced, err := s.catalog.PriceLinesTx(ctx, tx, order.DeliveryBranchID, lines)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		if err := s.repo.ReplaceLines(ctx, tx, order.ID, s.buildLines(order.ID, priced.Lines, now), priced.Total); err != nil {
			return err
		}

		total = priced.Total
		cycleID = order.CycleID
		deliveryBranchID = order.DeliveryBranchID
		return nil
	})
	if err != nil {
		return 0, err
	}

	_ = s.audit.Record(ctx, actor, auditdomain.ActionOrderEditLines, id, cycleID, deliveryBranchID,
		fmt.Sprintf("replaced %d lines, new total %d", len(lines), total))
	s.invalidateReports(ctx, deliveryBranchID)
	return total, nil
}

// Post finalizes a PENDING order. The status transition belongs to the
// post_order procedure; metadata and audit writes after it are best effort
// and never fail the transition.
func (s *Service) Post(ctx context.Context, id snowflake.ID, actor, note string) error {
	return s.transition(ctx, id, actor, auditdomain.ActionOrderPost, note, func(ctx context.Context) error {
		if err := s.procedures.Post(ctx, s.db, id, actor); err != nil {
			return err
		}
		var notePtr *string
		if note != "" {
			notePtr = &note
		}
		if err := s.repo.SetPostMeta(ctx, s.db, id, actor, notePtr); err != nil {
			s.log.Error("post metadata update failed", zap.Int64("order_id", int64(id)), zap.Error(err))
		}
		return nil
	})
}

func (s *Service) Cancel(ctx context.Context, id snowflake.ID, actor, reason string) error {
	return s.transition(ctx, id, actor, auditdomain.ActionOrderCancel, reason, func(ctx context.Context) error {
		if err := s.procedures.Cancel(ctx, s.db, id, actor); err != nil {
			return err
		}
		if err := s.repo.SetCancelMeta(ctx, s.db, id, reason); err != nil {
			s.log.Error("cancel metadata update failed", zap.Int64("order_id", int64(id)), zap.Error(err))
		}
		return nil
	})
}

func (s *Service) Deliver(ctx context.Context, id snowflake.ID, actor string) error {
	return s.transition(ctx, id, actor, auditdomain.ActionOrderDeliver, "", func(ctx context.Context) error {
		if err := s.procedures.Deliver(ctx, s.db, id, actor); err != nil {
			return err
		}
		if err := s.repo.SetDeliveryMeta(ctx, s.db, id, actor); err != nil {
			s.log.Error("delivery metadata update failed", zap.Int64("order_id", int64(id)), zap.Error(err))
		}
		return nil
	})
}

func (s *Service) Delete(ctx context.Context, id snowflake.ID, actor string) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.StoreWriteTimeout)
	defer cancel()

	var (
		cycleID          snowflake.ID
		deliveryBranchID snowflake.ID
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := s.repo.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if order == nil {
			return domain.ErrOrderNotFound
		}
		if order.Status != domain.StatusPending && order.Status != domain.StatusCancelled {
			return fmt.Errorf("%w: %s order", domain.ErrDeleteNotAllowed, order.Status)
		}

		cycleID = order.CycleID
		deliveryBranchID = order.DeliveryBranchID
		return s.repo.Delete(ctx, tx, id)
	})
	if err != nil {
		return err
	}

	_ = s.audit.Record(ctx, actor, auditdomain.ActionOrderDelete, id, cycleID, deliveryBranchID, "")
	s.invalidateReports(ctx, deliveryBranchID)
	return nil
}

// BulkPost applies Post to each id independently. Partial success is the
// expected outcome shape, not an error.
func (s *Service) BulkPost(ctx context.Context, ids []snowflake.ID, actor string) []domain.BulkPostResult {
	results := make([]domain.BulkPostResult, 0, len(ids))
	for _, id := range ids {
		if err := s.Post(ctx, id, actor, ""); err != nil {
			results = append(results, domain.BulkPostResult{OrderID: id, Error: err.Error()})
			continue
		}
		results = append(results, domain.BulkPostResult{OrderID: id, OK: true})
	}
	return results
}

func (s *Service) transition(ctx context.Context, id snowflake.ID, actor, action, detail string, run func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.StoreWriteTimeout)
	defer cancel()

	order, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return err
	}
	if order == nil {
		return domain.ErrOrderNotFound
	}

	if err := run(ctx); err != nil {
		return err
	}

	_ = s.audit.Record(ctx, actor, action, order.ID, order.CycleID, order.DeliveryBranchID, detail)
	s.invalidateReports(ctx, order.DeliveryBranchID)
	return nil
}

func (s *Service) buildLines(orderID snowflake.ID, priced []catalogdomain.PricedLine, now time.Time) []domain.OrderLine {
	lines := make([]domain.OrderLine, 0, len(priced))
	for _, p := range priced {
		lines = append(lines, domain.OrderLine{
			ID:        s.genID.Generate(),
			OrderID:   orderID,
			ItemID:    p.ItemID,
			PriceID:   p.PriceID,
			SKU:       p.SKU,
			ItemName:  p.ItemName,
			Qty:       p.Qty,
			UnitPrice: p.UnitPrice,
			Amount:    p.Amount,
			CreatedAt: now,
		})
	}
	return lines
}

func (s *Service) invalidateReports(ctx context.Context, branchID snowflake.ID) {
	if s.reports != nil {
		s.reports.InvalidateBranch(ctx, branchID)
	}
}

func validatePlaceOrder(req domain.PlaceOrderRequest) error {
	if strings.TrimSpace(req.MemberCode) == "" {
		return fmt.Errorf("%w: member_code is required", domain.ErrValidation)
	}
	if strings.TrimSpace(req.DeliveryBranchCode) == "" {
		return fmt.Errorf("%w: delivery_branch_code is required", domain.ErrValidation)
	}
	if strings.TrimSpace(req.DepartmentName) == "" {
		return fmt.Errorf("%w: department_name is required", domain.ErrValidation)
	}
	if !domain.ValidPaymentOption(req.PaymentOption) {
		return fmt.Errorf("%w: %q", domain.ErrInvalidPaymentOption, req.PaymentOption)
	}
	if len(req.Lines) == 0 {
		return fmt.Errorf("%w: lines are required", domain.ErrValidation)
	}
	return nil
}

func checkPaymentGate(option string, total int64, snapshot eligibilitydomain.Snapshot) error {
	switch option {
	case domain.PaymentSavings:
		// Whether loans block savings outright is a policy decision already
		// folded into the snapshot: strict zeroes SavingsEligible, facility
		// leaves its configured amount.
		if snapshot.OutstandingLoans > 0 && snapshot.SavingsEligible <= 0 {
			return domain.ErrSavingsBlockedByLoans
		}
		if total > snapshot.SavingsEligible {
			return &domain.LimitError{Option: domain.PaymentSavings, Limit: snapshot.SavingsEligible, Attempted: total}
		}
	case domain.PaymentLoan:
		if total > snapshot.LoanEligible {
			return &domain.LimitError{Option: domain.PaymentLoan, Limit: snapshot.LoanEligible, Attempted: total}
		}
	case domain.PaymentCash:
		// no credit exposure, no limit check
	default:
		return fmt.Errorf("%w: %q", domain.ErrInvalidPaymentOption, option)
	}
	return nil
}
