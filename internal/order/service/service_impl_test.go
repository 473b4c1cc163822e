package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/coopfoods/ajomart/internal/audit/domain"
	branchdomain "github.com/coopfoods/ajomart/internal/branch/domain"
	branchrepository "github.com/coopfoods/ajomart/internal/branch/repository"
	catalogdomain "github.com/coopfoods/ajomart/internal/catalog/domain"
	catalogrepository "github.com/coopfoods/ajomart/internal/catalog/repository"
	catalogservice "github.com/coopfoods/ajomart/internal/catalog/service"
	"github.com/coopfoods/ajomart/internal/config"
	eligibilityservice "github.com/coopfoods/ajomart/internal/eligibility/service"
	memberdomain "github.com/coopfoods/ajomart/internal/member/domain"
	memberrepository "github.com/coopfoods/ajomart/internal/member/repository"
	"github.com/coopfoods/ajomart/internal/order/domain"
	"github.com/coopfoods/ajomart/internal/order/repository"
	"github.com/coopfoods/ajomart/pkg/db/pagination"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

func setupOrderTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	// SQLite support hack: remove FOR UPDATE clauses
	stripForUpdate := func(d *gorm.DB) {
		sql := d.Statement.SQL.String()
		if strings.Contains(sql, "FOR UPDATE") {
			newSQL := strings.ReplaceAll(sql, "FOR UPDATE", "")
			d.Statement.SQL.Reset()
			d.Statement.SQL.WriteString(newSQL)
		}
	}
	require.NoError(t, db.Callback().Query().Before("gorm:query").Register("sqlite_strip_lock", stripForUpdate))
	require.NoError(t, db.Callback().Row().Before("gorm:row").Register("sqlite_strip_lock_row", stripForUpdate))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	for _, ddl := range []string{
		`CREATE TABLE members (
			id INTEGER PRIMARY KEY,
			member_code TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			category TEXT,
			savings INTEGER NOT NULL DEFAULT 0,
			loans INTEGER NOT NULL DEFAULT 0,
			global_limit INTEGER NOT NULL DEFAULT 0,
			branch_id INTEGER NOT NULL,
			pin_hash TEXT,
			is_active INTEGER NOT NULL DEFAULT 1,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE branches (
			id INTEGER PRIMARY KEY,
			code TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			is_active INTEGER NOT NULL DEFAULT 1,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE departments (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE items (
			id INTEGER PRIMARY KEY,
			sku TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			unit TEXT,
			category TEXT,
			image_url TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE branch_item_prices (
			id INTEGER PRIMARY KEY,
			branch_id INTEGER NOT NULL,
			item_id INTEGER NOT NULL,
			cycle_id INTEGER NOT NULL,
			unit_price INTEGER NOT NULL,
			is_active INTEGER NOT NULL DEFAULT 1,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE orders (
			id INTEGER PRIMARY KEY,
			member_id INTEGER NOT NULL,
			member_code TEXT NOT NULL,
			member_name TEXT NOT NULL,
			member_category TEXT,
			home_branch_id INTEGER NOT NULL,
			delivery_branch_id INTEGER NOT NULL,
			department_id INTEGER NOT NULL,
			cycle_id INTEGER,
			payment_option TEXT NOT NULL,
			total_amount INTEGER NOT NULL,
			status TEXT NOT NULL,
			admin_note TEXT,
			cancel_reason TEXT,
			posted_by TEXT,
			posted_at DATETIME,
			delivered_by TEXT,
			delivered_at DATETIME,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE order_lines (
			id INTEGER PRIMARY KEY,
			order_id INTEGER NOT NULL,
			item_id INTEGER NOT NULL,
			price_id INTEGER NOT NULL,
			sku TEXT NOT NULL,
			item_name TEXT NOT NULL,
			qty INTEGER NOT NULL,
			unit_price INTEGER NOT NULL,
			amount INTEGER NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
	} {
		require.NoError(t, db.Exec(ddl).Error)
	}
	return db
}

const (
	testBranchID     = snowflake.ID(11)
	testDepartmentID = snowflake.ID(21)
)

func seedReferenceData(t *testing.T, db *gorm.DB) {
	t.Helper()
	require.NoError(t, db.Exec(
		`INSERT INTO branches (id, code, name, is_active) VALUES (?, 'B001', 'Garki', 1)`, testBranchID,
	).Error)
	require.NoError(t, db.Exec(
		`INSERT INTO departments (id, name) VALUES (?, 'OPERATIONS')`, testDepartmentID,
	).Error)
}

func seedMember(t *testing.T, db *gorm.DB, id snowflake.ID, code string, savings, loans, globalLimit int64) {
	t.Helper()
	require.NoError(t, db.Exec(
		`INSERT INTO members (id, member_code, name, category, savings, loans, global_limit, branch_id, is_active)
		 VALUES (?, ?, 'Test Member', 'STAFF', ?, ?, ?, ?, 1)`,
		id, code, savings, loans, globalLimit, testBranchID,
	).Error)
}

func seedItemWithPrice(t *testing.T, db *gorm.DB, itemID snowflake.ID, sku string, unitPrice int64) {
	t.Helper()
	require.NoError(t, db.Exec(
		`INSERT INTO items (id, sku, name, unit, category) VALUES (?, ?, ?, 'bag', 'GRAINS')`,
		itemID, sku, sku,
	).Error)
	require.NoError(t, db.Exec(
		`INSERT INTO branch_item_prices (id, branch_id, item_id, cycle_id, unit_price, is_active)
		 VALUES (?, ?, ?, 7001, ?, 1)`,
		itemID+1000, testBranchID, itemID, unitPrice,
	).Error)
}

// fakeProcedures mimics the stored procedures: it flips status like the
// real ones do, or fails with a configured reason.
type fakeProcedures struct {
	failWith error
	calls    []string
}

func (f *fakeProcedures) Post(ctx context.Context, db *gorm.DB, orderID snowflake.ID, actor string) error {
	return f.run(ctx, db, "post_order", orderID, domain.StatusPosted)
}

func (f *fakeProcedures) Cancel(ctx context.Context, db *gorm.DB, orderID snowflake.ID, actor string) error {
	return f.run(ctx, db, "cancel_order", orderID, domain.StatusCancelled)
}

func (f *fakeProcedures) Deliver(ctx context.Context, db *gorm.DB, orderID snowflake.ID, actor string) error {
	return f.run(ctx, db, "deliver_order", orderID, domain.StatusDelivered)
}

func (f *fakeProcedures) run(ctx context.Context, db *gorm.DB, name string, orderID snowflake.ID, status string) error {
	f.calls = append(f.calls, name)
	if f.failWith != nil {
		return f.failWith
	}
	return db.WithContext(ctx).Exec(
		`UPDATE orders SET status = ? WHERE id = ?`, status, orderID,
	).Error
}

type recordedAudit struct {
	Actor   string
	Action  string
	OrderID snowflake.ID
}

type fakeAudit struct {
	entries []recordedAudit
}

func (f *fakeAudit) Record(ctx context.Context, actor, action string, orderID, cycleID, deliveryBranchID snowflake.ID, detail string) error {
	f.entries = append(f.entries, recordedAudit{Actor: actor, Action: action, OrderID: orderID})
	return nil
}

func (f *fakeAudit) List(ctx context.Context, filter auditdomain.ListFilter, p pagination.Pagination) ([]auditdomain.Entry, *pagination.PageInfo, error) {
	return nil, nil, nil
}

type orderFixture struct {
	svc        domain.Service
	db         *gorm.DB
	procedures *fakeProcedures
	audit      *fakeAudit
}

func newOrderFixture(t *testing.T) *orderFixture {
	t.Helper()

	db := setupOrderTestDB(t)
	seedReferenceData(t, db)

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	cfg := config.Config{
		EligibilityPolicy: config.PolicyStrict,
		StoreReadTimeout:  5 * time.Second,
		StoreWriteTimeout: 10 * time.Second,
	}
	holder := config.NewPolicyConfigHolder(config.PolicyConfig{
		InterestRate: 0.13,
		SavingsRatio: 0.5,
		LoanMultiple: 5,
		LoanFacility: 0,
		LoanCap:      100_000_000,
		MaxLineQty:   10_000,
	})
	log := zaptest.NewLogger(t)

	catalogSvc := catalogservice.New(catalogservice.Params{
		DB:     db,
		Log:    log,
		GenID:  node,
		Repo:   catalogrepository.Provide(),
		Policy: holder,
	})
	eligibilitySvc, err := eligibilityservice.New(eligibilityservice.Params{
		Config: cfg,
		DB:     db,
		Log:    log,
		Policy: holder,
	})
	require.NoError(t, err)

	procedures := &fakeProcedures{}
	audit := &fakeAudit{}
	svc := New(Params{
		Config:      cfg,
		DB:          db,
		Log:         log,
		GenID:       node,
		Repo:        repository.Provide(),
		Procedures:  procedures,
		MemberRepo:  memberrepository.Provide(),
		BranchRepo:  branchrepository.Provide(),
		Catalog:     catalogSvc,
		Eligibility: eligibilitySvc,
		Audit:       audit,
	})

	return &orderFixture{svc: svc, db: db, procedures: procedures, audit: audit}
}

func placeRequest(memberCode string, option string, lines ...catalogdomain.LineInput) domain.PlaceOrderRequest {
	return domain.PlaceOrderRequest{
		MemberCode:         memberCode,
		DeliveryBranchCode: "B001",
		DepartmentName:     "OPERATIONS",
		PaymentOption:      option,
		Lines:              lines,
	}
}

func TestPlaceOrderSavings(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	seedMember(t, f.db, 101, "M-0001", 1_000_000, 0, 80_000_000)
	seedItemWithPrice(t, f.db, 301, "RICE50KG", 45_000)

	result, err := f.svc.PlaceOrder(ctx, placeRequest("M-0001", domain.PaymentSavings,
		catalogdomain.LineInput{SKU: "RICE50KG", Qty: 2},
	))
	require.NoError(t, err)

	assert.Equal(t, int64(90_000), result.Total)
	assert.Equal(t, domain.PaymentSavings, result.PaymentOption)
	assert.Equal(t, int64(500_000), result.Eligibility.SavingsEligible)
	assert.NotZero(t, result.OrderID)

	order, err := f.svc.Get(ctx, result.OrderID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, order.Status)
	assert.Equal(t, "M-0001", order.MemberCode)
	assert.Equal(t, "Test Member", order.MemberName)
	assert.Equal(t, testBranchID, order.DeliveryBranchID)
	require.Len(t, order.Lines, 1)
	assert.Equal(t, int64(45_000), order.Lines[0].UnitPrice)
	assert.Equal(t, int64(90_000), order.Lines[0].Amount)

	// a later price change must not touch the frozen line price
	require.NoError(t, f.db.Exec(
		`UPDATE branch_item_prices SET unit_price = 50000 WHERE item_id = 301`,
	).Error)
	order, err = f.svc.Get(ctx, result.OrderID)
	require.NoError(t, err)
	assert.Equal(t, int64(45_000), order.Lines[0].UnitPrice)

	require.Len(t, f.audit.entries, 1)
	assert.Equal(t, auditdomain.ActionOrderPlace, f.audit.entries[0].Action)
}

func TestPlaceOrderSavingsBoundary(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	// savings 100,000 and ratio 0.5 leave exactly 50,000 eligible
	seedMember(t, f.db, 101, "M-0001", 100_000, 0, 80_000_000)
	seedMember(t, f.db, 102, "M-0002", 100_000, 0, 80_000_000)
	seedItemWithPrice(t, f.db, 301, "EXACT", 50_000)
	seedItemWithPrice(t, f.db, 302, "OVER", 50_001)

	t.Run("total equal to the limit is accepted", func(t *testing.T) {
		_, err := f.svc.PlaceOrder(ctx, placeRequest("M-0001", domain.PaymentSavings,
			catalogdomain.LineInput{SKU: "EXACT", Qty: 1},
		))
		require.NoError(t, err)
	})

	t.Run("one kobo over is rejected with both figures", func(t *testing.T) {
		_, err := f.svc.PlaceOrder(ctx, placeRequest("M-0002", domain.PaymentSavings,
			catalogdomain.LineInput{SKU: "OVER", Qty: 1},
		))
		var limitErr *domain.LimitError
		require.ErrorAs(t, err, &limitErr)
		assert.Equal(t, domain.PaymentSavings, limitErr.Option)
		assert.Equal(t, int64(50_000), limitErr.Limit)
		assert.Equal(t, int64(50_001), limitErr.Attempted)
	})

	t.Run("existing exposure counts against the next order", func(t *testing.T) {
		// M-0001 already has 50,000 of savings exposure from the first subtest
		_, err := f.svc.PlaceOrder(ctx, placeRequest("M-0001", domain.PaymentSavings,
			catalogdomain.LineInput{SKU: "EXACT", Qty: 1},
		))
		var limitErr *domain.LimitError
		require.ErrorAs(t, err, &limitErr)
		assert.Equal(t, int64(0), limitErr.Limit)
	})
}

func TestPlaceOrderSavingsBlockedByLoans(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	seedMember(t, f.db, 101, "M-0001", 5_000_000, 0, 80_000_000)
	seedItemWithPrice(t, f.db, 301, "BEANS", 20_000)

	// a pending loan order of any size blocks savings entirely
	_, err := f.svc.PlaceOrder(ctx, placeRequest("M-0001", domain.PaymentLoan,
		catalogdomain.LineInput{SKU: "BEANS", Qty: 1},
	))
	require.NoError(t, err)

	_, err = f.svc.PlaceOrder(ctx, placeRequest("M-0001", domain.PaymentSavings,
		catalogdomain.LineInput{SKU: "BEANS", Qty: 1},
	))
	assert.ErrorIs(t, err, domain.ErrSavingsBlockedByLoans)
}

func TestPlaceOrderLoanLimit(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	// 5 x 10,000 savings capped by global limit 40,000
	seedMember(t, f.db, 101, "M-0001", 10_000, 0, 40_000)
	seedItemWithPrice(t, f.db, 301, "OIL", 50_000)

	_, err := f.svc.PlaceOrder(ctx, placeRequest("M-0001", domain.PaymentLoan,
		catalogdomain.LineInput{SKU: "OIL", Qty: 1},
	))
	var limitErr *domain.LimitError
	require.ErrorAs(t, err, &limitErr)
	assert.Equal(t, domain.PaymentLoan, limitErr.Option)
	assert.Equal(t, int64(40_000), limitErr.Limit)
	assert.Equal(t, int64(50_000), limitErr.Attempted)
}

func TestPlaceOrderCashSkipsLimits(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	seedMember(t, f.db, 101, "M-0001", 0, 9_000_000, 0)
	seedItemWithPrice(t, f.db, 301, "FLOUR", 500_000)

	result, err := f.svc.PlaceOrder(ctx, placeRequest("M-0001", domain.PaymentCash,
		catalogdomain.LineInput{SKU: "FLOUR", Qty: 4},
	))
	require.NoError(t, err)
	assert.Equal(t, int64(2_000_000), result.Total)
}

func TestPlaceOrderRejections(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	seedMember(t, f.db, 101, "M-0001", 1_000_000, 0, 80_000_000)
	seedItemWithPrice(t, f.db, 301, "RICE50KG", 45_000)

	line := catalogdomain.LineInput{SKU: "RICE50KG", Qty: 1}

	t.Run("missing member code", func(t *testing.T) {
		req := placeRequest("", domain.PaymentSavings, line)
		_, err := f.svc.PlaceOrder(ctx, req)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("unknown payment option", func(t *testing.T) {
		req := placeRequest("M-0001", "TRANSFER", line)
		_, err := f.svc.PlaceOrder(ctx, req)
		assert.ErrorIs(t, err, domain.ErrInvalidPaymentOption)
	})

	t.Run("empty lines", func(t *testing.T) {
		req := placeRequest("M-0001", domain.PaymentSavings)
		_, err := f.svc.PlaceOrder(ctx, req)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("unknown member", func(t *testing.T) {
		req := placeRequest("M-9999", domain.PaymentSavings, line)
		_, err := f.svc.PlaceOrder(ctx, req)
		assert.ErrorIs(t, err, memberdomain.ErrNotFound)
	})

	t.Run("unknown member wins over other bad references", func(t *testing.T) {
		req := placeRequest("M-9999", domain.PaymentSavings, line)
		req.DeliveryBranchCode = "B999"
		req.DepartmentName = "NOWHERE"
		_, err := f.svc.PlaceOrder(ctx, req)
		assert.ErrorIs(t, err, memberdomain.ErrNotFound)
	})

	t.Run("unknown branch", func(t *testing.T) {
		req := placeRequest("M-0001", domain.PaymentSavings, line)
		req.DeliveryBranchCode = "B999"
		_, err := f.svc.PlaceOrder(ctx, req)
		assert.ErrorIs(t, err, branchdomain.ErrBranchNotFound)
	})

	t.Run("unknown department", func(t *testing.T) {
		req := placeRequest("M-0001", domain.PaymentSavings, line)
		req.DepartmentName = "NOWHERE"
		_, err := f.svc.PlaceOrder(ctx, req)
		assert.ErrorIs(t, err, branchdomain.ErrDepartmentNotFound)
	})

	t.Run("unknown sku", func(t *testing.T) {
		req := placeRequest("M-0001", domain.PaymentSavings, catalogdomain.LineInput{SKU: "NOPE", Qty: 1})
		_, err := f.svc.PlaceOrder(ctx, req)
		assert.ErrorIs(t, err, catalogdomain.ErrItemNotFound)
	})

	t.Run("no rows written on rejection", func(t *testing.T) {
		var count int64
		require.NoError(t, f.db.Raw(`SELECT COUNT(*) FROM orders`).Scan(&count).Error)
		assert.Equal(t, int64(0), count)
	})
}

func TestEditLines(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	seedMember(t, f.db, 101, "M-0001", 10_000_000, 0, 80_000_000)
	seedItemWithPrice(t, f.db, 301, "RICE50KG", 45_000)
	seedItemWithPrice(t, f.db, 302, "BEANS", 30_000)

	result, err := f.svc.PlaceOrder(ctx, placeRequest("M-0001", domain.PaymentSavings,
		catalogdomain.LineInput{SKU: "RICE50KG", Qty: 2},
	))
	require.NoError(t, err)

	total, err := f.svc.EditLines(ctx, result.OrderID, "admin", []catalogdomain.LineInput{
		{SKU: "BEANS", Qty: 3},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(90_000), total)

	order, err := f.svc.Get(ctx, result.OrderID)
	require.NoError(t, err)
	assert.Equal(t, int64(90_000), order.TotalAmount)
	require.Len(t, order.Lines, 1)
	assert.Equal(t, "BEANS", order.Lines[0].SKU)
	assert.Equal(t, int64(30_000), order.Lines[0].UnitPrice)

	t.Run("posted orders are immutable", func(t *testing.T) {
		require.NoError(t, f.svc.Post(ctx, result.OrderID, "admin", ""))
		_, err := f.svc.EditLines(ctx, result.OrderID, "admin", []catalogdomain.LineInput{
			{SKU: "RICE50KG", Qty: 1},
		})
		assert.ErrorIs(t, err, domain.ErrStateConflict)
	})
}

func TestLifecycleTransitions(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	seedMember(t, f.db, 101, "M-0001", 10_000_000, 0, 80_000_000)
	seedItemWithPrice(t, f.db, 301, "RICE50KG", 45_000)

	place := func(t *testing.T) snowflake.ID {
		result, err := f.svc.PlaceOrder(ctx, placeRequest("M-0001", domain.PaymentCash,
			catalogdomain.LineInput{SKU: "RICE50KG", Qty: 1},
		))
		require.NoError(t, err)
		return result.OrderID
	}

	t.Run("post then deliver", func(t *testing.T) {
		id := place(t)
		require.NoError(t, f.svc.Post(ctx, id, "admin", "first run"))

		order, err := f.svc.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusPosted, order.Status)
		require.NotNil(t, order.PostedBy)
		assert.Equal(t, "admin", *order.PostedBy)
		require.NotNil(t, order.AdminNote)
		assert.Equal(t, "first run", *order.AdminNote)

		require.NoError(t, f.svc.Deliver(ctx, id, "driver"))
		order, err = f.svc.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusDelivered, order.Status)
		require.NotNil(t, order.DeliveredBy)
		assert.Equal(t, "driver", *order.DeliveredBy)
	})

	t.Run("cancel records the reason", func(t *testing.T) {
		id := place(t)
		require.NoError(t, f.svc.Cancel(ctx, id, "admin", "member request"))

		order, err := f.svc.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusCancelled, order.Status)
		require.NotNil(t, order.CancelReason)
		assert.Equal(t, "member request", *order.CancelReason)
	})

	t.Run("procedure failure is surfaced verbatim", func(t *testing.T) {
		id := place(t)
		f.procedures.failWith = &domain.ProcedureError{Op: "post_order", Reason: "inventory short"}
		defer func() { f.procedures.failWith = nil }()

		err := f.svc.Post(ctx, id, "admin", "")
		var procErr *domain.ProcedureError
		require.ErrorAs(t, err, &procErr)
		assert.Equal(t, "inventory short", procErr.Reason)

		order, getErr := f.svc.Get(ctx, id)
		require.NoError(t, getErr)
		assert.Equal(t, domain.StatusPending, order.Status)
	})

	t.Run("unknown order", func(t *testing.T) {
		err := f.svc.Post(ctx, snowflake.ID(424242), "admin", "")
		assert.ErrorIs(t, err, domain.ErrOrderNotFound)
	})
}

func TestDeleteOrder(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	seedMember(t, f.db, 101, "M-0001", 10_000_000, 0, 80_000_000)
	seedItemWithPrice(t, f.db, 301, "RICE50KG", 45_000)

	result, err := f.svc.PlaceOrder(ctx, placeRequest("M-0001", domain.PaymentCash,
		catalogdomain.LineInput{SKU: "RICE50KG", Qty: 1},
	))
	require.NoError(t, err)

	t.Run("posted orders cannot be deleted", func(t *testing.T) {
		require.NoError(t, f.svc.Post(ctx, result.OrderID, "admin", ""))
		err := f.svc.Delete(ctx, result.OrderID, "admin")
		assert.ErrorIs(t, err, domain.ErrDeleteNotAllowed)
	})

	t.Run("pending orders delete with their lines", func(t *testing.T) {
		second, err := f.svc.PlaceOrder(ctx, placeRequest("M-0001", domain.PaymentCash,
			catalogdomain.LineInput{SKU: "RICE50KG", Qty: 1},
		))
		require.NoError(t, err)

		require.NoError(t, f.svc.Delete(ctx, second.OrderID, "admin"))

		_, err = f.svc.Get(ctx, second.OrderID)
		assert.ErrorIs(t, err, domain.ErrOrderNotFound)

		var lineCount int64
		require.NoError(t, f.db.Raw(
			`SELECT COUNT(*) FROM order_lines WHERE order_id = ?`, second.OrderID,
		).Scan(&lineCount).Error)
		assert.Equal(t, int64(0), lineCount)
	})
}

func TestBulkPost(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	seedMember(t, f.db, 101, "M-0001", 10_000_000, 0, 80_000_000)
	seedItemWithPrice(t, f.db, 301, "RICE50KG", 45_000)

	first, err := f.svc.PlaceOrder(ctx, placeRequest("M-0001", domain.PaymentCash,
		catalogdomain.LineInput{SKU: "RICE50KG", Qty: 1},
	))
	require.NoError(t, err)
	second, err := f.svc.PlaceOrder(ctx, placeRequest("M-0001", domain.PaymentCash,
		catalogdomain.LineInput{SKU: "RICE50KG", Qty: 2},
	))
	require.NoError(t, err)

	results := f.svc.BulkPost(ctx, []snowflake.ID{first.OrderID, snowflake.ID(424242), second.OrderID}, "admin")
	require.Len(t, results, 3)

	assert.True(t, results[0].OK)
	assert.False(t, results[1].OK)
	assert.NotEmpty(t, results[1].Error)
	assert.True(t, results[2].OK)

	for _, id := range []snowflake.ID{first.OrderID, second.OrderID} {
		order, err := f.svc.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusPosted, order.Status)
	}
}

func TestListByMember(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	seedMember(t, f.db, 101, "M-0001", 10_000_000, 0, 80_000_000)
	seedItemWithPrice(t, f.db, 301, "RICE50KG", 45_000)

	for i := 0; i < 3; i++ {
		_, err := f.svc.PlaceOrder(ctx, placeRequest("M-0001", domain.PaymentCash,
			catalogdomain.LineInput{SKU: "RICE50KG", Qty: 1},
		))
		require.NoError(t, err)
	}

	orders, err := f.svc.ListByMember(ctx, snowflake.ID(101))
	require.NoError(t, err)
	assert.Len(t, orders, 3)

	orders, err = f.svc.ListByMember(ctx, snowflake.ID(999))
	require.NoError(t, err)
	assert.Empty(t, orders)
}
