package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/coopfoods/ajomart/internal/audit"
	auditdomain "github.com/coopfoods/ajomart/internal/audit/domain"
	"github.com/coopfoods/ajomart/internal/auth"
	authdomain "github.com/coopfoods/ajomart/internal/auth/domain"
	"github.com/coopfoods/ajomart/internal/branch"
	branchdomain "github.com/coopfoods/ajomart/internal/branch/domain"
	"github.com/coopfoods/ajomart/internal/cache"
	"github.com/coopfoods/ajomart/internal/catalog"
	catalogdomain "github.com/coopfoods/ajomart/internal/catalog/domain"
	"github.com/coopfoods/ajomart/internal/config"
	"github.com/coopfoods/ajomart/internal/eligibility"
	eligibilitydomain "github.com/coopfoods/ajomart/internal/eligibility/domain"
	"github.com/coopfoods/ajomart/internal/member"
	memberdomain "github.com/coopfoods/ajomart/internal/member/domain"
	"github.com/coopfoods/ajomart/internal/migration"
	"github.com/coopfoods/ajomart/internal/order"
	orderdomain "github.com/coopfoods/ajomart/internal/order/domain"
	"github.com/coopfoods/ajomart/internal/ratelimit"
	"github.com/coopfoods/ajomart/internal/report"
	reportdomain "github.com/coopfoods/ajomart/internal/report/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	cache.Module,
	ratelimit.Module,
	member.Module,
	branch.Module,
	catalog.Module,
	eligibility.Module,
	audit.Module,
	auth.Module,
	order.Module,
	report.Module,
	migration.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(cfg config.Config, log *zap.Logger) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(log.Named("http")))
	r.Use(MetricsMiddleware())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(cfg config.Config, log *zap.Logger) *gin.Engine {
	return NewEngine(cfg, log)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine       *gin.Engine
	cfg          config.Config
	log          *zap.Logger
	auth         authdomain.Service
	members      memberdomain.Service
	branches     branchdomain.Service
	catalog      catalogdomain.Service
	eligibility  eligibilitydomain.Service
	orders       orderdomain.Service
	audit        auditdomain.Service
	reports      reportdomain.Service
	loginLimiter *ratelimit.LoginLimiter
}

type ServerParams struct {
	fx.In

	Gin            *gin.Engine
	Cfg            config.Config
	Log            *zap.Logger
	AuthSvc        authdomain.Service
	MemberSvc      memberdomain.Service
	BranchSvc      branchdomain.Service
	CatalogSvc     catalogdomain.Service
	EligibilitySvc eligibilitydomain.Service
	OrderSvc       orderdomain.Service
	AuditSvc       auditdomain.Service
	ReportSvc      reportdomain.Service
	LoginLimiter   *ratelimit.LoginLimiter `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:       p.Gin,
		cfg:          p.Cfg,
		log:          p.Log.Named("server"),
		auth:         p.AuthSvc,
		members:      p.MemberSvc,
		branches:     p.BranchSvc,
		catalog:      p.CatalogSvc,
		eligibility:  p.EligibilitySvc,
		orders:       p.OrderSvc,
		audit:        p.AuditSvc,
		reports:      p.ReportSvc,
		loginLimiter: p.LoginLimiter,
	}

	svc.registerAuthRoutes()
	svc.registerMemberRoutes()
	svc.registerAdminRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAuthRoutes() {
	auth := s.engine.Group("/auth")

	auth.POST("/login", s.login)
	auth.POST("/logout", s.logout)
	auth.GET("/me", AuthRequired(s.auth), s.me)
}

func (s *Server) registerMemberRoutes() {
	api := s.engine.Group("/api")

	// Catalog reads need no session; nothing member-specific leaks here.
	api.GET("/branches", s.listBranches)
	api.GET("/departments", s.listDepartments)
	api.GET("/items", s.listItems)
	api.GET("/branches/:code/prices", s.listBranchPrices)

	authed := api.Group("", AuthRequired(s.auth))
	{
		authed.POST("/orders", s.placeOrder)
		authed.GET("/orders", s.listMyOrders)
		authed.GET("/orders/:id", s.getOrder)
		authed.GET("/eligibility", s.myEligibility)
	}
}

func (s *Server) registerAdminRoutes() {
	admin := s.engine.Group("/admin")
	admin.Use(AuthRequired(s.auth))
	admin.Use(AdminRequired())

	// -------- Order lifecycle --------
	admin.POST("/orders/:id/post", s.postOrder)
	admin.POST("/orders/:id/cancel", s.cancelOrder)
	admin.POST("/orders/:id/deliver", s.deliverOrder)
	admin.PUT("/orders/:id/lines", s.editOrderLines)
	admin.DELETE("/orders/:id", s.deleteOrder)
	admin.POST("/orders/bulk-post", s.bulkPostOrders)

	// -------- Members --------
	admin.GET("/members", s.listMembers)
	admin.GET("/members/:code/orders", s.listMemberOrders)
	admin.GET("/members/:code/eligibility", s.memberEligibility)
	admin.PUT("/members/:code/pin", s.setMemberPIN)

	// -------- Pricing --------
	admin.PUT("/branches/:code/prices", s.upsertBranchPrice)

	// -------- Reports / audit --------
	admin.GET("/reports/branch-summary", s.branchSummaryReport)
	admin.GET("/audit-logs", s.listAuditLogs)
}
