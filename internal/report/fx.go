package report

import (
	orderdomain "github.com/coopfoods/ajomart/internal/order/domain"
	"github.com/coopfoods/ajomart/internal/report/domain"
	"github.com/coopfoods/ajomart/internal/report/service"
	"go.uber.org/fx"
)

var Module = fx.Module("report.service",
	fx.Provide(service.New),
	fx.Provide(func(s *service.Service) domain.Service { return s }),
	fx.Provide(func(s *service.Service) orderdomain.ReportInvalidator { return s }),
)
