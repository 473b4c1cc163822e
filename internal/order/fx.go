package order

import (
	"github.com/coopfoods/ajomart/internal/order/repository"
	"github.com/coopfoods/ajomart/internal/order/service"
	"go.uber.org/fx"
)

var Module = fx.Module("order.service",
	fx.Provide(repository.Provide),
	fx.Provide(repository.ProvideProcedures),
	fx.Provide(service.New),
)
