package audit

import (
	"github.com/coopfoods/ajomart/internal/audit/repository"
	"github.com/coopfoods/ajomart/internal/audit/service"
	"go.uber.org/fx"
)

var Module = fx.Module("audit.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
