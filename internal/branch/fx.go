package branch

import (
	"github.com/coopfoods/ajomart/internal/branch/repository"
	"github.com/coopfoods/ajomart/internal/branch/service"
	"go.uber.org/fx"
)

var Module = fx.Module("branch.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
