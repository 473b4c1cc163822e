package catalog

import (
	"github.com/coopfoods/ajomart/internal/catalog/repository"
	"github.com/coopfoods/ajomart/internal/catalog/service"
	"go.uber.org/fx"
)

var Module = fx.Module("catalog.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
