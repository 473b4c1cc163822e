package auth

import (
	"github.com/coopfoods/ajomart/internal/auth/repository"
	"github.com/coopfoods/ajomart/internal/auth/service"
	"go.uber.org/fx"
)

var Module = fx.Module("auth.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
