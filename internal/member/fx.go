package member

import (
	"github.com/coopfoods/ajomart/internal/member/repository"
	"github.com/coopfoods/ajomart/internal/member/service"
	"go.uber.org/fx"
)

var Module = fx.Module("member.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
