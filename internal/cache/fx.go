package cache

import (
	"github.com/coopfoods/ajomart/internal/config"
	redis "github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

func NewStore(cfg config.Config) Store {
	if cfg.Redis.Enabled && cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		return NewRedisStore(client)
	}
	return NewMemoryStore()
}

var Module = fx.Module("cache",
	fx.Provide(NewStore),
)
