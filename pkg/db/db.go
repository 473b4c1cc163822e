package db

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Open connects to the configured database.
func Open(dialector gorm.Dialector, log *zap.Logger) (*gorm.DB, error) {
	conn, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, err
	}
	log.Info("database connected")
	return conn, nil
}

func registerHooks(lc fx.Lifecycle, conn *gorm.DB) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			_ = ctx
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	})
}

// Module wires the gorm connection into the fx graph.
var Module = fx.Module("db",
	fx.Provide(Dialect),
	fx.Provide(Open),
	fx.Invoke(registerHooks),
)
