package migration

import (
	"github.com/bwmarrin/snowflake"
	"github.com/coopfoods/ajomart/internal/config"
	"github.com/coopfoods/ajomart/internal/seed"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config, node *snowflake.Node) error {
		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}

		if err := RunMigrations(sqlDB); err != nil {
			return err
		}

		if cfg.Environment != "production" {
			return seed.EnsureDevFixtures(conn, node)
		}
		return nil
	}),
)
