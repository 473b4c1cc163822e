package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/coopfoods/ajomart/internal/config"
	"github.com/coopfoods/ajomart/internal/logger"
	"github.com/coopfoods/ajomart/internal/server"
	"github.com/coopfoods/ajomart/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
