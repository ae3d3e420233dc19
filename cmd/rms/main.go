package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/transnet/rms/internal/clock"
	"github.com/transnet/rms/internal/config"
	"github.com/transnet/rms/internal/migration"
	"github.com/transnet/rms/internal/observability"
	"github.com/transnet/rms/internal/server"
	"github.com/transnet/rms/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,
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
