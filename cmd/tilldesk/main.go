package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/tilldesk/internal/cashregister"
	"github.com/smallbiznis/tilldesk/internal/catalog"
	"github.com/smallbiznis/tilldesk/internal/collection"
	"github.com/smallbiznis/tilldesk/internal/config"
	"github.com/smallbiznis/tilldesk/internal/events"
	"github.com/smallbiznis/tilldesk/internal/fallback"
	"github.com/smallbiznis/tilldesk/internal/inventory"
	"github.com/smallbiznis/tilldesk/internal/observability"
	"github.com/smallbiznis/tilldesk/internal/priceadjustment"
	"github.com/smallbiznis/tilldesk/internal/purchasing"
	"github.com/smallbiznis/tilldesk/internal/reference"
	"github.com/smallbiznis/tilldesk/internal/server"
	"github.com/smallbiznis/tilldesk/pkg/restclient"
	"github.com/smallbiznis/tilldesk/pkg/telemetry"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		telemetry.Module,
		events.Module,

		fx.Provide(registerSnowflake),
		fx.Provide(restclient.New),
		fallback.Module,

		priceadjustment.Module,
		inventory.Module,
		cashregister.Module,
		purchasing.Module,
		collection.Module,
		reference.Module,
		catalog.Module,

		server.Module,
	)
	app.Run()
}

func registerSnowflake() (*snowflake.Node, error) {
	return snowflake.NewNode(1)
}
