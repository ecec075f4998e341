package inventory

import (
	"github.com/smallbiznis/tilldesk/internal/inventory/service"
	"github.com/smallbiznis/tilldesk/internal/inventory/store"
	"go.uber.org/fx"
)

var Module = fx.Module("inventory",
	fx.Provide(service.New),
	fx.Provide(store.New),
)
