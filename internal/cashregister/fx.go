package cashregister

import (
	"github.com/smallbiznis/tilldesk/internal/cashregister/service"
	"github.com/smallbiznis/tilldesk/internal/cashregister/store"
	"go.uber.org/fx"
)

var Module = fx.Module("cashregister",
	fx.Provide(service.New),
	fx.Provide(store.New),
)
