package purchasing

import (
	"github.com/smallbiznis/tilldesk/internal/purchasing/service"
	"github.com/smallbiznis/tilldesk/internal/purchasing/store"
	"go.uber.org/fx"
)

var Module = fx.Module("purchasing",
	fx.Provide(service.New),
	fx.Provide(store.New),
)
