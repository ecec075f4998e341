package reference

import (
	"github.com/smallbiznis/tilldesk/internal/reference/service"
	"github.com/smallbiznis/tilldesk/internal/reference/store"
	"go.uber.org/fx"
)

var Module = fx.Module("reference",
	fx.Provide(service.New),
	fx.Provide(store.New),
)
