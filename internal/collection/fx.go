package collection

import (
	"github.com/smallbiznis/tilldesk/internal/collection/service"
	"github.com/smallbiznis/tilldesk/internal/collection/store"
	"go.uber.org/fx"
)

var Module = fx.Module("collection",
	fx.Provide(service.New),
	fx.Provide(store.New),
)
