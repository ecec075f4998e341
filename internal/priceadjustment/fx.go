package priceadjustment

import (
	"github.com/smallbiznis/tilldesk/internal/priceadjustment/service"
	"github.com/smallbiznis/tilldesk/internal/priceadjustment/store"
	"go.uber.org/fx"
)

var Module = fx.Module("priceadjustment",
	fx.Provide(service.New),
	fx.Provide(store.New),
)
