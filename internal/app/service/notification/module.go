package notification

import (
	"go.uber.org/fx"

	"github.com/vendahub/billing/internal/app/service/subscription"
)

var Module = fx.Options(
	fx.Provide(fx.Annotate(NewService, fx.As(new(subscription.Notifier)))),
)
