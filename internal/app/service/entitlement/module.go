package entitlement

import (
	"go.uber.org/fx"

	"github.com/vendahub/billing/internal/app/service/subscription"
)

// Module provides the synchronizer to the lifecycle service behind its
// EntitlementSyncer interface.
var Module = fx.Options(
	fx.Provide(fx.Annotate(NewService, fx.As(new(subscription.EntitlementSyncer)))),
)
