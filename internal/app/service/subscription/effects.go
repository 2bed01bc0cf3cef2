package subscription

import (
	"context"

	"github.com/vendahub/billing/pkg/logctx"
	"github.com/vendahub/billing/pkg/types"
)

// EntitlementSyncer grants or revokes member-area enrollment. The backing
// enrollment store is trusted to be transactional and idempotent; this
// service only decides when to call it.
type EntitlementSyncer interface {
	Grant(ctx context.Context, saleID, email, name, productID string) (string, error)
	Revoke(ctx context.Context, saleID, reason string) error
	RevokeByLookup(ctx context.Context, email, productID, reason string) error
}

// Notifier is the fire-and-forget side channel towards users.
type Notifier interface {
	Notify(ctx context.Context, userID, title, message string, severity types.NotificationSeverity, link *string) error
}

// effect is a single deferred side effect of a state transition. Transitions
// produce a list of effects instead of firing calls inline; the dispatcher
// runs them after the store write and logs failures without ever rolling
// back or failing the primary operation.
type effect interface {
	name() string
	run(ctx context.Context, s *Service) error
}

type notifyEffect struct {
	userID   string
	title    string
	message  string
	severity types.NotificationSeverity
	link     *string
}

func (e *notifyEffect) name() string { return "notify" }

func (e *notifyEffect) run(ctx context.Context, s *Service) error {
	return s.notifier.Notify(ctx, e.userID, e.title, e.message, e.severity, e.link)
}

// grantEffect enrolls the subscriber into the member area, keyed by the
// originating sale. On success it informs the seller of the new student.
type grantEffect struct {
	saleID      string
	email       string
	fullName    string
	productID   string
	productName string
	sellerID    string
}

func (e *grantEffect) name() string { return "entitlement_grant" }

func (e *grantEffect) run(ctx context.Context, s *Service) error {
	enrollmentID, err := s.entitlement.Grant(ctx, e.saleID, e.email, e.fullName, e.productID)
	if err != nil {
		return err
	}
	if enrollmentID == "" {
		return nil
	}
	return s.notifier.Notify(ctx, e.sellerID,
		"New subscriber enrolled",
		e.fullName+" now has member-area access to "+e.productName+".",
		types.NotificationSeveritySuccess, nil)
}

type revokeEffect struct {
	saleID string
	reason string
}

func (e *revokeEffect) name() string { return "entitlement_revoke" }

func (e *revokeEffect) run(ctx context.Context, s *Service) error {
	return s.entitlement.Revoke(ctx, e.saleID, e.reason)
}

// revokeLookupEffect is the compatibility fallback for subscriptions that
// predate sale correlation: locate the student by (email, product) instead.
type revokeLookupEffect struct {
	email     string
	productID string
	reason    string
}

func (e *revokeLookupEffect) name() string { return "entitlement_revoke_lookup" }

func (e *revokeLookupEffect) run(ctx context.Context, s *Service) error {
	return s.entitlement.RevokeByLookup(ctx, e.email, e.productID, e.reason)
}

// dispatchEffects runs side effects best-effort. Failures are logged with
// the effect name and never propagated; the state transition has already
// committed by the time this runs.
func (s *Service) dispatchEffects(ctx context.Context, subscriptionID string, effects []effect) {
	for _, e := range effects {
		if err := e.run(ctx, s); err != nil {
			logctx.FromCtx(ctx, s.log).Errorw("side effect failed",
				"effect", e.name(),
				"subscription_id", subscriptionID,
				"err", err,
			)
		}
	}
}
