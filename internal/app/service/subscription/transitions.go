package subscription

import (
	"fmt"

	"github.com/vendahub/billing/pkg/types"
)

// transitionTable is the single source of truth for legal status moves.
// Each entry maps (current status, change reason) to the resulting status;
// absent entries are illegal and rejected before any write. "canceled" is
// terminal: it has no outgoing entries, so redelivered activate/renew
// events for a canceled subscription fail with ErrInvalidTransition.
//
// schedule_cancel keeps the current status on purpose: the
// cancel_at_period_end flag is orthogonal and enforced by the external
// expiry sweep, not by a status move here.
var transitionTable = map[types.SubscriptionStatus]map[types.SubscriptionChangeReason]types.SubscriptionStatus{
	types.SubscriptionStatusPending: {
		types.SubscriptionChangeReasonActivate:       types.SubscriptionStatusActive,
		types.SubscriptionChangeReasonCancel:         types.SubscriptionStatusCanceled,
		types.SubscriptionChangeReasonScheduleCancel: types.SubscriptionStatusPending,
	},
	types.SubscriptionStatusActive: {
		types.SubscriptionChangeReasonActivate:       types.SubscriptionStatusActive,
		types.SubscriptionChangeReasonRenew:          types.SubscriptionStatusActive,
		types.SubscriptionChangeReasonPaymentFailure: types.SubscriptionStatusPastDue,
		types.SubscriptionChangeReasonCancel:         types.SubscriptionStatusCanceled,
		types.SubscriptionChangeReasonScheduleCancel: types.SubscriptionStatusActive,
	},
	types.SubscriptionStatusPastDue: {
		types.SubscriptionChangeReasonActivate:       types.SubscriptionStatusActive,
		types.SubscriptionChangeReasonRenew:          types.SubscriptionStatusActive,
		types.SubscriptionChangeReasonPaymentFailure: types.SubscriptionStatusPastDue,
		types.SubscriptionChangeReasonCancel:         types.SubscriptionStatusCanceled,
		types.SubscriptionChangeReasonScheduleCancel: types.SubscriptionStatusPastDue,
	},
	// canceled: terminal, no outgoing transitions.
}

// nextStatus validates a transition and returns the resulting status.
func nextStatus(from types.SubscriptionStatus, reason types.SubscriptionChangeReason) (types.SubscriptionStatus, error) {
	if to, ok := transitionTable[from][reason]; ok {
		return to, nil
	}
	return "", fmt.Errorf("%w: %s from %s", ErrInvalidTransition, reason, from)
}
