package subscription

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vendahub/billing/pkg/types"
)

func TestNextStatus_Table(t *testing.T) {
	type move struct {
		from   types.SubscriptionStatus
		reason types.SubscriptionChangeReason
		to     types.SubscriptionStatus
		ok     bool
	}

	moves := []move{
		{types.SubscriptionStatusPending, types.SubscriptionChangeReasonActivate, types.SubscriptionStatusActive, true},
		{types.SubscriptionStatusPending, types.SubscriptionChangeReasonCancel, types.SubscriptionStatusCanceled, true},
		{types.SubscriptionStatusPending, types.SubscriptionChangeReasonScheduleCancel, types.SubscriptionStatusPending, true},
		{types.SubscriptionStatusPending, types.SubscriptionChangeReasonRenew, "", false},
		{types.SubscriptionStatusPending, types.SubscriptionChangeReasonPaymentFailure, "", false},

		{types.SubscriptionStatusActive, types.SubscriptionChangeReasonActivate, types.SubscriptionStatusActive, true},
		{types.SubscriptionStatusActive, types.SubscriptionChangeReasonRenew, types.SubscriptionStatusActive, true},
		{types.SubscriptionStatusActive, types.SubscriptionChangeReasonPaymentFailure, types.SubscriptionStatusPastDue, true},
		{types.SubscriptionStatusActive, types.SubscriptionChangeReasonCancel, types.SubscriptionStatusCanceled, true},
		{types.SubscriptionStatusActive, types.SubscriptionChangeReasonScheduleCancel, types.SubscriptionStatusActive, true},

		{types.SubscriptionStatusPastDue, types.SubscriptionChangeReasonActivate, types.SubscriptionStatusActive, true},
		{types.SubscriptionStatusPastDue, types.SubscriptionChangeReasonRenew, types.SubscriptionStatusActive, true},
		{types.SubscriptionStatusPastDue, types.SubscriptionChangeReasonPaymentFailure, types.SubscriptionStatusPastDue, true},
		{types.SubscriptionStatusPastDue, types.SubscriptionChangeReasonCancel, types.SubscriptionStatusCanceled, true},

		// canceled is terminal
		{types.SubscriptionStatusCanceled, types.SubscriptionChangeReasonActivate, "", false},
		{types.SubscriptionStatusCanceled, types.SubscriptionChangeReasonRenew, "", false},
		{types.SubscriptionStatusCanceled, types.SubscriptionChangeReasonCancel, "", false},
		{types.SubscriptionStatusCanceled, types.SubscriptionChangeReasonScheduleCancel, "", false},
		{types.SubscriptionStatusCanceled, types.SubscriptionChangeReasonPaymentFailure, "", false},
	}

	for _, m := range moves {
		t.Run(string(m.from)+"_"+string(m.reason), func(t *testing.T) {
			got, err := nextStatus(m.from, m.reason)
			if m.ok {
				require.NoError(t, err)
				assert.Equal(t, m.to, got)
			} else {
				assert.ErrorIs(t, err, ErrInvalidTransition)
			}
		})
	}
}

func TestNextStatus_CanceledHasNoOutgoing(t *testing.T) {
	_, ok := transitionTable[types.SubscriptionStatusCanceled]
	assert.False(t, ok, "canceled must stay terminal")
}
