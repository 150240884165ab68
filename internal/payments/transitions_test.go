package payments

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/storefronthq/storefront-backend/pkg/enums"
)

func TestTransitionTable(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		current enums.OrderStatus
		event   Event
		next    enums.OrderStatus
		apply   bool
	}{
		{"pending success pays", enums.OrderStatusPending, EventSucceeded, enums.OrderStatusPaid, true},
		{"pending failure fails", enums.OrderStatusPending, EventFailed, enums.OrderStatusFailed, true},
		{"pending cancel fails", enums.OrderStatusPending, EventCanceled, enums.OrderStatusFailed, true},
		{"paid success is a no-op", enums.OrderStatusPaid, EventSucceeded, enums.OrderStatusPaid, false},
		{"paid failure is a no-op", enums.OrderStatusPaid, EventFailed, enums.OrderStatusPaid, false},
		{"failed success is a no-op", enums.OrderStatusFailed, EventSucceeded, enums.OrderStatusFailed, false},
		{"shipped cancel is a no-op", enums.OrderStatusShipped, EventCanceled, enums.OrderStatusShipped, false},
		{"completed success is a no-op", enums.OrderStatusCompleted, EventSucceeded, enums.OrderStatusCompleted, false},
		{"unknown event is a no-op", enums.OrderStatusPending, Event("payment_intent.created"), enums.OrderStatusPending, false},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			next, apply := Transition(tc.current, tc.event)
			assert.Equal(t, tc.apply, apply)
			assert.Equal(t, tc.next, next)
		})
	}
}

func TestKnownEvent(t *testing.T) {
	t.Parallel()

	assert.True(t, KnownEvent(EventSucceeded))
	assert.True(t, KnownEvent(EventFailed))
	assert.True(t, KnownEvent(EventCanceled))
	assert.False(t, KnownEvent(Event("payment_intent.created")))
	assert.False(t, KnownEvent(Event("charge.refunded")))
	assert.False(t, KnownEvent(Event("")))
}
