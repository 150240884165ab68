package payments

import "github.com/storefronthq/storefront-backend/pkg/enums"

// Event is a payment-provider callback kind relevant to order status.
type Event string

const (
	EventSucceeded Event = "payment_intent.succeeded"
	EventFailed    Event = "payment_intent.payment_failed"
	EventCanceled  Event = "payment_intent.canceled"
)

type transitionKey struct {
	status enums.OrderStatus
	event  Event
}

// transitionTable is the full status × event mapping. Absent pairs are no-ops,
// which makes repeated webhook delivery idempotent by construction.
var transitionTable = map[transitionKey]enums.OrderStatus{
	{enums.OrderStatusPending, EventSucceeded}: enums.OrderStatusPaid,
	{enums.OrderStatusPending, EventFailed}:    enums.OrderStatusFailed,
	{enums.OrderStatusPending, EventCanceled}:  enums.OrderStatusFailed,
}

// Transition resolves the next order status for the given event. The second
// return reports whether a state change should be applied; false means the
// event is acknowledged without touching the order.
func Transition(current enums.OrderStatus, event Event) (enums.OrderStatus, bool) {
	next, ok := transitionTable[transitionKey{status: current, event: event}]
	if !ok {
		return current, false
	}
	return next, true
}

// KnownEvent reports whether the event kind participates in the state machine.
func KnownEvent(event Event) bool {
	switch event {
	case EventSucceeded, EventFailed, EventCanceled:
		return true
	default:
		return false
	}
}
