package access

import "github.com/BruksfildServices01/jacare-do-corte/internal/httperr"

// PaymentStatus is the stored per-user gate flag.
type PaymentStatus string

const (
	PaymentApproved PaymentStatus = "approved"
	PaymentPending  PaymentStatus = "pending"
	PaymentBlocked  PaymentStatus = "blocked"
)

func ParsePaymentStatus(s string) (PaymentStatus, error) {
	switch PaymentStatus(s) {
	case PaymentApproved, PaymentPending, PaymentBlocked:
		return PaymentStatus(s), nil
	}
	return "", httperr.ErrBusiness("invalid_status")
}

type State string

const (
	StateUnauthenticated  State = "unauthenticated"
	StateAwaitingApproval State = "awaiting_approval"
	StateApproved         State = "approved"
	StateBlocked          State = "blocked"
)

type Event string

const (
	EventSignIn        Event = "sign_in"
	EventNotifyPayment Event = "notify_payment"
	EventApprove       Event = "approve"
	EventBlock         Event = "block"
	EventSignOut       Event = "sign_out"
)

// transitions lists every allowed (state, event) pair. sign_in is
// resolved separately because its target depends on the stored status.
var transitions = map[State]map[Event]State{
	StateAwaitingApproval: {
		EventNotifyPayment: StateAwaitingApproval,
		EventApprove:       StateApproved,
		EventBlock:         StateBlocked,
		EventSignOut:       StateUnauthenticated,
	},
	StateApproved: {
		EventApprove: StateApproved,
		EventBlock:   StateBlocked,
		EventSignOut: StateUnauthenticated,
	},
	StateBlocked: {
		EventNotifyPayment: StateAwaitingApproval,
		EventApprove:       StateApproved,
		EventBlock:         StateBlocked,
		EventSignOut:       StateUnauthenticated,
	},
}

// Transition applies ev to from.
func Transition(from State, ev Event) (State, error) {
	if next, ok := transitions[from][ev]; ok {
		return next, nil
	}
	return from, httperr.ErrBusiness("invalid_transition")
}

// SignIn is the sign_in transition out of unauthenticated.
func SignIn(status PaymentStatus) State {
	switch status {
	case PaymentApproved:
		return StateApproved
	case PaymentBlocked:
		return StateBlocked
	default:
		return StateAwaitingApproval
	}
}

// StatusFor is the payment status persisted for a state.
func StatusFor(s State) PaymentStatus {
	switch s {
	case StateApproved:
		return PaymentApproved
	case StateBlocked:
		return PaymentBlocked
	default:
		return PaymentPending
	}
}

// EventFor picks the admin event that moves a user to status.
func EventFor(status PaymentStatus) Event {
	switch status {
	case PaymentApproved:
		return EventApprove
	case PaymentBlocked:
		return EventBlock
	default:
		return EventNotifyPayment
	}
}
