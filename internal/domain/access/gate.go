package access

const (
	RedirectLogin   = "/login"
	RedirectPayment = "/payment"
)

// Subject is what the gate knows about the caller.
type Subject struct {
	Authenticated bool
	Admin         bool
	Demo          bool
	Status        PaymentStatus
}

// Resolve places the subject in the state machine.
func Resolve(s Subject) State {
	if !s.Authenticated {
		return StateUnauthenticated
	}
	if s.Admin || s.Demo {
		return StateApproved
	}
	return SignIn(s.Status)
}

// Surface describes the route group being guarded.
type Surface struct {
	// PaymentExempt groups stay reachable before approval.
	PaymentExempt bool
}

type Decision struct {
	State    State  `json:"state"`
	Allow    bool   `json:"allow"`
	Redirect string `json:"redirect,omitempty"`
}

// Decide evaluates session, then approval, then allows.
func Decide(s Subject, surface Surface) Decision {
	state := Resolve(s)

	switch state {
	case StateUnauthenticated:
		return Decision{State: state, Redirect: RedirectLogin}
	case StateApproved:
		return Decision{State: state, Allow: true}
	}

	if surface.PaymentExempt {
		return Decision{State: state, Allow: true}
	}
	return Decision{State: state, Redirect: RedirectPayment}
}
