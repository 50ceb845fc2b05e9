package session

type Decision int

const (
	// DecisionDefer renders a neutral placeholder: the bootstrap has not resolved yet.
	DecisionDefer Decision = iota
	// DecisionAllow renders the protected content.
	DecisionAllow
	// DecisionRedirect sends the user to the login entry point.
	DecisionRedirect
)

func (d Decision) String() string {
	switch d {
	case DecisionDefer:
		return "defer"
	case DecisionAllow:
		return "allow"
	case DecisionRedirect:
		return "redirect"
	default:
		return "unknown"
	}
}

// Decide is the route guard. It is re-evaluated on every request; the guest flag never
// grants access.
func Decide(s Snapshot) Decision {
	switch {
	case s.Loading():
		return DecisionDefer
	case s.Identity != nil:
		return DecisionAllow
	default:
		return DecisionRedirect
	}
}
