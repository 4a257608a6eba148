package session

// Status is the lifecycle state of the browser-context session. It starts
// Unknown, moves to Checking while a probe is in flight and resolves to
// Authenticated or Unauthenticated.
type Status int

const (
	StatusUnknown Status = iota
	StatusChecking
	StatusAuthenticated
	StatusUnauthenticated
)

func (s Status) String() string {
	switch s {
	case StatusChecking:
		return "checking"
	case StatusAuthenticated:
		return "authenticated"
	case StatusUnauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}
