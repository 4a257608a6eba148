package guard

import (
	"context"
	"sync"

	"github.com/pulseboard/dashboard-client/pkg/logger"
	"github.com/pulseboard/dashboard-client/pkg/nav"
	"github.com/pulseboard/dashboard-client/pkg/session"
	"github.com/pulseboard/dashboard-client/pkg/user"
)

// Decision of one guard activation. Guarded content may be rendered only
// after Allow; a Deny carries the redirect target.
type Decision int

const (
	DecisionPending Decision = iota
	DecisionAllow
	DecisionDeny
)

type Result struct {
	Decision   Decision
	RedirectTo string
}

type IProber interface {
	ProbeSession(ctx context.Context) (*user.User, error)
}

type ISessionStore interface {
	CurrentStatus() session.Status
	MarkChecking()
	MarkAuthenticated(usr *user.User)
	MarkUnauthenticated()
}

// Guard wraps a protected view. Each activation recomputes the decision; a
// session already confirmed within this page lifetime short-circuits to
// Allow without re-probing (the probe at the next activation supersedes any
// stale answer anyway).
type Guard struct {
	mu       sync.Mutex
	closed   bool
	prober   IProber
	store    ISessionStore
	navigate nav.Navigator
}

func New(p IProber, store ISessionStore, n nav.Navigator) *Guard {
	return &Guard{
		prober:   p,
		store:    store,
		navigate: n,
	}
}

// Close marks the guarded view as unmounted; probe results arriving later
// are advisory-only and no longer mutate the session or navigate.
func (g *Guard) Close() {
	g.mu.Lock()
	g.closed = true
	g.mu.Unlock()
}

func (g *Guard) isClosed() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.closed
}

// Activate runs one guard check, blocking until the decision resolves.
func (g *Guard) Activate(ctx context.Context) Result {
	if g.store.CurrentStatus() == session.StatusAuthenticated {
		return Result{Decision: DecisionAllow}
	}

	ctx = logger.SetRequestID(ctx)
	g.store.MarkChecking()

	usr, err := g.prober.ProbeSession(ctx)
	if g.isClosed() {
		return Result{Decision: DecisionPending}
	}
	if err != nil {
		// an unauthenticated probe is the expected cold answer, redirect
		// silently instead of surfacing an error
		logger.Log(ctx).Errorf("guard: probe denied access, %v", err)
		g.store.MarkUnauthenticated()
		g.navigate.NavigateTo(nav.RouteLogin)
		return Result{Decision: DecisionDeny, RedirectTo: nav.RouteLogin}
	}

	g.store.MarkAuthenticated(usr)
	return Result{Decision: DecisionAllow}
}

// Render drives one activation against the host UI: loading is shown while
// the decision is pending, view runs only on Allow. Neither the protected
// view nor its data is ever touched on Pending or Deny.
func (g *Guard) Render(ctx context.Context, loading, view func()) Result {
	if g.store.CurrentStatus() != session.StatusAuthenticated && loading != nil {
		loading()
	}

	res := g.Activate(ctx)
	if res.Decision == DecisionAllow && view != nil {
		view()
	}
	return res
}
