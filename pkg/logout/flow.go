package logout

import (
	"context"
	"sync"

	"github.com/pulseboard/dashboard-client/pkg/logger"
	"github.com/pulseboard/dashboard-client/pkg/nav"
)

// State of the logout flow. The remote invalidation only happens after an
// explicit confirmation.
type State int

const (
	StateIdle State = iota
	StateConfirmPending
	StateCompleted
)

// Prompt copy rendered while the flow waits for confirmation.
const (
	PromptTitle   = "Are you sure?"
	PromptMessage = "You will be signed out of the dashboard."
	PromptConfirm = "Confirm"
	PromptCancel  = "Cancel"
)

type ILogoutGateway interface {
	Logout(ctx context.Context) error
}

type ISessionStore interface {
	MarkUnauthenticated()
}

// Flow is the confirmed session teardown. The remote call is best effort:
// whatever it answers, the local session is cleared and the user lands on
// the login entry point.
type Flow struct {
	mu       sync.Mutex
	state    State
	gw       ILogoutGateway
	store    ISessionStore
	navigate nav.Navigator
}

func NewFlow(gw ILogoutGateway, store ISessionStore, n nav.Navigator) *Flow {
	return &Flow{
		gw:       gw,
		store:    store,
		navigate: n,
	}
}

func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Request opens the confirmation prompt. No network call yet.
func (f *Flow) Request() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == StateIdle || f.state == StateCompleted {
		f.state = StateConfirmPending
	}
	return f.state
}

// Cancel returns to Idle with no side effects.
func (f *Flow) Cancel() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == StateConfirmPending {
		f.state = StateIdle
	}
	return f.state
}

// Confirm tears the session down. The remote outcome is swallowed: the
// user's intent to leave always succeeds locally.
func (f *Flow) Confirm(ctx context.Context) State {
	f.mu.Lock()
	if f.state != StateConfirmPending {
		st := f.state
		f.mu.Unlock()
		return st
	}
	f.mu.Unlock()

	ctx = logger.SetRequestID(ctx)
	if err := f.gw.Logout(ctx); err != nil {
		logger.Log(ctx).Errorf("logout: server-side invalidation failed, %v", err)
	}

	f.store.MarkUnauthenticated()

	f.mu.Lock()
	f.state = StateCompleted
	f.mu.Unlock()

	f.navigate.NavigateTo(nav.RouteLogin)
	return StateCompleted
}
