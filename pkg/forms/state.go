package forms

import (
	"sync"
	"time"

	"github.com/pulseboard/dashboard-client/pkg/nav"
)

// Phase of one credential submission. A form renders exactly one of idle,
// pending, success or error at a time.
type Phase int

const (
	PhaseIdle Phase = iota
	PhasePending
	PhaseSuccess
	PhaseError
)

type State struct {
	Phase   Phase
	Message string
}

// Per-operation fallbacks, rendered when the backend sent no usable text.
const (
	MsgLoginFallback     = "Login failed. Please try again."
	MsgRegisterFallback  = "Registration failed. Please try again."
	MsgFederatedFallback = "Google login failed. Please try again."
	MsgFederatedAborted  = "Google login was cancelled or failed. Please try again."

	MsgLoginSuccess    = "Logged in successfully."
	MsgRegisterSuccess = "Registration successful. Please log in."
)

// formState is the shared rendering state of a credential form. Once the
// form is closed (its view unmounted), results arriving late are dropped:
// they must not touch the session store or navigate.
type formState struct {
	mu       sync.Mutex
	state    State
	closed   bool
	onChange func(State)
}

func (f *formState) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// OnChange registers the render callback of the host UI.
func (f *formState) OnChange(fn func(State)) {
	f.mu.Lock()
	f.onChange = fn
	f.mu.Unlock()
}

// Close marks the form's view as gone.
func (f *formState) Close() {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
}

func (f *formState) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func (f *formState) set(st State) {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	f.state = st
	fn := f.onChange
	f.mu.Unlock()

	if fn != nil {
		fn(st)
	}
}

// scheduleNavigate leaves the form after a short delay so the success
// message gets a chance to render. Cosmetic only, the session is already
// established when it is called.
func (f *formState) scheduleNavigate(n nav.Navigator, route string, delay time.Duration) {
	if n == nil {
		return
	}
	time.AfterFunc(delay, func() {
		if f.isClosed() {
			return
		}
		n.NavigateTo(route)
	})
}
