package forms

import (
	"context"
	"time"

	"github.com/pulseboard/dashboard-client/pkg/gateway"
	"github.com/pulseboard/dashboard-client/pkg/logger"
	"github.com/pulseboard/dashboard-client/pkg/nav"
	"github.com/pulseboard/dashboard-client/pkg/user"
)

type ILoginGateway interface {
	Login(ctx context.Context, username, password string) (*user.User, error)
}

type ISessionStore interface {
	MarkAuthenticated(usr *user.User)
}

// LoginForm drives one password login submission at a time. Submit blocks
// until the attempt resolves; run it from the UI's worker goroutine and
// watch OnChange for renders.
type LoginForm struct {
	formState
	gw       ILoginGateway
	store    ISessionStore
	navigate nav.Navigator
	delay    time.Duration
}

type loginPayload struct {
	Username string `validate:"required"`
	Password string `validate:"required"`
}

func NewLoginForm(gw ILoginGateway, store ISessionStore, n nav.Navigator, delay time.Duration) *LoginForm {
	return &LoginForm{
		gw:       gw,
		store:    store,
		navigate: n,
		delay:    delay,
	}
}

func (f *LoginForm) Submit(ctx context.Context, username, password string) {
	f.set(State{Phase: PhasePending})

	if err := validate.Struct(loginPayload{Username: username, Password: password}); err != nil {
		f.set(State{Phase: PhaseError, Message: validationMessage(err)})
		return
	}

	ctx = logger.SetRequestID(ctx)
	usr, err := f.gw.Login(ctx, username, password)
	if f.isClosed() {
		// the view is gone, a late result must not touch the session
		return
	}
	if err != nil {
		logger.Log(ctx).Errorf("forms/login: attempt failed for `%s`, %v", username, err)
		f.set(State{Phase: PhaseError, Message: gateway.Message(err, MsgLoginFallback)})
		return
	}

	f.store.MarkAuthenticated(usr)
	f.set(State{Phase: PhaseSuccess, Message: MsgLoginSuccess})
	f.scheduleNavigate(f.navigate, nav.RouteDashboard, f.delay)
}
