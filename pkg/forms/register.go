package forms

import (
	"context"
	"time"

	"github.com/pulseboard/dashboard-client/pkg/gateway"
	"github.com/pulseboard/dashboard-client/pkg/logger"
	"github.com/pulseboard/dashboard-client/pkg/nav"
)

type IRegisterGateway interface {
	Register(ctx context.Context, username, email, password string) error
}

// RegisterForm drives one registration submission at a time. Registration
// establishes no session: on success the user is sent to the login form.
type RegisterForm struct {
	formState
	gw       IRegisterGateway
	navigate nav.Navigator
	delay    time.Duration
}

type registerPayload struct {
	Username string `validate:"required"`
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

func NewRegisterForm(gw IRegisterGateway, n nav.Navigator, delay time.Duration) *RegisterForm {
	return &RegisterForm{
		gw:       gw,
		navigate: n,
		delay:    delay,
	}
}

func (f *RegisterForm) Submit(ctx context.Context, username, email, password string) {
	f.set(State{Phase: PhasePending})

	payload := registerPayload{Username: username, Email: email, Password: password}
	if err := validate.Struct(payload); err != nil {
		f.set(State{Phase: PhaseError, Message: validationMessage(err)})
		return
	}

	ctx = logger.SetRequestID(ctx)
	err := f.gw.Register(ctx, username, email, password)
	if f.isClosed() {
		return
	}
	if err != nil {
		logger.Log(ctx).Errorf("forms/register: attempt failed for `%s`, %v", username, err)
		f.set(State{Phase: PhaseError, Message: gateway.Message(err, MsgRegisterFallback)})
		return
	}

	f.set(State{Phase: PhaseSuccess, Message: MsgRegisterSuccess})
	f.scheduleNavigate(f.navigate, nav.RouteLogin, f.delay)
}
