package forms

import (
	"context"
	"time"

	"github.com/pulseboard/dashboard-client/pkg/gateway"
	"github.com/pulseboard/dashboard-client/pkg/logger"
	"github.com/pulseboard/dashboard-client/pkg/nav"
	"github.com/pulseboard/dashboard-client/pkg/user"
)

type IFederatedGateway interface {
	ExchangeFederatedToken(ctx context.Context, credential string) (*user.User, error)
}

// FederatedForm handles the provider-issued token variant of login. The
// payload is opaque: whatever the identity provider handed over is
// exchanged as-is for a local session.
type FederatedForm struct {
	formState
	gw       IFederatedGateway
	store    ISessionStore
	navigate nav.Navigator
	delay    time.Duration
}

func NewFederatedForm(gw IFederatedGateway, store ISessionStore, n nav.Navigator, delay time.Duration) *FederatedForm {
	return &FederatedForm{
		gw:       gw,
		store:    store,
		navigate: n,
		delay:    delay,
	}
}

func (f *FederatedForm) SubmitToken(ctx context.Context, credential string) {
	f.set(State{Phase: PhasePending})

	if credential == `` {
		// the provider widget produced nothing, same outcome as it failing
		f.set(State{Phase: PhaseError, Message: MsgFederatedAborted})
		return
	}

	ctx = logger.SetRequestID(ctx)
	usr, err := f.gw.ExchangeFederatedToken(ctx, credential)
	if f.isClosed() {
		return
	}
	if err != nil {
		logger.Log(ctx).Errorf("forms/federated: exchange failed, %v", err)
		f.set(State{Phase: PhaseError, Message: gateway.Message(err, MsgFederatedFallback)})
		return
	}

	f.store.MarkAuthenticated(usr)
	f.set(State{Phase: PhaseSuccess, Message: MsgLoginSuccess})
	f.scheduleNavigate(f.navigate, nav.RouteDashboard, f.delay)
}

// ProviderFailed records that the provider widget was closed or errored
// before producing a token. No gateway call is made.
func (f *FederatedForm) ProviderFailed() {
	f.set(State{Phase: PhaseError, Message: MsgFederatedAborted})
}
