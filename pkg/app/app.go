package app

import (
	"context"
	"encoding/hex"
	"fmt"

	"github.com/pulseboard/dashboard-client/pkg/config"
	"github.com/pulseboard/dashboard-client/pkg/dashboard"
	"github.com/pulseboard/dashboard-client/pkg/federated"
	"github.com/pulseboard/dashboard-client/pkg/forms"
	"github.com/pulseboard/dashboard-client/pkg/gateway"
	"github.com/pulseboard/dashboard-client/pkg/guard"
	"github.com/pulseboard/dashboard-client/pkg/logger"
	"github.com/pulseboard/dashboard-client/pkg/logout"
	"github.com/pulseboard/dashboard-client/pkg/nav"
	"github.com/pulseboard/dashboard-client/pkg/session"
)

// App is the assembled session subsystem. The host UI constructs one App
// per page lifetime, hands it a Navigator and renders off the forms, the
// guard and the store.
type App struct {
	Config    *config.Config
	Store     *session.Store
	Gateway   *gateway.Client
	Login     *forms.LoginForm
	Register  *forms.RegisterForm
	Federated *forms.FederatedForm
	Guard     *guard.Guard
	Logout    *logout.Flow
	Dashboard *dashboard.Service
}

func New(cfg *config.Config, navigate nav.Navigator) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger.Run(cfg.LogLevel)

	keeper, err := buildKeeper(cfg)
	if err != nil {
		return nil, err
	}

	store := session.NewStore(keeper)
	gw, err := gateway.New(cfg, store)
	if err != nil {
		return nil, err
	}

	return &App{
		Config:    cfg,
		Store:     store,
		Gateway:   gw,
		Login:     forms.NewLoginForm(gw, store, navigate, cfg.NavigateDelay),
		Register:  forms.NewRegisterForm(gw, navigate, cfg.NavigateDelay),
		Federated: forms.NewFederatedForm(gw, store, navigate, cfg.NavigateDelay),
		Guard:     guard.New(gw, store, navigate),
		Logout:    logout.NewFlow(gw, store, navigate),
		Dashboard: dashboard.NewService(gw.HTTP()),
	}, nil
}

// WarmUp fires an opportunistic probe at startup. It warms a cold backend
// and settles the session status early; the result is advisory only and a
// guard activation racing it simply wins by completing later.
func (a *App) WarmUp(ctx context.Context) {
	ctx = logger.SetRequestID(ctx)

	// a persisted token that is clearly past its expiry claim never gets
	// on the wire
	if tok := a.Store.Credential(); tok != `` && session.TokenExpired(tok) {
		logger.Log(ctx).Infof("app: persisted credential expired at %v", session.TokenExpiry(tok))
		a.Store.MarkUnauthenticated()
		return
	}
	a.Store.MarkChecking()

	usr, err := a.Gateway.ProbeSession(ctx)
	if err != nil {
		logger.Log(ctx).Infof("app: warm-up probe found no session, %v", err)
		a.Store.MarkUnauthenticated()
		return
	}
	a.Store.MarkAuthenticated(usr)
}

// StartFederatedListener binds the loopback callback listener and feeds
// incoming provider credentials into the federated form. Hosts with an
// embedded provider widget call Federated.SubmitToken directly and skip
// this. The returned URL is the provider's sign-in page, wired back to
// the listener.
func (a *App) StartFederatedListener(ctx context.Context) (*federated.Listener, string, error) {
	l := federated.NewListener(a.Config.FederatedListenAddr, func(credential string) {
		a.Federated.SubmitToken(ctx, credential)
	})
	addr, err := l.Start()
	if err != nil {
		return nil, ``, err
	}
	return l, federated.SignInURL(a.Config.GoogleClientID, addr), nil
}

// buildKeeper picks the credential persistence for the configured
// transport: cookie deployments persist nothing, bearer deployments keep
// the token in a file, sealed when a key is configured.
func buildKeeper(cfg *config.Config) (session.Keeper, error) {
	if cfg.Transport == config.TransportCookie {
		return session.NewMemoryKeeper(), nil
	}

	fk, err := session.NewFileKeeper(cfg.CredentialDir)
	if err != nil {
		return nil, err
	}
	if cfg.CredentialSealKey == `` {
		return fk, nil
	}

	key, err := hex.DecodeString(cfg.CredentialSealKey)
	if err != nil {
		return nil, fmt.Errorf("app: credential seal key is not hex, %w", err)
	}
	return session.NewSealedKeeper(fk, key)
}
