package gateway

import (
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"

	"github.com/go-resty/resty/v2"

	"github.com/pulseboard/dashboard-client/pkg/config"
	"github.com/pulseboard/dashboard-client/pkg/logger"
	"github.com/pulseboard/dashboard-client/pkg/user"
)

// ICredentials is where credential material delivered by the backend goes.
// The gateway itself persists nothing.
type ICredentials interface {
	Credential() string
	SetCredential(token string)
}

// Client is the sole channel between the session subsystem and the remote
// API. Every operation returns exactly once, with a *AuthError on failure.
type Client struct {
	http  *resty.Client
	creds ICredentials
}

func New(cfg *config.Config, creds ICredentials) (*Client, error) {
	httpClient := resty.New().
		SetBaseURL(cfg.APIBaseURL + "/api").
		SetTimeout(cfg.RequestTimeout).
		SetHeader("Content-Type", "application/json")

	switch cfg.Transport {
	case config.TransportCookie:
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("gateway: can't create cookie jar, %w", err)
		}
		httpClient.SetCookieJar(jar)
	default:
		httpClient.OnBeforeRequest(func(_ *resty.Client, r *resty.Request) error {
			if tok := creds.Credential(); tok != `` {
				r.SetHeader("Authorization", "Bearer "+tok)
			}
			return nil
		})
	}

	return &Client{http: httpClient, creds: creds}, nil
}

// HTTP exposes the shared transport so sibling services (dashboard data)
// ride the same credential.
func (c *Client) HTTP() *resty.Client {
	return c.http
}

// authResponse covers both success and failure bodies: the backend answers
// either `{user, access_token}` or `{error}`/`{msg}`.
type authResponse struct {
	User        *user.User `json:"user"`
	AccessToken string     `json:"access_token"`
	Error       string     `json:"error"`
	Msg         string     `json:"msg"`
}

func (r *authResponse) message() string {
	if r.Error != `` {
		return r.Error
	}
	return r.Msg
}

func (c *Client) Login(ctx context.Context, username, password string) (*user.User, error) {
	out := new(authResponse)
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{"username": username, "password": password}).
		SetResult(out).
		SetError(out).
		Post("/auth/login")
	if err != nil {
		logger.Log(ctx).Errorf("gateway: login request failed, %v", err)
		return nil, &AuthError{Kind: ErrNetworkUnavailable, Message: MsgServerNotResponding}
	}
	if resp.IsError() {
		logger.Log(ctx).Errorf("gateway: login rejected for `%s`, status %d", username, resp.StatusCode())
		return nil, &AuthError{Kind: ErrInvalidCredentials, Message: out.message()}
	}

	if out.AccessToken != `` {
		c.creds.SetCredential(out.AccessToken)
	}
	if out.User == nil {
		// cookie deployments answer with the credential only, the profile
		// snapshot comes from the probe
		return c.ProbeSession(ctx)
	}
	return out.User, nil
}

func (c *Client) Register(ctx context.Context, username, email, password string) error {
	out := new(authResponse)
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{"username": username, "email": email, "password": password}).
		SetResult(out).
		SetError(out).
		Post("/auth/register")
	if err != nil {
		logger.Log(ctx).Errorf("gateway: register request failed, %v", err)
		return &AuthError{Kind: ErrNetworkUnavailable, Message: MsgServerNotResponding}
	}
	if resp.IsError() {
		logger.Log(ctx).Errorf("gateway: registration rejected for `%s`, status %d", username, resp.StatusCode())
		return &AuthError{Kind: ErrValidationFailed, Message: out.message()}
	}
	return nil
}

func (c *Client) ExchangeFederatedToken(ctx context.Context, credential string) (*user.User, error) {
	out := new(authResponse)
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{"credential": credential}).
		SetResult(out).
		SetError(out).
		Post("/auth/google")
	if err != nil {
		logger.Log(ctx).Errorf("gateway: federated exchange failed, %v", err)
		return nil, &AuthError{Kind: ErrNetworkUnavailable, Message: MsgServerNotResponding}
	}
	if resp.IsError() {
		logger.Log(ctx).Errorf("gateway: federated exchange rejected, status %d", resp.StatusCode())
		return nil, &AuthError{Kind: ErrFederatedCancelled, Message: out.Error}
	}

	if out.AccessToken != `` {
		c.creds.SetCredential(out.AccessToken)
	}
	if out.User == nil {
		return c.ProbeSession(ctx)
	}
	return out.User, nil
}

// ProbeSession asks the backend "am I currently authenticated". A 401 is
// the expected answer for a cold or expired session, not a fault.
func (c *Client) ProbeSession(ctx context.Context) (*user.User, error) {
	out := new(authResponse)
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(out).
		SetError(out).
		Get("/auth/me")
	if err != nil {
		logger.Log(ctx).Errorf("gateway: probe request failed, %v", err)
		return nil, &AuthError{Kind: ErrNetworkUnavailable, Message: MsgServerNotResponding}
	}
	if resp.StatusCode() == http.StatusUnauthorized {
		return nil, &AuthError{Kind: ErrSessionExpired}
	}
	if resp.IsError() || out.User == nil {
		logger.Log(ctx).Errorf("gateway: probe answered status %d without a user", resp.StatusCode())
		return nil, &AuthError{Kind: ErrSessionExpired, Message: out.message()}
	}
	return out.User, nil
}

// Logout asks the backend to invalidate the session. Best effort: the
// caller tears the local session down whatever happens here.
func (c *Client) Logout(ctx context.Context) error {
	resp, err := c.http.R().SetContext(ctx).Post("/auth/logout")
	if err != nil {
		logger.Log(ctx).Errorf("gateway: logout request failed, %v", err)
		return &AuthError{Kind: ErrNetworkUnavailable, Message: MsgServerNotResponding}
	}
	if resp.IsError() {
		logger.Log(ctx).Errorf("gateway: logout answered status %d", resp.StatusCode())
		return &AuthError{Kind: ErrSessionExpired}
	}
	return nil
}
