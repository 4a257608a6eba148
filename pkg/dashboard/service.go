package dashboard

import (
	"context"
	"net/http"

	"github.com/go-resty/resty/v2"

	"github.com/pulseboard/dashboard-client/pkg/gateway"
	"github.com/pulseboard/dashboard-client/pkg/logger"
)

// Stats is the headline card data of the dashboard page.
type Stats struct {
	TotalUsers  int `json:"total_users"`
	ActiveUsers int `json:"active_users"`
}

// Service fetches the protected dashboard data. It rides the gateway's
// transport so the same credential (bearer header or cookie) applies, and
// it is only meaningful after the guard allowed the view.
type Service struct {
	client *resty.Client
}

func NewService(c *resty.Client) *Service {
	return &Service{client: c}
}

func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	out := struct {
		Data *Stats `json:"data"`
	}{}
	if err := s.get(ctx, "/dashboard", &out); err != nil {
		return nil, err
	}
	if out.Data == nil {
		return &Stats{}, nil
	}
	return out.Data, nil
}

func (s *Service) Profile(ctx context.Context) (map[string]any, error) {
	out := map[string]any{}
	if err := s.get(ctx, "/profile", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) Admin(ctx context.Context) (map[string]any, error) {
	out := map[string]any{}
	if err := s.get(ctx, "/admin", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) get(ctx context.Context, path string, out any) error {
	resp, err := s.client.R().
		SetContext(ctx).
		SetResult(out).
		Get(path)
	if err != nil {
		logger.Log(ctx).Errorf("dashboard: request to %s failed, %v", path, err)
		return &gateway.AuthError{Kind: gateway.ErrNetworkUnavailable, Message: gateway.MsgServerNotResponding}
	}
	if resp.StatusCode() == http.StatusUnauthorized {
		// the session went stale underneath the view, the next guard
		// activation redirects
		return &gateway.AuthError{Kind: gateway.ErrSessionExpired}
	}
	if resp.IsError() {
		logger.Log(ctx).Errorf("dashboard: request to %s answered status %d", path, resp.StatusCode())
		return &gateway.AuthError{Kind: gateway.ErrNetworkUnavailable}
	}
	return nil
}
