package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/pulseboard/dashboard-client/pkg/config"
)

type stubCreds struct {
	mu    sync.Mutex
	token string
}

func (c *stubCreds) Credential() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

func (c *stubCreds) SetCredential(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

func testConfig(baseURL string) *config.Config {
	return &config.Config{
		APIBaseURL:     baseURL,
		Transport:      config.TransportBearer,
		RequestTimeout: 2 * time.Second,
	}
}

func newTestClient(t *testing.T, handler http.Handler) (*Client, *stubCreds, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	creds := &stubCreds{}
	c, err := New(testConfig(srv.URL), creds)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c, creds, srv
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func TestLogin_Success(t *testing.T) {
	c, creds, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/auth/login" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["username"] != "alice" || body["password"] != "correct" {
			t.Errorf("unexpected body: %v", body)
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"user":         map[string]string{"username": "alice", "email": "a@x.com"},
			"access_token": "tok-123",
		})
	}))

	usr, err := c.Login(context.Background(), "alice", "correct")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if usr == nil || usr.Username != "alice" || usr.Email != "a@x.com" {
		t.Fatalf("unexpected user: %+v", usr)
	}
	if creds.Credential() != "tok-123" {
		t.Fatalf("expected access token to reach the credential store, got %q", creds.Credential())
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	c, creds, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Invalid credentials"})
	}))

	_, err := c.Login(context.Background(), "alice", "wrong")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if got := Message(err, "fallback"); got != "Invalid credentials" {
		t.Fatalf("expected the backend message verbatim, got %q", got)
	}
	if creds.Credential() != "" {
		t.Fatalf("a failed login must not store a credential")
	}
}

func TestLogin_MsgFieldVariant(t *testing.T) {
	c, _, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"msg": "Bad username or password"})
	}))

	_, err := c.Login(context.Background(), "alice", "wrong")
	if got := Message(err, "fallback"); got != "Bad username or password" {
		t.Fatalf("expected the msg field to surface, got %q", got)
	}
}

func TestLogin_UserBackfilledByProbe(t *testing.T) {
	// cookie-style backend: login answers a token only, the snapshot comes
	// from /auth/me
	c, _, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/login":
			writeJSON(w, http.StatusOK, map[string]string{"access_token": "tok-1"})
		case "/api/auth/me":
			writeJSON(w, http.StatusOK, map[string]any{
				"user": map[string]string{"username": "alice"},
			})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))

	usr, err := c.Login(context.Background(), "alice", "correct")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if usr == nil || usr.Username != "alice" {
		t.Fatalf("expected the probe to backfill the user, got %+v", usr)
	}
}

func TestLogin_ServerDown(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	creds := &stubCreds{}
	c, err := New(testConfig(srv.URL), creds)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	srv.Close()

	_, err = c.Login(context.Background(), "alice", "correct")
	if !errors.Is(err, ErrNetworkUnavailable) {
		t.Fatalf("expected ErrNetworkUnavailable, got %v", err)
	}
	if got := Message(err, ""); got != MsgServerNotResponding {
		t.Fatalf("expected %q, got %q", MsgServerNotResponding, got)
	}
}

func TestRegister_Success(t *testing.T) {
	c, _, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/auth/register" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["email"] != "bob@x.com" {
			t.Errorf("unexpected body: %v", body)
		}
		writeJSON(w, http.StatusCreated, map[string]string{})
	}))

	if err := c.Register(context.Background(), "bob", "bob@x.com", "pass"); err != nil {
		t.Fatalf("Register: %v", err)
	}
}

func TestRegister_DuplicateUsername(t *testing.T) {
	c, _, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "Username taken"})
	}))

	err := c.Register(context.Background(), "bob", "bob@x.com", "pass")
	if !errors.Is(err, ErrValidationFailed) {
		t.Fatalf("expected ErrValidationFailed, got %v", err)
	}
	if got := Message(err, "fallback"); got != "Username taken" {
		t.Fatalf("expected the exact backend message, got %q", got)
	}
}

func TestExchangeFederatedToken_Success(t *testing.T) {
	c, creds, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/google":
			var body map[string]string
			_ = json.NewDecoder(r.Body).Decode(&body)
			if body["credential"] != "provider-jwt" {
				t.Errorf("unexpected body: %v", body)
			}
			writeJSON(w, http.StatusOK, map[string]string{"access_token": "tok-g"})
		case "/api/auth/me":
			writeJSON(w, http.StatusOK, map[string]any{
				"user": map[string]string{"username": "alice"},
			})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))

	usr, err := c.ExchangeFederatedToken(context.Background(), "provider-jwt")
	if err != nil {
		t.Fatalf("ExchangeFederatedToken: %v", err)
	}
	if usr == nil || usr.Username != "alice" {
		t.Fatalf("unexpected user: %+v", usr)
	}
	if creds.Credential() != "tok-g" {
		t.Fatalf("expected the exchanged token to be stored, got %q", creds.Credential())
	}
}

func TestExchangeFederatedToken_Rejected(t *testing.T) {
	c, _, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid Google token"})
	}))

	_, err := c.ExchangeFederatedToken(context.Background(), "bad")
	if !errors.Is(err, ErrFederatedCancelled) {
		t.Fatalf("expected ErrFederatedCancelled, got %v", err)
	}
	if got := Message(err, "fallback"); got != "Invalid Google token" {
		t.Fatalf("expected backend message, got %q", got)
	}
}

func TestProbeSession_AttachesBearer(t *testing.T) {
	var gotAuth string
	c, creds, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		writeJSON(w, http.StatusOK, map[string]any{
			"user": map[string]string{"username": "alice"},
		})
	}))
	creds.SetCredential("tok-9")

	if _, err := c.ProbeSession(context.Background()); err != nil {
		t.Fatalf("ProbeSession: %v", err)
	}
	if gotAuth != "Bearer tok-9" {
		t.Fatalf("expected bearer header, got %q", gotAuth)
	}
}

func TestProbeSession_Unauthenticated(t *testing.T) {
	c, _, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"msg": "Missing token"})
	}))

	_, err := c.ProbeSession(context.Background())
	if !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}
}

func TestLogout_ErrorStillReturns(t *testing.T) {
	c, _, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "boom"})
	}))

	if err := c.Logout(context.Background()); err == nil {
		t.Fatalf("expected logout to report the failure (callers discard it)")
	}
}

func TestLogout_Success(t *testing.T) {
	c, _, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/auth/logout" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		writeJSON(w, http.StatusOK, map[string]string{})
	}))

	if err := c.Logout(context.Background()); err != nil {
		t.Fatalf("Logout: %v", err)
	}
}

func TestCookieTransportSkipsBearerHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "" {
			t.Errorf("cookie transport must not attach a bearer header")
		}
		http.SetCookie(w, &http.Cookie{Name: "sid", Value: "abc"})
		writeJSON(w, http.StatusOK, map[string]any{
			"user": map[string]string{"username": "alice"},
		})
	}))
	t.Cleanup(srv.Close)

	cfg := testConfig(srv.URL)
	cfg.Transport = config.TransportCookie
	creds := &stubCreds{token: "should-not-be-sent"}
	c, err := New(cfg, creds)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if _, err := c.ProbeSession(context.Background()); err != nil {
		t.Fatalf("ProbeSession: %v", err)
	}
}
