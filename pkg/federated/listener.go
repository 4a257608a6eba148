package federated

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"sync"

	"github.com/gorilla/mux"

	"github.com/pulseboard/dashboard-client/pkg/logger"
)

// Listener receives the identity provider's redirect on a loopback
// address. The provider posts the issued credential to /callback; the
// listener hands it to the registered handler (normally
// FederatedForm.SubmitToken) and tells the browser tab to close.
type Listener struct {
	addr   string
	handle func(credential string)

	mu  sync.Mutex
	srv *http.Server
	ln  net.Listener
}

func NewListener(addr string, handle func(credential string)) *Listener {
	return &Listener{
		addr:   addr,
		handle: handle,
	}
}

// Start binds the loopback address and serves in the background. It
// returns the bound address so the caller can build the provider's
// login_uri from it.
func (l *Listener) Start() (string, error) {
	r := mux.NewRouter()
	r.HandleFunc("/callback", l.callback).Methods("POST")

	ln, err := net.Listen("tcp", l.addr)
	if err != nil {
		return ``, fmt.Errorf("federated: can't bind callback address, %w", err)
	}

	srv := &http.Server{Handler: r}

	l.mu.Lock()
	l.srv = srv
	l.ln = ln
	l.mu.Unlock()

	go func() {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			logger.Log(context.Background()).Errorf("federated: callback listener stopped, %v", err)
		}
	}()

	return ln.Addr().String(), nil
}

func (l *Listener) callback(w http.ResponseWriter, r *http.Request) {
	credential := r.FormValue("credential")
	if credential == `` {
		http.Error(w, "missing credential", http.StatusBadRequest)
		return
	}

	l.handle(credential)

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintln(w, "Signed in. You can close this window.")
}

// SignInURL builds the hosted sign-in page URL for the provider widget:
// the bound callback address goes in as login_uri so the provider posts
// the credential back to the listener.
func SignInURL(clientID, callbackAddr string) string {
	q := url.Values{}
	q.Set("client_id", clientID)
	q.Set("login_uri", "http://"+callbackAddr+"/callback")
	q.Set("ux_mode", "redirect")
	return "https://accounts.google.com/gsi/select?" + q.Encode()
}

func (l *Listener) Shutdown(ctx context.Context) error {
	l.mu.Lock()
	srv := l.srv
	l.mu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}
