package auth

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/apogeehq/apogee/pkg/asdk/aerr"
)

// CallbackServer is the ephemeral loopback listener that receives the OAuth
// redirect. One instance serves exactly one negotiation; the owner must call
// Close on every exit path.
type CallbackServer struct {
	srv *http.Server
	url *url.URL
}

// StartCallbackServer binds the first free port from ports on host and
// begins serving the redirect endpoint for code. Ports already in use fall
// through to the next candidate; when every candidate is busy the returned
// error carries aerr.CodeNoFreePort.
func StartCallbackServer(host string, ports []int, code *AuthCode, successRedirect *url.URL) (*CallbackServer, error) {
	for _, port := range ports {
		addr := net.JoinHostPort(host, strconv.Itoa(port))
		ln, err := net.Listen("tcp", addr)
		if err != nil {
			if errors.Is(err, syscall.EADDRINUSE) {
				continue
			}
			return nil, err
		}

		r := chi.NewRouter()
		r.Get("/", callbackHandler(code, successRedirect))

		s := &CallbackServer{
			srv: &http.Server{
				Handler:           r,
				ReadHeaderTimeout: 5 * time.Second,
			},
			url: &url.URL{Scheme: "http", Host: addr},
		}
		go func() {
			// Serve reports ErrServerClosed after Shutdown; nothing to do
			_ = s.srv.Serve(ln)
		}()
		return s, nil
	}
	return nil, aerr.Errorf(aerr.CodeNoFreePort, "no free ports among %v", ports)
}

// URL reports where the server is listening, suitable as the redirect_uri.
func (s *CallbackServer) URL() *url.URL {
	return s.url
}

// Close shuts the server down, waiting for in-flight handlers up to the
// context deadline.
func (s *CallbackServer) Close(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func callbackHandler(code *AuthCode, successRedirect *url.URL) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		value := r.URL.Query().Get("code")
		if value == "" {
			code.Cancel()
			http.Error(w, "The 'code' query parameter is missing.", http.StatusBadRequest)
			return
		}
		if err := code.Fulfill(value); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if successRedirect != nil {
			http.Redirect(w, r, successRedirect.String(), http.StatusFound)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprintln(w, "OK")
	}
}
