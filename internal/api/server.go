package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/ItsNotGoodName/xtile/internal/build"
	"github.com/ItsNotGoodName/xtile/pkg/chiext"
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const shutdownTimeout = 5 * time.Second

// NewRouter returns the chi router serving the API and its OpenAPI document.
func NewRouter(ctl Controller) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(chiext.Logger())
	r.Use(middleware.Recoverer)

	api := humachi.New(r, huma.DefaultConfig("xtile", build.Current.Version))
	Register(api, ctl)

	return r
}

// CheckListen rejects addresses reachable from other hosts unless
// allowRemote is set. An empty host listens on every interface.
func CheckListen(addr string, allowRemote bool) error {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("invalid listen address %q: %w", addr, err)
	}
	if allowRemote || host == "localhost" {
		return nil
	}
	if ip := net.ParseIP(host); ip != nil && ip.IsLoopback() {
		return nil
	}
	return fmt.Errorf("listen address %q is not loopback, set api.allow_remote to expose it", addr)
}

// Server is a supervised HTTP server.
type Server struct {
	addr    string
	handler http.Handler
}

func NewServer(addr string, allowRemote bool, ctl Controller) (Server, error) {
	if err := CheckListen(addr, allowRemote); err != nil {
		return Server{}, err
	}
	return Server{
		addr:    addr,
		handler: NewRouter(ctl),
	}, nil
}

func (s Server) String() string {
	return "api.Server"
}

func (s Server) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:     s.handler,
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	errC := make(chan error, 1)
	go func() { errC <- srv.Serve(ln) }()
	slog.Info("Listening", "package", "api", "address", ln.Addr().String())

	select {
	case err := <-errC:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Join(ctx.Err(), err)
	}
	return ctx.Err()
}
