// Package network starts the directory, relays and users as HTTP services.
package network

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/HannahMarsh/onionnet/config"
	"github.com/HannahMarsh/onionnet/internal/api/api_functions"
	"github.com/HannahMarsh/onionnet/internal/model/relay"
	"github.com/HannahMarsh/onionnet/internal/model/user"
	"github.com/HannahMarsh/onionnet/internal/onion/keys"
	"github.com/HannahMarsh/onionnet/internal/repositories"
	"github.com/HannahMarsh/onionnet/internal/usecases"
	"github.com/HannahMarsh/onionnet/pkg/api/handlers"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
)

// Service is one running HTTP endpoint and the resources it owns.
type Service struct {
	Name    string
	Address string
	server  *http.Server
	closers []func() error
}

func serve(name, address string, listener net.Listener, router *mux.Router, closers ...func() error) *Service {
	s := &Service{
		Name:    name,
		Address: address,
		server: &http.Server{
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
		closers: closers,
	}
	go func() {
		slog.Info("🌏 start "+name+"...", "address", address)
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("failed to serve "+name, "err", err)
		}
	}()
	return s
}

// Shutdown stops the server and releases what the service owns.
func (s *Service) Shutdown(ctx context.Context) error {
	err := s.server.Shutdown(ctx)
	for _, closeFn := range s.closers {
		if cerr := closeFn(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return errors.Wrapf(err, "failed to shut down %s", s.Name)
}

// StartDirectory serves the directory on listener using the configured store.
func StartDirectory(ctx context.Context, cfg *config.Config, listener net.Listener, address string) (*Service, error) {
	repo, err := repositories.OpenNodeRepository(ctx, cfg.Directory.Store)
	if err != nil {
		return nil, err
	}
	router := mux.NewRouter()
	handlers.NewDirectoryHandler(usecases.NewDirectoryService(repo)).Routes(router)
	return serve("directory", address, listener, router, repo.Close), nil
}

// NewRelay creates a relay with a fresh key pair and the directory client it registers with.
// userAddress resolves delivery addresses; nil means cfg.UserAddress.
func NewRelay(ctx context.Context, cfg *config.Config, id int, address, directoryAddress string, userAddress func(int) string) (*relay.Relay, *api_functions.DirectoryClient, error) {
	kem, err := keys.ByName(cfg.Scheme)
	if err != nil {
		return nil, nil, err
	}
	if userAddress == nil {
		userAddress = cfg.UserAddress
	}
	directory := api_functions.NewDirectoryClient(directoryAddress)
	r, err := relay.NewRelay(ctx, id, address, kem, relay.NewHTTPDispatcher(directory, userAddress),
		relay.WithExposedPrivateKey(cfg.DebugExposePrivateKey))
	if err != nil {
		return nil, nil, err
	}
	return r, directory, nil
}

// ServeRelay serves r on listener. Shutdown waits for in-flight dispatches.
func ServeRelay(r *relay.Relay, listener net.Listener) *Service {
	router := mux.NewRouter()
	r.Routes(router)
	return serve("relay", r.Address, listener, router, func() error {
		r.Wait()
		return nil
	})
}

// StartRelay creates a relay, registers it once with the directory and serves it on listener.
func StartRelay(ctx context.Context, cfg *config.Config, id int, listener net.Listener, address, directoryAddress string, userAddress func(int) string) (*relay.Relay, *Service, error) {
	r, directory, err := NewRelay(ctx, cfg, id, address, directoryAddress, userAddress)
	if err != nil {
		return nil, nil, err
	}
	if err = r.RegisterWithDirectory(ctx, directory); err != nil {
		return nil, nil, errors.Wrapf(err, "relay %d: failed to register with directory", id)
	}
	return r, ServeRelay(r, listener), nil
}

// StartUser creates a user with the configured mailbox and serves it on listener.
func StartUser(ctx context.Context, cfg *config.Config, id int, listener net.Listener, address, directoryAddress string) (*user.User, *Service, error) {
	mailbox, err := repositories.OpenMessageRepository(ctx, cfg.Mailbox)
	if err != nil {
		return nil, nil, err
	}
	u := user.NewUser(id, address, cfg.CircuitLength, api_functions.NewDirectoryClient(directoryAddress), user.HTTPTransport, mailbox)

	router := mux.NewRouter()
	u.Routes(router)
	return u, serve("user", address, listener, router, mailbox.Close), nil
}
