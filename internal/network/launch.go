package network

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/HannahMarsh/onionnet/config"
	"github.com/HannahMarsh/onionnet/internal/metrics"
	"github.com/HannahMarsh/onionnet/internal/model/relay"
	"github.com/HannahMarsh/onionnet/internal/model/user"
	"github.com/HannahMarsh/onionnet/pkg/cm"
	"github.com/HannahMarsh/onionnet/pkg/utils"
	"github.com/pkg/errors"
)

const launchHost = "localhost"

// Network is a directory with its relays and users running in one process.
type Network struct {
	DirectoryAddress string
	Relays           []*relay.Relay
	Users            []*user.User
	services         []*Service
	userAddresses    *cm.ConcurrentMap[int, string]
}

// port returns base+offset, or 0 (any free port) when base is 0.
func port(base, offset int) int {
	if base == 0 {
		return 0
	}
	return base + offset
}

// Launch starts the directory on cfg.Directory.Port, relays 0..nodes-1 on
// BaseRelayPort+id and users 0..users-1 on BaseUserPort+id. Zero ports pick
// free ones. Every relay is registered before Launch returns.
func Launch(ctx context.Context, cfg *config.Config, nodes, users int) (*Network, error) {
	if nodes < cfg.CircuitLength {
		slog.Warn("fewer relays than the circuit length; sends will fail", "relays", nodes, "circuitLength", cfg.CircuitLength)
	}
	if err := metrics.Register(metrics.RelayCollectors...); err != nil {
		return nil, err
	}
	if err := metrics.Register(metrics.UserCollectors...); err != nil {
		return nil, err
	}

	n := &Network{userAddresses: &cm.ConcurrentMap[int, string]{}}
	fail := func(err error) (*Network, error) {
		_ = n.Shutdown(context.Background())
		return nil, err
	}

	listener, p, err := utils.Listen(launchHost, cfg.Directory.Port)
	if err != nil {
		return fail(err)
	}
	n.DirectoryAddress = fmt.Sprintf("http://%s:%d", launchHost, p)
	dir, err := StartDirectory(ctx, cfg, listener, n.DirectoryAddress)
	if err != nil {
		_ = listener.Close()
		return fail(err)
	}
	n.services = append(n.services, dir)

	for id := 0; id < users; id++ {
		listener, p, err := utils.Listen(launchHost, port(cfg.BaseUserPort, id))
		if err != nil {
			return fail(err)
		}
		address := fmt.Sprintf("http://%s:%d", launchHost, p)
		u, svc, err := StartUser(ctx, cfg, id, listener, address, n.DirectoryAddress)
		if err != nil {
			_ = listener.Close()
			return fail(err)
		}
		n.userAddresses.Set(id, address)
		n.Users = append(n.Users, u)
		n.services = append(n.services, svc)
	}

	for id := 0; id < nodes; id++ {
		listener, p, err := utils.Listen(launchHost, port(cfg.BaseRelayPort, id))
		if err != nil {
			return fail(err)
		}
		address := fmt.Sprintf("http://%s:%d", launchHost, p)
		r, svc, err := StartRelay(ctx, cfg, id, listener, address, n.DirectoryAddress, n.UserAddress(cfg))
		if err != nil {
			_ = listener.Close()
			return fail(err)
		}
		n.Relays = append(n.Relays, r)
		n.services = append(n.services, svc)
	}

	slog.Info("network launched", "directory", n.DirectoryAddress, "relays", nodes, "users", users)
	return n, nil
}

// UserAddress resolves launched users first and falls back to cfg.
func (n *Network) UserAddress(cfg *config.Config) func(int) string {
	return func(id int) string {
		if address, ok := n.userAddresses.Get(id); ok {
			return address
		}
		return cfg.UserAddress(id)
	}
}

func (n *Network) User(id int) (*user.User, error) {
	for _, u := range n.Users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, errors.Errorf("no user %d", id)
}

// Wait blocks until every relay has finished its in-flight dispatches.
func (n *Network) Wait() {
	for _, r := range n.Relays {
		r.Wait()
	}
}

// Shutdown stops relays first, then users, then the directory.
func (n *Network) Shutdown(ctx context.Context) error {
	var firstErr error
	for i := len(n.services) - 1; i >= 0; i-- {
		if err := n.services[i].Shutdown(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	n.services = nil
	return firstErr
}
