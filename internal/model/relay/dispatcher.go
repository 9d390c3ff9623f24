package relay

import (
	"context"
	"log/slog"

	"github.com/HannahMarsh/onionnet/internal/api/api_functions"
	"github.com/HannahMarsh/onionnet/internal/domain/models"
	"github.com/HannahMarsh/onionnet/pkg/cm"
	"github.com/pkg/errors"
)

// Dispatcher moves a peeled onion to where its instruction points.
type Dispatcher interface {
	Forward(ctx context.Context, nextHop int, blob []byte) error
	Deliver(ctx context.Context, user int, plaintext []byte) error
}

// Directory is the read side of the directory.
type Directory interface {
	GetNodeRegistry(ctx context.Context) ([]models.NodeIdentity, error)
}

// HTTPDispatcher forwards over HTTP, resolving relay addresses from the
// directory and user addresses with UserAddress.
type HTTPDispatcher struct {
	directory   Directory
	userAddress func(int) string
	addresses   *cm.ConcurrentMap[int, string] // relay id -> address
}

func NewHTTPDispatcher(directory Directory, userAddress func(int) string) *HTTPDispatcher {
	return &HTTPDispatcher{
		directory:   directory,
		userAddress: userAddress,
		addresses:   &cm.ConcurrentMap[int, string]{},
	}
}

func (d *HTTPDispatcher) Forward(ctx context.Context, nextHop int, blob []byte) error {
	address, err := d.relayAddress(ctx, nextHop)
	if err != nil {
		return err
	}
	if err = api_functions.SendOnion(ctx, address, blob); err != nil {
		// the relay may have re-registered elsewhere; resolve again next time
		d.addresses.Delete(nextHop)
		return err
	}
	return nil
}

func (d *HTTPDispatcher) Deliver(ctx context.Context, user int, plaintext []byte) error {
	return api_functions.DeliverMessage(ctx, d.userAddress(user), plaintext)
}

// relayAddress looks in the cache first and refreshes it from the directory on a miss.
func (d *HTTPDispatcher) relayAddress(ctx context.Context, id int) (string, error) {
	if address, ok := d.addresses.Get(id); ok {
		return address, nil
	}
	nodes, err := d.directory.GetNodeRegistry(ctx)
	if err != nil {
		return "", errors.Wrapf(err, "failed to resolve relay %d", id)
	}
	for _, node := range nodes {
		if node.Address != "" {
			d.addresses.Set(node.ID, node.Address)
		}
	}
	address, ok := d.addresses.Get(id)
	if !ok {
		return "", errors.Errorf("relay %d is not in the directory", id)
	}
	slog.Debug("resolved relay address", "id", id, "address", address)
	return address, nil
}
