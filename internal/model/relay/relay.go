package relay

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/HannahMarsh/onionnet/internal/api/api_functions"
	"github.com/HannahMarsh/onionnet/internal/api/structs"
	"github.com/HannahMarsh/onionnet/internal/metrics"
	"github.com/HannahMarsh/onionnet/internal/onion/keys"
	"github.com/pkg/errors"
)

// Registrar is the write side of the directory.
type Registrar interface {
	RegisterNode(ctx context.Context, node structs.PublicNodeApi) error
}

// Relay represents a participating relay in the network.
type Relay struct {
	ID               int                  // Unique identifier for the relay.
	Address          string               // Full address of the relay in the form http://host:port.
	PublicKey        []byte               // Published in the directory.
	privateKey       []byte               // Never leaves the relay unless exposePrivateKey is set.
	kem              keys.KEM             // Scheme the key pair belongs to.
	dispatcher       Dispatcher           // Where peeled onions go.
	status           *structs.RelayStatus // Debug view of the last onion; not read when routing.
	exposePrivateKey bool
	ctx              context.Context // Lifetime of the relay; dispatches outlive the request.
	wg               sync.WaitGroup  // In-flight dispatches.
}

type Option func(*Relay)

// WithExposedPrivateKey serves the private key on /getPrivateKey. Test networks only.
func WithExposedPrivateKey(expose bool) Option {
	return func(n *Relay) { n.exposePrivateKey = expose }
}

// NewRelay creates a relay with a fresh key pair of the given scheme.
func NewRelay(ctx context.Context, id int, address string, kem keys.KEM, dispatcher Dispatcher, opts ...Option) (*Relay, error) {
	publicKey, privateKey, err := kem.GenerateKeyPair()
	if err != nil {
		return nil, errors.Wrapf(err, "relay %d: failed to generate key pair", id)
	}
	n := &Relay{
		ID:         id,
		Address:    address,
		PublicKey:  publicKey,
		privateKey: privateKey,
		kem:        kem,
		dispatcher: dispatcher,
		status:     structs.NewRelayStatus(),
		ctx:        ctx,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n, nil
}

// GetStatus returns the relay's debug status as JSON.
func (n *Relay) GetStatus() string {
	return n.status.GetStatus()
}

// getPublicNodeInfo returns the relay's public information in the form of a PublicNodeApi struct.
func (n *Relay) getPublicNodeInfo() structs.PublicNodeApi {
	return structs.PublicNodeApi{
		ID:        n.ID,
		PublicKey: n.PublicKey,
		Address:   n.Address,
		Scheme:    n.kem.Name(),
	}
}

// RegisterWithDirectory publishes the relay's identity.
func (n *Relay) RegisterWithDirectory(ctx context.Context, directory Registrar) error {
	slog.Info("sending relay registration request", "id", n.ID)
	return directory.RegisterNode(ctx, n.getPublicNodeInfo())
}

// RegisterWithRetry registers the relay's existing key pair, retrying every
// interval until it succeeds or ctx ends. A conflict is returned at once:
// the directory holds another key for this ID and retrying cannot change that.
func (n *Relay) RegisterWithRetry(ctx context.Context, directory Registrar, interval time.Duration) error {
	for {
		err := n.RegisterWithDirectory(ctx, directory)
		if err == nil || errors.Is(err, api_functions.ErrRegistrationConflict) {
			return err
		}
		slog.Error("failed to register with directory. Trying again.", "id", n.ID, "in", interval, "err", err)
		select {
		case <-time.After(interval):
		case <-ctx.Done():
			return errors.Wrapf(ctx.Err(), "relay %d: registration abandoned", n.ID)
		}
	}
}

// Receive peels one layer and, if that succeeds, hands the rest to the
// dispatcher in the background. A rejected onion is dropped. The outcome is
// returned to the caller either way.
func (n *Relay) Receive(ctx context.Context, blob []byte) Outcome {
	timeReceived := time.Now() // Record the time when the onion was received.
	n.status.AddReceived(blob)
	metrics.Observe(metrics.ONION_SIZE, float64(len(blob)))

	outcome := HandleIncoming(blob, n.privateKey, n.kem)

	defer func() {
		metrics.Observe(metrics.PROCESSING_TIME, time.Since(timeReceived).Seconds())
		metrics.Inc(metrics.ONION_COUNT, outcome.State)
	}()

	switch outcome.State {
	case Forwarding:
		slog.InfoContext(ctx, "received onion", "relay", n.ID, "nextHop", outcome.NextHop)
		n.status.AddPeeled(outcome.State.String(), outcome.Payload, outcome.NextHop, true)
		n.dispatch(func(ctx context.Context) error {
			return n.dispatcher.Forward(ctx, outcome.NextHop, outcome.Payload)
		})
	case Delivering:
		slog.InfoContext(ctx, "received onion", "relay", n.ID, "destinationUser", outcome.DestinationUser)
		n.status.AddPeeled(outcome.State.String(), outcome.Payload, outcome.DestinationUser, false)
		n.dispatch(func(ctx context.Context) error {
			return n.dispatcher.Deliver(ctx, outcome.DestinationUser, outcome.Payload)
		})
	default:
		slog.WarnContext(ctx, "dropping onion", "relay", n.ID, "failedIn", outcome.FailedIn.String(), "err", outcome.Err)
		n.status.AddRejected(outcome.State.String(), outcome.Err)
	}
	return outcome
}

// dispatch runs send once in its own goroutine. Failures are logged, not retried.
func (n *Relay) dispatch(send func(ctx context.Context) error) {
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		if err := send(n.ctx); err != nil {
			slog.Error("error dispatching onion", "relay", n.ID, "err", err)
		}
	}()
}

// Wait blocks until every dispatch started so far has finished.
func (n *Relay) Wait() {
	n.wg.Wait()
}
