package user

import (
	"context"
	"log/slog"

	"github.com/HannahMarsh/onionnet/internal/api/api_functions"
	"github.com/HannahMarsh/onionnet/internal/api/structs"
	"github.com/HannahMarsh/onionnet/internal/circuit"
	"github.com/HannahMarsh/onionnet/internal/domain/interfaces"
	"github.com/HannahMarsh/onionnet/internal/domain/models"
	"github.com/HannahMarsh/onionnet/internal/metrics"
	"github.com/HannahMarsh/onionnet/internal/onion"
	"github.com/pkg/errors"
)

// Directory is where a user gets its relay snapshot.
type Directory interface {
	GetNodeRegistry(ctx context.Context) ([]models.NodeIdentity, error)
}

// Transport hands an onion to the first relay of a circuit.
type Transport interface {
	SendOnion(ctx context.Context, address string, blob []byte) error
}

type TransportFunc func(ctx context.Context, address string, blob []byte) error

func (f TransportFunc) SendOnion(ctx context.Context, address string, blob []byte) error {
	return f(ctx, address, blob)
}

// HTTPTransport posts onions with api_functions.SendOnion.
var HTTPTransport Transport = TransportFunc(api_functions.SendOnion)

// User is an endpoint of the network: it sends messages through circuits and
// keeps the messages delivered to it.
type User struct {
	ID            int
	Address       string
	circuitLength int
	directory     Directory
	transport     Transport
	mailbox       interfaces.MessageRepository
	status        *structs.UserStatus
}

func NewUser(id int, address string, circuitLength int, directory Directory, transport Transport, mailbox interfaces.MessageRepository) *User {
	if circuitLength <= 0 {
		circuitLength = circuit.DefaultLength
	}
	return &User{
		ID:            id,
		Address:       address,
		circuitLength: circuitLength,
		directory:     directory,
		transport:     transport,
		mailbox:       mailbox,
		status:        structs.NewUserStatus(),
	}
}

// SendMessage builds a fresh circuit, wraps message for destinationUser and
// hands it to the first relay. Nothing is sent if the directory is too small.
// It returns the relay IDs of the circuit.
func (u *User) SendMessage(ctx context.Context, message string, destinationUser int) ([]int, error) {
	snapshot, err := u.directory.GetNodeRegistry(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch directory")
	}
	c, err := circuit.BuildCircuit(destinationUser, snapshot, u.circuitLength)
	if err != nil {
		return nil, err
	}
	if c[0].Address == "" {
		return nil, errors.Errorf("relay %d has no address", c[0].ID)
	}
	blob, err := onion.FormOnion([]byte(message), destinationUser, c)
	if err != nil {
		return nil, errors.Wrap(err, "failed to form onion")
	}
	if err = u.transport.SendOnion(ctx, c[0].Address, blob); err != nil {
		return nil, err
	}

	ids := circuit.IDs(c)
	u.status.AddSent(message, ids)
	metrics.Inc(metrics.MESSAGES_SENT)
	slog.Info("sent message", "user", u.ID, "destinationUser", destinationUser, "circuit", ids)
	return ids, nil
}

// Deliver stores a plaintext that arrived from an exit relay.
func (u *User) Deliver(ctx context.Context, message string) error {
	if err := u.mailbox.SaveMessage(ctx, models.NewDeliveredMessage(u.ID, message)); err != nil {
		return errors.Wrap(err, "failed to store delivered message")
	}
	u.status.AddReceived(message)
	metrics.Inc(metrics.MESSAGES_DELIVERED)
	slog.Info("received message", "user", u.ID)
	return nil
}

func (u *User) Messages(ctx context.Context) ([]models.DeliveredMessage, error) {
	return u.mailbox.ListMessages(ctx, u.ID)
}

// LastMessage returns the newest message in the mailbox, or nil if it is empty.
// The mailbox may outlive the process, so this can differ from the status view.
func (u *User) LastMessage(ctx context.Context) (*string, error) {
	msg, found, err := u.mailbox.LastMessage(ctx, u.ID)
	if err != nil || !found {
		return nil, err
	}
	return &msg.Body, nil
}

func (u *User) GetStatus() string {
	return u.status.GetStatus()
}
