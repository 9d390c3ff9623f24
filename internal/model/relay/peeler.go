package relay

import (
	"fmt"

	"github.com/HannahMarsh/onionnet/internal/onion"
	"github.com/HannahMarsh/onionnet/internal/onion/keys"
	"github.com/pkg/errors"
)

// State is a step of peeling one onion. Forwarding, Delivering and Rejected are terminal.
type State int

const (
	Received State = iota
	Decapsulating
	Opening
	Forwarding
	Delivering
	Rejected
)

func (s State) String() string {
	switch s {
	case Received:
		return "received"
	case Decapsulating:
		return "decapsulating"
	case Opening:
		return "opening"
	case Forwarding:
		return "forwarding"
	case Delivering:
		return "delivering"
	case Rejected:
		return "rejected"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Outcome is the result of peeling one onion.
//
// For Forwarding, NextHop is set and Payload is the inner ciphertext.
// For Delivering, DestinationUser is set and Payload is the plaintext.
// For Rejected, Err wraps keys.ErrKeyEncapsulation or keys.ErrDecryption and
// FailedIn is the step that failed.
type Outcome struct {
	State           State
	FailedIn        State
	NextHop         int
	DestinationUser int
	Payload         []byte
	Err             error
}

func reject(step State, err error) Outcome {
	return Outcome{State: Rejected, FailedIn: step, Err: err}
}

// HandleIncoming peels one layer off blob. It has no side effects.
func HandleIncoming(blob, privateKey []byte, kem keys.KEM) Outcome {
	layer, err := onion.UnmarshalLayer(blob)
	if err != nil {
		return reject(Received, err)
	}

	symmetricKey, err := onion.DecapsulateLayer(layer, privateKey, kem)
	if err != nil {
		return reject(Decapsulating, err)
	}

	instruction, err := onion.OpenLayer(layer, symmetricKey)
	if err != nil {
		return reject(Opening, err)
	}

	switch instruction.Kind {
	case onion.Forward:
		return Outcome{State: Forwarding, NextHop: instruction.NextHop, Payload: instruction.InnerCiphertext}
	case onion.Deliver:
		return Outcome{State: Delivering, DestinationUser: instruction.DestinationUser, Payload: instruction.Plaintext}
	default:
		return reject(Opening, errors.Wrapf(keys.ErrDecryption, "unexpected instruction %s", instruction.Kind))
	}
}
