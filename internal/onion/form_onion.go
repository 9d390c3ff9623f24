package onion

import (
	"github.com/HannahMarsh/onionnet/internal/domain/models"
	"github.com/HannahMarsh/onionnet/internal/onion/keys"
	"github.com/pkg/errors"
)

// ErrEmptyCircuit is returned when FormOnion is given no relays.
var ErrEmptyCircuit = errors.New("circuit is empty")

// FormOnion wraps plaintext for destinationUser in one layer per relay of the
// circuit, innermost layer first. The returned blob is addressed to circuit[0].
//
// The layer for circuit[i] tells that relay only the ID of circuit[i+1], or, for
// the last relay, only the destination user.
func FormOnion(plaintext []byte, destinationUser int, circuit []models.NodeIdentity) ([]byte, error) {
	if len(circuit) == 0 {
		return nil, errors.WithStack(ErrEmptyCircuit)
	}

	instruction := RoutingInstruction{
		Kind:            Deliver,
		DestinationUser: destinationUser,
		Plaintext:       plaintext,
	}

	var blob []byte
	for i := len(circuit) - 1; i >= 0; i-- {
		if i < len(circuit)-1 {
			instruction = RoutingInstruction{
				Kind:            Forward,
				NextHop:         circuit[i+1].ID,
				InnerCiphertext: blob,
			}
		}
		layer, err := wrapLayer(instruction, circuit[i])
		if err != nil {
			return nil, errors.Wrapf(err, "failed to form layer %d for relay %d", i, circuit[i].ID)
		}
		if blob, err = layer.Marshal(); err != nil {
			return nil, errors.Wrapf(err, "failed to marshal layer %d", i)
		}
	}
	return blob, nil
}

// wrapLayer seals one instruction under a fresh symmetric key and encapsulates
// that key for the hop.
func wrapLayer(instruction RoutingInstruction, hop models.NodeIdentity) (Layer, error) {
	kem, err := keys.ByName(hop.Scheme)
	if err != nil {
		return Layer{}, err
	}
	body, err := instruction.Marshal()
	if err != nil {
		return Layer{}, err
	}
	symmetricKey, err := keys.GenerateSymmetricKey()
	if err != nil {
		return Layer{}, err
	}
	iv, sealed, err := keys.EncryptWithAES(symmetricKey, body)
	if err != nil {
		return Layer{}, errors.Wrap(err, "failed to seal layer body")
	}
	encapsulated, err := kem.Encapsulate(symmetricKey, hop.PublicKey)
	if err != nil {
		return Layer{}, err
	}
	return Layer{
		EncapsulatedKey: encapsulated,
		IV:              iv,
		Body:            sealed,
	}, nil
}
