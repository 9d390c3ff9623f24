package onion

import (
	"fmt"

	"github.com/HannahMarsh/onionnet/internal/onion/keys"
	"github.com/fxamacker/cbor/v2"
	"github.com/pkg/errors"
)

// Kind says what a relay does with a peeled layer.
type Kind uint8

const (
	Forward Kind = iota + 1
	Deliver
)

func (k Kind) String() string {
	switch k {
	case Forward:
		return "forward"
	case Deliver:
		return "deliver"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// RoutingInstruction is the content of a decrypted layer body. A Forward names
// only the next relay; a Deliver names only the destination user.
type RoutingInstruction struct {
	Kind            Kind   `cbor:"1,keyasint"`
	NextHop         int    `cbor:"2,keyasint,omitempty"`
	InnerCiphertext []byte `cbor:"3,keyasint,omitempty"`
	DestinationUser int    `cbor:"4,keyasint,omitempty"`
	Plaintext       []byte `cbor:"5,keyasint,omitempty"`
}

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	if encMode, err = cbor.CoreDetEncOptions().EncMode(); err != nil {
		panic(err)
	}
	if decMode, err = (cbor.DecOptions{
		DupMapKey:         cbor.DupMapKeyEnforcedAPF,
		ExtraReturnErrors: cbor.ExtraDecErrorUnknownField,
	}).DecMode(); err != nil {
		panic(err)
	}
}

// Marshal encodes the instruction with deterministic CBOR.
func (ri RoutingInstruction) Marshal() ([]byte, error) {
	if err := ri.validate(); err != nil {
		return nil, err
	}
	data, err := encMode.Marshal(ri)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal routing instruction")
	}
	return data, nil
}

// UnmarshalInstruction decodes exactly one instruction. Trailing bytes, unknown
// fields or an inconsistent instruction are reported as ErrDecryption.
// An empty Deliver plaintext is omitted on the wire and decodes as []byte{}, never nil.
func UnmarshalInstruction(data []byte) (*RoutingInstruction, error) {
	var ri RoutingInstruction
	if err := decMode.Unmarshal(data, &ri); err != nil {
		return nil, errors.Wrapf(keys.ErrDecryption, "malformed routing instruction: %v", err)
	}
	if err := ri.validate(); err != nil {
		return nil, errors.Wrap(keys.ErrDecryption, err.Error())
	}
	if ri.Kind == Deliver && ri.Plaintext == nil {
		ri.Plaintext = []byte{}
	}
	return &ri, nil
}

func (ri RoutingInstruction) validate() error {
	switch ri.Kind {
	case Forward:
		if len(ri.InnerCiphertext) == 0 {
			return errors.New("forward instruction without inner ciphertext")
		}
		if ri.DestinationUser != 0 || len(ri.Plaintext) != 0 {
			return errors.New("forward instruction carries delivery fields")
		}
	case Deliver:
		if ri.NextHop != 0 || len(ri.InnerCiphertext) != 0 {
			return errors.New("deliver instruction carries forwarding fields")
		}
	default:
		return errors.Errorf("unknown instruction %s", ri.Kind)
	}
	return nil
}
