package onion

import (
	"github.com/HannahMarsh/onionnet/internal/onion/keys"
)

// DecapsulateLayer recovers the layer's one-time symmetric key.
func DecapsulateLayer(layer Layer, privateKey []byte, kem keys.KEM) ([]byte, error) {
	return kem.Decapsulate(layer.EncapsulatedKey, privateKey)
}

// OpenLayer decrypts the layer body and decodes the routing instruction in it.
func OpenLayer(layer Layer, symmetricKey []byte) (*RoutingInstruction, error) {
	body, err := keys.DecryptWithAES(symmetricKey, layer.IV, layer.Body)
	if err != nil {
		return nil, err
	}
	return UnmarshalInstruction(body)
}

// PeelOnion removes exactly one layer from blob using the relay's private key.
func PeelOnion(blob, privateKey []byte, kem keys.KEM) (*RoutingInstruction, error) {
	layer, err := UnmarshalLayer(blob)
	if err != nil {
		return nil, err
	}
	symmetricKey, err := DecapsulateLayer(layer, privateKey, kem)
	if err != nil {
		return nil, err
	}
	return OpenLayer(layer, symmetricKey)
}
