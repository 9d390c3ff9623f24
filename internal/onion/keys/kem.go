package keys

import (
	"sort"

	"github.com/pkg/errors"
)

// DefaultScheme is used for relays that do not advertise a scheme.
const DefaultScheme = "rsa-oaep"

// KEM wraps a one-time symmetric key under a relay's public key.
//
// Keys cross process boundaries as opaque byte slices; only the scheme that
// produced them knows their encoding.
type KEM interface {
	Name() string
	GenerateKeyPair() (publicKey, privateKey []byte, err error)
	Encapsulate(symmetricKey, publicKey []byte) ([]byte, error)
	Decapsulate(ciphertext, privateKey []byte) ([]byte, error)
}

var (
	RSAOAEP  KEM = &rsaOAEP{bits: 2048}
	X25519   KEM = &x25519KEM{}
	MLKEM768 KEM = newHPQCKEM("mlkem768", mlkem768Scheme)
)

var schemes = map[string]KEM{
	RSAOAEP.Name():  RSAOAEP,
	X25519.Name():   X25519,
	MLKEM768.Name(): MLKEM768,
}

// ByName returns the KEM registered under name. An empty name selects DefaultScheme.
func ByName(name string) (KEM, error) {
	if name == "" {
		name = DefaultScheme
	}
	if k, ok := schemes[name]; ok {
		return k, nil
	}
	return nil, errors.Wrapf(ErrKeyEncapsulation, "unknown scheme %q", name)
}

// Schemes lists the registered scheme names in sorted order.
func Schemes() []string {
	names := make([]string, 0, len(schemes))
	for name := range schemes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
