package keys

import "github.com/pkg/errors"

var (
	// ErrKeyEncapsulation is returned when a symmetric key cannot be wrapped for,
	// or unwrapped by, the given asymmetric key material.
	ErrKeyEncapsulation = errors.New("key encapsulation failed")

	// ErrDecryption is returned when a sealed body does not open.
	ErrDecryption = errors.New("decryption failed")
)
