package keys

import (
	"crypto/rand"
	"io"

	"github.com/pkg/errors"
	"golang.org/x/crypto/curve25519"
)

// x25519KEM is an ECIES-style construction: an ephemeral X25519 exchange feeds
// HKDF, and the derived key wraps the symmetric key with AES-GCM.
//
// ciphertext = ephemeralPublic(32) || iv || sealed(symmetricKey)
type x25519KEM struct{}

func (x *x25519KEM) Name() string { return "x25519" }

func (x *x25519KEM) GenerateKeyPair() (publicKey, privateKey []byte, err error) {
	publicKey, scalar, err := newX25519Pair()
	if err != nil {
		return nil, nil, err
	}
	return publicKey, sealPrivateKey(scalar), nil
}

func newX25519Pair() (publicKey, privateKey []byte, err error) {
	privateKey = make([]byte, curve25519.ScalarSize)
	if _, err = io.ReadFull(rand.Reader, privateKey); err != nil {
		return nil, nil, errors.Wrap(err, "failed to generate x25519 scalar")
	}
	publicKey, err = curve25519.X25519(privateKey, curve25519.Basepoint)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to compute x25519 public key")
	}
	return publicKey, privateKey, nil
}

func (x *x25519KEM) Encapsulate(symmetricKey, publicKey []byte) ([]byte, error) {
	if len(publicKey) != curve25519.PointSize {
		return nil, errors.Wrapf(ErrKeyEncapsulation, "x25519: public key is %d bytes", len(publicKey))
	}
	ephemeralPublic, ephemeralPrivate, err := newX25519Pair()
	if err != nil {
		return nil, err
	}
	shared, err := curve25519.X25519(ephemeralPrivate, publicKey)
	if err != nil {
		return nil, errors.Wrapf(ErrKeyEncapsulation, "x25519: shared secret: %v", err)
	}
	kek, err := deriveWrapKey(shared, ephemeralPublic, publicKey)
	if err != nil {
		return nil, err
	}
	wrapped, err := wrapKey(kek, symmetricKey)
	if err != nil {
		return nil, errors.Wrapf(ErrKeyEncapsulation, "x25519: wrap: %v", err)
	}
	return append(ephemeralPublic, wrapped...), nil
}

func (x *x25519KEM) Decapsulate(ciphertext, sealedKey []byte) ([]byte, error) {
	privateKey, err := openPrivateKey(x.Name(), sealedKey)
	if err != nil {
		return nil, err
	}
	if len(privateKey) != curve25519.ScalarSize {
		return nil, errors.Wrapf(ErrKeyEncapsulation, "x25519: private key is %d bytes", len(privateKey))
	}
	if len(ciphertext) < curve25519.PointSize {
		return nil, errors.Wrap(ErrKeyEncapsulation, "x25519: ciphertext too short")
	}
	ephemeralPublic := ciphertext[:curve25519.PointSize]
	shared, err := curve25519.X25519(privateKey, ephemeralPublic)
	if err != nil {
		return nil, errors.Wrapf(ErrKeyEncapsulation, "x25519: shared secret: %v", err)
	}
	publicKey, err := curve25519.X25519(privateKey, curve25519.Basepoint)
	if err != nil {
		return nil, errors.Wrapf(ErrKeyEncapsulation, "x25519: public key: %v", err)
	}
	kek, err := deriveWrapKey(shared, ephemeralPublic, publicKey)
	if err != nil {
		return nil, err
	}
	return unwrapKey(x.Name(), kek, ciphertext[curve25519.PointSize:])
}
