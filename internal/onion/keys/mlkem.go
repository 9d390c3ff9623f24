package keys

import (
	"github.com/katzenpost/hpqc/kem"
	"github.com/katzenpost/hpqc/kem/mlkem768"
	"github.com/pkg/errors"
)

var mlkem768Scheme = mlkem768.Scheme()

// hpqcKEM adapts a shared-secret KEM from hpqc into a key-wrapping KEM:
// the shared secret is run through HKDF and the result wraps the symmetric key.
//
// ciphertext = kemCiphertext || iv || sealed(symmetricKey)
type hpqcKEM struct {
	name   string
	scheme kem.Scheme
}

func newHPQCKEM(name string, scheme kem.Scheme) *hpqcKEM {
	return &hpqcKEM{name: name, scheme: scheme}
}

func (h *hpqcKEM) Name() string { return h.name }

func (h *hpqcKEM) GenerateKeyPair() (publicKey, privateKey []byte, err error) {
	pub, priv, err := h.scheme.GenerateKeyPair()
	if err != nil {
		return nil, nil, errors.Wrapf(err, "%s: failed to generate key pair", h.name)
	}
	if publicKey, err = pub.MarshalBinary(); err != nil {
		return nil, nil, errors.Wrapf(err, "%s: failed to marshal public key", h.name)
	}
	raw, err := priv.MarshalBinary()
	if err != nil {
		return nil, nil, errors.Wrapf(err, "%s: failed to marshal private key", h.name)
	}
	return publicKey, sealPrivateKey(raw), nil
}

func (h *hpqcKEM) Encapsulate(symmetricKey, publicKey []byte) ([]byte, error) {
	if len(publicKey) != h.scheme.PublicKeySize() {
		return nil, errors.Wrapf(ErrKeyEncapsulation, "%s: public key is %d bytes", h.name, len(publicKey))
	}
	pub, err := h.scheme.UnmarshalBinaryPublicKey(publicKey)
	if err != nil {
		return nil, errors.Wrapf(ErrKeyEncapsulation, "%s: parse public key: %v", h.name, err)
	}
	ct, shared, err := h.scheme.Encapsulate(pub)
	if err != nil {
		return nil, errors.Wrapf(ErrKeyEncapsulation, "%s: encapsulate: %v", h.name, err)
	}
	kek, err := deriveWrapKey(shared, ct, publicKey)
	if err != nil {
		return nil, err
	}
	wrapped, err := wrapKey(kek, symmetricKey)
	if err != nil {
		return nil, errors.Wrapf(ErrKeyEncapsulation, "%s: wrap: %v", h.name, err)
	}
	return append(ct, wrapped...), nil
}

func (h *hpqcKEM) Decapsulate(ciphertext, sealedKey []byte) ([]byte, error) {
	privateKey, err := openPrivateKey(h.name, sealedKey)
	if err != nil {
		return nil, err
	}
	if len(privateKey) != h.scheme.PrivateKeySize() {
		return nil, errors.Wrapf(ErrKeyEncapsulation, "%s: private key is %d bytes", h.name, len(privateKey))
	}
	n := h.scheme.CiphertextSize()
	if len(ciphertext) < n {
		return nil, errors.Wrapf(ErrKeyEncapsulation, "%s: ciphertext too short", h.name)
	}
	priv, err := h.scheme.UnmarshalBinaryPrivateKey(privateKey)
	if err != nil {
		return nil, errors.Wrapf(ErrKeyEncapsulation, "%s: parse private key: %v", h.name, err)
	}
	shared, err := h.scheme.Decapsulate(priv, ciphertext[:n])
	if err != nil {
		return nil, errors.Wrapf(ErrKeyEncapsulation, "%s: decapsulate: %v", h.name, err)
	}
	publicKey, err := priv.Public().MarshalBinary()
	if err != nil {
		return nil, errors.Wrapf(ErrKeyEncapsulation, "%s: public key: %v", h.name, err)
	}
	kek, err := deriveWrapKey(shared, ciphertext[:n], publicKey)
	if err != nil {
		return nil, err
	}
	return unwrapKey(h.name, kek, ciphertext[n:])
}
