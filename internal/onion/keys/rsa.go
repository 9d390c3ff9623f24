package keys

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"

	"github.com/pkg/errors"
)

// rsaOAEP encrypts the symmetric key directly with RSA-OAEP (SHA-256).
// Public keys are PKIX DER, private keys sealed PKCS#1 DER.
type rsaOAEP struct {
	bits int
}

func (r *rsaOAEP) Name() string { return "rsa-oaep" }

func (r *rsaOAEP) GenerateKeyPair() (publicKey, privateKey []byte, err error) {
	key, err := rsa.GenerateKey(rand.Reader, r.bits)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to generate private key")
	}
	publicKey, err = x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to marshal public key")
	}
	return publicKey, sealPrivateKey(x509.MarshalPKCS1PrivateKey(key)), nil
}

func (r *rsaOAEP) Encapsulate(symmetricKey, publicKey []byte) ([]byte, error) {
	parsed, err := x509.ParsePKIXPublicKey(publicKey)
	if err != nil {
		return nil, errors.Wrapf(ErrKeyEncapsulation, "rsa-oaep: parse public key: %v", err)
	}
	pub, ok := parsed.(*rsa.PublicKey)
	if !ok {
		return nil, errors.Wrapf(ErrKeyEncapsulation, "rsa-oaep: public key is %T", parsed)
	}
	ciphertext, err := rsa.EncryptOAEP(sha256.New(), rand.Reader, pub, symmetricKey, nil)
	if err != nil {
		return nil, errors.Wrapf(ErrKeyEncapsulation, "rsa-oaep: encrypt: %v", err)
	}
	return ciphertext, nil
}

func (r *rsaOAEP) Decapsulate(ciphertext, privateKey []byte) ([]byte, error) {
	der, err := openPrivateKey(r.Name(), privateKey)
	if err != nil {
		return nil, err
	}
	key, err := x509.ParsePKCS1PrivateKey(der)
	if err != nil {
		return nil, errors.Wrapf(ErrKeyEncapsulation, "rsa-oaep: parse private key: %v", err)
	}
	if len(ciphertext) != key.Size() {
		return nil, errors.Wrapf(ErrKeyEncapsulation, "rsa-oaep: ciphertext is %d bytes, want %d", len(ciphertext), key.Size())
	}
	symmetricKey, err := rsa.DecryptOAEP(sha256.New(), rand.Reader, key, ciphertext, nil)
	if err != nil {
		return nil, errors.Wrapf(ErrKeyEncapsulation, "rsa-oaep: decrypt: %v", err)
	}
	return symmetricKey, nil
}
