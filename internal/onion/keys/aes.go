package keys

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"io"

	"github.com/pkg/errors"
)

const (
	SymmetricKeySize = 32 // AES-256
	IVSize           = 12 // GCM standard nonce
)

// GenerateSymmetricKey generates a random AES key for encryption.
func GenerateSymmetricKey() ([]byte, error) {
	key := make([]byte, SymmetricKeySize)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return nil, errors.Wrap(err, "failed to generate symmetric key")
	}
	return key, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// EncryptWithAES seals plaintext under key with AES-GCM. Every call draws a
// fresh IV, so the same key never sees the same IV twice.
func EncryptWithAES(key, plaintext []byte) (iv, ciphertext []byte, err error) {
	aead, err := newGCM(key)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to create cipher")
	}
	iv = make([]byte, aead.NonceSize())
	if _, err = io.ReadFull(rand.Reader, iv); err != nil {
		return nil, nil, errors.Wrap(err, "failed to generate iv")
	}
	return iv, aead.Seal(nil, iv, plaintext, nil), nil
}

// DecryptWithAES opens a body sealed by EncryptWithAES. Any mismatch between key,
// iv and ciphertext is reported as ErrDecryption.
func DecryptWithAES(key, iv, ciphertext []byte) ([]byte, error) {
	aead, err := newGCM(key)
	if err != nil {
		return nil, errors.Wrapf(ErrDecryption, "bad key: %v", err)
	}
	if len(iv) != aead.NonceSize() {
		return nil, errors.Wrapf(ErrDecryption, "iv is %d bytes, want %d", len(iv), aead.NonceSize())
	}
	plaintext, err := aead.Open(nil, iv, ciphertext, nil)
	if err != nil {
		return nil, errors.Wrap(ErrDecryption, err.Error())
	}
	return plaintext, nil
}
