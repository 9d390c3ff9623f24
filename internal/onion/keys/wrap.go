package keys

import (
	"crypto/sha256"
	"io"

	"github.com/pkg/errors"
	"golang.org/x/crypto/hkdf"
)

// deriveWrapKey turns a KEM shared secret into an AES key. The info parts bind
// the derived key to the transcript (ephemeral value and recipient key).
func deriveWrapKey(secret []byte, info ...[]byte) ([]byte, error) {
	var transcript []byte
	for _, part := range info {
		transcript = append(transcript, part...)
	}
	kek := make([]byte, SymmetricKeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, secret, nil, transcript), kek); err != nil {
		return nil, errors.Wrap(err, "failed to derive wrap key")
	}
	return kek, nil
}

func wrapKey(kek, symmetricKey []byte) ([]byte, error) {
	iv, sealed, err := EncryptWithAES(kek, symmetricKey)
	if err != nil {
		return nil, err
	}
	return append(iv, sealed...), nil
}

func unwrapKey(scheme string, kek, wrapped []byte) ([]byte, error) {
	if len(wrapped) < IVSize {
		return nil, errors.Wrapf(ErrKeyEncapsulation, "%s: wrapped key too short", scheme)
	}
	symmetricKey, err := DecryptWithAES(kek, wrapped[:IVSize], wrapped[IVSize:])
	if err != nil {
		// reported as an encapsulation failure, not as a body decryption failure
		return nil, errors.Wrapf(ErrKeyEncapsulation, "%s: unwrap symmetric key: %v", scheme, err)
	}
	return symmetricKey, nil
}
