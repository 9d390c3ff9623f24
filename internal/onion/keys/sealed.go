package keys

import (
	"crypto/sha256"
	"crypto/subtle"

	"github.com/pkg/errors"
)

// Private keys leave GenerateKeyPair as raw || sha256(raw). Parts of a raw key
// can go unread during decapsulation (RSA CRT values, clamped X25519 bits, the
// ML-KEM rejection seed), so a damaged key is caught here instead of peeling.
const privateKeyChecksumSize = sha256.Size

func sealPrivateKey(raw []byte) []byte {
	sum := sha256.Sum256(raw)
	sealed := make([]byte, 0, len(raw)+privateKeyChecksumSize)
	sealed = append(sealed, raw...)
	return append(sealed, sum[:]...)
}

func openPrivateKey(scheme string, sealed []byte) ([]byte, error) {
	if len(sealed) <= privateKeyChecksumSize {
		return nil, errors.Wrapf(ErrKeyEncapsulation, "%s: private key is %d bytes", scheme, len(sealed))
	}
	raw := sealed[:len(sealed)-privateKeyChecksumSize]
	sum := sha256.Sum256(raw)
	if subtle.ConstantTimeCompare(sum[:], sealed[len(raw):]) != 1 {
		return nil, errors.Wrapf(ErrKeyEncapsulation, "%s: private key checksum mismatch", scheme)
	}
	return raw, nil
}
