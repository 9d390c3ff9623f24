package keys

import (
	"bytes"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestByName(t *testing.T) {
	k, err := ByName("")
	require.NoError(t, err)
	assert.Equal(t, DefaultScheme, k.Name())

	for _, name := range Schemes() {
		k, err := ByName(name)
		require.NoError(t, err)
		assert.Equal(t, name, k.Name())
	}

	_, err = ByName("rot13")
	assert.True(t, errors.Is(err, ErrKeyEncapsulation))
}

func TestEncapsulateRoundTrip(t *testing.T) {
	for _, name := range Schemes() {
		t.Run(name, func(t *testing.T) {
			k, err := ByName(name)
			require.NoError(t, err)

			publicKey, privateKey, err := k.GenerateKeyPair()
			require.NoError(t, err)
			symmetricKey, err := GenerateSymmetricKey()
			require.NoError(t, err)

			ct, err := k.Encapsulate(symmetricKey, publicKey)
			require.NoError(t, err)
			assert.False(t, bytes.Contains(ct, symmetricKey))

			got, err := k.Decapsulate(ct, privateKey)
			require.NoError(t, err)
			assert.Equal(t, symmetricKey, got)
		})
	}
}

func TestDecapsulateWrongKey(t *testing.T) {
	for _, name := range Schemes() {
		t.Run(name, func(t *testing.T) {
			k, err := ByName(name)
			require.NoError(t, err)

			publicKey, _, err := k.GenerateKeyPair()
			require.NoError(t, err)
			_, otherPrivateKey, err := k.GenerateKeyPair()
			require.NoError(t, err)
			symmetricKey, err := GenerateSymmetricKey()
			require.NoError(t, err)

			ct, err := k.Encapsulate(symmetricKey, publicKey)
			require.NoError(t, err)

			_, err = k.Decapsulate(ct, otherPrivateKey)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrKeyEncapsulation), "got %v", err)
		})
	}
}

func TestDecapsulateCorruptedPrivateKey(t *testing.T) {
	for _, name := range Schemes() {
		t.Run(name, func(t *testing.T) {
			k, err := ByName(name)
			require.NoError(t, err)

			publicKey, privateKey, err := k.GenerateKeyPair()
			require.NoError(t, err)
			symmetricKey, err := GenerateSymmetricKey()
			require.NoError(t, err)
			ct, err := k.Encapsulate(symmetricKey, publicKey)
			require.NoError(t, err)

			for i := range privateKey {
				for _, mask := range []byte{0x01, 0xff} {
					corrupted := bytes.Clone(privateKey)
					corrupted[i] ^= mask
					_, err = k.Decapsulate(ct, corrupted)
					require.True(t, errors.Is(err, ErrKeyEncapsulation), "byte %d mask %#x: got %v", i, mask, err)
				}
			}

			_, err = k.Decapsulate(ct, privateKey[:len(privateKey)-1])
			assert.True(t, errors.Is(err, ErrKeyEncapsulation))

			got, err := k.Decapsulate(ct, privateKey)
			require.NoError(t, err)
			assert.Equal(t, symmetricKey, got)
		})
	}
}

func TestDecapsulateTamperedCiphertext(t *testing.T) {
	for _, name := range Schemes() {
		t.Run(name, func(t *testing.T) {
			k, err := ByName(name)
			require.NoError(t, err)

			publicKey, privateKey, err := k.GenerateKeyPair()
			require.NoError(t, err)
			symmetricKey, err := GenerateSymmetricKey()
			require.NoError(t, err)
			ct, err := k.Encapsulate(symmetricKey, publicKey)
			require.NoError(t, err)

			for _, i := range []int{0, len(ct) / 2, len(ct) - 1} {
				tampered := bytes.Clone(ct)
				tampered[i] ^= 0x01
				_, err = k.Decapsulate(tampered, privateKey)
				assert.True(t, errors.Is(err, ErrKeyEncapsulation), "byte %d: got %v", i, err)
			}

			_, err = k.Decapsulate(ct[:len(ct)-1], privateKey)
			assert.True(t, errors.Is(err, ErrKeyEncapsulation))
		})
	}
}

func TestEncapsulateMalformedPublicKey(t *testing.T) {
	symmetricKey, err := GenerateSymmetricKey()
	require.NoError(t, err)
	for _, name := range Schemes() {
		k, err := ByName(name)
		require.NoError(t, err)
		_, err = k.Encapsulate(symmetricKey, []byte("not a key"))
		assert.True(t, errors.Is(err, ErrKeyEncapsulation), "%s: got %v", name, err)
	}
}

func TestEncryptWithAES(t *testing.T) {
	key, err := GenerateSymmetricKey()
	require.NoError(t, err)
	plaintext := []byte("secret message")

	iv1, ct1, err := EncryptWithAES(key, plaintext)
	require.NoError(t, err)
	iv2, ct2, err := EncryptWithAES(key, plaintext)
	require.NoError(t, err)

	assert.Len(t, iv1, IVSize)
	assert.NotEqual(t, iv1, iv2, "iv reused")
	assert.NotEqual(t, ct1, ct2)

	got, err := DecryptWithAES(key, iv1, ct1)
	require.NoError(t, err)
	assert.Equal(t, plaintext, got)
}

func TestDecryptWithAESFailures(t *testing.T) {
	key, err := GenerateSymmetricKey()
	require.NoError(t, err)
	otherKey, err := GenerateSymmetricKey()
	require.NoError(t, err)
	iv, ct, err := EncryptWithAES(key, []byte("secret message"))
	require.NoError(t, err)

	flipped := bytes.Clone(ct)
	flipped[0] ^= 0x80

	cases := map[string]func() ([]byte, error){
		"wrong key":      func() ([]byte, error) { return DecryptWithAES(otherKey, iv, ct) },
		"corrupted body": func() ([]byte, error) { return DecryptWithAES(key, iv, flipped) },
		"short iv":       func() ([]byte, error) { return DecryptWithAES(key, iv[:8], ct) },
		"bad key size":   func() ([]byte, error) { return DecryptWithAES(key[:7], iv, ct) },
	}
	for name, decrypt := range cases {
		_, err := decrypt()
		assert.True(t, errors.Is(err, ErrDecryption), "%s: got %v", name, err)
	}
}
