package onion

import (
	"encoding/binary"
	"math"

	"github.com/HannahMarsh/onionnet/internal/onion/keys"
	"github.com/pkg/errors"
)

const keyLengthSize = 2

// Layer is one hop's worth of the onion. Its wire form, the ciphertext blob, is
//
//	uint16(len(EncapsulatedKey)) || EncapsulatedKey || IV || Body
type Layer struct {
	EncapsulatedKey []byte
	IV              []byte
	Body            []byte
}

// Marshal serializes the layer into a ciphertext blob.
func (l Layer) Marshal() ([]byte, error) {
	if len(l.EncapsulatedKey) == 0 || len(l.EncapsulatedKey) > math.MaxUint16 {
		return nil, errors.Errorf("encapsulated key length %d out of range", len(l.EncapsulatedKey))
	}
	if len(l.IV) != keys.IVSize {
		return nil, errors.Errorf("iv is %d bytes, want %d", len(l.IV), keys.IVSize)
	}
	blob := make([]byte, 0, keyLengthSize+len(l.EncapsulatedKey)+len(l.IV)+len(l.Body))
	blob = binary.BigEndian.AppendUint16(blob, uint16(len(l.EncapsulatedKey)))
	blob = append(blob, l.EncapsulatedKey...)
	blob = append(blob, l.IV...)
	return append(blob, l.Body...), nil
}

// UnmarshalLayer splits a ciphertext blob back into its parts. The returned
// slices alias blob. A blob that cannot be framed is reported as ErrDecryption.
func UnmarshalLayer(blob []byte) (Layer, error) {
	if len(blob) < keyLengthSize {
		return Layer{}, errors.Wrap(keys.ErrDecryption, "blob too short")
	}
	n := int(binary.BigEndian.Uint16(blob))
	keyEnd := keyLengthSize + n
	ivEnd := keyEnd + keys.IVSize
	if n == 0 || len(blob) < ivEnd {
		return Layer{}, errors.Wrapf(keys.ErrDecryption, "blob of %d bytes cannot hold a %d byte key", len(blob), n)
	}
	return Layer{
		EncapsulatedKey: blob[keyLengthSize:keyEnd:keyEnd],
		IV:              blob[keyEnd:ivEnd:ivEnd],
		Body:            blob[ivEnd:len(blob):len(blob)],
	}, nil
}
