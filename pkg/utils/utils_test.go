package utils

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompressRoundTrip(t *testing.T) {
	data := []byte(strings.Repeat("onion ", 1000))
	compressed, err := Compress(data)
	require.NoError(t, err)
	assert.Less(t, len(compressed), len(data))

	out, err := Decompress(bytes.NewReader(compressed))
	require.NoError(t, err)
	assert.Equal(t, data, out)
}

func TestDecompressRejectsGarbage(t *testing.T) {
	_, err := Decompress(strings.NewReader("not gzip"))
	assert.Error(t, err)
}

func TestStreamHelpers(t *testing.T) {
	assert.Equal(t, []string{"1", "2"}, Map([]int{1, 2}, func(i int) string { return string(rune('0' + i)) }))
	assert.Empty(t, Map([]int(nil), func(i int) int { return i }))
}

func TestListen(t *testing.T) {
	listener, port, err := Listen("localhost", 0)
	require.NoError(t, err)
	defer listener.Close()
	assert.NotZero(t, port)

	_, _, err = Listen("localhost", port)
	assert.Error(t, err)
}
