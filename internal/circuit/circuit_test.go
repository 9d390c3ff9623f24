package circuit

import (
	"testing"

	"github.com/HannahMarsh/onionnet/internal/domain/models"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snapshot(ids ...int) []models.NodeIdentity {
	nodes := make([]models.NodeIdentity, len(ids))
	for i, id := range ids {
		nodes[i] = models.NodeIdentity{ID: id, PublicKey: []byte{byte(id)}}
	}
	return nodes
}

func TestBuildCircuit(t *testing.T) {
	relays := snapshot(0, 1, 2, 3, 4, 5, 6, 7, 8, 9)

	c, err := BuildCircuit(1, relays, DefaultLength)
	require.NoError(t, err)
	require.Len(t, c, DefaultLength)

	seen := map[int]bool{}
	for _, node := range c {
		assert.False(t, seen[node.ID], "relay %d chosen twice", node.ID)
		seen[node.ID] = true
		assert.Contains(t, IDs(relays), node.ID)
	}
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, IDs(relays), "snapshot must not be reordered")
}

func TestBuildCircuitUsesWholeSnapshot(t *testing.T) {
	c, err := BuildCircuit(0, snapshot(3, 1, 2), 3)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int{1, 2, 3}, IDs(c))
}

func TestBuildCircuitInsufficientRelays(t *testing.T) {
	_, err := BuildCircuit(0, snapshot(1, 2), 3)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInsufficientRelays))

	_, err = BuildCircuit(0, nil, 1)
	assert.True(t, errors.Is(err, ErrInsufficientRelays))
}

func TestBuildCircuitDuplicatesCountOnce(t *testing.T) {
	_, err := BuildCircuit(0, snapshot(1, 1, 2, 2), 3)
	assert.True(t, errors.Is(err, ErrInsufficientRelays))

	c, err := BuildCircuit(0, snapshot(1, 1, 2, 2), 2)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int{1, 2}, IDs(c))
}

func TestBuildCircuitInvalidLength(t *testing.T) {
	for _, length := range []int{0, -1} {
		_, err := BuildCircuit(0, snapshot(1, 2, 3), length)
		assert.True(t, errors.Is(err, ErrInvalidLength))
	}
}

func TestBuildCircuitCoversAllRelays(t *testing.T) {
	relays := snapshot(0, 1, 2, 3, 4)
	counts := map[int]int{}
	for i := 0; i < 500; i++ {
		c, err := BuildCircuit(0, relays, 2)
		require.NoError(t, err)
		for _, node := range c {
			counts[node.ID]++
		}
	}
	for _, node := range relays {
		assert.Greater(t, counts[node.ID], 100, "relay %d under-selected", node.ID)
	}
}
