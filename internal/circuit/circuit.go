// Package circuit chooses the relays an onion travels through.
package circuit

import (
	"crypto/rand"
	"math/big"

	"github.com/HannahMarsh/onionnet/internal/domain/models"
	"github.com/pkg/errors"
)

// DefaultLength is the number of relays in a circuit unless configured otherwise.
const DefaultLength = 3

var (
	ErrInsufficientRelays = errors.New("not enough relays in directory")
	ErrInvalidLength      = errors.New("circuit length must be positive")
)

// BuildCircuit picks length distinct relays from snapshot uniformly at random.
// Relays that share an ID are counted once. The snapshot is not modified.
//
// destinationUser is not used for selection; users are never relays.
func BuildCircuit(destinationUser int, snapshot []models.NodeIdentity, length int) ([]models.NodeIdentity, error) {
	if length <= 0 {
		return nil, errors.Wrapf(ErrInvalidLength, "got %d", length)
	}

	candidates := distinct(snapshot)
	if len(candidates) < length {
		return nil, errors.Wrapf(ErrInsufficientRelays, "need %d, have %d", length, len(candidates))
	}

	for i := 0; i < length; i++ {
		j, err := randomIndex(i, len(candidates))
		if err != nil {
			return nil, err
		}
		candidates[i], candidates[j] = candidates[j], candidates[i]
	}
	return candidates[:length:length], nil
}

func distinct(snapshot []models.NodeIdentity) []models.NodeIdentity {
	seen := make(map[int]struct{}, len(snapshot))
	out := make([]models.NodeIdentity, 0, len(snapshot))
	for _, node := range snapshot {
		if _, ok := seen[node.ID]; ok {
			continue
		}
		seen[node.ID] = struct{}{}
		out = append(out, node)
	}
	return out
}

// randomIndex returns a uniform index in [lo, hi).
func randomIndex(lo, hi int) (int, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(hi-lo)))
	if err != nil {
		return 0, errors.Wrap(err, "failed to read randomness")
	}
	return lo + int(n.Int64()), nil
}

// IDs returns the relay IDs of a circuit in hop order.
func IDs(circuit []models.NodeIdentity) []int {
	ids := make([]int, len(circuit))
	for i, node := range circuit {
		ids[i] = node.ID
	}
	return ids
}
