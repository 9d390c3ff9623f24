package usecases

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/HannahMarsh/onionnet/internal/domain/interfaces"
	"github.com/HannahMarsh/onionnet/internal/domain/models"
	"github.com/HannahMarsh/onionnet/internal/onion/keys"
	"github.com/pkg/errors"
)

var (
	// ErrNodeConflict is returned when an ID is re-registered with a different key.
	ErrNodeConflict = errors.New("node id already registered with a different key")
	ErrInvalidNode  = errors.New("invalid node")
)

// DirectoryService handles the logic for managing the directory of relays
type DirectoryService struct {
	Repo interfaces.NodeRepository
	// serializes check-then-save so two registrations of one ID cannot both succeed
	mu sync.Mutex
}

func NewDirectoryService(repo interfaces.NodeRepository) *DirectoryService {
	return &DirectoryService{Repo: repo}
}

// RegisterNode adds a relay to the directory. Registering the same ID and key
// again is accepted and refreshes the address; a different key is ErrNodeConflict.
// It reports whether a new record was created.
func (s *DirectoryService) RegisterNode(ctx context.Context, node *models.NodeIdentity) (bool, error) {
	if err := validate(node); err != nil {
		return false, err
	}
	if node.Scheme == "" {
		node.Scheme = keys.DefaultScheme
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, found, err := s.Repo.GetNode(ctx, node.ID)
	if err != nil {
		return false, errors.Wrap(err, "failed to look up node")
	}
	if found {
		if !existing.SameKey(*node) {
			return false, errors.Wrapf(ErrNodeConflict, "node %d", node.ID)
		}
		if existing.Address == node.Address {
			return false, nil
		}
		existing.Address = node.Address
		slog.Info("refreshing node address", "id", node.ID, "address", node.Address)
		return false, s.Repo.SaveNode(ctx, existing)
	}

	if node.RegisteredAt.IsZero() {
		node.RegisteredAt = time.Now()
	}
	if err = s.Repo.SaveNode(ctx, node); err != nil {
		return false, err
	}
	slog.Info("registered node", "id", node.ID, "scheme", node.Scheme, "address", node.Address)
	return true, nil
}

func validate(node *models.NodeIdentity) error {
	if node == nil {
		return errors.Wrap(ErrInvalidNode, "missing node")
	}
	if node.ID < 0 || node.ID > models.MaxNodeID {
		return errors.Wrapf(ErrInvalidNode, "id %d out of range [0, %d]", node.ID, models.MaxNodeID)
	}
	if len(node.PublicKey) == 0 {
		return errors.Wrapf(ErrInvalidNode, "node %d has no public key", node.ID)
	}
	if _, err := keys.ByName(node.Scheme); err != nil {
		return errors.Wrapf(ErrInvalidNode, "node %d: unknown scheme %q", node.ID, node.Scheme)
	}
	return nil
}

// GetNodeRegistry returns a snapshot of all registered relays ordered by ID.
func (s *DirectoryService) GetNodeRegistry(ctx context.Context) ([]models.NodeIdentity, error) {
	return s.Repo.ListNodes(ctx)
}
