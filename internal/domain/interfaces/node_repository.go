package interfaces

import (
	"context"

	"github.com/HannahMarsh/onionnet/internal/domain/models"
)

// NodeRepository defines the methods for storing the directory's relays
type NodeRepository interface {
	// SaveNode inserts the node or replaces the record with the same ID.
	SaveNode(ctx context.Context, node *models.NodeIdentity) error
	GetNode(ctx context.Context, id int) (*models.NodeIdentity, bool, error)
	// ListNodes returns a copy of all nodes ordered by ID.
	ListNodes(ctx context.Context) ([]models.NodeIdentity, error)
	Close() error
}
