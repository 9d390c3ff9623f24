package repositories

import (
	"context"
	"sync"

	"github.com/HannahMarsh/onionnet/internal/domain/models"
	"github.com/emirpasic/gods/maps/treemap"
)

// NodeRepositoryImpl is the in-memory implementation of the NodeRepository interface
type NodeRepositoryImpl struct {
	mu    sync.RWMutex
	nodes *treemap.Map
}

// NewNodeRepository creates a new instance of NodeRepositoryImpl
func NewNodeRepository() *NodeRepositoryImpl {
	return &NodeRepositoryImpl{
		nodes: treemap.NewWithIntComparator(),
	}
}

// SaveNode stores the node, replacing any record with the same ID
func (repo *NodeRepositoryImpl) SaveNode(_ context.Context, node *models.NodeIdentity) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	repo.nodes.Put(node.ID, cloneNode(*node))
	return nil
}

// GetNode retrieves a node by its ID
func (repo *NodeRepositoryImpl) GetNode(_ context.Context, id int) (*models.NodeIdentity, bool, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()
	value, found := repo.nodes.Get(id)
	if !found {
		return nil, false, nil
	}
	node := cloneNode(value.(models.NodeIdentity))
	return &node, true, nil
}

// ListNodes returns every node ordered by ID
func (repo *NodeRepositoryImpl) ListNodes(_ context.Context) ([]models.NodeIdentity, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()
	nodes := make([]models.NodeIdentity, 0, repo.nodes.Size())
	it := repo.nodes.Iterator()
	for it.Next() {
		nodes = append(nodes, cloneNode(it.Value().(models.NodeIdentity)))
	}
	return nodes, nil
}

func (repo *NodeRepositoryImpl) Close() error {
	return nil
}

func cloneNode(node models.NodeIdentity) models.NodeIdentity {
	node.PublicKey = append([]byte(nil), node.PublicKey...)
	return node
}
