package api_functions

import (
	"context"
	"net/http"

	"github.com/HannahMarsh/onionnet/internal/api/structs"
	"github.com/HannahMarsh/onionnet/internal/domain/models"
	"github.com/pkg/errors"
)

// ErrRegistrationConflict is returned when the directory already holds a different key for the ID.
var ErrRegistrationConflict = errors.New("node id already registered with a different key")

// DirectoryClient talks to the directory over HTTP.
type DirectoryClient struct {
	Address string
}

func NewDirectoryClient(address string) *DirectoryClient {
	return &DirectoryClient{Address: address}
}

func (c *DirectoryClient) RegisterNode(ctx context.Context, node structs.PublicNodeApi) error {
	err := PostJSON(ctx, c.Address+"/registerNode", node, nil)
	var statusErr *StatusError
	if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusConflict {
		return errors.Wrapf(ErrRegistrationConflict, "node %d", node.ID)
	}
	return errors.Wrapf(err, "failed to register node %d", node.ID)
}

// GetNodeRegistry returns the directory's current snapshot ordered by ID.
func (c *DirectoryClient) GetNodeRegistry(ctx context.Context) ([]models.NodeIdentity, error) {
	var registry structs.NodeRegistryApi
	if err := GetJSON(ctx, c.Address+"/getNodeRegistry", &registry); err != nil {
		return nil, errors.Wrap(err, "failed to get node registry")
	}
	nodes := make([]models.NodeIdentity, 0, len(registry.Nodes))
	for _, n := range registry.Nodes {
		nodes = append(nodes, *n.ToNodeIdentity())
	}
	return nodes, nil
}
