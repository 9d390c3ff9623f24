package structs

import (
	"github.com/HannahMarsh/onionnet/internal/domain/models"
)

// PublicNodeApi is a relay as exchanged with the directory. pubKey is base64 in JSON.
type PublicNodeApi struct {
	ID        int    `json:"nodeId"`
	PublicKey []byte `json:"pubKey"`
	Address   string `json:"address,omitempty"`
	Scheme    string `json:"scheme,omitempty"`
}

type NodeRegistryApi struct {
	Nodes []PublicNodeApi `json:"nodes"`
}

func NewPublicNodeApi(node models.NodeIdentity) PublicNodeApi {
	return PublicNodeApi{
		ID:        node.ID,
		PublicKey: node.PublicKey,
		Address:   node.Address,
		Scheme:    node.Scheme,
	}
}

func (n PublicNodeApi) ToNodeIdentity() *models.NodeIdentity {
	return models.NewNodeIdentity(n.ID, n.PublicKey, n.Scheme, n.Address)
}
