package models

import (
	"bytes"
	"math"
	"time"
)

// MaxNodeID is the largest relay ID the directory accepts. It fits the
// postgres INTEGER column and the ten-digit badger key.
const MaxNodeID = math.MaxInt32

// NodeIdentity is a relay as published by the directory. ID and PublicKey are
// fixed once registered; Address may be refreshed by re-registering.
type NodeIdentity struct {
	ID           int
	PublicKey    []byte
	Scheme       string
	Address      string
	RegisteredAt time.Time
}

// NewNodeIdentity creates a node identity stamped with the current time
func NewNodeIdentity(id int, publicKey []byte, scheme, address string) *NodeIdentity {
	return &NodeIdentity{
		ID:           id,
		PublicKey:    publicKey,
		Scheme:       scheme,
		Address:      address,
		RegisteredAt: time.Now(),
	}
}

// SameKey reports whether other carries the same key material under the same scheme.
func (n NodeIdentity) SameKey(other NodeIdentity) bool {
	return n.Scheme == other.Scheme && bytes.Equal(n.PublicKey, other.PublicKey)
}
