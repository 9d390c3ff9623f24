package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/HannahMarsh/onionnet/internal/domain/models"
	"github.com/dgraph-io/badger/v4"
	"github.com/fxamacker/cbor/v2"
	"github.com/pkg/errors"
)

const nodeKeyPrefix = "node:"

// nodeRecord is the stored form of a NodeIdentity.
type nodeRecord struct {
	ID           int    `cbor:"1,keyasint"`
	PublicKey    []byte `cbor:"2,keyasint"`
	Scheme       string `cbor:"3,keyasint"`
	Address      string `cbor:"4,keyasint"`
	RegisteredAt int64  `cbor:"5,keyasint"`
}

// BadgerNodeRepository keeps the directory in a badger key-value store.
// Keys are zero padded so that badger's byte order matches ID order.
type BadgerNodeRepository struct {
	db *badger.DB
}

// NewBadgerNodeRepository opens the store at path, or an in-memory store if path is empty.
func NewBadgerNodeRepository(path string) (*BadgerNodeRepository, error) {
	opts := badger.DefaultOptions(path)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open badger store at %q", path)
	}
	return &BadgerNodeRepository{db: db}, nil
}

func nodeKey(id int) []byte {
	return []byte(fmt.Sprintf("%s%010d", nodeKeyPrefix, id))
}

func (repo *BadgerNodeRepository) SaveNode(_ context.Context, node *models.NodeIdentity) error {
	value, err := cbor.Marshal(nodeRecord{
		ID:           node.ID,
		PublicKey:    node.PublicKey,
		Scheme:       node.Scheme,
		Address:      node.Address,
		RegisteredAt: node.RegisteredAt.UnixNano(),
	})
	if err != nil {
		return errors.Wrap(err, "failed to encode node")
	}
	err = repo.db.Update(func(txn *badger.Txn) error {
		return txn.Set(nodeKey(node.ID), value)
	})
	return errors.Wrapf(err, "failed to save node %d", node.ID)
}

func (repo *BadgerNodeRepository) GetNode(_ context.Context, id int) (*models.NodeIdentity, bool, error) {
	var node *models.NodeIdentity
	err := repo.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(nodeKey(id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			node, err = decodeNode(val)
			return err
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrapf(err, "failed to get node %d", id)
	}
	return node, true, nil
}

func (repo *BadgerNodeRepository) ListNodes(_ context.Context) ([]models.NodeIdentity, error) {
	nodes := make([]models.NodeIdentity, 0)
	err := repo.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(nodeKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				node, err := decodeNode(val)
				if err != nil {
					return err
				}
				nodes = append(nodes, *node)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list nodes")
	}
	return nodes, nil
}

func (repo *BadgerNodeRepository) Close() error {
	return repo.db.Close()
}

// decodeNode copies out of val, which badger only guarantees inside the callback.
func decodeNode(val []byte) (*models.NodeIdentity, error) {
	var rec nodeRecord
	if err := cbor.Unmarshal(val, &rec); err != nil {
		return nil, errors.Wrap(err, "failed to decode node")
	}
	return &models.NodeIdentity{
		ID:           rec.ID,
		PublicKey:    append([]byte(nil), rec.PublicKey...),
		Scheme:       rec.Scheme,
		Address:      rec.Address,
		RegisteredAt: time.Unix(0, rec.RegisteredAt),
	}, nil
}
