package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/HannahMarsh/onionnet/internal/domain/models"
	"github.com/lib/pq"
	"github.com/pkg/errors"
)

// PostgresNodeRepository keeps the directory in a PostgreSQL table.
type PostgresNodeRepository struct {
	db    *sql.DB
	table string
}

// NewPostgresNodeRepository connects to dsn and creates the table if it does not exist.
func NewPostgresNodeRepository(ctx context.Context, dsn, table string) (*PostgresNodeRepository, error) {
	if table == "" {
		table = "onion_nodes"
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open postgres connection")
	}
	repo := &PostgresNodeRepository{db: db, table: pq.QuoteIdentifier(table)}
	if err = repo.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

func (repo *PostgresNodeRepository) migrate(ctx context.Context) error {
	_, err := repo.db.ExecContext(ctx, fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id            INTEGER PRIMARY KEY,
		public_key    BYTEA NOT NULL,
		scheme        TEXT NOT NULL,
		address       TEXT NOT NULL,
		registered_at TIMESTAMPTZ NOT NULL
	)`, repo.table))
	return errors.Wrapf(err, "failed to create table %s", repo.table)
}

func (repo *PostgresNodeRepository) SaveNode(ctx context.Context, node *models.NodeIdentity) error {
	_, err := repo.db.ExecContext(ctx, fmt.Sprintf(`INSERT INTO %s (id, public_key, scheme, address, registered_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			public_key = EXCLUDED.public_key,
			scheme = EXCLUDED.scheme,
			address = EXCLUDED.address,
			registered_at = EXCLUDED.registered_at`, repo.table),
		node.ID, node.PublicKey, node.Scheme, node.Address, node.RegisteredAt)
	return errors.Wrapf(err, "failed to save node %d", node.ID)
}

func (repo *PostgresNodeRepository) GetNode(ctx context.Context, id int) (*models.NodeIdentity, bool, error) {
	row := repo.db.QueryRowContext(ctx, fmt.Sprintf(
		`SELECT id, public_key, scheme, address, registered_at FROM %s WHERE id = $1`, repo.table), id)
	var node models.NodeIdentity
	err := row.Scan(&node.ID, &node.PublicKey, &node.Scheme, &node.Address, &node.RegisteredAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrapf(err, "failed to get node %d", id)
	}
	return &node, true, nil
}

func (repo *PostgresNodeRepository) ListNodes(ctx context.Context) ([]models.NodeIdentity, error) {
	rows, err := repo.db.QueryContext(ctx, fmt.Sprintf(
		`SELECT id, public_key, scheme, address, registered_at FROM %s ORDER BY id`, repo.table))
	if err != nil {
		return nil, errors.Wrap(err, "failed to list nodes")
	}
	defer rows.Close()

	nodes := make([]models.NodeIdentity, 0)
	for rows.Next() {
		var node models.NodeIdentity
		if err = rows.Scan(&node.ID, &node.PublicKey, &node.Scheme, &node.Address, &node.RegisteredAt); err != nil {
			return nil, errors.Wrap(err, "failed to scan node")
		}
		nodes = append(nodes, node)
	}
	return nodes, errors.Wrap(rows.Err(), "failed to iterate nodes")
}

func (repo *PostgresNodeRepository) Close() error {
	return repo.db.Close()
}
