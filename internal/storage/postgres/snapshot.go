package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/bartab/internal/domain/tab"
)

// snapshotKey is the fixed key the tab collection lives under. All
// backends share it so a deployment can switch backends without losing
// the document name.
const snapshotKey = "bar_tabs"

const (
	saveSnapshotSQL = `INSERT INTO snapshots (key, data, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET data = EXCLUDED.data, updated_at = now()`

	loadSnapshotSQL = `SELECT data FROM snapshots WHERE key = $1`
)

var _ tab.Snapshotter = (*SnapshotStore)(nil)

// SnapshotStore implements tab.Snapshotter backed by PostgreSQL.
type SnapshotStore struct {
	pool *pgxpool.Pool
}

// NewSnapshotStore returns a SnapshotStore that uses the given pool.
func NewSnapshotStore(pool *pgxpool.Pool) *SnapshotStore {
	return &SnapshotStore{pool: pool}
}

// Save upserts the serialized collection under the snapshot key.
func (s *SnapshotStore) Save(ctx context.Context, tabs []tab.Tab) error {
	data, err := json.Marshal(tabs)
	if err != nil {
		return errors.Wrap(err, "marshal tabs")
	}

	if _, err := s.pool.Exec(ctx, saveSnapshotSQL, snapshotKey, data); err != nil {
		return fmt.Errorf("saving snapshot %q: %w", snapshotKey, err)
	}
	return nil
}

// Load reads the collection back. A missing row or an unparsable
// document rehydrates to an empty collection.
func (s *SnapshotStore) Load(ctx context.Context) ([]tab.Tab, error) {
	var data []byte
	err := s.pool.QueryRow(ctx, loadSnapshotSQL, snapshotKey).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return []tab.Tab{}, nil
		}
		return nil, fmt.Errorf("loading snapshot %q: %w", snapshotKey, err)
	}

	var tabs []tab.Tab
	if err := json.Unmarshal(data, &tabs); err != nil {
		return []tab.Tab{}, nil
	}
	if tabs == nil {
		tabs = []tab.Tab{}
	}
	return tabs, nil
}
