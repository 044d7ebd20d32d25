// Package file persists the tab collection as a single JSON document on
// local disk. It is the default snapshot backend when no database is
// configured.
package file

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/go-faster/errors"

	"github.com/xenking/bartab/internal/domain/tab"
)

var _ tab.Snapshotter = (*SnapshotStore)(nil)

// SnapshotStore writes the whole collection to one file, atomically via
// a temp file and rename, so a crash mid-write never leaves a truncated
// snapshot behind.
type SnapshotStore struct {
	path string
}

// New returns a SnapshotStore persisting to the given path.
func New(path string) *SnapshotStore {
	return &SnapshotStore{path: path}
}

// Save serializes the collection and replaces the snapshot file.
func (s *SnapshotStore) Save(_ context.Context, tabs []tab.Tab) error {
	data, err := json.Marshal(tabs)
	if err != nil {
		return errors.Wrap(err, "marshal tabs")
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "create snapshot dir")
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return errors.Wrap(err, "create temp file")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(err, "write snapshot")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "close snapshot")
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return errors.Wrap(err, "replace snapshot")
	}
	return nil
}

// Load reads the snapshot back. A missing or unparsable file rehydrates
// to an empty collection rather than failing startup.
func (s *SnapshotStore) Load(_ context.Context) ([]tab.Tab, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []tab.Tab{}, nil
		}
		return nil, errors.Wrap(err, "read snapshot")
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
