package store

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/plumeworks/plume/internal/document"
)

// UniverseStore persists topic universes, one JSON file per universe name.
type UniverseStore struct {
	dir string
}

// NewUniverseStore creates the store, making the directory when missing.
func NewUniverseStore(dir string) (*UniverseStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("store: creating %s: %w", dir, err)
	}
	return &UniverseStore{dir: dir}, nil
}

func (s *UniverseStore) path(name string) string {
	return filepath.Join(s.dir, name+".json")
}

// Save writes the universe atomically.
func (s *UniverseStore) Save(u *document.Universe) error {
	if u == nil {
		return fmt.Errorf("store: nil universe")
	}
	if err := checkKey(u.Name); err != nil {
		return err
	}
	return writeJSON(s.path(u.Name), u)
}

// Load reads a universe by name. Missing universes return ErrNotFound.
func (s *UniverseStore) Load(name string) (*document.Universe, error) {
	if err := checkKey(name); err != nil {
		return nil, err
	}
	var u document.Universe
	if err := readJSON(s.path(name), &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Delete removes a universe, reporting whether it existed.
func (s *UniverseStore) Delete(name string) (bool, error) {
	if err := checkKey(name); err != nil {
		return false, err
	}
	return remove(s.path(name))
}

// List returns every stored universe name, sorted.
func (s *UniverseStore) List() ([]string, error) {
	return listKeys(s.dir)
}
