package cart

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// StorageFileName is the fixed key the cart is persisted under, relative to
// the state directory.
const StorageFileName = "escapetable_cart.json"

// FileStorage keeps the cart as a JSON array in a single file, the durable
// client storage of spec'd behavior: survives restarts, not synced across
// machines.
type FileStorage struct {
	path string
}

func NewFileStorage(dir string) *FileStorage {
	return &FileStorage{path: filepath.Join(dir, StorageFileName)}
}

func (f *FileStorage) Load() ([]Item, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var items []Item
	if err := json.Unmarshal(data, &items); err != nil {
		// A corrupt cart file is discarded rather than wedging startup.
		return nil, nil
	}
	return items, nil
}

func (f *FileStorage) Save(items []Item) error {
	if items == nil {
		items = []Item{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(f.path, data, 0o644)
}

// MemoryStorage is an in-memory Storage for tests and ephemeral sessions.
type MemoryStorage struct {
	items []Item
	saves int
}

func (m *MemoryStorage) Load() ([]Item, error) {
	return m.items, nil
}

func (m *MemoryStorage) Save(items []Item) error {
	m.items = append([]Item(nil), items...)
	m.saves++
	return nil
}

// Saves reports how many times Save ran; used by tests to assert that every
// mutation persists.
func (m *MemoryStorage) Saves() int { return m.saves }
