package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ramonehamilton/SWU-Companion/internal/swu/cards"
)

// JSONStore keeps the catalog as a JSON array and the collection as a JSON
// object, each in its own file. Saves replace the whole file atomically.
type JSONStore struct {
	cardsPath      string
	collectionPath string
	logger         *slog.Logger
}

// NewJSONStore creates a file-backed store.
func NewJSONStore(cardsPath, collectionPath string, logger *slog.Logger) *JSONStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &JSONStore{
		cardsPath:      cardsPath,
		collectionPath: collectionPath,
		logger:         logger,
	}
}

// LoadCatalog reads the catalog file. A missing or corrupt file yields an
// empty catalog.
func (s *JSONStore) LoadCatalog(ctx context.Context) (cards.Catalog, error) {
	var catalog cards.Catalog
	if !s.readJSON(s.cardsPath, &catalog) || catalog == nil {
		return cards.Catalog{}, nil
	}
	return catalog, nil
}

// SaveCatalog replaces the catalog file.
func (s *JSONStore) SaveCatalog(ctx context.Context, catalog cards.Catalog) error {
	if catalog == nil {
		catalog = cards.Catalog{}
	}
	data, err := json.MarshalIndent(catalog, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal catalog: %w", err)
	}
	if err := WriteFileAtomic(s.cardsPath, data); err != nil {
		return fmt.Errorf("failed to save catalog: %w", err)
	}
	s.logger.Debug("Saved catalog", "path", s.cardsPath, "cards", len(catalog))
	return nil
}

// LoadCollection reads the collection file. A missing or corrupt file
// yields an empty collection; negative quantities are dropped.
func (s *JSONStore) LoadCollection(ctx context.Context) (cards.Collection, error) {
	var collection cards.Collection
	if !s.readJSON(s.collectionPath, &collection) || collection == nil {
		return cards.Collection{}, nil
	}

	for key, qty := range collection {
		if qty < 0 {
			s.logger.Warn("Dropping negative quantity", "identity_key", key, "quantity", qty)
			delete(collection, key)
		}
	}
	return collection, nil
}

// SaveCollection replaces the collection file. Keys are written sorted so
// identical collections produce identical bytes.
func (s *JSONStore) SaveCollection(ctx context.Context, collection cards.Collection) error {
	if collection == nil {
		collection = cards.Collection{}
	}
	data, err := json.MarshalIndent(collection, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal collection: %w", err)
	}
	if err := WriteFileAtomic(s.collectionPath, data); err != nil {
		return fmt.Errorf("failed to save collection: %w", err)
	}
	return nil
}

// Close implements CatalogStore.
func (s *JSONStore) Close() error {
	return nil
}

// readJSON decodes path into v and reports whether it succeeded.
func (s *JSONStore) readJSON(path string, v any) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.Debug("Data file not found, starting empty", "path", path)
		} else {
			s.logger.Warn("Failed to read data file, starting empty", "path", path, "error", err)
		}
		return false
	}

	if err := json.Unmarshal(data, v); err != nil {
		s.logger.Warn("Corrupt data file, starting empty", "path", path, "error", err)
		return false
	}
	return true
}

// WriteFileAtomic writes data to a temp file next to path and renames it
// into place.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to move file into place: %w", err)
	}
	return nil
}
