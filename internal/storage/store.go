package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ramonehamilton/SWU-Companion/internal/config"
	"github.com/ramonehamilton/SWU-Companion/internal/swu/cards"
)

// CatalogStore persists the catalog and the collection independently, so
// a catalog re-sync never touches ownership data.
//
// Missing or unreadable persisted data loads as empty rather than failing.
type CatalogStore interface {
	LoadCatalog(ctx context.Context) (cards.Catalog, error)
	SaveCatalog(ctx context.Context, catalog cards.Catalog) error
	LoadCollection(ctx context.Context) (cards.Collection, error)
	SaveCollection(ctx context.Context, collection cards.Collection) error
	Close() error
}

// SyncRun summarizes one completed catalog sync.
type SyncRun struct {
	Partitions []string
	CardCount  int
	Skipped    int
	Duplicates int
	FinishedAt time.Time
}

// SyncRecorder is implemented by stores that keep a sync history.
type SyncRecorder interface {
	RecordSync(ctx context.Context, run SyncRun) error
	SyncHistory(ctx context.Context, limit int) ([]SyncRun, error)
}

// Open opens the store selected by the configuration.
func Open(cfg *config.Config, logger *slog.Logger) (CatalogStore, error) {
	switch cfg.Data.Backend {
	case config.BackendJSON, "":
		return NewJSONStore(cfg.CardsPath(), cfg.CollectionPath(), logger), nil
	case config.BackendSQLite:
		return OpenSQLiteStore(cfg.SQLitePath(), logger)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Data.Backend)
	}
}
