// Package updater runs the catalog sync pipeline: fetch every partition,
// normalize, deduplicate, then replace the stored catalog in one write.
package updater

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ramonehamilton/SWU-Companion/internal/storage"
	"github.com/ramonehamilton/SWU-Companion/internal/swu/cards"
	"github.com/ramonehamilton/SWU-Companion/internal/swu/cards/swudb"
)

// ErrNoCards is returned when a sync produced no valid card at all. The
// stored catalog is left untouched in that case.
var ErrNoCards = errors.New("no valid cards were found")

// Fetcher retrieves the raw records of one partition.
type Fetcher interface {
	FetchPartition(ctx context.Context, code string) ([]swudb.RawCard, error)
}

// CatalogSaver persists a complete catalog.
type CatalogSaver interface {
	SaveCatalog(ctx context.Context, catalog cards.Catalog) error
}

// ProgressObserver is notified synchronously as partitions are processed.
// index runs from 0 to total; index == total signals completion.
type ProgressObserver interface {
	OnProgress(index, total int, message string)
}

// ProgressFunc adapts a function to ProgressObserver.
type ProgressFunc func(index, total int, message string)

// OnProgress implements ProgressObserver.
func (f ProgressFunc) OnProgress(index, total int, message string) {
	f(index, total, message)
}

type noopObserver struct{}

func (noopObserver) OnProgress(int, int, string) {}

// Options configures an Updater.
type Options struct {
	Observer ProgressObserver
	Logger   *slog.Logger
}

// Result summarizes a successful sync.
type Result struct {
	Catalog    cards.Catalog
	Partitions []string
	Skipped    int
	Duplicates int
}

// Updater fetches partitions strictly sequentially and saves the merged
// catalog.
type Updater struct {
	fetcher  Fetcher
	store    CatalogSaver
	observer ProgressObserver
	logger   *slog.Logger
}

// New creates an Updater.
func New(fetcher Fetcher, store CatalogSaver, options Options) *Updater {
	if options.Observer == nil {
		options.Observer = noopObserver{}
	}
	if options.Logger == nil {
		options.Logger = slog.Default()
	}
	return &Updater{
		fetcher:  fetcher,
		store:    store,
		observer: options.Observer,
		logger:   options.Logger,
	}
}

// Update syncs the given partitions. Any fetch failure aborts the whole
// sync before anything is written; invalid records are skipped.
func (u *Updater) Update(ctx context.Context, partitions []string) (*Result, error) {
	codes, err := cards.ValidateSetCodes(partitions)
	if err != nil {
		return nil, err
	}

	total := len(codes)
	builder := cards.NewBuilder(u.logger)
	skipped := 0

	for i, code := range codes {
		u.observer.OnProgress(i, total, fmt.Sprintf("Processing set: %s", code))

		raws, err := u.fetcher.FetchPartition(ctx, code)
		if err != nil {
			u.logger.Error("Catalog sync aborted", "partition", code, "error", err)
			return nil, fmt.Errorf("sync aborted at partition %s: %w", code, err)
		}

		batch, batchSkipped := cards.NormalizeBatch(code, raws, u.logger)
		skipped += batchSkipped
		builder.AddAll(code, batch)

		u.logger.Info("Partition processed",
			"partition", code,
			"records", len(raws),
			"valid", len(batch),
			"skipped", batchSkipped)
	}

	if builder.Len() == 0 {
		return nil, ErrNoCards
	}

	catalog := builder.Catalog()
	if err := u.store.SaveCatalog(ctx, catalog); err != nil {
		return nil, fmt.Errorf("failed to save catalog: %w", err)
	}

	result := &Result{
		Catalog:    catalog,
		Partitions: codes,
		Skipped:    skipped,
		Duplicates: builder.Duplicates(),
	}

	if recorder, ok := u.store.(storage.SyncRecorder); ok {
		run := storage.SyncRun{
			Partitions: codes,
			CardCount:  len(catalog),
			Skipped:    skipped,
			Duplicates: result.Duplicates,
			FinishedAt: time.Now(),
		}
		if err := recorder.RecordSync(ctx, run); err != nil {
			u.logger.Warn("Failed to record sync run", "error", err)
		}
	}

	u.observer.OnProgress(total, total, fmt.Sprintf("Catalog updated: %d cards", len(catalog)))
	u.logger.Info("Catalog sync complete",
		"partitions", total,
		"cards", len(catalog),
		"skipped", skipped,
		"duplicates", result.Duplicates)

	return result, nil
}
