// Package watch reports changes to the data directory made by other
// processes, such as a sync run from a second CLI.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Kind identifies what changed.
type Kind int

const (
	CatalogChanged Kind = iota
	CollectionChanged
	DeckChanged
)

func (k Kind) String() string {
	switch k {
	case CatalogChanged:
		return "catalog"
	case CollectionChanged:
		return "collection"
	case DeckChanged:
		return "deck"
	default:
		return "unknown"
	}
}

// Event is one debounced change notification.
type Event struct {
	Kind Kind
	Path string
}

// Options configures a Watcher.
type Options struct {
	CatalogPath    string
	CollectionPath string
	SQLitePath     string // Reported as both catalog and collection changes
	DeckRoot       string
	Debounce       time.Duration
	Logger         *slog.Logger
}

// Watcher turns raw filesystem notifications into Events. Bursts of writes
// to the same kind within one debounce interval collapse into one Event.
type Watcher struct {
	options Options
	fs      *fsnotify.Watcher
	events  chan Event
	logger  *slog.Logger
}

// New starts watching the directories holding the configured files and
// every deck folder.
func New(options Options) (*Watcher, error) {
	if options.Debounce <= 0 {
		options.Debounce = 250 * time.Millisecond
	}
	if options.Logger == nil {
		options.Logger = slog.Default()
	}
	options.CatalogPath = clean(options.CatalogPath)
	options.CollectionPath = clean(options.CollectionPath)
	options.SQLitePath = clean(options.SQLitePath)
	options.DeckRoot = clean(options.DeckRoot)

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	w := &Watcher{
		options: options,
		fs:      fsw,
		events:  make(chan Event, 16),
		logger:  options.Logger,
	}

	dirs := map[string]struct{}{}
	for _, p := range []string{options.CatalogPath, options.CollectionPath, options.SQLitePath} {
		if p != "" {
			dirs[filepath.Dir(p)] = struct{}{}
		}
	}
	if options.DeckRoot != "" {
		dirs[options.DeckRoot] = struct{}{}
		entries, err := os.ReadDir(options.DeckRoot)
		if err == nil {
			for _, e := range entries {
				if e.IsDir() {
					dirs[filepath.Join(options.DeckRoot, e.Name())] = struct{}{}
				}
			}
		}
	}

	for dir := range dirs {
		if err := fsw.Add(dir); err != nil {
			_ = fsw.Close()
			return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}

	return w, nil
}

// Events returns the notification channel. It is closed when Run returns.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Run processes notifications until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	defer close(w.events)
	defer func() { _ = w.fs.Close() }()

	ticker := time.NewTicker(w.options.Debounce)
	defer ticker.Stop()

	pending := make(map[Kind]string)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			w.track(event)
			for _, kind := range w.classify(event.Name) {
				pending[kind] = event.Name
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("File watcher error", "error", err)
		case <-ticker.C:
			for _, kind := range []Kind{CatalogChanged, CollectionChanged, DeckChanged} {
				path, ok := pending[kind]
				if !ok {
					continue
				}
				delete(pending, kind)
				select {
				case w.events <- Event{Kind: kind, Path: path}:
				case <-ctx.Done():
					return ctx.Err()
				}
			}
		}
	}
}

// track adds newly created deck folders to the watch list.
func (w *Watcher) track(event fsnotify.Event) {
	if event.Op&fsnotify.Create == 0 || w.options.DeckRoot == "" {
		return
	}
	if filepath.Dir(clean(event.Name)) != w.options.DeckRoot {
		return
	}
	info, err := os.Stat(event.Name)
	if err != nil || !info.IsDir() {
		return
	}
	if err := w.fs.Add(event.Name); err != nil {
		w.logger.Warn("Failed to watch new deck folder", "path", event.Name, "error", err)
	}
}

func (w *Watcher) classify(name string) []Kind {
	name = clean(name)
	if strings.HasSuffix(name, ".tmp") {
		return nil
	}

	switch {
	case name == w.options.CatalogPath:
		return []Kind{CatalogChanged}
	case name == w.options.CollectionPath:
		return []Kind{CollectionChanged}
	case w.options.SQLitePath != "" && strings.HasPrefix(name, w.options.SQLitePath):
		return []Kind{CatalogChanged, CollectionChanged}
	case w.options.DeckRoot != "" && strings.HasPrefix(name, w.options.DeckRoot+string(filepath.Separator)):
		return []Kind{DeckChanged}
	}
	return nil
}

func clean(path string) string {
	if path == "" {
		return ""
	}
	return filepath.Clean(path)
}
