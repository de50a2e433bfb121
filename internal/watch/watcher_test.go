package watch

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitFor(t *testing.T, events <-chan Event, kind Kind) Event {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				t.Fatalf("event channel closed before %s event", kind)
			}
			if ev.Kind == kind {
				return ev
			}
		case <-timeout:
			t.Fatalf("timed out waiting for %s event", kind)
		}
	}
}

func TestWatcher_ReportsChanges(t *testing.T) {
	dir := t.TempDir()
	deckRoot := filepath.Join(dir, "decks")
	require.NoError(t, os.MkdirAll(filepath.Join(deckRoot, "Aggro"), 0o755))

	w, err := New(Options{
		CatalogPath:    filepath.Join(dir, "cards.json"),
		CollectionPath: filepath.Join(dir, "collection.json"),
		DeckRoot:       deckRoot,
		Debounce:       20 * time.Millisecond,
		Logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "cards.json"), []byte("[]"), 0o644))
	ev := waitFor(t, w.Events(), CatalogChanged)
	assert.Equal(t, filepath.Join(dir, "cards.json"), ev.Path)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "collection.json"), []byte("{}"), 0o644))
	waitFor(t, w.Events(), CollectionChanged)

	require.NoError(t, os.WriteFile(filepath.Join(deckRoot, "Aggro", "Sabine.json"), []byte("{}"), 0o644))
	waitFor(t, w.Events(), DeckChanged)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}

func TestClassify(t *testing.T) {
	w := &Watcher{options: Options{
		CatalogPath:    "/data/cards.json",
		CollectionPath: "/data/collection.json",
		SQLitePath:     "/data/swu.db",
		DeckRoot:       "/data/decks",
	}}

	assert.Equal(t, []Kind{CatalogChanged}, w.classify("/data/cards.json"))
	assert.Equal(t, []Kind{CollectionChanged}, w.classify("/data/collection.json"))
	assert.Equal(t, []Kind{CatalogChanged, CollectionChanged}, w.classify("/data/swu.db-wal"))
	assert.Equal(t, []Kind{DeckChanged}, w.classify("/data/decks/F/D.json"))
	assert.Nil(t, w.classify("/data/.cards.json-123.tmp"))
	assert.Nil(t, w.classify("/data/other.txt"))
	assert.Nil(t, w.classify("/data/decksmith/x.json"))
	assert.Equal(t, "deck", DeckChanged.String())
}
