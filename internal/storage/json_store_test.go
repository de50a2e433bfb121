package storage

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramonehamilton/SWU-Companion/internal/swu/cards"
)

func newTestJSONStore(t *testing.T) (*JSONStore, string) {
	t.Helper()
	dir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	return NewJSONStore(filepath.Join(dir, "cards.json"), filepath.Join(dir, "collection.json"), logger), dir
}

func sampleCatalog() cards.Catalog {
	return cards.Catalog{
		{IdentityKey: "SOR-010-Normal", Name: "Darth Vader", SetCode: "SOR", Number: "010",
			VariantType: "Normal", CardType: "Leader", Aspects: []string{"Aggression", "Villainy"},
			Arenas: []string{"Ground"}, Traits: []string{}, Keywords: []string{}, Cost: "7"},
		{IdentityKey: "SOR-005-Normal", Name: "Luke Skywalker", SetCode: "SOR", Number: "005",
			VariantType: "Normal", CardType: "Leader", Aspects: []string{"Vigilance", "Heroism"},
			Arenas: []string{"Ground"}, Traits: []string{}, Keywords: []string{}, BackArtURI: "back"},
	}
}

func TestJSONStore_MissingFilesLoadEmpty(t *testing.T) {
	store, _ := newTestJSONStore(t)
	ctx := context.Background()

	catalog, err := store.LoadCatalog(ctx)
	require.NoError(t, err)
	assert.NotNil(t, catalog)
	assert.Empty(t, catalog)

	collection, err := store.LoadCollection(ctx)
	require.NoError(t, err)
	assert.NotNil(t, collection)
	assert.Empty(t, collection)
}

func TestJSONStore_CorruptFilesLoadEmpty(t *testing.T) {
	store, dir := newTestJSONStore(t)
	ctx := context.Background()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "cards.json"), []byte(`[{"name": `), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "collection.json"), []byte(`not json`), 0o644))

	catalog, err := store.LoadCatalog(ctx)
	require.NoError(t, err)
	assert.Empty(t, catalog)

	collection, err := store.LoadCollection(ctx)
	require.NoError(t, err)
	assert.Empty(t, collection)
}

func TestJSONStore_CatalogRoundTrip(t *testing.T) {
	store, dir := newTestJSONStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveCatalog(ctx, sampleCatalog()))

	loaded, err := store.LoadCatalog(ctx)
	require.NoError(t, err)
	assert.Equal(t, sampleCatalog(), loaded)

	raw, err := os.ReadFile(filepath.Join(dir, "cards.json"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"identity_key": "SOR-010-Normal"`)

	// No temp files left behind
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestJSONStore_SaveReplacesWholeCatalog(t *testing.T) {
	store, _ := newTestJSONStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveCatalog(ctx, sampleCatalog()))
	require.NoError(t, store.SaveCatalog(ctx, sampleCatalog()[:1]))

	loaded, err := store.LoadCatalog(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "Darth Vader", loaded[0].Name)
}

func TestJSONStore_CollectionRoundTripIsByteStable(t *testing.T) {
	store, dir := newTestJSONStore(t)
	ctx := context.Background()
	path := filepath.Join(dir, "collection.json")

	// Hand-written file with unsorted keys and odd spacing
	require.NoError(t, os.WriteFile(path, []byte(`{"SOR-010-Normal":2,  "SHD-001-Normal": 1, "JTL-100-Foil": 3}`), 0o644))

	roundTrip := func() []byte {
		collection, err := store.LoadCollection(ctx)
		require.NoError(t, err)
		require.NoError(t, store.SaveCollection(ctx, collection))
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		return data
	}

	first := roundTrip()
	second := roundTrip()
	assert.Equal(t, first, second)

	collection, err := store.LoadCollection(ctx)
	require.NoError(t, err)
	assert.Equal(t, cards.Collection{"SOR-010-Normal": 2, "SHD-001-Normal": 1, "JTL-100-Foil": 3}, collection)
}

func TestJSONStore_CollectionIndependentOfCatalog(t *testing.T) {
	store, _ := newTestJSONStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveCollection(ctx, cards.Collection{"SOR-010-Normal": 4}))
	require.NoError(t, store.SaveCatalog(ctx, cards.Catalog{}))

	collection, err := store.LoadCollection(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, collection.Quantity("SOR-010-Normal"))
}

func TestJSONStore_DropsNegativeQuantities(t *testing.T) {
	store, dir := newTestJSONStore(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "collection.json"), []byte(`{"a": -1, "b": 2}`), 0o644))

	collection, err := store.LoadCollection(context.Background())
	require.NoError(t, err)
	assert.Equal(t, cards.Collection{"b": 2}, collection)
}

func TestWriteFileAtomic_CreatesDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "file.json")
	require.NoError(t, WriteFileAtomic(path, []byte(`{}`)))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(data))
}
