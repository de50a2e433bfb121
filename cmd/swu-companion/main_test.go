package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run executes the CLI against an isolated data directory.
func run(t *testing.T, dataDir string, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer

	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{
		"--config", filepath.Join(dataDir, "config.toml"),
		"--data-dir", dataDir,
	}, args...))

	err := root.Execute()
	return out.String(), err
}

func newCatalogServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/cards/sor":
			w.Write([]byte(`{"data": [
				{"Set": "SOR", "Number": "010", "Name": "Darth Vader", "Subtitle": "Dark Lord of the Sith",
				 "Type": "Leader", "Aspects": ["Aggression", "Villainy"], "Arenas": ["Ground"]},
				{"Set": "SOR", "Number": "005", "Name": "Luke Skywalker", "Type": "Leader",
				 "Aspects": ["Vigilance", "Heroism"], "Arenas": ["Ground"]},
				{"Set": "SOR", "Number": "020"}
			]}`))
		case "/cards/shd":
			w.Write([]byte(`{"data": [{"Set": "SHD", "Number": "021", "Name": "Jabba's Palace", "Type": "Base"}]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func TestCLI_SyncSearchOwn(t *testing.T) {
	server := newCatalogServer(t)
	t.Setenv("SWU_API_BASE_URL", server.URL)
	t.Setenv("SWU_API_RATE_LIMIT", "0s")
	dir := t.TempDir()

	out, err := run(t, dir, "sync", "sor", "shd")
	require.NoError(t, err)
	assert.Contains(t, out, "[0/2] Processing set: sor")
	assert.Contains(t, out, "Catalog updated: 3 cards")
	assert.Contains(t, out, "Skipped 1 invalid records")

	out, err = run(t, dir, "search", "vader")
	require.NoError(t, err)
	assert.Contains(t, out, "SOR-010-Normal")
	assert.NotContains(t, out, "Luke Skywalker")

	out, err = run(t, dir, "search", "--type", "Base")
	require.NoError(t, err)
	assert.Contains(t, out, "Jabba's Palace")

	_, err = run(t, dir, "own", "SOR-010-Normal", "2")
	require.NoError(t, err)

	out, err = run(t, dir, "search", "--owned")
	require.NoError(t, err)
	assert.Contains(t, out, "Darth Vader")
	assert.NotContains(t, out, "Luke Skywalker")

	_, err = run(t, dir, "own", "SOR-010-Normal", "1000")
	assert.Error(t, err)

	_, err = run(t, dir, "own", "SOR-999-Normal", "1")
	assert.Error(t, err)

	out, err = run(t, dir, "facets")
	require.NoError(t, err)
	assert.Contains(t, out, "All, SHD, SOR")
}

func TestCLI_SyncFailureKeepsCatalog(t *testing.T) {
	server := newCatalogServer(t)
	t.Setenv("SWU_API_BASE_URL", server.URL)
	t.Setenv("SWU_API_RATE_LIMIT", "0s")
	t.Setenv("SWU_API_RETRY_ATTEMPTS", "1")
	dir := t.TempDir()

	_, err := run(t, dir, "sync", "sor")
	require.NoError(t, err)

	_, err = run(t, dir, "sync", "sor", "missing")
	require.Error(t, err)

	out, err := run(t, dir, "search", "luke")
	require.NoError(t, err)
	assert.Contains(t, out, "SOR-005-Normal")
}

func TestCLI_Decks(t *testing.T) {
	dir := t.TempDir()

	_, err := run(t, dir, "deck", "folder", "Aggro")
	require.NoError(t, err)
	_, err = run(t, dir, "deck", "new", "Aggro", "Sabine")
	require.NoError(t, err)
	_, err = run(t, dir, "deck", "set", "Aggro", "Sabine", "SOR-050-Normal", "3")
	require.NoError(t, err)
	_, err = run(t, dir, "deck", "status", "Aggro", "Sabine", "testing")
	require.NoError(t, err)

	_, err = run(t, dir, "deck", "new", "Aggro", "Sabine")
	assert.Error(t, err)
	_, err = run(t, dir, "deck", "new", "Aggro", "bad/name")
	assert.Error(t, err)

	out, err := run(t, dir, "deck", "show", "Aggro", "Sabine")
	require.NoError(t, err)
	assert.Contains(t, out, "Status: Testing")
	assert.Contains(t, out, "Cards: 3")
	assert.Contains(t, out, "Warning: Leader: None")

	_, err = run(t, dir, "deck", "rename", "Aggro", "Sabine", "Sabine Wren")
	require.NoError(t, err)

	out, err = run(t, dir, "deck", "ls")
	require.NoError(t, err)
	assert.Contains(t, out, "Aggro/")
	assert.Contains(t, out, "Sabine Wren")

	_, err = run(t, dir, "deck", "rm", "Aggro", "Sabine Wren")
	require.NoError(t, err)
	_, err = run(t, dir, "deck", "rm", "Aggro", "Sabine Wren")
	assert.Error(t, err)
}

func TestCLI_ConfigInit(t *testing.T) {
	dir := t.TempDir()

	out, err := run(t, dir, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, "config.toml")

	_, err = run(t, dir, "config", "init")
	assert.Error(t, err)

	out, err = run(t, dir, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "fuzzy_threshold = 80")
}

func TestCLI_BackupAndVersion(t *testing.T) {
	dir := t.TempDir()

	_, err := run(t, dir, "deck", "folder", "Control")
	require.NoError(t, err)

	out, err := run(t, dir, "backup", "first")
	require.NoError(t, err)
	assert.Contains(t, out, filepath.Join(dir, "backups", "first"))

	out, err = run(t, dir, "backup", "ls")
	require.NoError(t, err)
	assert.Contains(t, out, "first")

	out, err = run(t, dir, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "swu-companion dev")
}
