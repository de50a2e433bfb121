package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/ramonehamilton/SWU-Companion/internal/config"
	"github.com/ramonehamilton/SWU-Companion/internal/storage"
	"github.com/ramonehamilton/SWU-Companion/internal/swu/cards"
	"github.com/ramonehamilton/SWU-Companion/internal/swu/decks"
	"github.com/ramonehamilton/SWU-Companion/internal/version"
)

// app carries state shared by every command once flags are parsed.
type app struct {
	configPath string
	dataDir    string
	debug      bool

	cfg    *config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:     "swu-companion",
		Version: version.GetVersion(),
		Short:   "Star Wars Unlimited card catalog, collection and deck manager",
		Long: `SWU Companion syncs the Star Wars Unlimited card catalog from swu-db,
tracks the cards you own, searches the catalog by name and facets, caches
card artwork and manages decks organized into folders.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd.ErrOrStderr())
		},
	}

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", config.DefaultPath(), "Path to config file")
	root.PersistentFlags().StringVar(&a.dataDir, "data-dir", "", "Override the data directory")
	root.PersistentFlags().BoolVarP(&a.debug, "debug", "d", false, "Enable debug logging")

	root.AddCommand(
		newSyncCmd(a),
		newHistoryCmd(a),
		newSearchCmd(a),
		newFacetsCmd(a),
		newOwnCmd(a),
		newImageCmd(a),
		newDeckCmd(a),
		newWatchCmd(a),
		newConfigCmd(a),
		newBackupCmd(a),
		newVersionCmd(),
	)

	return root
}

func (a *app) init(stderr io.Writer) error {
	cfg, err := config.LoadFrom(a.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if a.dataDir != "" {
		cfg.Data.Dir = a.dataDir
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	a.cfg = cfg
	a.logger = newLogger(stderr, cfg.App.LogFormat, a.debug || cfg.App.DebugMode)
	slog.SetDefault(a.logger)
	return nil
}

func newLogger(w io.Writer, format string, debug bool) *slog.Logger {
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func (a *app) openStore() (storage.CatalogStore, error) {
	return storage.Open(a.cfg, a.logger)
}

func (a *app) decks() (*decks.Repository, error) {
	return decks.NewRepository(a.cfg.DeckRoot(), a.logger)
}

// loadCatalog opens the store and reads the catalog and collection.
func (a *app) loadCatalog(cmd *cobra.Command) (storage.CatalogStore, cards.Catalog, cards.Collection, error) {
	store, err := a.openStore()
	if err != nil {
		return nil, nil, nil, err
	}
	catalog, err := store.LoadCatalog(cmd.Context())
	if err != nil {
		_ = store.Close()
		return nil, nil, nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	collection, err := store.LoadCollection(cmd.Context())
	if err != nil {
		_ = store.Close()
		return nil, nil, nil, fmt.Errorf("failed to load collection: %w", err)
	}
	return store, catalog, collection, nil
}
