package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ramonehamilton/SWU-Companion/internal/config"
	"github.com/ramonehamilton/SWU-Companion/internal/watch"
)

func newWatchCmd(a *app) *cobra.Command {
	var debounce time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print changes to the catalog, collection and decks until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := os.MkdirAll(a.cfg.DeckRoot(), 0o755); err != nil {
				return fmt.Errorf("failed to create deck directory: %w", err)
			}

			opts := watch.Options{
				DeckRoot: a.cfg.DeckRoot(),
				Debounce: debounce,
				Logger:   a.logger,
			}
			if a.cfg.Data.Backend == config.BackendSQLite {
				opts.SQLitePath = a.cfg.SQLitePath()
			} else {
				opts.CatalogPath = a.cfg.CardsPath()
				opts.CollectionPath = a.cfg.CollectionPath()
			}

			w, err := watch.New(opts)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Watching %s (Ctrl+C to stop)\n", a.cfg.Data.Dir)

			done := make(chan error, 1)
			go func() { done <- w.Run(ctx) }()

			for ev := range w.Events() {
				fmt.Fprintf(out, "%s  %-10s %s\n", time.Now().Format("15:04:05"), ev.Kind, ev.Path)
			}

			if err := <-done; err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().DurationVar(&debounce, "debounce", 250*time.Millisecond, "Collapse bursts of changes within this interval")
	return cmd
}
