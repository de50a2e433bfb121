package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ramonehamilton/SWU-Companion/internal/storage"
	"github.com/ramonehamilton/SWU-Companion/internal/swu/cards"
	"github.com/ramonehamilton/SWU-Companion/internal/swu/cards/imagecache"
	"github.com/ramonehamilton/SWU-Companion/internal/swu/cards/query"
	"github.com/ramonehamilton/SWU-Companion/internal/swu/cards/swudb"
	"github.com/ramonehamilton/SWU-Companion/internal/swu/cards/updater"
)

func newSyncCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "sync [sets...]",
		Short: "Download the card catalog from swu-db",
		Long: `Fetch every listed set from swu-db and replace the local catalog.
With no arguments the default_sets from the config are synced. The sync is
all or nothing: any set that cannot be fetched leaves the catalog unchanged.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sets := args
			if len(sets) == 0 {
				sets = a.cfg.DefaultSets
			}

			timeout, err := a.cfg.GetAPITimeout()
			if err != nil {
				return err
			}
			rateLimit, err := a.cfg.GetAPIRateLimit()
			if err != nil {
				return err
			}

			client := swudb.NewClient(swudb.Options{
				BaseURL:       a.cfg.API.BaseURL,
				Timeout:       timeout,
				RetryAttempts: a.cfg.API.RetryAttempts,
				RateLimit:     rateLimit,
				Headers:       a.cfg.API.Headers,
				Logger:        a.logger,
			})

			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			out := cmd.OutOrStdout()
			progress := updater.ProgressFunc(func(index, total int, message string) {
				fmt.Fprintf(out, "[%d/%d] %s\n", index, total, message)
			})

			u := updater.New(client, store, updater.Options{Observer: progress, Logger: a.logger})
			result, err := u.Update(cmd.Context(), sets)
			if err != nil {
				return err
			}

			successColor.Fprintf(out, "Catalog updated: %d cards from %s\n", len(result.Catalog), strings.Join(result.Partitions, ", "))
			if result.Skipped > 0 {
				warnColor.Fprintf(out, "Skipped %d invalid records\n", result.Skipped)
			}
			if result.Duplicates > 0 {
				warnColor.Fprintf(out, "Replaced %d duplicate records\n", result.Duplicates)
			}
			return nil
		},
	}
}

func newHistoryCmd(a *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent catalog syncs (sqlite backend)",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			out := cmd.OutOrStdout()
			recorder, ok := store.(storage.SyncRecorder)
			if !ok {
				fmt.Fprintf(out, "Sync history is only kept by the %q backend.\n", "sqlite")
				return nil
			}

			runs, err := recorder.SyncHistory(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(out, "No syncs recorded yet.")
				return nil
			}

			displayHeader(out, "Sync History")
			for _, run := range runs {
				fmt.Fprintf(out, "%s  %-20s %5d cards  %d skipped  %d duplicates\n",
					run.FinishedAt.Local().Format("2006-01-02 15:04"),
					strings.Join(run.Partitions, ","),
					run.CardCount, run.Skipped, run.Duplicates)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Number of runs to show")
	return cmd
}

func newSearchCmd(a *app) *cobra.Command {
	var (
		filters query.Filters
		limit   int
	)

	cmd := &cobra.Command{
		Use:   "search [text]",
		Short: "Search the catalog by name and facets",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				filters.Text = args[0]
			}

			store, catalog, collection, err := a.loadCatalog(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			out := cmd.OutOrStdout()
			if len(catalog) == 0 {
				fmt.Fprintln(out, "The catalog is empty. Run 'swu-companion sync' first.")
				return nil
			}

			engine := query.New(query.Options{Threshold: a.cfg.Search.FuzzyThreshold, Logger: a.logger})
			matches := engine.Query(catalog, collection, filters)
			displayMatches(out, matches, collection, limit)

			if len(matches) == 0 && strings.TrimSpace(filters.Text) != "" {
				displaySuggestions(out, filters.Text, catalog)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&filters.OwnedOnly, "owned", false, "Only cards in your collection")
	cmd.Flags().StringVar(&filters.Facets.Set, "set", "", "Set code (e.g. SOR)")
	cmd.Flags().StringVar(&filters.Facets.Type, "type", "", "Card type (e.g. Leader)")
	cmd.Flags().StringVar(&filters.Facets.Aspect, "aspect", "", "Aspect (e.g. Villainy)")
	cmd.Flags().StringVar(&filters.Facets.Arena, "arena", "", "Arena (Ground or Space)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "Maximum rows to print (0 = all)")
	return cmd
}

func newFacetsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "facets",
		Short: "List the values available for each search facet",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, catalog, _, err := a.loadCatalog(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			opts := query.FacetValues(catalog)
			out := cmd.OutOrStdout()
			for _, facet := range []struct {
				name   string
				values []string
			}{
				{"Sets", opts.Sets},
				{"Types", opts.Types},
				{"Aspects", opts.Aspects},
				{"Arenas", opts.Arenas},
			} {
				headerColor.Fprintf(out, "%s: ", facet.name)
				fmt.Fprintln(out, strings.Join(facet.values, ", "))
			}
			return nil
		},
	}
}

func newOwnCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "own <identity_key> <quantity>",
		Short: "Set how many copies of a card you own (0 removes it)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			quantity, err := cards.ParseQuantity(args[1])
			if err != nil {
				return err
			}

			store, catalog, collection, err := a.loadCatalog(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			out := cmd.OutOrStdout()
			card, ok := catalog.Lookup(key)
			if !ok {
				displaySuggestions(out, key, catalog)
				return fmt.Errorf("card %s is not in the catalog", key)
			}

			if err := collection.SetQuantity(key, quantity); err != nil {
				return err
			}
			if err := store.SaveCollection(cmd.Context(), collection); err != nil {
				return err
			}

			successColor.Fprintf(out, "%s: %d owned\n", card.DisplayName(), quantity)
			return nil
		},
	}
}

func newImageCmd(a *app) *cobra.Command {
	var back bool

	cmd := &cobra.Command{
		Use:   "image <identity_key>",
		Short: "Fetch or reuse the cached artwork of a card",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, catalog, _, err := a.loadCatalog(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			card, ok := catalog.Lookup(args[0])
			if !ok {
				displaySuggestions(cmd.OutOrStdout(), args[0], catalog)
				return fmt.Errorf("card %s is not in the catalog", args[0])
			}

			timeout, err := a.cfg.GetAPITimeout()
			if err != nil {
				return err
			}
			cache, err := imagecache.New(imagecache.Options{
				Root:    a.cfg.ImageRoot(),
				Timeout: timeout,
				Logger:  a.logger,
			})
			if err != nil {
				return err
			}

			side := cards.Front
			if back {
				side = cards.Back
			}

			out := cmd.OutOrStdout()
			art, err := cache.GetCard(cmd.Context(), card, side)
			if err != nil {
				var cacheErr *imagecache.CacheError
				if errors.As(err, &cacheErr) {
					warnColor.Fprintf(out, "No image available: %v\n", err)
					return nil
				}
				return err
			}

			bounds := art.Image.Bounds()
			fmt.Fprintf(out, "%s (%s, %dx%d)\n", art.Path, art.Format, bounds.Dx(), bounds.Dy())
			return nil
		},
	}

	cmd.Flags().BoolVar(&back, "back", false, "Use the back face")
	return cmd
}
