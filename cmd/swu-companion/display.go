package main

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/ramonehamilton/SWU-Companion/internal/swu/cards"
	"github.com/ramonehamilton/SWU-Companion/internal/swu/cards/fuzzy"
	"github.com/ramonehamilton/SWU-Companion/internal/swu/cards/query"
	"github.com/ramonehamilton/SWU-Companion/internal/swu/decks"
)

var (
	headerColor  = color.New(color.FgCyan, color.Bold)
	successColor = color.New(color.FgGreen)
	warnColor    = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed, color.Bold)
	dimColor     = color.New(color.Faint)
)

func displayHeader(w io.Writer, title string) {
	headerColor.Fprintln(w, title)
	headerColor.Fprintln(w, strings.Repeat("=", len(title)))
}

// displayMatches prints search results as a table.
func displayMatches(w io.Writer, matches []query.Match, collection cards.Collection, limit int) {
	if len(matches) == 0 {
		fmt.Fprintln(w, "No cards found.")
		return
	}

	shown := matches
	if limit > 0 && len(shown) > limit {
		shown = shown[:limit]
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SCORE\tOWNED\tKEY\tNAME\tTYPE\tASPECTS\tARENAS")
	for _, m := range shown {
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%s\t%s\t%s\n",
			m.Score,
			collection.Quantity(m.Card.IdentityKey),
			m.Card.IdentityKey,
			m.Card.DisplayName(),
			m.Card.CardType,
			strings.Join(m.Card.Aspects, ", "),
			strings.Join(m.Card.Arenas, ", "))
	}
	_ = tw.Flush()

	if len(shown) < len(matches) {
		dimColor.Fprintf(w, "... and %d more cards\n", len(matches)-len(shown))
	}
}

// displaySuggestions prints close card names when a lookup found nothing.
func displaySuggestions(w io.Writer, text string, catalog cards.Catalog) {
	names := make([]string, len(catalog))
	for i, c := range catalog {
		names[i] = c.Name
	}

	opts := fuzzy.DefaultSearchOptions()
	results := fuzzy.Search(text, names, opts)
	if len(results) == 0 {
		return
	}

	warnColor.Fprintln(w, "Did you mean:")
	seen := make(map[string]bool)
	for _, r := range results {
		card := catalog[r.Index]
		if seen[card.IdentityKey] {
			continue
		}
		seen[card.IdentityKey] = true
		fmt.Fprintf(w, "  %s (%s)\n", card.DisplayName(), card.IdentityKey)
	}
}

func displayDeckTree(w io.Writer, listing map[string][]string) {
	if len(listing) == 0 {
		fmt.Fprintln(w, "No deck folders yet. Create one with 'swu-companion deck folder <name>'.")
		return
	}

	folders := make([]string, 0, len(listing))
	for f := range listing {
		folders = append(folders, f)
	}
	sort.Strings(folders)

	for _, folder := range folders {
		headerColor.Fprintf(w, "%s/\n", folder)
		if len(listing[folder]) == 0 {
			dimColor.Fprintln(w, "  (empty)")
		}
		for _, name := range listing[folder] {
			fmt.Fprintf(w, "  %s\n", name)
		}
	}
}

func displayDeck(w io.Writer, deck *decks.Deck, catalog cards.Catalog, collection cards.Collection) {
	displayHeader(w, deck.Name)
	fmt.Fprintf(w, "Status: %s    Cards: %d    Estimated Value: $%.2f\n", deck.Status, deck.Total(), deck.Value(catalog))
	fmt.Fprintf(w, "Leader: %s\n", slotName(deck.Leader, catalog))
	fmt.Fprintf(w, "Base:   %s\n", slotName(deck.Base, catalog))
	fmt.Fprintln(w)

	if len(deck.Cards) > 0 {
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "COUNT\tOWNED\tKEY\tNAME\tTYPE\tASPECTS")
		for _, key := range deck.Keys() {
			card, ok := catalog.Lookup(key)
			name := "Unknown"
			if ok {
				name = card.DisplayName()
			}
			fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%s\t%s\n",
				deck.Count(key), collection.Quantity(key), key, name,
				card.CardType, strings.Join(card.Aspects, ", "))
		}
		_ = tw.Flush()
		fmt.Fprintln(w)

		b := deck.Breakdown(catalog)
		displayCounts(w, "By Type:", b.Types)
		displayCounts(w, "By Aspect:", b.Aspects)
		displayCounts(w, "By Cost:", b.Costs)
	}

	for _, warning := range deck.Check(catalog) {
		warnColor.Fprintf(w, "Warning: %s\n", warning)
	}
}

func displayCounts(w io.Writer, title string, counts map[string]int) {
	if len(counts) == 0 {
		return
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Fprintln(w, title)
	for _, k := range keys {
		fmt.Fprintf(w, "  %s: %d\n", k, counts[k])
	}
	fmt.Fprintln(w)
}

func slotName(key *string, catalog cards.Catalog) string {
	if key == nil {
		return "None"
	}
	if card, ok := catalog.Lookup(*key); ok {
		return card.DisplayName()
	}
	return *key
}
