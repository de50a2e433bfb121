// Package query filters and ranks the card catalog for display.
package query

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/ramonehamilton/SWU-Companion/internal/swu/cards"
	"github.com/ramonehamilton/SWU-Companion/internal/swu/cards/fuzzy"
)

// DefaultThreshold is the fuzzy score a name must exceed to match.
const DefaultThreshold = 80

// AllValues is the facet value that disables a facet filter.
const AllValues = "All"

// Facets holds the categorical filters. Empty or AllValues means unfiltered.
type Facets struct {
	Set    string
	Type   string
	Aspect string
	Arena  string
}

// Filters describes one catalog query.
type Filters struct {
	Text      string
	OwnedOnly bool
	Facets    Facets
}

// Match is a card that passed the filters with its name score.
type Match struct {
	Card  cards.Card
	Score int
}

// Options configures the query engine.
type Options struct {
	// Threshold is exclusive: a card must score strictly above it
	Threshold int
	// Scorer defaults to fuzzy.PartialRatio
	Scorer fuzzy.Scorer
	Logger *slog.Logger
}

// DefaultOptions returns sensible defaults for queries.
func DefaultOptions() Options {
	return Options{
		Threshold: DefaultThreshold,
		Scorer:    fuzzy.PartialRatioScorer,
	}
}

// Engine composes fuzzy name scoring with facet predicates.
type Engine struct {
	threshold int
	scorer    fuzzy.Scorer
	logger    *slog.Logger
}

// New creates a query engine.
func New(options Options) *Engine {
	if options.Scorer == nil {
		options.Scorer = fuzzy.PartialRatioScorer
	}
	if options.Logger == nil {
		options.Logger = slog.Default()
	}
	return &Engine{
		threshold: options.Threshold,
		scorer:    options.Scorer,
		logger:    options.Logger,
	}
}

// Threshold returns the exclusive score threshold.
func (e *Engine) Threshold() int {
	return e.threshold
}

// Query returns the catalog cards passing filters, best score first.
//
// Steps: owned-only restriction, name scoring, threshold (score must be
// strictly greater), facet predicates, then a stable sort by score so ties
// keep catalog order. An empty text filter scores every card 100 and skips
// the threshold.
func (e *Engine) Query(catalog cards.Catalog, collection cards.Collection, filters Filters) []Match {
	text := strings.ToLower(filters.Text)

	matches := make([]Match, 0, len(catalog))
	for _, card := range catalog {
		if filters.OwnedOnly && !collection.Owns(card.IdentityKey) {
			continue
		}

		score := 100
		if text != "" {
			score = e.scorer.Score(text, strings.ToLower(card.Name))
			if score <= e.threshold {
				continue
			}
		}

		if !matchesFacets(card, filters.Facets) {
			continue
		}

		matches = append(matches, Match{Card: card, Score: score})
	}

	if text != "" {
		sort.SliceStable(matches, func(i, j int) bool {
			return matches[i].Score > matches[j].Score
		})
	}

	e.logger.Debug("Catalog query complete",
		"text", text,
		"owned_only", filters.OwnedOnly,
		"catalog", len(catalog),
		"matches", len(matches))

	return matches
}

// Cards is Query without the scores.
func (e *Engine) Cards(catalog cards.Catalog, collection cards.Collection, filters Filters) []cards.Card {
	matches := e.Query(catalog, collection, filters)
	out := make([]cards.Card, len(matches))
	for i, m := range matches {
		out[i] = m.Card
	}
	return out
}

func matchesFacets(card cards.Card, f Facets) bool {
	if active(f.Set) && card.SetCode != f.Set {
		return false
	}
	if active(f.Type) && card.CardType != f.Type {
		return false
	}
	if active(f.Aspect) && !card.HasAspect(f.Aspect) {
		return false
	}
	if active(f.Arena) && !card.HasArena(f.Arena) {
		return false
	}
	return true
}

func active(value string) bool {
	return value != "" && value != AllValues
}
