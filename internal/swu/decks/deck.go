// Package decks stores user decks as JSON files grouped into folders.
package decks

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/ramonehamilton/SWU-Companion/internal/swu/cards"
)

// Status is the build stage of a deck.
type Status string

const (
	StatusIdea    Status = "Idea"
	StatusTesting Status = "Testing"
	StatusBuilt   Status = "Built"
)

// Statuses lists every valid status in display order.
var Statuses = []Status{StatusIdea, StatusTesting, StatusBuilt}

// ParseStatus matches a status case-insensitively.
func ParseStatus(text string) (Status, error) {
	for _, s := range Statuses {
		if strings.EqualFold(string(s), strings.TrimSpace(text)) {
			return s, nil
		}
	}
	return "", fmt.Errorf("unknown deck status %q (want Idea, Testing or Built)", text)
}

// Deck is a named card list. Cards maps identity keys to positive counts;
// a key with no copies is never stored.
type Deck struct {
	Name   string         `json:"name"`
	Status Status         `json:"status"`
	Cards  map[string]int `json:"cards"`
	Leader *string        `json:"leader"`
	Base   *string        `json:"base"`
}

// NewDeck returns an empty deck in the Idea stage.
func NewDeck(name string) *Deck {
	return &Deck{
		Name:   name,
		Status: StatusIdea,
		Cards:  make(map[string]int),
	}
}

// Count returns the number of copies of key in the deck.
func (d *Deck) Count(key string) int {
	return d.Cards[key]
}

// SetCount sets the copies of key. Zero removes the card.
func (d *Deck) SetCount(key string, count int) error {
	if count < 0 {
		return fmt.Errorf("%w: %d", cards.ErrInvalidQuantity, count)
	}
	if d.Cards == nil {
		d.Cards = make(map[string]int)
	}
	if count == 0 {
		delete(d.Cards, key)
		return nil
	}
	d.Cards[key] = count
	return nil
}

// AddCard adds one copy of key.
func (d *Deck) AddCard(key string) {
	if d.Cards == nil {
		d.Cards = make(map[string]int)
	}
	d.Cards[key]++
}

// Total returns the number of cards in the deck.
func (d *Deck) Total() int {
	total := 0
	for _, n := range d.Cards {
		total += n
	}
	return total
}

// Keys returns the deck's identity keys sorted.
func (d *Deck) Keys() []string {
	keys := make([]string, 0, len(d.Cards))
	for k := range d.Cards {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SetLeader assigns the leader; an empty key clears it.
func (d *Deck) SetLeader(key string) {
	d.Leader = optional(key)
}

// SetBase assigns the base; an empty key clears it.
func (d *Deck) SetBase(key string) {
	d.Base = optional(key)
}

func optional(key string) *string {
	if key == "" {
		return nil
	}
	return &key
}

// WarningKind classifies a deck problem.
type WarningKind string

const (
	WarnMissingLeader  WarningKind = "missing_leader"
	WarnMissingBase    WarningKind = "missing_base"
	WarnTooManyLeaders WarningKind = "too_many_leaders"
	WarnTooManyBases   WarningKind = "too_many_bases"
	WarnUnknownCard    WarningKind = "unknown_card"
)

// Warning is a display-time problem with a deck. Warnings are derived on
// demand and never stored.
type Warning struct {
	Kind    WarningKind
	Keys    []string
	Message string
}

func (w Warning) String() string {
	return w.Message
}

// Check compares the deck against the catalog.
func (d *Deck) Check(catalog cards.Catalog) []Warning {
	index := catalog.Index()

	var leaders, bases, unknown []string
	for _, key := range d.Keys() {
		pos, ok := index[key]
		if !ok {
			unknown = append(unknown, key)
			continue
		}
		switch catalog[pos].CardType {
		case cards.TypeLeader:
			leaders = append(leaders, key)
		case cards.TypeBase:
			bases = append(bases, key)
		}
	}
	leaders = withSlot(leaders, d.Leader)
	bases = withSlot(bases, d.Base)

	var warnings []Warning
	warnings = append(warnings, slotWarning(leaders, WarnMissingLeader, WarnTooManyLeaders, "Leader", catalog, index)...)
	warnings = append(warnings, slotWarning(bases, WarnMissingBase, WarnTooManyBases, "Base", catalog, index)...)
	if len(unknown) > 0 {
		warnings = append(warnings, Warning{
			Kind:    WarnUnknownCard,
			Keys:    unknown,
			Message: fmt.Sprintf("Unknown cards: %s", strings.Join(unknown, ", ")),
		})
	}
	return warnings
}

func withSlot(keys []string, slot *string) []string {
	if slot == nil || *slot == "" {
		return keys
	}
	for _, k := range keys {
		if k == *slot {
			return keys
		}
	}
	return append(keys, *slot)
}

func slotWarning(keys []string, missing, tooMany WarningKind, label string, catalog cards.Catalog, index map[string]int) []Warning {
	switch {
	case len(keys) == 0:
		return []Warning{{Kind: missing, Message: fmt.Sprintf("%s: None", label)}}
	case len(keys) > 1:
		names := make([]string, len(keys))
		for i, k := range keys {
			names[i] = k
			if pos, ok := index[k]; ok {
				names[i] = catalog[pos].Name
			}
		}
		return []Warning{{
			Kind:    tooMany,
			Keys:    keys,
			Message: fmt.Sprintf("%s: %s [too many %ss]", label, strings.Join(names, ", "), label),
		}}
	}
	return nil
}

// Breakdown counts deck cards per type and per aspect.
type Breakdown struct {
	Types   map[string]int
	Aspects map[string]int
	Costs   map[string]int
}

// Breakdown tallies the deck's known cards. Unknown keys are ignored.
func (d *Deck) Breakdown(catalog cards.Catalog) Breakdown {
	b := Breakdown{
		Types:   make(map[string]int),
		Aspects: make(map[string]int),
		Costs:   make(map[string]int),
	}
	index := catalog.Index()
	for key, n := range d.Cards {
		pos, ok := index[key]
		if !ok {
			continue
		}
		card := catalog[pos]
		if card.CardType != "" {
			b.Types[card.CardType] += n
		}
		for _, aspect := range card.Aspects {
			b.Aspects[aspect] += n
		}
		if card.Cost != "" {
			b.Costs[card.Cost] += n
		}
	}
	return b
}

// Value estimates the deck's price from catalog market prices. Cards
// without a parseable price contribute nothing.
func (d *Deck) Value(catalog cards.Catalog) float64 {
	index := catalog.Index()
	total := 0.0
	for key, n := range d.Cards {
		pos, ok := index[key]
		if !ok || catalog[pos].MarketPrice == "" {
			continue
		}
		price, err := strconv.ParseFloat(strings.TrimPrefix(catalog[pos].MarketPrice, "$"), 64)
		if err != nil {
			continue
		}
		total += price * float64(n)
	}
	return total
}
