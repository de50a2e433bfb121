package cards

import "log/slog"

// Catalog is the ordered set of normalized cards. Order is ingestion order
// and identity keys are unique.
type Catalog []Card

// Index maps identity keys to positions in the catalog.
func (c Catalog) Index() map[string]int {
	index := make(map[string]int, len(c))
	for i, card := range c {
		index[card.IdentityKey] = i
	}
	return index
}

// Lookup finds a card by identity key.
func (c Catalog) Lookup(key string) (Card, bool) {
	for _, card := range c {
		if card.IdentityKey == key {
			return card, true
		}
	}
	return Card{}, false
}

// Builder accumulates normalized cards into a Catalog while enforcing
// identity-key uniqueness.
//
// A duplicate key replaces the earlier card's content but keeps the
// earlier card's position, and is logged.
type Builder struct {
	cards      []Card
	index      map[string]int
	source     map[string]string
	duplicates int
	logger     *slog.Logger
}

// NewBuilder creates an empty catalog builder.
func NewBuilder(logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{
		index:  make(map[string]int),
		source: make(map[string]string),
		logger: logger,
	}
}

// Add appends a card from partition, or overwrites an existing card with
// the same identity key.
func (b *Builder) Add(partition string, card Card) {
	if pos, ok := b.index[card.IdentityKey]; ok {
		b.duplicates++
		b.logger.Warn("Duplicate identity key, keeping last record",
			"identity_key", card.IdentityKey,
			"first_partition", b.source[card.IdentityKey],
			"partition", partition)
		b.cards[pos] = card
		b.source[card.IdentityKey] = partition
		return
	}

	b.index[card.IdentityKey] = len(b.cards)
	b.source[card.IdentityKey] = partition
	b.cards = append(b.cards, card)
}

// AddAll adds every card of one partition in order.
func (b *Builder) AddAll(partition string, cards []Card) {
	for _, card := range cards {
		b.Add(partition, card)
	}
}

// Len returns the number of unique cards collected so far.
func (b *Builder) Len() int {
	return len(b.cards)
}

// Duplicates returns how many records overwrote an earlier one.
func (b *Builder) Duplicates() int {
	return b.duplicates
}

// Catalog returns the collected cards.
func (b *Builder) Catalog() Catalog {
	out := make(Catalog, len(b.cards))
	copy(out, b.cards)
	return out
}
