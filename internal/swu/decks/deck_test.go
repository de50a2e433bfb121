package decks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramonehamilton/SWU-Companion/internal/swu/cards"
)

func TestDeck_SetCountZeroRemoves(t *testing.T) {
	deck := NewDeck("Test")

	require.NoError(t, deck.SetCount("SOR-001-Normal", 2))
	require.NoError(t, deck.SetCount("SOR-001-Normal", 0))
	_, present := deck.Cards["SOR-001-Normal"]
	assert.False(t, present)

	// Re-adding starts a fresh count
	deck.AddCard("SOR-001-Normal")
	assert.Equal(t, 1, deck.Count("SOR-001-Normal"))

	assert.ErrorIs(t, deck.SetCount("SOR-001-Normal", -1), cards.ErrInvalidQuantity)
}

func TestDeck_Total(t *testing.T) {
	deck := NewDeck("Test")
	deck.AddCard("A")
	deck.AddCard("A")
	require.NoError(t, deck.SetCount("B", 3))
	assert.Equal(t, 5, deck.Total())
	assert.Equal(t, []string{"A", "B"}, deck.Keys())
}

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus("testing")
	require.NoError(t, err)
	assert.Equal(t, StatusTesting, s)

	_, err = ParseStatus("done")
	assert.Error(t, err)
}

func deckCatalog() cards.Catalog {
	return cards.Catalog{
		{IdentityKey: "SOR-010-Normal", Name: "Darth Vader", CardType: cards.TypeLeader, Aspects: []string{"Aggression", "Villainy"}},
		{IdentityKey: "SOR-005-Normal", Name: "Luke Skywalker", CardType: cards.TypeLeader, Aspects: []string{"Vigilance", "Heroism"}},
		{IdentityKey: "SOR-020-Normal", Name: "Dagobah Swamp", CardType: cards.TypeBase},
		{IdentityKey: "SOR-050-Normal", Name: "TIE Fighter", CardType: "Unit", Cost: "1", Aspects: []string{"Villainy"}, MarketPrice: "0.25"},
		{IdentityKey: "SOR-060-Normal", Name: "Vader's Lightsaber", CardType: "Upgrade", Cost: "2", MarketPrice: "$1.50"},
	}
}

func kinds(warnings []Warning) []WarningKind {
	out := make([]WarningKind, len(warnings))
	for i, w := range warnings {
		out[i] = w.Kind
	}
	return out
}

func TestDeck_Check(t *testing.T) {
	catalog := deckCatalog()

	t.Run("empty deck", func(t *testing.T) {
		assert.Equal(t, []WarningKind{WarnMissingLeader, WarnMissingBase}, kinds(NewDeck("x").Check(catalog)))
	})

	t.Run("complete deck", func(t *testing.T) {
		deck := NewDeck("x")
		deck.AddCard("SOR-010-Normal")
		deck.AddCard("SOR-020-Normal")
		deck.AddCard("SOR-050-Normal")
		assert.Empty(t, deck.Check(catalog))
	})

	t.Run("leader and base slots count", func(t *testing.T) {
		deck := NewDeck("x")
		deck.SetLeader("SOR-010-Normal")
		deck.SetBase("SOR-020-Normal")
		assert.Empty(t, deck.Check(catalog))
	})

	t.Run("too many leaders", func(t *testing.T) {
		deck := NewDeck("x")
		deck.AddCard("SOR-010-Normal")
		deck.AddCard("SOR-005-Normal")
		deck.AddCard("SOR-020-Normal")
		warnings := deck.Check(catalog)
		require.Equal(t, []WarningKind{WarnTooManyLeaders}, kinds(warnings))
		assert.Equal(t, []string{"SOR-005-Normal", "SOR-010-Normal"}, warnings[0].Keys)
		assert.Contains(t, warnings[0].Message, "Luke Skywalker, Darth Vader")
	})

	t.Run("unknown card", func(t *testing.T) {
		deck := NewDeck("x")
		deck.SetLeader("SOR-010-Normal")
		deck.SetBase("SOR-020-Normal")
		deck.AddCard("ZZZ-999-Normal")
		warnings := deck.Check(catalog)
		require.Equal(t, []WarningKind{WarnUnknownCard}, kinds(warnings))
		assert.Equal(t, []string{"ZZZ-999-Normal"}, warnings[0].Keys)
	})
}

func TestDeck_BreakdownAndValue(t *testing.T) {
	deck := NewDeck("x")
	require.NoError(t, deck.SetCount("SOR-050-Normal", 3))
	require.NoError(t, deck.SetCount("SOR-060-Normal", 2))
	deck.AddCard("SOR-010-Normal")
	deck.AddCard("UNKNOWN")

	b := deck.Breakdown(deckCatalog())
	assert.Equal(t, map[string]int{"Unit": 3, "Upgrade": 2, "Leader": 1}, b.Types)
	assert.Equal(t, map[string]int{"Villainy": 4, "Aggression": 1}, b.Aspects)
	assert.Equal(t, map[string]int{"1": 3, "2": 2}, b.Costs)

	assert.InDelta(t, 3.75, deck.Value(deckCatalog()), 0.0001)
}
