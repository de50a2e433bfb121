package cards

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/ramonehamilton/SWU-Companion/internal/swu/cards/swudb"
)

func TestNormalize(t *testing.T) {
	raw := swudb.RawCard{
		Set:       "SOR",
		Number:    "010",
		Name:      "Darth Vader",
		Subtitle:  "Dark Lord of the Sith",
		Type:      "Leader",
		Aspects:   []string{"Aggression", "Villainy"},
		Arenas:    []string{"Ground"},
		Traits:    []string{"Force", "Imperial", "Sith"},
		Cost:      "7",
		Power:     "5",
		HP:        "8",
		ArtURI:    "https://cdn.example/front.png",
		BackArt:   "https://cdn.example/back.png",
		FrontText: "Action [1 resource]: ...",
		BackText:  "On Attack: ...",
	}

	card, err := Normalize(raw)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}

	if card.IdentityKey != "SOR-010-Normal" {
		t.Errorf("Expected identity key SOR-010-Normal, got %q", card.IdentityKey)
	}
	if card.VariantType != DefaultVariant {
		t.Errorf("Expected default variant, got %q", card.VariantType)
	}
	if card.CardType != "Leader" || card.Health != "8" || card.Cost != "7" {
		t.Errorf("Fields not canonicalized: %+v", card)
	}
	if card.FrontArtURI != "https://cdn.example/front.png" || card.BackArtURI != "https://cdn.example/back.png" {
		t.Errorf("Unexpected artwork URIs: %q / %q", card.FrontArtURI, card.BackArtURI)
	}
	if strings.Join(card.Aspects, ",") != "Aggression,Villainy" {
		t.Errorf("Aspects should stay an ordered list, got %v", card.Aspects)
	}
	if strings.Join(card.Traits, ",") != "Force,Imperial,Sith" {
		t.Errorf("Traits should stay an ordered list, got %v", card.Traits)
	}

	// Normalized lists must not alias the raw record
	raw.Aspects[0] = "Heroism"
	if card.Aspects[0] != "Aggression" {
		t.Error("Normalized aspects alias the raw record")
	}
}

func TestNormalize_MissingRequiredFields(t *testing.T) {
	tests := []struct {
		name  string
		raw   swudb.RawCard
		field string
	}{
		{"missing name", swudb.RawCard{Set: "SOR", Number: "001"}, "Name"},
		{"blank name", swudb.RawCard{Name: "  ", Set: "SOR", Number: "001"}, "Name"},
		{"missing set", swudb.RawCard{Name: "Luke", Number: "001"}, "Set"},
		{"missing number", swudb.RawCard{Name: "Luke", Set: "SOR"}, "Number"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize(tt.raw)
			var validationErr *ValidationError
			if !errors.As(err, &validationErr) {
				t.Fatalf("Expected *ValidationError, got %v", err)
			}
			if validationErr.Field != tt.field {
				t.Errorf("Expected field %s, got %s", tt.field, validationErr.Field)
			}
		})
	}
}

func TestNormalize_IdentityKeyDeterminism(t *testing.T) {
	base := swudb.RawCard{Name: "Luke Skywalker", Set: "SOR", Number: "005", VariantType: "Hyperspace"}

	first, err := Normalize(base)
	if err != nil {
		t.Fatal(err)
	}

	// Same (Set, Number, VariantType), different other fields: same key
	other := base
	other.Name = "Luke Skywalker (reprint)"
	other.Cost = "6"
	second, err := Normalize(other)
	if err != nil {
		t.Fatal(err)
	}
	if first.IdentityKey != second.IdentityKey {
		t.Errorf("Expected identical keys, got %q and %q", first.IdentityKey, second.IdentityKey)
	}

	variants := []swudb.RawCard{
		{Name: "Luke Skywalker", Set: "SHD", Number: "005", VariantType: "Hyperspace"},
		{Name: "Luke Skywalker", Set: "SOR", Number: "006", VariantType: "Hyperspace"},
		{Name: "Luke Skywalker", Set: "SOR", Number: "005", VariantType: "Showcase"},
		{Name: "Luke Skywalker", Set: "SOR", Number: "005"},
	}
	seen := map[string]bool{first.IdentityKey: true}
	for _, raw := range variants {
		card, err := Normalize(raw)
		if err != nil {
			t.Fatal(err)
		}
		if seen[card.IdentityKey] {
			t.Errorf("Key %q collides with an earlier variant", card.IdentityKey)
		}
		seen[card.IdentityKey] = true
	}
}

func TestNormalizeBatch_SkipsInvalid(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	raws := []swudb.RawCard{
		{Name: "Darth Vader", Set: "SOR", Number: "001"},
		{Set: "SOR", Number: "002"},
		{Name: "Luke Skywalker", Set: "SOR", Number: "003"},
	}

	cards, skipped := NormalizeBatch("sor", raws, logger)

	if len(cards) != 2 {
		t.Fatalf("Expected 2 cards, got %d", len(cards))
	}
	if skipped != 1 {
		t.Errorf("Expected 1 skipped record, got %d", skipped)
	}
	for _, card := range cards {
		if card.Name == "" {
			t.Error("Invalid record leaked into batch output")
		}
	}

	logged := buf.String()
	if !strings.Contains(logged, "Skipping invalid card") || !strings.Contains(logged, "partition=sor") {
		t.Errorf("Expected a logged skip, got: %s", logged)
	}
}
