package cards

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestBuilder_PreservesOrder(t *testing.T) {
	b := NewBuilder(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
	b.Add("sor", Card{IdentityKey: "SOR-001-Normal", Name: "A"})
	b.Add("sor", Card{IdentityKey: "SOR-002-Normal", Name: "B"})
	b.Add("shd", Card{IdentityKey: "SHD-001-Normal", Name: "C"})

	catalog := b.Catalog()
	if len(catalog) != 3 {
		t.Fatalf("Expected 3 cards, got %d", len(catalog))
	}
	for i, name := range []string{"A", "B", "C"} {
		if catalog[i].Name != name {
			t.Errorf("Position %d: expected %s, got %s", i, name, catalog[i].Name)
		}
	}
}

func TestBuilder_DuplicateOverwritesInPlace(t *testing.T) {
	var buf bytes.Buffer
	b := NewBuilder(slog.New(slog.NewTextHandler(&buf, nil)))

	b.Add("sor", Card{IdentityKey: "SOR-001-Normal", Name: "Old"})
	b.Add("sor", Card{IdentityKey: "SOR-002-Normal", Name: "Other"})
	b.Add("shd", Card{IdentityKey: "SOR-001-Normal", Name: "New"})

	catalog := b.Catalog()
	if len(catalog) != 2 {
		t.Fatalf("Expected 2 unique cards, got %d", len(catalog))
	}
	if catalog[0].Name != "New" {
		t.Errorf("Expected last record to win at first position, got %q", catalog[0].Name)
	}
	if b.Duplicates() != 1 {
		t.Errorf("Expected 1 duplicate, got %d", b.Duplicates())
	}
	if !strings.Contains(buf.String(), "identity_key=SOR-001-Normal") {
		t.Errorf("Expected duplicate to be logged, got: %s", buf.String())
	}
}

func TestCatalog_Lookup(t *testing.T) {
	catalog := Catalog{
		{IdentityKey: "SOR-001-Normal", Name: "A"},
		{IdentityKey: "SOR-002-Normal", Name: "B"},
	}

	card, ok := catalog.Lookup("SOR-002-Normal")
	if !ok || card.Name != "B" {
		t.Errorf("Lookup failed: %+v, %v", card, ok)
	}
	if _, ok := catalog.Lookup("missing"); ok {
		t.Error("Expected lookup miss")
	}

	index := catalog.Index()
	if index["SOR-002-Normal"] != 1 {
		t.Errorf("Expected index 1, got %d", index["SOR-002-Normal"])
	}
}

func TestCard_Helpers(t *testing.T) {
	card := Card{
		Name:        "Darth Vader",
		Subtitle:    "Dark Lord of the Sith",
		SetCode:     "SOR",
		Aspects:     []string{"Aggression", "Villainy"},
		Arenas:      []string{"Ground"},
		FrontArtURI: "front",
		BackArtURI:  "back",
	}

	if !card.HasAspect("Villainy") || card.HasAspect("Heroism") {
		t.Error("HasAspect is wrong")
	}
	if !card.HasArena("Ground") || card.HasArena("Space") {
		t.Error("HasArena is wrong")
	}
	if card.ArtURI(Front) != "front" || card.ArtURI(Back) != "back" {
		t.Error("ArtURI is wrong")
	}
	if card.DisplayName() != "Darth Vader, Dark Lord of the Sith" {
		t.Errorf("Unexpected display name %q", card.DisplayName())
	}
	if card.String() != "Darth Vader (SOR)" {
		t.Errorf("Unexpected string %q", card.String())
	}
	if IdentityKey("SOR", "001", "") != "SOR-001-Normal" {
		t.Error("Empty variant should default to Normal")
	}
}
