// Package cards holds the normalized Star Wars Unlimited card catalog:
// cards, their identity keys, and the user's owned-quantity collection.
package cards

import "fmt"

// DefaultVariant is used when a record carries no VariantType.
const DefaultVariant = "Normal"

// Card types with deck-building significance.
const (
	TypeLeader = "Leader"
	TypeBase   = "Base"
)

// Card represents one normalized catalog entry. Cards are treated as
// immutable once normalized.
type Card struct {
	// Deterministic primary key: {set}-{number}-{variant}
	IdentityKey string `json:"identity_key"`

	// Basic card information
	Name        string `json:"name"`
	Subtitle    string `json:"subtitle"`
	SetCode     string `json:"set_code"`
	Number      string `json:"number"`
	VariantType string `json:"variant_type"`
	CardType    string `json:"card_type"`
	Rarity      string `json:"rarity"`
	Unique      bool   `json:"unique"`
	DoubleSided bool   `json:"double_sided"`
	Artist      string `json:"artist"`

	// Facets, in upstream order
	Aspects  []string `json:"aspects"`
	Arenas   []string `json:"arenas"`
	Traits   []string `json:"traits"`
	Keywords []string `json:"keywords"`

	// Stats (kept as text: "-" and blanks are legal upstream)
	Cost   string `json:"cost"`
	Power  string `json:"power"`
	Health string `json:"health"`

	// Text and imagery
	FrontArtURI string `json:"front_art_uri"`
	BackArtURI  string `json:"back_art_uri,omitempty"`
	FrontText   string `json:"front_text"`
	BackText    string `json:"back_text,omitempty"`
	EpicAction  string `json:"epic_action,omitempty"`

	MarketPrice string `json:"market_price,omitempty"`
}

// Side selects the face of a card.
type Side string

const (
	Front Side = "front"
	Back  Side = "back"
)

// Valid reports whether s is a known side.
func (s Side) Valid() bool {
	return s == Front || s == Back
}

// IdentityKey derives the catalog primary key from set, number and variant.
func IdentityKey(set, number, variant string) string {
	if variant == "" {
		variant = DefaultVariant
	}
	return fmt.Sprintf("%s-%s-%s", set, number, variant)
}

// ArtURI returns the artwork URI for the requested side.
func (c Card) ArtURI(side Side) string {
	if side == Back {
		return c.BackArtURI
	}
	return c.FrontArtURI
}

// HasAspect reports whether aspect is one of the card's aspects.
func (c Card) HasAspect(aspect string) bool {
	return contains(c.Aspects, aspect)
}

// HasArena reports whether arena is one of the card's arenas.
func (c Card) HasArena(arena string) bool {
	return contains(c.Arenas, arena)
}

// String returns "Name (SET)".
func (c Card) String() string {
	return fmt.Sprintf("%s (%s)", c.Name, c.SetCode)
}

// DisplayName joins name and subtitle the way the card prints them.
func (c Card) DisplayName() string {
	if c.Subtitle == "" {
		return c.Name
	}
	return c.Name + ", " + c.Subtitle
}

func contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}
