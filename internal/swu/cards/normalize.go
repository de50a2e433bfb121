package cards

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/ramonehamilton/SWU-Companion/internal/swu/cards/swudb"
)

// ValidationError reports a raw record rejected during normalization.
type ValidationError struct {
	Field string
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required field: %s", e.Field)
}

// Normalize validates a raw API record and converts it into a Card.
// Name, Set and Number must be present and non-blank.
func Normalize(raw swudb.RawCard) (Card, error) {
	required := []struct {
		field string
		value string
	}{
		{"Name", raw.Name},
		{"Set", raw.Set},
		{"Number", raw.Number},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return Card{}, &ValidationError{Field: r.field}
		}
	}

	variant := raw.VariantType
	if variant == "" {
		variant = DefaultVariant
	}

	return Card{
		IdentityKey: IdentityKey(raw.Set, raw.Number, variant),
		Name:        raw.Name,
		Subtitle:    raw.Subtitle,
		SetCode:     raw.Set,
		Number:      raw.Number,
		VariantType: variant,
		CardType:    raw.Type,
		Rarity:      raw.Rarity,
		Unique:      raw.Unique,
		DoubleSided: raw.DoubleSided,
		Artist:      raw.Artist,
		Aspects:     cloneStrings(raw.Aspects),
		Arenas:      cloneStrings(raw.Arenas),
		Traits:      cloneStrings(raw.Traits),
		Keywords:    cloneStrings(raw.Keywords),
		Cost:        raw.Cost.String(),
		Power:       raw.Power.String(),
		Health:      raw.HP.String(),
		FrontArtURI: raw.FrontArtURI(),
		BackArtURI:  raw.BackArtworkURI(),
		FrontText:   raw.FrontText,
		BackText:    raw.BackText,
		EpicAction:  raw.EpicAction,
		MarketPrice: raw.MarketPrice.String(),
	}, nil
}

// NormalizeBatch normalizes one partition. Invalid records are logged and
// skipped; the batch itself never fails. The second return value counts
// the skipped records.
func NormalizeBatch(partition string, raws []swudb.RawCard, logger *slog.Logger) ([]Card, int) {
	if logger == nil {
		logger = slog.Default()
	}

	normalized := make([]Card, 0, len(raws))
	skipped := 0
	for i, raw := range raws {
		card, err := Normalize(raw)
		if err != nil {
			skipped++
			logger.Warn("Skipping invalid card",
				"partition", partition,
				"index", i,
				"error", err)
			continue
		}
		normalized = append(normalized, card)
	}

	return normalized, skipped
}

func cloneStrings(values []string) []string {
	if values == nil {
		return []string{}
	}
	out := make([]string, len(values))
	copy(out, values)
	return out
}
