package query

import (
	"sort"

	"github.com/ramonehamilton/SWU-Companion/internal/swu/cards"
)

// FacetOptions lists the selectable values of each facet, AllValues first.
type FacetOptions struct {
	Sets    []string
	Types   []string
	Aspects []string
	Arenas  []string
}

// FacetValues collects the distinct facet values present in a catalog.
func FacetValues(catalog cards.Catalog) FacetOptions {
	sets := map[string]struct{}{}
	types := map[string]struct{}{}
	aspects := map[string]struct{}{}
	arenas := map[string]struct{}{}

	for _, card := range catalog {
		add(sets, card.SetCode)
		add(types, card.CardType)
		for _, a := range card.Aspects {
			add(aspects, a)
		}
		for _, a := range card.Arenas {
			add(arenas, a)
		}
	}

	return FacetOptions{
		Sets:    sorted(sets),
		Types:   sorted(types),
		Aspects: sorted(aspects),
		Arenas:  sorted(arenas),
	}
}

func add(set map[string]struct{}, value string) {
	if value != "" {
		set[value] = struct{}{}
	}
}

func sorted(set map[string]struct{}) []string {
	values := make([]string, 0, len(set)+1)
	for v := range set {
		values = append(values, v)
	}
	sort.Strings(values)
	return append([]string{AllValues}, values...)
}

// Tab identifies one of the catalog views the presentation layer keeps
// independent filter state for.
type Tab int

const (
	TabAll Tab = iota
	TabOwned
)

func (t Tab) String() string {
	switch t {
	case TabAll:
		return "All"
	case TabOwned:
		return "Owned"
	default:
		return "Unknown"
	}
}

// TabFilters keeps the filter state of each tab.
type TabFilters struct {
	All   Filters
	Owned Filters
}

// NewTabFilters returns reset filters for every tab.
func NewTabFilters() TabFilters {
	var tf TabFilters
	tf.Reset(TabAll)
	tf.Reset(TabOwned)
	return tf
}

// Get returns a pointer to the filters of tab, or nil for an unknown tab.
func (tf *TabFilters) Get(tab Tab) *Filters {
	switch tab {
	case TabAll:
		return &tf.All
	case TabOwned:
		return &tf.Owned
	default:
		return nil
	}
}

// Reset clears text and facets of tab. The owned tab stays owned-only.
func (tf *TabFilters) Reset(tab Tab) {
	f := tf.Get(tab)
	if f == nil {
		return
	}
	*f = Filters{
		OwnedOnly: tab == TabOwned,
		Facets: Facets{
			Set:    AllValues,
			Type:   AllValues,
			Aspect: AllValues,
			Arena:  AllValues,
		},
	}
}
