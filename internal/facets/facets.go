// Package facets filters result sets by language, set, rarity and artist.
package facets

import (
	"github.com/codyseavey/pokecard-lookup/internal/models"
)

type Facet string

const (
	Language Facet = "language"
	Set      Facet = "set"
	Rarity   Facet = "rarity"
	Artist   Facet = "artist"
)

// All returns the facets in display order.
func All() []Facet {
	return []Facet{Language, Set, Rarity, Artist}
}

// Label is the panel heading for a facet.
func (f Facet) Label() string {
	switch f {
	case Language:
		return "Languages"
	case Set:
		return "Sets"
	case Rarity:
		return "Rarities"
	case Artist:
		return "Artists"
	}
	return string(f)
}

// valueOf returns the card's value for f. ok is false when the card has no
// value for the facet (no rarity, no artist).
func valueOf(card models.Card, f Facet) (string, bool) {
	switch f {
	case Language:
		if card.Language == "" {
			return string(models.LanguageEnglish), true
		}
		return string(card.Language), true
	case Set:
		return card.Set.Name, true
	case Rarity:
		return card.Rarity, card.Rarity != ""
	case Artist:
		return card.Artist, card.Artist != ""
	}
	return "", false
}

// Values lists the distinct values of each facet in first-seen order.
type Values map[Facet][]string

// Collect gathers the distinct facet values present in cards.
func Collect(cards []models.Card) Values {
	values := make(Values, len(All()))
	seen := make(map[Facet]map[string]struct{}, len(All()))
	for _, f := range All() {
		seen[f] = map[string]struct{}{}
		values[f] = []string{}
	}

	for _, card := range cards {
		for _, f := range All() {
			v, ok := valueOf(card, f)
			if !ok {
				continue
			}
			if _, dup := seen[f][v]; dup {
				continue
			}
			seen[f][v] = struct{}{}
			values[f] = append(values[f], v)
		}
	}
	return values
}

// Selection is the set of checked values per facet. The zero value is an
// empty selection and is ready to use.
type Selection struct {
	selected map[Facet]map[string]struct{}
}

// Select adds values to facet f.
func (s *Selection) Select(f Facet, values ...string) {
	if len(values) == 0 {
		return
	}
	if s.selected == nil {
		s.selected = map[Facet]map[string]struct{}{}
	}
	if s.selected[f] == nil {
		s.selected[f] = map[string]struct{}{}
	}
	for _, v := range values {
		s.selected[f][v] = struct{}{}
	}
}

// Toggle flips value v of facet f.
func (s *Selection) Toggle(f Facet, v string) {
	if s.IsSelected(f, v) {
		delete(s.selected[f], v)
		if len(s.selected[f]) == 0 {
			delete(s.selected, f)
		}
		return
	}
	s.Select(f, v)
}

func (s Selection) IsSelected(f Facet, v string) bool {
	_, ok := s.selected[f][v]
	return ok
}

// Clear removes every selection.
func (s *Selection) Clear() {
	s.selected = nil
}

// Active reports whether any facet constrains the result set.
func (s Selection) Active() bool {
	for _, vals := range s.selected {
		if len(vals) > 0 {
			return true
		}
	}
	return false
}

// Apply keeps the cards that match every constrained facet. Within one facet
// any selected value matches. Cards lacking a constrained attribute are
// dropped. Order is preserved.
func (s Selection) Apply(cards []models.Card) []models.Card {
	if !s.Active() {
		return cards
	}

	filtered := make([]models.Card, 0, len(cards))
	for _, card := range cards {
		if s.matches(card) {
			filtered = append(filtered, card)
		}
	}
	return filtered
}

func (s Selection) matches(card models.Card) bool {
	for f, vals := range s.selected {
		if len(vals) == 0 {
			continue
		}
		v, ok := valueOf(card, f)
		if !ok {
			return false
		}
		if _, hit := vals[v]; !hit {
			return false
		}
	}
	return true
}
