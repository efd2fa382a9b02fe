package services

import (
	"sort"
	"strings"
	"time"

	"github.com/codyseavey/pokecard-lookup/internal/models"
)

// Cards with no usable release date sort as if released at the epoch.
var epoch = time.Unix(0, 0).UTC()

var releaseDateLayouts = []string{
	"2006/01/02",
	"2006-01-02",
	"2006/01",
	"2006-01",
	"2006",
	time.RFC3339,
}

// MergeAndSort concatenates result sets in the order given and sorts the
// result by set release date, newest first. Equal dates keep their input
// order. Duplicates across sources are kept.
func MergeAndSort(resultSets ...[]models.Card) []models.Card {
	total := 0
	for _, rs := range resultSets {
		total += len(rs)
	}

	merged := make([]models.Card, 0, total)
	for _, rs := range resultSets {
		merged = append(merged, rs...)
	}

	released := make([]time.Time, len(merged))
	for i := range merged {
		released[i] = parseReleaseDate(merged[i].Set.ReleaseDate)
	}

	// sort an index so the parsed dates travel with their cards
	idx := make([]int, len(merged))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return released[idx[a]].After(released[idx[b]])
	})

	sorted := make([]models.Card, len(merged))
	for i, j := range idx {
		sorted[i] = merged[j]
	}
	return sorted
}

func parseReleaseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return epoch
	}
	for _, layout := range releaseDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return epoch
}
