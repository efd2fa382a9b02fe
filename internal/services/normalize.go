package services

import (
	"strings"

	"github.com/google/uuid"

	"github.com/codyseavey/pokecard-lookup/internal/models"
)

// unknownValue fills required display fields the upstream left blank.
const unknownValue = "Unknown"

// japaneseIDPrefix keeps Japanese ids out of the English id space.
const japaneseIDPrefix = "jpn-"

// sourceCard is a record in one upstream's own shape. Implementations are
// the per-source wire types; nothing outside this package sees them.
type sourceCard interface {
	pokemonCard | japaneseCard
	toCard() models.Card
}

func normalizeAll[T sourceCard](in []T) []models.Card {
	cards := make([]models.Card, 0, len(in))
	for _, sc := range in {
		cards = append(cards, normalize(sc))
	}
	return cards
}

// normalize converts a source record and fills in fallbacks so render paths
// never see a blank name or set.
func normalize[T sourceCard](sc T) models.Card {
	card := sc.toCard()
	card.Name = orUnknown(card.Name)
	card.Set.Name = orUnknown(card.Set.Name)
	card.Number = strings.TrimSpace(card.Number)
	return card
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return unknownValue
	}
	return s
}

// bothSizes duplicates whichever image URL is present into the missing slot.
func bothSizes(small, large string) models.CardImages {
	if small == "" {
		small = large
	}
	if large == "" {
		large = small
	}
	return models.CardImages{Small: small, Large: large}
}

func japaneseID(id string) string {
	id = strings.TrimSpace(id)
	if id == "" {
		id = uuid.NewString()
	}
	return japaneseIDPrefix + id
}
