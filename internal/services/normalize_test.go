package services

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codyseavey/pokecard-lookup/internal/models"
)

func TestNormalize_PokemonCard(t *testing.T) {
	pc := pokemonCard{
		ID:     "base1-4",
		Name:   "Charizard",
		Number: "4",
		Rarity: "Rare Holo",
		Artist: "Mitsuhiro Arita",
		Set:    pokemonSet{ID: "base1", Name: "Base", ReleaseDate: "1999/01/09", PrintedTotal: 102},
		Images: pokemonImages{Small: "https://img/4.png"},
		TCGPlayer: &pokemonTCGPrice{
			URL:    "https://prices/4",
			Prices: map[string]pokemonPriceSet{"holofoil": {Market: 350.5, Low: 200}},
		},
	}

	want := models.Card{
		ID:       "base1-4",
		Name:     "Charizard",
		Number:   "4",
		Rarity:   "Rare Holo",
		Artist:   "Mitsuhiro Arita",
		Set:      models.CardSet{Name: "Base", ReleaseDate: "1999/01/09", PrintedTotal: 102},
		Images:   models.CardImages{Small: "https://img/4.png", Large: "https://img/4.png"},
		Language: models.LanguageEnglish,
		TCGPlayer: &models.TCGPlayer{
			URL:    "https://prices/4",
			Prices: map[string]models.PriceTier{"holofoil": {Market: 350.5, Low: 200}},
		},
	}

	if diff := cmp.Diff(want, normalize(pc)); diff != "" {
		t.Errorf("normalize() mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalize_Fallbacks(t *testing.T) {
	tests := []struct {
		name     string
		card     models.Card
		wantName string
		wantSet  string
	}{
		{"Blank english card", normalize(pokemonCard{ID: "x"}), "Unknown", "Unknown"},
		{"Whitespace name", normalize(pokemonCard{ID: "x", Name: "  ", Set: pokemonSet{Name: "Jungle"}}), "Unknown", "Jungle"},
		{"Japanese without set", normalize(japaneseCard{ID: "1", Name: "ピカチュウ"}), "ピカチュウ", "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantName, tt.card.Name)
			assert.Equal(t, tt.wantSet, tt.card.Set.Name)
		})
	}
}

func TestNormalize_JapaneseCard(t *testing.T) {
	var jc japaneseCard
	require.NoError(t, json.Unmarshal([]byte(`{
		"id": "sv2a-025",
		"name": "Pikachu",
		"printedNumber": " 025/165 ",
		"rarity": "C",
		"imageUrlLarge": "https://img/large.png",
		"setData": {"name": "Pokemon Card 151", "year": 2023, "printedTotal": "165"}
	}`), &jc))

	card := normalize(jc)
	assert.Equal(t, "jpn-sv2a-025", card.ID)
	assert.Equal(t, "025/165", card.Number)
	assert.Equal(t, models.LanguageJapanese, card.Language)
	assert.Equal(t, "2023", card.Set.ReleaseDate)
	assert.Equal(t, 165, card.Set.PrintedTotal)
	assert.Equal(t, "https://img/large.png", card.Images.Small)
	assert.Equal(t, "https://img/large.png", card.Images.Large)
	assert.Nil(t, card.TCGPlayer)
}

func TestJapaneseID(t *testing.T) {
	assert.Equal(t, "jpn-123", japaneseID("123"))

	generated := japaneseID("")
	require.True(t, strings.HasPrefix(generated, "jpn-"))
	_, err := uuid.Parse(strings.TrimPrefix(generated, "jpn-"))
	assert.NoError(t, err, "missing ids get a random uuid")
	assert.NotEqual(t, generated, japaneseID(""))
}

func TestFlexInt_NonNumeric(t *testing.T) {
	var set japaneseSet
	require.NoError(t, json.Unmarshal([]byte(`{"name":"Promo","year":null,"printedTotal":"n/a"}`), &set))
	assert.Equal(t, flexString(""), set.Year)
	assert.Equal(t, flexInt(0), set.PrintedTotal)
}

func TestNormalizeAll_PreservesOrder(t *testing.T) {
	cards := normalizeAll([]pokemonCard{{ID: "a", Name: "A"}, {ID: "b", Name: "B"}, {ID: "c", Name: "C"}})
	ids := make([]string, 0, len(cards))
	for _, c := range cards {
		ids = append(ids, c.ID)
	}
	assert.Equal(t, []string{"a", "b", "c"}, ids)
}
