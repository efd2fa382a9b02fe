package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codyseavey/pokecard-lookup/internal/models"
	"github.com/codyseavey/pokecard-lookup/internal/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubSource struct {
	source services.Source
	cards  []models.Card
	err    error
}

func (s *stubSource) Source() services.Source { return s.source }

func (s *stubSource) Search(ctx context.Context, q services.Query) ([]models.Card, error) {
	return s.cards, s.err
}

func searchRouter(english, japanese services.CardSource) *gin.Engine {
	h := NewCardHandler(services.NewSearchService(english, japanese, nil), nil)
	router := gin.New()
	router.GET("/api/pokemon", h.SearchCards)
	return router
}

func doGet(t *testing.T, router http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	router.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body["error"]
}

var searchFixture = []models.Card{
	{ID: "base1-58", Name: "Pikachu", Number: "58", Rarity: "Common", Language: models.LanguageEnglish,
		Set: models.CardSet{Name: "Base", ReleaseDate: "1999/01/09"}},
	{ID: "swsh45-25", Name: "Pikachu", Number: "25", Rarity: "Rare Holo", Language: models.LanguageEnglish,
		Set: models.CardSet{Name: "Shining Fates", ReleaseDate: "2021/02/19"}},
}

func TestSearchCards_Success(t *testing.T) {
	en := &stubSource{source: services.SourceEnglish, cards: searchFixture}
	jp := &stubSource{source: services.SourceJapanese, cards: []models.Card{
		{ID: "jpn-1", Name: "Pikachu", Language: models.LanguageJapanese, Set: models.CardSet{Name: "Promo", ReleaseDate: "2023"}},
	}}
	w := doGet(t, searchRouter(en, jp), "/api/pokemon?q=Pikachu")

	require.Equal(t, http.StatusOK, w.Code)
	var resp models.SearchResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 3)
	assert.Equal(t, "jpn-1", resp.Data[0].ID)
	assert.Equal(t, "swsh45-25", resp.Data[1].ID)
	assert.Equal(t, "base1-58", resp.Data[2].ID)
}

func TestSearchCards_EmptyResultIsArray(t *testing.T) {
	en := &stubSource{source: services.SourceEnglish}
	w := doGet(t, searchRouter(en, nil), "/api/pokemon?q=nothing")

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"data":[]}`, w.Body.String())
}

func TestSearchCards_Validation(t *testing.T) {
	tests := []struct {
		name    string
		target  string
		wantMsg string
	}{
		{"Missing q", "/api/pokemon", "Search query is required"},
		{"Blank q", "/api/pokemon?q=%20%20", "Search query is required"},
		{"Bad language", "/api/pokemon?q=Pikachu&language=fr", "language parameter must be 'en', 'jpn' or 'all'"},
		{"Bad type", "/api/pokemon?q=Pikachu&type=hp", "type parameter must be 'name', 'set' or 'artist'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			en := &stubSource{source: services.SourceEnglish, cards: searchFixture}
			w := doGet(t, searchRouter(en, nil), tt.target)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.wantMsg, decodeError(t, w))
		})
	}
}

func TestSearchCards_UpstreamErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"Auth", &services.UpstreamError{Source: services.SourceEnglish, StatusCode: 401, Kind: services.ErrUpstreamAuth},
			http.StatusUnauthorized, "API key is invalid or missing"},
		{"Rate limit", &services.UpstreamError{Source: services.SourceEnglish, StatusCode: 429, Kind: services.ErrUpstreamRateLimited},
			http.StatusTooManyRequests, "Rate limit exceeded. Please try again later."},
		{"Upstream 500", &services.UpstreamError{Source: services.SourceEnglish, StatusCode: 500, Kind: services.ErrUpstreamUnavailable},
			http.StatusInternalServerError, "Failed to fetch cards from Pokemon TCG API"},
		{"Network", &services.UpstreamError{Source: services.SourceEnglish, Kind: services.ErrUpstreamUnavailable},
			http.StatusServiceUnavailable, "Failed to fetch cards from Pokemon TCG API"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			en := &stubSource{source: services.SourceEnglish, err: tt.err}
			w := doGet(t, searchRouter(en, nil), "/api/pokemon?q=Pikachu&language=en")

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantMsg, decodeError(t, w))
		})
	}
}

func TestSearchCards_JapaneseNotConfigured(t *testing.T) {
	en := &stubSource{source: services.SourceEnglish, cards: searchFixture}
	w := doGet(t, searchRouter(en, nil), "/api/pokemon?q=Pikachu&language=jpn")

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "Japanese card search is not available", decodeError(t, w))
}

func TestSearchCards_FacetFilters(t *testing.T) {
	tests := []struct {
		name    string
		target  string
		wantIDs []string
	}{
		{"Rarity", "/api/pokemon?q=Pikachu&rarities=Common", []string{"base1-58"}},
		{"Sets OR", "/api/pokemon?q=Pikachu&sets=Base,%20Shining%20Fates", []string{"swsh45-25", "base1-58"}},
		{"Language alias", "/api/pokemon?q=Pikachu&languages=japanese", []string{}},
		{"AND across facets", "/api/pokemon?q=Pikachu&sets=Base&rarities=Rare%20Holo", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			en := &stubSource{source: services.SourceEnglish, cards: searchFixture}
			w := doGet(t, searchRouter(en, nil), tt.target)
			require.Equal(t, http.StatusOK, w.Code)

			var resp models.SearchResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			ids := make([]string, 0, len(resp.Data))
			for _, c := range resp.Data {
				ids = append(ids, c.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestSplitList(t *testing.T) {
	assert.Nil(t, splitList(""))
	assert.Nil(t, splitList("  "))
	assert.Equal(t, []string{"a", "b"}, splitList(" a, ,b,"))
}
