package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/codyseavey/pokecard-lookup/internal/facets"
	"github.com/codyseavey/pokecard-lookup/internal/logging"
	"github.com/codyseavey/pokecard-lookup/internal/models"
	"github.com/codyseavey/pokecard-lookup/internal/services"
)

// Searcher runs a card search across the configured sources.
type Searcher interface {
	Search(ctx context.Context, req services.SearchRequest) ([]models.Card, error)
}

type CardHandler struct {
	searcher Searcher
	logger   *zap.Logger
}

func NewCardHandler(searcher Searcher, logger *zap.Logger) *CardHandler {
	return &CardHandler{
		searcher: searcher,
		logger:   logging.OrNop(logger),
	}
}

// facetParams maps query parameters onto the facet they filter.
var facetParams = map[string]facets.Facet{
	"languages": facets.Language,
	"sets":      facets.Set,
	"rarities":  facets.Rarity,
	"artists":   facets.Artist,
}

// SearchCards handles GET /api/pokemon.
func (h *CardHandler) SearchCards(c *gin.Context) {
	query := c.Query("q")

	scope, ok := models.ParseScope(c.Query("language"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "language parameter must be 'en', 'jpn' or 'all'"})
		return
	}
	field, ok := models.ParseSearchField(c.Query("type"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "type parameter must be 'name', 'set' or 'artist'"})
		return
	}

	req := services.SearchRequest{
		Term:  query,
		Field: field,
		Scope: scope,
	}
	for param, facet := range facetParams {
		values := splitList(c.Query(param))
		if facet == facets.Language {
			for i, v := range values {
				values[i] = string(models.NormalizeLanguage(v))
			}
		}
		req.Filters.Select(facet, values...)
	}

	cards, err := h.searcher.Search(c.Request.Context(), req)
	if err != nil {
		c.JSON(services.HTTPStatus(err), gin.H{"error": services.UserMessage(err)})
		return
	}
	if cards == nil {
		cards = []models.Card{}
	}

	c.JSON(http.StatusOK, models.SearchResponse{Data: cards})
}

// splitList parses a comma separated parameter, dropping blank entries.
func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var out []string
	for _, v := range strings.Split(raw, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
