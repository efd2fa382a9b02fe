package services

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/codyseavey/pokecard-lookup/internal/config"
	"github.com/codyseavey/pokecard-lookup/internal/logging"
	"github.com/codyseavey/pokecard-lookup/internal/models"
)

// PokemonTCGService searches the English pokemontcg.io v2 API.
type PokemonTCGService struct {
	up *upstream
}

func NewPokemonTCGService(cfg config.UpstreamConfig, logger *zap.Logger) *PokemonTCGService {
	if cfg.BaseURL == "" {
		cfg.BaseURL = config.DefaultEnglishBaseURL
	}
	return &PokemonTCGService{
		up: newUpstream(SourceEnglish, cfg, logging.OrNop(logger)),
	}
}

type pokemonSearchResponse struct {
	Data       *[]pokemonCard `json:"data"`
	TotalCount int            `json:"totalCount"`
	Page       int            `json:"page"`
	PageSize   int            `json:"pageSize"`
	Count      int            `json:"count"`
}

type pokemonCard struct {
	TCGPlayer *pokemonTCGPrice `json:"tcgplayer"`
	Set       pokemonSet       `json:"set"`
	Images    pokemonImages    `json:"images"`
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Number    string           `json:"number"`
	Rarity    string           `json:"rarity"`
	Artist    string           `json:"artist"`
}

type pokemonSet struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	ReleaseDate  string `json:"releaseDate"`
	PrintedTotal int    `json:"printedTotal"`
}

type pokemonImages struct {
	Small string `json:"small"`
	Large string `json:"large"`
}

type pokemonTCGPrice struct {
	Prices    map[string]pokemonPriceSet `json:"prices"`
	URL       string                     `json:"url"`
	UpdatedAt string                     `json:"updatedAt"`
}

type pokemonPriceSet struct {
	Low       float64 `json:"low"`
	Mid       float64 `json:"mid"`
	High      float64 `json:"high"`
	Market    float64 `json:"market"`
	DirectLow float64 `json:"directLow"`
}

func (s *PokemonTCGService) Source() Source {
	return SourceEnglish
}

// Search runs one page of q against /cards, newest sets first.
func (s *PokemonTCGService) Search(ctx context.Context, q Query) ([]models.Card, error) {
	params := url.Values{}
	params.Set("q", q.English())
	params.Set("pageSize", strconv.Itoa(s.up.cfg.PageSize))
	params.Set("orderBy", "-set.releaseDate")
	reqURL := fmt.Sprintf("%s/cards?%s", strings.TrimRight(s.up.cfg.BaseURL, "/"), params.Encode())

	var searchResp pokemonSearchResponse
	if err := s.up.getJSON(ctx, reqURL, &searchResp); err != nil {
		return nil, err
	}
	if searchResp.Data == nil {
		return nil, &UpstreamError{Source: SourceEnglish, Kind: ErrMalformedResponse, Err: fmt.Errorf("response has no data field")}
	}

	return normalizeAll(*searchResp.Data), nil
}

func (pc pokemonCard) toCard() models.Card {
	card := models.Card{
		ID:     pc.ID,
		Name:   pc.Name,
		Number: pc.Number,
		Rarity: pc.Rarity,
		Artist: pc.Artist,
		Set: models.CardSet{
			Name:         pc.Set.Name,
			ReleaseDate:  pc.Set.ReleaseDate,
			PrintedTotal: pc.Set.PrintedTotal,
		},
		Images:   bothSizes(pc.Images.Small, pc.Images.Large),
		Language: models.LanguageEnglish,
	}

	if pc.TCGPlayer != nil {
		card.TCGPlayer = &models.TCGPlayer{
			URL:       pc.TCGPlayer.URL,
			UpdatedAt: pc.TCGPlayer.UpdatedAt,
		}
		if len(pc.TCGPlayer.Prices) > 0 {
			card.TCGPlayer.Prices = make(map[string]models.PriceTier, len(pc.TCGPlayer.Prices))
			for tier, p := range pc.TCGPlayer.Prices {
				card.TCGPlayer.Prices[tier] = models.PriceTier{
					Low:       p.Low,
					Mid:       p.Mid,
					High:      p.High,
					Market:    p.Market,
					DirectLow: p.DirectLow,
				}
			}
		}
	}

	return card
}
