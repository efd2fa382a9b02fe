package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/codyseavey/pokecard-lookup/internal/config"
	"github.com/codyseavey/pokecard-lookup/internal/logging"
	"github.com/codyseavey/pokecard-lookup/internal/models"
)

// JapaneseTCGService searches the Japanese card database. It is only built
// when a base URL is configured.
type JapaneseTCGService struct {
	up *upstream
}

func NewJapaneseTCGService(cfg config.UpstreamConfig, logger *zap.Logger) *JapaneseTCGService {
	return &JapaneseTCGService{
		up: newUpstream(SourceJapanese, cfg, logging.OrNop(logger)),
	}
}

type japaneseCard struct {
	ID            string       `json:"id"`
	Name          string       `json:"name"`
	PrintedNumber string       `json:"printedNumber"`
	Rarity        string       `json:"rarity"`
	Artist        string       `json:"artist"`
	ImageURL      string       `json:"imageUrl"`
	ImageURLLarge string       `json:"imageUrlLarge"`
	SetData       *japaneseSet `json:"setData"`
}

type japaneseSet struct {
	Name         string     `json:"name"`
	Year         flexString `json:"year"`
	PrintedTotal flexInt    `json:"printedTotal"`
}

// flexString accepts a JSON string or number ("2019" or 2019).
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

// flexInt accepts a JSON number or numeric string; anything else is 0.
type flexInt int

func (f *flexInt) UnmarshalJSON(b []byte) error {
	var s flexString
	if err := s.UnmarshalJSON(b); err != nil {
		return err
	}
	n, err := strconv.Atoi(strings.TrimSpace(string(s)))
	if err != nil {
		*f = 0
		return nil
	}
	*f = flexInt(n)
	return nil
}

func (s *JapaneseTCGService) Source() Source {
	return SourceJapanese
}

// Search calls /cards with a single filter parameter. The response body is
// a bare JSON array of cards.
func (s *JapaneseTCGService) Search(ctx context.Context, q Query) ([]models.Card, error) {
	key, value := q.Japanese()
	params := url.Values{}
	params.Set(key, value)
	params.Set("pagination:itemsPerPage", strconv.Itoa(s.up.cfg.PageSize))
	reqURL := fmt.Sprintf("%s/cards?%s", strings.TrimRight(s.up.cfg.BaseURL, "/"), params.Encode())

	var results []japaneseCard
	if err := s.up.getJSON(ctx, reqURL, &results); err != nil {
		return nil, err
	}
	if results == nil {
		// a literal null body
		return nil, &UpstreamError{Source: SourceJapanese, Kind: ErrMalformedResponse, Err: fmt.Errorf("response is not a card list")}
	}

	return normalizeAll(results), nil
}

func (jc japaneseCard) toCard() models.Card {
	card := models.Card{
		ID:       japaneseID(jc.ID),
		Name:     jc.Name,
		Number:   jc.PrintedNumber,
		Rarity:   jc.Rarity,
		Artist:   jc.Artist,
		Images:   bothSizes(jc.ImageURL, jc.ImageURLLarge),
		Language: models.LanguageJapanese,
	}
	if jc.SetData != nil {
		card.Set = models.CardSet{
			Name:         jc.SetData.Name,
			ReleaseDate:  string(jc.SetData.Year),
			PrintedTotal: int(jc.SetData.PrintedTotal),
		}
	}
	return card
}
