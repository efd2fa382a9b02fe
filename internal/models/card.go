package models

import (
	"regexp"
)

// Card is the canonical card shape every upstream source is normalized into.
// JSON field names follow the pokemontcg.io v2 card resource so frontends
// written against that API can consume the proxy unchanged.
type Card struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Number    string     `json:"number"`
	Rarity    string     `json:"rarity,omitempty"`
	Artist    string     `json:"artist,omitempty"`
	Set       CardSet    `json:"set"`
	Images    CardImages `json:"images"`
	Language  Language   `json:"language"`
	TCGPlayer *TCGPlayer `json:"tcgplayer,omitempty"`
}

type CardSet struct {
	Name         string `json:"name"`
	ReleaseDate  string `json:"releaseDate,omitempty"`
	PrintedTotal int    `json:"printedTotal,omitempty"`
}

type CardImages struct {
	Small string `json:"small"`
	Large string `json:"large"`
}

// TCGPlayer holds market data keyed by pricing tier ("normal", "holofoil",
// "reverseHolofoil", "1stEditionHolofoil", ...).
type TCGPlayer struct {
	URL       string               `json:"url,omitempty"`
	UpdatedAt string               `json:"updatedAt,omitempty"`
	Prices    map[string]PriceTier `json:"prices,omitempty"`
}

type PriceTier struct {
	Low       float64 `json:"low,omitempty"`
	Mid       float64 `json:"mid,omitempty"`
	High      float64 `json:"high,omitempty"`
	Market    float64 `json:"market,omitempty"`
	DirectLow float64 `json:"directLow,omitempty"`
}

// Price tiers consulted, in order, when valuing a card.
var marketPriceTiers = []string{"normal", "holofoil", "reverseHolofoil"}

// MarketPrice returns the first non-zero market price among the normal,
// holofoil and reverse holofoil tiers, or 0 when none is known.
func (c Card) MarketPrice() float64 {
	if c.TCGPlayer == nil || c.TCGPlayer.Prices == nil {
		return 0
	}
	for _, tier := range marketPriceTiers {
		if p, ok := c.TCGPlayer.Prices[tier]; ok && p.Market > 0 {
			return p.Market
		}
	}
	return 0
}

var yearPrefix = regexp.MustCompile(`^\d{4}`)

// ReleaseYear returns the four digit year the card's set was released, or
// "Unknown".
func (c Card) ReleaseYear() string {
	if y := yearPrefix.FindString(c.Set.ReleaseDate); y != "" {
		return y
	}
	return "Unknown"
}

// SearchResponse is the body returned by GET /api/pokemon.
type SearchResponse struct {
	Data []Card `json:"data"`
}
