// Package collection holds a session-local list of collected cards with
// per-card quantities. A Collection is not safe for concurrent use.
package collection

import (
	"errors"
	"fmt"
	"sort"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/codyseavey/pokecard-lookup/internal/models"
)

// ErrNotFound is returned for operations on an id that is not collected.
var ErrNotFound = errors.New("card not in collection")

// Collection keeps cards in the order they were first added.
type Collection struct {
	cards []models.CollectedCard
}

func New() *Collection {
	return &Collection{cards: []models.CollectedCard{}}
}

func (c *Collection) indexOf(id string) int {
	for i := range c.cards {
		if c.cards[i].ID == id {
			return i
		}
	}
	return -1
}

// Add inserts card with quantity 1, or increments the existing entry with
// the same id. added is true when a new row was created.
func (c *Collection) Add(card models.Card) (item models.CollectedCard, added bool) {
	if i := c.indexOf(card.ID); i >= 0 {
		c.cards[i].Quantity++
		return c.cards[i], false
	}
	item = models.CollectedCard{Card: card, Quantity: 1}
	c.cards = append(c.cards, item)
	return item, true
}

// Increment adds one copy of an already collected card.
func (c *Collection) Increment(id string) (models.CollectedCard, error) {
	i := c.indexOf(id)
	if i < 0 {
		return models.CollectedCard{}, fmt.Errorf("increment %q: %w", id, ErrNotFound)
	}
	c.cards[i].Quantity++
	return c.cards[i], nil
}

// Decrement removes one copy. Quantity never drops below 1; changed is
// false when the decrement was a no-op. Use Remove to drop a card.
func (c *Collection) Decrement(id string) (item models.CollectedCard, changed bool, err error) {
	i := c.indexOf(id)
	if i < 0 {
		return models.CollectedCard{}, false, fmt.Errorf("decrement %q: %w", id, ErrNotFound)
	}
	if c.cards[i].Quantity <= 1 {
		return c.cards[i], false, nil
	}
	c.cards[i].Quantity--
	return c.cards[i], true, nil
}

// SetQuantity sets an absolute quantity. Values below 1 are ignored.
func (c *Collection) SetQuantity(id string, quantity int) (item models.CollectedCard, changed bool, err error) {
	i := c.indexOf(id)
	if i < 0 {
		return models.CollectedCard{}, false, fmt.Errorf("set quantity %q: %w", id, ErrNotFound)
	}
	if quantity < 1 || quantity == c.cards[i].Quantity {
		return c.cards[i], false, nil
	}
	c.cards[i].Quantity = quantity
	return c.cards[i], true, nil
}

// Remove drops a card regardless of its quantity.
func (c *Collection) Remove(id string) error {
	i := c.indexOf(id)
	if i < 0 {
		return fmt.Errorf("remove %q: %w", id, ErrNotFound)
	}
	c.cards = append(c.cards[:i], c.cards[i+1:]...)
	return nil
}

// Get returns the collected entry for id.
func (c *Collection) Get(id string) (models.CollectedCard, bool) {
	if i := c.indexOf(id); i >= 0 {
		return c.cards[i], true
	}
	return models.CollectedCard{}, false
}

// Items returns a copy of the collection in insertion order.
func (c *Collection) Items() []models.CollectedCard {
	items := make([]models.CollectedCard, len(c.cards))
	copy(items, c.cards)
	return items
}

// Len is the number of distinct cards.
func (c *Collection) Len() int {
	return len(c.cards)
}

// Stats totals the collection.
func (c *Collection) Stats() models.CollectionStats {
	stats := models.CollectionStats{UniqueCards: len(c.cards)}
	for _, card := range c.cards {
		stats.TotalCards += card.Quantity
		stats.TotalValue += card.Value()
	}
	return stats
}

// Find returns the collected cards whose names fuzzy match term, best match
// first. An empty term returns everything.
func (c *Collection) Find(term string) []models.CollectedCard {
	if term == "" {
		return c.Items()
	}

	names := make([]string, len(c.cards))
	for i, card := range c.cards {
		names[i] = card.Name
	}

	matches := fuzzy.RankFindNormalizedFold(term, names)
	sort.Stable(matches)

	results := make([]models.CollectedCard, 0, len(matches))
	for _, m := range matches {
		results = append(results, c.cards[m.OriginalIndex])
	}
	return results
}
