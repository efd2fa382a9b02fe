package models

// CollectedCard is a Card the user has added to their collection.
type CollectedCard struct {
	Card
	Quantity int `json:"quantity"`
}

// Value is the card's market price multiplied by the quantity held.
func (c CollectedCard) Value() float64 {
	return c.MarketPrice() * float64(c.Quantity)
}

type CollectionStats struct {
	UniqueCards int     `json:"unique_cards"`
	TotalCards  int     `json:"total_cards"`
	TotalValue  float64 `json:"total_value"`
}

// CollectionResponse is returned by GET /api/collection.
type CollectionResponse struct {
	Items []CollectedCard `json:"items"`
	CollectionStats
}

type UpdateCollectionRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

// CollectionUpdateResponse includes the item plus what happened to it
type CollectionUpdateResponse struct {
	Item      CollectedCard `json:"item"`
	Operation string        `json:"operation"` // "added", "incremented", "decremented", "updated", "unchanged"
}
