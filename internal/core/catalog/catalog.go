// Package catalog defines the external full-text catalog search collaborator.
// Network I/O stays behind the Searcher interface so the search service can
// be exercised without a live backend.
package catalog

import "context"

// Item is one raw catalog search hit before scoring and classification.
type Item struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Brand           string  `json:"brand,omitempty"`
	Code            string  `json:"code,omitempty"`
	Provider        string  `json:"provider,omitempty"`
	IsGeneric       bool    `json:"is_generic,omitempty"`
	IsRestaurant    bool    `json:"is_restaurant,omitempty"`
	CaloriesPer100g float64 `json:"calories_per_100g"`
	Confidence      float64 `json:"confidence"`
	ImageURL        string  `json:"image_url,omitempty"`
}

// Searcher performs a catalog full-text search for a normalized query. It may
// return an empty list. Callers must not retry on their own; any retry policy
// belongs to the implementation.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]Item, error)
}
