package search

import (
	"testing"

	"food-resolver/internal/core/catalog"
	"food-resolver/internal/pkg/common"

	"github.com/stretchr/testify/assert"
)

func TestClassifyKind(t *testing.T) {
	tests := []struct {
		name string
		item catalog.Item
		want common.CandidateKind
	}{
		{"brand field", catalog.Item{Brand: "DiGiorno"}, common.KindBrand},
		{"long barcode implies brand", catalog.Item{Code: "01234567"}, common.KindBrand},
		{"brand beats generic marker", catalog.Item{Brand: "Oscar Mayer", IsGeneric: true}, common.KindBrand},
		{"restaurant", catalog.Item{IsRestaurant: true}, common.KindRestaurant},
		{"generic provider", catalog.Item{Provider: "generic"}, common.KindGeneric},
		{"generic flag", catalog.Item{IsGeneric: true}, common.KindGeneric},
		{"no evidence stays unknown", catalog.Item{Name: "Cheese Pizza"}, common.KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classifyKind(tt.item))
		})
	}
}

func TestScoreCandidateBrandPenalty(t *testing.T) {
	item := catalog.Item{Name: "hawaiian pizza"}

	genericScore, genericConf, _ := scoreCandidate("hawaiian pizza", item, common.Facets{}, common.KindGeneric)
	brandScore, brandConf, _ := scoreCandidate("hawaiian pizza", item, common.Facets{}, common.KindBrand)
	unknownScore, _, _ := scoreCandidate("hawaiian pizza", item, common.Facets{}, common.KindUnknown)

	assert.Greater(t, genericScore, brandScore)
	assert.Greater(t, genericConf, brandConf)
	assert.Equal(t, brandScore, unknownScore, "ambiguous results score like brands")
}

func TestScoreCandidateConfidenceBounded(t *testing.T) {
	item := catalog.Item{Name: "hawaiian pizza"}
	facets := common.Facets{Prep: []string{"baked"}, Cuisine: []string{"hawaiian"}}

	_, conf, _ := scoreCandidate("hawaiian pizza", item, facets, common.KindGeneric)

	assert.GreaterOrEqual(t, conf, 0.0)
	assert.LessOrEqual(t, conf, 1.0)
}

func TestSimilarityOrdering(t *testing.T) {
	exact := similarity("hawaiian pizza", "hawaiian pizza")
	contains := similarity("hawaiian pizza", "hawaiian pizza slice")
	partial := similarity("hawaiian pizza", "pepperoni calzone")

	assert.Equal(t, 1.0, exact)
	assert.Greater(t, exact, contains)
	assert.Greater(t, contains, partial)
	assert.GreaterOrEqual(t, partial, 0.1, "similarity never drops below the floor")
}

func TestMatchesCoreToken(t *testing.T) {
	tests := []struct {
		query string
		name  string
		want  bool
	}{
		{"california roll", "California Roll", true},
		{"california roll", "California Rolls", true},
		{"california roll", "Rolled Oats", false},
		{"hawaiian pizza", "Frozen Hawaiian Pizza", true},
		{"hawaiian pizza", "Pineapple Chunks", false},
		{"", "Anything", true},
	}

	for _, tt := range tests {
		t.Run(tt.query+"/"+tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, matchesCoreToken(tt.query, tt.name))
		})
	}
}
