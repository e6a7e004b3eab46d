package text

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQueryCoreNouns(t *testing.T) {
	facets := ParseQuery("grilled chicken salad")

	assert.ElementsMatch(t, []string{"chicken", "salad"}, facets.Core)
	assert.Equal(t, []string{"grilled"}, facets.Prep)
	assert.Empty(t, facets.Cuisine)
	assert.Nil(t, facets.Units)
}

func TestParseQueryMultiWordClass(t *testing.T) {
	tests := []struct {
		query string
		want  string
	}{
		{"hot dog with mustard", "hot_dog"},
		{"hotdog", "hot_dog"},
		{"california roll", "california_roll"},
		{"teriyaki bowl", "teriyaki_bowl"},
		{"fried rice", "fried_rice"},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			facets := ParseQuery(tt.query)
			assert.Contains(t, facets.Core, tt.want)
		})
	}
}

func TestParseQueryCuisine(t *testing.T) {
	facets := ParseQuery("hawaiian pizza")

	assert.Equal(t, []string{"pizza"}, facets.Core)
	assert.Equal(t, []string{"hawaiian"}, facets.Cuisine)

	// Voice transcriptions drop the suffix; the bare form still counts.
	facets = ParseQuery("hawai pizza")
	assert.Equal(t, []string{"hawaii"}, facets.Cuisine)
}

func TestParseQueryLeadingCount(t *testing.T) {
	facets := ParseQuery("2 slices pepperoni pizza")

	require.NotNil(t, facets.Units)
	assert.Equal(t, 2.0, facets.Units.Count)
	assert.Equal(t, "slice", facets.Units.Unit)
	assert.Equal(t, []string{"pizza"}, facets.Core)
}

func TestParseQueryFractionCount(t *testing.T) {
	facets := ParseQuery("1/2 cup rice")

	require.NotNil(t, facets.Units)
	assert.InDelta(t, 0.5, facets.Units.Count, 1e-9)
	assert.Equal(t, "cup", facets.Units.Unit)
	assert.Equal(t, []string{"rice"}, facets.Core)
}

func TestParseQueryCountWithoutUnit(t *testing.T) {
	// A bare number followed by a non-unit word is not a count.
	facets := ParseQuery("2 pizza")
	assert.Nil(t, facets.Units)
	assert.Equal(t, []string{"pizza"}, facets.Core)
}

func TestParseQueryUnrecognized(t *testing.T) {
	facets := ParseQuery("xyzzy blorp")

	assert.True(t, facets.IsEmpty())
}

func TestParseQueryEmpty(t *testing.T) {
	assert.True(t, ParseQuery("").IsEmpty())
	assert.True(t, ParseQuery("   ").IsEmpty())
}

func TestParseQueryAcceptsRawText(t *testing.T) {
	// Raw and pre-normalized input parse identically.
	raw := ParseQuery("Califirnia Roll!")
	normalized := ParseQuery(Normalize("Califirnia Roll!"))

	assert.Equal(t, normalized, raw)
	assert.Contains(t, raw.Core, "california_roll")
}

func TestParseQueryNoDuplicates(t *testing.T) {
	facets := ParseQuery("pizza pizza pizza")
	assert.Equal(t, []string{"pizza"}, facets.Core)
}
