package resolve

import (
	"context"
	"testing"
	"time"

	"food-resolver/internal/core/catalog"
	"food-resolver/internal/core/nutrition"
	"food-resolver/internal/core/portion"
	"food-resolver/internal/core/search"
	"food-resolver/internal/infrastructure/config"
	"food-resolver/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSearcher struct {
	items []catalog.Item
}

func (s *stubSearcher) Search(_ context.Context, _ string, _ int) ([]catalog.Item, error) {
	return s.items, nil
}

func testService(items []catalog.Item) *Service {
	cfg := &config.Config{
		Search: config.SearchConfig{
			PromotionDelta:          0.15,
			PickerAbsoluteThreshold: 0.65,
			PickerGapThreshold:      0.15,
			MaxResults:              15,
			BrandLimit:              2,
			MaxPerClass:             10,
		},
		Portion: config.PortionConfig{
			FallbackGrams:     30,
			MaxPlausibleGrams: 1000,
		},
		Hydration: config.HydrationConfig{Timeout: 6 * time.Second},
	}

	searchSvc := search.NewService(cfg, &stubSearcher{items: items}, nil)
	engine := portion.NewEngine(cfg)
	hydrator := nutrition.NewHydrator(cfg, nil, nil, nil)
	return NewService(cfg, searchSvc, engine, hydrator)
}

func TestResolveHotDogEndToEnd(t *testing.T) {
	svc := testService([]catalog.Item{
		{ID: "g1", Name: "Hot Dog", Provider: "generic", Confidence: 0.92},
		{ID: "b1", Name: "Ballpark Hot Dog", Brand: "Ballpark", Confidence: 0.70},
	})

	result := svc.Resolve(context.Background(), Request{Text: "hotdog"})

	assert.Equal(t, "hot dog", result.Query)
	assert.Contains(t, result.Facets.Core, "hot_dog")

	require.NotEmpty(t, result.Candidates)
	require.NotNil(t, result.Selected)
	assert.Equal(t, "g1", result.Selected.ID)
	assert.False(t, result.NeedsDisambiguation)

	assert.Equal(t, 50, result.Portion.Grams)
	assert.Equal(t, "link", result.Portion.Unit)
	assert.Equal(t, common.ConfidenceHigh, result.Portion.Confidence)

	assert.Equal(t, common.DataSourceCanonical, result.Hydration.DataSource)
	assert.InDelta(t, 2.90, result.Hydration.PerGram.Kcal, 1e-9)
	assert.InDelta(t, 145.0, result.PerPortion.Kcal, 1e-9)
}

func TestResolveCloseConfidencesNeedDisambiguation(t *testing.T) {
	svc := testService([]catalog.Item{
		{ID: "g1", Name: "Cheese Pizza", Provider: "generic", Confidence: 0.85},
		{ID: "g2", Name: "Cheese Pizza Slice", Provider: "generic", Confidence: 0.80},
	})

	result := svc.Resolve(context.Background(), Request{Text: "cheese pizza"})

	assert.True(t, result.NeedsDisambiguation)
	require.NotNil(t, result.Selected, "a provisional top pick is still reported")
}

func TestResolveNoCandidatesStillResolves(t *testing.T) {
	svc := testService(nil)

	result := svc.Resolve(context.Background(), Request{Text: "mystery dish"})

	assert.Empty(t, result.Candidates)
	assert.Nil(t, result.Selected)
	assert.False(t, result.NeedsDisambiguation)

	assert.Equal(t, 30, result.Portion.Grams)
	assert.Equal(t, common.PortionSourceFallback, result.Portion.Source)

	assert.True(t, result.Hydration.IsEstimated)
	assert.Greater(t, result.PerPortion.Kcal, 0.0)
}

func TestResolveCaloriesOnlyCandidateUsesCanonical(t *testing.T) {
	// A catalog hit never carries the full macro set, so its calories alone
	// must not shortcut hydration into a zero-macro profile.
	svc := testService([]catalog.Item{
		{ID: "g1", Name: "Hot Dog", Provider: "generic", Confidence: 0.95, CaloriesPer100g: 290},
	})

	result := svc.Resolve(context.Background(), Request{Text: "hot dog"})

	require.NotNil(t, result.Selected)
	assert.Equal(t, common.DataSourceCanonical, result.Hydration.DataSource)
	assert.False(t, result.Hydration.FromStore)
	assert.InDelta(t, 2.90, result.Hydration.PerGram.Kcal, 1e-9)
	assert.Greater(t, result.Hydration.PerGram.Protein, 0.0)
}

func TestResolveLeadingCountScalesPortion(t *testing.T) {
	svc := testService([]catalog.Item{
		{ID: "g1", Name: "Pepperoni Pizza", Provider: "generic", Confidence: 0.95},
	})

	result := svc.Resolve(context.Background(), Request{Text: "2 slices pepperoni pizza"})

	require.NotNil(t, result.Selected)
	assert.Equal(t, 250, result.Portion.Grams)
	assert.Equal(t, "slice", result.Portion.Unit)
}

func TestResolveOCRSignalOverridesTables(t *testing.T) {
	svc := testService([]catalog.Item{
		{ID: "g1", Name: "Hot Dog", Provider: "generic", Confidence: 0.92},
	})

	result := svc.Resolve(context.Background(), Request{
		Text:     "hotdog",
		OCRGrams: 76,
	})

	assert.Equal(t, 76, result.Portion.Grams)
	assert.Equal(t, common.PortionSourceOCR, result.Portion.Source)
}
