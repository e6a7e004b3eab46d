package nutrition

import (
	"context"
	"errors"
	"testing"
	"time"

	"food-resolver/internal/infrastructure/config"
	"food-resolver/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubEstimator struct {
	perGram common.PerGram
	err     error
	delay   time.Duration
	calls   int
}

func (s *stubEstimator) Estimate(_ context.Context, _ string) (common.PerGram, error) {
	s.calls++
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	return s.perGram, s.err
}

type missingCanonical struct{}

func (missingCanonical) Lookup(_ context.Context, _ string) (common.PerGram, bool, error) {
	return common.PerGram{}, false, nil
}

func testHydrationConfig(timeout time.Duration) *config.Config {
	return &config.Config{
		Hydration: config.HydrationConfig{Timeout: timeout},
	}
}

func TestHydrateStoreFastPath(t *testing.T) {
	slow := &stubEstimator{delay: time.Second}
	h := NewHydrator(testHydrationConfig(6*time.Second), nil, slow, nil)

	result := h.Hydrate(context.Background(), common.FoodItem{
		Title:        "Cheese Pizza",
		HasStoreData: true,
		Calories:     250,
		Protein:      11,
		Carbs:        33,
		Fat:          10,
	})

	assert.Equal(t, common.DataSourceStore, result.DataSource)
	assert.True(t, result.FromStore)
	assert.False(t, result.IsEstimated)
	assert.InDelta(t, 2.5, result.PerGram.Kcal, 1e-9)
	assert.InDelta(t, 0.11, result.PerGram.Protein, 1e-9)
	assert.Zero(t, slow.calls, "store data must not trigger any remote call")
}

func TestHydrateCanonicalByKey(t *testing.T) {
	h := NewHydrator(testHydrationConfig(6*time.Second), nil, nil, nil)

	result := h.Hydrate(context.Background(), common.FoodItem{
		Title:        "Slice of pizza",
		CanonicalKey: "generic_pizza_slice",
	})

	assert.Equal(t, common.DataSourceCanonical, result.DataSource)
	assert.False(t, result.IsEstimated)
	assert.InDelta(t, 2.66, result.PerGram.Kcal, 1e-9)
}

func TestHydrateCanonicalDerivedFromTitle(t *testing.T) {
	h := NewHydrator(testHydrationConfig(6*time.Second), nil, nil, nil)

	result := h.Hydrate(context.Background(), common.FoodItem{
		Title: "Margherita Pizza",
	})

	assert.Equal(t, common.DataSourceCanonical, result.DataSource)
	assert.InDelta(t, 2.66, result.PerGram.Kcal, 1e-9)
}

func TestHydrateLegacyEstimator(t *testing.T) {
	estimator := &stubEstimator{
		perGram: common.PerGram{Kcal: 1.8, Protein: 0.12, Carbs: 0.2, Fat: 0.05},
	}
	h := NewHydrator(testHydrationConfig(6*time.Second), nil, estimator, nil)

	result := h.Hydrate(context.Background(), common.FoodItem{Title: "mystery dish"})

	assert.Equal(t, common.DataSourceLegacy, result.DataSource)
	assert.False(t, result.IsEstimated)
	assert.InDelta(t, 1.8, result.PerGram.Kcal, 1e-9)
	assert.Equal(t, 1, estimator.calls)
}

func TestHydrateEstimatorTimeoutSynthesizes(t *testing.T) {
	estimator := &stubEstimator{
		perGram: common.PerGram{Kcal: 1.8},
		delay:   300 * time.Millisecond,
	}
	h := NewHydrator(testHydrationConfig(30*time.Millisecond), nil, estimator, nil)

	start := time.Now()
	result := h.Hydrate(context.Background(), common.FoodItem{Title: "mystery dish"})

	assert.Less(t, time.Since(start), 200*time.Millisecond, "hydration must not wait for the late estimator")
	assert.Equal(t, common.DataSourceEstimated, result.DataSource)
	assert.True(t, result.IsEstimated)
	assert.Greater(t, result.PerGram.Kcal, 0.0)
	assert.LessOrEqual(t, result.PerGram.Kcal, 9.0, "synthesized kcal density must stay physically plausible")
}

func TestHydrateEstimatorFailureSynthesizes(t *testing.T) {
	estimator := &stubEstimator{err: errors.New("upstream down")}
	h := NewHydrator(testHydrationConfig(6*time.Second), nil, estimator, nil)

	result := h.Hydrate(context.Background(), common.FoodItem{Title: "mystery dish"})

	assert.Equal(t, common.DataSourceEstimated, result.DataSource)
	assert.True(t, result.IsEstimated)
	assert.Greater(t, result.PerGram.Kcal, 0.0)
}

func TestHydrateSynthesisIsClassKeyed(t *testing.T) {
	// Canonical always misses here, so synthesis must pick the class profile.
	h := NewHydrator(testHydrationConfig(6*time.Second), missingCanonical{}, nil, nil)

	result := h.Hydrate(context.Background(), common.FoodItem{
		Title:   "Street Hot Dog",
		ClassID: "hot_dog_link",
	})

	assert.Equal(t, common.DataSourceEstimated, result.DataSource)
	assert.InDelta(t, 2.90, result.PerGram.Kcal, 1e-9)
}

func TestHydrateNoEstimatorSynthesizes(t *testing.T) {
	h := NewHydrator(testHydrationConfig(6*time.Second), nil, nil, nil)

	result := h.Hydrate(context.Background(), common.FoodItem{Title: "mystery dish"})

	assert.Equal(t, common.DataSourceEstimated, result.DataSource)
	assert.True(t, result.IsEstimated)
}

func TestHydratePerGramKeys(t *testing.T) {
	h := NewHydrator(testHydrationConfig(6*time.Second), nil, nil, nil)

	result := h.Hydrate(context.Background(), common.FoodItem{
		Title:        "Cheese Pizza",
		HasStoreData: true,
		Calories:     250,
		Protein:      11,
		Carbs:        33,
		Fat:          10,
	})

	require.NotEmpty(t, result.PerGramKeys)
	assert.Subset(t, result.PerGramKeys, []string{"kcal", "protein", "carbs", "fat"})
}
