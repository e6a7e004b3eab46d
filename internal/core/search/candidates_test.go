package search

import (
	"context"
	"errors"
	"testing"
	"time"

	"food-resolver/internal/core/catalog"
	"food-resolver/internal/infrastructure/cache"
	"food-resolver/internal/infrastructure/config"
	"food-resolver/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSearcher struct {
	items []catalog.Item
	err   error
	calls int
}

func (s *stubSearcher) Search(_ context.Context, _ string, _ int) ([]catalog.Item, error) {
	s.calls++
	return s.items, s.err
}

func testConfig() *config.Config {
	return &config.Config{
		Search: config.SearchConfig{
			PromotionDelta:          0.15,
			PickerAbsoluteThreshold: 0.65,
			PickerGapThreshold:      0.15,
			MaxResults:              15,
			BrandLimit:              2,
			MaxPerClass:             10,
		},
	}
}

func TestCandidatesPromotesGenericWithinDelta(t *testing.T) {
	searcher := &stubSearcher{items: []catalog.Item{
		{ID: "b1", Name: "Hawaiian Pizza", Brand: "DiGiorno", Confidence: 0.90},
		{ID: "g1", Name: "Pizza, Hawaiian Style", Provider: "generic", Confidence: 0.85},
	}}
	svc := NewService(testConfig(), searcher, nil)

	opts := DefaultOptions()
	opts.DisableBrandInterleave = true
	candidates := svc.Candidates(context.Background(), "hawaiian pizza", common.Facets{Cuisine: []string{"hawaiian"}}, opts)

	require.Len(t, candidates, 2)
	assert.Equal(t, "g1", candidates[0].ID, "generic within delta must be promoted over the brand")
	assert.Equal(t, common.KindGeneric, candidates[0].Kind)
	assert.Equal(t, "b1", candidates[1].ID)
}

func TestCandidatesKeepsBrandWhenGapTooLarge(t *testing.T) {
	searcher := &stubSearcher{items: []catalog.Item{
		{ID: "b1", Name: "Hawaiian Pizza", Brand: "DiGiorno", Confidence: 0.90},
		{ID: "g1", Name: "Pizza, Hawaiian Style", Provider: "generic", Confidence: 0.55},
	}}
	svc := NewService(testConfig(), searcher, nil)

	opts := DefaultOptions()
	opts.DisableBrandInterleave = true
	candidates := svc.Candidates(context.Background(), "hawaiian pizza", common.Facets{}, opts)

	require.Len(t, candidates, 2)
	assert.Equal(t, "b1", candidates[0].ID, "a clearly stronger brand result keeps the top rank")
}

func TestCandidatesPromotionScansPastIneligibleGeneric(t *testing.T) {
	// Rank order follows score while eligibility is measured on the
	// catalog-provided confidence, so a weak-confidence generic can sit
	// between the brand and an eligible generic. The scan must pass over it.
	searcher := &stubSearcher{items: []catalog.Item{
		{ID: "b1", Name: "Hawaiian Pizza", Brand: "DiGiorno", Confidence: 0.90},
		{ID: "g1", Name: "Pizza, Hawaiian Style", Provider: "generic", Confidence: 0.50},
		{ID: "g2", Name: "Veggie Pizza", Provider: "generic", Confidence: 0.88},
	}}
	svc := NewService(testConfig(), searcher, nil)

	opts := DefaultOptions()
	opts.DisableBrandInterleave = true
	candidates := svc.Candidates(context.Background(), "hawaiian pizza", common.Facets{}, opts)

	require.Len(t, candidates, 3)
	assert.Equal(t, "g2", candidates[0].ID, "the eligible generic behind a weak one must still be promoted")
	assert.Equal(t, "b1", candidates[1].ID)
	assert.Equal(t, "g1", candidates[2].ID)
}

func TestCandidatesPromotionRequiresCoreToken(t *testing.T) {
	// The generic is close in confidence but names a different food.
	searcher := &stubSearcher{items: []catalog.Item{
		{ID: "b1", Name: "California Roll", Brand: "SushiCo", Confidence: 0.90},
		{ID: "g1", Name: "Rolled Oats", Provider: "generic", Confidence: 0.88},
	}}
	svc := NewService(testConfig(), searcher, nil)

	opts := DefaultOptions()
	opts.RequireCoreToken = false
	opts.DisableBrandInterleave = true
	candidates := svc.Candidates(context.Background(), "california roll", common.Facets{}, opts)

	require.NotEmpty(t, candidates)
	assert.Equal(t, "b1", candidates[0].ID, `"roll" must not match "rolled"`)
}

func TestCandidatesCoreTokenGateDropsMismatches(t *testing.T) {
	searcher := &stubSearcher{items: []catalog.Item{
		{ID: "g1", Name: "California Roll", Provider: "generic", Confidence: 0.9},
		{ID: "g2", Name: "Rolled Oats", Provider: "generic", Confidence: 0.8},
	}}
	svc := NewService(testConfig(), searcher, nil)

	candidates := svc.Candidates(context.Background(), "california roll", common.Facets{}, DefaultOptions())

	require.Len(t, candidates, 1)
	assert.Equal(t, "g1", candidates[0].ID)
}

func TestCandidatesUpstreamFailureYieldsEmptySlice(t *testing.T) {
	searcher := &stubSearcher{err: errors.New("connection refused")}
	svc := NewService(testConfig(), searcher, nil)

	candidates := svc.Candidates(context.Background(), "pizza", common.Facets{}, DefaultOptions())

	assert.NotNil(t, candidates)
	assert.Empty(t, candidates)
}

func TestCandidatesEmptyQuery(t *testing.T) {
	searcher := &stubSearcher{}
	svc := NewService(testConfig(), searcher, nil)

	candidates := svc.Candidates(context.Background(), "   ", common.Facets{}, DefaultOptions())

	assert.Empty(t, candidates)
	assert.Zero(t, searcher.calls, "blank queries must not hit the catalog")
}

func TestCandidatesDeduplicatesByID(t *testing.T) {
	searcher := &stubSearcher{items: []catalog.Item{
		{ID: "g1", Name: "Cheese Pizza", Provider: "generic", Confidence: 0.9},
		{ID: "g1", Name: "Cheese Pizza", Provider: "generic", Confidence: 0.9},
	}}
	svc := NewService(testConfig(), searcher, nil)

	candidates := svc.Candidates(context.Background(), "cheese pizza", common.Facets{}, DefaultOptions())

	assert.Len(t, candidates, 1)
}

func TestCandidatesCacheReadThrough(t *testing.T) {
	store := cache.NewMemoryCache(&config.CacheConfig{
		MaxSize:         10,
		TTL:             time.Minute,
		CleanupInterval: time.Minute,
	})
	defer store.Close()

	searcher := &stubSearcher{items: []catalog.Item{
		{ID: "g1", Name: "Cheese Pizza", Provider: "generic", Confidence: 0.9},
	}}
	svc := NewService(testConfig(), searcher, store)

	first := svc.Candidates(context.Background(), "cheese pizza", common.Facets{}, DefaultOptions())
	second := svc.Candidates(context.Background(), "cheese pizza", common.Facets{}, DefaultOptions())

	assert.Equal(t, first, second)
	assert.Equal(t, 1, searcher.calls, "second lookup must be served from cache")
}

func TestCandidatesCacheKeyedByOptions(t *testing.T) {
	store := cache.NewMemoryCache(&config.CacheConfig{
		MaxSize:         10,
		TTL:             time.Minute,
		CleanupInterval: time.Minute,
	})
	defer store.Close()

	searcher := &stubSearcher{items: []catalog.Item{
		{ID: "g1", Name: "Cola", Provider: "generic", Confidence: 0.95},
		{ID: "b1", Name: "Cola Classic", Brand: "CocaCo", Confidence: 0.80},
		{ID: "b2", Name: "Cola Zero", Brand: "CocaCo", Confidence: 0.78},
		{ID: "b3", Name: "Cola Cherry", Brand: "CocaCo", Confidence: 0.76},
	}}
	svc := NewService(testConfig(), searcher, store)

	interleaved := svc.Candidates(context.Background(), "cola", common.Facets{}, DefaultOptions())

	plain := DefaultOptions()
	plain.DisableBrandInterleave = true
	unordered := svc.Candidates(context.Background(), "cola", common.Facets{}, plain)

	assert.Equal(t, 2, searcher.calls, "different options must not share a cache entry")
	assert.Len(t, interleaved, 3, "interleave caps brands at the configured limit")
	assert.Len(t, unordered, 4, "score order keeps every brand")
}

func TestShouldShowCandidatePicker(t *testing.T) {
	svc := NewService(testConfig(), &stubSearcher{}, nil)

	mk := func(confidences ...float64) []common.Candidate {
		out := make([]common.Candidate, len(confidences))
		for i, c := range confidences {
			out[i] = common.Candidate{Confidence: c}
		}
		return out
	}

	tests := []struct {
		name       string
		candidates []common.Candidate
		want       bool
	}{
		{"low absolute confidence", mk(0.60, 0.50), true},
		{"narrow gap", mk(0.85, 0.75), true},
		{"confident and separated", mk(0.90, 0.60), false},
		{"single candidate", mk(0.30), false},
		{"no candidates", mk(), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, svc.ShouldShowCandidatePicker(tt.candidates))
		})
	}
}
