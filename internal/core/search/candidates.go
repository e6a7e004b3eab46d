// Package search turns catalog hits into ranked, disambiguated candidates:
// scoring, kind classification, the generic-promotion rule and the picker
// gate live here.
package search

import (
	"context"
	"encoding/json"
	"sort"

	"food-resolver/internal/core/catalog"
	"food-resolver/internal/core/text"
	"food-resolver/internal/infrastructure/cache"
	"food-resolver/internal/infrastructure/config"
	"food-resolver/internal/pkg/common"

	"go.uber.org/zap"
)

// Options tunes one candidate search.
type Options struct {
	// PreferGeneric enables the generic-over-brand promotion swap.
	PreferGeneric bool
	// RequireCoreToken drops hits that do not contain the query's core noun.
	RequireCoreToken bool
	// DisableBrandInterleave keeps pure score order instead of grouping
	// generics first.
	DisableBrandInterleave bool
	// AllowMoreBrands raises the interleaved brand cap.
	AllowMoreBrands bool
	// Source labels the caller for diagnostics ("manual", "speech", ...).
	Source string
}

// DefaultOptions matches the manual-entry flow.
func DefaultOptions() Options {
	return Options{
		PreferGeneric:    true,
		RequireCoreToken: true,
		Source:           "manual",
	}
}

// Service resolves free text into ranked candidates via the injected catalog
// searcher, with an optional read-through result cache.
type Service struct {
	cfg      *config.Config
	searcher catalog.Searcher
	cache    cache.Cache
}

// NewService creates a candidate search service. cache may be nil.
func NewService(cfg *config.Config, searcher catalog.Searcher, c cache.Cache) *Service {
	return &Service{
		cfg:      cfg,
		searcher: searcher,
		cache:    c,
	}
}

// Candidates searches the catalog for rawQuery and returns scored, re-ranked
// candidates. Upstream failure or an empty result yields an empty slice and
// no error: falling back to manual entry is the caller's job.
func (s *Service) Candidates(ctx context.Context, rawQuery string, facets common.Facets, opts Options) []common.Candidate {
	query := text.Normalize(rawQuery)
	if query == "" {
		return nil
	}

	if cached, ok := s.cachedResult(ctx, query, opts); ok {
		return cached
	}

	items, err := s.searcher.Search(ctx, query, s.cfg.Search.MaxResults)
	if err != nil {
		common.LogWarn("catalog search failed, returning no candidates",
			zap.Error(err),
			zap.String("query", query),
			zap.String("source", opts.Source),
		)
		return []common.Candidate{}
	}
	if len(items) == 0 {
		return []common.Candidate{}
	}

	candidates := s.scoreItems(query, items, facets, opts)
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	if opts.PreferGeneric {
		s.promoteGeneric(query, candidates)
		if !opts.DisableBrandInterleave {
			candidates = s.interleave(candidates, opts)
		}
	}

	candidates = s.capPerClass(candidates)

	s.storeResult(ctx, query, opts, candidates)

	common.LogDebug("candidate search completed",
		zap.String("query", query),
		zap.Int("candidates", len(candidates)),
	)
	return candidates
}

func (s *Service) scoreItems(query string, items []catalog.Item, facets common.Facets, opts Options) []common.Candidate {
	seen := make(map[string]bool, len(items))
	out := make([]common.Candidate, 0, len(items))

	for _, item := range items {
		if item.ID == "" || item.Name == "" || seen[item.ID] {
			continue
		}
		if opts.RequireCoreToken && !matchesCoreToken(query, item.Name) {
			continue
		}
		seen[item.ID] = true

		kind := classifyKind(item)
		score, confidence, explanation := scoreCandidate(query, item, facets, kind)

		// Catalog-provided confidence, when present, is the stronger signal:
		// it reflects the engine's own ranking.
		if item.Confidence > 0 {
			confidence = item.Confidence
		}

		out = append(out, common.Candidate{
			ID:              item.ID,
			Name:            item.Name,
			Kind:            kind,
			ClassID:         text.InferClassID(item.Name, facets.Core),
			CaloriesPer100g: item.CaloriesPer100g,
			Score:           score,
			Confidence:      confidence,
			Explanation:     explanation,
			ImageURL:        item.ImageURL,
		})
	}
	return out
}

// promoteGeneric applies the promotion rule in place: when the top result is
// a brand and a generic result further down sits within the configured
// confidence delta and matches the query core, that generic moves to rank 0.
// At most one swap happens; ties among eligible generics go to the earliest.
func (s *Service) promoteGeneric(query string, candidates []common.Candidate) {
	if len(candidates) < 2 {
		return
	}
	top := candidates[0]
	if top.Kind != common.KindBrand {
		return
	}

	for i := 1; i < len(candidates); i++ {
		c := candidates[i]
		if c.Kind != common.KindGeneric {
			continue
		}
		if !matchesCoreToken(query, c.Name) {
			continue
		}
		// Rank order follows Score, but the gap is measured on Confidence,
		// which the catalog may override per item; the two orders can
		// diverge, so an ineligible generic must not end the scan.
		gap := top.Confidence - c.Confidence
		if gap >= s.cfg.Search.PromotionDelta {
			continue
		}
		common.LogDebug("promoting generic candidate",
			zap.String("demoted", top.Name),
			zap.String("promoted", c.Name),
			zap.Float64("gap", gap),
		)
		promoted := candidates[i]
		copy(candidates[1:i+1], candidates[0:i])
		candidates[0] = promoted
		return
	}
}

// interleave groups generics ahead of a capped number of brand results.
func (s *Service) interleave(candidates []common.Candidate, opts Options) []common.Candidate {
	brandLimit := s.cfg.Search.BrandLimit
	if opts.AllowMoreBrands {
		brandLimit *= 2
	}

	out := make([]common.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Kind == common.KindGeneric {
			out = append(out, c)
		}
	}
	brands := 0
	for _, c := range candidates {
		if c.Kind != common.KindGeneric {
			if brands >= brandLimit {
				continue
			}
			brands++
			out = append(out, c)
		}
	}
	return out
}

// capPerClass keeps at most the configured number of candidates per food
// class. Candidates without an inferred class are not grouped.
func (s *Service) capPerClass(candidates []common.Candidate) []common.Candidate {
	max := s.cfg.Search.MaxPerClass
	if max <= 0 {
		return candidates
	}
	counts := make(map[string]int)
	out := candidates[:0]
	for _, c := range candidates {
		if c.ClassID == "" {
			out = append(out, c)
			continue
		}
		if counts[c.ClassID] >= max {
			continue
		}
		counts[c.ClassID]++
		out = append(out, c)
	}
	return out
}

// ShouldShowCandidatePicker decides whether the caller must disambiguate.
// True when the top confidence is below the absolute threshold, or the
// top-two gap is below the relative threshold. With fewer than two
// candidates there is nothing to disambiguate.
func (s *Service) ShouldShowCandidatePicker(candidates []common.Candidate) bool {
	if len(candidates) < 2 {
		return false
	}
	if candidates[0].Confidence < s.cfg.Search.PickerAbsoluteThreshold {
		return true
	}
	gap := candidates[0].Confidence - candidates[1].Confidence
	return gap < s.cfg.Search.PickerGapThreshold
}

// cacheKey encodes every option that changes the returned candidate set or
// its ordering; callers with different options must never share an entry.
func (s *Service) cacheKey(query string, opts Options) string {
	flag := func(prefix string, on bool) string {
		if on {
			return prefix + "1"
		}
		return prefix + "0"
	}
	flags := flag("g", opts.PreferGeneric) +
		flag("c", opts.RequireCoreToken) +
		flag("i", opts.DisableBrandInterleave) +
		flag("b", opts.AllowMoreBrands)
	return cache.Key("candidates", query, flags)
}

func (s *Service) cachedResult(ctx context.Context, query string, opts Options) ([]common.Candidate, bool) {
	if s.cache == nil {
		return nil, false
	}
	key := s.cacheKey(query, opts)
	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		return nil, false
	}
	var out []common.Candidate
	if err := common.ParseJSON(raw, &out); err != nil {
		return nil, false
	}
	common.LogCacheHit("candidates", key)
	return out, true
}

func (s *Service) storeResult(ctx context.Context, query string, opts Options, candidates []common.Candidate) {
	if s.cache == nil || len(candidates) == 0 {
		return
	}
	raw, err := json.Marshal(candidates)
	if err != nil {
		return
	}
	// Search-result caching is an optimization, not a correctness
	// requirement; a failed write is not an error.
	_ = s.cache.Set(ctx, s.cacheKey(query, opts), string(raw), 0)
}
