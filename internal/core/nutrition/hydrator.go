package nutrition

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"food-resolver/internal/core/text"
	"food-resolver/internal/infrastructure/cache"
	"food-resolver/internal/infrastructure/config"
	"food-resolver/internal/pkg/common"

	"go.uber.org/zap"
)

// Hydrator resolves a chosen food item into a per-gram macro profile. It
// never returns an error: every failure path degrades to a synthesized
// estimate with DataSourceEstimated set.
type Hydrator struct {
	cfg       *config.Config
	canonical CanonicalSource
	estimator Estimator
	cache     cache.Cache
}

// NewHydrator creates a hydrator. estimator and cache may be nil; without an
// estimator the legacy step is skipped.
func NewHydrator(cfg *config.Config, canonical CanonicalSource, estimator Estimator, c cache.Cache) *Hydrator {
	if canonical == nil {
		canonical = NewStaticCanonical()
	}
	return &Hydrator{
		cfg:       cfg,
		canonical: canonical,
		estimator: estimator,
		cache:     c,
	}
}

// Hydrate runs the resolution chain for item: store data, canonical table,
// remote estimator, synthesized estimate. The remote phase is bounded by the
// configured hydration timeout; a late estimator response is discarded.
func (h *Hydrator) Hydrate(ctx context.Context, item common.FoodItem) common.HydrationResult {
	if result, ok := h.fromStore(item); ok {
		return result
	}

	ctx, cancel := context.WithTimeout(ctx, h.cfg.Hydration.Timeout)
	defer cancel()

	if result, ok := h.fromCanonical(ctx, item); ok {
		return result
	}
	if result, ok := h.fromEstimator(ctx, item); ok {
		return result
	}

	return h.synthesize(item)
}

// fromStore is the fast path: the host already holds per-100g values for the
// item, so no I/O happens at all.
func (h *Hydrator) fromStore(item common.FoodItem) (common.HydrationResult, bool) {
	if !item.HasStoreData || item.Calories <= 0 {
		return common.HydrationResult{}, false
	}
	perGram := common.PerGram{
		Kcal:    item.Calories / 100,
		Protein: item.Protein / 100,
		Carbs:   item.Carbs / 100,
		Fat:     item.Fat / 100,
		Fiber:   item.Fiber / 100,
		Sugar:   item.Sugar / 100,
		Sodium:  item.Sodium / 100,
	}
	return h.finish(perGram, common.DataSourceStore, true), true
}

func (h *Hydrator) fromCanonical(ctx context.Context, item common.FoodItem) (common.HydrationResult, bool) {
	key := h.canonicalKey(item)
	if key == "" {
		return common.HydrationResult{}, false
	}

	if perGram, ok := h.cachedProfile(ctx, key); ok {
		return h.finish(perGram, common.DataSourceCanonical, false), true
	}

	perGram, found, err := h.canonical.Lookup(ctx, key)
	if err != nil {
		common.LogWarn("canonical lookup failed",
			zap.Error(err),
			zap.String("key", key),
		)
		return common.HydrationResult{}, false
	}
	if !found {
		return common.HydrationResult{}, false
	}

	h.storeProfile(ctx, key, perGram)
	return h.finish(perGram, common.DataSourceCanonical, false), true
}

// canonicalKey resolves the canonical table key for an item: the attached key
// first, then the item's class, then the core noun of its title.
func (h *Hydrator) canonicalKey(item common.FoodItem) string {
	if item.CanonicalKey != "" {
		return item.CanonicalKey
	}
	if key, ok := text.CanonicalFor(item.ClassID); ok {
		return key
	}
	if noun := text.CoreNounOf(item.Title); noun != "" {
		if key, ok := text.CanonicalForCoreNoun(noun); ok {
			return key
		}
	}
	return ""
}

type estimateOutcome struct {
	perGram common.PerGram
	err     error
}

// fromEstimator races the remote estimator against the remaining hydration
// budget. The result channel is buffered so a response arriving after the
// deadline is dropped without leaking the goroutine.
func (h *Hydrator) fromEstimator(ctx context.Context, item common.FoodItem) (common.HydrationResult, bool) {
	if h.estimator == nil {
		return common.HydrationResult{}, false
	}
	name := item.DisplayName()
	if name == "" {
		return common.HydrationResult{}, false
	}

	started := time.Now()
	ch := make(chan estimateOutcome, 1)
	go func() {
		perGram, err := h.estimator.Estimate(ctx, name)
		ch <- estimateOutcome{perGram: perGram, err: err}
	}()

	select {
	case <-ctx.Done():
		common.LogWarn("estimator timed out, synthesizing estimate",
			zap.String("food", name),
			zap.Duration("elapsed", time.Since(started)),
		)
		return common.HydrationResult{}, false
	case outcome := <-ch:
		if outcome.err != nil {
			common.LogWarn("estimator failed, synthesizing estimate",
				zap.Error(outcome.err),
				zap.String("food", name),
			)
			return common.HydrationResult{}, false
		}
		if outcome.perGram.Kcal <= 0 {
			return common.HydrationResult{}, false
		}
		return h.finish(outcome.perGram, common.DataSourceLegacy, false), true
	}
}

// estimatedProfile is one row of the synthesis table: plausible per-gram
// macros for a food class when every data source has failed.
type estimatedProfile struct {
	kcal    float64
	protein float64
	carbs   float64
	fat     float64
}

var estimatedByClass = map[string]estimatedProfile{
	"hot_dog_link":    {2.90, 0.10, 0.02, 0.26},
	"pizza_slice":     {2.66, 0.11, 0.33, 0.10},
	"teriyaki_bowl":   {1.63, 0.09, 0.23, 0.04},
	"california_roll": {1.29, 0.03, 0.22, 0.03},
	"rice_cooked":     {1.30, 0.03, 0.28, 0.00},
	"egg_large":       {1.55, 0.13, 0.01, 0.11},
	"oatmeal_cooked":  {0.68, 0.02, 0.12, 0.01},
	"chicken_breast":  {1.65, 0.31, 0.00, 0.04},
}

var estimatedDefault = estimatedProfile{2.0, 0.08, 0.25, 0.08}

// synthesize is the terminal fallback. The profile is class-keyed when the
// class is known, otherwise a neutral mixed-food profile, so the caller
// always gets positive calories.
func (h *Hydrator) synthesize(item common.FoodItem) common.HydrationResult {
	classID := item.ClassID
	if classID == "" {
		classID = text.InferClassID(item.Title, nil)
	}
	profile, ok := estimatedByClass[classID]
	if !ok {
		profile = estimatedDefault
	}

	common.LogInfo("synthesized nutrition estimate",
		zap.String("food", item.DisplayName()),
		zap.String("class", classID),
	)

	perGram := common.PerGram{
		Kcal:    profile.kcal,
		Protein: profile.protein,
		Carbs:   profile.carbs,
		Fat:     profile.fat,
		Fiber:   0.02,
		Sugar:   0.05,
		Sodium:  0.4,
	}
	return h.finish(perGram, common.DataSourceEstimated, false)
}

func (h *Hydrator) finish(perGram common.PerGram, source common.DataSource, fromStore bool) common.HydrationResult {
	if perGram.Kcal < 0 {
		perGram.Kcal = 0
	}
	return common.HydrationResult{
		PerGram:     perGram,
		PerGramKeys: perGramKeys(perGram),
		DataSource:  source,
		IsEstimated: source == common.DataSourceEstimated,
		FromStore:   fromStore,
	}
}

// perGramKeys lists the macro keys carried by a profile. Kcal, protein,
// carbs and fat are always reported; trace macros only when present.
func perGramKeys(p common.PerGram) []string {
	keys := []string{"kcal", "protein", "carbs", "fat"}
	if p.Fiber > 0 {
		keys = append(keys, "fiber")
	}
	if p.Sugar > 0 {
		keys = append(keys, "sugar")
	}
	if p.Sodium > 0 {
		keys = append(keys, "sodium")
	}
	return keys
}

func (h *Hydrator) profileCacheKey(key string) string {
	return cache.Key("nutrition", strings.ToLower(key))
}

func (h *Hydrator) cachedProfile(ctx context.Context, key string) (common.PerGram, bool) {
	if h.cache == nil {
		return common.PerGram{}, false
	}
	raw, err := h.cache.Get(ctx, h.profileCacheKey(key))
	if err != nil {
		return common.PerGram{}, false
	}
	var perGram common.PerGram
	if err := common.ParseJSON(raw, &perGram); err != nil {
		return common.PerGram{}, false
	}
	common.LogCacheHit("nutrition", key)
	return perGram, true
}

func (h *Hydrator) storeProfile(ctx context.Context, key string, perGram common.PerGram) {
	if h.cache == nil {
		return
	}
	raw, err := json.Marshal(perGram)
	if err != nil {
		return
	}
	_ = h.cache.Set(ctx, h.profileCacheKey(key), string(raw), 0)
}
