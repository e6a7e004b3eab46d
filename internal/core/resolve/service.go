// Package resolve wires the full pipeline together: normalize, parse facets,
// rank candidates, infer a portion and hydrate nutrition for the top pick.
package resolve

import (
	"context"
	"math"

	"food-resolver/internal/core/nutrition"
	"food-resolver/internal/core/portion"
	"food-resolver/internal/core/search"
	"food-resolver/internal/core/text"
	"food-resolver/internal/infrastructure/config"
	"food-resolver/internal/pkg/common"

	"go.uber.org/zap"
)

// Request is one end-to-end resolution request.
type Request struct {
	// Text is the raw food description.
	Text string `json:"text"`
	// Category optionally narrows portion defaults and OCR densities.
	Category string `json:"category,omitempty"`

	// Portion signals, all optional.
	OCRText             string  `json:"ocr_text,omitempty"`
	OCRGrams            float64 `json:"ocr_grams,omitempty"`
	UserPreferenceGrams float64 `json:"user_preference_grams,omitempty"`
	NutritionRatioGrams float64 `json:"nutrition_ratio_grams,omitempty"`

	// Source labels the entry path for diagnostics ("manual", "speech", ...).
	Source string `json:"source,omitempty"`
}

// Result is the combined pipeline output. Candidates may be empty; Selected
// is nil only when they are.
type Result struct {
	Query               string                 `json:"query"`
	Facets              common.Facets          `json:"facets"`
	Candidates          []common.Candidate     `json:"candidates"`
	NeedsDisambiguation bool                   `json:"needs_disambiguation"`
	Selected            *common.Candidate      `json:"selected,omitempty"`
	Portion             common.PortionEstimate `json:"portion"`
	Hydration           common.HydrationResult `json:"hydration"`
	// PerPortion is PerGram scaled by the inferred portion grams.
	PerPortion common.PerGram `json:"per_portion"`
}

// Service orchestrates the resolution pipeline.
type Service struct {
	cfg      *config.Config
	search   *search.Service
	portion  *portion.Engine
	hydrator *nutrition.Hydrator
}

// NewService creates the resolution service.
func NewService(cfg *config.Config, searchSvc *search.Service, engine *portion.Engine, hydrator *nutrition.Hydrator) *Service {
	return &Service{
		cfg:      cfg,
		search:   searchSvc,
		portion:  engine,
		hydrator: hydrator,
	}
}

// Resolve runs the pipeline for req. Candidate search failures degrade to an
// empty candidate list; portion and hydration always produce a value, so the
// caller gets a usable result for any input text.
func (s *Service) Resolve(ctx context.Context, req Request) Result {
	query := text.Normalize(req.Text)
	facets := text.ParseQuery(query)

	opts := search.DefaultOptions()
	if req.Source != "" {
		opts.Source = req.Source
	}
	candidates := s.search.Candidates(ctx, query, facets, opts)

	result := Result{
		Query:               query,
		Facets:              facets,
		Candidates:          candidates,
		NeedsDisambiguation: s.search.ShouldShowCandidatePicker(candidates),
	}

	// With no candidates the pipeline still resolves portion and nutrition
	// from the text alone.
	foodName := query
	category := req.Category
	var item common.FoodItem
	if len(candidates) > 0 {
		top := candidates[0]
		result.Selected = &top
		foodName = top.Name
		item = foodItemFor(top)
	} else {
		item = common.FoodItem{
			Title:   query,
			ClassID: text.InferClassID(query, facets.Core),
		}
	}

	signals := portion.Signals{
		OCRGrams:            req.OCRGrams,
		OCRText:             req.OCRText,
		UserPreferenceGrams: req.UserPreferenceGrams,
		NutritionRatioGrams: req.NutritionRatioGrams,
	}
	if facets.Units != nil {
		signals.Count = facets.Units.Count
		signals.CountUnit = facets.Units.Unit
	}
	result.Portion = s.portion.Estimate(foodName, category, signals)

	result.Hydration = s.hydrator.Hydrate(ctx, item)
	result.PerPortion = scalePerGram(result.Hydration.PerGram, result.Portion.Grams)

	common.LogInfo("resolution completed",
		zap.String("query", query),
		zap.Int("candidates", len(result.Candidates)),
		zap.Bool("needs_disambiguation", result.NeedsDisambiguation),
		zap.Int("grams", result.Portion.Grams),
		zap.String("data_source", string(result.Hydration.DataSource)),
	)
	return result
}

// Hydrate exposes the hydration step for a caller that already chose its
// candidate.
func (s *Service) Hydrate(ctx context.Context, item common.FoodItem) common.HydrationResult {
	return s.hydrator.Hydrate(ctx, item)
}

// Candidates exposes the candidate search step on its own.
func (s *Service) Candidates(ctx context.Context, rawQuery string, opts search.Options) ([]common.Candidate, bool) {
	query := text.Normalize(rawQuery)
	facets := text.ParseQuery(query)
	candidates := s.search.Candidates(ctx, query, facets, opts)
	return candidates, s.search.ShouldShowCandidatePicker(candidates)
}

// Portion exposes the portion inference step on its own.
func (s *Service) Portion(foodName, category string, sig portion.Signals) common.PortionEstimate {
	return s.portion.Estimate(foodName, category, sig)
}

// foodItemFor builds the hydration input from a chosen candidate. Catalog
// hits carry per-100g calories at most, never the full macro set, so they
// are not store data; hydration falls through to the canonical table or the
// estimator, which produce complete profiles. Store data only arrives from
// the host through the hydrate entry point.
func foodItemFor(c common.Candidate) common.FoodItem {
	item := common.FoodItem{
		ID:      c.ID,
		Title:   c.Name,
		ClassID: c.ClassID,
	}
	if key, ok := text.CanonicalFor(c.ClassID); ok {
		item.CanonicalKey = key
	}
	return item
}

// scalePerGram multiplies a per-gram profile up to a portion, rounding each
// macro to one decimal.
func scalePerGram(p common.PerGram, grams int) common.PerGram {
	g := float64(grams)
	round := func(v float64) float64 {
		return math.Round(v*g*10) / 10
	}
	return common.PerGram{
		Kcal:    round(p.Kcal),
		Protein: round(p.Protein),
		Carbs:   round(p.Carbs),
		Fat:     round(p.Fat),
		Fiber:   round(p.Fiber),
		Sugar:   round(p.Sugar),
		Sodium:  round(p.Sodium),
	}
}
