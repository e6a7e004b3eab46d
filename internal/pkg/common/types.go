package common

import (
	"fmt"
	"strings"
)

// CandidateKind classifies a catalog search result. Kept as a closed enum so
// the promotion rule can match exhaustively instead of comparing free-form
// strings.
type CandidateKind string

const (
	KindBrand      CandidateKind = "brand"
	KindGeneric    CandidateKind = "generic"
	KindRestaurant CandidateKind = "restaurant"
	KindUnknown    CandidateKind = "unknown"
)

// CountUnit is an optional leading "2 slices" style quantity parsed from a
// query.
type CountUnit struct {
	Count float64 `json:"count"`
	Unit  string  `json:"unit"`
}

// Facets is the structured form of a free-text food query. Produced once per
// query and never mutated downstream.
type Facets struct {
	Core    []string   `json:"core"`
	Prep    []string   `json:"prep"`
	Cuisine []string   `json:"cuisine"`
	Units   *CountUnit `json:"units,omitempty"`
}

// IsEmpty reports whether no facet category matched. An empty Facets is a
// valid parse result for unrecognized text.
func (f Facets) IsEmpty() bool {
	return len(f.Core) == 0 && len(f.Prep) == 0 && len(f.Cuisine) == 0 && f.Units == nil
}

// Candidate is one catalog search result eligible for selection. Candidates
// never outlive a single resolution request.
type Candidate struct {
	ID              string        `json:"id"`
	Name            string        `json:"name"`
	Kind            CandidateKind `json:"kind"`
	ClassID         string        `json:"class_id,omitempty"`
	CaloriesPer100g float64       `json:"calories_per_100g"`
	Score           float64       `json:"score"`
	Confidence      float64       `json:"confidence"`
	Explanation     string        `json:"explanation,omitempty"`
	ImageURL        string        `json:"image_url,omitempty"`
}

// PortionSource identifies which signal produced a portion estimate.
type PortionSource string

const (
	PortionSourceOCR            PortionSource = "ocr"
	PortionSourceUserPref       PortionSource = "user_pref"
	PortionSourceNutritionRatio PortionSource = "nutrition_ratio"
	PortionSourceCategory       PortionSource = "category"
	PortionSourceFallback       PortionSource = "fallback"
)

// ConfidenceTier is the coarse reliability grade of a portion estimate.
type ConfidenceTier string

const (
	ConfidenceHigh   ConfidenceTier = "high"
	ConfidenceMedium ConfidenceTier = "medium"
	ConfidenceLow    ConfidenceTier = "low"
)

// PortionEstimate is the inferred portion for one resolution. Immutable once
// produced.
type PortionEstimate struct {
	Grams      int            `json:"grams"`
	Unit       string         `json:"unit"`
	Source     PortionSource  `json:"source"`
	Confidence ConfidenceTier `json:"confidence"`
	Display    string         `json:"display"`
}

// DataSource identifies which hydration step produced the macro profile.
type DataSource string

const (
	DataSourceStore     DataSource = "store"
	DataSourceCanonical DataSource = "canonical"
	DataSourceLegacy    DataSource = "legacy"
	// DataSourceEstimated keeps the capitalized spelling the stored payloads
	// already use.
	DataSourceEstimated DataSource = "Estimated"
)

// PerGram holds macro values normalized to a 1-gram basis.
type PerGram struct {
	Kcal    float64 `json:"kcal"`
	Protein float64 `json:"protein"`
	Carbs   float64 `json:"carbs"`
	Fat     float64 `json:"fat"`
	Fiber   float64 `json:"fiber,omitempty"`
	Sugar   float64 `json:"sugar,omitempty"`
	Sodium  float64 `json:"sodium,omitempty"`
}

// Field returns the named macro value and whether the key is known.
func (p PerGram) Field(key string) (float64, bool) {
	switch key {
	case "kcal":
		return p.Kcal, true
	case "protein":
		return p.Protein, true
	case "carbs":
		return p.Carbs, true
	case "fat":
		return p.Fat, true
	case "fiber":
		return p.Fiber, true
	case "sugar":
		return p.Sugar, true
	case "sodium":
		return p.Sodium, true
	}
	return 0, false
}

// HydrationResult is the final per-gram macro profile for a chosen candidate.
// Invariant: IsEstimated == (DataSource == DataSourceEstimated) and
// PerGram.Kcal >= 0.
type HydrationResult struct {
	PerGram     PerGram    `json:"per_gram"`
	PerGramKeys []string   `json:"per_gram_keys"`
	DataSource  DataSource `json:"data_source"`
	IsEstimated bool       `json:"is_estimated"`
	FromStore   bool       `json:"from_store"`
}

// FoodItem is the hydration input: a chosen candidate plus whatever local
// data the host already holds for it. Per-100g fields are only meaningful
// when HasStoreData is set.
type FoodItem struct {
	ID           string  `json:"id,omitempty"`
	Title        string  `json:"title"`
	ClassID      string  `json:"class_id,omitempty"`
	CanonicalKey string  `json:"canonical_key,omitempty"`
	HasStoreData bool    `json:"has_store_data"`
	Calories     float64 `json:"calories,omitempty"`
	Protein      float64 `json:"protein,omitempty"`
	Carbs        float64 `json:"carbs,omitempty"`
	Fat          float64 `json:"fat,omitempty"`
	Fiber        float64 `json:"fiber,omitempty"`
	Sugar        float64 `json:"sugar,omitempty"`
	Sodium       float64 `json:"sodium,omitempty"`
}

// DisplayName is the name used for legacy estimator lookups.
func (i FoodItem) DisplayName() string {
	return strings.TrimSpace(i.Title)
}

// FormatGrams renders a grams value with its provenance tag, e.g. "125g • est.".
func FormatGrams(grams int, tag string) string {
	return fmt.Sprintf("%dg • %s", grams, tag)
}
