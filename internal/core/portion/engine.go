// Package portion infers how many grams a described food amounts to. The
// inference is a strict priority chain over independent signal sources,
// expressed as an ordered strategy list so the precedence is visible and
// testable on its own.
package portion

import (
	"math"
	"strings"

	"food-resolver/internal/core/text"
	"food-resolver/internal/infrastructure/config"
	"food-resolver/internal/pkg/common"

	"go.uber.org/zap"
)

// Signals carries the optional portion hints a caller may have gathered.
type Signals struct {
	// OCRGrams is a portion already parsed from label OCR, in grams.
	OCRGrams float64
	// OCRText is raw OCR text; parsed here when OCRGrams is absent.
	OCRText string
	// UserPreferenceGrams is the user's saved portion for this food.
	UserPreferenceGrams float64
	// NutritionRatioGrams is a serving size derived from per-serving vs
	// per-100g nutrition values.
	NutritionRatioGrams float64
	// Count and CountUnit carry a parsed leading quantity ("2 slices").
	// They scale a table-derived single-unit portion, never a measured one.
	Count     float64
	CountUnit string
}

// specificPortion is one entry of the specific-foods override table. Entries
// carry their own confidence: single-unit foods with a well-attested serving
// (a hot dog link, a pizza slice) are high, the rest medium.
type specificPortion struct {
	grams      int
	unit       string
	confidence common.ConfidenceTier
}

var specificFoods = map[string]specificPortion{
	"hot_dog":         {50, "link", common.ConfidenceHigh},
	"pizza":           {125, "slice", common.ConfidenceHigh},
	"california_roll": {170, "roll", common.ConfidenceMedium},
	"teriyaki_bowl":   {350, "bowl", common.ConfidenceMedium},
	"egg":             {50, "egg", common.ConfidenceMedium},
	"oatmeal":         {234, "cup", common.ConfidenceMedium},
	"rice":            {158, "cup", common.ConfidenceMedium},
	"sandwich":        {150, "sandwich", common.ConfidenceMedium},
	"burger":          {220, "burger", common.ConfidenceMedium},
	"taco":            {100, "taco", common.ConfidenceMedium},
	"burrito":         {300, "burrito", common.ConfidenceMedium},
	"bagel":           {95, "bagel", common.ConfidenceMedium},
	"pancake":         {75, "pancake", common.ConfidenceMedium},
}

// categoryDefaults maps a coarse food category to a default serving in grams.
var categoryDefaults = map[string]int{
	"cereals":      55,
	"granola":      55,
	"nuts":         30,
	"snacks":       25,
	"candy":        40,
	"chocolate":    40,
	"beverages":    240,
	"dairy":        150,
	"yogurt":       170,
	"protein-bars": 60,
	"cookies":      30,
	"crackers":     30,
	"chips":        28,
	"soup":         245,
	"salad":        100,
	"fruit":        150,
}

// displayTags maps a portion source to its short provenance tag.
var displayTags = map[common.PortionSource]string{
	common.PortionSourceOCR:            "OCR",
	common.PortionSourceUserPref:       "saved",
	common.PortionSourceNutritionRatio: "calc",
	common.PortionSourceCategory:       "est.",
	common.PortionSourceFallback:       "est.",
}

// Engine runs the portion inference chain.
type Engine struct {
	cfg *config.Config
}

// NewEngine creates a portion engine.
func NewEngine(cfg *config.Config) *Engine {
	return &Engine{cfg: cfg}
}

// strategy is one link of the chain; it returns ok=false to pass control to
// the next source.
type strategy struct {
	name string
	run  func(foodName, category string, sig Signals) (common.PortionEstimate, bool)
}

// Estimate derives a portion for foodName. The chain is strict: the first
// satisfied source wins regardless of what later sources would say. The
// result always carries a display string such as "125g • est.".
func (e *Engine) Estimate(foodName, category string, sig Signals) common.PortionEstimate {
	chain := []strategy{
		{"ocr", e.fromOCR},
		{"user_pref", e.fromUserPreference},
		{"nutrition_ratio", e.fromNutritionRatio},
		{"specific_food", e.fromSpecificFood},
		{"category", e.fromCategory},
	}

	for _, st := range chain {
		if est, ok := st.run(foodName, category, sig); ok {
			est = e.applyCount(est, sig)
			common.LogDebug("portion resolved",
				zap.String("strategy", st.name),
				zap.String("food", foodName),
				zap.Int("grams", est.Grams),
			)
			return est
		}
	}

	return e.applyCount(e.finish(e.cfg.Portion.FallbackGrams, "g", common.PortionSourceFallback, common.ConfidenceLow), sig)
}

// applyCount scales a table-derived portion by a parsed leading count, e.g.
// "2 slices pizza" doubles the single-slice grams. Measured sources (OCR,
// saved preference, nutrition ratio) already describe the full portion and
// are left alone, as is a count whose unit contradicts the portion's.
func (e *Engine) applyCount(est common.PortionEstimate, sig Signals) common.PortionEstimate {
	if sig.Count <= 0 || sig.Count == 1 {
		return est
	}
	switch est.Source {
	case common.PortionSourceCategory, common.PortionSourceFallback:
	default:
		return est
	}
	if sig.CountUnit != "" && est.Unit != "g" && sig.CountUnit != est.Unit {
		return est
	}

	grams := float64(est.Grams) * sig.Count
	if grams <= 0 || grams > e.cfg.Portion.MaxPlausibleGrams {
		return est
	}
	est.Grams = roundGrams(grams)
	est.Display = common.FormatGrams(est.Grams, displayTags[est.Source])
	return est
}

func (e *Engine) fromOCR(_, category string, sig Signals) (common.PortionEstimate, bool) {
	grams := sig.OCRGrams
	if grams <= 0 && sig.OCRText != "" {
		if parsed, ok := ParseOCRText(sig.OCRText, category); ok {
			grams = parsed
		}
	}
	if !e.plausible(grams) {
		return common.PortionEstimate{}, false
	}
	return e.finish(roundGrams(grams), "g", common.PortionSourceOCR, common.ConfidenceHigh), true
}

func (e *Engine) fromUserPreference(_, _ string, sig Signals) (common.PortionEstimate, bool) {
	if !e.plausible(sig.UserPreferenceGrams) {
		return common.PortionEstimate{}, false
	}
	return e.finish(roundGrams(sig.UserPreferenceGrams), "g", common.PortionSourceUserPref, common.ConfidenceHigh), true
}

func (e *Engine) fromNutritionRatio(_, _ string, sig Signals) (common.PortionEstimate, bool) {
	if !e.plausible(sig.NutritionRatioGrams) {
		return common.PortionEstimate{}, false
	}
	return e.finish(roundGrams(sig.NutritionRatioGrams), "g", common.PortionSourceNutritionRatio, common.ConfidenceMedium), true
}

func (e *Engine) fromSpecificFood(foodName, _ string, _ Signals) (common.PortionEstimate, bool) {
	entry, ok := lookupSpecificFood(foodName)
	if !ok {
		return common.PortionEstimate{}, false
	}
	return e.finish(entry.grams, entry.unit, common.PortionSourceCategory, entry.confidence), true
}

func (e *Engine) fromCategory(_, category string, _ Signals) (common.PortionEstimate, bool) {
	grams, ok := categoryDefaults[strings.ToLower(strings.TrimSpace(category))]
	if !ok {
		return common.PortionEstimate{}, false
	}
	// A category default equal to the fallback constant adds no information;
	// fall through so the provenance says fallback.
	if grams == e.cfg.Portion.FallbackGrams {
		return common.PortionEstimate{}, false
	}
	return e.finish(grams, "g", common.PortionSourceCategory, common.ConfidenceMedium), true
}

func (e *Engine) plausible(grams float64) bool {
	return grams > 0 && grams <= e.cfg.Portion.MaxPlausibleGrams
}

func (e *Engine) finish(grams int, unit string, source common.PortionSource, confidence common.ConfidenceTier) common.PortionEstimate {
	return common.PortionEstimate{
		Grams:      grams,
		Unit:       unit,
		Source:     source,
		Confidence: confidence,
		Display:    common.FormatGrams(grams, displayTags[source]),
	}
}

// lookupSpecificFood resolves a food name against the override table: the
// inferred food class first, then exact name, then word-level containment.
func lookupSpecificFood(foodName string) (specificPortion, bool) {
	normalized := text.Normalize(foodName)
	if normalized == "" {
		return specificPortion{}, false
	}

	if classID := text.InferClassID(normalized, nil); classID != "" {
		if entry, ok := specificFoods[classKeyFor(classID)]; ok {
			return entry, true
		}
	}

	key := strings.ReplaceAll(normalized, " ", "_")
	if entry, ok := specificFoods[key]; ok {
		return entry, true
	}

	for name, entry := range specificFoods {
		token := strings.ReplaceAll(name, "_", " ")
		if containsWord(normalized, token) {
			return entry, true
		}
	}
	return specificPortion{}, false
}

// classKeyFor maps internal class ids to specific-food table keys.
func classKeyFor(classID string) string {
	switch classID {
	case "hot_dog_link":
		return "hot_dog"
	case "pizza_slice":
		return "pizza"
	case "rice_cooked":
		return "rice"
	case "egg_large":
		return "egg"
	case "oatmeal_cooked":
		return "oatmeal"
	case "chicken_breast":
		return "chicken"
	}
	return classID
}

func containsWord(s, word string) bool {
	idx := strings.Index(s, word)
	if idx < 0 {
		return false
	}
	if idx > 0 && s[idx-1] != ' ' {
		return false
	}
	end := idx + len(word)
	if end < len(s) && s[end] != ' ' && s[end] != 's' {
		return false
	}
	return true
}

func roundGrams(grams float64) int {
	return int(math.Round(grams))
}
