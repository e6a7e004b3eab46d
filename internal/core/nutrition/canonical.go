// Package nutrition hydrates a chosen food into a per-gram macro profile.
// The pipeline degrades through store data, the canonical table, a remote
// estimator and finally a synthesized estimate; it never fails outright.
package nutrition

import (
	"context"

	"food-resolver/internal/pkg/common"
)

// CanonicalSource resolves a canonical food key to a per-gram profile. found
// is false when the key is not in the table; err is reserved for transport
// failures of remote implementations.
type CanonicalSource interface {
	Lookup(ctx context.Context, key string) (profile common.PerGram, found bool, err error)
}

// StaticCanonical is the built-in canonical table. Values are per gram,
// sourced from USDA reference servings.
type StaticCanonical struct {
	table map[string]common.PerGram
}

// NewStaticCanonical creates the built-in canonical source.
func NewStaticCanonical() *StaticCanonical {
	return &StaticCanonical{table: canonicalProfiles}
}

// Lookup implements CanonicalSource. It never returns an error.
func (s *StaticCanonical) Lookup(_ context.Context, key string) (common.PerGram, bool, error) {
	p, ok := s.table[key]
	return p, ok, nil
}

var canonicalProfiles = map[string]common.PerGram{
	"generic_hot_dog": {
		Kcal: 2.90, Protein: 0.104, Carbs: 0.024, Fat: 0.262, Fiber: 0.0, Sugar: 0.012, Sodium: 10.9,
	},
	"generic_pizza_slice": {
		Kcal: 2.66, Protein: 0.110, Carbs: 0.331, Fat: 0.098, Fiber: 0.023, Sugar: 0.036, Sodium: 5.98,
	},
	"generic_california_roll": {
		Kcal: 1.29, Protein: 0.033, Carbs: 0.224, Fat: 0.025, Fiber: 0.010, Sugar: 0.041, Sodium: 3.20,
	},
	"generic_teriyaki_bowl": {
		Kcal: 1.63, Protein: 0.090, Carbs: 0.230, Fat: 0.036, Fiber: 0.008, Sugar: 0.052, Sodium: 4.40,
	},
	"generic_rice_cooked": {
		Kcal: 1.30, Protein: 0.027, Carbs: 0.282, Fat: 0.003, Fiber: 0.004, Sugar: 0.001, Sodium: 0.01,
	},
	"generic_egg": {
		Kcal: 1.55, Protein: 0.126, Carbs: 0.011, Fat: 0.106, Fiber: 0.0, Sugar: 0.011, Sodium: 1.24,
	},
	"generic_oatmeal": {
		Kcal: 0.68, Protein: 0.024, Carbs: 0.120, Fat: 0.014, Fiber: 0.017, Sugar: 0.003, Sodium: 0.04,
	},
	"generic_chicken_breast": {
		Kcal: 1.65, Protein: 0.310, Carbs: 0.0, Fat: 0.036, Fiber: 0.0, Sugar: 0.0, Sodium: 0.74,
	},
	"generic_banana": {
		Kcal: 0.89, Protein: 0.011, Carbs: 0.228, Fat: 0.003, Fiber: 0.026, Sugar: 0.122, Sodium: 0.01,
	},
	"generic_apple": {
		Kcal: 0.52, Protein: 0.003, Carbs: 0.138, Fat: 0.002, Fiber: 0.024, Sugar: 0.104, Sodium: 0.01,
	},
}
