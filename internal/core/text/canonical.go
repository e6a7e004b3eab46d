package text

import "strings"

// canonicalByClass maps a normalized food-class identifier to the canonical
// nutrition-profile key. The table is fixed; unknown classes resolve to none.
var canonicalByClass = map[string]string{
	"hot_dog":         "generic_hot_dog",
	"hot_dog_link":    "generic_hot_dog",
	"pizza":           "generic_pizza_slice",
	"pizza_slice":     "generic_pizza_slice",
	"teriyaki_bowl":   "generic_teriyaki_bowl",
	"california_roll": "generic_california_roll",
	"rice":            "generic_rice_cooked",
	"rice_cooked":     "generic_rice_cooked",
	"fried_rice":      "generic_rice_cooked",
	"egg":             "generic_egg",
	"egg_large":       "generic_egg",
	"oatmeal":         "generic_oatmeal",
	"oatmeal_cooked":  "generic_oatmeal",
	"chicken":         "generic_chicken_breast",
	"chicken_breast":  "generic_chicken_breast",
}

// canonicalByCoreNoun lets the hydrator derive a canonical key from a parsed
// core noun when the item itself carries none.
var canonicalByCoreNoun = map[string]string{
	"pizza":           "generic_pizza_slice",
	"hot_dog":         "generic_hot_dog",
	"california_roll": "generic_california_roll",
	"teriyaki_bowl":   "generic_teriyaki_bowl",
	"rice":            "generic_rice_cooked",
	"egg":             "generic_egg",
	"oatmeal":         "generic_oatmeal",
	"chicken":         "generic_chicken_breast",
}

// CanonicalFor maps a food-class id to its canonical nutrition key. Unknown
// or empty input returns ("", false); it never fails.
func CanonicalFor(classID string) (string, bool) {
	if classID == "" {
		return "", false
	}
	key, ok := canonicalByClass[classID]
	return key, ok
}

// CanonicalForCoreNoun maps a parsed core noun to a canonical key.
func CanonicalForCoreNoun(noun string) (string, bool) {
	key, ok := canonicalByCoreNoun[noun]
	return key, ok
}

// InferClassID derives a food-class id from an item display name, falling
// back to parsed facets. Used for portion defaults and candidate diversity.
func InferClassID(name string, core []string) string {
	n := strings.ToLower(name)

	switch {
	case strings.Contains(n, "hot dog") || strings.Contains(n, "hotdog"):
		return "hot_dog_link"
	case strings.Contains(n, "pizza"):
		return "pizza_slice"
	case strings.Contains(n, "teriyaki") && strings.Contains(n, "bowl"):
		return "teriyaki_bowl"
	case strings.Contains(n, "california") && strings.Contains(n, "roll"):
		return "california_roll"
	case strings.Contains(n, "rice"):
		return "rice_cooked"
	case strings.Contains(n, "egg"):
		return "egg_large"
	case strings.Contains(n, "oatmeal") || strings.Contains(n, "oats"):
		return "oatmeal_cooked"
	case strings.Contains(n, "chicken") && !strings.Contains(n, "soup"):
		return "chicken_breast"
	}

	for _, noun := range core {
		switch noun {
		case "pizza":
			return "pizza_slice"
		case "hot_dog":
			return "hot_dog_link"
		case "teriyaki_bowl", "bowl":
			return "teriyaki_bowl"
		case "california_roll", "roll":
			return "california_roll"
		case "rice":
			return "rice_cooked"
		case "egg":
			return "egg_large"
		case "oatmeal":
			return "oatmeal_cooked"
		case "chicken":
			return "chicken_breast"
		}
	}

	return ""
}

// CoreNounOf extracts the dominant core noun from an item title, used by the
// hydrator when no canonical key is attached. Multi-word classes win over
// single tokens.
func CoreNounOf(title string) string {
	normalized := Normalize(title)
	for _, cp := range corePhrases {
		if containsPhrase(normalized, cp.phrase) {
			if _, ok := canonicalByCoreNoun[cp.class]; ok {
				return cp.class
			}
		}
	}
	for _, tok := range strings.Fields(normalized) {
		singular := singularize(tok)
		if _, ok := canonicalByCoreNoun[tok]; ok {
			return tok
		}
		if _, ok := canonicalByCoreNoun[singular]; ok {
			return singular
		}
	}
	return ""
}
