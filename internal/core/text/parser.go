package text

import (
	"regexp"
	"strconv"
	"strings"

	"food-resolver/internal/pkg/common"
)

// Multi-word food classes are matched before single tokens so "hot dog"
// yields hot_dog rather than a stray "dog".
var corePhrases = []struct {
	phrase string
	class  string
}{
	{"hot dog", "hot_dog"},
	{"california roll", "california_roll"},
	{"teriyaki bowl", "teriyaki_bowl"},
	{"fried rice", "fried_rice"},
}

// coreNouns is the closed vocabulary of single-token food nouns.
var coreNouns = map[string]bool{
	"pizza": true, "roll": true, "bowl": true, "rice": true, "egg": true,
	"chicken": true, "burger": true, "sandwich": true, "salad": true,
	"soup": true, "sushi": true, "taco": true, "burrito": true,
	"oatmeal": true, "pasta": true, "bread": true, "fries": true,
	"cookie": true, "omelet": true, "yogurt": true, "steak": true,
	"wrap": true, "bagel": true, "pancake": true, "waffle": true,
}

// prepWords is the closed vocabulary of cooking-method adjectives.
var prepWords = map[string]bool{
	"grilled": true, "fried": true, "baked": true, "roasted": true,
	"boiled": true, "steamed": true, "sauteed": true, "smoked": true,
	"raw": true, "cooked": true, "bbq": true, "barbecue": true,
	"breaded": true, "poached": true, "scrambled": true,
}

// cuisineWords is the closed vocabulary of cuisine adjectives. Both
// "hawaiian" and the bare "hawaii" are accepted since voice transcriptions
// drop the suffix.
var cuisineWords = map[string]bool{
	"italian": true, "mexican": true, "chinese": true, "japanese": true,
	"thai": true, "indian": true, "hawaiian": true, "hawaii": true,
	"greek": true, "french": true, "korean": true, "vietnamese": true,
	"mediterranean": true, "american": true, "cajun": true,
}

// countUnits maps unit nouns (and their plurals) to the canonical unit.
var countUnits = map[string]string{
	"slice": "slice", "slices": "slice",
	"piece": "piece", "pieces": "piece",
	"cup": "cup", "cups": "cup",
	"link": "link", "links": "link",
	"bowl": "bowl", "bowls": "bowl",
	"roll": "roll", "rolls": "roll",
	"serving": "serving", "servings": "serving",
	"bar": "bar", "bars": "bar",
	"egg": "egg", "eggs": "egg",
	"tbsp": "tbsp", "tsp": "tsp",
	"oz": "oz", "ounce": "oz", "ounces": "oz",
}

var leadingCount = regexp.MustCompile(`^(\d+/\d+|\d+(?:\.\d+)?)\s+([a-z]+)\b`)

// ParseQuery tokenizes a food query into structured facets. The query is
// normalized internally, so callers may pass raw text; passing already
// normalized text is harmless because Normalize is idempotent.
func ParseQuery(query string) common.Facets {
	normalized := Normalize(query)
	facets := common.Facets{}
	if normalized == "" {
		return facets
	}

	remaining := normalized

	// Leading count+unit pair, e.g. "2 slices pizza" or "1/2 cup rice".
	if m := leadingCount.FindStringSubmatch(remaining); m != nil {
		if unit, ok := countUnits[m[2]]; ok {
			if count, parsed := parseCount(m[1]); parsed && count > 0 {
				facets.Units = &common.CountUnit{Count: count, Unit: unit}
				remaining = strings.TrimSpace(remaining[len(m[0]):])
			}
		}
	}

	// Multi-word classes first, consuming their tokens.
	for _, cp := range corePhrases {
		if containsPhrase(remaining, cp.phrase) {
			facets.Core = appendUnique(facets.Core, cp.class)
			remaining = removePhrase(remaining, cp.phrase)
		}
	}

	for _, tok := range strings.Fields(remaining) {
		singular := singularize(tok)
		switch {
		case coreNouns[tok] || coreNouns[singular]:
			if coreNouns[tok] {
				facets.Core = appendUnique(facets.Core, tok)
			} else {
				facets.Core = appendUnique(facets.Core, singular)
			}
		case prepWords[tok]:
			facets.Prep = appendUnique(facets.Prep, tok)
		case cuisineWords[tok]:
			facets.Cuisine = appendUnique(facets.Cuisine, tok)
		}
	}

	return facets
}

func parseCount(s string) (float64, bool) {
	if num, den, ok := strings.Cut(s, "/"); ok {
		n, err1 := strconv.ParseFloat(num, 64)
		d, err2 := strconv.ParseFloat(den, 64)
		if err1 != nil || err2 != nil || d == 0 {
			return 0, false
		}
		return n / d, true
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func singularize(tok string) string {
	if len(tok) > 3 && strings.HasSuffix(tok, "s") && !strings.HasSuffix(tok, "ss") {
		return tok[:len(tok)-1]
	}
	return tok
}

func containsPhrase(s, phrase string) bool {
	idx := strings.Index(s, phrase)
	if idx < 0 {
		return false
	}
	// Word-boundary check on both sides.
	if idx > 0 && s[idx-1] != ' ' {
		return false
	}
	end := idx + len(phrase)
	if end < len(s) && s[end] != ' ' && s[end] != 's' {
		return false
	}
	return true
}

func removePhrase(s, phrase string) string {
	s = strings.Replace(s, phrase+"s", "", 1)
	s = strings.Replace(s, phrase, "", 1)
	return strings.Join(strings.Fields(s), " ")
}

func appendUnique(list []string, v string) []string {
	for _, existing := range list {
		if existing == v {
			return list
		}
	}
	return append(list, v)
}
