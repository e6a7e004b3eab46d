package search

import (
	"fmt"
	"regexp"
	"strings"

	"food-resolver/internal/core/catalog"
	"food-resolver/internal/pkg/common"
)

// Scoring weights. The similarity signal is split the way the upstream
// ranker splits it so the explanation strings stay comparable; the semantic
// share currently reuses the lexical signal as its proxy.
const (
	lexicalWeight   = 55.0
	semanticWeight  = 35.0
	maxFacetBonus   = 10.0
	prepBonus       = 2.0
	cuisineBonus    = 2.0
	brandPenalty    = 20.0
	confidenceScale = 100.0
)

// similarity estimates how well a candidate name matches the query, in [0,1].
// Exact and containment matches dominate; token Jaccard and trigram overlap
// cover partial matches.
func similarity(query, name string) float64 {
	q := strings.ToLower(query)
	n := strings.ToLower(name)

	if q == n {
		return 1.0
	}
	if strings.Contains(n, q) {
		return 0.85
	}
	if strings.Contains(q, n) {
		return 0.75
	}

	if j := jaccard(strings.Fields(q), strings.Fields(n)); j > 0.5 {
		return 0.6 + j*0.2
	}

	t := trigramSimilarity(q, n)
	if t*0.6 < 0.1 {
		return 0.1
	}
	return t * 0.6
}

func jaccard(a, b []string) float64 {
	setA := make(map[string]bool, len(a))
	for _, w := range a {
		setA[w] = true
	}
	setB := make(map[string]bool, len(b))
	for _, w := range b {
		setB[w] = true
	}

	intersection := 0
	for w := range setA {
		if setB[w] {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

func trigramSimilarity(a, b string) float64 {
	ta := trigrams(a)
	tb := trigrams(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}
	intersection := 0
	for t := range ta {
		if tb[t] {
			intersection++
		}
	}
	union := len(ta) + len(tb) - intersection
	return float64(intersection) / float64(union)
}

func trigrams(s string) map[string]bool {
	out := make(map[string]bool)
	for i := 0; i+3 <= len(s); i++ {
		out[s[i:i+3]] = true
	}
	return out
}

// scoreCandidate computes the composite score, its confidence and a short
// explanation for a classified catalog item.
func scoreCandidate(query string, item catalog.Item, facets common.Facets, kind common.CandidateKind) (score, confidence float64, explanation string) {
	parts := make([]string, 0, 4)

	sim := similarity(query, item.Name)
	lexical := sim * lexicalWeight
	semantic := sim * semanticWeight
	score = lexical + semantic
	parts = append(parts,
		fmt.Sprintf("lexical: %.0fpts", lexical),
		fmt.Sprintf("semantic: %.0fpts", semantic),
	)

	nameLower := strings.ToLower(item.Name)
	var facetBonus float64
	for _, prep := range facets.Prep {
		if strings.Contains(nameLower, prep) {
			facetBonus += prepBonus
		}
	}
	for _, cuisine := range facets.Cuisine {
		if strings.Contains(nameLower, cuisine) {
			facetBonus += cuisineBonus
		}
	}
	if facetBonus > maxFacetBonus {
		facetBonus = maxFacetBonus
	}
	if facetBonus > 0 {
		score += facetBonus
		parts = append(parts, fmt.Sprintf("facets: +%.0fpts", facetBonus))
	}

	// Unknown kinds take the brand penalty too: ambiguity must not outrank
	// a confirmed generic.
	if kind == common.KindBrand || kind == common.KindUnknown {
		if !strings.Contains(strings.ToLower(query), "brand") {
			score -= brandPenalty
			parts = append(parts, fmt.Sprintf("brand penalty: -%.0fpts", brandPenalty))
		}
	}

	if score < 0 {
		score = 0
	}
	confidence = score / confidenceScale
	if confidence > 1 {
		confidence = 1
	}
	return score, confidence, strings.Join(parts, ", ")
}

// classifyKind assigns the closed candidate kind. Brand evidence overrides
// explicit generic markers; anything ambiguous stays unknown rather than
// being guessed from word counts.
func classifyKind(item catalog.Item) common.CandidateKind {
	if item.Brand != "" || len(item.Code) >= 8 {
		return common.KindBrand
	}
	if item.IsRestaurant {
		return common.KindRestaurant
	}
	if item.Provider == "generic" || item.IsGeneric {
		return common.KindGeneric
	}
	return common.KindUnknown
}

var stopWords = map[string]bool{
	"a": true, "an": true, "the": true, "and": true, "or": true,
	"with": true, "of": true, "in": true, "on": true, "to": true,
	"style": true, "classic": true, "premium": true, "original": true,
	"fresh": true, "organic": true,
}

// coreToken extracts the last significant word of a query.
func coreToken(query string) string {
	fields := strings.Fields(strings.ToLower(query))
	for i := len(fields) - 1; i >= 0; i-- {
		if !stopWords[fields[i]] && len(fields[i]) > 2 {
			return fields[i]
		}
	}
	if len(fields) == 0 {
		return ""
	}
	return fields[len(fields)-1]
}

// matchesCoreToken reports whether the candidate name contains the query's
// core token as a whole word, allowing singular/plural variants but not
// partial words ("roll" must not match "rolled").
func matchesCoreToken(query, name string) bool {
	tok := coreToken(query)
	if tok == "" {
		return true
	}
	base := strings.TrimSuffix(tok, "s")
	re := regexp.MustCompile(`\b` + regexp.QuoteMeta(base) + `s?\b`)
	return re.MatchString(strings.ToLower(name))
}
