// Package text implements the lexical front of the resolution pipeline:
// query normalization, facet parsing, and the canonical food-class map.
// Everything here is pure and allocation-light; no component in this package
// performs I/O.
package text

import (
	"regexp"
	"strings"
)

var punctuation = regexp.MustCompile(`[^\w\s/.]`)

// aliasRule rewrites a single token (or, for phrase rules, an exact phrase)
// to its canonical spelling. Rules are ordered and the first match wins.
// Every right-hand side must itself be in normal form so the table cannot
// cycle and Normalize stays idempotent.
type aliasRule struct {
	from string
	to   string
}

var tokenAliases = []aliasRule{
	{"califirnia", "california"},
	{"californa", "california"},
	{"peperoni", "pepperoni"},
	{"pepperonni", "pepperoni"},
	{"hawai", "hawaii"},
	{"hawaian", "hawaiian"},
	{"hawiian", "hawaiian"},
	{"hotdog", "hot dog"},
	{"hotdogs", "hot dogs"},
	{"chiken", "chicken"},
	{"chikn", "chicken"},
	{"piza", "pizza"},
	{"pizzza", "pizza"},
	{"terriyaki", "teriyaki"},
	{"teryaki", "teriyaki"},
	{"sandwhich", "sandwich"},
	{"buritto", "burrito"},
	{"burito", "burrito"},
	{"oatmel", "oatmeal"},
	{"omlet", "omelet"},
	{"omlette", "omelet"},
	{"omelette", "omelet"},
	{"yoghurt", "yogurt"},
}

// Normalize lowercases, trims, collapses whitespace and fixes known
// misspellings via the ordered alias table. It is a pure, total function:
// no input produces an error, and Normalize(Normalize(x)) == Normalize(x).
func Normalize(raw string) string {
	s := strings.ToLower(raw)
	s = punctuation.ReplaceAllString(s, " ")

	tokens := strings.Fields(s)
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		out = append(out, applyAlias(tok))
	}
	return strings.Join(out, " ")
}

func applyAlias(token string) string {
	for _, rule := range tokenAliases {
		if token == rule.from {
			return rule.to
		}
	}
	return token
}
