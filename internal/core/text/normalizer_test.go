package text

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"lowercases", "Hawaiian Pizza", "hawaiian pizza"},
		{"collapses whitespace", "  hot   dog  ", "hot dog"},
		{"strips punctuation", "pizza, extra cheese!", "pizza extra cheese"},
		{"keeps fractions", "1/2 cup rice", "1/2 cup rice"},
		{"fixes california misspelling", "califirnia roll", "california roll"},
		{"fixes pepperoni misspelling", "peperoni piza", "pepperoni pizza"},
		{"fixes hawaiian misspelling", "hawaian pizza", "hawaiian pizza"},
		{"splits hotdog", "hotdog", "hot dog"},
		{"splits plural hotdogs", "2 hotdogs", "2 hot dogs"},
		{"fixes teriyaki misspelling", "terriyaki bowl", "teriyaki bowl"},
		{"empty input", "", ""},
		{"whitespace only", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.input))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"Hawaiian Pizza",
		"hotdog with mustard",
		"califirnia roll",
		"2 slices peperoni piza",
		"1/2 cup rice",
		"grilled chiken salad",
	}

	for _, input := range inputs {
		once := Normalize(input)
		assert.Equal(t, once, Normalize(once), "Normalize must be idempotent for %q", input)
	}
}
