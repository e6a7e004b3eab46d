package portion

import (
	"regexp"
	"strconv"
	"strings"
)

// OCR label text is noisy; the patterns below only accept the unambiguous
// forms. Anything else is rejected so a garbled read never becomes a portion.
var (
	servingSizeRe = regexp.MustCompile(`(?i)serving\s*size[^\d]{0,10}(\d+(?:\.\d+)?)\s*g`)
	gramsRe       = regexp.MustCompile(`(?i)\b(\d+(?:\.\d+)?)\s*g(?:rams?)?\b`)
	mlRe          = regexp.MustCompile(`(?i)\b(\d+(?:\.\d+)?)\s*ml\b`)
	cupFractionRe = regexp.MustCompile(`(?i)\b(\d+)\s*/\s*(\d+)\s*cups?\b`)
	cupDecimalRe  = regexp.MustCompile(`(?i)\b(\d+(?:\.\d+)?)\s*cups?\b`)
)

// cupDensities maps a food category to grams per cup. The default is the
// density of water.
var cupDensities = map[string]float64{
	"cereals":  40,
	"granola":  110,
	"nuts":     130,
	"chips":    30,
	"crackers": 60,
	"yogurt":   245,
	"dairy":    245,
	"soup":     245,
	"salad":    55,
	"rice":     158,
	"oatmeal":  234,
}

const defaultCupGrams = 240.0

// ParseOCRText extracts a serving in grams from raw label text. A "serving
// size" phrase wins over a bare gram figure; volume units are converted with
// a per-category density. Returns false when nothing trustworthy is found or
// the value is outside (0, 1000].
func ParseOCRText(text, category string) (float64, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, false
	}

	if m := servingSizeRe.FindStringSubmatch(text); m != nil {
		return boundGrams(parseNumber(m[1]))
	}
	if m := gramsRe.FindStringSubmatch(text); m != nil {
		return boundGrams(parseNumber(m[1]))
	}
	if m := mlRe.FindStringSubmatch(text); m != nil {
		// Milliliters map 1:1 to grams; close enough for label servings.
		return boundGrams(parseNumber(m[1]))
	}
	if m := cupFractionRe.FindStringSubmatch(text); m != nil {
		num := parseNumber(m[1])
		den := parseNumber(m[2])
		if den == 0 {
			return 0, false
		}
		return boundGrams(num / den * cupGrams(category))
	}
	if m := cupDecimalRe.FindStringSubmatch(text); m != nil {
		return boundGrams(parseNumber(m[1]) * cupGrams(category))
	}

	return 0, false
}

func cupGrams(category string) float64 {
	if g, ok := cupDensities[strings.ToLower(strings.TrimSpace(category))]; ok {
		return g
	}
	return defaultCupGrams
}

func parseNumber(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

func boundGrams(grams float64) (float64, bool) {
	if grams <= 0 || grams > 1000 {
		return 0, false
	}
	return grams, true
}
