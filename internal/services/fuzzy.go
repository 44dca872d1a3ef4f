package services

import (
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"github.com/xrash/smetrics"

	"github.com/challanai/invoice-chat-service/internal/models"
)

// Scorer rates the similarity of two names on a 0-100 scale
type Scorer func(a, b string) float64

// partialScale discounts a best-window match against a much longer name
const partialScale = 0.9

// NewScorer returns the scorer configured by name
func NewScorer(name string) Scorer {
	if name == models.ScorerJaroWinkler {
		return JaroWinklerScore
	}
	return LevenshteinScore
}

func normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// LevenshteinScore is an edit-distance ratio. When one name is much longer than
// the other, the best equally sized window of the longer name is also scored.
func LevenshteinScore(a, b string) float64 {
	a, b = normalize(a), normalize(b)
	if a == "" && b == "" {
		return 100
	}
	if a == "" || b == "" {
		return 0
	}

	best := ratio(a, b)

	short, long := a, b
	if utf8.RuneCountInString(short) > utf8.RuneCountInString(long) {
		short, long = long, short
	}
	shortLen, longLen := utf8.RuneCountInString(short), utf8.RuneCountInString(long)
	if shortLen >= 3 && float64(longLen)/float64(shortLen) >= 1.5 {
		runes := []rune(long)
		for i := 0; i+shortLen <= len(runes); i++ {
			if s := ratio(short, string(runes[i:i+shortLen])) * partialScale; s > best {
				best = s
			}
		}
	}
	return best
}

func ratio(a, b string) float64 {
	maxLen := utf8.RuneCountInString(a)
	if n := utf8.RuneCountInString(b); n > maxLen {
		maxLen = n
	}
	if maxLen == 0 {
		return 100
	}
	dist := levenshtein.ComputeDistance(a, b)
	return (1 - float64(dist)/float64(maxLen)) * 100
}

// JaroWinklerScore scales Jaro-Winkler similarity to 0-100
func JaroWinklerScore(a, b string) float64 {
	a, b = normalize(a), normalize(b)
	if a == "" && b == "" {
		return 100
	}
	if a == "" || b == "" {
		return 0
	}
	return smetrics.JaroWinkler(a, b, 0.7, 4) * 100
}
