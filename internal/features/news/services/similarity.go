package services

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/pmezard/go-difflib/difflib"
)

// similarityThreshold is the ratio above which two titles count as the
// same story. Tuned against real local-news feeds; changing it shifts
// the dedup/false-positive balance across every feed.
const similarityThreshold = 0.516

// minTitleLength guards against false positives on very short titles.
const minTitleLength = 10

// bracketedSegment matches broadcast tags like "[LIVE]" so they do not
// dominate the comparison. Greedy: strips from the first '[' to the
// last ']'.
var bracketedSegment = regexp.MustCompile(`\[.*\]`)

// TitlesAreSimilar reports whether two story titles represent the same
// underlying story. Bracketed tags are stripped first; titles whose
// shorter stripped form is at most 10 characters never match.
func TitlesAreSimilar(titleA, titleB string) bool {
	titleA = bracketedSegment.ReplaceAllString(titleA, "")
	titleB = bracketedSegment.ReplaceAllString(titleB, "")

	shortest := utf8.RuneCountInString(titleA)
	if n := utf8.RuneCountInString(titleB); n < shortest {
		shortest = n
	}
	if shortest <= minTitleLength {
		return false
	}

	matcher := difflib.NewMatcher(splitChars(titleA), splitChars(titleB))
	return matcher.Ratio() > similarityThreshold
}

// splitChars turns a title into per-rune elements for character-level
// sequence matching.
func splitChars(s string) []string {
	return strings.Split(s, "")
}
