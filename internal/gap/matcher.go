package gap

import (
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Matcher decides when two page names refer to the same page. "Compound
// Interest", "compound-interest", and "CompoundInterest" all normalize to
// the same key; "naïve" and "naive" are fuzzy-equal after diacritic folding.
type Matcher struct{}

// NewMatcher creates a Matcher.
func NewMatcher() *Matcher {
	return &Matcher{}
}

// Normalize lowercases the name and strips everything that is not a letter
// or digit. It is idempotent.
func (m *Matcher) Normalize(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FuzzyEqual reports whether two names are close enough to mean the same
// page: after diacritic folding and normalization, their digit subsequences
// must match exactly and their letter subsequences must be within edit
// distance 2.
func (m *Matcher) FuzzyEqual(a, b string) bool {
	na := m.Normalize(foldDiacritics(a))
	nb := m.Normalize(foldDiacritics(b))
	if na == "" || nb == "" {
		return false
	}
	if digitsOf(na) != digitsOf(nb) {
		return false
	}
	return levenshtein.ComputeDistance(lettersOf(na), lettersOf(nb)) <= 2
}

// Canonical returns the existing page the target resolves to: first by
// normalized equality, then fuzzily. Empty when nothing matches.
func (m *Matcher) Canonical(target string, pages []string) string {
	normTarget := m.Normalize(target)
	if normTarget == "" {
		return ""
	}
	for _, page := range pages {
		if m.Normalize(page) == normTarget {
			return page
		}
	}
	for _, page := range pages {
		if m.FuzzyEqual(target, page) {
			return page
		}
	}
	return ""
}

// foldDiacritics strips combining marks: "naïve" becomes "naive".
func foldDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

func digitsOf(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func lettersOf(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
