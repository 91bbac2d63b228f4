// Package wiki implements the target wiki's markup conventions: CamelCase
// page naming, link syntax, directives, and conversion from the markdown
// that language models habitually emit.
//
// The dialect: headings are `!` / `!!` / `!!!` (most prominent), bold is
// `__x__`, italic is `''x''`, bullets are `*`, internal links are
// `[Display|PageName]` or `[PageName]`, and directives are `[{NAME args}]`.
package wiki

import (
	"strings"
	"unicode"
)

// CamelCase derives a page name from free text: words start at every
// non-alphanumeric boundary, each word's first rune is upper-cased, and
// everything else is dropped. "Version Control Basics" becomes
// "VersionControlBasics"; "401(k)" becomes "401K". Deterministic, and stable
// for input that is already a page name.
func CamelCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	upperNext := true
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			upperNext = true
			continue
		}
		if upperNext {
			b.WriteRune(unicode.ToUpper(r))
			upperNext = false
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// stopwords are link targets too generic to deserve a page of their own.
var stopwords = map[string]bool{
	"a": true, "an": true, "and": true, "as": true, "at": true,
	"be": true, "by": true, "for": true, "from": true, "in": true,
	"is": true, "it": true, "of": true, "on": true, "or": true,
	"that": true, "the": true, "this": true, "to": true, "with": true,
}

// IsStopword reports whether the word is in the stopword set. Matching is
// case-insensitive.
func IsStopword(word string) bool {
	return stopwords[strings.ToLower(word)]
}

// urlSchemes are the link-target prefixes that mark an external reference.
var urlSchemes = []string{"http://", "https://", "mailto:", "ftp://"}

// IsURL reports whether the string starts with an external URL scheme.
func IsURL(s string) bool {
	lower := strings.ToLower(s)
	for _, scheme := range urlSchemes {
		if strings.HasPrefix(lower, scheme) {
			return true
		}
	}
	return false
}

// IsDirective reports whether a bracketed token body is a directive rather
// than a link. Directives open with a brace: [{ALIAS Target}], [{SET ...}],
// [{TableOfContents }].
func IsDirective(s string) bool {
	return strings.HasPrefix(s, "{")
}

// WordCount returns the number of whitespace-separated words.
func WordCount(content string) int {
	return len(strings.Fields(content))
}

// CountLinks returns the number of wiki links in the content. Directives are
// not links.
func CountLinks(content string) int {
	return len(ExtractLinks(content))
}

// LinkDensity returns links per 100 words. Zero-word content has density 0.
func LinkDensity(content string) float64 {
	words := WordCount(content)
	if words == 0 {
		return 0
	}
	return float64(CountLinks(content)) / float64(words) * 100
}
