// Package search gives the researcher web context: pluggable providers
// behind a name-indexed registry, wrapped by a Service that applies
// configuration and keeps provider failures from failing a pipeline run.
package search

import (
	"context"
	"strings"
	"unicode"

	"github.com/plumeworks/plume/internal/document"
	"github.com/plumeworks/plume/internal/wiki"
)

// Result is one search hit, graded by source reliability.
type Result struct {
	Title       string               `json:"title"`
	URL         string               `json:"url"`
	Snippet     string               `json:"snippet"`
	Reliability document.Reliability `json:"reliability"`
}

// Provider is one searchable backend.
type Provider interface {
	// Name identifies the provider in configuration and logs.
	Name() string
	// Enabled reports whether the provider can serve queries at all.
	Enabled() bool
	// Search runs a general query.
	Search(ctx context.Context, query string) ([]Result, error)
	// SearchInDomain scopes a query to one site or topic area.
	SearchInDomain(ctx context.Context, query, domain string) ([]Result, error)
	// RelatedTopics suggests neighboring topics for a subject.
	RelatedTopics(ctx context.Context, topic string) ([]string, error)
	// TopicSummary returns a short reference summary of a topic.
	TopicSummary(ctx context.Context, topic string) (string, error)
	// ValidateTopic scores how recognizable a topic is, from 0 (unknown)
	// to 1 (exact match).
	ValidateTopic(ctx context.Context, topic string) (float64, error)
}

// normalizeLabel lowercases and strips everything but letters and digits,
// making label comparisons insensitive to spacing and punctuation.
func normalizeLabel(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// significantWords returns the topic's lowercased words worth matching on:
// at least three runes and not a stopword.
func significantWords(topic string) []string {
	var words []string
	for _, w := range strings.Fields(strings.ToLower(topic)) {
		w = strings.TrimFunc(w, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		if len([]rune(w)) < 3 || wiki.IsStopword(w) {
			continue
		}
		words = append(words, w)
	}
	return words
}

// labelScore grades how well candidate labels match a topic: 1.0 for an
// exact normalized match, 0.85 for containment, 0.5 when anything came back
// at all, 0 otherwise. Providers without a richer entity model use this.
func labelScore(topic string, labels []string) float64 {
	normTopic := normalizeLabel(topic)
	if normTopic == "" || len(labels) == 0 {
		return 0
	}
	for _, l := range labels {
		if normalizeLabel(l) == normTopic {
			return 1.0
		}
	}
	for _, l := range labels {
		nl := normalizeLabel(l)
		if nl == "" {
			continue
		}
		if strings.Contains(nl, normTopic) || strings.Contains(normTopic, nl) {
			return 0.85
		}
	}
	return 0.5
}
