package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeLabel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"Compound Interest", "compoundinterest"},
		{"Go (programming language)", "goprogramminglanguage"},
		{"  C++11  ", "c11"},
		{"---", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizeLabel(tt.in), "normalizeLabel(%q)", tt.in)
	}
}

func TestSignificantWords(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want []string
	}{
		{"The History of Compound Interest", []string{"history", "compound", "interest"}},
		{"a an of", nil},
		{"Go, Rust, and C", []string{"rust"}},
		{"", nil},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, significantWords(tt.in), "significantWords(%q)", tt.in)
	}
}

func TestLabelScore(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		topic  string
		labels []string
		want   float64
	}{
		{"exact normalized match", "Compound Interest", []string{"compound interest"}, 1.0},
		{"containment", "Interest", []string{"Compound Interest"}, 0.85},
		{"results without a match", "Flumitron", []string{"Something Else"}, 0.5},
		{"no results", "Flumitron", nil, 0},
		{"empty topic", "", []string{"anything"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.InDelta(t, tt.want, labelScore(tt.topic, tt.labels), 1e-9)
		})
	}
}

func TestBestWordOverlap(t *testing.T) {
	t.Parallel()

	words := []string{"quantum", "widgets"}
	assert.InDelta(t, 0.5, bestWordOverlap(words, []string{"Quantum mechanics"}), 1e-9)
	assert.InDelta(t, 1.0, bestWordOverlap(words, []string{"quantum widgets catalog"}), 1e-9)
	assert.InDelta(t, 0, bestWordOverlap(words, []string{"unrelated"}), 1e-9)
	assert.InDelta(t, 0, bestWordOverlap(nil, []string{"anything"}), 1e-9)
}
