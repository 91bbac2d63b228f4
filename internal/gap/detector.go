package gap

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/log"

	"github.com/plumeworks/plume/internal/logging"
	"github.com/plumeworks/plume/internal/wiki"
)

// PageSource is the corpus surface the detector reads: the output writer
// satisfies it.
type PageSource interface {
	DiscoverExistingPages() ([]string, error)
	ReadPage(stem string) (string, error)
}

// Detector scans the corpus for links to pages that do not exist.
type Detector struct {
	pages   PageSource
	matcher *Matcher
	logger  *log.Logger
}

// DetectorOption configures a Detector.
type DetectorOption func(*Detector)

// WithDetectorLogger overrides the default logger.
func WithDetectorLogger(logger *log.Logger) DetectorOption {
	return func(d *Detector) {
		d.logger = logger
	}
}

// NewDetector creates a detector over the given corpus.
func NewDetector(pages PageSource, opts ...DetectorOption) *Detector {
	d := &Detector{
		pages:   pages,
		matcher: NewMatcher(),
		logger:  logging.New("gap"),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Scan walks every page, extracts wiki links, and returns the unresolved
// references as concepts sorted by name. Scanning an unchanged corpus twice
// yields the same result.
func (d *Detector) Scan(ctx context.Context) ([]Concept, error) {
	stems, err := d.pages.DiscoverExistingPages()
	if err != nil {
		return nil, fmt.Errorf("gap: discovering pages: %w", err)
	}

	type entry struct {
		concept Concept
		refs    map[string]bool
	}
	found := make(map[string]*entry)

	for _, stem := range stems {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		content, err := d.pages.ReadPage(stem)
		if err != nil {
			d.logger.Warn("skipping unreadable page", "page", stem, "error", err)
			continue
		}

		for _, link := range wiki.ExtractLinks(content) {
			target := strings.TrimSpace(link.Target)
			if d.excluded(target) {
				continue
			}

			canonical := d.matcher.Canonical(target, stems)
			if canonical == target {
				// The page exists exactly as referenced.
				continue
			}

			concept := d.classify(target, canonical)
			key := d.matcher.Normalize(target)
			e, ok := found[key]
			if !ok {
				e = &entry{concept: concept, refs: make(map[string]bool)}
				found[key] = e
			} else if e.concept.Type == TypeDefinition && concept.Type == TypeRedirect {
				// A later spelling revealed an existing page to point at.
				e.concept.Type = TypeRedirect
				e.concept.RedirectTarget = concept.RedirectTarget
			}
			e.refs[stem] = true
		}
	}

	concepts := make([]Concept, 0, len(found))
	for _, e := range found {
		refs := make([]string, 0, len(e.refs))
		for ref := range e.refs {
			refs = append(refs, ref)
		}
		sort.Strings(refs)
		e.concept.ReferencedBy = refs
		concepts = append(concepts, e.concept)
	}
	sort.Slice(concepts, func(i, j int) bool { return concepts[i].Name < concepts[j].Name })

	d.logger.Debug("scan complete", "pages", len(stems), "gaps", len(concepts))
	return concepts, nil
}

// classify applies the scan-time default: a reference that resolves to an
// existing page under a different spelling becomes a REDIRECT, everything
// else starts as a DEFINITION awaiting categorization.
func (d *Detector) classify(target, canonical string) Concept {
	if canonical != "" && target != canonical && target != wiki.CamelCase(target) {
		c := NewConcept(target, TypeRedirect)
		c.RedirectTarget = canonical
		return c
	}
	return NewConcept(target, TypeDefinition)
}

// excluded filters link targets that can never be gaps: external URLs,
// namespace references, stopwords, and trivially short or numeric names.
func (d *Detector) excluded(target string) bool {
	if target == "" || wiki.IsURL(target) {
		return true
	}
	if strings.HasPrefix(target, "Category:") || strings.HasPrefix(target, "Wikipedia:") {
		return true
	}
	if utf8.RuneCountInString(target) <= 2 {
		return true
	}
	if wiki.IsStopword(target) {
		return true
	}
	norm := d.matcher.Normalize(target)
	return norm == "" || purelyNumeric(norm)
}

func purelyNumeric(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return s != ""
}
