// Package gap closes the wiki's link graph. It scans published pages for
// references to pages that do not exist yet, folds near-duplicate references
// together, classifies each gap, and hands the result to the stub generator.
package gap

import (
	"fmt"

	"github.com/plumeworks/plume/internal/wiki"
)

// Type classifies how a gap should be resolved.
type Type string

const (
	// TypeDefinition asks for a short definition stub.
	TypeDefinition Type = "DEFINITION"
	// TypeRedirect asks for an alias page pointing at an existing page.
	TypeRedirect Type = "REDIRECT"
	// TypeFullArticle flags the gap as deserving a full pipeline run.
	TypeFullArticle Type = "FULL_ARTICLE"
	// TypeIgnore marks the reference as not worth a page.
	TypeIgnore Type = "IGNORE"
)

var validTypes = map[Type]bool{
	TypeDefinition:  true,
	TypeRedirect:    true,
	TypeFullArticle: true,
	TypeIgnore:      true,
}

// Valid reports whether t is a recognized gap type.
func (t Type) Valid() bool {
	return validTypes[t]
}

// Concept is one unresolved reference found in the corpus.
type Concept struct {
	// Name is the reference as written, for example "compound interest".
	Name string `json:"name"`
	// PageName is the CamelCase page the stub would be written to.
	PageName string `json:"pageName"`
	// Type starts as a scan-time default and may be refined by the
	// categorizer.
	Type Type `json:"type"`
	// ReferencedBy lists the page stems that link to this concept, sorted.
	ReferencedBy []string `json:"referencedBy"`
	// RedirectTarget is the existing page a REDIRECT stub aliases.
	RedirectTarget string `json:"redirectTarget,omitempty"`
	// Category is an optional grouping assigned by the categorizer.
	Category string `json:"category,omitempty"`
}

// NewConcept builds a concept with its derived page name.
func NewConcept(name string, typ Type) Concept {
	return Concept{
		Name:     name,
		PageName: wiki.CamelCase(name),
		Type:     typ,
	}
}

// String renders the concept for logs.
func (c Concept) String() string {
	if c.RedirectTarget != "" {
		return fmt.Sprintf("%s (%s -> %s)", c.Name, c.Type, c.RedirectTarget)
	}
	return fmt.Sprintf("%s (%s)", c.Name, c.Type)
}
