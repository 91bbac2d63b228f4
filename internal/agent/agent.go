// Package agent implements the five specialist agents of the publishing
// pipeline and the shared runtime they invoke the language model through.
// Each agent reads the artifacts earlier phases attached to a document,
// produces its own, and validates the result; retry, JSON parsing, and
// contribution accounting are handled once in the Runtime.
package agent

import (
	"context"
	"fmt"

	"github.com/plumeworks/plume/internal/document"
)

// Role identifies which specialist an agent is.
type Role string

const (
	RoleResearcher  Role = "researcher"
	RoleWriter      Role = "writer"
	RoleFactChecker Role = "factchecker"
	RoleEditor      Role = "editor"
	RoleCritic      Role = "critic"
)

var validRoles = map[Role]bool{
	RoleResearcher:  true,
	RoleWriter:      true,
	RoleFactChecker: true,
	RoleEditor:      true,
	RoleCritic:      true,
}

// Valid reports whether r is a recognized role.
func (r Role) Valid() bool {
	return validRoles[r]
}

// Roles returns every role in pipeline order.
func Roles() []Role {
	return []Role{RoleResearcher, RoleWriter, RoleFactChecker, RoleEditor, RoleCritic}
}

// Agent is one pipeline specialist. Process reads and mutates the document's
// artifacts; Validate judges whether the artifact Process attached satisfies
// the agent's own standards.
type Agent interface {
	Role() Role
	Process(ctx context.Context, doc *document.Document) error
	Validate(doc *document.Document) bool
}

// PageSource supplies the stems of already-published pages at invocation
// time, letting drafting agents link into the existing corpus. Errors are
// not part of the contract; implementations log and return nil on failure.
type PageSource func() []string

// Error wraps a failure with the role it happened in.
type Error struct {
	Role Role
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("agent %s: %v", e.Role, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
