// Package approval pauses the pipeline at configured gates and collects a
// decision before work continues. Gates that are not enabled in
// configuration approve automatically, so a fully unattended run never
// blocks.
package approval

import (
	"context"
	"fmt"

	"github.com/plumeworks/plume/internal/document"
)

// Decision is the reviewer's verdict at a gate.
type Decision string

const (
	DecisionApprove        Decision = "APPROVE"
	DecisionRequestChanges Decision = "REQUEST_CHANGES"
	DecisionReject         Decision = "REJECT"
)

var validDecisions = map[Decision]bool{
	DecisionApprove:        true,
	DecisionRequestChanges: true,
	DecisionReject:         true,
}

// Valid reports whether d is a recognized decision.
func (d Decision) Valid() bool {
	return validDecisions[d]
}

// Gate names a pause point in the pipeline.
type Gate string

const (
	GateAfterResearch  Gate = "after-research"
	GateAfterDraft     Gate = "after-draft"
	GateAfterFactCheck Gate = "after-factcheck"
	GateAfterEdit      Gate = "after-edit"
	GateBeforePublish  Gate = "before-publish"
)

var validGates = map[Gate]bool{
	GateAfterResearch:  true,
	GateAfterDraft:     true,
	GateAfterFactCheck: true,
	GateAfterEdit:      true,
	GateBeforePublish:  true,
}

// Valid reports whether g is a recognized gate.
func (g Gate) Valid() bool {
	return validGates[g]
}

// Gates returns every gate in pipeline order.
func Gates() []Gate {
	return []Gate{GateAfterResearch, GateAfterDraft, GateAfterFactCheck, GateAfterEdit, GateBeforePublish}
}

// Request carries what a decider needs to judge a gate.
type Request struct {
	Gate     Gate
	Document *document.Document
	// Preview is a short rendering of the work being approved, such as the
	// research brief or the article body.
	Preview string
}

// Outcome is the resolved decision for a gate.
type Outcome struct {
	Decision Decision `json:"decision"`
	Reason   string   `json:"reason,omitempty"`
	Gate     Gate     `json:"gate"`
}

// Approved reports whether the outcome lets the pipeline continue.
func (o Outcome) Approved() bool {
	return o.Decision == DecisionApprove
}

// Decider resolves approval requests.
type Decider interface {
	Decide(ctx context.Context, req Request) (Outcome, error)
}

// DeciderFunc adapts a function to the Decider interface.
type DeciderFunc func(ctx context.Context, req Request) (Outcome, error)

// Decide implements Decider.
func (f DeciderFunc) Decide(ctx context.Context, req Request) (Outcome, error) {
	return f(ctx, req)
}

// AutoDecider approves every request. It is the default for unattended runs.
type AutoDecider struct{}

var _ Decider = AutoDecider{}

// Decide implements Decider.
func (AutoDecider) Decide(_ context.Context, req Request) (Outcome, error) {
	return Outcome{Decision: DecisionApprove, Gate: req.Gate}, nil
}

// UnknownDecisionError reports a decider returning a value outside the enum.
type UnknownDecisionError struct {
	Decision Decision
	Gate     Gate
}

func (e *UnknownDecisionError) Error() string {
	return fmt.Sprintf("approval: unknown decision %q at gate %s", e.Decision, e.Gate)
}
