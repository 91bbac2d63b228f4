// Package monitor carries progress events from the pipeline to whoever wants
// them: structured logs, token tallies, the progress TUI. Producers never
// block on slow consumers.
package monitor

import (
	"time"

	"github.com/plumeworks/plume/internal/document"
)

// EventType identifies what happened.
type EventType string

const (
	EventRunStarted        EventType = "run_started"
	EventPhaseStarted      EventType = "phase_started"
	EventPhaseCompleted    EventType = "phase_completed"
	EventRevisionStarted   EventType = "revision_started"
	EventApprovalRequested EventType = "approval_requested"
	EventApprovalResolved  EventType = "approval_resolved"
	EventDocumentPublished EventType = "document_published"
	EventRunFailed         EventType = "run_failed"
)

// Event is one observation of pipeline progress. Fields beyond Type,
// DocumentID, and Timestamp are populated when they apply.
type Event struct {
	Type       EventType      `json:"type"`
	DocumentID string         `json:"document_id"`
	PageName   string         `json:"page_name,omitempty"`
	State      document.State `json:"state,omitempty"`
	Role       string         `json:"role,omitempty"`
	Message    string         `json:"message,omitempty"`

	Duration     time.Duration `json:"duration,omitempty"`
	InputTokens  int           `json:"input_tokens,omitempty"`
	OutputTokens int           `json:"output_tokens,omitempty"`

	Timestamp time.Time `json:"timestamp"`
}
