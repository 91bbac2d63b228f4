// Package document defines the publishing document: the single unit of work
// the pipeline moves through its lifecycle, the artifacts each agent attaches
// to it, and the state machine governing legal transitions.
package document

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/plumeworks/plume/internal/wiki"
)

// Document is the unit of work flowing through the publishing pipeline.
// Agents attach artifacts; the orchestrator owns all state transitions.
type Document struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	PageName string `json:"page_name"`
	State    State  `json:"state"`

	// ResumeState holds the pre-suspension state while the document sits in
	// AWAITING_APPROVAL, and is empty otherwise.
	ResumeState State `json:"resume_state,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Brief TopicBrief `json:"brief"`

	ResearchBrief   *ResearchBrief   `json:"research_brief,omitempty"`
	Draft           *ArticleDraft    `json:"draft,omitempty"`
	FactCheckReport *FactCheckReport `json:"fact_check_report,omitempty"`
	FinalArticle    *FinalArticle    `json:"final_article,omitempty"`
	CriticReport    *CriticReport    `json:"critic_report,omitempty"`

	Contributions []AgentContribution `json:"contributions"`

	// QualityAssessment is an advisory note recorded at publish time. It is
	// never read back by the pipeline.
	QualityAssessment string `json:"quality_assessment,omitempty"`

	// RevisionNotes carries reviewer feedback to the agent re-running a
	// phase during a revision cycle. Cleared once the cycle settles.
	RevisionNotes string `json:"revision_notes,omitempty"`
}

// AgentContribution records one completed agent invocation. Hashes are
// xxhash64 hex digests of the prompt and raw response.
type AgentContribution struct {
	Role           string           `json:"role"`
	Timestamp      time.Time        `json:"timestamp"`
	InputHash      string           `json:"input_hash"`
	OutputHash     string           `json:"output_hash"`
	ProcessingTime time.Duration    `json:"processing_time"`
	Metrics        map[string]int64 `json:"metrics,omitempty"`
}

// NewDocument creates a CREATED document for the given brief. The page name
// is derived from the topic once and stays stable for the document's life.
func NewDocument(brief TopicBrief) *Document {
	now := time.Now().UTC()
	title := strings.TrimSpace(brief.Topic)
	return &Document{
		ID:            uuid.NewString(),
		Title:         title,
		PageName:      wiki.CamelCase(title),
		State:         StateCreated,
		CreatedAt:     now,
		UpdatedAt:     now,
		Brief:         brief,
		Contributions: []AgentContribution{},
	}
}

// Transition moves the document to the given state, or returns an
// *InvalidTransitionError when the move is illegal. Exits from
// AWAITING_APPROVAL are judged against the suspended state.
func (d *Document) Transition(to State) error {
	from := d.State
	ok := from.CanTransition(to)
	if !ok && from == StateAwaitingApproval {
		ok = to == d.ResumeState || d.ResumeState.CanTransition(to)
	}
	if !ok {
		return &InvalidTransitionError{From: from, To: to}
	}
	if to == StateAwaitingApproval {
		d.ResumeState = from
	} else if from == StateAwaitingApproval {
		d.ResumeState = ""
	}
	d.State = to
	d.UpdatedAt = time.Now().UTC()
	return nil
}

// Suspend parks the document in AWAITING_APPROVAL, remembering where it was.
func (d *Document) Suspend() error {
	return d.Transition(StateAwaitingApproval)
}

// Resume restores the state the document was suspended from.
func (d *Document) Resume() error {
	if d.State != StateAwaitingApproval {
		return &InvalidTransitionError{From: d.State, To: d.ResumeState}
	}
	return d.Transition(d.ResumeState)
}

// AddContribution appends an agent contribution and touches UpdatedAt.
func (d *Document) AddContribution(c AgentContribution) {
	d.Contributions = append(d.Contributions, c)
	d.UpdatedAt = time.Now().UTC()
}

// ContributionsByRole counts recorded contributions per role.
func (d *Document) ContributionsByRole() map[string]int {
	counts := make(map[string]int, len(d.Contributions))
	for _, c := range d.Contributions {
		counts[c.Role]++
	}
	return counts
}
