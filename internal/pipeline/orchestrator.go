// Package pipeline chains the five agent phases into a publishing run:
// research, draft, fact-check, edit, critique, publish. The orchestrator
// owns every document state transition, the revision loops, and the
// approval gates between phases.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/plumeworks/plume/internal/agent"
	"github.com/plumeworks/plume/internal/approval"
	"github.com/plumeworks/plume/internal/config"
	"github.com/plumeworks/plume/internal/document"
	"github.com/plumeworks/plume/internal/logging"
	"github.com/plumeworks/plume/internal/monitor"
	"github.com/plumeworks/plume/internal/output"
	"github.com/plumeworks/plume/internal/store"
)

// Agents bundles the five roles a run needs, in pipeline order.
type Agents struct {
	Researcher  agent.Agent
	Writer      agent.Agent
	FactChecker agent.Agent
	Editor      agent.Agent
	Critic      agent.Agent
}

// Result is the outcome of one Execute call. Domain failures land here with
// Success false; Execute returns a non-nil error only for context
// cancellation.
type Result struct {
	Success            bool               `json:"success"`
	Document           *document.Document `json:"document,omitempty"`
	OutputPath         string             `json:"output_path,omitempty"`
	ErrorMessage       string             `json:"error_message,omitempty"`
	FailedAtState      document.State     `json:"failed_at_state,omitempty"`
	FailedDocumentPath string             `json:"failed_document_path,omitempty"`
	TotalTime          time.Duration      `json:"total_time"`
}

// Orchestrator runs publishing documents through the agent phases.
type Orchestrator struct {
	agents    Agents
	approvals *approval.Service
	writer    *output.Writer
	docs      *store.DocumentStore
	events    *monitor.Monitor
	pipeline  config.PipelineConfig
	quality   config.QualityConfig
	clock     func() time.Time
	logger    *log.Logger
}

// Option is a functional option for configuring an Orchestrator.
type Option func(*Orchestrator)

// WithLogger replaces the default component logger.
func WithLogger(logger *log.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithClock injects the time source, letting tests pin durations.
func WithClock(clock func() time.Time) Option {
	return func(o *Orchestrator) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// WithStore attaches a document store; every state change is persisted
// through it. Without a store the run is in-memory only.
func WithStore(docs *store.DocumentStore) Option {
	return func(o *Orchestrator) {
		o.docs = docs
	}
}

// WithMonitor attaches the event monitor progress listeners subscribe to.
func WithMonitor(m *monitor.Monitor) Option {
	return func(o *Orchestrator) {
		if m != nil {
			o.events = m
		}
	}
}

// NewOrchestrator builds an orchestrator from its collaborators. A nil
// approval service runs every gate on the config mask with automatic
// approval.
func NewOrchestrator(
	agents Agents,
	approvals *approval.Service,
	writer *output.Writer,
	cfg *config.Config,
	opts ...Option,
) *Orchestrator {
	if approvals == nil {
		approvals = approval.NewService(cfg.Pipeline.Approval, nil)
	}
	o := &Orchestrator{
		agents:    agents,
		approvals: approvals,
		writer:    writer,
		events:    monitor.New(),
		pipeline:  cfg.Pipeline,
		quality:   cfg.Quality,
		clock:     time.Now,
		logger:    logging.New("pipeline"),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Execute runs one document from brief to published page. The returned
// error is non-nil only when the context was cancelled or timed out from
// outside; every domain failure is reported through the Result.
func (o *Orchestrator) Execute(ctx context.Context, brief document.TopicBrief) (*Result, error) {
	start := o.clock()
	doc := document.NewDocument(brief)

	o.logger.Info("run started", "document", doc.ID, "title", doc.Title, "page", doc.PageName)
	o.events.Notify(monitor.Event{
		Type:       monitor.EventRunStarted,
		DocumentID: doc.ID,
		PageName:   doc.PageName,
		State:      doc.State,
		Message:    doc.Title,
	})

	res, err := o.run(ctx, doc)
	if err != nil {
		return nil, err
	}
	res.TotalTime = o.clock().Sub(start)
	return res, nil
}

// run walks the phase sequence. Each helper returns a non-nil Result when
// the run settled (failure or, from publish, success) and a non-nil error
// only on cancellation.
func (o *Orchestrator) run(ctx context.Context, doc *document.Document) (*Result, error) {
	if res, err := o.phase(ctx, doc, document.StateResearching, o.agents.Researcher); res != nil || err != nil {
		return res, err
	}
	if res, err := o.gate(ctx, doc, approval.GateAfterResearch); res != nil || err != nil {
		return res, err
	}

	if res, err := o.phase(ctx, doc, document.StateDrafting, o.agents.Writer); res != nil || err != nil {
		return res, err
	}
	if res, err := o.gate(ctx, doc, approval.GateAfterDraft); res != nil || err != nil {
		return res, err
	}

	if res, err := o.factCheckLoop(ctx, doc); res != nil || err != nil {
		return res, err
	}
	if res, err := o.gate(ctx, doc, approval.GateAfterFactCheck); res != nil || err != nil {
		return res, err
	}

	if res, err := o.phase(ctx, doc, document.StateEditing, o.agents.Editor); res != nil || err != nil {
		return res, err
	}
	if res, err := o.gate(ctx, doc, approval.GateAfterEdit); res != nil || err != nil {
		return res, err
	}

	if res, err := o.critiqueLoop(ctx, doc); res != nil || err != nil {
		return res, err
	}
	if res, err := o.gate(ctx, doc, approval.GateBeforePublish); res != nil || err != nil {
		return res, err
	}

	return o.publish(doc)
}

// phase transitions the document into the phase state and runs the agent
// under the phase timeout. Validation is judged by the agent itself.
func (o *Orchestrator) phase(ctx context.Context, doc *document.Document, state document.State, ag agent.Agent) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := doc.Transition(state); err != nil {
		return o.fail(doc, doc.State, err, "INVALID_TRANSITION: "+err.Error()), nil
	}
	o.persist(doc)

	role := string(ag.Role())
	started := o.clock()
	o.logger.Info("phase started", "document", doc.ID, "state", state, "role", role)
	o.events.Notify(monitor.Event{
		Type:       monitor.EventPhaseStarted,
		DocumentID: doc.ID,
		PageName:   doc.PageName,
		State:      state,
		Role:       role,
	})

	phaseCtx := ctx
	cancel := func() {}
	if timeout := o.pipeline.PhaseTimeout.Duration; timeout > 0 {
		phaseCtx, cancel = context.WithTimeout(ctx, timeout)
	}
	err := ag.Process(phaseCtx, doc)
	cancel()

	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return o.fail(doc, state, err, ""), nil
	}
	if !ag.Validate(doc) {
		cause := o.validationFailure(doc, role)
		return o.fail(doc, state, cause, ""), nil
	}
	o.persist(doc)

	in, out := lastUsage(doc, role)
	o.logger.Info("phase completed", "document", doc.ID, "state", state, "role", role)
	o.events.Notify(monitor.Event{
		Type:         monitor.EventPhaseCompleted,
		DocumentID:   doc.ID,
		PageName:     doc.PageName,
		State:        state,
		Role:         role,
		Duration:     o.clock().Sub(started),
		InputTokens:  in,
		OutputTokens: out,
	})
	return nil, nil
}

// factCheckLoop runs the fact-checker and, on REVISE, cycles the writer and
// fact-checker until the report approves or max_revision_cycles is spent.
// An APPROVE below the configured confidence floor is downgraded to REVISE;
// exhaustion embeds the unresolved issues into the draft and continues.
func (o *Orchestrator) factCheckLoop(ctx context.Context, doc *document.Document) (*Result, error) {
	if res, err := o.phase(ctx, doc, document.StateFactChecking, o.agents.FactChecker); res != nil || err != nil {
		return res, err
	}

	maxCycles := o.pipeline.MaxRevisionCycles
	for revisions := 0; ; {
		report := doc.FactCheckReport
		action := report.RecommendedAction
		if action == document.ActionApprove && !o.confidenceMet(report.OverallConfidence) {
			o.logger.Warn("fact-check approval below confidence floor, revising",
				"confidence", report.OverallConfidence, "floor", o.quality.MinFactCheckConfidence)
			action = document.ActionRevise
		}

		switch action {
		case document.ActionApprove:
			return nil, nil
		case document.ActionReject:
			return o.fail(doc, doc.State, errors.New("fact check rejected the draft"), ""), nil
		}

		if revisions >= maxCycles {
			doc.Draft.WikiContent = appendMarkerBlock(doc.Draft.WikiContent, factCheckMarker(report, maxCycles))
			o.logger.Warn("fact-check revisions exhausted, annotating draft",
				"document", doc.ID, "cycles", maxCycles)
			return nil, nil
		}
		revisions++
		o.events.Notify(monitor.Event{
			Type:       monitor.EventRevisionStarted,
			DocumentID: doc.ID,
			PageName:   doc.PageName,
			State:      doc.State,
			Role:       string(agent.RoleWriter),
			Message:    fmt.Sprintf("fact-check revision %d of %d", revisions, maxCycles),
		})

		doc.RevisionNotes = factCheckRevisionNotes(report)
		if res, err := o.phase(ctx, doc, document.StateDrafting, o.agents.Writer); res != nil || err != nil {
			return res, err
		}
		doc.RevisionNotes = ""
		if res, err := o.phase(ctx, doc, document.StateFactChecking, o.agents.FactChecker); res != nil || err != nil {
			return res, err
		}
	}
}

// critiqueLoop mirrors factCheckLoop for the critic: REVISE cycles the
// editor and critic, exhaustion embeds the critique into the final article.
func (o *Orchestrator) critiqueLoop(ctx context.Context, doc *document.Document) (*Result, error) {
	if res, err := o.phase(ctx, doc, document.StateCritiquing, o.agents.Critic); res != nil || err != nil {
		return res, err
	}

	maxCycles := o.pipeline.MaxRevisionCycles
	for revisions := 0; ; {
		report := doc.CriticReport
		switch report.RecommendedAction {
		case document.ActionApprove:
			return nil, nil
		case document.ActionReject:
			return o.fail(doc, doc.State, errors.New("critic rejected the article"), ""), nil
		}

		if revisions >= maxCycles {
			doc.FinalArticle.WikiContent = appendMarkerBlock(doc.FinalArticle.WikiContent, critiqueMarker(report, maxCycles))
			o.logger.Warn("critique revisions exhausted, annotating article",
				"document", doc.ID, "cycles", maxCycles)
			return nil, nil
		}
		revisions++
		o.events.Notify(monitor.Event{
			Type:       monitor.EventRevisionStarted,
			DocumentID: doc.ID,
			PageName:   doc.PageName,
			State:      doc.State,
			Role:       string(agent.RoleEditor),
			Message:    fmt.Sprintf("critique revision %d of %d", revisions, maxCycles),
		})

		doc.RevisionNotes = critiqueRevisionNotes(report)
		if res, err := o.phase(ctx, doc, document.StateEditing, o.agents.Editor); res != nil || err != nil {
			return res, err
		}
		doc.RevisionNotes = ""
		if res, err := o.phase(ctx, doc, document.StateCritiquing, o.agents.Critic); res != nil || err != nil {
			return res, err
		}
	}
}

// gate consults one approval gate. Gates masked off in config cost nothing.
func (o *Orchestrator) gate(ctx context.Context, doc *document.Document, g approval.Gate) (*Result, error) {
	if !o.approvals.Enabled(g) {
		return nil, nil
	}

	o.events.Notify(monitor.Event{
		Type:       monitor.EventApprovalRequested,
		DocumentID: doc.ID,
		PageName:   doc.PageName,
		State:      doc.State,
		Message:    string(g),
	})

	outcome, err := o.approvals.CheckAndApprove(ctx, approval.Request{
		Gate:     g,
		Document: doc,
		Preview:  gatePreview(doc),
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return o.fail(doc, doc.State, fmt.Errorf("approval at gate %s: %w", g, err), ""), nil
	}

	o.events.Notify(monitor.Event{
		Type:       monitor.EventApprovalResolved,
		DocumentID: doc.ID,
		PageName:   doc.PageName,
		State:      doc.State,
		Message:    fmt.Sprintf("%s: %s", g, outcome.Decision),
	})

	switch outcome.Decision {
	case approval.DecisionRequestChanges:
		return o.fail(doc, doc.State, errors.New(gateMessage("CHANGES_REQUESTED", g, outcome.Reason)), ""), nil
	case approval.DecisionReject:
		return o.fail(doc, doc.State, errors.New(gateMessage("APPROVAL_REJECTED", g, outcome.Reason)), ""), nil
	}
	return nil, nil
}

// publish writes the page, then transitions to PUBLISHED. The published
// state is only ever reached by a materialized artifact: a write failure
// fails the run at CRITIQUING.
func (o *Orchestrator) publish(doc *document.Document) (*Result, error) {
	path, err := o.writer.WritePage(doc.PageName, doc.FinalArticle.WikiContent)
	if err != nil {
		return o.fail(doc, doc.State, fmt.Errorf("writing page: %w", err), ""), nil
	}
	if err := doc.Transition(document.StatePublished); err != nil {
		return o.fail(doc, doc.State, err, "INVALID_TRANSITION: "+err.Error()), nil
	}
	if doc.CriticReport != nil {
		doc.QualityAssessment = fmt.Sprintf("critic overall %.2f (structure %.2f, syntax %.2f, style %.2f)",
			doc.CriticReport.Overall, doc.CriticReport.Structure, doc.CriticReport.Syntax, doc.CriticReport.Style)
	}
	o.persist(doc)

	o.logger.Info("document published", "document", doc.ID, "page", doc.PageName, "path", path)
	o.events.Notify(monitor.Event{
		Type:       monitor.EventDocumentPublished,
		DocumentID: doc.ID,
		PageName:   doc.PageName,
		State:      doc.State,
		Message:    path,
	})
	return &Result{Success: true, Document: doc, OutputPath: path}, nil
}

// fail settles the run: debug artifact, REJECTED transition, persistence,
// failure event. The message defaults to the cause's text.
func (o *Orchestrator) fail(doc *document.Document, failedState document.State, cause error, message string) *Result {
	if message == "" {
		message = cause.Error()
	}
	o.logger.Error("run failed", "document", doc.ID, "state", failedState, "error", cause)

	res := &Result{
		Document:      doc,
		ErrorMessage:  message,
		FailedAtState: failedState,
	}
	if path, err := o.writer.WriteDebugArtifact(doc, failedState, cause, o.clock()); err != nil {
		o.logger.Warn("writing debug artifact", "document", doc.ID, "error", err)
	} else {
		res.FailedDocumentPath = path
	}

	if doc.State != document.StateRejected {
		if err := doc.Transition(document.StateRejected); err != nil {
			o.logger.Warn("marking document rejected", "document", doc.ID, "error", err)
		}
	}
	o.persist(doc)

	o.events.Notify(monitor.Event{
		Type:       monitor.EventRunFailed,
		DocumentID: doc.ID,
		PageName:   doc.PageName,
		State:      failedState,
		Message:    message,
	})
	return res
}

// persist saves the document when a store is attached. Persistence failures
// are logged, never fatal: the run itself is the source of truth.
func (o *Orchestrator) persist(doc *document.Document) {
	if o.docs == nil {
		return
	}
	if err := o.docs.Save(doc); err != nil {
		o.logger.Warn("persisting document", "document", doc.ID, "error", err)
	}
}

// confidenceMet reports whether the fact-checker's confidence reaches the
// configured floor. An unrecognized floor never blocks.
func (o *Orchestrator) confidenceMet(c document.Confidence) bool {
	floor := document.Confidence(strings.ToUpper(strings.TrimSpace(o.quality.MinFactCheckConfidence)))
	if !floor.Valid() {
		return true
	}
	return c.Rank() >= floor.Rank()
}

// validationFailure builds the cause for an agent whose output failed its
// own Validate. The editor case names the score so the message is
// actionable.
func (o *Orchestrator) validationFailure(doc *document.Document, role string) error {
	if role == string(agent.RoleEditor) && doc.FinalArticle != nil {
		if score := doc.FinalArticle.QualityScore; score < o.quality.MinEditorScore {
			return fmt.Errorf("Quality score %.2f is below the configured minimum %.2f", score, o.quality.MinEditorScore)
		}
	}
	return fmt.Errorf("%s output failed validation", role)
}

// gatePreview picks the most finished artifact for an approval prompt.
func gatePreview(doc *document.Document) string {
	switch {
	case doc.FinalArticle != nil:
		return doc.FinalArticle.WikiContent
	case doc.Draft != nil:
		return doc.Draft.WikiContent
	case doc.ResearchBrief != nil:
		return strings.Join(doc.ResearchBrief.KeyFacts, "\n")
	}
	return ""
}

// gateMessage formats a human-decided failure, naming the gate and carrying
// the decider's reason when one was given.
func gateMessage(code string, g approval.Gate, reason string) string {
	msg := fmt.Sprintf("%s at gate %s", code, g)
	if reason != "" {
		msg += ": " + reason
	}
	return msg
}

// lastUsage reads the token counts off the most recent contribution for a
// role.
func lastUsage(doc *document.Document, role string) (inputTokens, outputTokens int) {
	for i := len(doc.Contributions) - 1; i >= 0; i-- {
		if doc.Contributions[i].Role == role {
			m := doc.Contributions[i].Metrics
			return int(m["input_tokens"]), int(m["output_tokens"])
		}
	}
	return 0, 0
}
