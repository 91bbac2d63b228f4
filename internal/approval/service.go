package approval

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/plumeworks/plume/internal/config"
	"github.com/plumeworks/plume/internal/logging"
)

// Service applies the configured gate mask. Enabled gates consult the
// decider while the document sits in AWAITING_APPROVAL; disabled gates
// approve without consulting anyone.
type Service struct {
	mask    map[Gate]bool
	decider Decider
	logger  *log.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithLogger overrides the default logger.
func WithLogger(logger *log.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService builds the gate mask from configuration. A nil decider means
// every enabled gate auto-approves.
func NewService(cfg config.ApprovalConfig, decider Decider, opts ...ServiceOption) *Service {
	if decider == nil {
		decider = AutoDecider{}
	}
	s := &Service{
		mask: map[Gate]bool{
			GateAfterResearch:  cfg.AfterResearch,
			GateAfterDraft:     cfg.AfterDraft,
			GateAfterFactCheck: cfg.AfterFactCheck,
			GateAfterEdit:      cfg.AfterEdit,
			GateBeforePublish:  cfg.BeforePublish,
		},
		decider: decider,
		logger:  logging.New("approval"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Enabled reports whether the gate pauses the pipeline.
func (s *Service) Enabled(gate Gate) bool {
	return s.mask[gate]
}

// Any reports whether any gate is enabled.
func (s *Service) Any() bool {
	for _, enabled := range s.mask {
		if enabled {
			return true
		}
	}
	return false
}

// CheckAndApprove resolves the gate. While the decider deliberates the
// document is suspended in AWAITING_APPROVAL and restored afterwards, so a
// crash mid-decision leaves a truthful state on disk.
func (s *Service) CheckAndApprove(ctx context.Context, req Request) (Outcome, error) {
	if !req.Gate.Valid() {
		return Outcome{}, fmt.Errorf("approval: unknown gate %q", req.Gate)
	}
	if !s.mask[req.Gate] {
		return Outcome{Decision: DecisionApprove, Gate: req.Gate}, nil
	}

	if req.Document != nil {
		if err := req.Document.Suspend(); err != nil {
			return Outcome{}, fmt.Errorf("approval: suspending document: %w", err)
		}
		s.logger.Info("awaiting approval", "gate", req.Gate, "document", req.Document.ID, "page", req.Document.PageName)
	}

	outcome, decideErr := s.decider.Decide(ctx, req)

	if req.Document != nil {
		if err := req.Document.Resume(); err != nil && decideErr == nil {
			return Outcome{}, fmt.Errorf("approval: resuming document: %w", err)
		}
	}
	if decideErr != nil {
		return Outcome{}, fmt.Errorf("approval: deciding at gate %s: %w", req.Gate, decideErr)
	}

	outcome.Gate = req.Gate
	if !outcome.Decision.Valid() {
		return Outcome{}, &UnknownDecisionError{Decision: outcome.Decision, Gate: req.Gate}
	}

	s.logger.Info("approval resolved", "gate", req.Gate, "decision", outcome.Decision, "reason", outcome.Reason)
	return outcome, nil
}
