package approval_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plumeworks/plume/internal/approval"
	"github.com/plumeworks/plume/internal/config"
	"github.com/plumeworks/plume/internal/document"
)

func draftingDoc() *document.Document {
	doc := document.NewDocument(document.TopicBrief{Topic: "Version Control Basics"})
	doc.State = document.StateDrafting
	return doc
}

func TestAutoDeciderApproves(t *testing.T) {
	t.Parallel()

	outcome, err := approval.AutoDecider{}.Decide(context.Background(), approval.Request{Gate: approval.GateAfterDraft})
	require.NoError(t, err)
	assert.Equal(t, approval.DecisionApprove, outcome.Decision)
	assert.Equal(t, approval.GateAfterDraft, outcome.Gate)
	assert.True(t, outcome.Approved())
}

func TestServiceMaskedOffGateSkipsDecider(t *testing.T) {
	t.Parallel()

	consulted := 0
	decider := approval.DeciderFunc(func(_ context.Context, req approval.Request) (approval.Outcome, error) {
		consulted++
		return approval.Outcome{Decision: approval.DecisionReject}, nil
	})

	svc := approval.NewService(config.ApprovalConfig{}, decider)
	doc := draftingDoc()

	outcome, err := svc.CheckAndApprove(context.Background(), approval.Request{
		Gate:     approval.GateAfterDraft,
		Document: doc,
	})
	require.NoError(t, err)
	assert.True(t, outcome.Approved())
	assert.Zero(t, consulted)
	assert.Equal(t, document.StateDrafting, doc.State)
	assert.False(t, svc.Any())
}

func TestServiceEnabledGateSuspendsDuringDecision(t *testing.T) {
	t.Parallel()

	var stateDuringDecision document.State
	decider := approval.DeciderFunc(func(_ context.Context, req approval.Request) (approval.Outcome, error) {
		stateDuringDecision = req.Document.State
		return approval.Outcome{Decision: approval.DecisionRequestChanges, Reason: "thin sourcing"}, nil
	})

	svc := approval.NewService(config.ApprovalConfig{AfterDraft: true}, decider)
	doc := draftingDoc()

	outcome, err := svc.CheckAndApprove(context.Background(), approval.Request{
		Gate:     approval.GateAfterDraft,
		Document: doc,
	})
	require.NoError(t, err)

	assert.Equal(t, document.StateAwaitingApproval, stateDuringDecision)
	assert.Equal(t, document.StateDrafting, doc.State)
	assert.Empty(t, doc.ResumeState)

	assert.Equal(t, approval.DecisionRequestChanges, outcome.Decision)
	assert.Equal(t, "thin sourcing", outcome.Reason)
	assert.Equal(t, approval.GateAfterDraft, outcome.Gate)
	assert.False(t, outcome.Approved())
	assert.True(t, svc.Any())
	assert.True(t, svc.Enabled(approval.GateAfterDraft))
	assert.False(t, svc.Enabled(approval.GateBeforePublish))
}

func TestServiceNilDeciderAutoApproves(t *testing.T) {
	t.Parallel()

	svc := approval.NewService(config.ApprovalConfig{BeforePublish: true}, nil)
	doc := draftingDoc()

	outcome, err := svc.CheckAndApprove(context.Background(), approval.Request{
		Gate:     approval.GateBeforePublish,
		Document: doc,
	})
	require.NoError(t, err)
	assert.True(t, outcome.Approved())
	assert.Equal(t, document.StateDrafting, doc.State)
}

func TestServiceDeciderErrorRestoresDocument(t *testing.T) {
	t.Parallel()

	decider := approval.DeciderFunc(func(_ context.Context, _ approval.Request) (approval.Outcome, error) {
		return approval.Outcome{}, errors.New("terminal closed")
	})

	svc := approval.NewService(config.ApprovalConfig{AfterEdit: true}, decider)
	doc := draftingDoc()
	doc.State = document.StateEditing

	_, err := svc.CheckAndApprove(context.Background(), approval.Request{
		Gate:     approval.GateAfterEdit,
		Document: doc,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "deciding at gate after-edit")
	assert.Equal(t, document.StateEditing, doc.State)
}

func TestServiceRejectsUnknownDecision(t *testing.T) {
	t.Parallel()

	decider := approval.DeciderFunc(func(_ context.Context, _ approval.Request) (approval.Outcome, error) {
		return approval.Outcome{Decision: approval.Decision("MAYBE")}, nil
	})

	svc := approval.NewService(config.ApprovalConfig{AfterResearch: true}, decider)
	doc := draftingDoc()
	doc.State = document.StateResearching

	_, err := svc.CheckAndApprove(context.Background(), approval.Request{
		Gate:     approval.GateAfterResearch,
		Document: doc,
	})
	require.Error(t, err)

	var unknownErr *approval.UnknownDecisionError
	require.ErrorAs(t, err, &unknownErr)
	assert.Equal(t, approval.Decision("MAYBE"), unknownErr.Decision)
	assert.Equal(t, document.StateResearching, doc.State)
}

func TestServiceRejectsUnknownGate(t *testing.T) {
	t.Parallel()

	svc := approval.NewService(config.ApprovalConfig{}, nil)
	_, err := svc.CheckAndApprove(context.Background(), approval.Request{Gate: approval.Gate("mid-lunch")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown gate "mid-lunch"`)
}

func TestGates(t *testing.T) {
	t.Parallel()

	gates := approval.Gates()
	assert.Equal(t, []approval.Gate{
		approval.GateAfterResearch,
		approval.GateAfterDraft,
		approval.GateAfterFactCheck,
		approval.GateAfterEdit,
		approval.GateBeforePublish,
	}, gates)
	for _, g := range gates {
		assert.True(t, g.Valid(), "gate %s", g)
	}
	assert.False(t, approval.Gate("mid-lunch").Valid())
}
