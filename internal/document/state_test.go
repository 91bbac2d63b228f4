package document_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plumeworks/plume/internal/document"
)

func TestStateCanTransition(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		from document.State
		to   document.State
		want bool
	}{
		{"created to researching", document.StateCreated, document.StateResearching, true},
		{"researching to drafting", document.StateResearching, document.StateDrafting, true},
		{"drafting to fact checking", document.StateDrafting, document.StateFactChecking, true},
		{"fact checking to editing", document.StateFactChecking, document.StateEditing, true},
		{"editing to critiquing", document.StateEditing, document.StateCritiquing, true},
		{"critiquing to published", document.StateCritiquing, document.StatePublished, true},
		{"fact check revision edge", document.StateFactChecking, document.StateDrafting, true},
		{"critique revision edge", document.StateCritiquing, document.StateEditing, true},
		{"skip ahead is illegal", document.StateCreated, document.StateDrafting, false},
		{"backwards is illegal", document.StateEditing, document.StateResearching, false},
		{"self transition is illegal", document.StateDrafting, document.StateDrafting, false},
		{"reject from created", document.StateCreated, document.StateRejected, true},
		{"reject from critiquing", document.StateCritiquing, document.StateRejected, true},
		{"reject from awaiting approval", document.StateAwaitingApproval, document.StateRejected, true},
		{"suspend from drafting", document.StateDrafting, document.StateAwaitingApproval, true},
		{"published is terminal", document.StatePublished, document.StateRejected, false},
		{"rejected is terminal", document.StateRejected, document.StateResearching, false},
		{"unknown target", document.StateDrafting, document.State("LIMBO"), false},
		{"double suspend", document.StateAwaitingApproval, document.StateAwaitingApproval, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.from.CanTransition(tt.to))
		})
	}
}

func TestStateTerminal(t *testing.T) {
	t.Parallel()

	assert.True(t, document.StatePublished.Terminal())
	assert.True(t, document.StateRejected.Terminal())
	assert.False(t, document.StateCreated.Terminal())
	assert.False(t, document.StateAwaitingApproval.Terminal())
}

func TestDocumentTransitionHappyPath(t *testing.T) {
	t.Parallel()

	doc := document.NewDocument(document.TopicBrief{Topic: "Version Control Basics"})
	require.Equal(t, document.StateCreated, doc.State)

	path := []document.State{
		document.StateResearching,
		document.StateDrafting,
		document.StateFactChecking,
		document.StateEditing,
		document.StateCritiquing,
		document.StatePublished,
	}
	for _, next := range path {
		require.NoError(t, doc.Transition(next))
		assert.Equal(t, next, doc.State)
	}
}

func TestDocumentTransitionIllegal(t *testing.T) {
	t.Parallel()

	doc := document.NewDocument(document.TopicBrief{Topic: "Compound Interest"})

	err := doc.Transition(document.StateEditing)
	require.Error(t, err)

	var invalid *document.InvalidTransitionError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, document.StateCreated, invalid.From)
	assert.Equal(t, document.StateEditing, invalid.To)
	assert.Contains(t, err.Error(), "CREATED -> EDITING")

	// The failed attempt must not move the document.
	assert.Equal(t, document.StateCreated, doc.State)
}

func TestDocumentSuspendResume(t *testing.T) {
	t.Parallel()

	doc := document.NewDocument(document.TopicBrief{Topic: "Budgeting"})
	require.NoError(t, doc.Transition(document.StateResearching))
	require.NoError(t, doc.Transition(document.StateDrafting))

	require.NoError(t, doc.Suspend())
	assert.Equal(t, document.StateAwaitingApproval, doc.State)
	assert.Equal(t, document.StateDrafting, doc.ResumeState)

	require.NoError(t, doc.Resume())
	assert.Equal(t, document.StateDrafting, doc.State)
	assert.Empty(t, doc.ResumeState)

	// Resuming an unsuspended document is an error.
	err := doc.Resume()
	var invalid *document.InvalidTransitionError
	require.ErrorAs(t, err, &invalid)
}

func TestDocumentSuspendedCanAdvance(t *testing.T) {
	t.Parallel()

	doc := document.NewDocument(document.TopicBrief{Topic: "Budgeting"})
	require.NoError(t, doc.Transition(document.StateResearching))
	require.NoError(t, doc.Suspend())

	// While suspended from RESEARCHING, moves legal from RESEARCHING are
	// accepted directly.
	require.NoError(t, doc.Transition(document.StateDrafting))
	assert.Equal(t, document.StateDrafting, doc.State)
	assert.Empty(t, doc.ResumeState)
}

func TestDocumentSuspendedCanBeRejected(t *testing.T) {
	t.Parallel()

	doc := document.NewDocument(document.TopicBrief{Topic: "Budgeting"})
	require.NoError(t, doc.Transition(document.StateResearching))
	require.NoError(t, doc.Suspend())

	require.NoError(t, doc.Transition(document.StateRejected))
	assert.True(t, doc.State.Terminal())
}

func TestTerminalDocumentStaysPut(t *testing.T) {
	t.Parallel()

	doc := document.NewDocument(document.TopicBrief{Topic: "Budgeting"})
	require.NoError(t, doc.Transition(document.StateRejected))

	err := doc.Transition(document.StateResearching)
	require.Error(t, err)
	assert.True(t, errors.As(err, new(*document.InvalidTransitionError)))
}
