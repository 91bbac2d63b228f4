package approval

import (
	"context"
	"fmt"

	"github.com/charmbracelet/huh"
)

// formWidth is the fixed form width. 80 columns keeps previews readable in
// any terminal.
const formWidth = 80

// previewLimit bounds how much of the work-in-progress the form shows.
const previewLimit = 1200

// Interactive collects a decision through a terminal form. Used by
// `publish --approve` when stdin is a TTY.
type Interactive struct{}

var _ Decider = Interactive{}

// Decide implements Decider.
func (Interactive) Decide(ctx context.Context, req Request) (Outcome, error) {
	decision := string(DecisionApprove)
	reason := ""

	title := fmt.Sprintf("Approval gate: %s", req.Gate)
	description := gateDescription(req)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title(title).
				Description(description).
				Options(
					huh.NewOption("Approve and continue", string(DecisionApprove)),
					huh.NewOption("Request changes (stop; rerun after editing the brief)", string(DecisionRequestChanges)),
					huh.NewOption("Reject the document", string(DecisionReject)),
				).
				Value(&decision),
			huh.NewInput().
				Title("Reason (optional):").
				Placeholder("Why, for the document record").
				Value(&reason),
		),
	).
		WithTheme(huh.ThemeCharm()).
		WithWidth(formWidth)

	if err := form.RunWithContext(ctx); err != nil {
		return Outcome{}, fmt.Errorf("running approval form: %w", err)
	}

	return Outcome{
		Decision: Decision(decision),
		Reason:   reason,
		Gate:     req.Gate,
	}, nil
}

// gateDescription summarizes what is being approved, with a trimmed preview.
func gateDescription(req Request) string {
	header := ""
	if req.Document != nil {
		header = fmt.Sprintf("Document %q (%s), state %s.", req.Document.Title, req.Document.PageName, req.Document.State)
	}
	preview := req.Preview
	if len(preview) > previewLimit {
		preview = preview[:previewLimit] + "\n[... truncated ...]"
	}
	if preview == "" {
		return header
	}
	if header == "" {
		return preview
	}
	return header + "\n\n" + preview
}
