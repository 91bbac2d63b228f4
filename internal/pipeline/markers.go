package pipeline

import (
	"fmt"
	"strings"

	"github.com/plumeworks/plume/internal/document"
)

// Marker delimiters for issues left unresolved when a revision loop runs
// out of cycles. Wiki maintainers grep for these.
const (
	factCheckFailBegin = "__FACT CHECK FAIL BEGIN__"
	factCheckFailEnd   = "__FACT CHECK FAIL END__"
	critiqueNotesBegin = "__CRITIQUE REVIEW NOTES BEGIN__"
	critiqueNotesEnd   = "__CRITIQUE REVIEW NOTES END__"
)

// factCheckMarker renders the unresolved fact-check issues as a delimited
// block for embedding into the draft.
func factCheckMarker(report *document.FactCheckReport, cycles int) string {
	var b strings.Builder
	b.WriteString(factCheckFailBegin + "\n")
	for i, claim := range report.QuestionableClaims {
		fmt.Fprintf(&b, "%d. Questionable Claim: %s\n", i+1, claim.Claim)
		fmt.Fprintf(&b, "   Issue: %s\n", claim.Issue)
		if claim.Suggestion != "" {
			fmt.Fprintf(&b, "   Suggestion: %s\n", claim.Suggestion)
		}
	}
	if len(report.ConsistencyIssues) > 0 {
		b.WriteString("Consistency Issues:\n")
		for _, issue := range report.ConsistencyIssues {
			fmt.Fprintf(&b, "* %s\n", issue)
		}
	}
	fmt.Fprintf(&b, "Unresolved after %d revision attempts.\n", cycles)
	b.WriteString(factCheckFailEnd)
	return b.String()
}

// critiqueMarker renders the critic's outstanding findings as a delimited
// block for embedding into the final article. Empty sections are omitted.
func critiqueMarker(report *document.CriticReport, cycles int) string {
	var b strings.Builder
	b.WriteString(critiqueNotesBegin + "\n")
	writeIssueSection(&b, "Syntax Issues:", report.SyntaxIssues)
	writeIssueSection(&b, "Structure Issues:", report.StructureIssues)
	writeIssueSection(&b, "Style Issues:", report.StyleIssues)
	writeIssueSection(&b, "Suggestions:", report.Suggestions)
	fmt.Fprintf(&b, "Unresolved after %d revision attempts.\n", cycles)
	b.WriteString(critiqueNotesEnd)
	return b.String()
}

func writeIssueSection(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	b.WriteString(title + "\n")
	for _, item := range items {
		fmt.Fprintf(b, "* %s\n", item)
	}
}

// appendMarkerBlock attaches a marker block after the content, separated by
// one blank line.
func appendMarkerBlock(content, block string) string {
	return strings.TrimRight(content, "\n") + "\n\n" + block
}

// factCheckRevisionNotes turns a REVISE report into working notes for the
// writer's re-run.
func factCheckRevisionNotes(report *document.FactCheckReport) string {
	var b strings.Builder
	b.WriteString("The fact checker flagged these problems:\n")
	for i, claim := range report.QuestionableClaims {
		fmt.Fprintf(&b, "%d. %s: %s", i+1, claim.Claim, claim.Issue)
		if claim.Suggestion != "" {
			fmt.Fprintf(&b, " (suggestion: %s)", claim.Suggestion)
		}
		b.WriteString("\n")
	}
	if len(report.ConsistencyIssues) > 0 {
		b.WriteString("Consistency issues:\n")
		for _, issue := range report.ConsistencyIssues {
			fmt.Fprintf(&b, "- %s\n", issue)
		}
	}
	b.WriteString("Rework the draft so every flagged claim is either corrected, properly hedged, or removed.")
	return b.String()
}

// critiqueRevisionNotes turns a REVISE critique into working notes for the
// editor's re-run.
func critiqueRevisionNotes(report *document.CriticReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "The critic scored the article %.2f overall (structure %.2f, syntax %.2f, style %.2f) and asked for changes:\n",
		report.Overall, report.Structure, report.Syntax, report.Style)
	for _, section := range []struct {
		title string
		items []string
	}{
		{"Syntax", report.SyntaxIssues},
		{"Structure", report.StructureIssues},
		{"Style", report.StyleIssues},
		{"Suggestions", report.Suggestions},
	} {
		for _, item := range section.items {
			fmt.Fprintf(&b, "- %s: %s\n", section.title, item)
		}
	}
	b.WriteString("Address each point without changing the article's factual content.")
	return b.String()
}
