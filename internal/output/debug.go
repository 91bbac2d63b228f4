package output

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/plumeworks/plume/internal/document"
)

// debugTimestampLayout names failure artifacts down to the second.
const debugTimestampLayout = "20060102_150405"

// WriteDebugArtifact preserves a failed run's working material next to the
// published pages: banner, error, fact-check issues when present, the last
// available draft, and a summary of the research brief. The file name embeds
// the failure state and timestamp so discovery can skip it.
func (w *Writer) WriteDebugArtifact(doc *document.Document, failedState document.State, cause error, now time.Time) (string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("output: creating %s: %w", w.dir, err)
	}

	name := fmt.Sprintf("%s%s%s_%s%s",
		w.stem(doc.PageName), debugMarker, failedState, now.UTC().Format(debugTimestampLayout), w.ext)
	path := filepath.Join(w.dir, name)

	if err := os.WriteFile(path, []byte(debugArtifactContent(doc, failedState, cause, now)), 0o644); err != nil {
		return "", fmt.Errorf("output: writing %s: %w", name, err)
	}
	w.logger.Debug("wrote debug artifact", "path", path, "state", failedState)
	return path, nil
}

func debugArtifactContent(doc *document.Document, failedState document.State, cause error, now time.Time) string {
	var b strings.Builder

	b.WriteString("!!!Pipeline Failure Report\n\n")
	fmt.Fprintf(&b, "* Page: %s\n", doc.PageName)
	fmt.Fprintf(&b, "* Document: %s\n", doc.ID)
	fmt.Fprintf(&b, "* Failed at: %s\n", failedState)
	fmt.Fprintf(&b, "* Time: %s\n", now.UTC().Format("2006-01-02 15:04:05 MST"))
	if cause != nil {
		fmt.Fprintf(&b, "* Error: %s\n", cause.Error())
	}

	if rep := doc.FactCheckReport; rep.HasIssues() {
		b.WriteString("\n!!Fact-Check Issues\n")
		for _, qc := range rep.QuestionableClaims {
			fmt.Fprintf(&b, "* Claim: %s -- Issue: %s", qc.Claim, qc.Issue)
			if qc.Suggestion != "" {
				fmt.Fprintf(&b, " (Suggestion: %s)", qc.Suggestion)
			}
			b.WriteString("\n")
		}
		for _, issue := range rep.ConsistencyIssues {
			fmt.Fprintf(&b, "* Consistency: %s\n", issue)
		}
	}

	if body := lastKnownContent(doc); body != "" {
		b.WriteString("\n!!Last Draft\n\n")
		b.WriteString(strings.TrimRight(body, "\n"))
		b.WriteString("\n")
	}

	if brief := doc.ResearchBrief; brief != nil {
		b.WriteString("\n!!Research Brief Summary\n")
		if len(brief.KeyFacts) > 0 {
			b.WriteString("Key facts:\n")
			for _, f := range brief.KeyFacts {
				fmt.Fprintf(&b, "* %s\n", f)
			}
		}
		if len(brief.SuggestedOutline) > 0 {
			b.WriteString("Outline:\n")
			for _, section := range brief.SuggestedOutline {
				fmt.Fprintf(&b, "* %s\n", section)
			}
		}
		if len(brief.Sources) > 0 {
			fmt.Fprintf(&b, "Sources: %s\n", summarizeSources(brief.Sources))
		}
	}

	return b.String()
}

// lastKnownContent returns the most advanced article body the run produced.
func lastKnownContent(doc *document.Document) string {
	if doc.FinalArticle != nil && strings.TrimSpace(doc.FinalArticle.WikiContent) != "" {
		return doc.FinalArticle.WikiContent
	}
	if doc.Draft != nil {
		return doc.Draft.WikiContent
	}
	return ""
}

// summarizeSources renders "3 (2 REPUTABLE, 1 OFFICIAL)" style counts,
// highest reliability first.
func summarizeSources(sources []document.Source) string {
	counts := make(map[document.Reliability]int)
	for _, s := range sources {
		counts[s.Reliability]++
	}
	grades := make([]document.Reliability, 0, len(counts))
	for g := range counts {
		grades = append(grades, g)
	}
	sort.Slice(grades, func(i, j int) bool {
		if grades[i].Rank() == grades[j].Rank() {
			return grades[i] < grades[j]
		}
		return grades[i].Rank() > grades[j].Rank()
	})
	parts := make([]string, 0, len(grades))
	for _, g := range grades {
		label := string(g)
		if label == "" {
			label = "UNGRADED"
		}
		parts = append(parts, fmt.Sprintf("%d %s", counts[g], label))
	}
	return fmt.Sprintf("%d (%s)", len(sources), strings.Join(parts, ", "))
}
