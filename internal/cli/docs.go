package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/plumeworks/plume/internal/document"
	"github.com/plumeworks/plume/internal/store"
	"github.com/plumeworks/plume/internal/wiki"
)

// newDocsCmd creates the "plume docs" command group.
func newDocsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "docs",
		Short: "Inspect persisted pipeline documents",
		Long: `Inspect the document records the pipeline persists after every phase.

Each publish run leaves one record behind, including failed and rejected
runs, so earlier work stays inspectable after the process exits.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(newDocsListCmd())
	cmd.AddCommand(newDocsShowCmd())
	cmd.AddCommand(newDocsDeleteCmd())
	return cmd
}

func init() {
	rootCmd.AddCommand(newDocsCmd())
}

// newDocsListCmd creates "plume docs list".
func newDocsListCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List persisted documents, most recent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			docs, err := store.NewDocumentStore(documentsDir)
			if err != nil {
				return err
			}
			summaries, err := docs.Summaries()
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), summaries)
			}
			renderDocsTable(cmd.OutOrStdout(), summaries)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit summaries as JSON instead of a table")
	return cmd
}

// newDocsShowCmd creates "plume docs show".
func newDocsShowCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <document-id>",
		Short: "Show one persisted document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			docs, err := store.NewDocumentStore(documentsDir)
			if err != nil {
				return err
			}
			doc, err := docs.Load(args[0])
			if err != nil {
				if errors.Is(err, store.ErrNotFound) {
					return fmt.Errorf("document %q not found (see plume docs list)", args[0])
				}
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), doc)
			}
			renderDocument(cmd.OutOrStdout(), doc)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the full document as JSON")
	return cmd
}

// newDocsDeleteCmd creates "plume docs delete".
func newDocsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <document-id>",
		Short: "Delete one persisted document record",
		Long: `Delete one persisted document record.

Only the pipeline record is removed; published articles and failure
artifacts in the corpus stay untouched.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			docs, err := store.NewDocumentStore(documentsDir)
			if err != nil {
				return err
			}
			existed, err := docs.Delete(args[0])
			if err != nil {
				return err
			}
			if !existed {
				return fmt.Errorf("document %q not found", args[0])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted document %s.\n", args[0])
			return nil
		},
	}
}

// writeJSON encodes v onto w with the indentation every --json flag uses.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// renderDocsTable writes one row per persisted document.
func renderDocsTable(w io.Writer, summaries []store.Summary) {
	if len(summaries) == 0 {
		fmt.Fprintln(w, "No documents found.")
		return
	}
	fmt.Fprintf(w, "%-36s  %-18s  %-24s  %-16s  %s\n", "ID", "STATE", "PAGE", "UPDATED", "TITLE")
	for _, s := range summaries {
		fmt.Fprintf(w, "%-36s  %-18s  %-24s  %-16s  %s\n",
			s.ID, s.State, s.PageName, s.UpdatedAt.Format("2006-01-02 15:04"), s.Title)
	}
	fmt.Fprintf(w, "\n%d document(s).\n", len(summaries))
}

// renderDocument writes a human-readable view of one document: identity,
// lifecycle, and which artifacts each phase left behind.
func renderDocument(w io.Writer, doc *document.Document) {
	fmt.Fprintf(w, "%s %s\n", styleHeader.Render("Document"), doc.ID)
	fmt.Fprintf(w, "  Title:    %s\n", doc.Title)
	fmt.Fprintf(w, "  Page:     %s\n", doc.PageName)
	fmt.Fprintf(w, "  State:    %s\n", doc.State)
	if doc.ResumeState != "" {
		fmt.Fprintf(w, "  Resumes:  %s\n", doc.ResumeState)
	}
	fmt.Fprintf(w, "  Created:  %s\n", doc.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "  Updated:  %s\n", doc.UpdatedAt.Format("2006-01-02 15:04:05"))
	if doc.QualityAssessment != "" {
		fmt.Fprintf(w, "  Quality:  %s\n", doc.QualityAssessment)
	}
	if contribs := formatContributions(doc.ContributionsByRole()); contribs != "" {
		fmt.Fprintf(w, "  Edits:    %s\n", contribs)
	}
	if doc.RevisionNotes != "" {
		fmt.Fprintf(w, "  Revision notes: %d words pending\n", wiki.WordCount(doc.RevisionNotes))
	}

	fmt.Fprintln(w, "  Artifacts:")
	none := true
	if b := doc.ResearchBrief; b != nil {
		fmt.Fprintf(w, "    %-15s %d facts, %d sources\n", "research brief", len(b.KeyFacts), len(b.Sources))
		none = false
	}
	if d := doc.Draft; d != nil {
		fmt.Fprintf(w, "    %-15s %d words\n", "draft", wiki.WordCount(d.WikiContent))
		none = false
	}
	if r := doc.FactCheckReport; r != nil {
		fmt.Fprintf(w, "    %-15s %s confidence, %s\n", "fact check", r.OverallConfidence, r.RecommendedAction)
		none = false
	}
	if a := doc.FinalArticle; a != nil {
		fmt.Fprintf(w, "    %-15s %d words, score %.2f\n", "final article", wiki.WordCount(a.WikiContent), a.QualityScore)
		none = false
	}
	if r := doc.CriticReport; r != nil {
		fmt.Fprintf(w, "    %-15s overall %.2f, %s\n", "critic report", r.Overall, r.RecommendedAction)
		none = false
	}
	if none {
		fmt.Fprintln(w, "    (none yet)")
	}
}
