package document

import "strings"

// ResearchBrief is the researcher's output: the factual groundwork a draft
// is written from. Field names follow the JSON contract the agent's model
// responds with.
type ResearchBrief struct {
	KeyFacts               []string          `json:"keyFacts"`
	Sources                []Source          `json:"sources,omitempty"`
	SuggestedOutline       []string          `json:"suggestedOutline"`
	RelatedPageSuggestions []string          `json:"relatedPageSuggestions,omitempty"`
	Glossary               map[string]string `json:"glossary,omitempty"`
	UncertainAreas         []string          `json:"uncertainAreas,omitempty"`
}

// Valid reports whether the brief carries enough material to draft from.
func (b *ResearchBrief) Valid() bool {
	return b != nil && len(b.KeyFacts) > 0 && len(b.SuggestedOutline) > 0
}

// Source is one reference the researcher grounded a fact on.
type Source struct {
	Text        string      `json:"text"`
	Reliability Reliability `json:"reliability,omitempty"`
}

/// ArticleDraft is the writer's output: wiki-syntax article content plus
// drafting metadata.
type ArticleDraft struct {
	WikiContent   string            `json:"wikiContent"`
	Summary       string            `json:"summary"`
	InternalLinks []string          `json:"internalLinks,omitempty"`
	Categories    []string          `json:"categories,omitempty"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// Valid reports whether the draft has usable content and a summary.
func (d *ArticleDraft) Valid() bool {
	return d != nil && strings.TrimSpace(d.WikiContent) != "" && strings.TrimSpace(d.Summary) != ""
}

// VerifiedClaim is a draft claim the fact-checker confirmed against the
// research brief. SourceIndex points into ResearchBrief.Sources, -1 when
// the claim was verified from general knowledge.
type VerifiedClaim struct {
	Claim       string `json:"claim"`
	Status      string `json:"status,omitempty"`
	SourceIndex int    `json:"sourceIndex,omitempty"`
}

// QuestionableClaim is a draft claim the fact-checker could not confirm.
type QuestionableClaim struct {
	Claim      string `json:"claim"`
	Issue      string `json:"issue"`
	Suggestion string `json:"suggestion,omitempty"`
}

// FactCheckReport is the fact-checker's output over a draft.
type FactCheckReport struct {
	AnnotatedContent   string              `json:"annotatedContent,omitempty"`
	VerifiedClaims     []VerifiedClaim     `json:"verifiedClaims,omitempty"`
	QuestionableClaims []QuestionableClaim `json:"questionableClaims,omitempty"`
	ConsistencyIssues  []string            `json:"consistencyIssues,omitempty"`
	OverallConfidence  Confidence          `json:"overallConfidence"`
	RecommendedAction  Action              `json:"recommendedAction"`
}

// Valid reports whether the report carries a recognized action and
// confidence.
func (r *FactCheckReport) Valid() bool {
	return r != nil && r.RecommendedAction.Valid() && r.OverallConfidence.Valid()
}

// HasIssues reports whether the fact-checker flagged anything.
func (r *FactCheckReport) HasIssues() bool {
	return r != nil && (len(r.QuestionableClaims) > 0 || len(r.ConsistencyIssues) > 0)
}

/// FinalArticle is the editor's output: polished wiki content with an edit
// summary and a self-assessed quality score in [0,1].
type FinalArticle struct {
	WikiContent  string            `json:"wikiContent"`
	Metadata     map[string]string `json:"metadata,omitempty"`
	EditSummary  string            `json:"editSummary,omitempty"`
	QualityScore float64           `json:"qualityScore"`
	AddedLinks   []string          `json:"addedLinks,omitempty"`
}

// Valid reports whether the article has content and a score inside [0,1].
// The publishing threshold on the score is enforced by the editor agent.
func (a *FinalArticle) Valid() bool {
	return a != nil && strings.TrimSpace(a.WikiContent) != "" &&
		a.QualityScore >= 0 && a.QualityScore <= 1
}

/// CriticReport is the critic's output: per-dimension scores in [0,1] with
// the issues behind them.
type CriticReport struct {
	Overall           float64  `json:"overall"`
	Structure         float64  `json:"structure"`
	Syntax            float64  `json:"syntax"`
	Style             float64  `json:"style"`
	StructureIssues   []string `json:"structureIssues,omitempty"`
	SyntaxIssues      []string `json:"syntaxIssues,omitempty"`
	StyleIssues       []string `json:"styleIssues,omitempty"`
	Suggestions       []string `json:"suggestions,omitempty"`
	RecommendedAction Action   `json:"recommendedAction"`
}

// Valid reports whether every score is inside [0,1] and the action is
// recognized.
func (r *CriticReport) Valid() bool {
	if r == nil || !r.RecommendedAction.Valid() {
		return false
	}
	for _, score := range []float64{r.Overall, r.Structure, r.Syntax, r.Style} {
		if score < 0 || score > 1 {
			return false
		}
	}
	return true
}

// HasIssues reports whether the critic flagged anything actionable.
func (r *CriticReport) HasIssues() bool {
	return r != nil && (len(r.StructureIssues) > 0 || len(r.SyntaxIssues) > 0 ||
		len(r.StyleIssues) > 0 || len(r.Suggestions) > 0)
}
