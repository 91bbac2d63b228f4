package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// ValidationSeverity indicates whether a validation issue is an error or warning.
type ValidationSeverity string

const (
	// SeverityError indicates a fatal validation issue; the configuration is unusable.
	SeverityError ValidationSeverity = "error"
	// SeverityWarning indicates an informational validation issue; the configuration works
	// but may have problems.
	SeverityWarning ValidationSeverity = "warning"
)

// ValidationIssue represents a single validation finding.
type ValidationIssue struct {
	Severity ValidationSeverity
	Field    string // dotted path, e.g., "anthropic.model"
	Message  string
}

// ValidationResult holds all validation findings.
type ValidationResult struct {
	Issues []ValidationIssue
}

// HasErrors returns true if any issue has error severity.
func (vr *ValidationResult) HasErrors() bool {
	for _, issue := range vr.Issues {
		if issue.Severity == SeverityError {
			return true
		}
	}
	return false
}

// HasWarnings returns true if any issue has warning severity.
func (vr *ValidationResult) HasWarnings() bool {
	for _, issue := range vr.Issues {
		if issue.Severity == SeverityWarning {
			return true
		}
	}
	return false
}

// Errors returns only error-severity issues.
func (vr *ValidationResult) Errors() []ValidationIssue {
	var errs []ValidationIssue
	for _, issue := range vr.Issues {
		if issue.Severity == SeverityError {
			errs = append(errs, issue)
		}
	}
	return errs
}

// Warnings returns only warning-severity issues.
func (vr *ValidationResult) Warnings() []ValidationIssue {
	var warns []ValidationIssue
	for _, issue := range vr.Issues {
		if issue.Severity == SeverityWarning {
			warns = append(warns, issue)
		}
	}
	return warns
}

// validConfidences is the set of valid values for quality.min_factcheck_confidence.
var validConfidences = map[string]bool{
	"LOW":    true,
	"MEDIUM": true,
	"HIGH":   true,
}

// validProviders is the set of recognized values for search.default_provider.
var validProviders = map[string]bool{
	"wikipedia": true,
	"wikidata":  true,
	"html":      true,
	"noop":      true,
}

// Validate checks the configuration for correctness and completeness.
// It performs structural validation, semantic validation, and unknown key detection.
//
// Parameters:
//   - cfg: the configuration to validate
//   - meta: TOML metadata from BurntSushi/toml (may be nil if no file was loaded)
//
// Returns validation results. Check HasErrors() to determine if the config is usable.
func Validate(cfg *Config, meta *toml.MetaData) *ValidationResult {
	vr := &ValidationResult{}

	if cfg == nil {
		addError(vr, "", "configuration is nil")
		return vr
	}

	validateAnthropic(vr, &cfg.Anthropic)
	validatePipeline(vr, &cfg.Pipeline)
	validateOutput(vr, &cfg.Output)
	validateQuality(vr, &cfg.Quality)
	validateSearch(vr, &cfg.Search)
	validateLinks(vr, &cfg.Links)
	validateUnknownKeys(vr, meta)

	return vr
}

// Validate checks the configuration and returns an error joining all
// error-severity findings, or nil when the configuration is usable.
// For the full report including warnings, use the package-level Validate.
func (c *Config) Validate() error {
	vr := Validate(c, nil)
	errs := vr.Errors()
	if len(errs) == 0 {
		return nil
	}
	parts := make([]string, len(errs))
	for i, issue := range errs {
		parts[i] = fmt.Sprintf("%s: %s", issue.Field, issue.Message)
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(parts, "; "))
}

// validateAnthropic checks the [anthropic] section for errors.
func validateAnthropic(vr *ValidationResult, a *AnthropicConfig) {
	// Error: model must not be empty.
	if a.Model == "" {
		addError(vr, "anthropic.model", "must not be empty")
	}

	// Error: max_tokens must be positive.
	if a.MaxTokens <= 0 {
		addError(vr, "anthropic.max_tokens",
			fmt.Sprintf("must be positive, got %d", a.MaxTokens))
	}

	// Error: temperatures must be within the API's accepted range.
	temps := []struct {
		field string
		value float64
	}{
		{"anthropic.temperature.research", a.Temperature.Research},
		{"anthropic.temperature.writer", a.Temperature.Writer},
		{"anthropic.temperature.factchecker", a.Temperature.FactChecker},
		{"anthropic.temperature.editor", a.Temperature.Editor},
		{"anthropic.temperature.critic", a.Temperature.Critic},
	}
	for _, t := range temps {
		if t.value < 0 || t.value > 1 {
			addError(vr, t.field,
				fmt.Sprintf("must be between 0.0 and 1.0, got %g", t.value))
		}
	}
}

// validatePipeline checks the [pipeline] section.
func validatePipeline(vr *ValidationResult, p *PipelineConfig) {
	// Error: at least one revision cycle, otherwise fact-check feedback is unusable.
	if p.MaxRevisionCycles < 1 {
		addError(vr, "pipeline.max_revision_cycles",
			fmt.Sprintf("must be at least 1, got %d", p.MaxRevisionCycles))
	}

	// Warning: very high cycle counts multiply token spend per article.
	if p.MaxRevisionCycles > 10 {
		addWarning(vr, "pipeline.max_revision_cycles",
			fmt.Sprintf("%d revision cycles is unusually high", p.MaxRevisionCycles))
	}

	// Error: phase timeout must be positive.
	if p.PhaseTimeout.Duration <= 0 {
		addError(vr, "pipeline.phase_timeout",
			fmt.Sprintf("must be positive, got %s", p.PhaseTimeout.Duration))
	}
}

// validateOutput checks the [output] section.
func validateOutput(vr *ValidationResult, o *OutputConfig) {
	// Error: output directory must be configured.
	if o.Directory == "" {
		addError(vr, "output.directory", "must not be empty")
	}

	// Error: extension must start with a dot so page paths derive cleanly.
	if o.FileExtension == "" || !strings.HasPrefix(o.FileExtension, ".") {
		addError(vr, "output.file_extension",
			fmt.Sprintf("must start with %q, got %q", ".", o.FileExtension))
	}

	// Warning: output directory does not exist yet (created on first publish).
	if o.Directory != "" {
		if _, err := os.Stat(o.Directory); err != nil {
			addWarning(vr, "output.directory",
				fmt.Sprintf("directory %q does not exist", o.Directory))
		}
	}
}

// validateQuality checks the [quality] section.
func validateQuality(vr *ValidationResult, q *QualityConfig) {
	// Error: confidence threshold must be a recognized level.
	if !validConfidences[q.MinFactCheckConfidence] {
		addError(vr, "quality.min_factcheck_confidence",
			fmt.Sprintf("unrecognized confidence %q; must be one of: LOW, MEDIUM, HIGH", q.MinFactCheckConfidence))
	}

	// Error: editor score threshold is a fraction.
	if q.MinEditorScore < 0 || q.MinEditorScore > 1 {
		addError(vr, "quality.min_editor_score",
			fmt.Sprintf("must be between 0.0 and 1.0, got %g", q.MinEditorScore))
	}
}

// validateSearch checks the [search] section.
func validateSearch(vr *ValidationResult, s *SearchConfig) {
	if !s.Enabled {
		return
	}

	// Error: max_results must be positive when search is enabled.
	if s.MaxResults < 1 {
		addError(vr, "search.max_results",
			fmt.Sprintf("must be at least 1, got %d", s.MaxResults))
	}

	// Error: default_provider must be recognized.
	if !validProviders[s.DefaultProvider] {
		addError(vr, "search.default_provider",
			fmt.Sprintf("unrecognized provider %q; must be one of: wikipedia, wikidata, html, noop", s.DefaultProvider))
	}
}

// validateLinks checks the [links] section.
func validateLinks(vr *ValidationResult, l *LinksConfig) {
	// Error: negative bounds are meaningless.
	if l.MaxPerArticle < 0 {
		addError(vr, "links.max_per_article",
			fmt.Sprintf("must not be negative, got %d", l.MaxPerArticle))
	}
	if l.MinPer100Words < 0 {
		addError(vr, "links.min_per_100_words",
			fmt.Sprintf("must not be negative, got %g", l.MinPer100Words))
	}

	// Warning: more than ten links per hundred words is denser than prose allows.
	if l.MinPer100Words > 10 {
		addWarning(vr, "links.min_per_100_words",
			fmt.Sprintf("%g links per 100 words is unusually dense", l.MinPer100Words))
	}
}

// validateUnknownKeys checks for TOML keys that did not map to any config struct field.
func validateUnknownKeys(vr *ValidationResult, meta *toml.MetaData) {
	if meta == nil {
		return
	}

	for _, key := range meta.Undecoded() {
		path := strings.Join(key, ".")
		addWarning(vr, path, "unknown configuration key")
	}
}

// addError appends an error-severity issue to the validation result.
func addError(vr *ValidationResult, field, message string) {
	vr.Issues = append(vr.Issues, ValidationIssue{
		Severity: SeverityError,
		Field:    field,
		Message:  message,
	})
}

// addWarning appends a warning-severity issue to the validation result.
func addWarning(vr *ValidationResult, field, message string) {
	vr.Issues = append(vr.Issues, ValidationIssue{
		Severity: SeverityWarning,
		Field:    field,
		Message:  message,
	})
}
