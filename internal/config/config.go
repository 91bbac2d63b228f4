package config

import (
	"fmt"
	"time"
)

// Config is the top-level configuration structure mapping to plume.toml.
type Config struct {
	Anthropic AnthropicConfig `toml:"anthropic"`
	Pipeline  PipelineConfig  `toml:"pipeline"`
	Output    OutputConfig    `toml:"output"`
	Quality   QualityConfig   `toml:"quality"`
	Search    SearchConfig    `toml:"search"`
	Links     LinksConfig     `toml:"links"`
}

// AnthropicConfig maps to the [anthropic] section in plume.toml.
type AnthropicConfig struct {
	Model       string            `toml:"model"`
	MaxTokens   int               `toml:"max_tokens"`
	Temperature TemperatureConfig `toml:"temperature"`

	// APIKey is resolved from the ANTHROPIC_API_KEY environment variable.
	// It is never read from or written to plume.toml.
	APIKey string `toml:"-"`
}

// TemperatureConfig maps to the [anthropic.temperature] section. Each field is
// the sampling temperature for one agent role.
type TemperatureConfig struct {
	Research    float64 `toml:"research"`
	Writer      float64 `toml:"writer"`
	FactChecker float64 `toml:"factchecker"`
	Editor      float64 `toml:"editor"`
	Critic      float64 `toml:"critic"`
}

// PipelineConfig maps to the [pipeline] section in plume.toml.
type PipelineConfig struct {
	MaxRevisionCycles int            `toml:"max_revision_cycles"`
	PhaseTimeout      Duration       `toml:"phase_timeout"`
	Approval          ApprovalConfig `toml:"approval"`
}

// ApprovalConfig maps to the [pipeline.approval] section. Each flag controls
// whether the pipeline pauses for a decision after the named phase.
type ApprovalConfig struct {
	AfterResearch  bool `toml:"after_research"`
	AfterDraft     bool `toml:"after_draft"`
	AfterFactCheck bool `toml:"after_factcheck"`
	AfterEdit      bool `toml:"after_edit"`
	BeforePublish  bool `toml:"before_publish"`
}

// OutputConfig maps to the [output] section in plume.toml.
type OutputConfig struct {
	Directory     string `toml:"directory"`
	FileExtension string `toml:"file_extension"`
}

// QualityConfig maps to the [quality] section in plume.toml.
type QualityConfig struct {
	MinFactCheckConfidence string  `toml:"min_factcheck_confidence"`
	MinEditorScore         float64 `toml:"min_editor_score"`
}

// SearchConfig maps to the [search] section in plume.toml.
type SearchConfig struct {
	Enabled         bool   `toml:"enabled"`
	MaxResults      int    `toml:"max_results"`
	DefaultProvider string `toml:"default_provider"`
}

// LinksConfig maps to the [links] section in plume.toml. It bounds how densely
// articles link to other pages.
type LinksConfig struct {
	MaxPerArticle  int     `toml:"max_per_article"`
	MinPer100Words float64 `toml:"min_per_100_words"`
}

// Duration wraps time.Duration so TOML values can be written as strings like
// "5m" or "90s".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler for TOML decoding.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("parsing duration %q: %w", string(text), err)
	}
	d.Duration = parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler so Duration round-trips.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}
