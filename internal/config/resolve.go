package config

import "github.com/BurntSushi/toml"

// ConfigSource identifies where a configuration value came from.
type ConfigSource string

const (
	// SourceDefault indicates the value came from built-in defaults.
	SourceDefault ConfigSource = "default"
	// SourceFile indicates the value came from the plume.toml config file.
	SourceFile ConfigSource = "file"
	// SourceEnv indicates the value came from an environment variable.
	SourceEnv ConfigSource = "env"
	// SourceCLI indicates the value came from a CLI flag.
	SourceCLI ConfigSource = "cli"
)

// ResolvedConfig holds the fully-resolved configuration with source tracking.
// The Config field contains the merged values; Sources tracks where each came from.
type ResolvedConfig struct {
	Config  *Config
	Sources map[string]ConfigSource // key is dotted path, e.g., "anthropic.model"
	Path    string                  // path to the config file used (empty if none)
}

// CLIOverrides captures flag values that can override configuration.
// Nil fields mean "not set" (do not override). A *string that is nil means
// "not overridden"; a *string pointing to "" means "override to empty string."
type CLIOverrides struct {
	Model             *string
	OutputDir         *string
	MaxRevisionCycles *int
	SearchEnabled     *bool
}

// EnvFunc is a function that looks up environment variables.
// Default implementation is os.LookupEnv. Injected for testability.
type EnvFunc func(key string) (string, bool)

// allKeys lists every dotted configuration path that source tracking records.
var allKeys = []string{
	"anthropic.model",
	"anthropic.max_tokens",
	"anthropic.api_key",
	"anthropic.temperature.research",
	"anthropic.temperature.writer",
	"anthropic.temperature.factchecker",
	"anthropic.temperature.editor",
	"anthropic.temperature.critic",
	"pipeline.max_revision_cycles",
	"pipeline.phase_timeout",
	"pipeline.approval.after_research",
	"pipeline.approval.after_draft",
	"pipeline.approval.after_factcheck",
	"pipeline.approval.after_edit",
	"pipeline.approval.before_publish",
	"output.directory",
	"output.file_extension",
	"quality.min_factcheck_confidence",
	"quality.min_editor_score",
	"search.enabled",
	"search.max_results",
	"search.default_provider",
	"links.max_per_article",
	"links.min_per_100_words",
}

// Resolve merges configuration from all sources in priority order:
// CLI flags > environment variables > config file > defaults.
//
// File values are merged only for keys the file actually defines, as reported
// by the TOML metadata; a key absent from plume.toml keeps its default even
// when its Go zero value (false, 0) would be a legal setting.
//
// Parameters:
//   - defaults: built-in default config (from DefaultConfig())
//   - fileCfg: parsed config from plume.toml (nil if no file found)
//   - fileMeta: TOML metadata from Load (nil if no file found)
//   - envFn: function to look up environment variables
//   - overrides: CLI flag values (nil fields mean "not set")
//
// Returns the fully-resolved config with source annotations.
func Resolve(defaults *Config, fileCfg *Config, fileMeta *toml.MetaData, envFn EnvFunc, overrides *CLIOverrides) *ResolvedConfig {
	rc := &ResolvedConfig{
		Config:  &Config{},
		Sources: make(map[string]ConfigSource, len(allKeys)),
	}

	// Ensure we have a valid defaults to start from.
	if defaults == nil {
		defaults = &Config{}
	}

	// Ensure we have a valid envFn.
	if envFn == nil {
		envFn = func(string) (string, bool) { return "", false }
	}

	// Ensure we have a valid overrides.
	if overrides == nil {
		overrides = &CLIOverrides{}
	}

	// Layer 1: Start with defaults as the base.
	*rc.Config = *defaults
	for _, key := range allKeys {
		rc.Sources[key] = SourceDefault
	}

	// Layer 2: Merge file config on top, gated on key presence.
	if fileCfg != nil && fileMeta != nil {
		resolveAnthropicFromFile(rc, fileCfg, fileMeta)
		resolvePipelineFromFile(rc, fileCfg, fileMeta)
		resolveOutputFromFile(rc, fileCfg, fileMeta)
		resolveQualityFromFile(rc, fileCfg, fileMeta)
		resolveSearchFromFile(rc, fileCfg, fileMeta)
		resolveLinksFromFile(rc, fileCfg, fileMeta)
	}

	// Layer 3: Merge environment variables on top.
	resolveFromEnv(rc, envFn)

	// Layer 4: Merge CLI overrides on top.
	resolveFromCLI(rc, overrides)

	return rc
}

// --- Layer 2: File ---

func resolveAnthropicFromFile(rc *ResolvedConfig, file *Config, md *toml.MetaData) {
	a := &rc.Config.Anthropic
	f := &file.Anthropic

	if md.IsDefined("anthropic", "model") {
		a.Model = f.Model
		rc.Sources["anthropic.model"] = SourceFile
	}
	if md.IsDefined("anthropic", "max_tokens") {
		a.MaxTokens = f.MaxTokens
		rc.Sources["anthropic.max_tokens"] = SourceFile
	}
	if md.IsDefined("anthropic", "temperature", "research") {
		a.Temperature.Research = f.Temperature.Research
		rc.Sources["anthropic.temperature.research"] = SourceFile
	}
	if md.IsDefined("anthropic", "temperature", "writer") {
		a.Temperature.Writer = f.Temperature.Writer
		rc.Sources["anthropic.temperature.writer"] = SourceFile
	}
	if md.IsDefined("anthropic", "temperature", "factchecker") {
		a.Temperature.FactChecker = f.Temperature.FactChecker
		rc.Sources["anthropic.temperature.factchecker"] = SourceFile
	}
	if md.IsDefined("anthropic", "temperature", "editor") {
		a.Temperature.Editor = f.Temperature.Editor
		rc.Sources["anthropic.temperature.editor"] = SourceFile
	}
	if md.IsDefined("anthropic", "temperature", "critic") {
		a.Temperature.Critic = f.Temperature.Critic
		rc.Sources["anthropic.temperature.critic"] = SourceFile
	}
}

func resolvePipelineFromFile(rc *ResolvedConfig, file *Config, md *toml.MetaData) {
	p := &rc.Config.Pipeline
	f := &file.Pipeline

	if md.IsDefined("pipeline", "max_revision_cycles") {
		p.MaxRevisionCycles = f.MaxRevisionCycles
		rc.Sources["pipeline.max_revision_cycles"] = SourceFile
	}
	if md.IsDefined("pipeline", "phase_timeout") {
		p.PhaseTimeout = f.PhaseTimeout
		rc.Sources["pipeline.phase_timeout"] = SourceFile
	}
	if md.IsDefined("pipeline", "approval", "after_research") {
		p.Approval.AfterResearch = f.Approval.AfterResearch
		rc.Sources["pipeline.approval.after_research"] = SourceFile
	}
	if md.IsDefined("pipeline", "approval", "after_draft") {
		p.Approval.AfterDraft = f.Approval.AfterDraft
		rc.Sources["pipeline.approval.after_draft"] = SourceFile
	}
	if md.IsDefined("pipeline", "approval", "after_factcheck") {
		p.Approval.AfterFactCheck = f.Approval.AfterFactCheck
		rc.Sources["pipeline.approval.after_factcheck"] = SourceFile
	}
	if md.IsDefined("pipeline", "approval", "after_edit") {
		p.Approval.AfterEdit = f.Approval.AfterEdit
		rc.Sources["pipeline.approval.after_edit"] = SourceFile
	}
	if md.IsDefined("pipeline", "approval", "before_publish") {
		p.Approval.BeforePublish = f.Approval.BeforePublish
		rc.Sources["pipeline.approval.before_publish"] = SourceFile
	}
}

func resolveOutputFromFile(rc *ResolvedConfig, file *Config, md *toml.MetaData) {
	o := &rc.Config.Output
	f := &file.Output

	if md.IsDefined("output", "directory") {
		o.Directory = f.Directory
		rc.Sources["output.directory"] = SourceFile
	}
	if md.IsDefined("output", "file_extension") {
		o.FileExtension = f.FileExtension
		rc.Sources["output.file_extension"] = SourceFile
	}
}

func resolveQualityFromFile(rc *ResolvedConfig, file *Config, md *toml.MetaData) {
	q := &rc.Config.Quality
	f := &file.Quality

	if md.IsDefined("quality", "min_factcheck_confidence") {
		q.MinFactCheckConfidence = f.MinFactCheckConfidence
		rc.Sources["quality.min_factcheck_confidence"] = SourceFile
	}
	if md.IsDefined("quality", "min_editor_score") {
		q.MinEditorScore = f.MinEditorScore
		rc.Sources["quality.min_editor_score"] = SourceFile
	}
}

func resolveSearchFromFile(rc *ResolvedConfig, file *Config, md *toml.MetaData) {
	s := &rc.Config.Search
	f := &file.Search

	if md.IsDefined("search", "enabled") {
		s.Enabled = f.Enabled
		rc.Sources["search.enabled"] = SourceFile
	}
	if md.IsDefined("search", "max_results") {
		s.MaxResults = f.MaxResults
		rc.Sources["search.max_results"] = SourceFile
	}
	if md.IsDefined("search", "default_provider") {
		s.DefaultProvider = f.DefaultProvider
		rc.Sources["search.default_provider"] = SourceFile
	}
}

func resolveLinksFromFile(rc *ResolvedConfig, file *Config, md *toml.MetaData) {
	l := &rc.Config.Links
	f := &file.Links

	if md.IsDefined("links", "max_per_article") {
		l.MaxPerArticle = f.MaxPerArticle
		rc.Sources["links.max_per_article"] = SourceFile
	}
	if md.IsDefined("links", "min_per_100_words") {
		l.MinPer100Words = f.MinPer100Words
		rc.Sources["links.min_per_100_words"] = SourceFile
	}
}

// --- Layer 3: Environment ---

// Environment variable mapping:
//
//	ANTHROPIC_API_KEY      -> anthropic.api_key (never read from plume.toml)
//	PLUME_MODEL            -> anthropic.model
//	PLUME_OUTPUT_DIR       -> output.directory
//	PLUME_SEARCH_PROVIDER  -> search.default_provider
func resolveFromEnv(rc *ResolvedConfig, envFn EnvFunc) {
	if val, ok := envFn("ANTHROPIC_API_KEY"); ok {
		rc.Config.Anthropic.APIKey = val
		rc.Sources["anthropic.api_key"] = SourceEnv
	}
	if val, ok := envFn("PLUME_MODEL"); ok {
		rc.Config.Anthropic.Model = val
		rc.Sources["anthropic.model"] = SourceEnv
	}
	if val, ok := envFn("PLUME_OUTPUT_DIR"); ok {
		rc.Config.Output.Directory = val
		rc.Sources["output.directory"] = SourceEnv
	}
	if val, ok := envFn("PLUME_SEARCH_PROVIDER"); ok {
		rc.Config.Search.DefaultProvider = val
		rc.Sources["search.default_provider"] = SourceEnv
	}
}

// --- Layer 4: CLI overrides ---

func resolveFromCLI(rc *ResolvedConfig, overrides *CLIOverrides) {
	if overrides.Model != nil {
		rc.Config.Anthropic.Model = *overrides.Model
		rc.Sources["anthropic.model"] = SourceCLI
	}
	if overrides.OutputDir != nil {
		rc.Config.Output.Directory = *overrides.OutputDir
		rc.Sources["output.directory"] = SourceCLI
	}
	if overrides.MaxRevisionCycles != nil {
		rc.Config.Pipeline.MaxRevisionCycles = *overrides.MaxRevisionCycles
		rc.Sources["pipeline.max_revision_cycles"] = SourceCLI
	}
	if overrides.SearchEnabled != nil {
		rc.Config.Search.Enabled = *overrides.SearchEnabled
		rc.Sources["search.enabled"] = SourceCLI
	}
}
