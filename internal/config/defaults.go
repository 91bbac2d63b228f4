package config

import "time"

// DefaultModel is the Anthropic model used when plume.toml does not name one.
const DefaultModel = "claude-sonnet-4-20250514"

// DefaultConfig returns a Config populated with all default values. A fresh
// project with no plume.toml runs entirely on these.
func DefaultConfig() *Config {
	return &Config{
		Anthropic: AnthropicConfig{
			Model:     DefaultModel,
			MaxTokens: 4096,
			Temperature: TemperatureConfig{
				Research:    0.3,
				Writer:      0.7,
				FactChecker: 0.2,
				Editor:      0.4,
				Critic:      0.3,
			},
		},
		Pipeline: PipelineConfig{
			MaxRevisionCycles: 3,
			PhaseTimeout:      Duration{5 * time.Minute},
			// All gates default off: an unattended run publishes without pausing.
		},
		Output: OutputConfig{
			Directory:     "wiki",
			FileExtension: ".txt",
		},
		Quality: QualityConfig{
			MinFactCheckConfidence: "MEDIUM",
			MinEditorScore:         0.7,
		},
		Search: SearchConfig{
			Enabled:         true,
			MaxResults:      5,
			DefaultProvider: "wikipedia",
		},
		Links: LinksConfig{
			MaxPerArticle:  12,
			MinPer100Words: 1.0,
		},
	}
}
