package config

import (
	"strings"
	"testing"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validTestConfig returns a Config that passes all validation checks.
// The output directory points at "." so the existence warning does not fire.
func validTestConfig() *Config {
	cfg := DefaultConfig()
	cfg.Output.Directory = "."
	return cfg
}

// decodeMetadata parses TOML content and returns the metadata, useful for
// testing unknown key detection.
func decodeMetadata(t *testing.T, content string) toml.MetaData {
	t.Helper()
	var cfg Config
	md, err := toml.Decode(content, &cfg)
	require.NoError(t, err)
	return md
}

// --- ValidationResult method tests ---

func TestValidationResult_HasErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		issues []ValidationIssue
		want   bool
	}{
		{
			name:   "no issues",
			issues: nil,
			want:   false,
		},
		{
			name: "only warnings",
			issues: []ValidationIssue{
				{Severity: SeverityWarning, Field: "a", Message: "warn"},
			},
			want: false,
		},
		{
			name: "has error",
			issues: []ValidationIssue{
				{Severity: SeverityWarning, Field: "a", Message: "warn"},
				{Severity: SeverityError, Field: "b", Message: "err"},
			},
			want: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			vr := &ValidationResult{Issues: tt.issues}
			assert.Equal(t, tt.want, vr.HasErrors())
		})
	}
}

func TestValidationResult_Partition(t *testing.T) {
	t.Parallel()
	vr := &ValidationResult{Issues: []ValidationIssue{
		{Severity: SeverityError, Field: "a", Message: "e1"},
		{Severity: SeverityWarning, Field: "b", Message: "w1"},
		{Severity: SeverityError, Field: "c", Message: "e2"},
	}}

	assert.Len(t, vr.Errors(), 2)
	assert.Len(t, vr.Warnings(), 1)
	assert.True(t, vr.HasErrors())
	assert.True(t, vr.HasWarnings())
}

// --- Validate tests ---

func TestValidate_NilConfig(t *testing.T) {
	t.Parallel()
	vr := Validate(nil, nil)
	require.True(t, vr.HasErrors())
	assert.Contains(t, vr.Errors()[0].Message, "nil")
}

func TestValidate_CleanConfig(t *testing.T) {
	t.Parallel()
	vr := Validate(validTestConfig(), nil)
	assert.False(t, vr.HasErrors(), "unexpected errors: %+v", vr.Errors())
	assert.False(t, vr.HasWarnings(), "unexpected warnings: %+v", vr.Warnings())
}

func TestValidate_AnthropicSection(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantField string
	}{
		{
			name:      "empty model",
			mutate:    func(c *Config) { c.Anthropic.Model = "" },
			wantField: "anthropic.model",
		},
		{
			name:      "zero max_tokens",
			mutate:    func(c *Config) { c.Anthropic.MaxTokens = 0 },
			wantField: "anthropic.max_tokens",
		},
		{
			name:      "negative max_tokens",
			mutate:    func(c *Config) { c.Anthropic.MaxTokens = -5 },
			wantField: "anthropic.max_tokens",
		},
		{
			name:      "writer temperature above range",
			mutate:    func(c *Config) { c.Anthropic.Temperature.Writer = 1.5 },
			wantField: "anthropic.temperature.writer",
		},
		{
			name:      "critic temperature below range",
			mutate:    func(c *Config) { c.Anthropic.Temperature.Critic = -0.1 },
			wantField: "anthropic.temperature.critic",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := validTestConfig()
			tt.mutate(cfg)
			vr := Validate(cfg, nil)
			require.True(t, vr.HasErrors())
			assert.Equal(t, tt.wantField, vr.Errors()[0].Field)
		})
	}
}

func TestValidate_PipelineSection(t *testing.T) {
	t.Parallel()

	t.Run("zero cycles", func(t *testing.T) {
		t.Parallel()
		cfg := validTestConfig()
		cfg.Pipeline.MaxRevisionCycles = 0
		vr := Validate(cfg, nil)
		require.True(t, vr.HasErrors())
		assert.Equal(t, "pipeline.max_revision_cycles", vr.Errors()[0].Field)
	})

	t.Run("excessive cycles warn", func(t *testing.T) {
		t.Parallel()
		cfg := validTestConfig()
		cfg.Pipeline.MaxRevisionCycles = 25
		vr := Validate(cfg, nil)
		assert.False(t, vr.HasErrors())
		require.True(t, vr.HasWarnings())
		assert.Equal(t, "pipeline.max_revision_cycles", vr.Warnings()[0].Field)
	})

	t.Run("zero timeout", func(t *testing.T) {
		t.Parallel()
		cfg := validTestConfig()
		cfg.Pipeline.PhaseTimeout = Duration{0}
		vr := Validate(cfg, nil)
		require.True(t, vr.HasErrors())
		assert.Equal(t, "pipeline.phase_timeout", vr.Errors()[0].Field)
	})

	t.Run("negative timeout", func(t *testing.T) {
		t.Parallel()
		cfg := validTestConfig()
		cfg.Pipeline.PhaseTimeout = Duration{-time.Second}
		vr := Validate(cfg, nil)
		require.True(t, vr.HasErrors())
	})
}

func TestValidate_OutputSection(t *testing.T) {
	t.Parallel()

	t.Run("empty directory", func(t *testing.T) {
		t.Parallel()
		cfg := validTestConfig()
		cfg.Output.Directory = ""
		vr := Validate(cfg, nil)
		require.True(t, vr.HasErrors())
		assert.Equal(t, "output.directory", vr.Errors()[0].Field)
	})

	t.Run("extension without dot", func(t *testing.T) {
		t.Parallel()
		cfg := validTestConfig()
		cfg.Output.FileExtension = "txt"
		vr := Validate(cfg, nil)
		require.True(t, vr.HasErrors())
		assert.Equal(t, "output.file_extension", vr.Errors()[0].Field)
	})

	t.Run("missing directory warns", func(t *testing.T) {
		t.Parallel()
		cfg := validTestConfig()
		cfg.Output.Directory = "does/not/exist/anywhere"
		vr := Validate(cfg, nil)
		assert.False(t, vr.HasErrors())
		require.True(t, vr.HasWarnings())
		assert.Contains(t, vr.Warnings()[0].Message, "does not exist")
	})
}

func TestValidate_QualitySection(t *testing.T) {
	t.Parallel()

	t.Run("unrecognized confidence", func(t *testing.T) {
		t.Parallel()
		cfg := validTestConfig()
		cfg.Quality.MinFactCheckConfidence = "VERY_HIGH"
		vr := Validate(cfg, nil)
		require.True(t, vr.HasErrors())
		assert.Contains(t, vr.Errors()[0].Message, "LOW, MEDIUM, HIGH")
	})

	t.Run("lowercase confidence rejected", func(t *testing.T) {
		t.Parallel()
		cfg := validTestConfig()
		cfg.Quality.MinFactCheckConfidence = "medium"
		vr := Validate(cfg, nil)
		require.True(t, vr.HasErrors())
	})

	t.Run("score above one", func(t *testing.T) {
		t.Parallel()
		cfg := validTestConfig()
		cfg.Quality.MinEditorScore = 1.2
		vr := Validate(cfg, nil)
		require.True(t, vr.HasErrors())
		assert.Equal(t, "quality.min_editor_score", vr.Errors()[0].Field)
	})
}

func TestValidate_SearchSection(t *testing.T) {
	t.Parallel()

	t.Run("disabled skips checks", func(t *testing.T) {
		t.Parallel()
		cfg := validTestConfig()
		cfg.Search.Enabled = false
		cfg.Search.MaxResults = 0
		cfg.Search.DefaultProvider = "bogus"
		vr := Validate(cfg, nil)
		assert.False(t, vr.HasErrors())
	})

	t.Run("enabled with zero results", func(t *testing.T) {
		t.Parallel()
		cfg := validTestConfig()
		cfg.Search.MaxResults = 0
		vr := Validate(cfg, nil)
		require.True(t, vr.HasErrors())
		assert.Equal(t, "search.max_results", vr.Errors()[0].Field)
	})

	t.Run("enabled with unknown provider", func(t *testing.T) {
		t.Parallel()
		cfg := validTestConfig()
		cfg.Search.DefaultProvider = "altavista"
		vr := Validate(cfg, nil)
		require.True(t, vr.HasErrors())
		assert.Contains(t, vr.Errors()[0].Message, "altavista")
	})
}

func TestValidate_LinksSection(t *testing.T) {
	t.Parallel()

	t.Run("negative max", func(t *testing.T) {
		t.Parallel()
		cfg := validTestConfig()
		cfg.Links.MaxPerArticle = -1
		vr := Validate(cfg, nil)
		require.True(t, vr.HasErrors())
		assert.Equal(t, "links.max_per_article", vr.Errors()[0].Field)
	})

	t.Run("absurd density warns", func(t *testing.T) {
		t.Parallel()
		cfg := validTestConfig()
		cfg.Links.MinPer100Words = 50
		vr := Validate(cfg, nil)
		assert.False(t, vr.HasErrors())
		require.True(t, vr.HasWarnings())
	})
}

func TestValidate_UnknownKeys(t *testing.T) {
	t.Parallel()
	md := decodeMetadata(t, `
[anthropic]
model = "claude-sonnet-4-20250514"
speling_mistake = true

[not_a_section]
x = 1
`)

	vr := Validate(validTestConfig(), &md)
	assert.False(t, vr.HasErrors())
	require.True(t, vr.HasWarnings())

	fields := make([]string, 0, len(vr.Warnings()))
	for _, w := range vr.Warnings() {
		fields = append(fields, w.Field)
	}
	assert.Contains(t, fields, "anthropic.speling_mistake")
	assert.Contains(t, fields, "not_a_section.x")
}

func TestValidate_MultipleErrorsAccumulate(t *testing.T) {
	t.Parallel()
	cfg := validTestConfig()
	cfg.Anthropic.Model = ""
	cfg.Pipeline.MaxRevisionCycles = 0
	cfg.Quality.MinEditorScore = 2

	vr := Validate(cfg, nil)
	assert.GreaterOrEqual(t, len(vr.Errors()), 3)
}

// --- Config.Validate method ---

func TestConfigValidateMethod_Clean(t *testing.T) {
	t.Parallel()
	assert.NoError(t, validTestConfig().Validate())
}

func TestConfigValidateMethod_JoinsErrors(t *testing.T) {
	t.Parallel()
	cfg := validTestConfig()
	cfg.Anthropic.Model = ""
	cfg.Output.FileExtension = "txt"

	err := cfg.Validate()
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "anthropic.model"))
	assert.True(t, strings.Contains(err.Error(), "output.file_extension"))
}
