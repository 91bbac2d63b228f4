package config

import (
	"testing"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// decodeConfig parses TOML content in memory, returning the config and metadata.
func decodeConfig(t *testing.T, content string) (*Config, *toml.MetaData) {
	t.Helper()
	var cfg Config
	md, err := toml.Decode(content, &cfg)
	require.NoError(t, err)
	return &cfg, &md
}

// envMap returns an EnvFunc backed by a fixed map.
func envMap(m map[string]string) EnvFunc {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func TestResolve_DefaultsOnly(t *testing.T) {
	t.Parallel()
	rc := Resolve(DefaultConfig(), nil, nil, nil, nil)

	assert.Equal(t, DefaultModel, rc.Config.Anthropic.Model)
	assert.Equal(t, 3, rc.Config.Pipeline.MaxRevisionCycles)
	assert.Equal(t, "wiki", rc.Config.Output.Directory)
	assert.True(t, rc.Config.Search.Enabled)

	for key, src := range rc.Sources {
		assert.Equal(t, SourceDefault, src, "key %s should come from defaults", key)
	}
}

func TestResolve_SourceTrackingComplete(t *testing.T) {
	t.Parallel()
	rc := Resolve(DefaultConfig(), nil, nil, nil, nil)

	for _, key := range allKeys {
		_, ok := rc.Sources[key]
		assert.True(t, ok, "key %s missing from source map", key)
	}
}

func TestResolve_FileOverridesDefaults(t *testing.T) {
	t.Parallel()
	fileCfg, md := decodeConfig(t, `
[anthropic]
model = "claude-haiku-4-20250414"

[pipeline]
max_revision_cycles = 5
phase_timeout = "2m"

[output]
directory = "out"
`)

	rc := Resolve(DefaultConfig(), fileCfg, md, nil, nil)

	assert.Equal(t, "claude-haiku-4-20250414", rc.Config.Anthropic.Model)
	assert.Equal(t, SourceFile, rc.Sources["anthropic.model"])

	assert.Equal(t, 5, rc.Config.Pipeline.MaxRevisionCycles)
	assert.Equal(t, SourceFile, rc.Sources["pipeline.max_revision_cycles"])

	assert.Equal(t, 2*time.Minute, rc.Config.Pipeline.PhaseTimeout.Duration)
	assert.Equal(t, SourceFile, rc.Sources["pipeline.phase_timeout"])

	assert.Equal(t, "out", rc.Config.Output.Directory)
	assert.Equal(t, SourceFile, rc.Sources["output.directory"])

	// Keys absent from the file keep defaults.
	assert.Equal(t, 4096, rc.Config.Anthropic.MaxTokens)
	assert.Equal(t, SourceDefault, rc.Sources["anthropic.max_tokens"])
	assert.Equal(t, ".txt", rc.Config.Output.FileExtension)
	assert.Equal(t, SourceDefault, rc.Sources["output.file_extension"])
}

func TestResolve_FileZeroValuesRespected(t *testing.T) {
	// A file that explicitly sets a key to the Go zero value must win over a
	// non-zero default, which is why merging consults the TOML metadata.
	t.Parallel()
	fileCfg, md := decodeConfig(t, `
[search]
enabled = false

[links]
max_per_article = 0
`)

	rc := Resolve(DefaultConfig(), fileCfg, md, nil, nil)

	assert.False(t, rc.Config.Search.Enabled)
	assert.Equal(t, SourceFile, rc.Sources["search.enabled"])

	assert.Zero(t, rc.Config.Links.MaxPerArticle)
	assert.Equal(t, SourceFile, rc.Sources["links.max_per_article"])

	// Sibling keys in touched sections still come from defaults.
	assert.Equal(t, 5, rc.Config.Search.MaxResults)
	assert.Equal(t, SourceDefault, rc.Sources["search.max_results"])
}

func TestResolve_ApprovalGatesFromFile(t *testing.T) {
	t.Parallel()
	fileCfg, md := decodeConfig(t, `
[pipeline.approval]
after_factcheck = true
before_publish  = true
`)

	rc := Resolve(DefaultConfig(), fileCfg, md, nil, nil)

	assert.True(t, rc.Config.Pipeline.Approval.AfterFactCheck)
	assert.Equal(t, SourceFile, rc.Sources["pipeline.approval.after_factcheck"])
	assert.True(t, rc.Config.Pipeline.Approval.BeforePublish)
	assert.Equal(t, SourceFile, rc.Sources["pipeline.approval.before_publish"])

	assert.False(t, rc.Config.Pipeline.Approval.AfterResearch)
	assert.Equal(t, SourceDefault, rc.Sources["pipeline.approval.after_research"])
}

func TestResolve_TemperaturesFromFile(t *testing.T) {
	t.Parallel()
	fileCfg, md := decodeConfig(t, `
[anthropic.temperature]
writer = 0.9
critic = 0.1
`)

	rc := Resolve(DefaultConfig(), fileCfg, md, nil, nil)

	assert.InDelta(t, 0.9, rc.Config.Anthropic.Temperature.Writer, 1e-9)
	assert.Equal(t, SourceFile, rc.Sources["anthropic.temperature.writer"])
	assert.InDelta(t, 0.1, rc.Config.Anthropic.Temperature.Critic, 1e-9)
	assert.Equal(t, SourceFile, rc.Sources["anthropic.temperature.critic"])

	assert.InDelta(t, 0.3, rc.Config.Anthropic.Temperature.Research, 1e-9)
	assert.Equal(t, SourceDefault, rc.Sources["anthropic.temperature.research"])
}

func TestResolve_EnvOverridesFile(t *testing.T) {
	t.Parallel()
	fileCfg, md := decodeConfig(t, `
[anthropic]
model = "from-file"

[output]
directory = "from-file"
`)

	env := envMap(map[string]string{
		"PLUME_MODEL":      "from-env",
		"PLUME_OUTPUT_DIR": "env-wiki",
	})

	rc := Resolve(DefaultConfig(), fileCfg, md, env, nil)

	assert.Equal(t, "from-env", rc.Config.Anthropic.Model)
	assert.Equal(t, SourceEnv, rc.Sources["anthropic.model"])
	assert.Equal(t, "env-wiki", rc.Config.Output.Directory)
	assert.Equal(t, SourceEnv, rc.Sources["output.directory"])
}

func TestResolve_APIKeyFromEnvOnly(t *testing.T) {
	t.Parallel()
	env := envMap(map[string]string{"ANTHROPIC_API_KEY": "sk-test-123"})

	rc := Resolve(DefaultConfig(), nil, nil, env, nil)

	assert.Equal(t, "sk-test-123", rc.Config.Anthropic.APIKey)
	assert.Equal(t, SourceEnv, rc.Sources["anthropic.api_key"])
}

func TestResolve_APIKeyAbsent(t *testing.T) {
	t.Parallel()
	rc := Resolve(DefaultConfig(), nil, nil, envMap(nil), nil)

	assert.Empty(t, rc.Config.Anthropic.APIKey)
	assert.Equal(t, SourceDefault, rc.Sources["anthropic.api_key"])
}

func TestResolve_SearchProviderFromEnv(t *testing.T) {
	t.Parallel()
	env := envMap(map[string]string{"PLUME_SEARCH_PROVIDER": "wikidata"})

	rc := Resolve(DefaultConfig(), nil, nil, env, nil)

	assert.Equal(t, "wikidata", rc.Config.Search.DefaultProvider)
	assert.Equal(t, SourceEnv, rc.Sources["search.default_provider"])
}

func TestResolve_CLIOverridesEverything(t *testing.T) {
	t.Parallel()
	fileCfg, md := decodeConfig(t, `
[anthropic]
model = "from-file"
`)
	env := envMap(map[string]string{"PLUME_MODEL": "from-env"})

	model := "from-cli"
	outDir := "cli-wiki"
	cycles := 7
	searchOff := false
	overrides := &CLIOverrides{
		Model:             &model,
		OutputDir:         &outDir,
		MaxRevisionCycles: &cycles,
		SearchEnabled:     &searchOff,
	}

	rc := Resolve(DefaultConfig(), fileCfg, md, env, overrides)

	assert.Equal(t, "from-cli", rc.Config.Anthropic.Model)
	assert.Equal(t, SourceCLI, rc.Sources["anthropic.model"])
	assert.Equal(t, "cli-wiki", rc.Config.Output.Directory)
	assert.Equal(t, SourceCLI, rc.Sources["output.directory"])
	assert.Equal(t, 7, rc.Config.Pipeline.MaxRevisionCycles)
	assert.Equal(t, SourceCLI, rc.Sources["pipeline.max_revision_cycles"])
	assert.False(t, rc.Config.Search.Enabled)
	assert.Equal(t, SourceCLI, rc.Sources["search.enabled"])
}

func TestResolve_CLINilFieldsDoNotOverride(t *testing.T) {
	t.Parallel()
	rc := Resolve(DefaultConfig(), nil, nil, nil, &CLIOverrides{})

	assert.Equal(t, DefaultModel, rc.Config.Anthropic.Model)
	assert.Equal(t, SourceDefault, rc.Sources["anthropic.model"])
}

func TestResolve_CLIOverrideToEmptyString(t *testing.T) {
	t.Parallel()
	empty := ""
	rc := Resolve(DefaultConfig(), nil, nil, nil, &CLIOverrides{OutputDir: &empty})

	// A pointer to "" is an explicit override, not "unset".
	assert.Empty(t, rc.Config.Output.Directory)
	assert.Equal(t, SourceCLI, rc.Sources["output.directory"])
}

func TestResolve_NilArguments(t *testing.T) {
	t.Parallel()
	rc := Resolve(nil, nil, nil, nil, nil)

	require.NotNil(t, rc)
	require.NotNil(t, rc.Config)
	require.NotNil(t, rc.Sources)
	assert.Empty(t, rc.Config.Anthropic.Model)
}

func TestResolve_FileWithoutMetadataIgnored(t *testing.T) {
	t.Parallel()
	fileCfg, _ := decodeConfig(t, `
[anthropic]
model = "from-file"
`)

	// Without metadata the file layer cannot tell set from unset, so it is skipped.
	rc := Resolve(DefaultConfig(), fileCfg, nil, nil, nil)

	assert.Equal(t, DefaultModel, rc.Config.Anthropic.Model)
	assert.Equal(t, SourceDefault, rc.Sources["anthropic.model"])
}
