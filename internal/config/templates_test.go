package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func starterVars() TemplateVars {
	return TemplateVars{
		UniverseName: "PersonalFinance",
		Model:        DefaultModel,
		OutputDir:    "wiki",
	}
}

func TestListTemplates(t *testing.T) {
	t.Parallel()
	names, err := ListTemplates()
	require.NoError(t, err)
	assert.Contains(t, names, "starter")
}

func TestTemplateExists(t *testing.T) {
	t.Parallel()
	assert.True(t, TemplateExists("starter"))
	assert.False(t, TemplateExists("no-such-template"))
	assert.False(t, TemplateExists(""))
}

func TestRenderTemplate_CreatesFiles(t *testing.T) {
	t.Parallel()
	dest := t.TempDir()

	created, err := RenderTemplate("starter", dest, starterVars(), false)
	require.NoError(t, err)
	require.NotEmpty(t, created)

	// The .tmpl extension is stripped from rendered files.
	assert.FileExists(t, filepath.Join(dest, "plume.toml"))
	assert.FileExists(t, filepath.Join(dest, "universe.toml"))
	assert.FileExists(t, filepath.Join(dest, "briefs", "getting-started.toml"))
	assert.NoFileExists(t, filepath.Join(dest, "plume.toml.tmpl"))
}

func TestRenderTemplate_SubstitutesVars(t *testing.T) {
	t.Parallel()
	dest := t.TempDir()

	_, err := RenderTemplate("starter", dest, starterVars(), false)
	require.NoError(t, err)

	tomlBytes, err := os.ReadFile(filepath.Join(dest, "plume.toml"))
	require.NoError(t, err)
	assert.Contains(t, string(tomlBytes), DefaultModel)
	assert.Contains(t, string(tomlBytes), "PersonalFinance")
	assert.NotContains(t, string(tomlBytes), "{{", "unsubstituted template vars left behind")

	uniBytes, err := os.ReadFile(filepath.Join(dest, "universe.toml"))
	require.NoError(t, err)
	assert.Contains(t, string(uniBytes), `name        = "PersonalFinance"`)
}

func TestRenderTemplate_OutputParsesAndValidates(t *testing.T) {
	t.Parallel()
	dest := t.TempDir()

	_, err := RenderTemplate("starter", dest, starterVars(), false)
	require.NoError(t, err)

	cfg, md, err := Load(filepath.Join(dest, "plume.toml"))
	require.NoError(t, err)
	assert.Empty(t, md.Undecoded(), "starter plume.toml must not contain unknown keys")

	vr := Validate(cfg, &md)
	assert.False(t, vr.HasErrors(), "starter plume.toml must validate clean: %+v", vr.Errors())
}

func TestRenderTemplate_SkipsExistingWithoutForce(t *testing.T) {
	t.Parallel()
	dest := t.TempDir()

	existing := filepath.Join(dest, "plume.toml")
	require.NoError(t, os.WriteFile(existing, []byte("# keep me\n"), 0o644))

	created, err := RenderTemplate("starter", dest, starterVars(), false)
	require.NoError(t, err)

	content, err := os.ReadFile(existing)
	require.NoError(t, err)
	assert.Equal(t, "# keep me\n", string(content))
	assert.NotContains(t, created, existing)
}

func TestRenderTemplate_OverwritesWithForce(t *testing.T) {
	t.Parallel()
	dest := t.TempDir()

	existing := filepath.Join(dest, "plume.toml")
	require.NoError(t, os.WriteFile(existing, []byte("# old\n"), 0o644))

	created, err := RenderTemplate("starter", dest, starterVars(), true)
	require.NoError(t, err)
	assert.Contains(t, created, existing)

	content, err := os.ReadFile(existing)
	require.NoError(t, err)
	assert.NotEqual(t, "# old\n", string(content))
}

func TestRenderTemplate_UnknownTemplate(t *testing.T) {
	t.Parallel()
	_, err := RenderTemplate("nonexistent", t.TempDir(), starterVars(), false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestRenderTemplate_BriefIsDecodable(t *testing.T) {
	t.Parallel()
	dest := t.TempDir()

	_, err := RenderTemplate("starter", dest, starterVars(), false)
	require.NoError(t, err)

	// The starter brief must decode as a flat TOML document with the
	// fields `plume publish` expects.
	var brief struct {
		Topic            string   `toml:"topic"`
		Audience         string   `toml:"audience"`
		TargetWordCount  int      `toml:"target_word_count"`
		RequiredSections []string `toml:"required_sections"`
	}
	_, err = toml.DecodeFile(filepath.Join(dest, "briefs", "getting-started.toml"), &brief)
	require.NoError(t, err)
	assert.Contains(t, brief.Topic, "PersonalFinance")
	assert.Equal(t, 400, brief.TargetWordCount)
}
