package agent

import (
	"embed"
	"fmt"
	"strings"
	"text/template"
)

//go:embed prompts/*.tmpl
var promptFS embed.FS

// promptTemplates holds every agent prompt. Delimiters are [[ ]] because
// wiki text and JSON examples are full of braces.
var promptTemplates = template.Must(
	template.New("prompts").
		Delims("[[", "]]").
		Funcs(template.FuncMap{
			"join": strings.Join,
		}).
		ParseFS(promptFS, "prompts/*.tmpl"))

// renderPrompt executes one named prompt template.
func renderPrompt(name string, data any) (string, error) {
	var b strings.Builder
	if err := promptTemplates.ExecuteTemplate(&b, name, data); err != nil {
		return "", fmt.Errorf("rendering prompt %s: %w", name, err)
	}
	return b.String(), nil
}

// numberedList renders items as "1. ...\n2. ..." for prompt readability.
func numberedList(items []string) string {
	var b strings.Builder
	for i, item := range items {
		fmt.Fprintf(&b, "%d. %s\n", i+1, item)
	}
	return strings.TrimRight(b.String(), "\n")
}

// bulletList renders items as "- ..." lines.
func bulletList(items []string) string {
	var b strings.Builder
	for _, item := range items {
		fmt.Fprintf(&b, "- %s\n", item)
	}
	return strings.TrimRight(b.String(), "\n")
}
