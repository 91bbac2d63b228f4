package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// ColorPrimary is the brand/accent color used for the title bar and labels.
var ColorPrimary = lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#7B78FF"}

// ColorSuccess marks completed phases and the published path (green).
var ColorSuccess = lipgloss.AdaptiveColor{Light: "#16A34A", Dark: "#4ADE80"}

// ColorWarning marks revisions and pending approvals (amber).
var ColorWarning = lipgloss.AdaptiveColor{Light: "#D97706", Dark: "#FBBF24"}

// ColorError marks failures (red).
var ColorError = lipgloss.AdaptiveColor{Light: "#DC2626", Dark: "#F87171"}

// ColorMuted is a subdued foreground for secondary text.
var ColorMuted = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"}

// ColorBorder is the panel border color.
var ColorBorder = lipgloss.AdaptiveColor{Light: "#E5E7EB", Dark: "#374151"}

// Theme holds the lipgloss styles for the progress dashboard. Width is never
// baked into a theme style; the dashboard applies it at render time.
type Theme struct {
	TitleBar lipgloss.Style

	PhaseLabel  lipgloss.Style
	PhaseRole   lipgloss.Style
	PhaseActive lipgloss.Style
	PhaseDone   lipgloss.Style
	PhaseTodo   lipgloss.Style
	PhaseFailed lipgloss.Style
	Duration    lipgloss.Style

	LogContainer   lipgloss.Style
	LogHeader      lipgloss.Style
	EventTimestamp lipgloss.Style
	EventMessage   lipgloss.Style
	EventSuccess   lipgloss.Style
	EventWarning   lipgloss.Style
	EventError     lipgloss.Style

	Summary   lipgloss.Style
	Waiting   lipgloss.Style
	FinalPath lipgloss.Style
	FinalFail lipgloss.Style
	Help      lipgloss.Style
}

// DefaultTheme returns the dashboard theme. All colors are adaptive so the
// dashboard reads on both light and dark terminals.
func DefaultTheme() Theme {
	return Theme{
		TitleBar: lipgloss.NewStyle().
			Bold(true).
			Background(ColorPrimary).
			Foreground(lipgloss.Color("#FFFFFF")).
			Padding(0, 1),

		PhaseLabel:  lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#1F2937", Dark: "#E5E7EB"}),
		PhaseRole:   lipgloss.NewStyle().Foreground(ColorMuted),
		PhaseActive: lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary),
		PhaseDone:   lipgloss.NewStyle().Foreground(ColorSuccess),
		PhaseTodo:   lipgloss.NewStyle().Foreground(ColorMuted),
		PhaseFailed: lipgloss.NewStyle().Bold(true).Foreground(ColorError),
		Duration:    lipgloss.NewStyle().Foreground(ColorMuted),

		LogContainer: lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1),
		LogHeader:      lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary),
		EventTimestamp: lipgloss.NewStyle().Foreground(ColorMuted),
		EventMessage:   lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#111827", Dark: "#F9FAFB"}),
		EventSuccess:   lipgloss.NewStyle().Foreground(ColorSuccess),
		EventWarning:   lipgloss.NewStyle().Foreground(ColorWarning),
		EventError:     lipgloss.NewStyle().Bold(true).Foreground(ColorError),

		Summary:   lipgloss.NewStyle().Foreground(ColorMuted),
		Waiting:   lipgloss.NewStyle().Bold(true).Foreground(ColorWarning),
		FinalPath: lipgloss.NewStyle().Bold(true).Foreground(ColorSuccess),
		FinalFail: lipgloss.NewStyle().Bold(true).Foreground(ColorError),
		Help:      lipgloss.NewStyle().Foreground(ColorMuted),
	}
}
