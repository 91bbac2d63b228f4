// Package tui renders a live progress dashboard for a pipeline run. It is a
// small bubbletea program fed by a monitor.ChannelListener: a checklist of
// the five phases with a spinner on the active one, a scrollable event log,
// and a token/outcome summary line. The program quits when the event source
// closes or the user presses q.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/plumeworks/plume/internal/document"
	"github.com/plumeworks/plume/internal/logging"
	"github.com/plumeworks/plume/internal/monitor"
)

// maxLogEntries bounds the event log; the oldest entry is evicted when full.
const maxLogEntries = 200

// logHeight is the viewport height of the event log panel.
const logHeight = 8

// eventMsg wraps one pipeline event received from the monitor channel.
type eventMsg monitor.Event

// eventsClosedMsg signals that the event source closed: the run is over.
type eventsClosedMsg struct{}

// waitForEvent reads a single event from ch. Re-issue it after every
// received event to keep draining the channel.
func waitForEvent(ch <-chan monitor.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return eventsClosedMsg{}
		}
		return eventMsg(ev)
	}
}

type phaseStatus int

const (
	phaseTodo phaseStatus = iota
	phaseRunning
	phaseDone
	phaseFailed
)

// phaseRow is one line of the checklist.
type phaseRow struct {
	state    document.State
	label    string
	role     string
	status   phaseStatus
	duration time.Duration
}

// logEntry is one formatted line of the event log.
type logEntry struct {
	when time.Time
	typ  monitor.EventType
	text string
}

// Dashboard is the bubbletea model for the progress view.
type Dashboard struct {
	theme  Theme
	title  string
	events <-chan monitor.Event

	phases  []phaseRow
	spinner spinner.Model
	log     viewport.Model
	entries []logEntry

	width int
	ready bool

	revisions    int
	inputTokens  int
	outputTokens int
	waitingGate  string

	finished bool
	failed   bool
	finalMsg string
}

var _ tea.Model = Dashboard{}

// NewDashboard builds a dashboard for one run. The title is usually the
// topic; run_started events overwrite it with the document's own title.
func NewDashboard(title string, events <-chan monitor.Event) Dashboard {
	theme := DefaultTheme()
	sp := spinner.New(spinner.WithSpinner(spinner.MiniDot), spinner.WithStyle(theme.PhaseActive))
	return Dashboard{
		theme:  theme,
		title:  title,
		events: events,
		phases: []phaseRow{
			{state: document.StateResearching, label: "research", role: "researcher"},
			{state: document.StateDrafting, label: "draft", role: "writer"},
			{state: document.StateFactChecking, label: "fact check", role: "factchecker"},
			{state: document.StateEditing, label: "edit", role: "editor"},
			{state: document.StateCritiquing, label: "critique", role: "critic"},
		},
		spinner: sp,
		log:     viewport.New(0, logHeight),
	}
}

// Init starts the spinner and the first channel read.
func (d Dashboard) Init() tea.Cmd {
	return tea.Batch(d.spinner.Tick, waitForEvent(d.events))
}

// Update handles window sizing, key bindings, spinner ticks, and pipeline
// events. Every consumed event immediately re-arms the channel read.
func (d Dashboard) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		d.width = msg.Width
		d.ready = true
		logWidth := msg.Width - 4
		if logWidth < 10 {
			logWidth = 10
		}
		d.log.Width = logWidth
		d.log.Height = logHeight
		d.rebuildLog()
		return d, nil

	case tea.KeyMsg:
		return d.handleKey(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		d.spinner, cmd = d.spinner.Update(msg)
		return d, cmd

	case eventMsg:
		d.apply(monitor.Event(msg))
		return d, waitForEvent(d.events)

	case eventsClosedMsg:
		d.finished = true
		return d, tea.Quit
	}

	return d, nil
}

func (d Dashboard) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return d, tea.Quit
	case "up", "k":
		d.log.ScrollUp(1)
	case "down", "j":
		d.log.ScrollDown(1)
	case "pgup":
		d.log.PageUp()
	case "pgdown":
		d.log.PageDown()
	case "G", "end":
		d.log.GotoBottom()
	}
	return d, nil
}

// apply folds one pipeline event into the model state.
func (d *Dashboard) apply(ev monitor.Event) {
	switch ev.Type {
	case monitor.EventRunStarted:
		if ev.Message != "" {
			d.title = ev.Message
		}
	case monitor.EventPhaseStarted:
		d.setPhase(ev.State, phaseRunning, 0)
		d.waitingGate = ""
	case monitor.EventPhaseCompleted:
		d.setPhase(ev.State, phaseDone, ev.Duration)
		d.inputTokens += ev.InputTokens
		d.outputTokens += ev.OutputTokens
	case monitor.EventRevisionStarted:
		d.revisions++
	case monitor.EventApprovalRequested:
		d.waitingGate = ev.Message
	case monitor.EventApprovalResolved:
		d.waitingGate = ""
	case monitor.EventDocumentPublished:
		d.finalMsg = ev.Message
	case monitor.EventRunFailed:
		d.failed = true
		d.finalMsg = ev.Message
		d.setPhase(ev.State, phaseFailed, 0)
	}
	d.addEntry(ev)
}

// setPhase updates the checklist row for state, keeping an earlier duration
// when the update carries none. States outside the checklist are ignored.
func (d *Dashboard) setPhase(state document.State, status phaseStatus, duration time.Duration) {
	for i := range d.phases {
		if d.phases[i].state != state {
			continue
		}
		d.phases[i].status = status
		if duration > 0 {
			d.phases[i].duration = duration
		}
		return
	}
}

func (d *Dashboard) addEntry(ev monitor.Event) {
	text := formatEvent(ev)
	if text == "" {
		return
	}
	d.entries = append(d.entries, logEntry{when: ev.Timestamp, typ: ev.Type, text: text})
	if len(d.entries) > maxLogEntries {
		d.entries = d.entries[len(d.entries)-maxLogEntries:]
	}
	d.rebuildLog()
}

func (d *Dashboard) rebuildLog() {
	if len(d.entries) == 0 {
		d.log.SetContent("")
		return
	}
	lines := make([]string, len(d.entries))
	for i, e := range d.entries {
		ts := d.theme.EventTimestamp.Render(e.when.Format("15:04:05"))
		lines[i] = ts + " " + d.entryStyle(e.typ).Render(e.text)
	}
	d.log.SetContent(strings.Join(lines, "\n"))
	d.log.GotoBottom()
}

func (d Dashboard) entryStyle(typ monitor.EventType) lipgloss.Style {
	switch typ {
	case monitor.EventPhaseCompleted, monitor.EventDocumentPublished:
		return d.theme.EventSuccess
	case monitor.EventRevisionStarted, monitor.EventApprovalRequested:
		return d.theme.EventWarning
	case monitor.EventRunFailed:
		return d.theme.EventError
	default:
		return d.theme.EventMessage
	}
}

// formatEvent renders one event as a log line. Unknown types fall back to
// the raw message.
func formatEvent(ev monitor.Event) string {
	switch ev.Type {
	case monitor.EventRunStarted:
		return fmt.Sprintf("run started: %s", ev.Message)
	case monitor.EventPhaseStarted:
		return fmt.Sprintf("%s started %s", ev.Role, strings.ToLower(string(ev.State)))
	case monitor.EventPhaseCompleted:
		line := fmt.Sprintf("%s finished %s", ev.Role, strings.ToLower(string(ev.State)))
		if ev.Duration > 0 {
			line += fmt.Sprintf(" in %s", ev.Duration.Round(time.Millisecond))
		}
		return line
	case monitor.EventRevisionStarted:
		return ev.Message
	case monitor.EventApprovalRequested:
		return fmt.Sprintf("waiting for approval at %s", ev.Message)
	case monitor.EventApprovalResolved:
		return fmt.Sprintf("approval resolved: %s", ev.Message)
	case monitor.EventDocumentPublished:
		return fmt.Sprintf("published %s", ev.Message)
	case monitor.EventRunFailed:
		return fmt.Sprintf("failed: %s", ev.Message)
	default:
		return ev.Message
	}
}

// View renders the title bar, phase checklist, summary, and event log.
func (d Dashboard) View() string {
	if !d.ready {
		return "starting plume..."
	}

	var b strings.Builder
	b.WriteString(d.theme.TitleBar.Width(d.width).Render("plume  " + d.title))
	b.WriteString("\n\n")

	for _, row := range d.phases {
		b.WriteString(d.renderPhase(row))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString(d.summaryLine())
	b.WriteString("\n")

	b.WriteString(d.theme.LogContainer.Width(d.width - 2).Render(
		d.theme.LogHeader.Render("Events") + "\n" + d.log.View()))
	b.WriteString("\n")

	b.WriteString(d.theme.Help.Render("q quit   up/down scroll"))
	b.WriteString("\n")
	return b.String()
}

func (d Dashboard) renderPhase(row phaseRow) string {
	var indicator string
	switch row.status {
	case phaseRunning:
		indicator = d.spinner.View()
	case phaseDone:
		indicator = d.theme.PhaseDone.Render("✓")
	case phaseFailed:
		indicator = d.theme.PhaseFailed.Render("✗")
	default:
		indicator = d.theme.PhaseTodo.Render("○")
	}

	label := d.theme.PhaseLabel.Render(fmt.Sprintf("%-11s", row.label))
	if row.status == phaseRunning {
		label = d.theme.PhaseActive.Render(fmt.Sprintf("%-11s", row.label))
	}
	line := fmt.Sprintf("  %s %s %s", indicator, label, d.theme.PhaseRole.Render(row.role))
	if row.duration > 0 {
		line += "  " + d.theme.Duration.Render(row.duration.Round(time.Millisecond).String())
	}
	return line
}

func (d Dashboard) summaryLine() string {
	parts := []string{
		fmt.Sprintf("revisions %d", d.revisions),
		fmt.Sprintf("tokens %d in / %d out", d.inputTokens, d.outputTokens),
	}
	line := d.theme.Summary.Render("  " + strings.Join(parts, "   "))

	if d.waitingGate != "" {
		line += "\n" + d.theme.Waiting.Render("  awaiting approval at "+d.waitingGate)
	}
	if d.finalMsg != "" {
		style := d.theme.FinalPath
		prefix := "  published "
		if d.failed {
			style = d.theme.FinalFail
			prefix = "  failed: "
		}
		line += "\n" + style.Render(prefix+d.finalMsg)
	}
	return line
}

// Run drives the dashboard until the event channel closes or the user quits.
// The final frame stays on screen, so the published path (or failure) is
// still visible after the program exits.
func Run(ctx context.Context, title string, events <-chan monitor.Event) error {
	logger := logging.New("tui")
	logger.Debug("starting dashboard", "title", title)

	p := tea.NewProgram(NewDashboard(title, events), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("running dashboard: %w", err)
	}
	return nil
}
