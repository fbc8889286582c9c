package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/oshokin/game-launcher/internal/domain/setup"
	"github.com/oshokin/game-launcher/internal/metrics"
)

const (
	defaultProgressWidth = 48
	maxProgressWidth     = 80
)

// SnapshotMsg delivers a new orchestrator snapshot to the model.
type SnapshotMsg setup.Snapshot

// Model is the bubbletea model of the launcher window.
type Model struct {
	snapshot  setup.Snapshot
	trigger   func()
	styles    Styles
	progress  progress.Model
	spinner   spinner.Model
	help      help.Model
	keys      keyMap
	showQueue bool
}

// NewModel creates a model that calls trigger on a manual advance.
func NewModel(initial setup.Snapshot, trigger func(), theme Theme, showQueue bool) Model {
	styles := theme.Styles()

	return Model{
		snapshot: initial,
		trigger:  trigger,
		styles:   styles,
		progress: progress.New(
			progress.WithGradient(theme.Accent, theme.Warning),
			progress.WithWidth(defaultProgressWidth),
		),
		spinner:   spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(styles.Spinner)),
		help:      help.New(),
		keys:      defaultKeyMap(),
		showQueue: showQueue,
	}
}

// Snapshot returns the snapshot currently displayed.
func (m Model) Snapshot() setup.Snapshot {
	return m.snapshot
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case SnapshotMsg:
		m.snapshot = setup.Snapshot(msg)
		return m, nil
	case tea.WindowSizeMsg:
		m.progress.Width = min(max(msg.Width-10, 10), maxProgressWidth) //nolint:mnd // Frame and margins.
		m.help.Width = msg.Width
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Advance):
		if m.canTrigger() {
			metrics.IncManualTrigger("tui")
			m.trigger()
		}
	}

	return m, nil
}

// canTrigger reports whether the manual trigger is enabled.
func (m Model) canTrigger() bool {
	return m.trigger != nil && !m.snapshot.Hidden && m.snapshot.TriggerEnabled()
}

// View implements tea.Model.
func (m Model) View() string {
	if m.snapshot.Hidden {
		return m.dormantView()
	}

	sections := []string{
		m.styles.Title.Render(m.title()),
		"",
		m.statusLine(),
	}

	if m.snapshot.Running() {
		sections = append(sections, m.progress.ViewAs(m.snapshot.Progress.Ratio()))
	}

	if m.snapshot.Phase == setup.PhaseFailed && m.snapshot.FailureReason != "" {
		sections = append(sections, m.styles.Failure.Render("Error: "+m.snapshot.FailureReason))
	}

	if button := m.button(); button != "" {
		sections = append(sections, button)
	}

	if m.showQueue && len(m.snapshot.Pending) > 0 {
		sections = append(sections, m.styles.Pending.Render("Pending: "+pendingList(m.snapshot.Pending)))
	}

	sections = append(sections, m.help.View(m.keys))

	return m.styles.Doc.Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func (m Model) dormantView() string {
	text := fmt.Sprintf("%s is running. Closing this window keeps the game running.", m.title())

	return m.styles.Doc.Render(lipgloss.JoinVertical(lipgloss.Left,
		m.styles.Title.Render(m.title()),
		"",
		m.styles.Help.Render(text),
	))
}

func (m Model) title() string {
	if m.snapshot.Title == "" {
		return "Game launcher"
	}

	return m.snapshot.Title
}

func (m Model) statusLine() string {
	status := m.snapshot.Status
	if m.snapshot.Running() {
		status = m.spinner.View() + " " + status
	}

	if m.snapshot.Phase == setup.PhaseFailed {
		return m.styles.Failure.Render(status)
	}

	return m.styles.Status.Render(status)
}

func (m Model) button() string {
	label := m.snapshot.NextLabel
	if label == "" {
		return ""
	}

	if m.snapshot.Phase == setup.PhaseFailed {
		label = "Retry " + strings.ToLower(label)
	}

	if !m.canTrigger() {
		return m.styles.Disabled.Render(label)
	}

	return m.styles.Button.Render(label)
}

func pendingList(kinds []setup.ActionKind) string {
	names := make([]string, 0, len(kinds))
	for _, kind := range kinds {
		names = append(names, kind.String())
	}

	return strings.Join(names, ", ")
}
