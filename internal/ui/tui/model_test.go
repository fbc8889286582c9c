package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/oshokin/game-launcher/internal/domain/setup"
)

type triggerCounter struct {
	calls int
}

func (c *triggerCounter) Trigger() {
	c.calls++
}

func newTestModel(snapshot setup.Snapshot) (Model, *triggerCounter) {
	counter := &triggerCounter{}

	return NewModel(snapshot, counter.Trigger, ThemeByName("mono"), true), counter
}

func readySnapshot() setup.Snapshot {
	return setup.Snapshot{
		Title:     "Zero-K",
		Phase:     setup.PhaseReady,
		Pending:   setup.DefaultSequence(),
		NextLabel: setup.LabelSelfUpdate,
		Status:    "Ready.",
	}
}

func press(m tea.Model, key tea.KeyMsg) (tea.Model, tea.Cmd) {
	return m.Update(key)
}

func TestModel_EnterTriggersWhenReady(t *testing.T) {
	t.Parallel()

	model, counter := newTestModel(readySnapshot())

	updated, cmd := press(model, tea.KeyMsg{Type: tea.KeyEnter})
	require.Nil(t, cmd)
	require.Equal(t, 1, counter.calls)

	_, _ = press(updated, tea.KeyMsg{Type: tea.KeySpace})
	require.Equal(t, 2, counter.calls)
}

func TestModel_TriggerDisabledWhileRunning(t *testing.T) {
	t.Parallel()

	snapshot := readySnapshot()
	snapshot.Phase = setup.PhaseRunning
	snapshot.Current = setup.ActionDownloadGame
	snapshot.Progress = setup.Progress{Current: 50, Total: 100}

	model, counter := newTestModel(snapshot)

	_, _ = press(model, tea.KeyMsg{Type: tea.KeyEnter})
	require.Zero(t, counter.calls)
}

func TestModel_SnapshotMsgReplacesState(t *testing.T) {
	t.Parallel()

	model, _ := newTestModel(readySnapshot())

	failed := readySnapshot()
	failed.Phase = setup.PhaseFailed
	failed.NextLabel = setup.LabelDownload
	failed.FailedAction = setup.ActionDownloadGame
	failed.FailureReason = "network"
	failed.Status = "Failed to download zk:stable: network"

	updated, _ := model.Update(SnapshotMsg(failed))

	view := updated.View()
	require.Contains(t, view, "Error: network")
	require.Contains(t, view, "Retry download")
	require.Equal(t, setup.PhaseFailed, updated.(Model).Snapshot().Phase)
}

func TestModel_ViewShowsLabelAndQueue(t *testing.T) {
	t.Parallel()

	model, _ := newTestModel(readySnapshot())

	view := model.View()
	require.Contains(t, view, "Zero-K")
	require.Contains(t, view, setup.LabelSelfUpdate)
	require.Contains(t, view, "download_engine")
}

func TestModel_DormantAfterLaunch(t *testing.T) {
	t.Parallel()

	snapshot := setup.Snapshot{Title: "Zero-K", Phase: setup.PhaseIdle, Hidden: true}
	model, counter := newTestModel(snapshot)

	require.Contains(t, model.View(), "is running")

	_, _ = press(model, tea.KeyMsg{Type: tea.KeyEnter})
	require.Zero(t, counter.calls)
}

func TestModel_QuitKeys(t *testing.T) {
	t.Parallel()

	model, _ := newTestModel(readySnapshot())

	_, cmd := press(model, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	require.IsType(t, tea.QuitMsg{}, cmd())

	_, cmd = press(model, tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	require.IsType(t, tea.QuitMsg{}, cmd())
}

func TestThemeByName_FallsBackToDefault(t *testing.T) {
	t.Parallel()

	require.Equal(t, "Default", ThemeByName("unknown").Name)
	require.Equal(t, "Mono", ThemeByName(" MONO ").Name)
}
