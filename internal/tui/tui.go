// Package tui provides a Bubble Tea view of the running timer.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Marki500/taskery-v2/internal/timer"
)

// ── Styles ────────────

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 2)

	clockStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86"))

	pausedClockStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("178"))

	taskStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("15"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("33")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	errStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

// ── Messages ─────────

type snapshotMsg timer.Snapshot

type stopDoneMsg struct {
	result *timer.StopResult
	err    error
}

// ── Model ────────────

// Model is the root Bubble Tea model for the live timer view.
type Model struct {
	engine *timer.Engine
	spin   spinner.Model
	snap   timer.Snapshot
	last   *timer.StopResult
	errMsg string
}

// New creates the watch model around a (possibly still restoring) engine.
func New(engine *timer.Engine) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return Model{
		engine: engine,
		spin:   sp,
		snap:   engine.Snapshot(),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, waitForUpdate(m.engine))
}

// waitForUpdate relays the engine's 1 Hz tick into the Bubble Tea loop.
func waitForUpdate(engine *timer.Engine) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(<-engine.Updates())
	}
}

func stopTimer(engine *timer.Engine) tea.Cmd {
	return func() tea.Msg {
		res, err := engine.Stop(context.Background())
		return stopDoneMsg{result: res, err: err}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "s":
			return m, stopTimer(m.engine)
		case "p":
			m.engine.Pause()
			m.snap = m.engine.Snapshot()
			return m, nil
		case "r":
			m.engine.Resume()
			m.snap = m.engine.Snapshot()
			return m, waitForUpdate(m.engine)
		}
	case snapshotMsg:
		m.snap = timer.Snapshot(msg)
		return m, waitForUpdate(m.engine)
	case stopDoneMsg:
		m.snap = m.engine.Snapshot()
		if msg.err != nil {
			m.errMsg = fmt.Sprintf("saving tracked time failed: %v", msg.err)
		} else {
			m.errMsg = ""
			m.last = msg.result
		}
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		if m.snap.Restoring {
			m.snap = m.engine.Snapshot()
		}
		return m, cmd
	}
	return m, nil
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("taskery"))
	b.WriteString("\n\n")

	switch {
	case m.snap.Restoring:
		b.WriteString(m.spin.View())
		b.WriteString(dimStyle.Render(" restoring timer..."))
		b.WriteString("\n")
	case m.snap.Task == nil:
		b.WriteString(dimStyle.Render("No active timer."))
		b.WriteString("\n")
		if m.last != nil {
			b.WriteString("\n")
			b.WriteString(labelStyle.Render("Saved: "))
			b.WriteString(taskStyle.Render(timer.FormatClock(m.last.Duration)))
			b.WriteString(dimStyle.Render(fmt.Sprintf("  (task total %s)", timer.FormatClock(m.last.NewTotalTime))))
			b.WriteString("\n")
		}
	default:
		clock := clockStyle
		state := "running"
		if !m.snap.Running {
			clock = pausedClockStyle
			state = "paused"
		}
		b.WriteString(clock.Render(timer.FormatClock(m.snap.ElapsedSeconds)))
		b.WriteString(dimStyle.Render("  " + state))
		b.WriteString("\n\n")
		b.WriteString(labelStyle.Render("Task:  "))
		b.WriteString(taskStyle.Render(m.snap.Task.Title))
		b.WriteString("\n")
		b.WriteString(labelStyle.Render("Total: "))
		b.WriteString(taskStyle.Render(timer.FormatClock(m.snap.TotalElapsed)))
		b.WriteString("\n")
	}

	if m.errMsg != "" {
		b.WriteString("\n")
		b.WriteString(errStyle.Render(m.errMsg))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(hintStyle.Render("s stop · p pause · r resume · q quit"))
	b.WriteString("\n")
	return b.String()
}

// Run starts the watch view and blocks until the user quits.
func Run(engine *timer.Engine) error {
	p := tea.NewProgram(New(engine), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
