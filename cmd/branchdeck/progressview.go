package main

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/v2/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/develar/branch-deck/internal/branchdeck"
	"github.com/develar/branch-deck/internal/progress"
)

var (
	branchdeckYellow = lipgloss.AdaptiveColor{Light: "3", Dark: "11"}
	branchdeckGreen  = lipgloss.AdaptiveColor{Light: "2", Dark: "10"}
	branchdeckRed    = lipgloss.AdaptiveColor{Light: "1", Dark: "9"}
	branchdeckGray   = lipgloss.AdaptiveColor{Light: "8", Dark: "8"}

	_runningStyle = lipgloss.NewStyle().Foreground(branchdeckYellow)
	_doneStyle    = lipgloss.NewStyle().Foreground(branchdeckGreen)
	_conflictStyle = lipgloss.NewStyle().Foreground(branchdeckRed)
	_faintStyle   = lipgloss.NewStyle().Foreground(branchdeckGray).Faint(true)
)

// progressEventMsg wraps a [progress.Event] so it can travel through
// bubbletea's update loop.
type progressEventMsg progress.Event

type branchRow struct {
	fullName string
	message  string
	started  time.Time
	done     bool
	conflict bool
}

// progressModel renders sync's live cherry-pick progress as a scrolling
// list of branches, each with a spinner until it finishes.
type progressModel struct {
	spinner spinner.Model
	events  <-chan progress.Event
	order   []string
	rows    map[string]*branchRow
	done    bool
}

func newProgressModel(events <-chan progress.Event) progressModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = _runningStyle
	return progressModel{spinner: s, events: events, rows: make(map[string]*branchRow)}
}

func waitForEvent(events <-chan progress.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return nil
		}
		return progressEventMsg(ev)
	}
}

func (m progressModel) Init() tea.Cmd {
	return tea.Batch(spinner.Tick, waitForEvent(m.events))
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case progressEventMsg:
		if msg.FullName == "" && msg.Kind == progress.KindRoundEnd {
			m.done = true
			return m, tea.Quit
		}

		row, ok := m.rows[msg.FullName]
		if !ok {
			row = &branchRow{fullName: msg.FullName, started: msg.Time}
			m.rows[msg.FullName] = row
			m.order = append(m.order, msg.FullName)
		}
		row.message = msg.Message
		if msg.Kind == progress.KindTaskEnd {
			row.done = true
			if outcome, ok := msg.Outcome.(branchdeck.BranchOutcome); ok && outcome.Kind == branchdeck.OutcomeConflicted {
				row.conflict = true
			}
		}
		return m, waitForEvent(m.events)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	default:
		return m, nil
	}
}

func (m progressModel) View() string {
	var out string
	for _, name := range m.order {
		row := m.rows[name]
		elapsed := humanize.RelTime(row.started, time.Now(), "", "")

		switch {
		case row.conflict:
			out += _conflictStyle.Render("✗ "+name) + " " + row.message + "\n"
		case row.done:
			out += _doneStyle.Render("✓ "+name) + " " + row.message + "\n"
		default:
			out += m.spinner.View() + " " + name + " " + _faintStyle.Render(fmt.Sprintf("(%s)", elapsed)) + "\n"
		}
	}
	return out
}
