package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/studylit/internal/app"
	"github.com/julianstephens/studylit/internal/constants"
	"github.com/julianstephens/studylit/internal/models"
	"github.com/julianstephens/studylit/internal/timer"
	"github.com/julianstephens/studylit/internal/utils"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.mode != modeNormal {
		return m.updateForm(msg)
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.progress.Width = min(msg.Width-8, 60)
		h, v := docStyle.GetFrameSize()
		m.records.SetSize(msg.Width-h, msg.Height-v-4)
		m.stats.SetSize(msg.Width-h, msg.Height-v-4)
		return m, nil

	case tickMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		if m.app.TickTimer(context.Background()) {
			m.setMessage("🔔 " + constants.RestOverBody)
		}
		if m.app.Timer.State() == models.StateIdle {
			return m, nil
		}
		return m, m.tickCmd()

	case progress.FrameMsg:
		pm, cmd := m.progress.Update(msg)
		if p, ok := pm.(progress.Model); ok {
			m.progress = p
		}
		return m, cmd

	case tea.KeyMsg:
		if m.tab == TabRecords && m.records.Filtering() {
			break
		}
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case key.Matches(msg, m.keys.Tab):
			m.tab = (m.tab + 1) % Tab(len(tabTitles))
			return m, nil
		case key.Matches(msg, m.keys.ShiftTab):
			m.tab = (m.tab - 1 + Tab(len(tabTitles))) % Tab(len(tabTitles))
			return m, nil
		}

		switch m.tab {
		case TabTimer:
			return m.handleTimerKey(msg)
		case TabStats:
			return m.handleStatsKey(msg)
		case TabGoals:
			if key.Matches(msg, m.keys.Goal) {
				return m.openGoalForm()
			}
		}
	}

	var cmd tea.Cmd
	switch m.tab {
	case TabRecords:
		m.records, cmd = m.records.Update(msg)
	case TabStats:
		m.stats, cmd = m.stats.Update(msg)
	}
	return m, cmd
}

func (m Model) handleTimerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	t := m.app.Timer
	switch {
	case key.Matches(msg, m.keys.Start):
		if t.State() == models.StateStudying {
			return m, nil
		}
		wasResting := t.State() == models.StateResting
		t.StartStudy()
		if wasResting {
			m.setMessage("New study session started")
		} else {
			m.setMessage("")
		}
		return m, m.restartTicks()

	case key.Matches(msg, m.keys.Pause):
		if err := t.PauseStudy(); err != nil {
			if errors.Is(err, timer.ErrNotStudying) {
				return m, nil
			}
			m.setError(err)
			return m, nil
		}
		m.setMessage("Paused")
		return m, m.restartTicks()

	case key.Matches(msg, m.keys.Rest):
		if t.State() == models.StateIdle {
			return m, nil
		}
		t.StopStudy(m.restMinutes)
		m.setMessage(fmt.Sprintf("Resting for %d min", m.restMinutes))
		return m, m.restartTicks()

	case key.Matches(msg, m.keys.RestUp), key.Matches(msg, m.keys.RestDown):
		if t.State() == models.StateResting {
			m.setMessage("Rest length applies to the next break")
		}
		if key.Matches(msg, m.keys.RestUp) && m.restMinutes < constants.MaxRestMinutes {
			m.restMinutes++
		}
		if key.Matches(msg, m.keys.RestDown) && m.restMinutes > 1 {
			m.restMinutes--
		}
		return m, nil

	case key.Matches(msg, m.keys.Postpone):
		s := t.Session()
		if s.IsResting && s.RestTimeExpired {
			t.SetRestPostponed(true)
			m.setMessage("Break alert snoozed")
		}
		return m, nil

	case key.Matches(msg, m.keys.Finish):
		if t.Elapsed() == 0 {
			m.setMessage("Nothing to record yet")
			return m, nil
		}
		return m.openSubjectForm()

	case key.Matches(msg, m.keys.Discard):
		if t.State() == models.StateStudying || t.Elapsed() == 0 {
			return m, nil
		}
		t.CompleteEnd()
		m.setMessage("Session discarded")
		return m, m.restartTicks()
	}
	return m, nil
}

func (m Model) handleStatsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Prev):
		m.stats.Offset--
	case key.Matches(msg, m.keys.Next):
		if m.stats.Offset < 0 {
			m.stats.Offset++
		}
	case key.Matches(msg, m.keys.Mode):
		m.stats.ToggleMode()
	default:
		var cmd tea.Cmd
		m.stats, cmd = m.stats.Update(msg)
		return m, cmd
	}
	m.stats.Load(m.app.Ledger)
	return m, nil
}

func (m Model) openSubjectForm() (tea.Model, tea.Cmd) {
	m.subjectForm = &SubjectFormModel{Choice: QuickSubjects[0]}
	m.form = NewSubjectForm(m.subjectForm, utils.FormatDuration(m.app.Timer.Elapsed()))
	m.mode = modeSubject
	return m, m.form.Init()
}

func (m Model) openGoalForm() (tea.Model, tea.Cmd) {
	m.goalForm = &GoalFormModel{Kind: constants.PeriodDaily}
	if g, ok := m.app.Goals.ActiveGoal(constants.PeriodDaily); ok {
		m.goalForm.Minutes = strconv.Itoa(g.TargetSeconds / 60)
	}
	m.form = NewGoalForm(m.goalForm, m.app.Gate.Check())
	m.mode = modeGoal
	return m, m.form.Init()
}

func (m Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEsc {
		m.mode = modeNormal
		return m, nil
	}
	// keep the clock running underneath the form
	if tick, ok := msg.(tickMsg); ok {
		if tick.gen != m.gen {
			return m, nil
		}
		m.app.TickTimer(context.Background())
		return m, m.tickCmd()
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		var done tea.Cmd
		if m.mode == modeSubject {
			done = m.finishSession()
		} else {
			m.saveGoal()
		}
		m.mode = modeNormal
		return m, tea.Batch(cmd, done)
	case huh.StateAborted:
		m.mode = modeNormal
	}
	return m, cmd
}

func (m *Model) finishSession() tea.Cmd {
	summary, err := m.app.FinishSession(context.Background(), m.subjectForm.Subject())
	if err != nil {
		if errors.Is(err, app.ErrSessionTooShort) {
			m.setMessage(err.Error() + ". Keep going, or pause and discard with 'd'.")
			return nil
		}
		m.setError(err)
		return nil
	}

	parts := []string{fmt.Sprintf("✓ Recorded %s of %s", utils.FormatDuration(summary.Record.DurationSeconds), summary.Record.Subject)}
	parts = append(parts, summary.Alerts...)
	m.setMessage(strings.Join(parts, "  "))
	m.refreshData()
	return m.restartTicks()
}

func (m *Model) saveGoal() {
	minutes, err := strconv.Atoi(strings.TrimSpace(m.goalForm.Minutes))
	if err != nil {
		m.setError(err)
		return
	}
	g, err := m.app.SetGoal(context.Background(), m.goalForm.Kind, minutes*60)
	if err != nil {
		m.setError(err)
		return
	}
	m.setMessage(fmt.Sprintf("✓ %s goal set to %s", g.PeriodKind, utils.FormatDuration(g.TargetSeconds)))
}
