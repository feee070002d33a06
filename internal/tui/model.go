package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/studylit/internal/app"
	"github.com/julianstephens/studylit/internal/constants"
	"github.com/julianstephens/studylit/internal/models"
	"github.com/julianstephens/studylit/internal/tui/components/records"
	"github.com/julianstephens/studylit/internal/tui/components/stats"
)

type Tab int

const (
	TabTimer Tab = iota
	TabRecords
	TabStats
	TabGoals
)

var tabTitles = []string{"Timer", "Records", "Stats", "Goals"}

type mode int

const (
	modeNormal mode = iota
	modeSubject
	modeGoal
)

// tickMsg carries the generation of the tick loop that produced it. Starting
// a new loop bumps the generation, so ticks from an older loop are dropped
// and at most one loop is ever live.
type tickMsg struct {
	gen int
}

type Model struct {
	app *app.App

	tab      Tab
	mode     mode
	keys     KeyMap
	help     help.Model
	progress progress.Model
	records  records.Model
	stats    stats.Model

	form        *huh.Form
	subjectForm *SubjectFormModel
	goalForm    *GoalFormModel

	restMinutes int
	gen         int

	message  string
	isError  bool
	quitting bool
	width    int
	height   int
}

func NewModel(a *app.App, restMinutes int) Model {
	if restMinutes < 1 || restMinutes > constants.MaxRestMinutes {
		restMinutes = constants.DefaultRestMinutes
	}
	loc := a.Clock.Now().Location()

	st := stats.New(0, 0)
	st.Load(a.Ledger)

	return Model{
		app:         a,
		tab:         TabTimer,
		keys:        DefaultKeyMap(),
		help:        help.New(),
		progress:    progress.New(progress.WithDefaultGradient()),
		records:     records.New(a.Ledger.Records(), loc, 0, 0),
		stats:       st,
		restMinutes: restMinutes,
	}
}

func (m Model) ShortHelp() []key.Binding {
	keys := []key.Binding{m.keys.Tab, m.keys.Quit, m.keys.Help}
	switch m.tab {
	case TabTimer:
		keys = append(keys, m.timerKeys()...)
	case TabStats:
		keys = append(keys, m.keys.Prev, m.keys.Next, m.keys.Mode)
	case TabGoals:
		keys = append(keys, m.keys.Goal)
	}
	return keys
}

func (m Model) FullHelp() [][]key.Binding {
	global := []key.Binding{m.keys.Tab, m.keys.ShiftTab, m.keys.Quit, m.keys.Help}

	var actions []key.Binding
	switch m.tab {
	case TabTimer:
		actions = []key.Binding{m.keys.Start, m.keys.Pause, m.keys.Rest, m.keys.RestUp, m.keys.RestDown, m.keys.Finish, m.keys.Discard, m.keys.Postpone}
	case TabStats:
		actions = []key.Binding{m.keys.Prev, m.keys.Next, m.keys.Mode}
	case TabGoals:
		actions = []key.Binding{m.keys.Goal}
	}
	return [][]key.Binding{global, actions}
}

// timerKeys lists the bindings that apply in the current timer state.
func (m Model) timerKeys() []key.Binding {
	switch m.app.Timer.State() {
	case models.StateStudying:
		return []key.Binding{m.keys.Pause, m.keys.Rest, m.keys.Finish}
	case models.StateResting:
		s := m.app.Timer.Session()
		if s.RestTimeExpired && !s.RestPostponed {
			return []key.Binding{m.keys.Start, m.keys.Postpone, m.keys.Finish}
		}
		return []key.Binding{m.keys.Start, m.keys.Finish, m.keys.Discard}
	default:
		if m.app.Timer.Elapsed() > 0 {
			return []key.Binding{m.keys.Start, m.keys.Finish, m.keys.Discard}
		}
		return []key.Binding{m.keys.Start, m.keys.RestUp, m.keys.RestDown}
	}
}

func (m Model) Init() tea.Cmd {
	if m.app.Timer.State() == models.StateIdle {
		return nil
	}
	return m.tickCmd()
}

func (m Model) tickCmd() tea.Cmd {
	gen := m.gen
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return tickMsg{gen: gen}
	})
}

// restartTicks retires the running tick loop and starts a new one unless the
// timer is idle.
func (m *Model) restartTicks() tea.Cmd {
	m.gen++
	if m.app.Timer.State() == models.StateIdle {
		return nil
	}
	return m.tickCmd()
}

func (m *Model) setMessage(msg string) {
	m.message = msg
	m.isError = false
}

func (m *Model) setError(err error) {
	m.message = err.Error()
	m.isError = true
}

func (m *Model) refreshData() {
	m.records.SetRecords(m.app.Ledger.Records())
	m.stats.Load(m.app.Ledger)
}
