package stats

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/studylit/internal/ledger"
	"github.com/julianstephens/studylit/internal/utils"
)

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	dateStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Width(12)

	barStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62"))
)

const barWidth = 30

// Mode selects the period shown.
type Mode int

const (
	ModeWeek Mode = iota
	ModeMonth
)

type Model struct {
	viewport viewport.Model
	Range    ledger.RangeStats
	Subjects []ledger.SubjectTotal
	Mode     Mode
	Offset   int
}

func New(width, height int) Model {
	return Model{viewport: viewport.New(width, height)}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	return m.viewport.View()
}

func (m *Model) SetSize(width, height int) {
	m.viewport.Width = width
	m.viewport.Height = height
	m.Render()
}

// Load pulls the current period from l and re-renders.
func (m *Model) Load(l *ledger.Ledger) {
	if m.Mode == ModeMonth {
		m.Range = l.MonthlyStats(m.Offset)
	} else {
		m.Range = l.WeeklyStats(m.Offset)
	}
	m.Subjects = l.SubjectTotals()
	m.Render()
}

// ToggleMode switches between weeks and months and returns to the current one.
func (m *Model) ToggleMode() {
	if m.Mode == ModeWeek {
		m.Mode = ModeMonth
	} else {
		m.Mode = ModeWeek
	}
	m.Offset = 0
}

func (m *Model) Render() {
	var b strings.Builder
	s := m.Range

	b.WriteString(headerStyle.Render(fmt.Sprintf("%s  %s .. %s", s.Label, s.Start, s.End)))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Total %s   Sessions %d   Average %s\n\n",
		utils.FormatDuration(s.TotalSeconds), s.RecordCount, utils.FormatDuration(s.AverageSeconds))

	days := make([]string, 0, len(s.PerDaySeconds))
	peak := 0
	for d, secs := range s.PerDaySeconds {
		days = append(days, d)
		if secs > peak {
			peak = secs
		}
	}
	sort.Strings(days)
	for _, d := range days {
		secs := s.PerDaySeconds[d]
		n := 0
		if peak > 0 {
			n = secs * barWidth / peak
		}
		fmt.Fprintf(&b, "%s %s %s\n", dateStyle.Render(d), barStyle.Render(strings.Repeat("█", n)), utils.FormatDuration(secs))
	}

	if len(m.Subjects) > 0 {
		b.WriteString("\n")
		b.WriteString(headerStyle.Render("Subjects (all time)"))
		b.WriteString("\n")
		for _, st := range m.Subjects {
			fmt.Fprintf(&b, "  %-20s %10s  (%d)\n", st.Subject, utils.FormatDuration(st.TotalSeconds), st.RecordCount)
		}
	}
	m.viewport.SetContent(b.String())
}
