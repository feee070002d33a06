package records

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/studylit/internal/constants"
	"github.com/julianstephens/studylit/internal/models"
	"github.com/julianstephens/studylit/internal/utils"
)

type Item struct {
	Record models.StudyRecord
	loc    *time.Location
}

func (i Item) Title() string { return i.Record.Subject }
func (i Item) Description() string {
	at := i.Record.CreatedAtIn(i.loc).Format(constants.TimeFormat)
	return fmt.Sprintf("%s %s | %s", i.Record.CalendarDate, at, utils.FormatDuration(i.Record.DurationSeconds))
}
func (i Item) FilterValue() string { return i.Record.Subject }

type Model struct {
	list list.Model
	loc  *time.Location
}

func New(records []models.StudyRecord, loc *time.Location, width, height int) Model {
	l := list.New(nil, list.NewDefaultDelegate(), width, height)
	l.Title = "Records"
	l.SetShowTitle(false)
	l.SetShowHelp(false)

	m := Model{list: l, loc: loc}
	m.SetRecords(records)
	return m
}

func (m *Model) SetRecords(records []models.StudyRecord) {
	items := make([]list.Item, len(records))
	for i, r := range records {
		items[i] = Item{Record: r, loc: m.loc}
	}
	m.list.SetItems(items)
}

// Filtering reports whether the list is capturing keystrokes.
func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.list.Items()) == 0 && !m.Filtering() {
		return "\n  No study records yet.\n  Finish a session on the Timer tab with 'f'."
	}
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}
