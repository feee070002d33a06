package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/studylit/internal/constants"
	"github.com/julianstephens/studylit/internal/models"
	"github.com/julianstephens/studylit/internal/utils"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	if m.mode != modeNormal && m.form != nil {
		content = docStyle.Render(m.form.View())
	} else {
		switch m.tab {
		case TabTimer:
			content = m.viewTimer()
		case TabRecords:
			content = docStyle.Render(m.records.View())
		case TabStats:
			content = docStyle.Render(m.stats.View())
		case TabGoals:
			content = m.viewGoals()
		}
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewTabs(),
		content,
		m.viewMessage(),
		m.help.View(m),
	)
}

func (m Model) viewTabs() string {
	var tabs []string
	for i, title := range tabTitles {
		if m.tab == Tab(i) {
			tabs = append(tabs, activeTabStyle.Render(title))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(title))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) viewMessage() string {
	if m.message == "" {
		return ""
	}
	if m.isError {
		return dangerStyle.Render(m.message)
	}
	return warningStyle.Render(m.message)
}

func (m Model) viewTimer() string {
	t := m.app.Timer
	s := t.Session()

	var state string
	switch t.State() {
	case models.StateStudying:
		state = "Studying"
	case models.StateResting:
		state = "Resting"
	default:
		state = "Ready"
		if t.Elapsed() > 0 {
			state = "Paused"
		}
	}

	lines := []string{
		stateStyle.Render(state),
		clockStyle.Render(utils.FormatClock(t.Elapsed())),
	}

	if s.IsResting {
		switch {
		case s.RestTimeExpired && !s.RestPostponed:
			lines = append(lines, dangerStyle.Render("Break is over! [s] study  [z] snooze  [f] finish"))
		case s.RestTimeExpired:
			lines = append(lines, mutedStyle.Render(fmt.Sprintf("Break over (%d min)", s.RestTargetMinutes)))
		default:
			lines = append(lines, fmt.Sprintf("Break: %s left", utils.FormatClock(s.RestRemainingSeconds)))
		}
	} else {
		lines = append(lines, mutedStyle.Render(fmt.Sprintf("Next break: %d min", m.restMinutes)))
	}

	today := m.app.Ledger.TotalTimeToday()
	lines = append(lines, "", fmt.Sprintf("Today: %s", utils.FormatDuration(today)))
	if p := m.app.Goals.DailyProgress(); p.Goal != nil {
		lines = append(lines, m.progress.ViewAs(p.Percent/100)+" "+
			mutedStyle.Render(fmt.Sprintf("daily goal %s", utils.FormatDuration(p.Goal.TargetSeconds))))
	}

	info := m.app.Streak.GetStreakInfo()
	streakLine := fmt.Sprintf("🔥 %d day streak", info.CurrentStreakDays)
	if info.NextMilestone > 0 {
		streakLine += mutedStyle.Render(fmt.Sprintf("  (%d to %d)", info.DaysUntilNextMilestone, info.NextMilestone))
	}
	lines = append(lines, streakLine)

	content := lipgloss.JoinVertical(lipgloss.Center, lines...)
	if m.width > 0 && m.height > 0 {
		return lipgloss.Place(m.width, m.height-6, lipgloss.Center, lipgloss.Center, content)
	}
	return docStyle.Render(content)
}

func (m Model) viewGoals() string {
	var lines []string
	for _, kind := range constants.PeriodKinds {
		title := stateStyle.Render(fmt.Sprintf("%-8s", kind))
		if !m.app.Gate.IsEntitled(kind) {
			lines = append(lines, title+" "+mutedStyle.Render("premium only"), "")
			continue
		}
		p := m.app.Goals.Progress(kind)
		if p.Goal == nil {
			lines = append(lines, title+" "+mutedStyle.Render("no goal set, press g"), "")
			continue
		}
		status := fmt.Sprintf("%s / %s", utils.FormatDuration(p.ActualSeconds), utils.FormatDuration(p.Goal.TargetSeconds))
		if p.Achieved {
			status += " " + successStyle.Render("✓ achieved")
		}
		rate := m.app.Goals.AchievementRate(kind, constants.DefaultRateDays)
		lines = append(lines,
			title+" "+status,
			m.progress.ViewAs(p.Percent/100),
			mutedStyle.Render(fmt.Sprintf("met %.0f%% of recent days", rate)),
			"",
		)
	}
	return docStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
