package cli

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/studylit/internal/tui"
)

type TuiCmd struct{}

func (c *TuiCmd) Run(ctx *Context) error {
	a, err := ctx.OpenApp(false)
	if err != nil {
		return err
	}

	// Perform automatic backup on TUI startup (after successful load)
	ctx.PerformAutomaticBackup()

	p := tea.NewProgram(tui.NewModel(a, ctx.restMinutes(0)), tea.WithAltScreen())
	_, err = p.Run()
	return err
}
