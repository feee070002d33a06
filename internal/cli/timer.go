package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/julianstephens/studylit/internal/app"
	"github.com/julianstephens/studylit/internal/constants"
	"github.com/julianstephens/studylit/internal/models"
	"github.com/julianstephens/studylit/internal/utils"
)

type TimerCmd struct {
	Start  TimerStartCmd  `cmd:"" help:"Start or resume studying."`
	Pause  TimerPauseCmd  `cmd:"" help:"Pause the study timer."`
	Stop   TimerStopCmd   `cmd:"" help:"Stop studying and start a rest countdown."`
	Tick   TimerTickCmd   `cmd:"" help:"Advance the rest countdown and alert when it is over."`
	Status TimerStatusCmd `cmd:"" help:"Show the timer state." default:"1"`
	End    TimerEndCmd    `cmd:"" help:"End the session without recording it."`
	Reset  TimerResetCmd  `cmd:"" help:"Reset the timer to idle."`
}

type TimerStartCmd struct{}

func (cmd *TimerStartCmd) Run(ctx *Context) error {
	a, err := ctx.App()
	if err != nil {
		return err
	}
	wasResting := a.Timer.State() == models.StateResting
	a.Timer.StartStudy()
	a.SaveTimer(context.Background())

	if wasResting {
		ctx.println("✓ Rest over, new study session started")
	} else {
		ctx.printf("✓ Studying (%s so far)\n", utils.FormatClock(a.Timer.Elapsed()))
	}
	return nil
}

type TimerPauseCmd struct{}

func (cmd *TimerPauseCmd) Run(ctx *Context) error {
	a, err := ctx.App()
	if err != nil {
		return err
	}
	if err := a.Timer.PauseStudy(); err != nil {
		return err
	}
	a.SaveTimer(context.Background())
	ctx.printf("⏸ Paused at %s\n", utils.FormatClock(a.Timer.Elapsed()))
	return nil
}

type TimerStopCmd struct {
	Rest int `help:"Rest length in minutes (1-60). Defaults to STUDYLIT_DEFAULT_REST_MINUTES." default:"0"`
}

func (cmd *TimerStopCmd) Run(ctx *Context) error {
	minutes := ctx.restMinutes(cmd.Rest)
	if minutes < 1 || minutes > constants.MaxRestMinutes {
		return fmt.Errorf("invalid rest length: %d (must be 1-%d minutes)", minutes, constants.MaxRestMinutes)
	}
	a, err := ctx.App()
	if err != nil {
		return err
	}
	if a.Timer.State() == models.StateIdle {
		return errors.New("timer is idle, run 'studylit timer start' first")
	}
	a.Timer.StopStudy(minutes)
	a.SaveTimer(context.Background())
	ctx.printf("☕ Resting for %d min (studied %s)\n", minutes, utils.FormatClock(a.Timer.Elapsed()))
	return nil
}

type TimerTickCmd struct{}

func (cmd *TimerTickCmd) Run(ctx *Context) error {
	a, err := ctx.App()
	if err != nil {
		return err
	}
	if a.TickTimer(context.Background()) {
		ctx.println("🔔 " + constants.RestOverBody)
	}
	printTimer(ctx, a)
	return nil
}

type TimerStatusCmd struct {
	JSON bool `help:"Print the raw session as JSON."`
}

func (cmd *TimerStatusCmd) Run(ctx *Context) error {
	a, err := ctx.App()
	if err != nil {
		return err
	}
	if a.TickTimer(context.Background()) {
		ctx.println("🔔 " + constants.RestOverBody)
	}
	if cmd.JSON {
		return printJSON(ctx, a.Timer.Session())
	}
	printTimer(ctx, a)
	return nil
}

type TimerEndCmd struct{}

func (cmd *TimerEndCmd) Run(ctx *Context) error {
	a, err := ctx.App()
	if err != nil {
		return err
	}
	elapsed := a.Timer.Elapsed()
	a.Timer.CompleteEnd()
	a.SaveTimer(context.Background())
	ctx.printf("Session ended without recording (%s discarded)\n", utils.FormatClock(elapsed))
	return nil
}

type TimerResetCmd struct{}

func (cmd *TimerResetCmd) Run(ctx *Context) error {
	a, err := ctx.App()
	if err != nil {
		return err
	}
	a.Timer.ResetTimer()
	a.SaveTimer(context.Background())
	ctx.println("✓ Timer reset")
	return nil
}

func printTimer(ctx *Context, a *app.App) {
	s := a.Timer.Session()
	ctx.printf("State:    %s\n", a.Timer.State())
	ctx.printf("Studied:  %s\n", utils.FormatClock(a.Timer.Elapsed()))
	if s.IsResting {
		if s.RestTimeExpired {
			ctx.printf("Rest:     over (%d min)\n", s.RestTargetMinutes)
		} else {
			ctx.printf("Rest:     %s left of %d min\n", utils.FormatClock(s.RestRemainingSeconds), s.RestTargetMinutes)
		}
	}
}
