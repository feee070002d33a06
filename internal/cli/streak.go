package cli

import (
	"context"

	"github.com/julianstephens/studylit/internal/utils"
)

type StreakCmd struct {
	Show  StreakShowCmd  `cmd:"" help:"Show the current streak." default:"withargs"`
	Check StreakCheckCmd `cmd:"" help:"Break the streak if a day was missed."`
	Reset StreakResetCmd `cmd:"" help:"Reset the streak to zero."`
	Min   StreakMinCmd   `cmd:"" help:"Set the minimum minutes a day needs to count."`
}

type StreakShowCmd struct {
	JSON bool `help:"Print as JSON."`
}

func (cmd *StreakShowCmd) Run(ctx *Context) error {
	a, err := ctx.App()
	if err != nil {
		return err
	}
	info := a.Streak.GetStreakInfo()
	if cmd.JSON {
		return printJSON(ctx, info)
	}
	ctx.printf("Current streak: %d day(s)\n", info.CurrentStreakDays)
	ctx.printf("Longest streak: %d day(s)\n", info.LongestStreakDays)
	if info.StudiedToday {
		ctx.println("Studied today:  yes")
	} else {
		ctx.println("Studied today:  not yet")
	}
	if info.NextMilestone > 0 {
		ctx.printf("Next milestone: %d days (%d to go)\n", info.NextMilestone, info.DaysUntilNextMilestone)
	}
	ctx.printf("Minimum a day:  %s\n", utils.FormatDuration(a.Streak.State().MinimumQualifyingSeconds))
	return nil
}

// StreakCheckCmd is what a scheduled job runs; every command already checks
// on startup, so this only reports.
type StreakCheckCmd struct{}

func (cmd *StreakCheckCmd) Run(ctx *Context) error {
	a, err := ctx.App()
	if err != nil {
		return err
	}
	info := a.Streak.GetStreakInfo()
	ctx.printf("Streak: %d day(s)\n", info.CurrentStreakDays)
	return nil
}

type StreakResetCmd struct {
	Yes bool `help:"Skip the confirmation prompt."`
}

func (cmd *StreakResetCmd) Run(ctx *Context) error {
	a, err := ctx.App()
	if err != nil {
		return err
	}
	if !cmd.Yes {
		ok, err := ctx.confirm("Reset your streak to zero?")
		if err != nil {
			return err
		}
		if !ok {
			ctx.println("Reset cancelled.")
			return nil
		}
	}
	a.ResetStreak(context.Background())
	ctx.println("✓ Streak reset")
	return nil
}

type StreakMinCmd struct {
	Minutes int `arg:"" help:"Minutes of study a day needs to count toward the streak."`
}

func (cmd *StreakMinCmd) Run(ctx *Context) error {
	a, err := ctx.App()
	if err != nil {
		return err
	}
	if err := a.SetMinimumStudyMinutes(context.Background(), cmd.Minutes); err != nil {
		return err
	}
	ctx.printf("✓ Days now need %d min of study to count\n", cmd.Minutes)
	return nil
}
