package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/studylit/internal/app"
	"github.com/julianstephens/studylit/internal/constants"
	apperrors "github.com/julianstephens/studylit/internal/errors"
	"github.com/julianstephens/studylit/internal/utils"
)

type GoalCmd struct {
	Set     GoalSetCmd     `cmd:"" help:"Set the goal for the current period."`
	Show    GoalShowCmd    `cmd:"" help:"Show progress on every goal." default:"withargs"`
	History GoalHistoryCmd `cmd:"" help:"Show daily results for a goal."`
	Rate    GoalRateCmd    `cmd:"" help:"Show how often a goal was met."`
}

type GoalSetCmd struct {
	Kind   string        `arg:"" enum:"daily,weekly,monthly" help:"Goal period: daily, weekly or monthly."`
	Target time.Duration `arg:"" help:"Target study time, e.g. 2h or 90m."`
}

func (cmd *GoalSetCmd) Run(ctx *Context) error {
	a, err := ctx.App()
	if err != nil {
		return err
	}
	g, err := a.SetGoal(context.Background(), constants.PeriodKind(cmd.Kind), int(cmd.Target/time.Second))
	if errors.Is(err, app.ErrNotEntitled) {
		return apperrors.WithHint(err, "run 'studylit premium on' to unlock weekly and monthly goals")
	}
	if err != nil {
		return err
	}
	ctx.printf("✓ %s goal for %s: %s\n", titleCase(cmd.Kind), g.PeriodKey, utils.FormatDuration(g.TargetSeconds))
	return nil
}

type GoalShowCmd struct {
	JSON bool `help:"Print as JSON."`
}

func (cmd *GoalShowCmd) Run(ctx *Context) error {
	a, err := ctx.App()
	if err != nil {
		return err
	}
	if cmd.JSON {
		out := make(map[constants.PeriodKind]any, len(constants.PeriodKinds))
		for _, kind := range constants.PeriodKinds {
			out[kind] = a.Goals.Progress(kind)
		}
		return printJSON(ctx, out)
	}
	for _, kind := range constants.PeriodKinds {
		p := a.Goals.Progress(kind)
		label := fmt.Sprintf("%-8s", titleCase(string(kind)))
		switch {
		case p.Goal != nil:
			mark := " "
			if p.Achieved {
				mark = "✓"
			}
			ctx.printf("%s %s %s\n", mark, label, progressLine(p.ActualSeconds, p.Goal.TargetSeconds, p.Percent))
		case !a.Gate.IsEntitled(kind):
			ctx.printf("  %s (premium)\n", label)
		default:
			ctx.printf("  %s not set\n", label)
		}
	}
	return nil
}

type GoalHistoryCmd struct {
	Kind  string `arg:"" optional:"" enum:"daily,weekly,monthly" default:"daily" help:"Goal period."`
	Limit int    `help:"Maximum entries to show." default:"30"`
}

func (cmd *GoalHistoryCmd) Run(ctx *Context) error {
	a, err := ctx.App()
	if err != nil {
		return err
	}
	history := a.Goals.AchievementHistory(constants.PeriodKind(cmd.Kind), cmd.Limit)
	if len(history) == 0 {
		ctx.printf("No %s goal history yet.\n", cmd.Kind)
		return nil
	}
	for _, h := range history {
		mark := "✗"
		if h.Achieved {
			mark = "✓"
		}
		ctx.printf("  %s %s  %10s  %5.1f%%\n", mark, h.CalendarDate, utils.FormatDuration(h.ActualSeconds), h.AchievementRate)
	}
	return nil
}

type GoalRateCmd struct {
	Kind string `arg:"" optional:"" enum:"daily,weekly,monthly" default:"daily" help:"Goal period."`
	Days int    `help:"Number of recent results to include." default:"30"`
}

func (cmd *GoalRateCmd) Run(ctx *Context) error {
	a, err := ctx.App()
	if err != nil {
		return err
	}
	rate := a.Goals.AchievementRate(constants.PeriodKind(cmd.Kind), cmd.Days)
	ctx.printf("%s goal met %.0f%% of the last %d results\n", titleCase(cmd.Kind), rate, cmd.Days)
	return nil
}
