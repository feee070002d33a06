package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/julianstephens/studylit/internal/app"
	"github.com/julianstephens/studylit/internal/constants"
	"github.com/julianstephens/studylit/internal/streak"
	"github.com/julianstephens/studylit/internal/utils"
)

type SessionCmd struct {
	Finish SessionFinishCmd `cmd:"" help:"Record the running session under a subject and end it."`
}

type SessionFinishCmd struct {
	Subject string `arg:"" help:"What you studied (1-50 characters)."`
}

func (cmd *SessionFinishCmd) Run(ctx *Context) error {
	a, err := ctx.App()
	if err != nil {
		return err
	}
	summary, err := a.FinishSession(context.Background(), cmd.Subject)
	if errors.Is(err, app.ErrSessionTooShort) {
		return fmt.Errorf("%w; keep going or run 'studylit timer end' to discard it", err)
	}
	if err != nil {
		return err
	}
	printSummary(ctx, summary)
	return nil
}

func printSummary(ctx *Context, s app.SessionSummary) {
	ctx.printf("✓ Recorded %s of %s\n", utils.FormatDuration(s.Record.DurationSeconds), s.Record.Subject)
	ctx.printf("  Today: %s\n", utils.FormatDuration(s.TodaySeconds))

	streakLine := fmt.Sprintf("  Streak: %d day(s)", s.Streak.CurrentStreakDays)
	if s.StreakUpdated {
		streakLine += " 🔥"
	}
	if next, ok := streak.NextMilestone(s.Streak.CurrentStreakDays); ok {
		streakLine += fmt.Sprintf(" (%d to go until %d)", next-s.Streak.CurrentStreakDays, next)
	}
	ctx.println(streakLine)

	for _, kind := range constants.PeriodKinds {
		p, ok := s.Progress[kind]
		if !ok || p.Goal == nil {
			continue
		}
		ctx.printf("  %s goal: %s\n", titleCase(string(kind)), progressLine(p.ActualSeconds, p.Goal.TargetSeconds, p.Percent))
	}
	for _, alert := range s.Alerts {
		ctx.println("🎉 " + alert)
	}
}

func progressLine(actual, target int, percent float64) string {
	return fmt.Sprintf("%s / %s (%.0f%%)", utils.FormatDuration(actual), utils.FormatDuration(target), percent)
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
