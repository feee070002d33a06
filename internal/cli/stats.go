package cli

import (
	"fmt"
	"sort"

	"github.com/julianstephens/studylit/internal/ledger"
	"github.com/julianstephens/studylit/internal/utils"
)

type StatsCmd struct {
	Week     StatsWeekCmd     `cmd:"" help:"Totals for a Sunday-start week." default:"withargs"`
	Month    StatsMonthCmd    `cmd:"" help:"Totals for a calendar month."`
	Range    StatsRangeCmd    `cmd:"" help:"Totals between two dates."`
	Subjects StatsSubjectsCmd `cmd:"" help:"Totals per subject."`
}

type StatsWeekCmd struct {
	Offset int  `help:"Weeks from the current one (-1 = last week)." default:"0"`
	JSON   bool `help:"Print as JSON."`
}

func (cmd *StatsWeekCmd) Run(ctx *Context) error {
	a, err := ctx.App()
	if err != nil {
		return err
	}
	return printStats(ctx, a.Ledger.WeeklyStats(cmd.Offset), cmd.JSON)
}

type StatsMonthCmd struct {
	Offset int  `help:"Months from the current one (-1 = last month)." default:"0"`
	JSON   bool `help:"Print as JSON."`
}

func (cmd *StatsMonthCmd) Run(ctx *Context) error {
	a, err := ctx.App()
	if err != nil {
		return err
	}
	return printStats(ctx, a.Ledger.MonthlyStats(cmd.Offset), cmd.JSON)
}

type StatsRangeCmd struct {
	From string `arg:"" help:"First day (YYYY-MM-DD)."`
	To   string `arg:"" help:"Last day (YYYY-MM-DD)."`
	JSON bool   `help:"Print as JSON."`
}

func (cmd *StatsRangeCmd) Run(ctx *Context) error {
	loc := ctx.clock().Now().Location()
	from, err := utils.ParseDateInLocation(cmd.From, loc)
	if err != nil {
		return fmt.Errorf("invalid start date %q (expected YYYY-MM-DD)", cmd.From)
	}
	to, err := utils.ParseDateInLocation(cmd.To, loc)
	if err != nil {
		return fmt.Errorf("invalid end date %q (expected YYYY-MM-DD)", cmd.To)
	}
	if to.Before(from) {
		return fmt.Errorf("end date %s is before start date %s", cmd.To, cmd.From)
	}
	a, err := ctx.App()
	if err != nil {
		return err
	}
	return printStats(ctx, a.Ledger.StatsForRange(from, to), cmd.JSON)
}

type StatsSubjectsCmd struct {
	JSON bool `help:"Print as JSON."`
}

func (cmd *StatsSubjectsCmd) Run(ctx *Context) error {
	a, err := ctx.App()
	if err != nil {
		return err
	}
	totals := a.Ledger.SubjectTotals()
	if cmd.JSON {
		return printJSON(ctx, totals)
	}
	if len(totals) == 0 {
		ctx.println("No study records yet.")
		return nil
	}
	for _, st := range totals {
		ctx.printf("  %-20s %10s  (%d sessions)\n", st.Subject, utils.FormatDuration(st.TotalSeconds), st.RecordCount)
	}
	return nil
}

func printStats(ctx *Context, s ledger.RangeStats, asJSON bool) error {
	if asJSON {
		return printJSON(ctx, s)
	}
	title := s.Start + " .. " + s.End
	if s.Label != "" {
		title = s.Label + " (" + title + ")"
	}
	ctx.println(title)
	ctx.printf("  Total:   %s\n", utils.FormatDuration(s.TotalSeconds))
	ctx.printf("  Records: %d\n", s.RecordCount)
	ctx.printf("  Average: %s\n", utils.FormatDuration(s.AverageSeconds))

	days := make([]string, 0, len(s.PerDaySeconds))
	for d := range s.PerDaySeconds {
		days = append(days, d)
	}
	sort.Strings(days)
	ctx.println()
	for _, d := range days {
		ctx.printf("  %s  %s\n", d, utils.FormatDuration(s.PerDaySeconds[d]))
	}
	return nil
}
