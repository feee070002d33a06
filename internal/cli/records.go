package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/julianstephens/studylit/internal/constants"
	"github.com/julianstephens/studylit/internal/models"
	"github.com/julianstephens/studylit/internal/utils"
)

type RecordsCmd struct {
	List   RecordsListCmd   `cmd:"" help:"List study records, newest first." default:"withargs"`
	Today  RecordsTodayCmd  `cmd:"" help:"List today's records."`
	Add    RecordsAddCmd    `cmd:"" help:"Record a session without using the timer."`
	Clear  RecordsClearCmd  `cmd:"" help:"Delete every record."`
	Export RecordsExportCmd `cmd:"" help:"Export records as JSON or YAML."`
}

type RecordsListCmd struct {
	Limit int `help:"Maximum records to show (0 for all)." default:"20"`
}

func (cmd *RecordsListCmd) Run(ctx *Context) error {
	a, err := ctx.App()
	if err != nil {
		return err
	}
	records := a.Ledger.Records()
	if len(records) == 0 {
		ctx.println("No study records yet.")
		return nil
	}
	shown := records
	if cmd.Limit > 0 && len(shown) > cmd.Limit {
		shown = shown[:cmd.Limit]
	}
	printRecords(ctx, shown)
	ctx.printf("\n%d of %d records, %s total\n", len(shown), len(records), utils.FormatDuration(a.Ledger.TotalTime()))
	return nil
}

type RecordsTodayCmd struct{}

func (cmd *RecordsTodayCmd) Run(ctx *Context) error {
	a, err := ctx.App()
	if err != nil {
		return err
	}
	records := a.Ledger.TodayRecords()
	if len(records) == 0 {
		ctx.println("Nothing recorded today.")
		return nil
	}
	printRecords(ctx, records)
	ctx.printf("\nToday: %s\n", utils.FormatDuration(a.Ledger.TotalTimeToday()))
	return nil
}

type RecordsAddCmd struct {
	Subject  string        `arg:"" help:"What you studied (1-50 characters)."`
	Duration time.Duration `arg:"" help:"How long, e.g. 45m or 1h30m."`
}

func (cmd *RecordsAddCmd) Run(ctx *Context) error {
	a, err := ctx.App()
	if err != nil {
		return err
	}
	summary, err := a.RecordSession(context.Background(), cmd.Subject, int(cmd.Duration/time.Second))
	if err != nil {
		return err
	}
	printSummary(ctx, summary)
	return nil
}

type RecordsClearCmd struct {
	Yes bool `help:"Skip the confirmation prompt."`
}

func (cmd *RecordsClearCmd) Run(ctx *Context) error {
	a, err := ctx.App()
	if err != nil {
		return err
	}
	if !cmd.Yes {
		ok, err := ctx.confirm(fmt.Sprintf("Delete all %d records? This cannot be undone.", a.Ledger.Len()))
		if err != nil {
			return err
		}
		if !ok {
			ctx.println("Clear cancelled.")
			return nil
		}
	}
	ctx.PerformAutomaticBackup()
	a.ClearRecords(context.Background())
	ctx.println("✓ All records deleted")
	return nil
}

type RecordsExportCmd struct {
	Format string `help:"Output format." enum:"json,yaml" default:"json"`
	Output string `help:"Write to this file instead of stdout." type:"path"`
}

type recordsExport struct {
	ExportedAt   string               `json:"exported_at" yaml:"exported_at"`
	TotalSeconds int                  `json:"total_seconds" yaml:"total_seconds"`
	Records      []models.StudyRecord `json:"records" yaml:"records"`
}

func (cmd *RecordsExportCmd) Run(ctx *Context) error {
	a, err := ctx.App()
	if err != nil {
		return err
	}
	doc := recordsExport{
		ExportedAt:   ctx.clock().Now().Format(time.RFC3339),
		TotalSeconds: a.Ledger.TotalTime(),
		Records:      a.Ledger.Records(),
	}
	if doc.Records == nil {
		doc.Records = []models.StudyRecord{}
	}

	var w io.Writer = ctx.out()
	if cmd.Output != "" {
		f, err := os.Create(cmd.Output)
		if err != nil {
			return fmt.Errorf("failed to create export file: %w", err)
		}
		defer f.Close()
		w = f
	}

	switch cmd.Format {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("failed to encode records: %w", err)
		}
		if err := enc.Close(); err != nil {
			return err
		}
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("failed to encode records: %w", err)
		}
	}

	if cmd.Output != "" {
		ctx.printf("✓ Exported %d records to %s\n", len(doc.Records), cmd.Output)
	}
	return nil
}

func printRecords(ctx *Context, records []models.StudyRecord) {
	for _, r := range records {
		at := r.CreatedAtIn(ctx.clock().Now().Location()).Format(constants.TimeFormat)
		ctx.printf("  %s %s  %-20s %s\n", r.CalendarDate, at, r.Subject, utils.FormatDuration(r.DurationSeconds))
	}
}

func printJSON(ctx *Context, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	ctx.println(string(data))
	return nil
}
