package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"commitverify/internal/models"
	"commitverify/internal/storage"

	"github.com/jedib0t/go-pretty/v6/table"
)

const maxTableCommitWidth = 16

func listHistory(ctx context.Context, cfg *models.Config, url string, limit int, stdout, stderr io.Writer) int {
	if !cfg.History.Enabled {
		fmt.Fprintln(stderr, "ERROR: --list-history requires history to be enabled")
		return models.ExitUsage
	}

	history, err := storage.NewFactory().Create(cfg.History)
	if err != nil {
		fmt.Fprintf(stderr, "ERROR: failed to open history: %v\n", err)
		return models.ExitUsage
	}
	defer history.Close()

	records, err := history.Verifications(ctx, url, limit)
	if err != nil {
		fmt.Fprintf(stderr, "ERROR: failed to read history: %v\n", err)
		return models.ExitFailure
	}

	renderHistory(stdout, records)
	return models.ExitOK
}

// renderHistory prints records newest first as a table.
func renderHistory(w io.Writer, records []*models.VerificationRecord) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, WidthMax: maxTableCommitWidth},
		{Number: 4, WidthMax: maxTableCommitWidth},
	})

	t.AppendHeader(table.Row{"Checked At", "URL", "Expected", "Actual", "Result", "Exit", "Duration"})
	for _, r := range records {
		t.AppendRow(table.Row{
			r.CheckedAt.Local().Format(time.RFC3339),
			r.URL,
			r.ExpectedCommit,
			r.ActualCommit,
			recordResult(r),
			strconv.Itoa(r.ExitCode),
			(time.Duration(r.DurationMS) * time.Millisecond).String(),
		})
	}
	t.AppendFooter(table.Row{"Total", len(records)})
	t.Render()
}

func recordResult(r *models.VerificationRecord) string {
	switch {
	case r.Success:
		return "pass"
	case r.ErrorKind != models.ErrorKindNone:
		return string(r.ErrorKind)
	case !r.Healthy || !r.ConnectionStatus:
		return "unhealthy"
	default:
		return "mismatch"
	}
}
