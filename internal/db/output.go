package db

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
)

// PrintRunsJSON outputs runs as JSON
func PrintRunsJSON(w io.Writer, runs []*FormatRun) error {
	if runs == nil {
		runs = []*FormatRun{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(runs)
}

// PrintRunsTable outputs one row per run, newest first
func PrintRunsTable(w io.Writer, runs []*FormatRun, now time.Time) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No format runs recorded")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"ID", "STARTED", "DEVICE", "LABEL", "RESULT", "DURATION"})

	for _, r := range runs {
		t.AppendRow(table.Row{
			shortID(r.ID),
			humanize.RelTime(r.StartedAt, now, "ago", "from now"),
			r.Device,
			r.Label,
			resultText(r),
			r.Duration.Round(time.Millisecond).String(),
		})
	}

	t.Render()
}

// PrintRun outputs every field of a run, including the captured output
func PrintRun(w io.Writer, r *FormatRun) {
	fmt.Fprintf(w, "%-14s %s\n", "ID", r.ID)
	fmt.Fprintf(w, "%-14s %s\n", "Started", r.StartedAt.Local().Format(time.RFC3339))
	fmt.Fprintf(w, "%-14s %s\n", "Device", r.Device)
	printField(w, "Label", r.Label)
	if r.ClusterSize != 0 {
		printField(w, "Cluster Size", humanize.IBytes(r.ClusterSize))
	}
	if r.BlockSize != 0 {
		printField(w, "Block Size", humanize.IBytes(r.BlockSize))
	}
	if r.Nodes != 0 {
		printField(w, "Nodes", fmt.Sprintf("%d", r.Nodes))
	}
	fmt.Fprintf(w, "%-14s %s\n", "Command", strings.Join(r.Command, " "))
	fmt.Fprintf(w, "%-14s %s\n", "Result", resultText(r))
	fmt.Fprintf(w, "%-14s %s\n", "Duration", r.Duration.Round(time.Millisecond))

	if r.Output != "" {
		fmt.Fprintln(w)
		fmt.Fprint(w, r.Output)
		if !strings.HasSuffix(r.Output, "\n") {
			fmt.Fprintln(w)
		}
	}
}

// printField prints a field if value is non-empty
func printField(w io.Writer, label, value string) {
	if value != "" {
		fmt.Fprintf(w, "%-14s %s\n", label, value)
	}
}

func resultText(r *FormatRun) string {
	if r.Success {
		return "ok"
	}
	return fmt.Sprintf("failed (exit %d)", r.ExitCode)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
