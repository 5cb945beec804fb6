package partition

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
)

// PrintJSON outputs the partitions as JSON
func PrintJSON(w io.Writer, parts []Partition) error {
	if parts == nil {
		parts = []Partition{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(parts)
}

// PrintTable outputs the partitions as a table
func PrintTable(w io.Writer, parts []Partition) {
	if len(parts) == 0 {
		fmt.Fprintln(w, "No partitions found")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"DEVICE", "SIZE", "FSTYPE", "LABEL", "MOUNTPOINT", "ELIGIBLE"})

	for _, p := range parts {
		eligible := "no"
		if p.Eligible() {
			eligible = "yes"
		}
		t.AppendRow(table.Row{p.Path, humanize.IBytes(p.Size), p.FSType, p.Label, mountDisplay(p), eligible})
	}

	t.Render()
}

func mountDisplay(p Partition) string {
	switch {
	case p.Mountpoint != "":
		return p.Mountpoint
	case p.InUse:
		return "(holder mounted)"
	default:
		return ""
	}
}
