package db

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sigreer/ocfs2tool/internal/format"
)

// Record stores a completed run. It satisfies format.Recorder.
func (d *DB) Record(opts format.Options, argv []string, res *format.Result, started time.Time) error {
	run := &FormatRun{
		Device:      opts.Device,
		Label:       opts.Label,
		ClusterSize: uint64(opts.ClusterSize),
		BlockSize:   uint64(opts.BlockSize),
		Nodes:       opts.Nodes,
		Command:     argv,
		Success:     res.Success,
		ExitCode:    res.ExitCode,
		Output:      res.Output,
		StartedAt:   started,
		Duration:    res.Duration,
	}
	return d.RecordRun(run)
}

// RecordRun inserts run, assigning it a new ID
func (d *DB) RecordRun(run *FormatRun) error {
	commandJSON, err := json.Marshal(run.Command)
	if err != nil {
		return fmt.Errorf("failed to encode command: %w", err)
	}

	run.ID = uuid.NewString()
	run.StartedAt = run.StartedAt.UTC()

	_, err = d.conn.Exec(`
		INSERT INTO format_runs (id, device, label, cluster_size, block_size, nodes, command_json, success, exit_code, output, started_at, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.Device, nullString(run.Label), run.ClusterSize, run.BlockSize, run.Nodes,
		string(commandJSON), run.Success, run.ExitCode, nullString(run.Output), run.StartedAt, run.Duration.Milliseconds())
	if err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}

	return nil
}

// GetRun returns the run whose ID is or starts with id, or nil if there
// is none. A prefix matching several runs is an error.
func (d *DB) GetRun(id string) (*FormatRun, error) {
	if id == "" {
		return nil, nil
	}

	rows, err := d.conn.Query(`
		SELECT id, device, label, cluster_size, block_size, nodes, command_json, success, exit_code, output, started_at, duration_ms
		FROM format_runs
		WHERE substr(id, 1, ?) = ?
		LIMIT 2
	`, len(id), id)
	if err != nil {
		return nil, fmt.Errorf("failed to query run: %w", err)
	}
	defer rows.Close()

	runs, err := scanRuns(rows)
	if err != nil {
		return nil, err
	}
	switch len(runs) {
	case 0:
		return nil, nil
	case 1:
		return runs[0], nil
	default:
		return nil, fmt.Errorf("run id %q is ambiguous", id)
	}
}

// GetRuns returns the most recent runs across all devices
func (d *DB) GetRuns(limit int) ([]*FormatRun, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := d.conn.Query(`
		SELECT id, device, label, cluster_size, block_size, nodes, command_json, success, exit_code, output, started_at, duration_ms
		FROM format_runs
		ORDER BY started_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	return scanRuns(rows)
}

// GetRunsByDevice returns the most recent runs against one device
func (d *DB) GetRunsByDevice(device string, limit int) ([]*FormatRun, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := d.conn.Query(`
		SELECT id, device, label, cluster_size, block_size, nodes, command_json, success, exit_code, output, started_at, duration_ms
		FROM format_runs
		WHERE device = ?
		ORDER BY started_at DESC
		LIMIT ?
	`, device, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs by device: %w", err)
	}
	defer rows.Close()

	return scanRuns(rows)
}

func scanRuns(rows *sql.Rows) ([]*FormatRun, error) {
	var runs []*FormatRun
	for rows.Next() {
		var run FormatRun
		var label, output sql.NullString
		var commandJSON string
		var durationMS int64

		err := rows.Scan(
			&run.ID, &run.Device, &label,
			&run.ClusterSize, &run.BlockSize, &run.Nodes,
			&commandJSON, &run.Success, &run.ExitCode, &output,
			&run.StartedAt, &durationMS,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}

		if err := json.Unmarshal([]byte(commandJSON), &run.Command); err != nil {
			return nil, fmt.Errorf("failed to decode command for run %s: %w", run.ID, err)
		}
		run.Label = label.String
		run.Output = output.String
		run.Duration = time.Duration(durationMS) * time.Millisecond

		runs = append(runs, &run)
	}

	return runs, rows.Err()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
