package main

import (
	"fmt"
	"os"
	"time"

	"github.com/sigreer/ocfs2tool/internal/db"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded format runs",
	Long: `Show mkfs.ocfs2 runs recorded by the format command.

Runs are kept in the history database (default /var/lib/ocfs2tool/history.db),
including the exact command line and the captured output.`,
	Args: cobra.NoArgs,
	Run:  runHistory,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one run with its captured output",
	Args:  cobra.ExactArgs(1),
	Run:   runHistoryShow,
}

func init() {
	historyCmd.AddCommand(historyShowCmd)

	historyCmd.Flags().Bool("json", false, "Output as JSON")
	historyCmd.Flags().String("device", "", "Only show runs against this device")
	historyCmd.Flags().Int("limit", 20, "Maximum number of runs to show")

	historyShowCmd.Flags().Bool("json", false, "Output as JSON")
}

func openDB() (*db.DB, error) {
	cfg := loadConfig()
	if !cfg.HistoryEnabled() {
		return nil, fmt.Errorf("format history is disabled in the config")
	}
	return db.New(cfg.History.Path)
}

func runHistory(cmd *cobra.Command, args []string) {
	database, err := openDB()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
		os.Exit(1)
	}
	defer database.Close()

	jsonOut, _ := cmd.Flags().GetBool("json")
	device, _ := cmd.Flags().GetString("device")
	limit, _ := cmd.Flags().GetInt("limit")

	var runs []*db.FormatRun
	if device != "" {
		runs, err = database.GetRunsByDevice(device, limit)
	} else {
		runs, err = database.GetRuns(limit)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error querying history: %v\n", err)
		os.Exit(1)
	}

	if jsonOut {
		if err := db.PrintRunsJSON(os.Stdout, runs); err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding output: %v\n", err)
			os.Exit(1)
		}
		return
	}
	db.PrintRunsTable(os.Stdout, runs, time.Now())
}

func runHistoryShow(cmd *cobra.Command, args []string) {
	database, err := openDB()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
		os.Exit(1)
	}
	defer database.Close()

	run, err := database.GetRun(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error querying history: %v\n", err)
		os.Exit(1)
	}
	if run == nil {
		fmt.Fprintf(os.Stderr, "Not found: %s\n", args[0])
		os.Exit(1)
	}

	if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
		if err := db.PrintRunsJSON(os.Stdout, []*db.FormatRun{run}); err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding output: %v\n", err)
			os.Exit(1)
		}
		return
	}
	db.PrintRun(os.Stdout, run)
}
