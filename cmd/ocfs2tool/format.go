package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/sigreer/ocfs2tool/internal/config"
	"github.com/sigreer/ocfs2tool/internal/db"
	"github.com/sigreer/ocfs2tool/internal/format"
	"github.com/sigreer/ocfs2tool/internal/partition"
	"github.com/sigreer/ocfs2tool/internal/prompt"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var formatCmd = &cobra.Command{
	Use:   "format [device]",
	Short: "Create an OCFS2 filesystem on an unmounted partition",
	Long: `Format an unmounted partition as OCFS2 by running mkfs.ocfs2.

Sizes accept "auto" or a power of two such as 512, 4K or 1M. Auto and empty
values are left to mkfs.ocfs2. Without --yes the device must be confirmed
on the terminal before anything is written.

Examples:
  ocfs2tool format /dev/sdb1
  ocfs2tool format /dev/sdb1 -L shared -c 64K -n 8
  ocfs2tool format -i --advanced          # prompt for every option
  ocfs2tool format /dev/sdb1 --dry-run    # print the mkfs.ocfs2 command`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		os.Exit(runFormat(cmd, args))
	},
}

func init() {
	addFormatFlags(formatCmd.Flags())
}

func addFormatFlags(flags *pflag.FlagSet) {
	flags.StringP("label", "L", format.DefaultLabel, "volume label (empty for none)")
	flags.StringP("cluster-size", "c", "auto", "cluster size, auto or 4K-1M")
	flags.StringP("block-size", "b", "auto", "block size, auto or 512-4K")
	flags.IntP("nodes", "n", format.DefaultNodes, "number of node slots (0 to omit)")
	flags.BoolP("interactive", "i", false, "prompt for each option")
	flags.Bool("advanced", false, "also prompt for block size in interactive mode")
	flags.BoolP("yes", "y", false, "do not ask for confirmation")
	flags.Bool("dry-run", false, "print the mkfs.ocfs2 command without running it")
}

// runFormat returns the process exit code.
func runFormat(cmd *cobra.Command, args []string) int {
	cfg := loadConfig()

	opts, err := optionsFromFlags(cmd.Flags(), cfg, args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	interactive, _ := cmd.Flags().GetBool("interactive")
	advanced, _ := cmd.Flags().GetBool("advanced")
	yes, _ := cmd.Flags().GetBool("yes")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	lister := partition.NewLister()
	runner := &format.ExecRunner{
		Message: "Formatting...",
		Signals: []os.Signal{os.Interrupt, syscall.SIGTERM},
	}
	if prompt.IsTerminal(os.Stderr) {
		runner.Progress = os.Stderr
	}
	f := &format.Formatter{
		Binary:  cfg.MkfsPath,
		Devices: lister,
		Runner:  runner,
	}

	// One prompter for the whole session so buffered stdin is not lost.
	p := prompt.New(os.Stdin, os.Stdout)

	if interactive {
		devices, err := lister.Eligible()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error listing partitions: %v\n", err)
			return 1
		}
		opts, err = format.Collect(p, devices, opts, advanced)
		if err != nil {
			return reportFormatError(os.Stderr, err)
		}
	}

	if dryRun {
		argv, err := f.Prepare(opts)
		if err != nil {
			return reportFormatError(os.Stderr, err)
		}
		fmt.Println(quoteArgv(argv))
		return 0
	}

	f.Confirm, err = confirmer(yes, interactive, prompt.IsTerminal(os.Stdin), p)
	if err != nil {
		return reportFormatError(os.Stderr, err)
	}

	if cfg.HistoryEnabled() {
		database, err := db.New(cfg.History.Path)
		if err != nil {
			logrus.WithError(err).Warn("format history unavailable")
		} else {
			defer database.Close()
			f.History = database
		}
	}

	// Signals are caught only while mkfs.ocfs2 runs, so Ctrl-C at the
	// confirmation prompt still exits immediately.
	res, err := f.Format(context.Background(), opts)
	if err != nil {
		return reportFormatError(os.Stderr, err)
	}

	color.New(color.FgGreen).Printf("Formatted %s as OCFS2", opts.Device)
	fmt.Printf(" (%s)\n", res.Duration.Round(time.Millisecond))
	if verbose && res.Output != "" {
		fmt.Print(res.Output)
	}
	return 0
}

// optionsFromFlags layers positional device and explicitly set flags over
// the configured defaults.
func optionsFromFlags(flags *pflag.FlagSet, cfg *config.Config, args []string) (format.Options, error) {
	opts, err := cfg.Options()
	if err != nil {
		return opts, fmt.Errorf("config: %w", err)
	}

	if len(args) == 1 {
		opts.Device = args[0]
	}

	if flags.Changed("label") {
		opts.Label, _ = flags.GetString("label")
	}
	if flags.Changed("nodes") {
		opts.Nodes, _ = flags.GetInt("nodes")
	}
	if flags.Changed("cluster-size") {
		s, _ := flags.GetString("cluster-size")
		if opts.ClusterSize, err = format.ParseSize(s); err != nil {
			return opts, fmt.Errorf("--cluster-size: %w", err)
		}
	}
	if flags.Changed("block-size") {
		s, _ := flags.GetString("block-size")
		if opts.BlockSize, err = format.ParseSize(s); err != nil {
			return opts, fmt.Errorf("--block-size: %w", err)
		}
	}

	return opts, nil
}

// confirmer picks the confirmation step. --yes skips it; otherwise the
// user must be able to answer, either on a terminal or because they are
// already answering interactive prompts.
func confirmer(yes, interactive, stdinTTY bool, p format.Confirmer) (format.Confirmer, error) {
	if yes {
		return nil, nil
	}
	if !interactive && !stdinTTY {
		return nil, format.ErrNotInteractive
	}
	return p, nil
}

// reportFormatError prints err for the user and returns the exit code.
// A declined confirmation exits quietly.
func reportFormatError(w io.Writer, err error) int {
	red := color.New(color.FgRed)

	var mkfsErr *format.MkfsError
	switch {
	case errors.Is(err, format.ErrDeclined):
	case errors.Is(err, format.ErrNoDevices):
		red.Fprintln(w, "No unmounted partitions")
	case errors.As(err, &mkfsErr):
		red.Fprintln(w, mkfsErr.Error())
	default:
		red.Fprintf(w, "Error: %v\n", err)
	}
	return 1
}

// quoteArgv joins argv for display, quoting arguments that need it.
func quoteArgv(argv []string) string {
	quoted := make([]string, len(argv))
	for i, a := range argv {
		if a == "" || strings.ContainsAny(a, " \t\n'\"\\$`") {
			quoted[i] = strconv.Quote(a)
		} else {
			quoted[i] = a
		}
	}
	return strings.Join(quoted, " ")
}
