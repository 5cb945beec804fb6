package main

import (
	"fmt"
	"os"

	"github.com/sigreer/ocfs2tool/internal/config"
	"github.com/sigreer/ocfs2tool/internal/version"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "ocfs2tool",
	Short: "OCFS2 volume formatting tool",
	Long: `ocfs2tool formats unmounted partitions as OCFS2 volumes.

It gathers the volume label, cluster size, node count and block size,
asks for confirmation and runs mkfs.ocfs2 with the matching options.
Every run is recorded in a local history database.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logrus.SetOutput(os.Stderr)
		if verbose {
			logrus.SetLevel(logrus.DebugLevel)
		}
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.Version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is /etc/ocfs2tool/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(formatCmd)
	rootCmd.AddCommand(devicesCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(versionCmd)
}

func loadConfig() *config.Config {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	logrus.WithField("mkfs", cfg.MkfsPath).Debug("config loaded")
	return cfg
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
