package main

import (
	"fmt"
	"os"

	"github.com/sigreer/ocfs2tool/internal/partition"
	"github.com/spf13/cobra"
)

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List partitions and whether they can be formatted",
	Long: `List partitions reported by lsblk.

A partition is eligible for formatting when neither it nor anything
stacked on it (device-mapper, LVM, MD) is mounted or used as swap.`,
	Args: cobra.NoArgs,
	Run:  runDevices,
}

func init() {
	devicesCmd.Flags().Bool("json", false, "Output as JSON")
	devicesCmd.Flags().BoolP("eligible", "e", false, "Only show partitions that can be formatted")
}

func runDevices(cmd *cobra.Command, args []string) {
	jsonOut, _ := cmd.Flags().GetBool("json")
	eligibleOnly, _ := cmd.Flags().GetBool("eligible")

	parts, err := partition.NewLister().List()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listing partitions: %v\n", err)
		os.Exit(1)
	}

	if eligibleOnly {
		filtered := parts[:0]
		for _, p := range parts {
			if p.Eligible() {
				filtered = append(filtered, p)
			}
		}
		parts = filtered
	}

	if jsonOut {
		if err := partition.PrintJSON(os.Stdout, parts); err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding output: %v\n", err)
			os.Exit(1)
		}
		return
	}
	partition.PrintTable(os.Stdout, parts)
}
