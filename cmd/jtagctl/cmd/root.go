package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "jtagctl",
	Short: "JTAG TAP walker and XVC server over GPIO",
	Long: `jtagctl drives a JTAG target's TAP controller through a host's GPIO
header, either directly (jtagctl run, driven by a row script and a device
catalog) or as an XVC server (jtagctl xvc) that lets Vivado or OpenOCD
drive the chain over TCP.`,
	Version: "1.0.0",
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
