// Pgen-cfg is a command-line client for PGenerator pattern generators.
//
// It finds a device (known addresses first, then network discovery), reads
// and writes its PGenerator.conf settings, switches HDMI signal and HDR
// modes, draws patterns, and can expose the device to local tools over a
// WebSocket bridge.
//
// Usage:
//
//	pgen-cfg [command] [flags]
//
// See 'pgen-cfg --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/muurk/pgen/internal/logging"
	"github.com/muurk/pgen/internal/version"
)

func main() {
	err := rootCmd.Execute()
	logging.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "pgen-cfg",
	Short: "PGenerator Device Control Utility",
	Long: `A command-line client for PGenerator HDMI pattern generators.

Connects to the device's command port (85), reads and writes its
configuration, switches signal and HDR modes and draws test patterns.

Without --device the tool probes the usual PGenerator addresses
(10.10.11.1, 10.10.10.1, 10.10.12.1, 10.10.13.1) and falls back to
network discovery.`,
	Version:       version.Version,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return logging.Initialize(logLevel)
	},
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.Detailed())
	},
}
