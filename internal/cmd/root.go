// Package cmd implements the CLI commands for shtack.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Chargde-Porcupine/SHtack/internal/term"
	"github.com/Chargde-Porcupine/SHtack/internal/version"
)

var silent bool

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "shtack",
	Short: "Two-stage shell command staging API",
	Long: `Shtack is an HTTP API for staging shell commands in two steps.

A client posts a first command to /push and receives a single-use path.
Posting a second command to that path returns another single-use path, and
fetching that path releases the oldest staged command. Submitted commands are
stripped of sudo/su and truncated at the first "&&" before they are staged.`,
	Version:      version.Version,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		term.SetOutput(cmd.OutOrStdout(), cmd.ErrOrStderr())
		term.SetSilent(silent)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&silent, "silent", "s", false, "Suppress status messages")
}

// Execute runs the root command and returns any error.
func Execute() error {
	return rootCmd.Execute()
}
