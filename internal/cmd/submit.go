package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Chargde-Porcupine/SHtack/internal/client"
	"github.com/Chargde-Porcupine/SHtack/internal/term"
)

// defaultServerURL matches the default listen address.
const defaultServerURL = "http://localhost:8000"

var submitServer string

var submitCmd = &cobra.Command{
	Use:   "submit <first> <second>",
	Short: "Run one workflow instance against a server",
	Long: `Stage two commands and release one, printing the released command.

The released command is the oldest one staged on the server, which is
<first> only if no other client staged something in between.

Exits with status 2 if the server rejects any step.`,
	Args: cobra.ExactArgs(2),
	RunE: runSubmit,
}

func init() {
	submitCmd.Flags().StringVar(&submitServer, "server", defaultServerURL, "Server base URL")
	rootCmd.AddCommand(submitCmd)
}

func runSubmit(cmd *cobra.Command, args []string) error {
	c := client.NewClient(submitServer)

	released, err := c.Run(cmd.Context(), args[0], args[1])
	if err != nil {
		if msg := serverRejection(err); msg != "" {
			term.Error("%s", msg)
			cmd.SilenceErrors = true
			return NewExitCodeError(exitHTTPFailure)
		}
		return fmt.Errorf("submit failed: %w", err)
	}

	term.Result(released)
	return nil
}
