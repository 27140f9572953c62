package commands

import (
	"fmt"

	"github.com/duststorm/duststorm/cmd/duststormctl/cmdutil"
	"github.com/duststorm/duststorm/internal/cli/prompt"
	"github.com/spf13/cobra"
)

var shutdownForce bool

var shutdownCmd = &cobra.Command{
	Use:   "shutdown",
	Short: "Shut down the server",
	Long: `Ask the server to shut down gracefully: it drops every listener,
stops accepting new connections, and closes this session.

Examples:
  duststormctl shutdown
  duststormctl shutdown --force`,
	RunE: runShutdown,
}

func init() {
	shutdownCmd.Flags().BoolVarP(&shutdownForce, "force", "f", false, "Skip the confirmation prompt")
}

func runShutdown(cmd *cobra.Command, args []string) error {
	ok, err := prompt.ConfirmWithForce("Shut down the server?", shutdownForce)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Println("aborted")
		return nil
	}

	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	if err := client.Shutdown(); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	cmdutil.Success("shutdown requested")
	return nil
}
