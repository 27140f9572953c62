package commands

import (
	"fmt"

	"github.com/duststorm/duststorm/cmd/duststormctl/cmdutil"
	"github.com/spf13/cobra"
)

var meowCmd = &cobra.Command{
	Use:   "meow",
	Short: "Check that the server is alive",
	Long:  `Send the Sandstorm liveness probe and print the server's reply.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := cmdutil.GetAuthenticatedClient()
		if err != nil {
			return err
		}
		defer func() { _ = client.Close() }()

		reply, err := client.Meow()
		if err != nil {
			return fmt.Errorf("meow failed: %w", err)
		}
		fmt.Println(reply)
		return nil
	},
}
