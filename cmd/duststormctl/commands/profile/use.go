package profile

import (
	"github.com/duststorm/duststorm/cmd/duststormctl/cmdutil"
	"github.com/duststorm/duststorm/internal/cli/credentials"
	"github.com/spf13/cobra"
)

var useCmd = &cobra.Command{
	Use:   "use <name>",
	Short: "Switch to a different profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := credentials.NewStore()
		if err != nil {
			return err
		}
		if err := store.UseProfile(args[0]); err != nil {
			return err
		}
		cmdutil.Success("switched to profile %q", args[0])
		return nil
	},
}
