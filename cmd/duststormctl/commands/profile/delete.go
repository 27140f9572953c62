package profile

import (
	"fmt"

	"github.com/duststorm/duststorm/cmd/duststormctl/cmdutil"
	"github.com/duststorm/duststorm/internal/cli/credentials"
	"github.com/duststorm/duststorm/internal/cli/prompt"
	"github.com/spf13/cobra"
)

var deleteForce bool

var deleteCmd = &cobra.Command{
	Use:     "delete <name>",
	Aliases: []string{"rm"},
	Short:   "Delete a profile",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ok, err := prompt.ConfirmWithForce(fmt.Sprintf("Delete profile %q?", args[0]), deleteForce)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("aborted")
			return nil
		}

		store, err := credentials.NewStore()
		if err != nil {
			return err
		}
		if err := store.DeleteProfile(args[0]); err != nil {
			return err
		}
		cmdutil.Success("profile %q deleted", args[0])
		return nil
	},
}

func init() {
	deleteCmd.Flags().BoolVarP(&deleteForce, "force", "f", false, "Skip the confirmation prompt")
}
