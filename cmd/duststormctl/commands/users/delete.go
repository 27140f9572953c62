package users

import (
	"fmt"

	"github.com/duststorm/duststorm/cmd/duststormctl/cmdutil"
	"github.com/duststorm/duststorm/internal/cli/prompt"
	"github.com/duststorm/duststorm/internal/users"
	"github.com/spf13/cobra"
)

var deleteForce bool

var deleteCmd = &cobra.Command{
	Use:     "delete <username>",
	Aliases: []string{"rm"},
	Short:   "Remove a user",
	Args:    cobra.ExactArgs(1),
	RunE:    runDelete,
}

func init() {
	deleteCmd.Flags().BoolVarP(&deleteForce, "force", "f", false, "Skip the confirmation prompt")
}

func runDelete(cmd *cobra.Command, args []string) error {
	ok, err := prompt.ConfirmWithForce(fmt.Sprintf("Delete user %q?", args[0]), deleteForce)
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
	defer client.Close()

	status, err := client.DeleteUser(args[0])
	if err != nil {
		return err
	}
	switch users.DeleteResult(status) {
	case users.DeleteOk:
		cmdutil.Success("user %q deleted", args[0])
		return nil
	case users.DeleteNotFound:
		return fmt.Errorf("user %q not found", args[0])
	case users.DeleteCannotRemoveOnlyAdmin:
		return fmt.Errorf("cannot delete the only remaining admin")
	default:
		return fmt.Errorf("server returned unknown status %d", status)
	}
}
