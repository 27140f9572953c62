package users

import (
	"fmt"

	"github.com/duststorm/duststorm/cmd/duststormctl/cmdutil"
	"github.com/duststorm/duststorm/internal/controlplane"
	"github.com/spf13/cobra"
)

var addRole string

var addCmd = &cobra.Command{
	Use:   "add <username> <password>",
	Short: "Register a new user",
	Args:  cobra.ExactArgs(2),
	RunE:  runAdd,
}

func init() {
	addCmd.Flags().StringVar(&addRole, "role", "regular", "Role for the new user (admin or regular)")
}

func runAdd(cmd *cobra.Command, args []string) error {
	role, err := parseRole(addRole)
	if err != nil {
		return err
	}

	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}
	defer client.Close()

	status, err := client.AddUser(args[0], args[1], role)
	if err != nil {
		return err
	}
	switch controlplane.AddUserResult(status) {
	case controlplane.AddUserOk:
		cmdutil.Success("user %q added", args[0])
		return nil
	case controlplane.AddUserAlreadyExists:
		return fmt.Errorf("user %q already exists", args[0])
	case controlplane.AddUserInvalidValues:
		return fmt.Errorf("invalid username or password")
	default:
		return fmt.Errorf("server returned unknown status %d", status)
	}
}
