package users

import (
	"fmt"

	"github.com/duststorm/duststorm/cmd/duststormctl/cmdutil"
	"github.com/duststorm/duststorm/internal/users"
	"github.com/spf13/cobra"
)

var (
	updatePassword string
	updateRole     string
)

var updateCmd = &cobra.Command{
	Use:   "update <username>",
	Short: "Change a user's password and/or role",
	Args:  cobra.ExactArgs(1),
	RunE:  runUpdate,
}

func init() {
	updateCmd.Flags().StringVar(&updatePassword, "password", "", "New password")
	updateCmd.Flags().StringVar(&updateRole, "role", "", "New role (admin or regular)")
}

func runUpdate(cmd *cobra.Command, args []string) error {
	var password *string
	if updatePassword != "" {
		password = &updatePassword
	}
	var role *byte
	if updateRole != "" {
		r, err := parseRole(updateRole)
		if err != nil {
			return err
		}
		role = &r
	}
	if password == nil && role == nil {
		return fmt.Errorf("nothing to update: pass --password and/or --role")
	}

	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}
	defer client.Close()

	status, err := client.UpdateUser(args[0], password, role)
	if err != nil {
		return err
	}
	switch users.UpdateResult(status) {
	case users.UpdateOk:
		cmdutil.Success("user %q updated", args[0])
		return nil
	case users.UpdateNotFound:
		return fmt.Errorf("user %q not found", args[0])
	case users.UpdateCannotRemoveOnlyAdmin:
		return fmt.Errorf("cannot demote the only remaining admin")
	case users.UpdateNothingRequested:
		return fmt.Errorf("nothing to update")
	default:
		return fmt.Errorf("server returned unknown status %d", status)
	}
}
