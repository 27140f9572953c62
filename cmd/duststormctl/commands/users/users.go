// Package users implements user-management subcommands for duststormctl.
package users

import (
	"fmt"

	"github.com/duststorm/duststorm/internal/users"
	"github.com/spf13/cobra"
)

// Cmd is the user subcommand.
var Cmd = &cobra.Command{
	Use:   "user",
	Short: "Manage SOCKS5/Sandstorm users",
	Long: `Manage the username/password/role table shared by SOCKS5
authentication and Sandstorm admin login.

Subcommands:
  list     List all users
  add      Register a new user
  update   Change a user's password and/or role
  delete   Remove a user`,
}

func init() {
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(addCmd)
	Cmd.AddCommand(updateCmd)
	Cmd.AddCommand(deleteCmd)
}

// parseRole converts a --role flag value ("admin"/"regular") to the wire
// byte form (users.RoleAdmin == 0, users.RoleRegular == 1).
func parseRole(s string) (byte, error) {
	switch s {
	case "admin":
		return byte(users.RoleAdmin), nil
	case "regular":
		return byte(users.RoleRegular), nil
	default:
		return 0, fmt.Errorf("invalid role %q (want admin or regular)", s)
	}
}

// roleName renders a wire role byte back to its flag-form name.
func roleName(role byte) string {
	if role == byte(users.RoleAdmin) {
		return "admin"
	}
	return "regular"
}
