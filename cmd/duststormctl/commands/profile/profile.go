// Package profile implements profile-management subcommands for duststormctl.
package profile

import (
	"github.com/spf13/cobra"
)

// Cmd is the profile subcommand.
var Cmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage server connection profiles",
	Long: `Manage remembered duststorm servers.

A profile remembers a server address and username so you don't have to pass
--address/--username on every command. Sandstorm re-authenticates with a
password on every connection, so profiles never store one.

Subcommands:
  list     List all configured profiles
  set      Create or update a profile
  use      Switch to a different profile
  current  Show the current profile
  delete   Delete a profile`,
}

func init() {
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(setCmd)
	Cmd.AddCommand(useCmd)
	Cmd.AddCommand(currentCmd)
	Cmd.AddCommand(deleteCmd)
}
