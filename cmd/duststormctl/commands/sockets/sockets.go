// Package sockets implements listener-management subcommands for
// duststormctl: listing, adding, and removing SOCKS5 and Sandstorm listener
// sockets.
package sockets

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Cmd is the socket subcommand.
var Cmd = &cobra.Command{
	Use:   "socket",
	Short: "Manage SOCKS5 and Sandstorm listener sockets",
	Long: `Manage the addresses the server listens on.

Subcommands:
  list    List bound listeners for a socket kind
  add     Bind a new listener
  remove  Unbind a listener`,
}

func init() {
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(addCmd)
	Cmd.AddCommand(removeCmd)
}

const (
	kindSocks5    = "socks5"
	kindSandstorm = "sandstorm"
)

func validateKind(kind string) error {
	switch kind {
	case kindSocks5, kindSandstorm:
		return nil
	default:
		return fmt.Errorf("invalid --kind %q (want socks5 or sandstorm)", kind)
	}
}
