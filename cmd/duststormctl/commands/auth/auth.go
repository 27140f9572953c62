// Package auth implements authentication-method subcommands for
// duststormctl: listing and toggling which SOCKS5 auth methods (no-auth,
// username/password) the server accepts.
package auth

import (
	"fmt"

	"github.com/duststorm/duststorm/internal/events"
	"github.com/spf13/cobra"
)

// Cmd is the auth subcommand.
var Cmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage accepted SOCKS5 authentication methods",
	Long: `Manage which SOCKS5 authentication methods the server negotiates.

Subcommands:
  list    Show which methods are enabled
  toggle  Enable or disable a method`,
}

func init() {
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(toggleCmd)
}

func parseMethod(s string) (byte, error) {
	switch s {
	case "noauth", "no-auth":
		return byte(events.AuthNoAuth), nil
	case "userpass", "user-pass":
		return byte(events.AuthUserPass), nil
	default:
		return 0, fmt.Errorf("invalid method %q (want noauth or userpass)", s)
	}
}

func methodName(method byte) string {
	if method == byte(events.AuthNoAuth) {
		return "noauth"
	}
	return "userpass"
}
