package sockets

import (
	"fmt"

	"github.com/duststorm/duststorm/cmd/duststormctl/cmdutil"
	"github.com/duststorm/duststorm/internal/cli/prompt"
	"github.com/spf13/cobra"
)

// Wire status codes for the remove-socket response (spec §4.6 tags
// 0x05/0x08): 0 means the listener was unbound, 1 means no listener was
// bound at that address.
const (
	removeSocketOk       = 0
	removeSocketNotFound = 1
)

var (
	removeKind  string
	removeForce bool
)

var removeCmd = &cobra.Command{
	Use:     "remove <host:port>",
	Aliases: []string{"rm"},
	Short:   "Unbind a listener",
	Args:    cobra.ExactArgs(1),
	RunE:    runRemove,
}

func init() {
	removeCmd.Flags().StringVar(&removeKind, "kind", kindSocks5, "Socket kind to unbind (socks5 or sandstorm)")
	removeCmd.Flags().BoolVarP(&removeForce, "force", "f", false, "Skip the confirmation prompt")
}

func runRemove(cmd *cobra.Command, args []string) error {
	if err := validateKind(removeKind); err != nil {
		return err
	}
	addr, err := cmdutil.ParseListenerAddr(args[0])
	if err != nil {
		return err
	}

	ok, err := prompt.ConfirmWithForce(fmt.Sprintf("Unbind %s listener on %s?", removeKind, addr.String()), removeForce)
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

	var status byte
	if removeKind == kindSocks5 {
		status, err = client.RemoveSocks5Socket(addr)
	} else {
		status, err = client.RemoveSandstormSocket(addr)
	}
	if err != nil {
		return err
	}
	switch status {
	case removeSocketOk:
		cmdutil.Success("unbound %s listener on %s", removeKind, addr.String())
		return nil
	case removeSocketNotFound:
		return fmt.Errorf("no %s listener bound on %s", removeKind, addr.String())
	default:
		return fmt.Errorf("server returned unknown status %d", status)
	}
}
