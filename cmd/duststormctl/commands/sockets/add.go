package sockets

import (
	"github.com/duststorm/duststorm/cmd/duststormctl/cmdutil"
	"github.com/spf13/cobra"
)

var addKind string

var addCmd = &cobra.Command{
	Use:   "add <host:port>",
	Short: "Bind a new listener",
	Args:  cobra.ExactArgs(1),
	RunE:  runAdd,
}

func init() {
	addCmd.Flags().StringVar(&addKind, "kind", kindSocks5, "Socket kind to bind (socks5 or sandstorm)")
}

func runAdd(cmd *cobra.Command, args []string) error {
	if err := validateKind(addKind); err != nil {
		return err
	}
	addr, err := cmdutil.ParseListenerAddr(args[0])
	if err != nil {
		return err
	}

	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}
	defer client.Close()

	if addKind == kindSocks5 {
		err = client.AddSocks5Socket(addr)
	} else {
		err = client.AddSandstormSocket(addr)
	}
	if err != nil {
		return err
	}
	cmdutil.Success("bound %s listener on %s", addKind, addr.String())
	return nil
}
