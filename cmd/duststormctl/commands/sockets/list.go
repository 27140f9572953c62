package sockets

import (
	"os"

	"github.com/duststorm/duststorm/cmd/duststormctl/cmdutil"
	"github.com/duststorm/duststorm/internal/wire"
	"github.com/spf13/cobra"
)

type socketList []wire.SocketAddr

func (l socketList) Headers() []string { return []string{"ADDRESS"} }

func (l socketList) Rows() [][]string {
	rows := make([][]string, len(l))
	for i, a := range l {
		rows[i] = []string{a.String()}
	}
	return rows
}

var listKind string

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List bound listener sockets",
	RunE:    runList,
}

func init() {
	listCmd.Flags().StringVar(&listKind, "kind", kindSocks5, "Socket kind to list (socks5 or sandstorm)")
}

func runList(cmd *cobra.Command, args []string) error {
	if err := validateKind(listKind); err != nil {
		return err
	}

	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}
	defer client.Close()

	var addrs []wire.SocketAddr
	if listKind == kindSocks5 {
		addrs, err = client.ListSocks5Sockets()
	} else {
		addrs, err = client.ListSandstormSockets()
	}
	if err != nil {
		return err
	}

	list := socketList(addrs)
	return cmdutil.PrintOutput(os.Stdout, list, len(list) == 0, "No listeners bound.", list)
}
