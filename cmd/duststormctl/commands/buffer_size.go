package commands

import (
	"fmt"

	"github.com/duststorm/duststorm/cmd/duststormctl/cmdutil"
	"github.com/duststorm/duststorm/internal/buffersize"
	"github.com/spf13/cobra"
)

var bufferSizeCmd = &cobra.Command{
	Use:   "buffer-size",
	Short: "Get or set the relay buffer size",
	Long: `Get or set the buffer size applied to new SOCKS5 relay sessions.

Examples:
  duststormctl buffer-size get
  duststormctl buffer-size set 8192
  duststormctl buffer-size set 64K`,
}

var bufferSizeGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Show the current buffer size",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := cmdutil.GetAuthenticatedClient()
		if err != nil {
			return err
		}
		defer func() { _ = client.Close() }()

		size, err := client.GetBufferSize()
		if err != nil {
			return fmt.Errorf("failed to fetch buffer size: %w", err)
		}
		fmt.Println(size)
		return nil
	},
}

var bufferSizeSetCmd = &cobra.Command{
	Use:   "set <bytes>",
	Short: "Change the buffer size",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		size, err := buffersize.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid buffer size %q: %w", args[0], err)
		}

		client, err := cmdutil.GetAuthenticatedClient()
		if err != nil {
			return err
		}
		defer func() { _ = client.Close() }()

		accepted, err := client.SetBufferSize(size)
		if err != nil {
			return fmt.Errorf("failed to set buffer size: %w", err)
		}
		if !accepted {
			return fmt.Errorf("server rejected buffer size %d", size)
		}
		cmdutil.Success("buffer size set to %d", size)
		return nil
	},
}

func init() {
	bufferSizeCmd.AddCommand(bufferSizeGetCmd)
	bufferSizeCmd.AddCommand(bufferSizeSetCmd)
}
