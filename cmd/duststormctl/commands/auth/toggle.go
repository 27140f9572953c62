package auth

import (
	"fmt"
	"os"

	"github.com/duststorm/duststorm/cmd/duststormctl/cmdutil"
	"github.com/spf13/cobra"
)

var toggleCmd = &cobra.Command{
	Use:   "toggle <noauth|userpass> <on|off>",
	Short: "Enable or disable an authentication method",
	Args:  cobra.ExactArgs(2),
	RunE:  runToggle,
}

func runToggle(cmd *cobra.Command, args []string) error {
	method, err := parseMethod(args[0])
	if err != nil {
		return err
	}
	enabled, err := parseOnOff(args[1])
	if err != nil {
		return err
	}

	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}
	defer client.Close()

	changed, err := client.ToggleAuthMethod(method, enabled)
	if err != nil {
		return err
	}
	state := map[bool]string{true: "enabled", false: "disabled"}[enabled]
	if !changed {
		cmdutil.Printer(os.Stdout).Warning(fmt.Sprintf("%s was already %s", args[0], state))
		return nil
	}
	cmdutil.Success("%s is now %s", args[0], state)
	return nil
}

func parseOnOff(s string) (bool, error) {
	switch s {
	case "on", "enable", "enabled", "true":
		return true, nil
	case "off", "disable", "disabled", "false":
		return false, nil
	default:
		return false, fmt.Errorf("invalid state %q (want on or off)", s)
	}
}
