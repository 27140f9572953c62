package profile

import (
	"fmt"

	"github.com/duststorm/duststorm/cmd/duststormctl/cmdutil"
	"github.com/duststorm/duststorm/internal/cli/credentials"
	"github.com/spf13/cobra"
)

var (
	setUsername string
	setUse      bool
)

var setCmd = &cobra.Command{
	Use:   "set <name> <address>",
	Short: "Create or update a profile",
	Args:  cobra.ExactArgs(2),
	Long: `Create or update a profile's remembered address and username.

Examples:
  duststormctl profile set home 127.0.0.1:3390 --username admin
  duststormctl profile set home 127.0.0.1:3390 --username admin --use`,
	RunE: runSet,
}

func init() {
	setCmd.Flags().StringVar(&setUsername, "username", "", "Username to remember for this profile")
	setCmd.Flags().BoolVar(&setUse, "use", false, "Switch to this profile immediately")
}

func runSet(cmd *cobra.Command, args []string) error {
	name, addr := args[0], args[1]

	store, err := credentials.NewStore()
	if err != nil {
		return err
	}

	if err := store.SetProfile(name, &credentials.Profile{Address: addr, Username: setUsername}); err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}

	if setUse {
		if err := store.UseProfile(name); err != nil {
			return err
		}
	}

	cmdutil.Success("profile %q saved", name)
	return nil
}
