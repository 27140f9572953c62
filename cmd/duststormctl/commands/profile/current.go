package profile

import (
	"fmt"

	"github.com/duststorm/duststorm/internal/cli/credentials"
	"github.com/spf13/cobra"
)

var currentCmd = &cobra.Command{
	Use:   "current",
	Short: "Show the current profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := credentials.NewStore()
		if err != nil {
			return err
		}
		name := store.GetCurrentProfileName()
		p, err := store.GetCurrentProfile()
		if err != nil {
			return err
		}
		fmt.Printf("%s  %s", name, p.Address)
		if p.Username != "" {
			fmt.Printf(" (%s)", p.Username)
		}
		fmt.Println()
		return nil
	},
}
