package profile

import (
	"os"

	"github.com/duststorm/duststorm/cmd/duststormctl/cmdutil"
	"github.com/duststorm/duststorm/internal/cli/credentials"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all configured profiles",
	RunE:  runList,
}

type profileList []profileRow

type profileRow struct {
	Name     string `json:"name" yaml:"name"`
	Address  string `json:"address" yaml:"address"`
	Username string `json:"username,omitempty" yaml:"username,omitempty"`
	Current  bool   `json:"current" yaml:"current"`
}

func (l profileList) Headers() []string {
	return []string{"NAME", "ADDRESS", "USERNAME", "CURRENT"}
}

func (l profileList) Rows() [][]string {
	rows := make([][]string, 0, len(l))
	for _, p := range l {
		rows = append(rows, []string{p.Name, p.Address, cmdutil.EmptyOr(p.Username, "-"), cmdutil.BoolToYesNo(p.Current)})
	}
	return rows
}

func runList(cmd *cobra.Command, args []string) error {
	store, err := credentials.NewStore()
	if err != nil {
		return err
	}

	current := store.GetCurrentProfileName()
	names := store.ListProfiles()
	list := make(profileList, 0, len(names))
	for _, name := range names {
		p, err := store.GetProfile(name)
		if err != nil {
			continue
		}
		list = append(list, profileRow{Name: name, Address: p.Address, Username: p.Username, Current: name == current})
	}

	return cmdutil.PrintOutput(os.Stdout, list, len(list) == 0, "No profiles configured. Run 'duststormctl profile set' first.", list)
}
