package users

import (
	"os"

	"github.com/duststorm/duststorm/cmd/duststormctl/cmdutil"
	"github.com/spf13/cobra"
)

type userRow struct {
	Username string
	Role     string
}

type userList []userRow

func (l userList) Headers() []string { return []string{"USERNAME", "ROLE"} }

func (l userList) Rows() [][]string {
	rows := make([][]string, len(l))
	for i, u := range l {
		rows[i] = []string{u.Username, u.Role}
	}
	return rows
}

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List registered users",
	RunE:    runList,
}

func runList(cmd *cobra.Command, args []string) error {
	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}
	defer client.Close()

	entries, err := client.ListUsers()
	if err != nil {
		return err
	}

	list := make(userList, len(entries))
	for i, e := range entries {
		list[i] = userRow{Username: e.Username, Role: roleName(e.Role)}
	}

	return cmdutil.PrintOutput(os.Stdout, list, len(list) == 0, "No users registered.", list)
}
