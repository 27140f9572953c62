package auth

import (
	"os"

	"github.com/duststorm/duststorm/cmd/duststormctl/cmdutil"
	"github.com/spf13/cobra"
)

type methodRow struct {
	Method  string
	Enabled string
}

type methodList []methodRow

func (l methodList) Headers() []string { return []string{"METHOD", "ENABLED"} }

func (l methodList) Rows() [][]string {
	rows := make([][]string, len(l))
	for i, m := range l {
		rows[i] = []string{m.Method, m.Enabled}
	}
	return rows
}

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "Show which authentication methods are enabled",
	RunE:    runList,
}

func runList(cmd *cobra.Command, args []string) error {
	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}
	defer client.Close()

	entries, err := client.ListAuthMethods()
	if err != nil {
		return err
	}

	list := make(methodList, len(entries))
	for i, e := range entries {
		list[i] = methodRow{Method: methodName(e.Method), Enabled: cmdutil.BoolToYesNo(e.Enabled)}
	}

	return cmdutil.PrintOutput(os.Stdout, list, len(list) == 0, "No authentication methods reported.", list)
}
