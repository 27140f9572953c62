package commands

import (
	"fmt"
	"os"

	"github.com/duststorm/duststorm/cmd/duststormctl/cmdutil"
	"github.com/duststorm/duststorm/internal/cli/output"
	"github.com/spf13/cobra"
)

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Show a point-in-time metrics snapshot",
	Long: `Fetch and display the server's current connection and traffic
counters.

Examples:
  duststormctl metrics
  duststormctl metrics -o json`,
	RunE: runMetrics,
}

// metricsView is a display-friendly rendering of metrics.Snapshot.
type metricsView struct {
	CurrentClients      uint32 `json:"current_clients" yaml:"current_clients"`
	HistoricClients     uint64 `json:"historic_clients" yaml:"historic_clients"`
	ClientBytesSent     uint64 `json:"client_bytes_sent" yaml:"client_bytes_sent"`
	ClientBytesReceived uint64 `json:"client_bytes_received" yaml:"client_bytes_received"`
	CurrentManagers     uint32 `json:"current_managers" yaml:"current_managers"`
	HistoricManagers    uint64 `json:"historic_managers" yaml:"historic_managers"`
}

func (v metricsView) Headers() []string {
	return []string{"METRIC", "VALUE"}
}

func (v metricsView) Rows() [][]string {
	return [][]string{
		{"current_clients", fmt.Sprintf("%d", v.CurrentClients)},
		{"historic_clients", fmt.Sprintf("%d", v.HistoricClients)},
		{"client_bytes_sent", fmt.Sprintf("%d", v.ClientBytesSent)},
		{"client_bytes_received", fmt.Sprintf("%d", v.ClientBytesReceived)},
		{"current_managers", fmt.Sprintf("%d", v.CurrentManagers)},
		{"historic_managers", fmt.Sprintf("%d", v.HistoricManagers)},
	}
}

func runMetrics(cmd *cobra.Command, args []string) error {
	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	snap, err := client.RequestCurrentMetrics()
	if err != nil {
		return fmt.Errorf("failed to fetch metrics: %w", err)
	}
	if snap == nil {
		cmdutil.Printer(os.Stdout).Warning("no metrics available yet")
		return nil
	}

	view := metricsView{
		CurrentClients:      snap.CurrentClients,
		HistoricClients:     snap.HistoricClients,
		ClientBytesSent:     snap.ClientBytesSent,
		ClientBytesReceived: snap.ClientBytesReceived,
		CurrentManagers:     snap.CurrentManagers,
		HistoricManagers:    snap.HistoricManagers,
	}

	format, err := cmdutil.GetOutputFormatParsed()
	if err != nil {
		return err
	}
	switch format {
	case output.FormatJSON:
		return output.PrintJSON(os.Stdout, view)
	case output.FormatYAML:
		return output.PrintYAML(os.Stdout, view)
	default:
		return output.PrintTable(os.Stdout, view)
	}
}
