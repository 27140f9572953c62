// Package events implements the "events" subcommand (alias "watch"): enabling server-pushed
// event delivery on a Sandstorm session and streaming it to the terminal as
// it arrives.
package events

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/duststorm/duststorm/cmd/duststormctl/cmdutil"
	"github.com/duststorm/duststorm/internal/cli/output"
	"github.com/duststorm/duststorm/internal/cli/timeutil"
	"github.com/duststorm/duststorm/internal/events"
	"github.com/spf13/cobra"
)

// Cmd is the events subcommand.
var Cmd = &cobra.Command{
	Use:     "events",
	Aliases: []string{"watch"},
	Short:   "Stream live server events",
	Long: `Enable event delivery on this session (spec §4.6 tag 0x01) and print
every event the server pushes until interrupted with Ctrl-C.`,
	RunE: runEvents,
}

func runEvents(cmd *cobra.Command, args []string) error {
	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}
	defer client.Close()

	if _, err := client.EventStreamConfig(true); err != nil {
		return fmt.Errorf("failed to enable event stream: %w", err)
	}

	format, err := cmdutil.GetOutputFormatParsed()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-client.Done():
			return fmt.Errorf("connection to server lost")
		case ev, ok := <-client.Events():
			if !ok {
				return nil
			}
			if err := printEvent(ev, format); err != nil {
				return err
			}
		}
	}
}

func printEvent(ev events.Event, format output.Format) error {
	row := eventRow{
		Time: timeutil.FormatEventTime(ev.Timestamp),
		Kind: eventKind(ev.Data),
		Data: ev.Data,
	}
	switch format {
	case output.FormatJSON:
		return output.PrintJSONCompact(os.Stdout, row)
	case output.FormatYAML:
		return output.PrintYAML(os.Stdout, row)
	default:
		fmt.Printf("%s  %-32s  %+v\n", row.Time, row.Kind, row.Data)
		return nil
	}
}

type eventRow struct {
	Time string          `json:"time" yaml:"time"`
	Kind string          `json:"kind" yaml:"kind"`
	Data events.EventData `json:"data" yaml:"data"`
}

// eventKind derives a short, human-readable name for an event variant from
// its concrete Go type, since EventData carries no name field of its own.
func eventKind(data events.EventData) string {
	return fmt.Sprintf("%T", data)
}
