// Package cmdutil provides shared helpers for duststormctl's subcommands:
// connection resolution, output-format parsing, and small formatting
// utilities used by table renderers.
package cmdutil

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/duststorm/duststorm/internal/cli/credentials"
	"github.com/duststorm/duststorm/internal/cli/output"
	"github.com/duststorm/duststorm/internal/cli/prompt"
	"github.com/duststorm/duststorm/internal/sandstormclient"
)

// DialTimeout bounds how long GetAuthenticatedClient waits for the
// handshake to complete.
const DialTimeout = 10 * time.Second

// GlobalFlags holds the persistent flag values synced from the root command
// by its PersistentPreRun, so subcommands can read them without threading
// *cobra.Command through every call.
type GlobalFlags struct {
	Address  string
	Username string
	Profile  string
	Output   string
	NoColor  bool
	Verbose  bool
}

// Flags is the process-wide instance subcommands read from.
var Flags GlobalFlags

// GetOutputFormatParsed parses Flags.Output into an output.Format.
func GetOutputFormatParsed() (output.Format, error) {
	return output.ParseFormat(Flags.Output)
}

// resolveProfile picks the profile to connect with: an explicit
// --address/--username pair on the command line wins outright; otherwise
// the named --profile, or the store's current profile.
func resolveProfile() (addr, username string, err error) {
	if Flags.Address != "" {
		return Flags.Address, Flags.Username, nil
	}

	store, err := credentials.NewStore()
	if err != nil {
		return "", "", fmt.Errorf("failed to open profile store: %w", err)
	}

	var p *credentials.Profile
	if Flags.Profile != "" {
		p, err = store.GetProfile(Flags.Profile)
	} else {
		p, err = store.GetCurrentProfile()
	}
	if err != nil {
		return "", "", fmt.Errorf("no server configured: %w (use --address or 'duststormctl profile use')", err)
	}
	return p.Address, p.Username, nil
}

// GetAuthenticatedClient resolves the target profile, prompts for a
// password, and dials a Sandstorm session. The caller owns the returned
// client and must Close it.
func GetAuthenticatedClient() (*sandstormclient.Client, error) {
	addr, username, err := resolveProfile()
	if err != nil {
		return nil, err
	}
	if username == "" {
		username, err = prompt.InputRequired("Username")
		if err != nil {
			return nil, err
		}
	}
	password, err := prompt.Password("Password")
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), DialTimeout)
	defer cancel()

	client, err := sandstormclient.Dial(ctx, addr, username, password)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", addr, err)
	}
	return client, nil
}

// PrintOutput prints data according to Flags.Output: as a table (via
// renderer) when empty is false, an "empty" message when it's true, or as
// JSON/YAML regardless of emptiness.
func PrintOutput(w io.Writer, data any, empty bool, emptyMsg string, renderer output.TableRenderer) error {
	format, err := GetOutputFormatParsed()
	if err != nil {
		return err
	}

	switch format {
	case output.FormatJSON:
		return output.PrintJSON(w, data)
	case output.FormatYAML:
		return output.PrintYAML(w, data)
	default:
		if empty {
			Printer(w).Warning(emptyMsg)
			return nil
		}
		return output.PrintTable(w, renderer)
	}
}

// Printer builds an output.Printer writing to w, honoring --no-color. Its
// format only matters for Print; Success/Warning/Error ignore it.
func Printer(w io.Writer) *output.Printer {
	return output.NewPrinter(w, output.FormatTable, !Flags.NoColor)
}

// Success prints a green (unless --no-color) confirmation to stdout, the
// way duststormctl reports a completed add/remove/toggle.
func Success(format string, args ...any) {
	Printer(os.Stdout).Success(fmt.Sprintf(format, args...))
}

// EmptyOr returns fallback when s is empty, otherwise s.
func EmptyOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

// BoolToYesNo renders b as "yes"/"no".
func BoolToYesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
