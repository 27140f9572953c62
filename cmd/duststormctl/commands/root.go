// Package commands implements the CLI commands for duststormctl.
package commands

import (
	"github.com/duststorm/duststorm/cmd/duststormctl/cmdutil"
	authcmd "github.com/duststorm/duststorm/cmd/duststormctl/commands/auth"
	eventscmd "github.com/duststorm/duststorm/cmd/duststormctl/commands/events"
	profilecmd "github.com/duststorm/duststorm/cmd/duststormctl/commands/profile"
	socketcmd "github.com/duststorm/duststorm/cmd/duststormctl/commands/sockets"
	usercmd "github.com/duststorm/duststorm/cmd/duststormctl/commands/users"
	"github.com/spf13/cobra"
)

var (
	// Version information injected at build time.
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "duststormctl",
	Short: "duststormctl - remote administration client for duststorm",
	Long: `duststormctl is the command-line client for administering a running
duststorm server over its Sandstorm control socket.

Use this tool to manage users, listener sockets, auth methods, the relay
buffer size, and to watch the live event stream.

Use "duststormctl [command] --help" for more information about a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cmdutil.Flags.Address, _ = cmd.Flags().GetString("address")
		cmdutil.Flags.Username, _ = cmd.Flags().GetString("username")
		cmdutil.Flags.Profile, _ = cmd.Flags().GetString("profile")
		cmdutil.Flags.Output, _ = cmd.Flags().GetString("output")
		cmdutil.Flags.NoColor, _ = cmd.Flags().GetBool("no-color")
		cmdutil.Flags.Verbose, _ = cmd.Flags().GetBool("verbose")
	},
}

// Execute adds all child commands to the root command and runs it.
func Execute() error {
	return rootCmd.Execute()
}

// GetRootCmd returns the root command, exposed for testing.
func GetRootCmd() *cobra.Command {
	return rootCmd
}

func init() {
	rootCmd.PersistentFlags().String("address", "", "Sandstorm server address (overrides the active profile)")
	rootCmd.PersistentFlags().String("username", "", "Username to authenticate as (overrides the active profile)")
	rootCmd.PersistentFlags().String("profile", "", "Named profile to connect with (default: the current profile)")
	rootCmd.PersistentFlags().StringP("output", "o", "table", "Output format (table|json|yaml)")
	rootCmd.PersistentFlags().Bool("no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(completionCmd)
	rootCmd.AddCommand(meowCmd)
	rootCmd.AddCommand(metricsCmd)
	rootCmd.AddCommand(shutdownCmd)
	rootCmd.AddCommand(profilecmd.Cmd)
	rootCmd.AddCommand(usercmd.Cmd)
	rootCmd.AddCommand(socketcmd.Cmd)
	rootCmd.AddCommand(authcmd.Cmd)
	rootCmd.AddCommand(bufferSizeCmd)
	rootCmd.AddCommand(eventscmd.Cmd)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// PrintErr prints an error message to stderr.
func PrintErr(format string, args ...any) {
	rootCmd.PrintErrf(format+"\n", args...)
}
