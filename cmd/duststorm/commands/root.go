// Package commands implements the duststorm server's CLI commands.
package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Version information injected at build time.
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"

	configFile string
)

var rootCmd = &cobra.Command{
	Use:   "duststorm",
	Short: "duststorm - a SOCKS5 proxy with remote administration",
	Long: `duststorm serves a SOCKS5 proxy (RFC 1928/1929, CONNECT only) alongside
a Sandstorm administration socket for remote user, socket, and metrics
management.

Use "duststorm [command] --help" for more information about a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and runs it.
func Execute() error {
	return rootCmd.Execute()
}

// GetRootCmd returns the root command, exposed for testing.
func GetRootCmd() *cobra.Command {
	return rootCmd
}

// GetConfigFile returns the --config flag value, empty if unset.
func GetConfigFile() string {
	return configFile
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Path to configuration file (default: $XDG_CONFIG_HOME/duststorm/config.yaml)")
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(completionCmd)
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}
