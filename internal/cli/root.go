// Package cli implements the claudia command-line surface: one thin
// subcommand per client.Agent operation, plus init and serve for project
// and coordinator lifecycle. No subcommand embeds any coordination logic
// of its own; it all lives in internal/ops, internal/registry, and
// internal/store.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/speier/claudia/internal/version"
)

var (
	stateDir  string
	sessionID string
)

var rootCmd = &cobra.Command{
	Use:   "claudia [command]",
	Short: "Multi-agent coding session task coordination",
	Long: `claudia coordinates task assignment, claiming, and progress across
multiple agent sessions working the same project, in single-process mode
or behind a shared coordinator service.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the CLI, returning the first error encountered.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.Version = version.Get()
	rootCmd.PersistentFlags().StringVar(&stateDir, "dir", ".agent-state", "state directory")
	rootCmd.PersistentFlags().StringVar(&sessionID, "session", "", "session id (defaults to a generated id where required)")

	rootCmd.SetUsageTemplate(`Usage:
  {{.CommandPath}} [command]

Available Commands:{{range .Commands}}{{if (or .IsAvailableCommand (eq .Name "help"))}}
  {{rpad .Name .NamePadding }} {{.Short}}{{end}}{{end}}

Flags:
{{.LocalFlags.FlagUsages | trimTrailingWhitespaces}}
Use "{{.CommandPath}} [command] --help" for more information about a command.
`)

	rootCmd.AddCommand(
		initCmd,
		serveCmd,
		registerCmd,
		heartbeatCmd,
		endCmd,
		nextCmd,
		createCmd,
		editCmd,
		deleteCmd,
		noteCmd,
		reopenCmd,
		completeCmd,
		bulkCompleteCmd,
		subtaskCmd,
		templateCmd,
		statusCmd,
		undoCmd,
	)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})
}
