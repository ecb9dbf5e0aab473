package cli

import "github.com/spf13/cobra"

var undoCmd = &cobra.Command{
	Use:   "undo",
	Short: "Reverse the most recent reversible action",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newAgent()
		if err != nil {
			return exitError(err)
		}
		task, err := a.Undo()
		if err != nil {
			return exitError(err)
		}
		return printJSON(task)
	},
}
