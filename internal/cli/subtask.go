package cli

import (
	"github.com/spf13/cobra"

	"github.com/speier/claudia/internal/ops"
)

var (
	subtaskTitle       string
	subtaskDescription string
	subtaskPriority    int
	subtaskLabels      string
)

var subtaskCmd = &cobra.Command{
	Use:   "subtask",
	Short: "Manage subtasks",
}

var subtaskCreateCmd = &cobra.Command{
	Use:   "create [parent-task-id]",
	Short: "Create a subtask under a parent task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newAgent()
		if err != nil {
			return exitError(err)
		}
		in := ops.CreateTaskInput{
			Title:       subtaskTitle,
			Description: subtaskDescription,
			Labels:      splitCSV(subtaskLabels),
		}
		if cmd.Flags().Changed("priority") {
			in.Priority = &subtaskPriority
		}
		task, err := a.CreateSubtask(args[0], in)
		if err != nil {
			return exitError(err)
		}
		return printJSON(task)
	},
}

var subtaskProgressCmd = &cobra.Command{
	Use:   "progress [parent-task-id]",
	Short: "Report how many of a task's subtasks are done",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newAgent()
		if err != nil {
			return exitError(err)
		}
		report, err := a.SubtaskProgress(args[0])
		if err != nil {
			return exitError(err)
		}
		return printJSON(report)
	},
}

func init() {
	subtaskCreateCmd.Flags().StringVar(&subtaskTitle, "title", "", "subtask title (required)")
	subtaskCreateCmd.Flags().StringVar(&subtaskDescription, "description", "", "subtask description")
	subtaskCreateCmd.Flags().IntVar(&subtaskPriority, "priority", 2, "priority 0 (critical) to 3 (low)")
	subtaskCreateCmd.Flags().StringVar(&subtaskLabels, "labels", "", "comma-separated labels")
	subtaskCreateCmd.MarkFlagRequired("title")

	subtaskCmd.AddCommand(subtaskCreateCmd, subtaskProgressCmd)
}
