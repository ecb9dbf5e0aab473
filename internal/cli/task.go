package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/speier/claudia/internal/ops"
)

var (
	createTitle       string
	createDescription string
	createPriority    int
	createLabels      string
	createBlockedBy   string
	createParentID    string
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new task",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newAgent()
		if err != nil {
			return exitError(err)
		}
		in := ops.CreateTaskInput{
			Title:       createTitle,
			Description: createDescription,
			Labels:      splitCSV(createLabels),
			BlockedBy:   splitCSV(createBlockedBy),
		}
		if cmd.Flags().Changed("priority") {
			in.Priority = &createPriority
		}
		if createParentID != "" {
			in.ParentID = &createParentID
		}
		task, err := a.CreateTask(in)
		if err != nil {
			return exitError(err)
		}
		return printJSON(task)
	},
}

var nextCmd = &cobra.Command{
	Use:   "next",
	Short: "Request the next task for this session",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newAgent()
		if err != nil {
			return exitError(err)
		}
		if sessionID == "" {
			return exitError(fmt.Errorf("--session is required"))
		}
		task, err := a.RequestTask(sessionID, splitCSV(createLabels))
		if err != nil {
			return exitError(err)
		}
		if task == nil {
			fmt.Println("no task available")
			return nil
		}
		return printJSON(task)
	},
}

var (
	editTitle       string
	editDescription string
	editStatus      string
	editPriority    int
	editLabels      string
	editBlockedBy   string
	editBranch      string
)

var editCmd = &cobra.Command{
	Use:   "edit [task-id]",
	Short: "Edit a task's fields",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newAgent()
		if err != nil {
			return exitError(err)
		}
		var fields ops.EditFields
		if cmd.Flags().Changed("title") {
			fields.Title = &editTitle
		}
		if cmd.Flags().Changed("description") {
			fields.Description = &editDescription
		}
		if cmd.Flags().Changed("status") {
			fields.Status = &editStatus
		}
		if cmd.Flags().Changed("priority") {
			fields.Priority = &editPriority
		}
		if cmd.Flags().Changed("labels") {
			labels := splitCSV(editLabels)
			fields.Labels = &labels
		}
		if cmd.Flags().Changed("blocked-by") {
			blockedBy := splitCSV(editBlockedBy)
			fields.BlockedBy = &blockedBy
		}
		if cmd.Flags().Changed("branch") {
			fields.Branch = &editBranch
		}
		task, err := a.EditTask(args[0], fields)
		if err != nil {
			return exitError(err)
		}
		return printJSON(task)
	},
}

var deleteForce bool

var deleteCmd = &cobra.Command{
	Use:   "delete [task-id]",
	Short: "Delete a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newAgent()
		if err != nil {
			return exitError(err)
		}
		if err := a.DeleteTask(args[0], deleteForce); err != nil {
			return exitError(err)
		}
		fmt.Println("ok")
		return nil
	},
}

var noteCmd = &cobra.Command{
	Use:   "note [task-id] [text]",
	Short: "Append a note to a task",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newAgent()
		if err != nil {
			return exitError(err)
		}
		if err := a.NoteTask(args[0], resolveSession(), args[1]); err != nil {
			return exitError(err)
		}
		fmt.Println("ok")
		return nil
	},
}

var reopenNote string

var reopenCmd = &cobra.Command{
	Use:   "reopen [task-id]",
	Short: "Return a done task to open",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newAgent()
		if err != nil {
			return exitError(err)
		}
		task, err := a.ReopenTask(args[0], reopenNote, resolveSession())
		if err != nil {
			return exitError(err)
		}
		return printJSON(task)
	},
}

var (
	completeNote   string
	completeBranch string
	completeForce  bool
)

var completeCmd = &cobra.Command{
	Use:   "complete [task-id]",
	Short: "Mark a task done",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newAgent()
		if err != nil {
			return exitError(err)
		}
		if sessionID == "" {
			return exitError(fmt.Errorf("--session is required"))
		}
		task, err := a.CompleteTask(args[0], sessionID, completeNote, completeBranch, completeForce)
		if err != nil {
			return exitError(err)
		}
		return printJSON(task)
	},
}

var bulkCompleteNote string

var bulkCompleteCmd = &cobra.Command{
	Use:   "bulk-complete [task-id...]",
	Short: "Mark several tasks done, collecting per-task failures",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newAgent()
		if err != nil {
			return exitError(err)
		}
		if sessionID == "" {
			return exitError(fmt.Errorf("--session is required"))
		}
		result, err := a.BulkComplete(args, sessionID, bulkCompleteNote)
		if err != nil {
			return exitError(err)
		}
		return printJSON(result)
	},
}

func init() {
	createCmd.Flags().StringVar(&createTitle, "title", "", "task title (required)")
	createCmd.Flags().StringVar(&createDescription, "description", "", "task description")
	createCmd.Flags().IntVar(&createPriority, "priority", 2, "priority 0 (critical) to 3 (low)")
	createCmd.Flags().StringVar(&createLabels, "labels", "", "comma-separated labels")
	createCmd.Flags().StringVar(&createBlockedBy, "blocked-by", "", "comma-separated task ids this task waits on")
	createCmd.Flags().StringVar(&createParentID, "parent", "", "parent task id")
	createCmd.MarkFlagRequired("title")

	nextCmd.Flags().StringVar(&createLabels, "labels", "", "comma-separated preferred labels")

	editCmd.Flags().StringVar(&editTitle, "title", "", "new title")
	editCmd.Flags().StringVar(&editDescription, "description", "", "new description")
	editCmd.Flags().StringVar(&editStatus, "status", "", "new status (open, in_progress, done, blocked)")
	editCmd.Flags().IntVar(&editPriority, "priority", 0, "new priority")
	editCmd.Flags().StringVar(&editLabels, "labels", "", "new comma-separated labels")
	editCmd.Flags().StringVar(&editBlockedBy, "blocked-by", "", "new comma-separated blocked-by ids")
	editCmd.Flags().StringVar(&editBranch, "branch", "", "new branch")

	deleteCmd.Flags().BoolVar(&deleteForce, "force", false, "delete subtasks recursively")

	reopenCmd.Flags().StringVar(&reopenNote, "note", "", "note to attach on reopen")

	completeCmd.Flags().StringVar(&completeNote, "note", "", "note to attach on completion")
	completeCmd.Flags().StringVar(&completeBranch, "branch", "", "branch to record on the task")
	completeCmd.Flags().BoolVar(&completeForce, "force", false, "complete even if this session is not the assignee")

	bulkCompleteCmd.Flags().StringVar(&bulkCompleteNote, "note", "", "note to attach on each completion")
}
