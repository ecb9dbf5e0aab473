package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/speier/claudia/internal/model"
)

var (
	registerRole    string
	registerContext string
	registerLabels  string
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Register this session with the coordination core",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newAgent()
		if err != nil {
			return exitError(err)
		}
		id := resolveSession()
		sess, err := a.RegisterSession(id, model.Role(registerRole), registerContext, splitCSV(registerLabels))
		if err != nil {
			return exitError(err)
		}
		return printJSON(sess)
	},
}

var heartbeatCmd = &cobra.Command{
	Use:   "heartbeat",
	Short: "Refresh this session's liveness timestamp",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newAgent()
		if err != nil {
			return exitError(err)
		}
		if sessionID == "" {
			return exitError(fmt.Errorf("--session is required"))
		}
		if err := a.Heartbeat(sessionID); err != nil {
			return exitError(err)
		}
		fmt.Println("ok")
		return nil
	},
}

var endRelease bool

var endCmd = &cobra.Command{
	Use:   "end",
	Short: "End this session",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newAgent()
		if err != nil {
			return exitError(err)
		}
		if sessionID == "" {
			return exitError(fmt.Errorf("--session is required"))
		}
		if err := a.EndSession(sessionID, endRelease); err != nil {
			return exitError(err)
		}
		fmt.Println("ok")
		return nil
	},
}

func init() {
	registerCmd.Flags().StringVar(&registerRole, "role", string(model.RoleWorker), "session role (main or worker)")
	registerCmd.Flags().StringVar(&registerContext, "context", "", "free-text description of what this session is working on")
	registerCmd.Flags().StringVar(&registerLabels, "labels", "", "comma-separated preferred labels")

	endCmd.Flags().BoolVar(&endRelease, "release", true, "release the session's claimed task back to the backlog")
}
