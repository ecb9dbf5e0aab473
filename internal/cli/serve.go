package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/speier/claudia/internal/coordinator"
)

var serveMainSession string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the coordinator service in the foreground",
	Long: `Start the Coordinator service over the state directory, switching the
project into parallel mode for every client that resolves against the same
directory. Runs until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		mainSession := serveMainSession
		if mainSession == "" {
			mainSession = resolveSession()
		}

		coord, err := coordinator.New(stateDir, mainSession)
		if err != nil {
			return exitError(err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		fmt.Printf("coordinator starting over %s (main session %s); press Ctrl+C to stop\n", stateDir, mainSession)
		if err := coord.Run(ctx); err != nil {
			return exitError(err)
		}
		fmt.Println("coordinator stopped")
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveMainSession, "main-session", "", "session id recorded as the coordinator's owner")
}
