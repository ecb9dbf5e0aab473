package cli

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/speier/claudia/internal/model"
	"github.com/speier/claudia/internal/registry"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show task counts and active sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newAgent()
		if err != nil {
			return exitError(err)
		}
		report, err := a.Status()
		if err != nil {
			return exitError(err)
		}

		fmt.Printf("mode: %s\n", a.Mode())
		fmt.Printf("tasks: %d open, %d in progress, %d done, %d blocked\n",
			report.Counts.Open, report.Counts.InProgress, report.Counts.Done, report.Counts.Blocked)

		if len(report.ActiveSessions) == 0 {
			fmt.Println("no active sessions")
			return nil
		}
		fmt.Println("sessions:")
		now := time.Now().UTC()
		for _, sess := range report.ActiveSessions {
			fmt.Printf("  %-20s %-8s heartbeat %s (%s)\n",
				sess.SessionID, sess.Role, humanize.Time(lastHeartbeatTime(sess, now)), stalenessLabel(sess, now))
		}
		return nil
	},
}

func lastHeartbeatTime(sess *model.Session, fallback time.Time) time.Time {
	t, err := time.Parse(model.TimeFormat, sess.LastHeartbeat)
	if err != nil {
		return fallback
	}
	return t
}

func stalenessLabel(sess *model.Session, now time.Time) string {
	switch registry.Staleness(lastHeartbeatTime(sess, now), now) {
	case registry.LevelDanger:
		return "danger"
	case registry.LevelWarn:
		return "warn"
	default:
		return "fresh"
	}
}
