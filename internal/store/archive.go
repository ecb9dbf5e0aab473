package store

import (
	"time"

	"github.com/speier/claudia/internal/model"
)

// archiveEligible reports whether a done task is older than the retention
// window, measured from its last update.
func archiveEligible(t *model.Task, olderThanDays int) bool {
	updated, err := time.Parse(model.TimeFormat, t.UpdatedAt)
	if err != nil {
		return false
	}
	return time.Since(updated) > time.Duration(olderThanDays)*24*time.Hour
}
