package ops

import (
	"time"

	"github.com/speier/claudia/internal/model"
)

func parseTimestamp(s string) (time.Time, error) {
	return time.Parse(model.TimeFormat, s)
}
