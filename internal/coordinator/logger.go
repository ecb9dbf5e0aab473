package coordinator

import (
	"github.com/rs/zerolog"

	"github.com/speier/claudia/internal/log"
)

func logger() zerolog.Logger {
	return log.WithComponent("coordinator")
}
