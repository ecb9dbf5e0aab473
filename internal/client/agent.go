// Package client is the agent-facing API. An Agent detects, once at
// construction, whether a Coordinator service is live over the state
// directory and dispatches every operation either straight into a Store
// transaction (single mode) or over HTTP to the Coordinator (parallel
// mode). Both modes return the same shapes and the same model.ClaudiaError
// kinds, so a caller never branches on mode.
package client

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/speier/claudia/internal/config"
	"github.com/speier/claudia/internal/log"
	"github.com/speier/claudia/internal/ops"
	"github.com/speier/claudia/internal/store"
)

const (
	parallelModeFile = ".parallel-mode"
	pidFile          = "coordinator.pid"
)

// Mode reports which dispatcher an Agent resolved to.
type Mode string

const (
	ModeSingle   Mode = "single"
	ModeParallel Mode = "parallel"
)

// Agent is the single entry point an agent process uses to talk to the
// coordination core, regardless of whether it ended up in single or
// parallel mode.
type Agent struct {
	stateDir string
	mode     Mode
	d        dispatcher
}

type parallelSentinel struct {
	Port        int    `json:"port"`
	MainSession string `json:"main_session"`
}

// agentOptions holds the tunables Option can set before mode resolution.
type agentOptions struct {
	httpTimeout time.Duration
}

// Option customizes Agent construction. The zero value of every option is
// the behavior New has without any options.
type Option func(*agentOptions)

// WithHTTPTimeout overrides the per-request timeout used against the
// Coordinator in parallel mode. Has no effect in single mode.
func WithHTTPTimeout(d time.Duration) Option {
	return func(o *agentOptions) { o.httpTimeout = d }
}

// New resolves the mode for stateDir and returns a ready Agent. Parallel
// mode requires a readable .parallel-mode sentinel, a live process at the
// pid recorded in coordinator.pid, and a 200 answer from the Coordinator's
// /healthz; any of these failing falls back to single mode, since a crashed
// coordinator leaves its sentinel behind.
func New(stateDir string, opts ...Option) (*Agent, error) {
	options := agentOptions{httpTimeout: 10 * time.Second}
	for _, opt := range opts {
		opt(&options)
	}

	if sentinel, ok := readParallelSentinel(stateDir); ok {
		d := newHTTPDispatcher("http://127.0.0.1:" + strconv.Itoa(sentinel.Port))
		d.client.Timeout = options.httpTimeout
		return &Agent{
			stateDir: stateDir,
			mode:     ModeParallel,
			d:        d,
		}, nil
	}

	cfg, err := config.Load(stateDir)
	if err != nil {
		return nil, err
	}
	s, err := store.New(stateDir, time.Duration(cfg.LockTimeoutSeconds)*time.Second)
	if err != nil {
		return nil, err
	}
	return &Agent{
		stateDir: stateDir,
		mode:     ModeSingle,
		d:        singleDispatcher{ops.New(s, cfg)},
	}, nil
}

func readParallelSentinel(stateDir string) (parallelSentinel, bool) {
	data, err := os.ReadFile(filepath.Join(stateDir, parallelModeFile))
	if err != nil {
		return parallelSentinel{}, false
	}
	var sentinel parallelSentinel
	if json.Unmarshal(data, &sentinel) != nil || sentinel.Port == 0 {
		return parallelSentinel{}, false
	}

	pidData, err := os.ReadFile(filepath.Join(stateDir, pidFile))
	if err != nil {
		return parallelSentinel{}, false
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(pidData)))
	if err != nil || !processAlive(pid) {
		log.WithComponent("client").Warn().Int("pid", pid).Msg("stale parallel-mode sentinel, falling back to single mode")
		return parallelSentinel{}, false
	}

	resp, err := http.Get("http://127.0.0.1:" + strconv.Itoa(sentinel.Port) + "/healthz")
	if err != nil || resp.StatusCode != http.StatusOK {
		return parallelSentinel{}, false
	}
	resp.Body.Close()
	return sentinel, true
}

// Mode reports which dispatcher this Agent resolved to.
func (a *Agent) Mode() Mode {
	return a.mode
}

// StateDir returns the state directory this Agent was constructed over.
func (a *Agent) StateDir() string {
	return a.stateDir
}
