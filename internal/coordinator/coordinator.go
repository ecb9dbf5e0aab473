// Package coordinator implements the HTTP front-end that serializes Store
// mutations through a single in-process lock and broadcasts state changes
// to subscribers. It is active only in parallel mode.
package coordinator

import (
	"context"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/speier/claudia/internal/config"
	"github.com/speier/claudia/internal/log"
	"github.com/speier/claudia/internal/metrics"
	"github.com/speier/claudia/internal/ops"
	"github.com/speier/claudia/internal/store"
)

const (
	parallelModeFile = ".parallel-mode"
	pidFile          = "coordinator.pid"

	cleanupInterval = 30 * time.Second
	flushInterval   = 1 * time.Second
)

// Coordinator runs the HTTP API and the background cleanup/flush loops.
type Coordinator struct {
	ops        *ops.Ops
	mainSess   string
	stateDir   string
	httpServer *http.Server
	listener   net.Listener

	mu    sync.Mutex // serializes every mutating handler's Store access
	dirty bool

	subscribers *subscriberHub
	logger      log.Level
}

// New constructs a Coordinator over stateDir. mainSession is recorded in
// the .parallel-mode sentinel so clients can display which session started
// the service.
func New(stateDir string, mainSession string) (*Coordinator, error) {
	cfg, err := config.Load(stateDir)
	if err != nil {
		return nil, err
	}
	s, err := store.New(stateDir, time.Duration(cfg.LockTimeoutSeconds)*time.Second)
	if err != nil {
		return nil, err
	}

	return &Coordinator{
		ops:         ops.New(s, cfg),
		mainSess:    mainSession,
		stateDir:    stateDir,
		subscribers: newSubscriberHub(),
	}, nil
}

// Run starts the HTTP listener and background loops, and blocks until ctx
// is cancelled (e.g. by a caught SIGTERM/SIGINT) or a fatal error occurs.
// On return, the sentinel files have been removed and the Store has been
// flushed.
func (c *Coordinator) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return err
	}
	c.listener = ln
	port := ln.Addr().(*net.TCPAddr).Port

	if err := c.writeSentinels(port); err != nil {
		ln.Close()
		return err
	}
	defer c.removeSentinels()

	mux := http.NewServeMux()
	c.registerRoutes(mux)
	c.httpServer = &http.Server{Handler: mux}

	comp := log.WithComponent("coordinator")
	comp.Info().Int("port", port).Msg("coordinator listening")

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := c.httpServer.Serve(ln)
		if err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		return c.cleanupLoop(gctx)
	})

	g.Go(func() error {
		return c.flushLoop(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return c.httpServer.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	comp.Info().Msg("coordinator stopped")
	return err
}

func (c *Coordinator) cleanupLoop(ctx context.Context) error {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			metrics.CleanupCyclesTotal.Inc()
			ended, err := c.ops.Cleanup()
			if err != nil {
				log.WithComponent("coordinator").Warn().Err(err).Msg("cleanup cycle failed")
				continue
			}
			if len(ended) > 0 {
				metrics.SessionsReclaimedTotal.Add(float64(len(ended)))
				log.WithComponent("coordinator").Info().Strs("sessions", ended).Msg("reclaimed stale sessions")
				c.markDirty()
			}
		}
	}
}

func (c *Coordinator) flushLoop(ctx context.Context) error {
	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			c.mu.Lock()
			dirty := c.dirty
			c.dirty = false
			c.mu.Unlock()
			if dirty {
				metrics.FlushCyclesTotal.Inc()
				c.refreshGauges()
				c.subscribers.broadcast()
			}
		}
	}
}

func (c *Coordinator) refreshGauges() {
	report, err := c.ops.Status()
	if err != nil {
		return
	}
	metrics.TasksByStatus.WithLabelValues("open").Set(float64(report.Counts.Open))
	metrics.TasksByStatus.WithLabelValues("in_progress").Set(float64(report.Counts.InProgress))
	metrics.TasksByStatus.WithLabelValues("done").Set(float64(report.Counts.Done))
	metrics.TasksByStatus.WithLabelValues("blocked").Set(float64(report.Counts.Blocked))
	metrics.ActiveSessions.Set(float64(len(report.ActiveSessions)))
}

func (c *Coordinator) markDirty() {
	c.mu.Lock()
	c.dirty = true
	c.mu.Unlock()
}

func (c *Coordinator) writeSentinels(port int) error {
	if err := os.MkdirAll(c.stateDir, 0o755); err != nil {
		return err
	}
	sentinel := struct {
		Port        int    `json:"port"`
		MainSession string `json:"main_session"`
	}{Port: port, MainSession: c.mainSess}
	if err := writeJSON(filepath.Join(c.stateDir, parallelModeFile), sentinel); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.stateDir, pidFile), []byte(strconv.Itoa(os.Getpid())), 0o644)
}

func (c *Coordinator) removeSentinels() {
	os.Remove(filepath.Join(c.stateDir, parallelModeFile))
	os.Remove(filepath.Join(c.stateDir, pidFile))
}
