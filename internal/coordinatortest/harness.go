// Package coordinatortest starts a real Coordinator on an ephemeral port
// for tests that need to exercise parallel mode end to end, such as the
// client façade's cross-mode suite.
package coordinatortest

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/speier/claudia/internal/coordinator"
)

const parallelModeFile = ".parallel-mode"

// Start runs a Coordinator over dir in the background and blocks until its
// sentinel file reports a listening port. The returned stop function
// cancels the coordinator and waits for it to shut down.
func Start(t *testing.T, dir, mainSession string) (baseURL string, stop func()) {
	t.Helper()

	coord, err := coordinator.New(dir, mainSession)
	if err != nil {
		t.Fatalf("coordinator.New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- coord.Run(ctx) }()

	sentinelPath := filepath.Join(dir, parallelModeFile)
	var sentinel struct {
		Port int `json:"port"`
	}
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		data, err := os.ReadFile(sentinelPath)
		if err == nil && json.Unmarshal(data, &sentinel) == nil && sentinel.Port != 0 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if sentinel.Port == 0 {
		cancel()
		t.Fatalf("coordinator did not write its sentinel in time")
	}

	baseURL = "http://127.0.0.1:" + strconv.Itoa(sentinel.Port)
	return baseURL, func() {
		cancel()
		select {
		case <-done:
		case <-time.After(3 * time.Second):
			t.Fatalf("coordinator did not shut down in time")
		}
	}
}
