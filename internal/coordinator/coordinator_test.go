package coordinator

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"
)

func startTestCoordinator(t *testing.T) (baseURL string, stop func()) {
	t.Helper()
	dir := t.TempDir()

	coord, err := New(dir, "main-session")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- coord.Run(ctx) }()

	sentinelPath := filepath.Join(dir, parallelModeFile)
	deadline := time.Now().Add(3 * time.Second)
	var sentinel struct {
		Port int `json:"port"`
	}
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

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	return resp
}

func TestCoordinator_HealthAndStatus(t *testing.T) {
	base, stop := startTestCoordinator(t)
	defer stop()

	resp, err := http.Get(base + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	resp, err = http.Get(base + "/status")
	if err != nil {
		t.Fatalf("GET /status: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestCoordinator_CreateRequestComplete(t *testing.T) {
	base, stop := startTestCoordinator(t)
	defer stop()

	resp := postJSON(t, base+"/task/create", map[string]any{"title": "do the thing"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("create: expected 200, got %d", resp.StatusCode)
	}
	var task struct {
		ID string `json:"id"`
	}
	json.NewDecoder(resp.Body).Decode(&task)
	if task.ID == "" {
		t.Fatalf("expected an assigned task id")
	}

	resp = postJSON(t, base+"/session/register", map[string]any{"session_id": "s1", "role": "worker"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("register: expected 200, got %d", resp.StatusCode)
	}

	resp = postJSON(t, base+"/task/request", map[string]any{"session_id": "s1"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("request: expected 200, got %d", resp.StatusCode)
	}
	var claimed struct {
		ID string `json:"id"`
	}
	json.NewDecoder(resp.Body).Decode(&claimed)
	if claimed.ID != task.ID {
		t.Fatalf("expected to claim %s, got %s", task.ID, claimed.ID)
	}

	resp = postJSON(t, base+"/task/complete", map[string]any{"task_id": task.ID, "session_id": "s1"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("complete: expected 200, got %d", resp.StatusCode)
	}
}

func TestCoordinator_UnknownTaskIsNotFound(t *testing.T) {
	base, stop := startTestCoordinator(t)
	defer stop()

	resp := postJSON(t, base+"/task/complete", map[string]any{"task_id": "task-999", "session_id": "s1", "force": true})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}
