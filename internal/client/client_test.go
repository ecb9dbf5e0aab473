package client

import (
	"testing"
	"time"

	"github.com/speier/claudia/internal/coordinatortest"
	"github.com/speier/claudia/internal/model"
	"github.com/speier/claudia/internal/ops"
)

func newSingleModeAgent(t *testing.T) *Agent {
	t.Helper()
	a, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if a.Mode() != ModeSingle {
		t.Fatalf("expected single mode, got %s", a.Mode())
	}
	return a
}

func newParallelModeAgent(t *testing.T) *Agent {
	t.Helper()
	dir := t.TempDir()

	_, stop := coordinatortest.Start(t, dir, "main-session")
	t.Cleanup(stop)

	var a *Agent
	var err error
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		a, err = New(dir)
		if err == nil && a.Mode() == ModeParallel {
			return a
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("agent never resolved to parallel mode (last err: %v)", err)
	return nil
}

// runLifecycle exercises the same operation sequence against any Agent,
// regardless of which mode it resolved to, and returns the final task so
// the caller can assert on its terminal state.
func runLifecycle(t *testing.T, a *Agent) *model.Task {
	t.Helper()

	task, err := a.CreateTask(ops.CreateTaskInput{Title: "ship the thing"})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	if _, err := a.RegisterSession("s1", model.RoleWorker, "", nil); err != nil {
		t.Fatalf("RegisterSession: %v", err)
	}

	claimed, err := a.RequestTask("s1", nil)
	if err != nil {
		t.Fatalf("RequestTask: %v", err)
	}
	if claimed == nil || claimed.ID != task.ID {
		t.Fatalf("expected to claim %s, got %+v", task.ID, claimed)
	}

	if err := a.NoteTask(task.ID, "s1", "making progress"); err != nil {
		t.Fatalf("NoteTask: %v", err)
	}

	completed, err := a.CompleteTask(task.ID, "s1", "done", "feature/ship", false)
	if err != nil {
		t.Fatalf("CompleteTask: %v", err)
	}
	if completed.Status != model.StatusDone {
		t.Fatalf("expected done, got %s", completed.Status)
	}

	got, err := a.GetTask(task.ID)
	if err != nil {
		t.Fatalf("GetTask: %v", err)
	}
	return got
}

func TestSingleMode_FullLifecycle(t *testing.T) {
	a := newSingleModeAgent(t)
	task := runLifecycle(t, a)
	if task.Status != model.StatusDone {
		t.Fatalf("expected done, got %s", task.Status)
	}
	if len(task.Notes) != 1 {
		t.Fatalf("expected 1 note, got %d", len(task.Notes))
	}
}

func TestParallelMode_FullLifecycle(t *testing.T) {
	a := newParallelModeAgent(t)
	task := runLifecycle(t, a)
	if task.Status != model.StatusDone {
		t.Fatalf("expected done, got %s", task.Status)
	}
	if len(task.Notes) != 1 {
		t.Fatalf("expected 1 note, got %d", len(task.Notes))
	}
}

func TestBothModes_UnknownTaskIsNotFound(t *testing.T) {
	for _, mode := range []Mode{ModeSingle, ModeParallel} {
		t.Run(string(mode), func(t *testing.T) {
			var a *Agent
			if mode == ModeSingle {
				a = newSingleModeAgent(t)
			} else {
				a = newParallelModeAgent(t)
			}
			_, err := a.GetTask("task-999")
			if model.KindOf(err) != model.KindNotFound {
				t.Fatalf("expected not_found, got %v", err)
			}
		})
	}
}

func TestParallelMode_TimerIsUnavailable(t *testing.T) {
	a := newParallelModeAgent(t)
	task, err := a.CreateTask(ops.CreateTaskInput{Title: "time me"})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	_, err = a.StartTimer(task.ID)
	if model.KindOf(err) != model.KindUnavailable {
		t.Fatalf("expected unavailable, got %v", err)
	}
}
