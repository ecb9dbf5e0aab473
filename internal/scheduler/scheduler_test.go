package scheduler

import (
	"testing"

	"github.com/speier/claudia/internal/model"
)

func task(id string, priority int, createdAt string, labels ...string) *model.Task {
	return &model.Task{
		ID:        id,
		Title:     id,
		Status:    model.StatusOpen,
		Priority:  priority,
		CreatedAt: createdAt,
		Labels:    labels,
	}
}

func TestPick_PriorityWinsOverAge(t *testing.T) {
	// S1: task-001 {priority:2} created first, task-002 {priority:0} later.
	// A label-less session must get task-002.
	tasks := []*model.Task{
		task("task-001", 2, "2024-01-01T00:00:00Z"),
		task("task-002", 0, "2024-01-01T00:00:01Z"),
	}
	session := model.Session{SessionID: "s"}

	got, ok := Pick(tasks, session, nil, 1, 0)
	if !ok || got.ID != "task-002" {
		t.Fatalf("expected task-002, got %+v (ok=%v)", got, ok)
	}
}

func TestPick_AffinityBreaksPriorityTie(t *testing.T) {
	// S2: task-003 {priority:1, labels:[frontend]}, task-004 {priority:1,
	// labels:[backend]}; a backend-labeled session must get task-004.
	tasks := []*model.Task{
		task("task-003", 1, "2024-01-01T00:00:00Z", "frontend"),
		task("task-004", 1, "2024-01-01T00:00:01Z", "backend"),
	}
	session := model.Session{SessionID: "s", Labels: []string{"backend"}}

	got, ok := Pick(tasks, session, nil, 1, 0)
	if !ok || got.ID != "task-004" {
		t.Fatalf("expected task-004, got %+v (ok=%v)", got, ok)
	}
}

func TestPick_BlockedByGatesReadiness(t *testing.T) {
	// S3: B is blocked by A; request returns A, then B once A is done.
	a := task("A", 2, "2024-01-01T00:00:00Z")
	b := task("B", 2, "2024-01-01T00:00:01Z")
	b.BlockedBy = []string{"A"}
	session := model.Session{SessionID: "s"}

	got, ok := Pick([]*model.Task{a, b}, session, nil, 1, 0)
	if !ok || got.ID != "A" {
		t.Fatalf("expected A, got %+v (ok=%v)", got, ok)
	}

	a.Status = model.StatusDone
	got, ok = Pick([]*model.Task{a, b}, session, nil, 1, 0)
	if !ok || got.ID != "B" {
		t.Fatalf("expected B once A is done, got %+v (ok=%v)", got, ok)
	}
}

func TestPick_EmptyBacklogReturnsNullNotError(t *testing.T) {
	_, ok := Pick(nil, model.Session{SessionID: "s"}, nil, 1, 0)
	if ok {
		t.Fatalf("expected no task from an empty backlog")
	}
}

func TestPick_AllBlockedReturnsNull(t *testing.T) {
	a := task("A", 2, "2024-01-01T00:00:00Z")
	a.Status = model.StatusBlocked
	_, ok := Pick([]*model.Task{a}, model.Session{SessionID: "s"}, nil, 1, 0)
	if ok {
		t.Fatalf("expected no ready task when the only task is blocked")
	}
}

func TestPick_OrphanBlockedByIsSatisfied(t *testing.T) {
	a := task("A", 2, "2024-01-01T00:00:00Z")
	a.BlockedBy = []string{"ghost"}
	got, ok := Pick([]*model.Task{a}, model.Session{SessionID: "s"}, nil, 1, 0)
	if !ok || got.ID != "A" {
		t.Fatalf("expected A to be ready despite an unresolved blocked_by, got %+v (ok=%v)", got, ok)
	}
}

func TestPick_LoadBalancingRefusesAtCapacity(t *testing.T) {
	a := task("A", 2, "2024-01-01T00:00:00Z")
	_, ok := Pick([]*model.Task{a}, model.Session{SessionID: "s"}, nil, 1, 1)
	if ok {
		t.Fatalf("expected refusal when session already at max_concurrent")
	}
}

func TestPick_Deterministic(t *testing.T) {
	tasks := []*model.Task{
		task("task-010", 1, "2024-01-01T00:00:00Z"),
		task("task-011", 1, "2024-01-01T00:00:00Z"),
	}
	session := model.Session{SessionID: "s"}

	first, _ := Pick(tasks, session, nil, 1, 0)
	second, _ := Pick(tasks, session, nil, 1, 0)
	if first.ID != second.ID {
		t.Fatalf("expected deterministic pick, got %s then %s", first.ID, second.ID)
	}
	if first.ID != "task-010" {
		t.Fatalf("expected id to break the tie, got %s", first.ID)
	}
}
