package ops

import (
	"testing"
	"time"

	"github.com/speier/claudia/internal/config"
	"github.com/speier/claudia/internal/model"
	"github.com/speier/claudia/internal/store"
)

func newTestOps(t *testing.T) *Ops {
	t.Helper()
	s, err := store.New(t.TempDir(), 2*time.Second)
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	return New(s, config.Default())
}

func TestCreateGetEditGet_FieldsMerge(t *testing.T) {
	o := newTestOps(t)

	created, err := o.CreateTask(CreateTaskInput{Title: "first draft"})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	newTitle := "final title"
	newStatus := string(model.StatusBlocked)
	edited, err := o.EditTask(created.ID, EditFields{Title: &newTitle, Status: &newStatus})
	if err != nil {
		t.Fatalf("EditTask: %v", err)
	}

	got, err := o.GetTask(created.ID)
	if err != nil {
		t.Fatalf("GetTask: %v", err)
	}
	if got.Title != newTitle || got.Status != model.StatusBlocked {
		t.Fatalf("expected edited fields merged, got %+v (edited=%+v)", got, edited)
	}
}

func TestCreateTask_EmptyTitleIsInvalidArgument(t *testing.T) {
	o := newTestOps(t)
	if _, err := o.CreateTask(CreateTaskInput{Title: ""}); model.KindOf(err) != model.KindInvalidArgument {
		t.Fatalf("expected InvalidArgument, got %v", err)
	}
}

func TestEditTask_CycleInBlockedByIsConflict(t *testing.T) {
	o := newTestOps(t)
	a, _ := o.CreateTask(CreateTaskInput{Title: "a"})
	b, _ := o.CreateTask(CreateTaskInput{Title: "b", BlockedBy: []string{a.ID}})

	cycle := []string{b.ID}
	if _, err := o.EditTask(a.ID, EditFields{BlockedBy: &cycle}); model.KindOf(err) != model.KindConflict {
		t.Fatalf("expected Conflict for a blocked_by cycle, got %v", err)
	}
}

func TestCompleteThenReopen_ClearsAssigneeAndBranch(t *testing.T) {
	o := newTestOps(t)
	task, _ := o.CreateTask(CreateTaskInput{Title: "t"})
	o.Registry.Register("sess-1", model.RoleWorker, "", nil)
	claimed, err := o.RequestTask("sess-1", nil)
	if err != nil || claimed == nil {
		t.Fatalf("RequestTask: %v %v", claimed, err)
	}

	if _, err := o.CompleteTask(task.ID, "sess-1", "shipped", "feature/x", false); err != nil {
		t.Fatalf("CompleteTask: %v", err)
	}

	reopened, err := o.ReopenTask(task.ID, "", "sess-1")
	if err != nil {
		t.Fatalf("ReopenTask: %v", err)
	}
	if reopened.Status != model.StatusOpen || reopened.Assignee != nil || reopened.Branch != nil {
		t.Fatalf("expected clean reopened state, got %+v", reopened)
	}
}

func TestDeleteTask_RequiresForceWithSubtasks(t *testing.T) {
	o := newTestOps(t)
	parent, _ := o.CreateTask(CreateTaskInput{Title: "parent"})
	o.CreateSubtask(parent.ID, CreateTaskInput{Title: "child"})

	if err := o.DeleteTask(parent.ID, false); model.KindOf(err) != model.KindConflict {
		t.Fatalf("expected Conflict without force, got %v", err)
	}
	if err := o.DeleteTask(parent.ID, true); err != nil {
		t.Fatalf("expected force delete to succeed: %v", err)
	}
	if _, err := o.GetTask(parent.ID); model.KindOf(err) != model.KindNotFound {
		t.Fatalf("expected parent gone after forced delete")
	}
}

func TestStartTimer_DoubleCallIsNoOp(t *testing.T) {
	o := newTestOps(t)
	task, _ := o.CreateTask(CreateTaskInput{Title: "t"})

	first, err := o.StartTimer(task.ID)
	if err != nil {
		t.Fatalf("StartTimer: %v", err)
	}
	second, err := o.StartTimer(task.ID)
	if err != nil {
		t.Fatalf("StartTimer again: %v", err)
	}
	if !second.TimeTracking.IsRunning {
		t.Fatalf("expected timer to remain running")
	}
	if first.TimeTracking.StartedAt == nil || second.TimeTracking.StartedAt == nil {
		t.Fatalf("expected started_at to be set")
	}
}

func TestSubtaskProgress(t *testing.T) {
	o := newTestOps(t)
	parent, _ := o.CreateTask(CreateTaskInput{Title: "parent"})
	child1, _ := o.CreateSubtask(parent.ID, CreateTaskInput{Title: "c1"})
	o.CreateSubtask(parent.ID, CreateTaskInput{Title: "c2"})

	o.EditTask(child1.ID, EditFields{Status: strPtr(string(model.StatusDone))})

	report, err := o.SubtaskProgress(parent.ID)
	if err != nil {
		t.Fatalf("SubtaskProgress: %v", err)
	}
	if report.Done != 1 || report.Total != 2 {
		t.Fatalf("expected 1/2 done, got %+v", report)
	}
}

func TestUndo_AfterComplete(t *testing.T) {
	o := newTestOps(t)
	task, _ := o.CreateTask(CreateTaskInput{Title: "t"})
	o.Registry.Register("sess-1", model.RoleWorker, "", nil)
	o.RequestTask("sess-1", nil)

	if _, err := o.CompleteTask(task.ID, "sess-1", "x", "", false); err != nil {
		t.Fatalf("CompleteTask: %v", err)
	}

	restored, err := o.Undo()
	if err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if restored.Status != model.StatusInProgress {
		t.Fatalf("expected undo to restore in_progress, got %s", restored.Status)
	}
	for _, n := range restored.Notes {
		if n.Note == "x" {
			t.Fatalf("expected the completion note to be removed by undo")
		}
	}
}

func strPtr(s string) *string { return &s }
