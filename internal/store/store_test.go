package store

import (
	"testing"
	"time"

	"github.com/speier/claudia/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	s, err := New(dir, 2*time.Second)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func createTask(t *testing.T, s *Store, title string, priority int) *model.Task {
	t.Helper()
	var created *model.Task
	_, err := s.Mutate(func(snap *model.Snapshot) (*model.Event, error) {
		task := &model.Task{
			ID:        snap.NextTaskID(),
			Title:     title,
			Status:    model.StatusOpen,
			Priority:  priority,
			CreatedAt: model.NowUTC(),
			UpdatedAt: model.NowUTC(),
		}
		snap.Tasks = append(snap.Tasks, task)
		created = task
		return &model.Event{Kind: model.EventTaskCreated, Payload: task.ID}, nil
	})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	return created
}

func TestMutate_PersistsAcrossReload(t *testing.T) {
	s := newTestStore(t)
	created := createTask(t, s, "first task", 1)

	snap, err := s.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if len(snap.Tasks) != 1 || snap.Tasks[0].ID != created.ID {
		t.Fatalf("expected the created task to reload, got %+v", snap.Tasks)
	}
	if snap.NextID != 2 {
		t.Fatalf("expected next_id to advance past the assigned id, got %d", snap.NextID)
	}
}

func TestMutate_AbortsOnError(t *testing.T) {
	s := newTestStore(t)
	createTask(t, s, "first task", 1)

	_, err := s.Mutate(func(snap *model.Snapshot) (*model.Event, error) {
		snap.Tasks[0].Status = model.StatusDone
		return nil, model.Conflict("pretend this failed validation")
	})
	if err == nil {
		t.Fatalf("expected the mutation to fail")
	}

	snap, err := s.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if snap.Tasks[0].Status != model.StatusOpen {
		t.Fatalf("expected on-disk state untouched after an aborted transaction, got %s", snap.Tasks[0].Status)
	}
}

func TestMutate_RejectsInvariantViolation(t *testing.T) {
	s := newTestStore(t)
	createTask(t, s, "first task", 1)

	_, err := s.Mutate(func(snap *model.Snapshot) (*model.Event, error) {
		bogus := "session-x"
		snap.Tasks[0].Status = model.StatusOpen
		snap.Tasks[0].Assignee = &bogus // assignee set without in_progress status
		return &model.Event{Kind: model.EventTaskEdited}, nil
	})
	if model.KindOf(err) != model.KindConflict {
		t.Fatalf("expected a Conflict for the invariant violation, got %v", err)
	}
}

func TestMutate_AppendsExactlyOneHistoryRecord(t *testing.T) {
	s := newTestStore(t)
	createTask(t, s, "first task", 1)

	events, err := s.History()
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected exactly one history record, got %d", len(events))
	}
	if events[0].Kind != model.EventTaskCreated {
		t.Fatalf("expected a task_created event, got %s", events[0].Kind)
	}
}

func TestSessions_SaveGetDelete(t *testing.T) {
	s := newTestStore(t)
	sess := &model.Session{SessionID: "sess-1", Role: model.RoleWorker, StartedAt: model.NowUTC(), LastHeartbeat: model.NowUTC()}

	if err := s.SaveSession(sess); err != nil {
		t.Fatalf("SaveSession: %v", err)
	}

	got, err := s.GetSession("sess-1")
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if got.SessionID != sess.SessionID {
		t.Fatalf("expected session round-trip, got %+v", got)
	}

	list, err := s.ListSessions()
	if err != nil {
		t.Fatalf("ListSessions: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected one session, got %d", len(list))
	}

	if err := s.DeleteSession("sess-1"); err != nil {
		t.Fatalf("DeleteSession: %v", err)
	}
	if _, err := s.GetSession("sess-1"); model.KindOf(err) != model.KindNotFound {
		t.Fatalf("expected NotFound after delete, got %v", err)
	}
}

func TestUndo_RestoresPriorState(t *testing.T) {
	s := newTestStore(t)
	created := createTask(t, s, "undo me", 1)

	_, err := s.Mutate(func(snap *model.Snapshot) (*model.Event, error) {
		task := snap.TaskByID(created.ID)
		priorStatus := task.Status
		priorAssignee := task.Assignee

		assignee := "sess-1"
		task.Status = model.StatusInProgress
		task.Assignee = &assignee
		task.UpdatedAt = model.NowUTC()

		return &model.Event{
			Kind: model.EventTaskClaimed,
			UndoHint: &model.UndoHint{
				TaskID:        task.ID,
				PriorStatus:   priorStatus,
				PriorAssignee: priorAssignee,
			},
		}, nil
	})
	if err != nil {
		t.Fatalf("claim: %v", err)
	}

	restored, err := s.Undo()
	if err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if restored.Status != model.StatusOpen || restored.Assignee != nil {
		t.Fatalf("expected undo to restore open/unassigned, got %+v", restored)
	}
}

func TestUndo_NoReversibleActionIsConflict(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Undo(); model.KindOf(err) != model.KindConflict {
		t.Fatalf("expected Conflict with nothing to undo, got %v", err)
	}
}
