package registry

import (
	"sync"
	"testing"
	"time"

	"github.com/speier/claudia/internal/model"
	"github.com/speier/claudia/internal/store"
)

func newTestRegistry(t *testing.T) (*Registry, *store.Store) {
	t.Helper()
	s, err := store.New(t.TempDir(), 2*time.Second)
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	return New(s), s
}

func TestRegister_IsIdempotent(t *testing.T) {
	r, _ := newTestRegistry(t)

	first, err := r.Register("sess-1", model.RoleWorker, "ctx", []string{"backend"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	second, err := r.Register("sess-1", model.RoleWorker, "updated ctx", []string{"frontend"})
	if err != nil {
		t.Fatalf("Register again: %v", err)
	}
	if first.SessionID != second.SessionID || second.Context != "updated ctx" {
		t.Fatalf("expected idempotent update, got %+v", second)
	}
}

func TestHeartbeat_RejectsUnknownSession(t *testing.T) {
	r, _ := newTestRegistry(t)
	if err := r.Heartbeat("ghost"); model.KindOf(err) != model.KindNotFound {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestEnd_ReleasesTaskByDefault(t *testing.T) {
	r, s := newTestRegistry(t)
	r.Register("sess-1", model.RoleWorker, "", nil)

	var taskID string
	s.Mutate(func(snap *model.Snapshot) (*model.Event, error) {
		id := snap.NextTaskID()
		assignee := "sess-1"
		snap.Tasks = append(snap.Tasks, &model.Task{
			ID: id, Title: "t", Status: model.StatusInProgress, Assignee: &assignee,
			CreatedAt: model.NowUTC(), UpdatedAt: model.NowUTC(),
		})
		taskID = id
		return &model.Event{Kind: model.EventTaskClaimed}, nil
	})

	sess, _ := s.GetSession("sess-1")
	sess.WorkingOn = &taskID
	s.SaveSession(sess)

	if _, err := r.End("sess-1", true); err != nil {
		t.Fatalf("End: %v", err)
	}

	snap, _ := s.Snapshot()
	got := snap.TaskByID(taskID)
	if got.Status != model.StatusOpen || got.Assignee != nil {
		t.Fatalf("expected task released to open, got %+v", got)
	}
}

func TestCleanup_ReclaimsStaleSessions(t *testing.T) {
	r, s := newTestRegistry(t)
	r.Register("sess-1", model.RoleWorker, "", nil)

	sess, _ := s.GetSession("sess-1")
	sess.LastHeartbeat = time.Now().UTC().Add(-200 * time.Second).Format(model.TimeFormat)
	s.SaveSession(sess)

	ended, err := r.Cleanup(180)
	if err != nil {
		t.Fatalf("Cleanup: %v", err)
	}
	if len(ended) != 1 || ended[0] != "sess-1" {
		t.Fatalf("expected sess-1 to be cleaned up, got %v", ended)
	}

	if _, err := s.GetSession("sess-1"); model.KindOf(err) != model.KindNotFound {
		t.Fatalf("expected session removed after cleanup")
	}
}

func TestStaleness_Thresholds(t *testing.T) {
	now := time.Now().UTC()
	cases := []struct {
		ageSeconds int
		want       Level
	}{
		{10, LevelFresh},
		{60, LevelWarn},
		{119, LevelWarn},
		{120, LevelDanger},
	}
	for _, c := range cases {
		got := Staleness(now.Add(-time.Duration(c.ageSeconds)*time.Second), now)
		if got != c.want {
			t.Errorf("age %ds: got %s, want %s", c.ageSeconds, got, c.want)
		}
	}
}

func TestRequestTask_RaceOnSingleTaskYieldsOneWinner(t *testing.T) {
	r, s := newTestRegistry(t)
	r.Register("a", model.RoleWorker, "", nil)
	r.Register("b", model.RoleWorker, "", nil)

	s.Mutate(func(snap *model.Snapshot) (*model.Event, error) {
		snap.Tasks = append(snap.Tasks, &model.Task{
			ID: snap.NextTaskID(), Title: "only", Status: model.StatusOpen,
			CreatedAt: model.NowUTC(), UpdatedAt: model.NowUTC(),
		})
		return &model.Event{Kind: model.EventTaskCreated}, nil
	})

	var (
		wg         sync.WaitGroup
		ta, tb     *model.Task
		errA, errB error
	)
	wg.Add(2)
	go func() { defer wg.Done(); ta, errA = r.RequestTask("a", nil, 1) }()
	go func() { defer wg.Done(); tb, errB = r.RequestTask("b", nil, 1) }()
	wg.Wait()
	if errA != nil || errB != nil {
		t.Fatalf("unexpected errors: %v %v", errA, errB)
	}

	winners := 0
	if ta != nil {
		winners++
	}
	if tb != nil {
		winners++
	}
	if winners != 1 {
		t.Fatalf("expected exactly one winner, got ta=%v tb=%v", ta, tb)
	}
}
