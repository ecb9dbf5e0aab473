package model

import "fmt"

// Snapshot is the full in-memory copy of the task set that a Store
// transaction mutates. NextID is the counter from which new task ids are
// minted; it is strictly greater than any numeric suffix already assigned.
type Snapshot struct {
	Version int     `json:"version"`
	NextID  int     `json:"next_id"`
	Tasks   []*Task `json:"tasks"`
}

// TaskByID returns the task with the given id, or nil.
func (s *Snapshot) TaskByID(id string) *Task {
	for _, t := range s.Tasks {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// Clone returns a deep copy of the snapshot.
func (s *Snapshot) Clone() *Snapshot {
	c := &Snapshot{Version: s.Version, NextID: s.NextID}
	c.Tasks = make([]*Task, len(s.Tasks))
	for i, t := range s.Tasks {
		c.Tasks[i] = t.Clone()
	}
	return c
}

// NextTaskID mints and reserves the next task id, e.g. "task-007".
func (s *Snapshot) NextTaskID() string {
	id := fmt.Sprintf("task-%03d", s.NextID)
	s.NextID++
	return id
}

// Validate checks the structural invariants every snapshot must hold:
// unique ids, consistent subtask back-references, one active task per
// session, and an acyclic blocked_by graph. It must hold after every
// committed transaction.
func Validate(s *Snapshot) error {
	byID := make(map[string]*Task, len(s.Tasks))
	for _, t := range s.Tasks {
		if t.ID == "" {
			return Internal(nil, "task with empty id")
		}
		if _, dup := byID[t.ID]; dup {
			return Internal(nil, "duplicate task id %s", t.ID)
		}
		byID[t.ID] = t
	}

	assigneeOf := make(map[string]string) // session -> task id it owns
	for _, t := range s.Tasks {
		if (t.Assignee != nil) != (t.Status == StatusInProgress) {
			return Conflict("task %s: assignee/status mismatch", t.ID)
		}
		if t.Assignee != nil {
			if owned, ok := assigneeOf[*t.Assignee]; ok {
				return Conflict("session %s already owns %s, cannot also own %s", *t.Assignee, owned, t.ID)
			}
			assigneeOf[*t.Assignee] = t.ID
		}

		for _, sub := range t.Subtasks {
			child := byID[sub]
			if child == nil {
				continue // a dangling subtask reference resolves elsewhere (deletion order); ignored here
			}
			if child.ParentID == nil || *child.ParentID != t.ID {
				return Conflict("subtask %s does not point back to parent %s", sub, t.ID)
			}
		}

		if t.TimeTracking.IsRunning && t.TimeTracking.StartedAt == nil {
			return Conflict("task %s: time tracking running with no started_at", t.ID)
		}
		if t.TimeTracking.IsRunning && t.TimeTracking.IsPaused {
			return Conflict("task %s: time tracking cannot be both running and paused", t.ID)
		}
	}

	if cyc := findCycle(byID); cyc != "" {
		return Conflict("cycle detected in blocked_by at task %s", cyc)
	}

	for _, t := range s.Tasks {
		if n := numericSuffix(t.ID); n >= s.NextID {
			return Internal(nil, "next_id %d is not greater than existing id %s", s.NextID, t.ID)
		}
	}

	return nil
}

func numericSuffix(id string) int {
	var n int
	_, err := fmt.Sscanf(id, "task-%d", &n)
	if err != nil {
		return -1
	}
	return n
}

// findCycle returns the id of a task participating in a blocked_by cycle,
// or "" if none exists.
func findCycle(byID map[string]*Task) string {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[string]int, len(byID))

	var visit func(id string) bool
	visit = func(id string) bool {
		switch color[id] {
		case gray:
			return true
		case black:
			return false
		}
		color[id] = gray
		t := byID[id]
		if t != nil {
			for _, dep := range t.BlockedBy {
				if _, ok := byID[dep]; !ok {
					continue // unresolved dependency is satisfied, not a cycle participant
				}
				if visit(dep) {
					return true
				}
			}
		}
		color[id] = black
		return false
	}

	for id := range byID {
		if color[id] == white && visit(id) {
			return id
		}
	}
	return ""
}
