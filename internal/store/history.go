package store

import (
	"bufio"
	"encoding/json"
	"os"

	"github.com/speier/claudia/internal/model"
)

// appendHistory appends one event to history.jsonl. Caller must hold the
// lock.
func (s *Store) appendHistory(ev model.Event) error {
	line, err := json.Marshal(ev)
	if err != nil {
		return model.Internal(err, "marshaling history event")
	}
	if err := appendLine(s.path(historyFile), line); err != nil {
		return model.Internal(err, "appending to history.jsonl")
	}
	return nil
}

// History returns every event recorded so far, in append order.
func (s *Store) History() ([]model.Event, error) {
	var events []model.Event
	err := s.withLock(func() error {
		var err error
		events, err = s.readEvents(s.path(historyFile))
		return err
	})
	return events, err
}

// LastUndoableEvent returns the most recent event in history.jsonl carrying
// a non-nil UndoHint, or (nil, false) if none exists. History is never
// truncated; undo works by reading the tail and appending a compensating
// event.
func (s *Store) LastUndoableEvent() (*model.Event, bool, error) {
	var found *model.Event
	err := s.withLock(func() error {
		events, err := s.readEvents(s.path(historyFile))
		if err != nil {
			return err
		}
		for i := len(events) - 1; i >= 0; i-- {
			if events[i].UndoHint != nil {
				found = &events[i]
				return nil
			}
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return found, found != nil, nil
}

// readEvents parses every event in the JSONL file at path, in append order.
// A missing file yields no events. Caller must hold the lock.
func (s *Store) readEvents(path string) ([]model.Event, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, model.Internal(err, "opening history file")
	}
	defer f.Close()

	var events []model.Event
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var ev model.Event
		if err := json.Unmarshal(line, &ev); err != nil {
			return nil, model.Internal(err, "parsing history line")
		}
		events = append(events, ev)
	}
	if err := scanner.Err(); err != nil {
		return nil, model.Internal(err, "scanning history file")
	}
	return events, nil
}

// Undo reverses the most recent undoable event, applying the inverse
// described by its UndoHint to the current task state, then appends a
// compensating event describing the reversal. It runs as a single Store
// transaction so the check-and-apply is race-free.
func (s *Store) Undo() (*model.Task, error) {
	var result *model.Task
	err := s.withLock(func() error {
		events, err := s.readEvents(s.path(historyFile))
		if err != nil {
			return err
		}

		var tail *model.Event
		for i := len(events) - 1; i >= 0; i-- {
			if events[i].UndoHint != nil {
				tail = &events[i]
				break
			}
		}
		if tail == nil {
			return model.Conflict("no reversible action in history")
		}
		hint := tail.UndoHint

		snap, err := s.loadSnapshot()
		if err != nil {
			return err
		}
		task := snap.TaskByID(hint.TaskID)
		if task == nil {
			return model.Conflict("undo target task %s no longer exists", hint.TaskID)
		}

		task.Status = hint.PriorStatus
		task.Assignee = hint.PriorAssignee
		task.Branch = hint.PriorBranch
		// A completion always records its prior notes, but an empty list is
		// dropped by omitempty on the way through history.jsonl.
		if hint.PriorNotes != nil || tail.Kind == model.EventTaskCompleted {
			task.Notes = hint.PriorNotes
		}
		if hint.PriorTiming != nil {
			task.TimeTracking = *hint.PriorTiming
		}
		task.UpdatedAt = model.NowUTC()

		if err := model.Validate(snap); err != nil {
			return err
		}
		if err := s.writeSnapshot(snap); err != nil {
			return err
		}

		compensating := model.Event{
			Kind:    model.EventUndoApplied,
			Payload: map[string]any{"undone_kind": tail.Kind, "task_id": hint.TaskID},
		}
		if err := s.appendHistory(compensating); err != nil {
			return err
		}

		result = task
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// appendArchive appends task to archive.jsonl. Caller must hold the lock
// (called by Archive, which also removes the task from the live snapshot).
func (s *Store) appendArchive(task *model.Task) error {
	line, err := json.Marshal(task)
	if err != nil {
		return model.Internal(err, "marshaling archived task")
	}
	if err := appendLine(s.path(archiveFile), line); err != nil {
		return model.Internal(err, "appending to archive.jsonl")
	}
	return nil
}

// Archive moves every done task older than olderThanDays into archive.jsonl
// and removes it from the live set. Returns the archived task ids.
func (s *Store) Archive(olderThanDays int) ([]string, error) {
	var archived []string
	err := s.withLock(func() error {
		snap, err := s.loadSnapshot()
		if err != nil {
			return err
		}

		cutoff := model.NowUTC()
		_ = cutoff // comparison performed in archiveEligible, using wall-clock parse

		var kept []*model.Task
		for _, t := range snap.Tasks {
			if t.Status == model.StatusDone && archiveEligible(t, olderThanDays) {
				if err := s.appendArchive(t); err != nil {
					return err
				}
				archived = append(archived, t.ID)
				continue
			}
			kept = append(kept, t)
		}
		snap.Tasks = kept

		if err := model.Validate(snap); err != nil {
			return err
		}
		return s.writeSnapshot(snap)
	})
	if err != nil {
		return nil, err
	}
	return archived, nil
}
