package ops

import (
	"github.com/speier/claudia/internal/model"
)

// CompleteTask transitions a task to done. Unless force is set, the caller
// must be the task's current assignee.
func (o *Ops) CompleteTask(taskID, sessionID, note, branch string, force bool) (*model.Task, error) {
	var completed *model.Task
	_, err := o.Store.Mutate(func(snap *model.Snapshot) (*model.Event, error) {
		task := snap.TaskByID(taskID)
		if task == nil {
			return nil, model.NotFound("task %s", taskID)
		}
		if !force && (task.Assignee == nil || *task.Assignee != sessionID) {
			return nil, model.Conflict("task %s is not owned by %s", taskID, sessionID)
		}

		priorStatus := task.Status
		priorAssignee := task.Assignee
		priorBranch := task.Branch
		priorNotes := append([]model.Note(nil), task.Notes...)
		priorTiming := task.TimeTracking

		task.Status = model.StatusDone
		task.Assignee = nil
		if branch != "" {
			task.Branch = &branch
		}
		if note != "" {
			task.Notes = append(task.Notes, model.Note{Timestamp: model.NowUTC(), SessionID: sessionID, Note: note})
		}
		if task.TimeTracking.IsRunning {
			stopTimer(task)
		}
		task.UpdatedAt = model.NowUTC()
		task.UpdatedBy = sessionID

		if o.Config != nil && o.Config.AutoCompleteParent && task.ParentID != nil {
			maybeCompleteParent(snap, *task.ParentID)
		}

		completed = task
		return &model.Event{
			Kind:      model.EventTaskCompleted,
			SessionID: sessionID,
			Payload:   map[string]any{"task_id": taskID},
			UndoHint: &model.UndoHint{
				TaskID:        taskID,
				PriorStatus:   priorStatus,
				PriorAssignee: priorAssignee,
				PriorBranch:   priorBranch,
				PriorNotes:    priorNotes,
				PriorTiming:   &priorTiming,
			},
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return completed, nil
}

// maybeCompleteParent marks parent done once every one of its subtasks is
// done. Gated behind the auto_complete_parent config toggle, which
// defaults off so completing a subtask never silently completes its
// parent.
func maybeCompleteParent(snap *model.Snapshot, parentID string) {
	parent := snap.TaskByID(parentID)
	if parent == nil || parent.Status == model.StatusDone || len(parent.Subtasks) == 0 {
		return
	}
	for _, sub := range parent.Subtasks {
		child := snap.TaskByID(sub)
		if child == nil || child.Status != model.StatusDone {
			return
		}
	}
	parent.Status = model.StatusDone
	parent.Assignee = nil
	parent.UpdatedAt = model.NowUTC()
}

// ReopenTask returns a done task to open, clearing assignee and branch.
func (o *Ops) ReopenTask(taskID, note, sessionID string) (*model.Task, error) {
	var reopened *model.Task
	_, err := o.Store.Mutate(func(snap *model.Snapshot) (*model.Event, error) {
		task := snap.TaskByID(taskID)
		if task == nil {
			return nil, model.NotFound("task %s", taskID)
		}

		priorStatus := task.Status
		priorAssignee := task.Assignee
		priorBranch := task.Branch

		task.Status = model.StatusOpen
		task.Assignee = nil
		task.Branch = nil
		if note != "" {
			task.Notes = append(task.Notes, model.Note{Timestamp: model.NowUTC(), SessionID: sessionID, Note: note})
		}
		task.UpdatedAt = model.NowUTC()
		task.UpdatedBy = sessionID
		reopened = task

		return &model.Event{
			Kind:      model.EventTaskReopened,
			SessionID: sessionID,
			Payload:   map[string]any{"task_id": taskID},
			UndoHint: &model.UndoHint{
				TaskID:        taskID,
				PriorStatus:   priorStatus,
				PriorAssignee: priorAssignee,
				PriorBranch:   priorBranch,
			},
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return reopened, nil
}

// BulkCompleteResult reports which ids succeeded and which failed.
type BulkCompleteResult struct {
	Succeeded []string `json:"succeeded"`
	Failed    []string `json:"failed"`
}

// BulkComplete completes every task id in taskIDs independently, collecting
// successes and failures rather than aborting on the first error.
func (o *Ops) BulkComplete(taskIDs []string, sessionID, note string) (*BulkCompleteResult, error) {
	result := &BulkCompleteResult{}
	for _, id := range taskIDs {
		if _, err := o.CompleteTask(id, sessionID, note, "", true); err != nil {
			result.Failed = append(result.Failed, id)
			continue
		}
		result.Succeeded = append(result.Succeeded, id)
	}
	return result, nil
}

// StartTimer begins time tracking on a task. A second call without an
// intervening stop is a no-op that returns the current state.
func (o *Ops) StartTimer(taskID string) (*model.Task, error) {
	var result *model.Task
	_, err := o.Store.Mutate(func(snap *model.Snapshot) (*model.Event, error) {
		task := snap.TaskByID(taskID)
		if task == nil {
			return nil, model.NotFound("task %s", taskID)
		}
		if task.TimeTracking.IsRunning {
			result = task
			return nil, nil // already running: no-op, no event
		}
		now := model.NowUTC()
		parsed, _ := parseTimestamp(now)
		task.TimeTracking.StartedAt = &parsed
		task.TimeTracking.IsRunning = true
		task.TimeTracking.IsPaused = false
		task.UpdatedAt = now
		result = task
		return &model.Event{Kind: model.EventTimerStarted, Payload: map[string]any{"task_id": taskID}}, nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// StopTimer ends time tracking, folding the elapsed duration into
// total_seconds.
func (o *Ops) StopTimer(taskID string) (*model.Task, error) {
	var result *model.Task
	_, err := o.Store.Mutate(func(snap *model.Snapshot) (*model.Event, error) {
		task := snap.TaskByID(taskID)
		if task == nil {
			return nil, model.NotFound("task %s", taskID)
		}
		if !task.TimeTracking.IsRunning {
			result = task
			return nil, nil
		}
		stopTimer(task)
		task.UpdatedAt = model.NowUTC()
		result = task
		return &model.Event{Kind: model.EventTimerStopped, Payload: map[string]any{"task_id": taskID}}, nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func stopTimer(task *model.Task) {
	if task.TimeTracking.StartedAt != nil {
		now, _ := parseTimestamp(model.NowUTC())
		task.TimeTracking.TotalSeconds += int64(now.Sub(*task.TimeTracking.StartedAt).Seconds())
	}
	task.TimeTracking.StartedAt = nil
	task.TimeTracking.IsRunning = false
	task.TimeTracking.IsPaused = false
}
