package ops

import (
	"github.com/speier/claudia/internal/model"
)

// CreateTaskInput mirrors the POST /task/create request body.
type CreateTaskInput struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Priority    *int     `json:"priority,omitempty"`
	Labels      []string `json:"labels,omitempty"`
	BlockedBy   []string `json:"blocked_by,omitempty"`
	ParentID    *string  `json:"parent_id,omitempty"`
}

// CreateTask creates a new task. Title must be non-empty.
func (o *Ops) CreateTask(in CreateTaskInput) (*model.Task, error) {
	if in.Title == "" {
		return nil, model.InvalidArgument("title must not be empty")
	}
	priority := model.DefaultPriority
	if in.Priority != nil {
		priority = *in.Priority
	}
	if priority < model.PriorityCritical || priority > model.PriorityLow {
		return nil, model.InvalidArgument("priority must be in [%d, %d]", model.PriorityCritical, model.PriorityLow)
	}

	var created *model.Task
	_, err := o.Store.Mutate(func(snap *model.Snapshot) (*model.Event, error) {
		if in.ParentID != nil && snap.TaskByID(*in.ParentID) == nil {
			return nil, model.NotFound("parent task %s", *in.ParentID)
		}

		now := model.NowUTC()
		task := &model.Task{
			ID:          snap.NextTaskID(),
			Title:       in.Title,
			Description: in.Description,
			Status:      model.StatusOpen,
			Priority:    priority,
			Labels:      in.Labels,
			BlockedBy:   in.BlockedBy,
			ParentID:    in.ParentID,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		snap.Tasks = append(snap.Tasks, task)

		if in.ParentID != nil {
			parent := snap.TaskByID(*in.ParentID)
			parent.Subtasks = append(parent.Subtasks, task.ID)
		}

		created = task
		return &model.Event{Kind: model.EventTaskCreated, Payload: map[string]any{"task_id": task.ID}}, nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// EditFields is a sparse patch; nil fields are left untouched.
type EditFields struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Status      *string    `json:"status,omitempty"`
	Priority    *int       `json:"priority,omitempty"`
	Labels      *[]string  `json:"labels,omitempty"`
	BlockedBy   *[]string  `json:"blocked_by,omitempty"`
	Branch      *string    `json:"branch,omitempty"`
}

// EditTask applies a sparse patch to a task and returns the merged result.
func (o *Ops) EditTask(taskID string, fields EditFields) (*model.Task, error) {
	var edited *model.Task
	_, err := o.Store.Mutate(func(snap *model.Snapshot) (*model.Event, error) {
		task := snap.TaskByID(taskID)
		if task == nil {
			return nil, model.NotFound("task %s", taskID)
		}

		if fields.Title != nil {
			if *fields.Title == "" {
				return nil, model.InvalidArgument("title must not be empty")
			}
			task.Title = *fields.Title
		}
		if fields.Description != nil {
			task.Description = *fields.Description
		}
		if fields.Status != nil {
			status := model.TaskStatus(*fields.Status)
			switch status {
			case model.StatusOpen, model.StatusInProgress, model.StatusDone, model.StatusBlocked:
				task.Status = status
			default:
				return nil, model.InvalidArgument("unknown status %q", *fields.Status)
			}
		}
		if fields.Priority != nil {
			if *fields.Priority < model.PriorityCritical || *fields.Priority > model.PriorityLow {
				return nil, model.InvalidArgument("priority must be in [%d, %d]", model.PriorityCritical, model.PriorityLow)
			}
			task.Priority = *fields.Priority
		}
		if fields.Labels != nil {
			task.Labels = *fields.Labels
		}
		if fields.BlockedBy != nil {
			// A cycle introduced here is caught by model.Validate after this
			// closure returns, which aborts the transaction with Conflict.
			task.BlockedBy = *fields.BlockedBy
		}
		if fields.Branch != nil {
			task.Branch = fields.Branch
		}
		task.UpdatedAt = model.NowUTC()
		edited = task

		return &model.Event{Kind: model.EventTaskEdited, Payload: map[string]any{"task_id": taskID}}, nil
	})
	if err != nil {
		return nil, err
	}
	return edited, nil
}

// DeleteTask removes a task. If it has subtasks, force must be true and the
// subtasks are deleted recursively.
func (o *Ops) DeleteTask(taskID string, force bool) error {
	_, err := o.Store.Mutate(func(snap *model.Snapshot) (*model.Event, error) {
		task := snap.TaskByID(taskID)
		if task == nil {
			return nil, model.NotFound("task %s", taskID)
		}
		if len(task.Subtasks) > 0 && !force {
			return nil, model.Conflict("task %s has subtasks; pass force to delete recursively", taskID)
		}

		toDelete := map[string]bool{taskID: true}
		if force {
			collectDescendants(snap, taskID, toDelete)
		}

		var kept []*model.Task
		for _, t := range snap.Tasks {
			if toDelete[t.ID] {
				continue
			}
			if t.ParentID != nil && toDelete[*t.ParentID] {
				continue
			}
			// Drop references to deleted ids from subtasks lists.
			if len(t.Subtasks) > 0 {
				var remaining []string
				for _, sub := range t.Subtasks {
					if !toDelete[sub] {
						remaining = append(remaining, sub)
					}
				}
				t.Subtasks = remaining
			}
			kept = append(kept, t)
		}
		snap.Tasks = kept

		return &model.Event{Kind: model.EventTaskDeleted, Payload: map[string]any{"task_id": taskID}}, nil
	})
	return err
}

func collectDescendants(snap *model.Snapshot, parentID string, acc map[string]bool) {
	parent := snap.TaskByID(parentID)
	if parent == nil {
		return
	}
	for _, sub := range parent.Subtasks {
		if acc[sub] {
			continue
		}
		acc[sub] = true
		collectDescendants(snap, sub, acc)
	}
}

// NoteTask appends an append-only note to a task.
func (o *Ops) NoteTask(taskID, sessionID, note string) error {
	if note == "" {
		return model.InvalidArgument("note must not be empty")
	}
	_, err := o.Store.Mutate(func(snap *model.Snapshot) (*model.Event, error) {
		task := snap.TaskByID(taskID)
		if task == nil {
			return nil, model.NotFound("task %s", taskID)
		}
		task.Notes = append(task.Notes, model.Note{
			Timestamp: model.NowUTC(),
			SessionID: sessionID,
			Note:      note,
		})
		task.UpdatedAt = model.NowUTC()
		task.UpdatedBy = sessionID

		return &model.Event{Kind: model.EventTaskNoted, SessionID: sessionID, Payload: map[string]any{"task_id": taskID}}, nil
	})
	return err
}
