package ops

import "github.com/speier/claudia/internal/model"

// CreateSubtask creates a task whose parent_id is parentID, appending it to
// the parent's subtasks list.
func (o *Ops) CreateSubtask(parentID string, in CreateTaskInput) (*model.Task, error) {
	in.ParentID = &parentID
	return o.CreateTask(in)
}

// SubtaskProgressReport is the response shape for GET /subtask/progress.
type SubtaskProgressReport struct {
	Done       int     `json:"done"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"`
}

// SubtaskProgress reports how many of a task's direct subtasks are done.
func (o *Ops) SubtaskProgress(parentID string) (*SubtaskProgressReport, error) {
	snap, err := o.Store.Snapshot()
	if err != nil {
		return nil, err
	}
	parent := snap.TaskByID(parentID)
	if parent == nil {
		return nil, model.NotFound("task %s", parentID)
	}

	total := len(parent.Subtasks)
	done := 0
	for _, sub := range parent.Subtasks {
		child := snap.TaskByID(sub)
		if child != nil && child.Status == model.StatusDone {
			done++
		}
	}

	percentage := 0.0
	if total > 0 {
		percentage = 100 * float64(done) / float64(total)
	}

	return &SubtaskProgressReport{Done: done, Total: total, Percentage: percentage}, nil
}
