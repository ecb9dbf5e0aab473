package registry

import (
	"github.com/speier/claudia/internal/model"
	"github.com/speier/claudia/internal/scheduler"
)

// RequestTask runs the scheduler against the current task set and, if it
// picks one, atomically marks it in_progress/assignee=session inside a
// single Store transaction. This is the critical claim operation: two
// concurrent callers against the same backlog can never both win the same
// task.
//
// currentLoad is derived from the task snapshot itself (count of tasks
// already assigned to this session), not from the session's cached
// working_on field, so the load-balancing check needs no second file.
func (r *Registry) RequestTask(sessionID string, preferredLabels []string, maxConcurrent int) (*model.Task, error) {
	sess, err := r.store.GetSession(sessionID)
	if model.KindOf(err) == model.KindNotFound {
		return nil, model.NotFound("unknown session %s", sessionID)
	}
	if err != nil {
		return nil, err
	}

	var claimed *model.Task
	_, err = r.store.Mutate(func(snap *model.Snapshot) (*model.Event, error) {
		load := 0
		for _, t := range snap.Tasks {
			if t.Assignee != nil && *t.Assignee == sessionID {
				load++
			}
		}

		picked, ok := scheduler.Pick(snap.Tasks, *sess, preferredLabels, maxConcurrent, load)
		if !ok {
			return nil, nil // no event, no mutation: an empty or fully-blocked backlog is not an error
		}

		picked.Status = model.StatusInProgress
		id := sessionID
		picked.Assignee = &id
		picked.UpdatedAt = model.NowUTC()
		claimed = picked

		return &model.Event{
			Kind:      model.EventTaskClaimed,
			SessionID: sessionID,
			Payload:   map[string]any{"task_id": picked.ID},
			UndoHint: &model.UndoHint{
				TaskID:        picked.ID,
				PriorStatus:   model.StatusOpen,
				PriorAssignee: nil,
			},
		}, nil
	})
	if err != nil {
		return nil, err
	}

	if claimed == nil {
		return nil, nil
	}

	sess.WorkingOn = &claimed.ID
	_ = r.store.SaveSession(sess) // best-effort cache; assignee on the task is authoritative

	return claimed, nil
}
