// Package registry implements the session lifecycle: registration,
// heartbeats, graceful end, and staleness-driven cleanup.
package registry

import (
	"time"

	"github.com/speier/claudia/internal/model"
	"github.com/speier/claudia/internal/store"
)

// Registry tracks live sessions on top of a Store.
type Registry struct {
	store *store.Store
}

// New returns a Registry backed by s.
func New(s *store.Store) *Registry {
	return &Registry{store: s}
}

// Register creates or, if the id is already known, updates a session's
// metadata. It is idempotent.
func (r *Registry) Register(sessionID string, role model.Role, context string, labels []string) (*model.Session, error) {
	existing, err := r.store.GetSession(sessionID)
	now := model.NowUTC()

	if model.KindOf(err) == model.KindNotFound {
		sess := &model.Session{
			SessionID:     sessionID,
			Role:          role,
			Context:       context,
			Labels:        labels,
			StartedAt:     now,
			LastHeartbeat: now,
		}
		if err := r.store.SaveSession(sess); err != nil {
			return nil, err
		}
		return sess, nil
	}
	if err != nil {
		return nil, err
	}

	existing.Role = role
	existing.Context = context
	existing.Labels = labels
	existing.LastHeartbeat = now
	if err := r.store.SaveSession(existing); err != nil {
		return nil, err
	}
	return existing, nil
}

// Heartbeat updates last_heartbeat to now. Unknown ids are rejected.
func (r *Registry) Heartbeat(sessionID string) error {
	sess, err := r.store.GetSession(sessionID)
	if model.KindOf(err) == model.KindNotFound {
		return model.NotFound("unknown session %s", sessionID)
	}
	if err != nil {
		return err
	}
	sess.LastHeartbeat = model.NowUTC()
	return r.store.SaveSession(sess)
}

// End removes a session. If it held a task, releaseTasks controls whether
// that task is returned to open (default behavior) or left in_progress for
// a graceful hand-off.
func (r *Registry) End(sessionID string, releaseTasks bool) (*model.Session, error) {
	sess, err := r.store.GetSession(sessionID)
	if model.KindOf(err) == model.KindNotFound {
		return nil, model.NotFound("unknown session %s", sessionID)
	}
	if err != nil {
		return nil, err
	}

	if sess.WorkingOn != nil && releaseTasks {
		if err := r.releaseTask(*sess.WorkingOn, sessionID, model.EventSessionEnded); err != nil {
			return nil, err
		}
	}

	if err := r.store.DeleteSession(sessionID); err != nil {
		return nil, err
	}
	return sess, nil
}

// releaseTask returns a claimed task to open/unassigned as part of a
// session ending or being reclaimed.
func (r *Registry) releaseTask(taskID, sessionID string, kind model.EventKind) error {
	_, err := r.store.Mutate(func(snap *model.Snapshot) (*model.Event, error) {
		task := snap.TaskByID(taskID)
		// working_on is only a cache: the task may since have been completed
		// or claimed by someone else, in which case there is nothing to release.
		if task == nil || task.Assignee == nil || *task.Assignee != sessionID {
			return &model.Event{Kind: kind, SessionID: sessionID}, nil
		}
		priorStatus := task.Status
		priorAssignee := task.Assignee

		task.Status = model.StatusOpen
		task.Assignee = nil
		task.UpdatedAt = model.NowUTC()

		return &model.Event{
			Kind:      kind,
			SessionID: sessionID,
			Payload:   map[string]any{"task_id": taskID},
			UndoHint: &model.UndoHint{
				TaskID:        taskID,
				PriorStatus:   priorStatus,
				PriorAssignee: priorAssignee,
			},
		}, nil
	})
	return err
}

// Cleanup ends every session whose last_heartbeat is older than
// thresholdSeconds, releasing any task it held. Returns the ids ended.
func (r *Registry) Cleanup(thresholdSeconds int) ([]string, error) {
	sessions, err := r.store.ListSessions()
	if err != nil {
		return nil, err
	}

	var ended []string
	now := time.Now().UTC()
	for _, sess := range sessions {
		last, err := time.Parse(model.TimeFormat, sess.LastHeartbeat)
		if err != nil {
			continue
		}
		if now.Sub(last) <= time.Duration(thresholdSeconds)*time.Second {
			continue
		}

		if sess.WorkingOn != nil {
			if err := r.releaseTask(*sess.WorkingOn, sess.SessionID, model.EventSessionReclaim); err != nil {
				return ended, err
			}
		}
		if err := r.store.DeleteSession(sess.SessionID); err != nil {
			return ended, err
		}
		ended = append(ended, sess.SessionID)
	}
	return ended, nil
}

// Level is a soft staleness classification for dashboard/status readers.
// The registry itself never reclaims at these thresholds; only Cleanup
// does, at its own (stricter) threshold.
type Level string

const (
	LevelFresh  Level = "fresh"
	LevelWarn   Level = "warn"
	LevelDanger Level = "danger"
)

// Staleness classifies a session's heartbeat age as of now.
func Staleness(lastHeartbeat, now time.Time) Level {
	age := now.Sub(lastHeartbeat)
	switch {
	case age >= 120*time.Second:
		return LevelDanger
	case age >= 60*time.Second:
		return LevelWarn
	default:
		return LevelFresh
	}
}
