// Package scheduler implements the pure task-selection function used by
// the coordination core. It performs no I/O and reads no clock; given the
// same inputs it always returns the same result.
package scheduler

import (
	"github.com/speier/claudia/internal/model"
)

// Ready reports whether a task may be claimed: open, unassigned, and every
// blocked_by predecessor is done. An id in blocked_by that does not resolve
// to a known task is treated as satisfied rather than blocking forever.
func Ready(t *model.Task, byID map[string]*model.Task) bool {
	if t.Status != model.StatusOpen || t.Assignee != nil {
		return false
	}
	for _, dep := range t.BlockedBy {
		pred, ok := byID[dep]
		if !ok {
			continue // orphan reference: satisfied
		}
		if pred.Status != model.StatusDone {
			return false
		}
	}
	return true
}

// affinity is the cardinality of the intersection between a task's labels
// and the union of the session's declared labels and any caller-supplied
// preferred labels.
func affinity(t *model.Task, session model.Session, preferredLabels []string) int {
	wanted := make(map[string]struct{}, len(session.Labels)+len(preferredLabels))
	for _, l := range session.Labels {
		wanted[l] = struct{}{}
	}
	for _, l := range preferredLabels {
		wanted[l] = struct{}{}
	}

	count := 0
	for _, l := range t.Labels {
		if _, ok := wanted[l]; ok {
			count++
		}
	}
	return count
}

// order is the ranking tuple used to pick the next task: (-affinity,
// priority, created_at, id). less reports whether a ranks strictly ahead
// of b.
type order struct {
	negAffinity int
	priority    int
	createdAt   string
	id          string
}

func less(a, b order) bool {
	if a.negAffinity != b.negAffinity {
		return a.negAffinity < b.negAffinity
	}
	if a.priority != b.priority {
		return a.priority < b.priority
	}
	if a.createdAt != b.createdAt {
		return a.createdAt < b.createdAt
	}
	return a.id < b.id
}

// Pick returns the next task session should claim, or (nil, false) if
// nothing is ready or the session is already at its concurrency limit.
// maxConcurrent is the per-session claim ceiling (spec default 1);
// currentLoad is the number of open claims the session already holds.
func Pick(tasks []*model.Task, session model.Session, preferredLabels []string, maxConcurrent, currentLoad int) (*model.Task, bool) {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	if currentLoad >= maxConcurrent {
		return nil, false
	}

	byID := make(map[string]*model.Task, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = t
	}

	var best *model.Task
	var bestOrder order
	for _, t := range tasks {
		if !Ready(t, byID) {
			continue
		}
		o := order{
			negAffinity: -affinity(t, session, preferredLabels),
			priority:    t.Priority,
			createdAt:   t.CreatedAt,
			id:          t.ID,
		}
		if best == nil || less(o, bestOrder) {
			best = t
			bestOrder = o
		}
	}

	if best == nil {
		return nil, false
	}
	return best, true
}
