// Package ops implements the task- and session-level operations shared by
// both the single-mode client dispatcher and the Coordinator service's HTTP
// handlers, so the business logic exists exactly once.
package ops

import (
	"github.com/speier/claudia/internal/config"
	"github.com/speier/claudia/internal/model"
	"github.com/speier/claudia/internal/registry"
	"github.com/speier/claudia/internal/store"
)

// Ops bundles the Store and Registry with the tunables that affect
// behavior (auto_complete_parent, max_concurrent).
type Ops struct {
	Store    *store.Store
	Registry *registry.Registry
	Config   *config.Config
}

// New returns an Ops instance over s, with its own Registry.
func New(s *store.Store, cfg *config.Config) *Ops {
	return &Ops{Store: s, Registry: registry.New(s), Config: cfg}
}

// StatusCounts summarizes the task set by status, for /status and the CLI.
type StatusCounts struct {
	Open       int `json:"open"`
	InProgress int `json:"in_progress"`
	Done       int `json:"done"`
	Blocked    int `json:"blocked"`
}

// StatusReport is the response shape for GET /status.
type StatusReport struct {
	Counts         StatusCounts      `json:"counts"`
	ActiveSessions []*model.Session  `json:"active_sessions"`
}

// Status returns task counts by status and the live session list.
func (o *Ops) Status() (*StatusReport, error) {
	snap, err := o.Store.Snapshot()
	if err != nil {
		return nil, err
	}
	sessions, err := o.Store.ListSessions()
	if err != nil {
		return nil, err
	}

	var counts StatusCounts
	for _, t := range snap.Tasks {
		switch t.Status {
		case model.StatusOpen:
			counts.Open++
		case model.StatusInProgress:
			counts.InProgress++
		case model.StatusDone:
			counts.Done++
		case model.StatusBlocked:
			counts.Blocked++
		}
	}

	return &StatusReport{Counts: counts, ActiveSessions: sessions}, nil
}

// ParallelSummary groups tasks by their branch field, for GET
// /parallel-summary.
func (o *Ops) ParallelSummary() (map[string][]*model.Task, error) {
	snap, err := o.Store.Snapshot()
	if err != nil {
		return nil, err
	}
	summary := make(map[string][]*model.Task)
	for _, t := range snap.Tasks {
		branch := "unassigned"
		if t.Branch != nil {
			branch = *t.Branch
		}
		summary[branch] = append(summary[branch], t)
	}
	return summary, nil
}

// ListTasks returns every task, optionally filtered by status ("" means
// all).
func (o *Ops) ListTasks(status string) ([]*model.Task, error) {
	snap, err := o.Store.Snapshot()
	if err != nil {
		return nil, err
	}
	if status == "" {
		return snap.Tasks, nil
	}
	var filtered []*model.Task
	for _, t := range snap.Tasks {
		if string(t.Status) == status {
			filtered = append(filtered, t)
		}
	}
	return filtered, nil
}

// GetTask returns one task by id.
func (o *Ops) GetTask(id string) (*model.Task, error) {
	snap, err := o.Store.Snapshot()
	if err != nil {
		return nil, err
	}
	t := snap.TaskByID(id)
	if t == nil {
		return nil, model.NotFound("task %s", id)
	}
	return t, nil
}

// Undo reverses the most recent reversible action.
func (o *Ops) Undo() (*model.Task, error) {
	return o.Store.Undo()
}
