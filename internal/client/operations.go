package client

import (
	"github.com/speier/claudia/internal/model"
	"github.com/speier/claudia/internal/ops"
)

// This file is the single place every operation forwards to the resolved
// dispatcher. Its methods contain no mode-specific logic so the mode could
// change underneath an Agent without any of these needing to change.

func (a *Agent) RegisterSession(sessionID string, role model.Role, context string, labels []string) (*model.Session, error) {
	return a.d.RegisterSession(sessionID, role, context, labels)
}

func (a *Agent) Heartbeat(sessionID string) error {
	return a.d.Heartbeat(sessionID)
}

func (a *Agent) EndSession(sessionID string, release bool) error {
	return a.d.EndSession(sessionID, release)
}

func (a *Agent) RequestTask(sessionID string, preferredLabels []string) (*model.Task, error) {
	return a.d.RequestTask(sessionID, preferredLabels)
}

func (a *Agent) CreateTask(in ops.CreateTaskInput) (*model.Task, error) {
	return a.d.CreateTask(in)
}

func (a *Agent) GetTask(id string) (*model.Task, error) {
	return a.d.GetTask(id)
}

func (a *Agent) ListTasks(status string) ([]*model.Task, error) {
	return a.d.ListTasks(status)
}

func (a *Agent) EditTask(taskID string, fields ops.EditFields) (*model.Task, error) {
	return a.d.EditTask(taskID, fields)
}

func (a *Agent) DeleteTask(taskID string, force bool) error {
	return a.d.DeleteTask(taskID, force)
}

func (a *Agent) NoteTask(taskID, sessionID, note string) error {
	return a.d.NoteTask(taskID, sessionID, note)
}

func (a *Agent) CompleteTask(taskID, sessionID, note, branch string, force bool) (*model.Task, error) {
	return a.d.CompleteTask(taskID, sessionID, note, branch, force)
}

func (a *Agent) ReopenTask(taskID, note, sessionID string) (*model.Task, error) {
	return a.d.ReopenTask(taskID, note, sessionID)
}

func (a *Agent) BulkComplete(taskIDs []string, sessionID, note string) (*ops.BulkCompleteResult, error) {
	return a.d.BulkComplete(taskIDs, sessionID, note)
}

func (a *Agent) StartTimer(taskID string) (*model.Task, error) {
	return a.d.StartTimer(taskID)
}

func (a *Agent) StopTimer(taskID string) (*model.Task, error) {
	return a.d.StopTimer(taskID)
}

func (a *Agent) CreateSubtask(parentID string, in ops.CreateTaskInput) (*model.Task, error) {
	return a.d.CreateSubtask(parentID, in)
}

func (a *Agent) SubtaskProgress(parentID string) (*ops.SubtaskProgressReport, error) {
	return a.d.SubtaskProgress(parentID)
}

func (a *Agent) InstantiateTemplate(templateID, title string) (*model.Task, error) {
	return a.d.InstantiateTemplate(templateID, title)
}

func (a *Agent) Status() (*ops.StatusReport, error) {
	return a.d.Status()
}

func (a *Agent) ParallelSummary() (map[string][]*model.Task, error) {
	return a.d.ParallelSummary()
}

func (a *Agent) Undo() (*model.Task, error) {
	return a.d.Undo()
}
