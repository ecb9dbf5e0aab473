package client

import (
	"github.com/speier/claudia/internal/model"
	"github.com/speier/claudia/internal/ops"
)

// dispatcher is the mode-polymorphic operation surface. Agent holds exactly
// one implementation, chosen once at construction, so its methods contain
// no per-call mode branches.
type dispatcher interface {
	RegisterSession(sessionID string, role model.Role, context string, labels []string) (*model.Session, error)
	Heartbeat(sessionID string) error
	EndSession(sessionID string, release bool) error
	RequestTask(sessionID string, preferredLabels []string) (*model.Task, error)

	CreateTask(in ops.CreateTaskInput) (*model.Task, error)
	GetTask(id string) (*model.Task, error)
	ListTasks(status string) ([]*model.Task, error)
	EditTask(taskID string, fields ops.EditFields) (*model.Task, error)
	DeleteTask(taskID string, force bool) error
	NoteTask(taskID, sessionID, note string) error

	CompleteTask(taskID, sessionID, note, branch string, force bool) (*model.Task, error)
	ReopenTask(taskID, note, sessionID string) (*model.Task, error)
	BulkComplete(taskIDs []string, sessionID, note string) (*ops.BulkCompleteResult, error)
	StartTimer(taskID string) (*model.Task, error)
	StopTimer(taskID string) (*model.Task, error)

	CreateSubtask(parentID string, in ops.CreateTaskInput) (*model.Task, error)
	SubtaskProgress(parentID string) (*ops.SubtaskProgressReport, error)
	InstantiateTemplate(templateID, title string) (*model.Task, error)

	Status() (*ops.StatusReport, error)
	ParallelSummary() (map[string][]*model.Task, error)
	Undo() (*model.Task, error)
}
