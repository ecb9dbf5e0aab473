package model

// EventKind names the operation that produced an Event.
type EventKind string

const (
	EventTaskCreated     EventKind = "task_created"
	EventTaskClaimed     EventKind = "task_claimed"
	EventTaskCompleted   EventKind = "task_completed"
	EventTaskReopened    EventKind = "task_reopened"
	EventTaskEdited      EventKind = "task_edited"
	EventTaskDeleted     EventKind = "task_deleted"
	EventTaskNoted       EventKind = "task_noted"
	EventSubtaskCreated  EventKind = "subtask_created"
	EventSessionEnded    EventKind = "session_ended"
	EventSessionReclaim  EventKind = "session_reclaimed"
	EventUndoApplied     EventKind = "undo_applied"
	EventTaskArchived    EventKind = "task_archived"
	EventTimerStarted    EventKind = "timer_started"
	EventTimerStopped    EventKind = "timer_stopped"
)

// UndoHint carries the prior field values required to reverse the most
// recent reversible action. A nil UndoHint marks the event irreversible.
type UndoHint struct {
	TaskID       string        `json:"task_id,omitempty"`
	PriorStatus  TaskStatus    `json:"prior_status,omitempty"`
	PriorAssignee *string      `json:"prior_assignee"`
	PriorBranch  *string       `json:"prior_branch"`
	PriorNotes   []Note        `json:"prior_notes,omitempty"`
	PriorTiming  *TimeTracking `json:"prior_timing,omitempty"`
}

// Event is one entry in the append-only history log.
type Event struct {
	Timestamp string    `json:"timestamp"`
	Kind      EventKind `json:"kind"`
	SessionID string    `json:"session_id,omitempty"`
	Payload   any       `json:"payload,omitempty"`
	UndoHint  *UndoHint `json:"undo_hint,omitempty"`
}
