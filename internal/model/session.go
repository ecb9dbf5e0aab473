package model

// Role distinguishes the main session from helper workers.
type Role string

const (
	RoleMain   Role = "main"
	RoleWorker Role = "worker"
)

// Session is a live agent process participating in the coordination.
type Session struct {
	SessionID     string   `json:"session_id"`
	Role          Role     `json:"role"`
	Context       string   `json:"context,omitempty"`
	Labels        []string `json:"labels,omitempty"`
	StartedAt     string   `json:"started_at"`
	LastHeartbeat string   `json:"last_heartbeat"`
	WorkingOn     *string  `json:"working_on"`

	// PID, when set, is the OS process id of the owning agent. It carries no
	// coordination semantics; nothing in the core sets or reads it (the dead
	// coordinator check uses coordinator.pid instead).
	PID int `json:"pid,omitempty"`
}

// Clone returns a deep copy of the session.
func (s *Session) Clone() *Session {
	c := *s
	c.Labels = append([]string(nil), s.Labels...)
	if s.WorkingOn != nil {
		v := *s.WorkingOn
		c.WorkingOn = &v
	}
	return &c
}
